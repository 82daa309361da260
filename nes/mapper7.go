package nes

// mapper7 (AxROM), 32KB PRG bank 可切换, 单屏镜像
type mapper7 struct {
	prgOffset int
	mirroring Mirroring
}

func (m *mapper7) reset(c *Cartridge) {
	m.prgOffset = 0
	m.mirroring = MirrorSingle0
}

func (m *mapper7) cpuRead(c *Cartridge, addr uint16) (byte, bool) {
	if addr >= 0x8000 {
		return c.prg[(m.prgOffset+int(addr-0x8000))%len(c.prg)], true
	}
	return 0, false
}

func (m *mapper7) cpuWrite(c *Cartridge, addr uint16, value byte) bool {
	if addr < 0x8000 {
		return false
	}

	m.prgOffset = bankOffset(int(value&0x07), 0x8000, max32K(len(c.prg)))
	if value&0x10 != 0 {
		m.mirroring = MirrorSingle1
	} else {
		m.mirroring = MirrorSingle0
	}
	return true
}

// 只有 16KB PRG 的卡带按 32KB 处理, 读取时取模
func max32K(n int) int {
	if n < 0x8000 {
		return 0x8000
	}
	return n
}
