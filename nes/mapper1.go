package nes

// mapper1 (MMC1), 中东战争可以用来测试
//
// 寄存器通过串行写入: 连续写5次, 每次写入 bit0, 第5次写入的地址决定目标寄存器.
// 写入的值 bit7 为 1 时复位移位寄存器.
type mapper1 struct {
	shiftRegister byte
	control       byte
	prgMode       byte
	chrMode       byte
	chrBank0      byte
	chrBank1      byte
	prgBank       byte
	prgOffsets    [2]int
	chrOffsets    [2]int

	mirroring    Mirroring
	mirroringSet bool // 写过控制寄存器之后才覆盖文件头的镜像模式
}

func (m *mapper1) reset(c *Cartridge) {
	m.shiftRegister = 0x10
	m.chrBank0 = 0
	m.chrBank1 = 0
	m.prgBank = 0
	m.mirroringSet = false

	// 上电时 PRG 模式 3: 最后一个 bank 固定在 $C000
	m.control = 0x0C
	m.prgMode = 3
	m.chrMode = 0
	m.updateOffsets(c)
}

func (m *mapper1) cpuRead(c *Cartridge, addr uint16) (byte, bool) {
	if addr >= 0x8000 {
		a := addr - 0x8000
		bank := a / 0x4000
		offset := a % 0x4000
		return c.prg[m.prgOffsets[bank]+int(offset)], true
	}
	return c.sramRead(addr)
}

func (m *mapper1) cpuWrite(c *Cartridge, addr uint16, value byte) bool {
	if addr >= 0x8000 {
		m.loadRegister(c, addr, value)
		return true
	}
	return c.sramWrite(addr, value)
}

func (m *mapper1) ppuRead(c *Cartridge, addr uint16) byte {
	bank := (addr & 0x1FFF) / 0x1000
	offset := addr % 0x1000
	return c.chr[m.chrOffsets[bank]+int(offset)]
}

func (m *mapper1) ppuWrite(c *Cartridge, addr uint16, value byte) {
	bank := (addr & 0x1FFF) / 0x1000
	offset := addr % 0x1000
	c.chrWrite(m.chrOffsets[bank]+int(offset), value)
}

func (m *mapper1) loadRegister(c *Cartridge, addr uint16, value byte) {
	// D7==1
	if value&0x80 == 0x80 {
		m.shiftRegister = 0x10
		m.writeControl(c, m.control|0x0C)
		return
	}

	complete := m.shiftRegister&1 == 1
	m.shiftRegister >>= 1
	m.shiftRegister |= (value & 1) << 4
	if complete {
		// 5次了
		m.writeRegister(c, addr, m.shiftRegister)
		m.shiftRegister = 0x10
	}
}

func (m *mapper1) writeRegister(c *Cartridge, addr uint16, value byte) {
	switch {
	case addr <= 0x9FFF:
		m.writeControl(c, value)
	case addr <= 0xBFFF:
		// CHR bank 0 ($A000-$BFFF)
		m.chrBank0 = value & 0x1F
		m.updateOffsets(c)
	case addr <= 0xDFFF:
		// CHR bank 1 ($C000-$DFFF)
		m.chrBank1 = value & 0x1F
		m.updateOffsets(c)
	default:
		// PRG bank ($E000-$FFFF)
		m.prgBank = value & 0x0F
		m.updateOffsets(c)
	}
}

func (m *mapper1) writeControl(c *Cartridge, value byte) {
	m.control = value
	m.prgMode = (value >> 2) & 0x3
	m.chrMode = (value >> 4) & 1

	// 这里mirror值和Mirroring并不是直接对应的
	switch value & 0x3 {
	case 0:
		m.mirroring = MirrorSingle0
	case 1:
		m.mirroring = MirrorSingle1
	case 2:
		m.mirroring = MirrorVertical
	case 3:
		m.mirroring = MirrorHorizontal
	}
	m.mirroringSet = true

	m.updateOffsets(c)
}

// updateOffsets
//
//	PRG 模式 0, 1: $8000 切换 32KB, 忽略 bank 号最低位
//	PRG 模式 2: $8000 固定第一个 bank, $C000 切换 16KB
//	PRG 模式 3: $C000 固定最后一个 bank, $8000 切换 16KB
//	CHR 模式 0: 一次切换 8KB; 1: 两个独立的 4KB bank
func (m *mapper1) updateOffsets(c *Cartridge) {
	prg := func(b int) int { return bankOffset(b, 0x4000, len(c.prg)) }
	chr := func(b int) int { return bankOffset(b, 0x1000, len(c.chr)) }

	switch m.prgMode {
	case 0, 1:
		m.prgOffsets[0] = prg(int(m.prgBank & 0xFE))
		m.prgOffsets[1] = prg(int(m.prgBank | 0x01))
	case 2:
		m.prgOffsets[0] = 0
		m.prgOffsets[1] = prg(int(m.prgBank))
	case 3:
		m.prgOffsets[0] = prg(int(m.prgBank))
		m.prgOffsets[1] = prg(-1)
	}

	switch m.chrMode {
	case 0:
		m.chrOffsets[0] = chr(int(m.chrBank0 & 0xFE))
		m.chrOffsets[1] = chr(int(m.chrBank0 | 0x01))
	case 1:
		m.chrOffsets[0] = chr(int(m.chrBank0))
		m.chrOffsets[1] = chr(int(m.chrBank1))
	}
}
