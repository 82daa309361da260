package nes

// mapper2 (UxROM), 魂斗罗/沙曼陀蛇都是mapper2
// $8000 切换的 16KB bank, $C000 固定为最后一个 bank
type mapper2 struct {
	prgBank1 int
	prgBank2 int
}

func (m *mapper2) reset(c *Cartridge) {
	m.prgBank1 = 0
	m.prgBank2 = bankOffset(-1, prgBankSize, len(c.prg))
}

func (m *mapper2) cpuRead(c *Cartridge, addr uint16) (byte, bool) {
	switch {
	case addr >= 0xC000:
		return c.prg[m.prgBank2+int(addr-0xC000)], true
	case addr >= 0x8000:
		return c.prg[m.prgBank1+int(addr-0x8000)], true
	}
	return 0, false
}

func (m *mapper2) cpuWrite(c *Cartridge, addr uint16, value byte) bool {
	if addr >= 0x8000 {
		m.prgBank1 = bankOffset(int(value&0x0F), prgBankSize, len(c.prg))
		return true
	}
	return false
}
