package nes

// mapper3 (CNROM), PRG 固定, 8KB CHR bank 可切换
type mapper3 struct {
	chrOffset int
}

func (m *mapper3) reset(c *Cartridge) {
	m.chrOffset = 0
}

func (m *mapper3) cpuRead(c *Cartridge, addr uint16) (byte, bool) {
	if addr >= 0x8000 {
		return c.prg[int(addr-0x8000)%len(c.prg)], true
	}
	return 0, false
}

func (m *mapper3) cpuWrite(c *Cartridge, addr uint16, value byte) bool {
	if addr >= 0x8000 {
		m.chrOffset = bankOffset(int(value&0x07), chrBankSize, len(c.chr))
		return true
	}
	return false
}

func (m *mapper3) ppuRead(c *Cartridge, addr uint16) byte {
	return c.chr[m.chrOffset+int(addr&0x1FFF)]
}
