package nes

// mapper66 (GxROM)
//
//	7  bit  0
//	--PP --CC
//	  ||   ++- 8KB CHR bank
//	  ++------ 32KB PRG bank
type mapper66 struct {
	prgOffset int
	chrOffset int
}

func (m *mapper66) reset(c *Cartridge) {
	m.prgOffset = 0
	m.chrOffset = 0
}

func (m *mapper66) cpuRead(c *Cartridge, addr uint16) (byte, bool) {
	if addr >= 0x8000 {
		return c.prg[(m.prgOffset+int(addr-0x8000))%len(c.prg)], true
	}
	return 0, false
}

func (m *mapper66) cpuWrite(c *Cartridge, addr uint16, value byte) bool {
	if addr < 0x8000 {
		return false
	}
	m.prgOffset = bankOffset(int(value>>4)&0x03, 0x8000, max32K(len(c.prg)))
	m.chrOffset = bankOffset(int(value&0x03), chrBankSize, len(c.chr))
	return true
}

func (m *mapper66) ppuRead(c *Cartridge, addr uint16) byte {
	return c.chr[m.chrOffset+int(addr&0x1FFF)]
}
