package nes

/*
mapper0 (NROM)
16KB 的卡带 $C000 是 $8000 的镜像
*/
type mapper0 struct{}

func (m *mapper0) cpuRead(c *Cartridge, addr uint16) (byte, bool) {
	if addr >= 0x8000 {
		return c.prg[int(addr-0x8000)%len(c.prg)], true
	}
	return c.sramRead(addr)
}

func (m *mapper0) cpuWrite(c *Cartridge, addr uint16, value byte) bool {
	if addr >= 0x8000 {
		// ROM 不可写, 但地址属于卡带
		return true
	}
	return c.sramWrite(addr, value)
}
