package nes

// mapper4 (MMC3)
//
// 4对寄存器都在 $8000 以上, 偶数地址和奇数地址分别对应一个寄存器:
//
//	$8000 偶: bank select   $8001 奇: bank data
//	$A000 偶: mirroring     $A001 奇: PRG RAM 保护 (不实现)
//	$C000 偶: IRQ latch     $C001 奇: IRQ reload
//	$E000 偶: IRQ disable   $E001 奇: IRQ enable
//
// 每次写寄存器后计算出每个bank对应的地址offset.
type mapper4 struct {
	regIndex  byte    // 寄存器索引
	registers [8]byte // R0-R7
	prgMode   byte    // prg bank mode 0/1
	chrMode   byte    // chr倒置逻辑。 0/1

	reload     byte // 计数器总时长
	counter    byte // 计数器当前值
	irqEnable  bool // IRQ中断开关
	irqActive  bool // IRQ 线, 写 $E000 才会清除
	prgOffsets [4]int
	chrOffsets [8]int

	mirroring    Mirroring
	mirroringSet bool
}

func (m *mapper4) reset(c *Cartridge) {
	*m = mapper4{}
	m.updateOffsets(c)
}

func (m *mapper4) cpuRead(c *Cartridge, addr uint16) (byte, bool) {
	if addr >= 0x8000 {
		a := addr - 0x8000
		bank := a / 0x2000
		offset := a % 0x2000
		return c.prg[m.prgOffsets[bank]+int(offset)], true
	}
	return c.sramRead(addr)
}

func (m *mapper4) cpuWrite(c *Cartridge, addr uint16, value byte) bool {
	if addr >= 0x8000 {
		m.writeRegister(c, addr, value)
		return true
	}
	return c.sramWrite(addr, value)
}

func (m *mapper4) ppuRead(c *Cartridge, addr uint16) byte {
	bank := (addr & 0x1FFF) / 0x0400
	offset := addr % 0x0400
	return c.chr[m.chrOffsets[bank]+int(offset)]
}

func (m *mapper4) ppuWrite(c *Cartridge, addr uint16, value byte) {
	bank := (addr & 0x1FFF) / 0x0400
	offset := addr % 0x0400
	c.chrWrite(m.chrOffsets[bank]+int(offset), value)
}

func (m *mapper4) writeRegister(c *Cartridge, addr uint16, value byte) {
	even := addr%2 == 0

	switch {
	case addr <= 0x9FFF && even:
		// 低三位选择下次写 bank data 时的目标寄存器
		m.regIndex = value & 7
		m.prgMode = (value >> 6) & 1
		m.chrMode = (value >> 7) & 1
		m.updateOffsets(c)
	case addr <= 0x9FFF:
		if m.regIndex >= 6 {
			value &= 0x3F
		}
		m.registers[m.regIndex] = value
		m.updateOffsets(c)
	case addr <= 0xBFFF && even:
		if value&1 == 1 {
			m.mirroring = MirrorHorizontal
		} else {
			m.mirroring = MirrorVertical
		}
		m.mirroringSet = true
	case addr <= 0xBFFF:
		// PRG RAM 保护，可不实现
	case addr <= 0xDFFF && even:
		m.reload = value
	case addr <= 0xDFFF:
		// 下一条扫描线重新载入
		m.counter = 0
	case even:
		m.irqEnable = false
		m.irqActive = false
	default:
		m.irqEnable = true
	}
}

// notifyScanline 计数器为0时重新载入, 否则减1. 之后为0并且开启了中断则拉起IRQ线.
// 载入 N 之后, 再经过 N 条扫描线触发中断; N 为 0 时每条扫描线都触发.
func (m *mapper4) notifyScanline() {
	if m.counter == 0 {
		m.counter = m.reload
	} else {
		m.counter--
	}
	if m.counter == 0 && m.irqEnable {
		m.irqActive = true
	}
}

// 这里就直接参考 https://wiki.nesdev.org/w/index.php/MMC3 的表格
func (m *mapper4) updateOffsets(c *Cartridge) {
	prg := func(b int) int { return bankOffset(b, 0x2000, len(c.prg)) }
	chr := func(b int) int { return bankOffset(b, 0x0400, len(c.chr)) }

	if m.prgMode == 0 {
		m.prgOffsets[0] = prg(int(m.registers[6]))
		m.prgOffsets[1] = prg(int(m.registers[7]))
		m.prgOffsets[2] = prg(-2)
		m.prgOffsets[3] = prg(-1)
	} else {
		m.prgOffsets[0] = prg(-2)
		m.prgOffsets[1] = prg(int(m.registers[7]))
		m.prgOffsets[2] = prg(int(m.registers[6]))
		m.prgOffsets[3] = prg(-1)
	}

	r := m.registers
	lo := [4]int{
		chr(int(r[0]) & 0xFE), chr(int(r[0]) | 0x01),
		chr(int(r[1]) & 0xFE), chr(int(r[1]) | 0x01),
	}
	hi := [4]int{chr(int(r[2])), chr(int(r[3])), chr(int(r[4])), chr(int(r[5]))}

	if m.chrMode == 0 {
		copy(m.chrOffsets[0:4], lo[:])
		copy(m.chrOffsets[4:8], hi[:])
	} else {
		copy(m.chrOffsets[0:4], hi[:])
		copy(m.chrOffsets[4:8], lo[:])
	}
}
