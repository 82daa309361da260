package nes

// DMC 速率, 单位是APU时钟
var dmcTable = [16]uint16{
	214, 190, 170, 160, 143, 127, 113, 107, 95, 80, 71, 64, 53, 42, 36, 27,
}

/*
DMC
$4010	%IL-- RRRR	IRQ使能 (I), 循环 (L), 速率 (R)
$4011	%-DDD DDDD	直接写入输出值
$4012	%AAAA AAAA	样本地址 %11AAAAAA.AA000000
$4013	%LLLL LLLL	样本长度 %LLLL.LLLL0001

样本字节通过总线读取, 读取时CPU暂停
*/
type dmc struct {
	irqEnabled bool
	loop       bool
	irq        bool

	rate  uint16
	timer uint16

	value byte // DAC值 0..127

	sampleAddress  uint16
	sampleLength   uint16
	currentAddress uint16
	bytesLeft      uint16

	buffer      byte
	bufferEmpty bool

	shifter  byte
	bitsLeft byte
	silence  bool
}

func newDMC() dmc {
	return dmc{
		rate:        dmcTable[0],
		bufferEmpty: true,
		bitsLeft:    8,
		silence:     true,
	}
}

func (d *dmc) write(reg uint16, value byte) {
	switch reg {
	case 0:
		d.irqEnabled = value&0x80 != 0
		d.loop = value&0x40 != 0
		d.rate = dmcTable[value&0x0F]
		if !d.irqEnabled {
			d.irq = false
		}
	case 1:
		d.value = value & 0x7F
	case 2:
		d.sampleAddress = 0xC000 | uint16(value)<<6
	case 3:
		d.sampleLength = uint16(value)<<4 | 1
	}
}

func (d *dmc) restart() {
	d.currentAddress = d.sampleAddress
	d.bytesLeft = d.sampleLength
}

// $4015 写入
func (d *dmc) setEnabled(on bool) {
	d.irq = false
	if !on {
		d.bytesLeft = 0
	} else if d.bytesLeft == 0 {
		d.restart()
	}
}

func (d *dmc) clock(bus *Bus) {
	d.fetch(bus)

	if d.timer > 0 {
		d.timer--
		return
	}
	d.timer = d.rate - 1
	d.clockOutput()
}

// 缓冲为空时取下一个样本字节
func (d *dmc) fetch(bus *Bus) {
	if !d.bufferEmpty || d.bytesLeft == 0 {
		return
	}

	d.buffer = bus.Read(d.currentAddress)
	d.bufferEmpty = false
	bus.DMCStall = 2

	d.currentAddress++
	if d.currentAddress == 0 {
		d.currentAddress = 0x8000
	}
	d.bytesLeft--
	if d.bytesLeft == 0 {
		if d.loop {
			d.restart()
		} else if d.irqEnabled {
			d.irq = true
		}
	}
}

func (d *dmc) clockOutput() {
	if !d.silence {
		if d.shifter&1 == 1 {
			if d.value <= 125 {
				d.value += 2
			}
		} else if d.value >= 2 {
			d.value -= 2
		}
		d.shifter >>= 1
	}

	d.bitsLeft--
	if d.bitsLeft == 0 {
		d.bitsLeft = 8
		if d.bufferEmpty {
			d.silence = true
		} else {
			d.silence = false
			d.shifter = d.buffer
			d.bufferEmpty = true
		}
	}
}

func (d *dmc) output() byte {
	return d.value
}
