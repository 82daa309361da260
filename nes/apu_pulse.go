package nes

// 占空比序列, 从最高位开始输出
var dutyTable = [4]byte{
	0b01000000, // 12.5%
	0b01100000, // 25%
	0b01111000, // 50%
	0b10011111, // 25% 反相
}

/*
方波
0x4000/0x4004 --- %DDLCVVVV  占空比, 包络
0x4001/0x4005 --- %EPPP NSSS 扫描单元: enabled (E), period (P), 负向扫描 (N), 位移次数 (S)
0x4002/0x4006 --- %LLLLLLLL 声道周期Timer低8位
0x4003/0x4007 --- %LLLLLHHH  H: 声道周期Timer高三位 L：长度计数器加载索引值
*/
type pulse struct {
	channel byte // 哪个方波 1/2

	duty     byte
	dutyStep byte

	timerPeriod uint16
	timer       uint16

	envelope envelope
	length   lengthCounter

	sweepEnabled bool
	sweepNegate  bool
	sweepReload  bool
	sweepPeriod  byte
	sweepShift   byte
	sweepDivider byte
}

func (p *pulse) write(reg uint16, value byte) {
	switch reg {
	case 0:
		p.duty = value >> 6
		p.length.halt = value&0x20 != 0
		p.envelope.write(value)
	case 1:
		p.sweepEnabled = value&0x80 != 0
		p.sweepPeriod = (value >> 4) & 0x07
		p.sweepNegate = value&0x08 != 0
		p.sweepShift = value & 0x07
		p.sweepReload = true
	case 2:
		p.timerPeriod = p.timerPeriod&0xFF00 | uint16(value)
	case 3:
		p.timerPeriod = p.timerPeriod&0x00FF | uint16(value&0x07)<<8
		p.length.load(value >> 3)
		p.envelope.start = true
		p.dutyStep = 0
	}
}

func (p *pulse) clockTimer() {
	if p.timer == 0 {
		p.timer = p.timerPeriod
		p.dutyStep = (p.dutyStep + 1) % 8
	} else {
		p.timer--
	}
}

// 扫描单元的目标周期, 方波一负向时要额外减1
func (p *pulse) sweepTarget() uint16 {
	change := p.timerPeriod >> p.sweepShift
	if !p.sweepNegate {
		return p.timerPeriod + change
	}
	if p.channel == 1 {
		change++
	}
	if change > p.timerPeriod {
		return 0
	}
	return p.timerPeriod - change
}

// 声道timer周期<8，或者目标周期超过11bit的范围，静音
func (p *pulse) muted() bool {
	return p.timerPeriod < 8 || (!p.sweepNegate && p.sweepTarget() > 0x7FF)
}

func (p *pulse) clockSweep() {
	if p.sweepDivider == 0 && p.sweepEnabled && p.sweepShift > 0 && !p.muted() {
		p.timerPeriod = p.sweepTarget()
	}
	if p.sweepDivider == 0 || p.sweepReload {
		p.sweepDivider = p.sweepPeriod
		p.sweepReload = false
	} else {
		p.sweepDivider--
	}
}

func (p *pulse) output() byte {
	if !p.length.active() || p.muted() {
		return 0
	}
	if dutyTable[p.duty]&(0x80>>p.dutyStep) == 0 {
		return 0
	}
	return p.envelope.volume()
}
