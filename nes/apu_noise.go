package nes

// 噪声周期, 单位是APU时钟
var noiseTable = [16]uint16{
	2, 4, 8, 16, 32, 48, 64, 80, 101, 127, 190, 254, 381, 508, 1017, 2034,
}

/*
噪声
$400C	%--LC VVVV  包络
$400E	%M--- PPPP	短模式 (M), 周期 (P)
$400F	%LLLL L---	长度计数器加载索引值

噪声声道有一个15bit的LFSR, 每次输出最低的bit位:
1. 将D0位与D1做异或运算, 如果是短模式则是D0位和D6位做异或运算
2. LFSR右移一位, 并将之前运算结果作为最高位(D14)
D0为0才输出音量
*/
type noise struct {
	shortMode   bool
	lfsr        uint16
	timerPeriod uint16
	timer       uint16

	envelope envelope
	length   lengthCounter
}

func (n *noise) write(reg uint16, value byte) {
	switch reg {
	case 0:
		n.length.halt = value&0x20 != 0
		n.envelope.write(value)
	case 2:
		n.shortMode = value&0x80 != 0
		n.timerPeriod = noiseTable[value&0x0F]
	case 3:
		n.length.load(value >> 3)
		n.envelope.start = true
	}
}

func (n *noise) clockTimer() {
	if n.timer > 0 {
		n.timer--
		return
	}
	n.timer = n.timerPeriod

	tap := uint16(1)
	if n.shortMode {
		tap = 6
	}
	feedback := (n.lfsr & 1) ^ ((n.lfsr >> tap) & 1)
	n.lfsr = n.lfsr>>1 | feedback<<14
}

func (n *noise) output() byte {
	if !n.length.active() || n.lfsr&1 != 0 {
		return 0
	}
	return n.envelope.volume()
}
