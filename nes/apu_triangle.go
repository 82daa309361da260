package nes

var triangleTable = [32]byte{
	15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

/*
三角波
$4008	%CRRR RRRR 暂停长度计数器/线性计数器控制(C), 线性计数器 (R)
$400A	%LLLLLLLL	声道周期Timer低8位
$400B	%LLLLLHHH	H：声道周期Timer高三位， L: 长度计数器加载索引值

三角波的 timer 按CPU时钟运行, 其它声道是CPU时钟的一半
*/
type triangle struct {
	timerPeriod uint16
	timer       uint16
	step        byte

	length lengthCounter

	control       bool
	linearReload  bool
	linearPeriod  byte
	linearCounter byte
}

func (t *triangle) write(reg uint16, value byte) {
	switch reg {
	case 0:
		t.control = value&0x80 != 0
		t.length.halt = t.control
		t.linearPeriod = value & 0x7F
	case 2:
		t.timerPeriod = t.timerPeriod&0xFF00 | uint16(value)
	case 3:
		t.timerPeriod = t.timerPeriod&0x00FF | uint16(value&0x07)<<8
		t.length.load(value >> 3)
		t.linearReload = true
	}
}

// 长度计数器和线性计数器都不为0时波形才前进
func (t *triangle) clockTimer() {
	if t.timer == 0 {
		t.timer = t.timerPeriod
		if t.length.active() && t.linearCounter > 0 {
			t.step = (t.step + 1) % 32
		}
	} else {
		t.timer--
	}
}

func (t *triangle) clockLinear() {
	if t.linearReload {
		t.linearCounter = t.linearPeriod
	} else if t.linearCounter > 0 {
		t.linearCounter--
	}
	if !t.control {
		t.linearReload = false
	}
}

// 停下来时保持最后的值, 避免爆音
func (t *triangle) output() byte {
	return triangleTable[t.step]
}
