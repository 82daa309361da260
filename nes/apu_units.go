package nes

// 5bit(<=31)的长度计数器值是索引，索引到下面的数组的值才是真实值
var lengthTable = [32]byte{
	10, 254, 20, 2, 40, 4, 80, 6, 160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 18, 48, 20, 96, 22, 192, 24, 72, 26, 16, 28, 32, 30,
}

/*
包络 (方波和噪声共用)

--LC VVVV
L: 包络循环 (同时是长度计数器暂停)
C: 1 固定音量, 0 使用包络
VVVV: 固定音量, 或者包络分频器周期
*/
type envelope struct {
	start    bool
	loop     bool
	constant bool
	period   byte // 分频器P值, 也是固定音量
	divider  byte
	decay    byte // 包络音量 15..0
}

func (e *envelope) write(value byte) {
	e.loop = value&0x20 != 0
	e.constant = value&0x10 != 0
	e.period = value & 0x0F
}

// 帧计数器的 1/4 帧时钟
func (e *envelope) clock() {
	if e.start {
		e.start = false
		e.decay = 15
		e.divider = e.period
		return
	}
	if e.divider > 0 {
		e.divider--
		return
	}
	e.divider = e.period
	if e.decay > 0 {
		e.decay--
	} else if e.loop {
		e.decay = 15
	}
}

func (e *envelope) volume() byte {
	if e.constant {
		return e.period
	}
	return e.decay
}

// 长度计数器，到0就静音。$4015 关闭声道时清零并且不再接受加载
type lengthCounter struct {
	enabled bool
	halt    bool
	value   byte
}

func (l *lengthCounter) load(index byte) {
	if l.enabled {
		l.value = lengthTable[index&0x1F]
	}
}

func (l *lengthCounter) setEnabled(on bool) {
	l.enabled = on
	if !on {
		l.value = 0
	}
}

// 帧计数器的 1/2 帧时钟
func (l *lengthCounter) clock() {
	if !l.halt && l.value > 0 {
		l.value--
	}
}

func (l *lengthCounter) active() bool {
	return l.value > 0
}
