package nes

/*
bit:	7	6	5	4	3	2	1	0
button:	A	B	Select	Start	Up	Down	Left	Right
*/

/*
	只能往 4016 写（写 4017 给 APU 用了），
	读可以往 4016 和 4017 读。写 4016 时，对两个手柄都有效，
	读时则 4016 为 P1，4017 为 P2

	strobe 是选通, 为 1 时一直锁存当前按键状态
*/

const (
	ButtonA      byte = 0x80
	ButtonB      byte = 0x40
	ButtonSelect byte = 0x20
	ButtonStart  byte = 0x10
	ButtonUp     byte = 0x08
	ButtonDown   byte = 0x04
	ButtonLeft   byte = 0x02
	ButtonRight  byte = 0x01
)

// Controller is a standard joypad shift register.
type Controller struct {
	buttons byte // 主机侧的按键状态
	shift   byte // 锁存后逐位移出
	strobe  bool
}

func (c *Controller) SetButtons(mask byte) {
	c.buttons = mask
}

func (c *Controller) Buttons() byte {
	return c.buttons
}

// Write handles a write to $4016. Bit 0 is the strobe.
func (c *Controller) Write(value byte) {
	c.strobe = value&1 == 1
	if c.strobe {
		c.shift = c.buttons
	}
}

// Read returns the next button, A first. After all eight buttons have been
// read the register returns 1.
func (c *Controller) Read() byte {
	if c.strobe {
		return (c.buttons >> 7) & 1
	}
	v := (c.shift >> 7) & 1
	c.shift = c.shift<<1 | 1
	return v
}

func (c *Controller) peek() byte {
	if c.strobe {
		return (c.buttons >> 7) & 1
	}
	return (c.shift >> 7) & 1
}
