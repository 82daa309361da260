package nes

/*
PPU 寄存器

$2000 PPUCTRL
7  bit  0
VPHB SINN
|||| ||++- 基础 nametable 地址 (0 = $2000; 1 = $2400; 2 = $2800; 3 = $2C00)
|||| |+--- VRAM 地址增量 (0: +1; 1: +32)
|||| +---- 8x8 精灵的 pattern table (0: $0000; 1: $1000)
|||+------ 背景 pattern table (0: $0000; 1: $1000)
||+------- 精灵尺寸 (0: 8x8; 1: 8x16)
|+-------- PPU master/slave
+--------- VBlank 时是否触发 NMI

$2001 PPUMASK
BGRs bMmG
|||| |||+- 灰度
|||| ||+-- 显示最左边8像素的背景
|||| |+--- 显示最左边8像素的精灵
|||| +---- 显示背景
|||+------ 显示精灵
+++------- 色彩强调 (不实现)

$2002 PPUSTATUS
VSO. ....
|||
||+------- 精灵溢出
|+-------- 0号精灵命中
+--------- VBlank
*/

// Ctrl is the PPUCTRL register.
type Ctrl byte

const (
	CtrlNametableX     Ctrl = 0x01
	CtrlNametableY     Ctrl = 0x02
	CtrlIncrementMode  Ctrl = 0x04
	CtrlSpritePattern  Ctrl = 0x08
	CtrlBackgroundPatt Ctrl = 0x10
	CtrlSpriteSize     Ctrl = 0x20
	CtrlMasterSlave    Ctrl = 0x40
	CtrlEnableNMI      Ctrl = 0x80
)

func (c Ctrl) Has(f Ctrl) bool {
	return c&f != 0
}

// IncrementAmount is the step applied to the VRAM address after a $2007
// access.
func (c Ctrl) IncrementAmount() uint16 {
	if c.Has(CtrlIncrementMode) {
		return 32
	}
	return 1
}

func (c Ctrl) SpriteHeight() int {
	if c.Has(CtrlSpriteSize) {
		return 16
	}
	return 8
}

func (c Ctrl) SpriteTable() uint16 {
	if c.Has(CtrlSpritePattern) {
		return 0x1000
	}
	return 0
}

func (c Ctrl) BackgroundTable() uint16 {
	if c.Has(CtrlBackgroundPatt) {
		return 0x1000
	}
	return 0
}

// Mask is the PPUMASK register.
type Mask byte

const (
	MaskGreyscale      Mask = 0x01
	MaskBackgroundLeft Mask = 0x02
	MaskSpriteLeft     Mask = 0x04
	MaskBackground     Mask = 0x08
	MaskSprites        Mask = 0x10
)

func (m Mask) Has(f Mask) bool {
	return m&f != 0
}

// Rendering is true when either layer is switched on.
func (m Mask) Rendering() bool {
	return m&(MaskBackground|MaskSprites) != 0
}

// Status is the PPUSTATUS register.
type Status byte

const (
	StatusSpriteOverflow Status = 0x20
	StatusSpriteZeroHit  Status = 0x40
	StatusVBlank         Status = 0x80
)

func (s Status) Has(f Status) bool {
	return s&f != 0
}

func (s *Status) Set(f Status, on bool) {
	if on {
		*s |= f
	} else {
		*s &^= f
	}
}

/*
Loopy 寄存器 (v/t)，15位

yyy NN YYYYY XXXXX
||| || ||||| +++++-- coarse X
||| || +++++-------- coarse Y
||| ++-------------- nametable 选择
+++----------------- fine Y
*/
type Loopy uint16

const (
	loopyCoarseX    = 0x001F
	loopyCoarseY    = 0x03E0
	loopyNametableX = 0x0400
	loopyNametableY = 0x0800
	loopyFineY      = 0x7000
)

func (l Loopy) CoarseX() uint16 {
	return uint16(l) & loopyCoarseX
}

func (l Loopy) CoarseY() uint16 {
	return (uint16(l) & loopyCoarseY) >> 5
}

func (l Loopy) NametableX() uint16 {
	return (uint16(l) & loopyNametableX) >> 10
}

func (l Loopy) NametableY() uint16 {
	return (uint16(l) & loopyNametableY) >> 11
}

func (l Loopy) FineY() uint16 {
	return (uint16(l) & loopyFineY) >> 12
}

func (l *Loopy) SetCoarseX(v uint16) {
	*l = Loopy(uint16(*l)&^loopyCoarseX | v&0x1F)
}

func (l *Loopy) SetCoarseY(v uint16) {
	*l = Loopy(uint16(*l)&^loopyCoarseY | (v&0x1F)<<5)
}

func (l *Loopy) SetNametableX(v uint16) {
	*l = Loopy(uint16(*l)&^loopyNametableX | (v&1)<<10)
}

func (l *Loopy) SetNametableY(v uint16) {
	*l = Loopy(uint16(*l)&^loopyNametableY | (v&1)<<11)
}

func (l *Loopy) SetFineY(v uint16) {
	*l = Loopy(uint16(*l)&^loopyFineY | (v&7)<<12)
}

// Mirroring 镜像模式，一般常用的是 Horizontal、Vertical
type Mirroring byte

const (
	MirrorHorizontal Mirroring = iota
	MirrorVertical
	MirrorSingle0
	MirrorSingle1
	MirrorFour
)

var mirrorLookup = [...][4]uint16{
	{0, 0, 1, 1},
	{0, 1, 0, 1},
	{0, 0, 0, 0},
	{1, 1, 1, 1},
	{0, 1, 2, 3},
}

func (m Mirroring) String() string {
	switch m {
	case MirrorHorizontal:
		return "horizontal"
	case MirrorVertical:
		return "vertical"
	case MirrorSingle0:
		return "single-screen (lower)"
	case MirrorSingle1:
		return "single-screen (upper)"
	case MirrorFour:
		return "four-screen"
	}
	return "unknown"
}

// nametable 返回 $2000-$3EFF 范围内地址对应的物理 nametable 和偏移
func (m Mirroring) nametable(addr uint16) (table int, offset uint16) {
	addr = (addr - 0x2000) % 0x1000
	return int(mirrorLookup[m][addr/0x0400]), addr % 0x0400
}
