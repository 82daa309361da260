/*
PPU
负责图像处理和输出，最复杂的部分

关于时序
每帧 -1..260 共262根扫描线，每个扫描线341个时钟(0..340)
扫描线 0 - 239 的 1 - 256 周期可见，0时钟空闲。
241 的第1个时钟设置 VBlank 并触发 NMI，-1 (预渲染线) 的第1个时钟清除。
奇数帧且开启渲染时，预渲染线少一个时钟。

每 8 个点看作一个单位：

	时钟 0 - 1 取 Name table 数据
	时钟 2 - 3 取 Attribute table 数据
	时钟 4 - 5 读取 tile 低 8 位
	时钟 6 - 7 读取 tile 高 8 位, 然后 coarse X + 1

读取的数据会进入锁存器，在下一个单位开始时进入16位移位寄存器
*/
package nes

import (
	"image"
)

// Screen dimensions.
const (
	ScreenWidth  = 256
	ScreenHeight = 240
)

// PPU is the 2C02 picture processor. Its memory and registers live on the bus
// (see PPUBus); the PPU itself only holds the rendering pipeline.
type PPU struct {
	Cycle    int
	ScanLine int
	Frame    uint64

	odd bool

	front *image.RGBA
	back  *image.RGBA

	frameReady   bool
	nmiRequested bool

	// 背景锁存器
	nextTile  byte
	nextAttr  byte
	nextPatLo byte
	nextPatHi byte

	// 背景移位寄存器
	bgPatLo  uint16
	bgPatHi  uint16
	bgAttrLo uint16
	bgAttrHi uint16

	// 当前扫描线的精灵
	spriteCount  int
	sprites      [8]OAMEntry
	spritePatLo  [8]byte
	spritePatHi  [8]byte
	spriteZeroIn bool // 0号精灵在本扫描线上
}

// 水平翻转用的位反转表
var reverseBits [256]byte

func init() {
	for i := 0; i < 256; i++ {
		var r byte
		for b := 0; b < 8; b++ {
			if i&(1<<b) != 0 {
				r |= 0x80 >> b
			}
		}
		reverseBits[i] = r
	}
}

// NewPPU creates a PPU in its power on state.
func NewPPU() *PPU {
	ppu := &PPU{}
	ppu.front = image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight))
	ppu.back = image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight))
	ppu.Reset()
	return ppu
}

// Reset puts the PPU at the end of the post-render line so that the first
// VBlank arrives shortly after power on.
func (ppu *PPU) Reset() {
	ppu.Cycle = 340
	ppu.ScanLine = 240
	ppu.Frame = 0
	ppu.odd = false
	ppu.frameReady = false
	ppu.nmiRequested = false
	ppu.bgPatLo, ppu.bgPatHi, ppu.bgAttrLo, ppu.bgAttrHi = 0, 0, 0, 0
	ppu.spriteCount = 0
	ppu.spriteZeroIn = false
}

// NMIRequested reports, once, that the PPU raised an NMI.
func (ppu *PPU) NMIRequested() bool {
	r := ppu.nmiRequested
	ppu.nmiRequested = false
	return r
}

// TryGetFrame returns the most recently completed frame. Each frame is
// returned only once. The image is reused by the PPU two frames later so the
// caller must copy it if it wants to keep it.
func (ppu *PPU) TryGetFrame() (*image.RGBA, bool) {
	if !ppu.frameReady {
		return nil, false
	}
	ppu.frameReady = false
	return ppu.front, true
}

// Clock advances the PPU by one dot.
func (ppu *PPU) Clock(bus *Bus) {
	pb := &bus.PPU

	// VBlank 期间打开 NMI 开关
	if pb.nmiOnEnable {
		pb.nmiOnEnable = false
		ppu.nmiRequested = true
	}

	rendering := pb.Mask.Rendering()

	if ppu.ScanLine >= -1 && ppu.ScanLine < 240 {
		if ppu.ScanLine == -1 && ppu.Cycle == 1 {
			pb.Status.Set(StatusVBlank|StatusSpriteZeroHit|StatusSpriteOverflow, false)
			ppu.spritePatLo = [8]byte{}
			ppu.spritePatHi = [8]byte{}
		}

		if (ppu.Cycle >= 2 && ppu.Cycle <= 256) || (ppu.Cycle >= 321 && ppu.Cycle <= 337) {
			ppu.updateShifters(pb)

			switch (ppu.Cycle - 1) % 8 {
			case 0:
				ppu.loadShifters()
				ppu.nextTile = bus.ppuRead(0x2000 | uint16(pb.V)&0x0FFF)
			case 2:
				ppu.fetchAttribute(bus)
			case 4:
				ppu.nextPatLo = bus.ppuRead(ppu.patternAddress(pb))
			case 6:
				ppu.nextPatHi = bus.ppuRead(ppu.patternAddress(pb) + 8)
			case 7:
				if rendering {
					incrementX(&pb.V)
				}
			}
		}

		if rendering {
			if ppu.Cycle == 256 {
				incrementY(&pb.V)
			}
			if ppu.Cycle == 257 {
				ppu.loadShifters()
				transferX(&pb.V, pb.T)
			}
			// 280 - 304期间要将垂直Y位置信息从t copy到v
			if ppu.ScanLine == -1 && ppu.Cycle >= 280 && ppu.Cycle <= 304 {
				transferY(&pb.V, pb.T)
			}
		}

		if ppu.Cycle == 257 {
			ppu.spriteCount = 0
			ppu.spritePatLo = [8]byte{}
			ppu.spritePatHi = [8]byte{}
			if ppu.ScanLine >= 0 {
				ppu.evaluateSprites(pb)
			}
		}

		if ppu.Cycle == 340 {
			ppu.fetchSpritePatterns(bus)
		}

		// MMC3 之类的 mapper 靠这里数扫描线
		if rendering && ppu.Cycle == 260 && bus.Cartridge != nil {
			bus.Cartridge.notifyScanline()
		}
	}

	if ppu.ScanLine == 241 && ppu.Cycle == 1 {
		pb.Status.Set(StatusVBlank, true)
		if pb.Ctrl.Has(CtrlEnableNMI) {
			ppu.nmiRequested = true
		}
	}

	if ppu.ScanLine >= 0 && ppu.ScanLine < 240 && ppu.Cycle >= 1 && ppu.Cycle <= 256 {
		ppu.renderPixel(bus)
	}

	ppu.advance(rendering)
}

func (ppu *PPU) advance(rendering bool) {
	ppu.Cycle++

	// 奇数帧预渲染线跳过最后一个时钟
	if rendering && ppu.odd && ppu.ScanLine == -1 && ppu.Cycle == 340 {
		ppu.Cycle++
	}

	if ppu.Cycle > 340 {
		ppu.Cycle = 0
		ppu.ScanLine++
		if ppu.ScanLine > 260 {
			ppu.ScanLine = -1
			ppu.odd = !ppu.odd
			ppu.Frame++
			ppu.front, ppu.back = ppu.back, ppu.front
			ppu.frameReady = true
		}
	}
}

func (ppu *PPU) fetchAttribute(bus *Bus) {
	// 64字节的属性表，每个byte管理4*4个tile，每2*2个tile用2bit
	v := bus.PPU.V
	addr := 0x23C0 | v.NametableY()<<11 | v.NametableX()<<10 | (v.CoarseY()>>2)<<3 | v.CoarseX()>>2
	at := bus.ppuRead(addr)
	if v.CoarseY()&0x02 != 0 {
		at >>= 4
	}
	if v.CoarseX()&0x02 != 0 {
		at >>= 2
	}
	ppu.nextAttr = at & 0x03
}

func (ppu *PPU) patternAddress(pb *PPUBus) uint16 {
	return pb.Ctrl.BackgroundTable() + uint16(ppu.nextTile)<<4 + pb.V.FineY()
}

// loadShifters 把锁存器里的下一个 tile 放进移位寄存器的低8位
func (ppu *PPU) loadShifters() {
	ppu.bgPatLo = ppu.bgPatLo&0xFF00 | uint16(ppu.nextPatLo)
	ppu.bgPatHi = ppu.bgPatHi&0xFF00 | uint16(ppu.nextPatHi)

	var lo, hi uint16
	if ppu.nextAttr&0x01 != 0 {
		lo = 0xFF
	}
	if ppu.nextAttr&0x02 != 0 {
		hi = 0xFF
	}
	ppu.bgAttrLo = ppu.bgAttrLo&0xFF00 | lo
	ppu.bgAttrHi = ppu.bgAttrHi&0xFF00 | hi
}

func (ppu *PPU) updateShifters(pb *PPUBus) {
	if pb.Mask.Has(MaskBackground) {
		ppu.bgPatLo <<= 1
		ppu.bgPatHi <<= 1
		ppu.bgAttrLo <<= 1
		ppu.bgAttrHi <<= 1
	}

	// 精灵的X坐标当作倒计时, 到0之后开始移位
	if pb.Mask.Has(MaskSprites) && ppu.Cycle <= 257 {
		for i := 0; i < ppu.spriteCount; i++ {
			if ppu.sprites[i].X > 0 {
				ppu.sprites[i].X--
			} else {
				ppu.spritePatLo[i] <<= 1
				ppu.spritePatHi[i] <<= 1
			}
		}
	}
}

// 每次进入新的tile需要更新x
func incrementX(v *Loopy) {
	if v.CoarseX() == 31 {
		v.SetCoarseX(0)
		// switch horizontal nametable
		v.SetNametableX(^v.NametableX())
	} else {
		v.SetCoarseX(v.CoarseX() + 1)
	}
}

// 每行的256点, Y++
func incrementY(v *Loopy) {
	if v.FineY() < 7 {
		v.SetFineY(v.FineY() + 1)
		return
	}
	v.SetFineY(0)
	switch y := v.CoarseY(); y {
	case 29:
		v.SetCoarseY(0)
		// switch vertical nametable
		v.SetNametableY(^v.NametableY())
	case 31:
		// 属性表区域, 不切换 nametable
		v.SetCoarseY(0)
	default:
		v.SetCoarseY(y + 1)
	}
}

// v: ....A.. ...BCDEF <- t: ....A.. ...BCDEF
func transferX(v *Loopy, t Loopy) {
	v.SetCoarseX(t.CoarseX())
	v.SetNametableX(t.NametableX())
}

// v: GHIA.BC DEF..... <- t: GHIA.BC DEF.....
func transferY(v *Loopy, t Loopy) {
	v.SetFineY(t.FineY())
	v.SetNametableY(t.NametableY())
	v.SetCoarseY(t.CoarseY())
}

// https://github.com/dustpg/BlogFM/issues/17
// 最多8个精灵，超出精灵溢出位置1
func (ppu *PPU) evaluateSprites(pb *PPUBus) {
	h := pb.Ctrl.SpriteHeight()
	ppu.spriteZeroIn = false

	for i := 0; i < 64; i++ {
		e := pb.oamEntry(i)
		row := ppu.ScanLine - int(e.Y)
		if row < 0 || row >= h {
			continue
		}
		if ppu.spriteCount == 8 {
			pb.Status.Set(StatusSpriteOverflow, true)
			break
		}
		if i == 0 {
			ppu.spriteZeroIn = true
		}
		ppu.sprites[ppu.spriteCount] = e
		ppu.spriteCount++
	}
}

// 精灵的图样数据, 给下一条扫描线用
func (ppu *PPU) fetchSpritePatterns(bus *Bus) {
	pb := &bus.PPU
	for i := 0; i < ppu.spriteCount; i++ {
		e := ppu.sprites[i]
		row := ppu.ScanLine - int(e.Y)

		var addr uint16
		if pb.Ctrl.SpriteHeight() == 8 {
			if e.FlipY() {
				row = 7 - row
			}
			addr = pb.Ctrl.SpriteTable() + uint16(e.Tile)<<4 + uint16(row)
		} else {
			// 8x16 用 tile 的最低位选择图样表, 垂直翻转时上下两半也要交换
			table := uint16(e.Tile&0x01) * 0x1000
			tile := uint16(e.Tile & 0xFE)
			top := (row < 8) != e.FlipY()
			if !top {
				tile++
			}
			row &= 0x07
			if e.FlipY() {
				row = 7 - row
			}
			addr = table + tile<<4 + uint16(row)
		}

		lo := bus.ppuRead(addr)
		hi := bus.ppuRead(addr + 8)
		if e.FlipX() {
			lo = reverseBits[lo]
			hi = reverseBits[hi]
		}
		ppu.spritePatLo[i] = lo
		ppu.spritePatHi[i] = hi
	}
}

func (ppu *PPU) renderPixel(bus *Bus) {
	pb := &bus.PPU
	x := ppu.Cycle - 1
	y := ppu.ScanLine

	var bgPixel, bgPalette byte
	if pb.Mask.Has(MaskBackground) && (x >= 8 || pb.Mask.Has(MaskBackgroundLeft)) {
		bit := uint16(0x8000) >> pb.FineX
		bgPixel = b2u(ppu.bgPatHi&bit != 0)<<1 | b2u(ppu.bgPatLo&bit != 0)
		bgPalette = b2u(ppu.bgAttrHi&bit != 0)<<1 | b2u(ppu.bgAttrLo&bit != 0)
	}

	var fgPixel, fgPalette byte
	var fgFront, spriteZero bool
	if pb.Mask.Has(MaskSprites) && (x >= 8 || pb.Mask.Has(MaskSpriteLeft)) {
		// 排在前面的精灵优先
		for i := 0; i < ppu.spriteCount; i++ {
			if ppu.sprites[i].X != 0 {
				continue
			}
			p := (ppu.spritePatHi[i]>>7)<<1 | ppu.spritePatLo[i]>>7
			if p == 0 {
				continue
			}
			fgPixel = p
			fgPalette = ppu.sprites[i].Palette() + 4
			fgFront = !ppu.sprites[i].BehindBG()
			spriteZero = i == 0 && ppu.spriteZeroIn
			break
		}
	}

	var pixel, palette byte
	switch {
	case bgPixel == 0 && fgPixel == 0:
	case bgPixel == 0:
		pixel, palette = fgPixel, fgPalette
	case fgPixel == 0:
		pixel, palette = bgPixel, bgPalette
	default:
		if fgFront {
			pixel, palette = fgPixel, fgPalette
		} else {
			pixel, palette = bgPixel, bgPalette
		}
		if spriteZero && x < 255 {
			pb.Status.Set(StatusSpriteZeroHit, true)
		}
	}

	c := bus.ppuRead(0x3F00+uint16(palette)<<2+uint16(pixel)) & 0x3F
	ppu.back.SetRGBA(x, y, Palette[c])
}
