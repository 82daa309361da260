package nes

import (
	"testing"

	"github.com/55utah/fc-simulator/test"
)

func newTestPPU(t *testing.T) (*PPU, *Bus) {
	t.Helper()
	// CHR-RAM, 方便写图样
	cart, err := LoadINES(makeROM(0, 1, 0, 0, nil))
	test.DemandSuccess(t, err)
	return NewPPU(), &Bus{Cartridge: cart}
}

// 运行到下一帧完成, 返回用掉的时钟数
func runToFrame(ppu *PPU, bus *Bus) int {
	n := 0
	for {
		ppu.Clock(bus)
		n++
		if _, ok := ppu.TryGetFrame(); ok {
			return n
		}
	}
}

func TestFrameLength(t *testing.T) {
	ppu, bus := newTestPPU(t)
	test.Equate(t, runToFrame(ppu, bus), 6821)
	test.Equate(t, runToFrame(ppu, bus), 89342)
	test.Equate(t, runToFrame(ppu, bus), 89342)

	// 开启渲染后奇数帧少一个时钟
	ppu, bus = newTestPPU(t)
	bus.PPU.Mask = MaskBackground
	test.Equate(t, runToFrame(ppu, bus), 6821)
	test.Equate(t, runToFrame(ppu, bus), 89341)
	test.Equate(t, runToFrame(ppu, bus), 89342)
	test.Equate(t, runToFrame(ppu, bus), 89341)
	test.Equate(t, ppu.Frame, 4)
}

func TestTimingRanges(t *testing.T) {
	ppu, bus := newTestPPU(t)
	bus.PPU.Mask = MaskBackground | MaskSprites
	for i := 0; i < 200000; i++ {
		ppu.Clock(bus)
		if ppu.ScanLine < -1 || ppu.ScanLine > 260 || ppu.Cycle < 0 || ppu.Cycle > 340 {
			t.Fatalf("out of range: scanline %d cycle %d", ppu.ScanLine, ppu.Cycle)
		}
	}
}

func TestVBlank(t *testing.T) {
	ppu, bus := newTestPPU(t)
	bus.PPU.Ctrl = CtrlEnableNMI

	// (240,340) -> (241,0) -> (241,1)
	for i := 0; i < 3; i++ {
		ppu.Clock(bus)
	}
	test.ExpectedSuccess(t, bus.PPU.Status.Has(StatusVBlank))
	test.ExpectedSuccess(t, ppu.NMIRequested())
	test.ExpectedFailure(t, ppu.NMIRequested())

	// 读 $2002 清除 VBlank
	test.Equate(t, bus.Read(0x2002)&0x80, 0x80)
	test.Equate(t, bus.Read(0x2002)&0x80, 0)

	// 预渲染线清除
	ppu, bus = newTestPPU(t)
	runToFrame(ppu, bus)
	test.ExpectedSuccess(t, bus.PPU.Status.Has(StatusVBlank))
	ppu.Clock(bus)
	ppu.Clock(bus)
	test.ExpectedFailure(t, bus.PPU.Status.Has(StatusVBlank))
}

func TestNMIOnEnable(t *testing.T) {
	ppu, bus := newTestPPU(t)
	for i := 0; i < 3; i++ {
		ppu.Clock(bus)
	}
	test.ExpectedFailure(t, ppu.NMIRequested())

	// VBlank 期间打开 NMI
	bus.Write(0x2000, 0x80)
	ppu.Clock(bus)
	test.ExpectedSuccess(t, ppu.NMIRequested())
}

func TestVRAMAccess(t *testing.T) {
	_, bus := newTestPPU(t)

	bus.Write(0x2006, 0x21)
	bus.Write(0x2006, 0x08)
	bus.Write(0x2007, 0x11)
	bus.Write(0x2007, 0x22)

	bus.Write(0x2006, 0x21)
	bus.Write(0x2006, 0x08)
	// 第一次读的是缓冲
	bus.Read(0x2007)
	test.Equate(t, bus.Read(0x2007), 0x11)
	test.Equate(t, bus.Read(0x2007), 0x22)

	// 水平镜像: $2400 就是 $2000
	test.Equate(t, bus.ppuRead(0x2508), 0x11)

	// 调色板 $3F10 是 $3F00 的镜像, 而且不经过缓冲
	bus.Write(0x2006, 0x3F)
	bus.Write(0x2006, 0x10)
	bus.Write(0x2007, 0x0F)
	bus.Write(0x2006, 0x3F)
	bus.Write(0x2006, 0x00)
	test.Equate(t, bus.Read(0x2007), 0x0F)

	// 32 递增
	bus.Write(0x2000, 0x04)
	bus.Write(0x2006, 0x20)
	bus.Write(0x2006, 0x00)
	bus.Read(0x2007)
	test.Equate(t, uint16(bus.PPU.V), 0x2020)
}

// 所有 nametable 都是 tile 1, tile 1 的每一行都是不透明的
func spriteZeroScene(bus *Bus) {
	for i := uint16(0); i < 8; i++ {
		bus.ppuWrite(0x10+i, 0xFF)
	}
	for addr := uint16(0x2000); addr < 0x3000; addr++ {
		bus.ppuWrite(addr, 1)
	}
	copy(bus.PPU.oam[:4], []byte{30, 1, 0, 50})
	// 其余精灵放到屏幕外
	for i := 4; i < 256; i += 4 {
		bus.PPU.oam[i] = 0xFF
	}
}

func TestSpriteZeroHit(t *testing.T) {
	ppu, bus := newTestPPU(t)
	spriteZeroScene(bus)
	bus.PPU.Mask = MaskBackground | MaskSprites | MaskBackgroundLeft | MaskSpriteLeft

	runToFrame(ppu, bus)
	test.ExpectedFailure(t, bus.PPU.Status.Has(StatusSpriteZeroHit))
	runToFrame(ppu, bus)
	test.ExpectedSuccess(t, bus.PPU.Status.Has(StatusSpriteZeroHit))
	test.ExpectedFailure(t, bus.PPU.Status.Has(StatusSpriteOverflow))

	// 没有背景就没有碰撞
	ppu, bus = newTestPPU(t)
	spriteZeroScene(bus)
	bus.PPU.Mask = MaskSprites | MaskSpriteLeft
	runToFrame(ppu, bus)
	runToFrame(ppu, bus)
	test.ExpectedFailure(t, bus.PPU.Status.Has(StatusSpriteZeroHit))
}

func TestSpriteOverflow(t *testing.T) {
	ppu, bus := newTestPPU(t)
	spriteZeroScene(bus)
	for i := 0; i < 9; i++ {
		copy(bus.PPU.oam[i*4:], []byte{100, 1, 0, byte(i * 10)})
	}
	bus.PPU.Mask = MaskSprites

	runToFrame(ppu, bus)
	runToFrame(ppu, bus)
	test.ExpectedSuccess(t, bus.PPU.Status.Has(StatusSpriteOverflow))
}

func TestSpriteRows(t *testing.T) {
	ppu, bus := newTestPPU(t)
	// tile 2 上半 tile 3 下半, 每一行的低位平面等于行号
	for row := uint16(0); row < 8; row++ {
		bus.ppuWrite(0x20+row, byte(row))
		bus.ppuWrite(0x30+row, byte(0x10+row))
	}
	bus.PPU.Ctrl = CtrlSpriteSize
	for i := 4; i < 256; i += 4 {
		bus.PPU.oam[i] = 0xFF
	}
	copy(bus.PPU.oam[:4], []byte{10, 2, 0x80, 0})

	ppu.ScanLine = 10
	ppu.evaluateSprites(&bus.PPU)
	test.Equate(t, ppu.spriteCount, 1)

	// 垂直翻转的 8x16 精灵, 第一行是下半 tile 的最后一行
	ppu.fetchSpritePatterns(bus)
	test.Equate(t, ppu.spritePatLo[0], 0x17)

	ppu.ScanLine = 25
	ppu.fetchSpritePatterns(bus)
	test.Equate(t, ppu.spritePatLo[0], 0x00)
}

func TestReverseBits(t *testing.T) {
	test.Equate(t, reverseBits[0x01], 0x80)
	test.Equate(t, reverseBits[0xF0], 0x0F)
	test.Equate(t, reverseBits[0xA5], 0xA5)
}
