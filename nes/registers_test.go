package nes

import (
	"testing"

	"github.com/55utah/fc-simulator/test"
)

func TestLoopyFields(t *testing.T) {
	var l Loopy
	l.SetCoarseX(31)
	l.SetCoarseY(29)
	l.SetNametableX(1)
	l.SetNametableY(1)
	l.SetFineY(7)
	test.Equate(t, uint16(l), 0x7FBF)

	test.Equate(t, l.CoarseX(), 31)
	test.Equate(t, l.CoarseY(), 29)
	test.Equate(t, l.NametableX(), 1)
	test.Equate(t, l.NametableY(), 1)
	test.Equate(t, l.FineY(), 7)

	// 溢出的位被截断
	l.SetCoarseX(32)
	test.Equate(t, l.CoarseX(), 0)
	test.Equate(t, l.CoarseY(), 29)
}

func TestMirroringLookup(t *testing.T) {
	tbl, off := MirrorVertical.nametable(0x2C05)
	test.Equate(t, tbl, 1)
	test.Equate(t, off, 5)

	tbl, _ = MirrorHorizontal.nametable(0x2400)
	test.Equate(t, tbl, 0)
	tbl, _ = MirrorHorizontal.nametable(0x2800)
	test.Equate(t, tbl, 1)

	// $3000-$3EFF 是 $2000-$2EFF 的镜像
	tbl, off = MirrorFour.nametable(0x3C10)
	test.Equate(t, tbl, 3)
	test.Equate(t, off, 0x10)
}

func TestRegisterBits(t *testing.T) {
	c := CtrlIncrementMode | CtrlSpriteSize | CtrlBackgroundPatt
	test.Equate(t, c.IncrementAmount(), 32)
	test.Equate(t, c.SpriteHeight(), 16)
	test.Equate(t, c.BackgroundTable(), 0x1000)
	test.Equate(t, c.SpriteTable(), 0)

	m := MaskSprites
	test.ExpectedSuccess(t, m.Rendering())
	test.ExpectedFailure(t, Mask(MaskGreyscale).Rendering())

	var s Status
	s.Set(StatusVBlank, true)
	s.Set(StatusSpriteZeroHit, true)
	s.Set(StatusVBlank, false)
	test.Equate(t, byte(s), 0x40)
}
