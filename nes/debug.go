package nes

import (
	"image"
	"image/color"
)

// CPUState is a snapshot of the CPU registers.
type CPUState struct {
	A, X, Y, P, SP byte
	PC             uint16
	Cycles         uint64
	Jammed         bool
}

// PPUState is a snapshot of the PPU timing and registers.
type PPUState struct {
	ScanLine     int
	Cycle        int
	Frame        uint64
	Ctrl         Ctrl
	Mask         Mask
	Status       Status
	OAMAddr      byte
	V            Loopy
	T            Loopy
	FineX        byte
	NMIEnabled   bool
	SpriteHeight int
}

// ChannelState is a snapshot of one APU channel.
type ChannelState struct {
	Enabled bool // 混音开关
	Length  byte
	Period  uint16
	Output  byte
}

// APUState is a snapshot of the APU.
type APUState struct {
	Pulse1   ChannelState
	Pulse2   ChannelState
	Triangle ChannelState
	Noise    ChannelState
	DMC      ChannelState

	Status       byte
	FiveStep     bool
	IRQInhibit   bool
	FrameIRQ     bool
	DMCIRQ       bool
	DMCBytesLeft uint16
}

// CartridgeInfo describes the inserted cartridge.
type CartridgeInfo struct {
	MapperID  byte
	Mirroring Mirroring
	PRGBanks  int
	CHRBanks  int
	Battery   bool
}

func (console *Console) CPUState() CPUState {
	cpu := console.CPU
	return CPUState{
		A:      cpu.A,
		X:      cpu.X,
		Y:      cpu.Y,
		P:      cpu.Flags(),
		SP:     cpu.SP,
		PC:     cpu.PC,
		Cycles: cpu.Cycles,
		Jammed: cpu.Jammed(),
	}
}

func (console *Console) PPUState() PPUState {
	pb := &console.Bus.PPU
	return PPUState{
		ScanLine:     console.PPU.ScanLine,
		Cycle:        console.PPU.Cycle,
		Frame:        console.PPU.Frame,
		Ctrl:         pb.Ctrl,
		Mask:         pb.Mask,
		Status:       pb.Status,
		OAMAddr:      pb.OAMAddr,
		V:            pb.V,
		T:            pb.T,
		FineX:        pb.FineX,
		NMIEnabled:   pb.Ctrl.Has(CtrlEnableNMI),
		SpriteHeight: pb.Ctrl.SpriteHeight(),
	}
}

func (console *Console) APUState() APUState {
	apu := console.CPU.APU
	return APUState{
		Pulse1: ChannelState{
			Enabled: apu.channelEnabled[ChannelPulse1],
			Length:  apu.pulse1.length.value,
			Period:  apu.pulse1.timerPeriod,
			Output:  apu.pulse1.output(),
		},
		Pulse2: ChannelState{
			Enabled: apu.channelEnabled[ChannelPulse2],
			Length:  apu.pulse2.length.value,
			Period:  apu.pulse2.timerPeriod,
			Output:  apu.pulse2.output(),
		},
		Triangle: ChannelState{
			Enabled: apu.channelEnabled[ChannelTriangle],
			Length:  apu.triangle.length.value,
			Period:  apu.triangle.timerPeriod,
			Output:  apu.triangle.output(),
		},
		Noise: ChannelState{
			Enabled: apu.channelEnabled[ChannelNoise],
			Length:  apu.noise.length.value,
			Period:  apu.noise.timerPeriod,
			Output:  apu.noise.output(),
		},
		DMC: ChannelState{
			Enabled: apu.channelEnabled[ChannelDMC],
			Period:  apu.dmc.rate,
			Output:  apu.dmc.output(),
		},
		Status:       apu.peekStatus(),
		FiveStep:     apu.fiveStep,
		IRQInhibit:   apu.irqInhibit,
		FrameIRQ:     apu.frameIRQ,
		DMCIRQ:       apu.dmc.irq,
		DMCBytesLeft: apu.dmc.bytesLeft,
	}
}

// CartridgeInfo describes the inserted cartridge. False if there is none.
func (console *Console) CartridgeInfo() (CartridgeInfo, bool) {
	c := console.Bus.Cartridge
	if c == nil {
		return CartridgeInfo{}, false
	}
	return CartridgeInfo{
		MapperID:  c.MapperID(),
		Mirroring: c.Mirroring(),
		PRGBanks:  c.PRGBanks(),
		CHRBanks:  c.CHRBanks(),
		Battery:   c.battery,
	}, true
}

// PatternTable draws pattern table 0 or 1 as 16x16 tiles (128x128 pixels)
// coloured with one of the eight palettes.
func (console *Console) PatternTable(index int, palette byte) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 128, 128))
	base := uint16(index&1) * 0x1000

	for tileY := 0; tileY < 16; tileY++ {
		for tileX := 0; tileX < 16; tileX++ {
			offset := base + uint16(tileY*256+tileX*16)
			for row := 0; row < 8; row++ {
				lo := console.Bus.ppuRead(offset + uint16(row))
				hi := console.Bus.ppuRead(offset + uint16(row) + 8)
				for col := 0; col < 8; col++ {
					pixel := (hi>>(7-col)&1)<<1 | lo>>(7-col)&1
					img.SetRGBA(tileX*8+col, tileY*8+row, console.colour(palette&0x07, pixel))
				}
			}
		}
	}
	return img
}

// NameTable draws logical nametable 0-3 ($2000, $2400, $2800, $2C00) with the
// current background pattern table and its attribute bytes.
func (console *Console) NameTable(index int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight))
	base := 0x2000 + uint16(index&3)*0x400
	table := console.Bus.PPU.Ctrl.BackgroundTable()

	for ty := 0; ty < 30; ty++ {
		for tx := 0; tx < 32; tx++ {
			tile := console.Bus.ppuRead(base + uint16(ty*32+tx))
			at := console.Bus.ppuRead(base + 0x3C0 + uint16((ty/4)*8+tx/4))
			shift := uint((ty&2)<<1 | tx&2)
			palette := (at >> shift) & 0x03

			for row := 0; row < 8; row++ {
				lo := console.Bus.ppuRead(table + uint16(tile)<<4 + uint16(row))
				hi := console.Bus.ppuRead(table + uint16(tile)<<4 + uint16(row) + 8)
				for col := 0; col < 8; col++ {
					pixel := (hi>>(7-col)&1)<<1 | lo>>(7-col)&1
					img.SetRGBA(tx*8+col, ty*8+row, console.colour(palette, pixel))
				}
			}
		}
	}
	return img
}

func (console *Console) colour(palette, pixel byte) color.RGBA {
	if pixel == 0 {
		palette = 0
	}
	return Palette[console.Bus.ppuRead(0x3F00+uint16(palette)<<2+uint16(pixel))&0x3F]
}
