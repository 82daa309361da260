package nes

import (
	"image"
	"time"

	"github.com/55utah/fc-simulator/curated"
	"github.com/55utah/fc-simulator/logger"
)

/**
这个模块作为cpu/ppu/apu/卡带/总线的封装

主时钟就是PPU时钟, 每3个PPU时钟一个CPU时钟 (APU跟着CPU走)
*/

// 音频队列的默认长度, 大约 0.2 秒
const defaultAudioQueueSize = 8192

// Console ties the CPU, PPU and APU to the bus and drives them from a single
// master clock.
type Console struct {
	CPU   *CPU
	PPU   *PPU
	Bus   *Bus
	Audio *AudioQueue

	// PPU 时钟数, 以及 CPU 时钟数 (DMA 用来判断奇偶)
	ticks    uint64
	cpuCycle uint64

	paused bool
	speed  float64

	// RunForDuration 不足一个周期的部分
	residue float64
}

// NewConsole creates a console. The data, if not nil, is an iNES image that
// is loaded straight away.
func NewConsole(data []byte) (*Console, error) {
	console := &Console{
		CPU:   NewCPU(),
		PPU:   NewPPU(),
		Bus:   &Bus{},
		Audio: NewAudioQueue(defaultAudioQueueSize),
		speed: 1,
	}

	if data != nil {
		if err := console.LoadCartridge(data); err != nil {
			return nil, err
		}
	} else {
		console.Reset()
	}

	return console, nil
}

// LoadCartridge parses an iNES image and inserts it, then resets the
// console. On error the previous cartridge stays in place.
func (console *Console) LoadCartridge(data []byte) error {
	cart, err := LoadINES(data)
	if err != nil {
		logger.Logf(logger.Allow, "console", "load failed: %v", err)
		return err
	}
	console.Bus.Cartridge = cart
	logger.Logf(logger.Allow, "console", "cartridge inserted (mapper %d, %s)", cart.MapperID(), cart.Mirroring())
	console.Reset()
	return nil
}

// Unload removes the cartridge. The console keeps running on open bus.
func (console *Console) Unload() {
	if console.Bus.Cartridge == nil {
		return
	}
	console.Bus.Cartridge = nil
	logger.Log(logger.Allow, "console", "cartridge removed")
	console.Reset()
}

// Loaded is true when a cartridge is inserted.
func (console *Console) Loaded() bool {
	return console.Bus.Cartridge != nil
}

// Cartridge returns the inserted cartridge or nil.
func (console *Console) Cartridge() *Cartridge {
	return console.Bus.Cartridge
}

// Reset is the console's reset button.
func (console *Console) Reset() {
	console.Bus.Reset()
	console.CPU.Reset(console.Bus)
	console.PPU.Reset()
	console.Audio.Drain()
	console.ticks = 0
	console.cpuCycle = 0
	console.residue = 0
}

// 一个PPU时钟
func (console *Console) clock() {
	console.PPU.Clock(console.Bus)

	if console.ticks%3 == 0 {
		switch {
		case console.Bus.DMATransferring():
			console.Bus.DMAClock(console.cpuCycle)
		case console.Bus.DMCStall > 0:
			console.Bus.DMCStall--
		default:
			console.CPU.Clock(console.Bus)
		}

		console.CPU.APU.Clock(console.Bus)
		if s, ok := console.CPU.APU.TryClockSample(); ok {
			console.Audio.Push(s)
		}
		console.cpuCycle++
	}

	if console.PPU.NMIRequested() {
		console.CPU.NMI(console.Bus)
	}
	if console.Bus.IRQActive() || console.CPU.APU.IRQActive() {
		console.CPU.IRQ(console.Bus)
	}

	console.ticks++
}

// RunCycles runs the console for n CPU cycles (3n PPU dots).
func (console *Console) RunCycles(n int) {
	if n <= 0 {
		return
	}
	target := console.cpuCycle + uint64(n)
	for console.cpuCycle < target || console.ticks%3 != 0 {
		console.clock()
	}
}

// RunForDuration runs as many CPU cycles as fit in d of emulated time at the
// current speed. Fractions of a cycle are carried over to the next call.
// Nothing happens while paused.
func (console *Console) RunForDuration(d time.Duration) {
	if console.paused || d <= 0 {
		return
	}
	cycles := d.Seconds()*CPUFrequency*console.speed + console.residue
	n := int(cycles)
	console.residue = cycles - float64(n)
	console.RunCycles(n)
}

// SetPaused pauses or resumes RunForDuration.
func (console *Console) SetPaused(paused bool) {
	console.paused = paused
}

func (console *Console) Paused() bool {
	return console.paused
}

// SetSpeed sets the emulation speed multiplier, in (0, 2].
func (console *Console) SetSpeed(speed float64) {
	console.CPU.APU.AdjustCPUClockRate(speed)
	console.speed = speed
}

func (console *Console) Speed() float64 {
	return console.speed
}

// UpdateJoypadState sets the buttons held on controller 0 or 1.
func (console *Console) UpdateJoypadState(mask byte, index int) {
	console.Bus.UpdateJoypad(index, mask)
}

// TryGetFrame returns a completed frame, once per frame.
func (console *Console) TryGetFrame() (*image.RGBA, bool) {
	return console.PPU.TryGetFrame()
}

// CheckJam returns a CpuJammed error if the CPU has executed a JAM opcode.
// The console must be Reset to recover.
func (console *Console) CheckJam() error {
	if console.CPU.Jammed() {
		return curated.Errorf(CpuJammed, console.CPU.PC)
	}
	return nil
}

// Trace disassembles the next instruction.
func (console *Console) Trace() string {
	return console.CPU.Trace(console.Bus)
}

// StepInstruction runs until the CPU has completed one instruction. Used by
// the tracer.
func (console *Console) StepInstruction() {
	if console.CPU.Jammed() {
		console.RunCycles(1)
		return
	}
	start := console.CPU.Cycles
	for console.CPU.Cycles == start || console.CPU.cycles > 0 {
		console.RunCycles(1)
		if console.CPU.Jammed() {
			return
		}
	}
}
