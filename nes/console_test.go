package nes

import (
	"testing"
	"time"

	"github.com/55utah/fc-simulator/curated"
	"github.com/55utah/fc-simulator/test"
)

// JMP $8000
var idleLoop = []byte{0x4C, 0x00, 0x80}

func newTestConsole(t *testing.T, program []byte) *Console {
	t.Helper()
	c, err := NewConsole(makeROM(0, 1, 1, 0, program))
	test.DemandSuccess(t, err)
	return c
}

func TestFramePerCycles(t *testing.T) {
	c := newTestConsole(t, idleLoop)

	c.RunCycles(29780)
	test.Equate(t, c.PPU.Frame, 1)
	_, ok := c.TryGetFrame()
	test.ExpectedSuccess(t, ok)
	_, ok = c.TryGetFrame()
	test.ExpectedFailure(t, ok)

	c.RunCycles(29780)
	test.Equate(t, c.PPU.Frame, 2)
	frame, ok := c.TryGetFrame()
	test.ExpectedSuccess(t, ok)
	test.Equate(t, frame.Bounds().Dx(), ScreenWidth)
	test.Equate(t, frame.Bounds().Dy(), ScreenHeight)

	// CPU 周期数准确
	test.Equate(t, c.CPU.Cycles, 2*29780)
}

func TestConsoleAudio(t *testing.T) {
	c := newTestConsole(t, idleLoop)
	c.RunCycles(29780)
	n := c.Audio.Len()
	test.ExpectedSuccess(t, n >= 732 && n <= 734)

	c.Reset()
	test.Equate(t, c.Audio.Len(), 0)
}

func TestNoCartridge(t *testing.T) {
	c, err := NewConsole(nil)
	test.DemandSuccess(t, err)
	test.ExpectedFailure(t, c.Loaded())
	_, ok := c.CartridgeInfo()
	test.ExpectedFailure(t, ok)
	c.RunCycles(1000)
}

func TestLoadCartridge(t *testing.T) {
	c := newTestConsole(t, idleLoop)
	cart := c.Cartridge()

	err := c.LoadCartridge([]byte("not a rom"))
	test.ExpectedSuccess(t, curated.Is(err, InvalidFormat))
	test.ExpectedSuccess(t, c.Cartridge() == cart)

	_, err = NewConsole(makeROM(9, 1, 1, 0, nil))
	test.ExpectedSuccess(t, curated.Is(err, UnsupportedMapper))

	info, ok := c.CartridgeInfo()
	test.ExpectedSuccess(t, ok)
	test.Equate(t, info.MapperID, 0)
	test.Equate(t, info.PRGBanks, 1)

	c.Unload()
	test.ExpectedFailure(t, c.Loaded())
}

func TestCheckJam(t *testing.T) {
	c := newTestConsole(t, []byte{0x02})
	test.DemandSuccess(t, c.CheckJam())

	c.RunCycles(100)
	err := c.CheckJam()
	test.ExpectedSuccess(t, curated.Is(err, CpuJammed))
	test.Equate(t, err.Error(), "cpu: jammed at $8000")

	c.Reset()
	test.ExpectedSuccess(t, c.CheckJam())
}

func TestRunForDuration(t *testing.T) {
	c := newTestConsole(t, idleLoop)

	c.SetPaused(true)
	c.RunForDuration(time.Second)
	test.Equate(t, c.cpuCycle, 0)
	test.ExpectedSuccess(t, c.Paused())

	c.SetPaused(false)
	c.RunForDuration(time.Millisecond)
	test.Equate(t, c.cpuCycle, 1789)
	// 不足一个周期的部分留给下一次
	c.RunForDuration(time.Millisecond)
	test.Equate(t, c.cpuCycle, 3579)

	c.Reset()
	c.SetSpeed(2)
	test.Equate(t, c.Speed(), 2.0)
	c.RunForDuration(time.Millisecond)
	test.Equate(t, c.cpuCycle, 3579)
}

func TestRunCyclesNonPositive(t *testing.T) {
	c := newTestConsole(t, idleLoop)

	c.RunCycles(0)
	test.Equate(t, c.cpuCycle, 0)
	c.RunCycles(-5)
	test.Equate(t, c.cpuCycle, 0)
	test.Equate(t, c.ticks, 0)

	c.RunCycles(10)
	test.Equate(t, c.cpuCycle, 10)
	c.RunCycles(-1)
	test.Equate(t, c.cpuCycle, 10)
}

func TestSetSpeed(t *testing.T) {
	c := newTestConsole(t, idleLoop)
	expectPanic(t, func() { c.SetSpeed(0) })
	expectPanic(t, func() { c.SetSpeed(3) })
	test.Equate(t, c.Speed(), 1.0)
}

func TestConsoleJoypad(t *testing.T) {
	// LDA #1; STA $4016; LDA #0; STA $4016; LDA $4016; STA $00; JMP *
	program := []byte{
		0xA9, 0x01, 0x8D, 0x16, 0x40,
		0xA9, 0x00, 0x8D, 0x16, 0x40,
		0xAD, 0x16, 0x40, 0x85, 0x00,
		0x4C, 0x0F, 0x80,
	}
	c := newTestConsole(t, program)
	c.UpdateJoypadState(ButtonA, 0)
	c.RunCycles(100)
	test.Equate(t, c.Bus.RAM[0], 1)
}

func TestOAMDMAFromCPU(t *testing.T) {
	// LDA #2; STA $4014; JMP *
	program := []byte{0xA9, 0x02, 0x8D, 0x14, 0x40, 0x4C, 0x05, 0x80}
	c := newTestConsole(t, program)
	for i := 0; i < 256; i++ {
		c.Bus.RAM[0x200+i] = byte(255 - i)
	}
	c.RunCycles(1000)
	test.Equate(t, c.Bus.PPU.oam[0], 255)
	test.Equate(t, c.Bus.PPU.oam[255], 0)
}

func TestNMI(t *testing.T) {
	// LDA #$80; STA $2000; JMP *
	program := []byte{0xA9, 0x80, 0x8D, 0x00, 0x20, 0x4C, 0x05, 0x80}
	c := newTestConsole(t, program)
	c.RunCycles(29780)

	// 处理程序是一条 RTI, 返回之后还在循环里
	test.ExpectedSuccess(t, c.CPU.PC >= 0x8005 && c.CPU.PC <= 0x8007 || c.CPU.PC == testHandler)
	test.ExpectedSuccess(t, c.PPUState().NMIEnabled)
}

func TestStepInstruction(t *testing.T) {
	c := newTestConsole(t, []byte{0xEA, 0xEA, 0x4C, 0x00, 0x80})

	// 第一次走完复位序列
	c.StepInstruction()
	test.Equate(t, c.CPU.PC, 0x8000)
	test.Equate(t, c.Trace()[:4], "8000")

	c.StepInstruction()
	test.Equate(t, c.CPU.PC, 0x8001)
	c.StepInstruction()
	test.Equate(t, c.CPU.PC, 0x8002)
	c.StepInstruction()
	test.Equate(t, c.CPU.PC, 0x8000)
}

func TestDebugViews(t *testing.T) {
	c := newTestConsole(t, idleLoop)
	img := c.PatternTable(0, 0)
	test.Equate(t, img.Bounds().Dx(), 128)
	test.Equate(t, img.Bounds().Dy(), 128)

	img = c.NameTable(0)
	test.Equate(t, img.Bounds().Dx(), 256)
	test.Equate(t, img.Bounds().Dy(), 240)

	test.Equate(t, c.CPUState().PC, 0x8000)
	test.Equate(t, c.APUState().Status, 0)
}
