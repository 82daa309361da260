package nes

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	fogleman "github.com/fogleman/nes/nes"

	"github.com/55utah/fc-simulator/test"
)

func TestReset(t *testing.T) {
	cpu, _ := newTestCPU(t, nil)
	test.Equate(t, cpu.PC, 0x8000)
	test.Equate(t, cpu.SP, 0xFD)
	test.Equate(t, cpu.Flags(), 0x24)
	test.Equate(t, cpu.Cycles, 7)
}

func TestADC(t *testing.T) {
	tests := []struct {
		a, b, c byte
		result  byte
		carry   byte
		over    byte
	}{
		{0x50, 0x10, 0, 0x60, 0, 0},
		{0x50, 0x50, 0, 0xA0, 0, 1},
		{0x50, 0x90, 0, 0xE0, 0, 0},
		{0x50, 0xD0, 0, 0x20, 1, 0},
		{0xD0, 0x90, 0, 0x60, 1, 1},
		{0xFF, 0x00, 1, 0x00, 1, 0},
	}

	cpu := NewCPU()
	for _, tt := range tests {
		cpu.A, cpu.C = tt.a, tt.c
		cpu.adc(tt.b)
		test.DemandEquality(t, cpu.A, tt.result, "adc", tt.a, tt.b)
		test.DemandEquality(t, cpu.C, tt.carry, "adc carry", tt.a, tt.b)
		test.DemandEquality(t, cpu.V, tt.over, "adc overflow", tt.a, tt.b)
	}

	test.Equate(t, cpu.Z, 1)
}

func TestSBC(t *testing.T) {
	tests := []struct {
		a, b, c byte
		result  byte
		carry   byte
		over    byte
	}{
		{0x50, 0xF0, 1, 0x60, 0, 0},
		{0x50, 0xB0, 1, 0xA0, 0, 1},
		{0xD0, 0x70, 1, 0x60, 1, 1},
		{0x50, 0x30, 0, 0x1F, 1, 0},
	}

	cpu := NewCPU()
	for _, tt := range tests {
		cpu.A, cpu.C = tt.a, tt.c
		cpu.sbc(tt.b)
		test.DemandEquality(t, cpu.A, tt.result, "sbc", tt.a, tt.b)
		test.DemandEquality(t, cpu.C, tt.carry, "sbc carry", tt.a, tt.b)
		test.DemandEquality(t, cpu.V, tt.over, "sbc overflow", tt.a, tt.b)
	}
}

func TestIndirectJumpBug(t *testing.T) {
	// JMP ($02FF) 读取 $02FF 和 $0200
	cpu, bus := newTestCPU(t, []byte{0x6C, 0xFF, 0x02})
	bus.RAM[0x02FF] = 0x34
	bus.RAM[0x0200] = 0x12
	bus.RAM[0x0300] = 0x99

	test.Equate(t, cpu.Step(bus), 5)
	test.Equate(t, cpu.PC, 0x1234)
}

func TestPageCrossingCycles(t *testing.T) {
	cpu, bus := newTestCPU(t, []byte{
		0xA2, 0x01, // LDX #$01
		0xBD, 0xFF, 0x01, // LDA $01FF,X
		0xBD, 0x00, 0x01, // LDA $0100,X
		0x9D, 0xFF, 0x01, // STA $01FF,X
	})
	test.Equate(t, cpu.Step(bus), 2)
	test.Equate(t, cpu.Step(bus), 5)
	test.Equate(t, cpu.Step(bus), 4)
	// 写指令没有额外周期
	test.Equate(t, cpu.Step(bus), 5)
}

func TestBranchCycles(t *testing.T) {
	cpu, bus := newTestCPU(t, []byte{
		0x18,       // CLC
		0xB0, 0x10, // BCS (不跳)
		0x90, 0x02, // BCC +2
		0xEA, 0xEA,
		0x90, 0x80, // BCC -128, 跨页
	})
	test.Equate(t, cpu.Step(bus), 2)
	test.Equate(t, cpu.Step(bus), 2)
	test.Equate(t, cpu.Step(bus), 3)
	test.Equate(t, cpu.PC, 0x8007)
	test.Equate(t, cpu.Step(bus), 4)
	test.Equate(t, cpu.PC, 0x7F89)
}

func TestStackAndFlags(t *testing.T) {
	cpu, bus := newTestCPU(t, []byte{
		0x38,             // SEC
		0x08,             // PHP
		0x18,             // CLC
		0x28,             // PLP
		0x20, 0x00, 0x90, // JSR $9000
	})
	cpu.Step(bus)
	cpu.Step(bus)
	// 压栈的状态 B 和 U 都是 1
	test.Equate(t, bus.RAM[0x01FD], 0x35)
	cpu.Step(bus)
	test.Equate(t, cpu.C, 0)
	cpu.Step(bus)
	test.Equate(t, cpu.C, 1)
	test.Equate(t, cpu.Flags(), 0x25)

	test.Equate(t, cpu.Step(bus), 6)
	test.Equate(t, cpu.PC, 0x9000)
	// 返回地址减1
	test.Equate(t, bus.RAM[0x01FD], 0x80)
	test.Equate(t, bus.RAM[0x01FC], 0x06)
}

func TestInterrupts(t *testing.T) {
	cpu, bus := newTestCPU(t, []byte{0x58}) // CLI

	// I 置位时 IRQ 被忽略
	cpu.IRQ(bus)
	test.Equate(t, cpu.PC, 0x8000)

	cpu.Step(bus)
	cpu.IRQ(bus)
	test.Equate(t, cpu.PC, testHandler)
	test.Equate(t, cpu.I, 1)
	// B 清零, U 置位
	test.Equate(t, bus.RAM[0x01FB], 0x20)

	// 先跑完中断的7个周期, 再执行 RTI
	test.Equate(t, cpu.Step(bus), 6)
	test.Equate(t, cpu.PC, 0x8001)
	test.Equate(t, cpu.I, 0)

	cpu.SetFlags(0x24)
	cpu.NMI(bus)
	test.Equate(t, cpu.PC, testHandler)
}

func TestBRK(t *testing.T) {
	cpu, bus := newTestCPU(t, []byte{0x00, 0xFF})
	test.Equate(t, cpu.Step(bus), 7)
	test.Equate(t, cpu.PC, testHandler)
	test.Equate(t, bus.RAM[0x01FB], 0x34)

	// 返回到填充字节之后
	cpu.Step(bus)
	test.Equate(t, cpu.PC, 0x8002)
}

func TestIllegalOpcodes(t *testing.T) {
	cpu, bus := newTestCPU(t, []byte{
		0xA7, 0x10, // LAX $10
		0xA9, 0xF0, // LDA #$F0
		0x87, 0x11, // SAX $11
		0xC7, 0x12, // DCP $12
		0xE7, 0x13, // ISC $13
		0x07, 0x14, // SLO $14
		0x0B, 0x80, // ANC #$80
		0x4B, 0x03, // ALR #$03
		0xCB, 0x01, // SBX #$01
		0x6B, 0xFF, // ARR #$FF
		0x04, 0x10, // NOP $10
	})
	bus.RAM[0x10] = 0x8F
	bus.RAM[0x12] = 0x01
	bus.RAM[0x13] = 0xFF
	bus.RAM[0x14] = 0x81

	cpu.Step(bus)
	test.Equate(t, cpu.A, 0x8F)
	test.Equate(t, cpu.X, 0x8F)
	test.Equate(t, cpu.N, 1)

	cpu.Step(bus)
	cpu.Step(bus)
	test.Equate(t, bus.RAM[0x11], 0x80)

	// DCP: $12 减到 0, 和 A 比较
	cpu.Step(bus)
	test.Equate(t, bus.RAM[0x12], 0x00)
	test.Equate(t, cpu.C, 1)
	test.Equate(t, cpu.Z, 0)

	// ISC: $13 加到 0, A - 0 - (1-C)
	cpu.Step(bus)
	test.Equate(t, bus.RAM[0x13], 0x00)
	test.Equate(t, cpu.A, 0xF0)

	// SLO: $14 左移, 再和 A 或
	cpu.Step(bus)
	test.Equate(t, bus.RAM[0x14], 0x02)
	test.Equate(t, cpu.C, 1)
	test.Equate(t, cpu.A, 0xF2)

	// ANC: C 等于 N
	cpu.Step(bus)
	test.Equate(t, cpu.A, 0x80)
	test.Equate(t, cpu.C, 1)

	// ALR: (A & 3) >> 1
	cpu.Step(bus)
	test.Equate(t, cpu.A, 0x00)
	test.Equate(t, cpu.C, 0)
	test.Equate(t, cpu.Z, 1)

	// SBX: X = (A & X) - 1
	cpu.Step(bus)
	test.Equate(t, cpu.X, 0xFF)
	test.Equate(t, cpu.C, 0)

	// ARR
	cpu.A = 0xC0
	cpu.C = 1
	cpu.Step(bus)
	test.Equate(t, cpu.A, 0xE0)
	test.Equate(t, cpu.C, 1)
	test.Equate(t, cpu.V, 0)

	// 多字节 NOP
	test.Equate(t, cpu.Step(bus), 3)
	test.Equate(t, cpu.PC, 0x8016)
}

func TestStoreHigh(t *testing.T) {
	cpu, bus := newTestCPU(t, []byte{
		0x9E, 0x00, 0x02, // SHX $0200,Y
		0x9E, 0xFF, 0x02, // SHX $02FF,Y 跨页
	})
	cpu.X = 0xFF
	cpu.Y = 0x01

	cpu.Step(bus)
	// X & (H+1) = $FF & $03
	test.Equate(t, bus.RAM[0x0201], 0x03)

	cpu.X = 0x05
	cpu.Step(bus)
	// 跨页: H = $02, 值 = $05 & $03 = $01, 地址高字节被替换成 $01
	test.Equate(t, bus.RAM[0x0100], 0x01)
}

func TestJam(t *testing.T) {
	cpu, bus := newTestCPU(t, []byte{0x02})
	cpu.Step(bus)
	test.ExpectedSuccess(t, cpu.Jammed())
	test.Equate(t, cpu.PC, 0x8000)

	cycles := cpu.Cycles
	cpu.Clock(bus)
	cpu.NMI(bus)
	test.Equate(t, cpu.Cycles, cycles)
	test.Equate(t, cpu.PC, 0x8000)

	cpu.Reset(bus)
	test.ExpectedFailure(t, cpu.Jammed())
}

func TestTrace(t *testing.T) {
	cpu, bus := newTestCPU(t, []byte{0x4C, 0xF5, 0xC5})
	s := cpu.Trace(bus)
	test.ExpectedSuccess(t, strings.HasPrefix(s, "8000  4C F5 C5  JMP $C5F5 "))
	test.ExpectedSuccess(t, strings.HasSuffix(s, "A:00 X:00 Y:00 P:24 SP:FD CYC:7"))

	cpu, bus = newTestCPU(t, []byte{0xA7, 0x10})
	s = cpu.Trace(bus)
	test.ExpectedSuccess(t, strings.HasPrefix(s, "8000  A7 10    *LAX $10 "))
}

// 随机生成的合法指令序列, 和 fogleman/nes 的 CPU 逐条比较寄存器
func TestAgainstReference(t *testing.T) {
	skip := map[instruction]bool{
		BRK: true, JMP: true, JSR: true, RTS: true, RTI: true, CLI: true, PLP: true,
	}
	allowed := map[addrMode]bool{
		modeImplied: true, modeAccumulator: true, modeImmediate: true,
		modeZeroPage: true, modeZeroPageX: true, modeZeroPageY: true,
		modeRelative: true,
	}

	var opcodes []byte
	for op, e := range opcodeTable {
		if !e.illegal && allowed[e.mode] && !skip[e.inst] {
			opcodes = append(opcodes, byte(op))
		}
	}

	// 程序从 $8100 开始, 向后跳转不会离开 PRG
	rng := rand.New(rand.NewSource(1))
	program := make([]byte, 0x100, 0x1000)
	for i := range program {
		program[i] = 0xEA
	}
	program[0], program[1], program[2] = 0x4C, 0x00, 0x81
	for len(program) < 0x0F00 {
		op := opcodes[rng.Intn(len(opcodes))]
		program = append(program, op)
		for i := uint16(1); i < opcodeTable[op].mode.size(); i++ {
			program = append(program, byte(rng.Intn(256)))
		}
	}

	rom := makeROM(0, 1, 1, 0, program)
	path := filepath.Join(t.TempDir(), "random.nes")
	test.DemandSuccess(t, os.WriteFile(path, rom, 0o600))

	ref, err := fogleman.NewConsole(path)
	test.DemandSuccess(t, err)

	cpu, bus := newTestCPU(t, program)

	for i := 0; i < 3000; i++ {
		pc := cpu.PC
		refCycles := ref.Step()
		cycles := cpu.Step(bus)

		test.DemandEquality(t, cpu.PC, ref.CPU.PC, "PC", i, pc)
		test.DemandEquality(t, cpu.A, ref.CPU.A, "A", i, pc)
		test.DemandEquality(t, cpu.X, ref.CPU.X, "X", i, pc)
		test.DemandEquality(t, cpu.Y, ref.CPU.Y, "Y", i, pc)
		test.DemandEquality(t, cpu.SP, ref.CPU.SP, "SP", i, pc)
		test.DemandEquality(t, cpu.Flags(), ref.CPU.Flags(), "P", i, pc)
		test.DemandEquality(t, cycles, refCycles, "cycles", i, pc)
	}
}
