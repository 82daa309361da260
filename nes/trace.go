package nes

import (
	"fmt"
)

// Trace disassembles the instruction at PC and appends the register state, in
// the column layout of the nestest log:
//
//	C000  4C F5 C5  JMP $C5F5                       A:00 X:00 Y:00 P:24 SP:FD CYC:7
//
// Memory is read with Bus.Peek so tracing never disturbs the machine.
func (cpu *CPU) Trace(bus *Bus) string {
	opcode := bus.Peek(cpu.PC)
	e := opcodeTable[opcode]
	size := e.mode.size()

	w1 := "  "
	w2 := "  "
	lo := bus.Peek(cpu.PC + 1)
	hi := bus.Peek(cpu.PC + 2)
	if size > 1 {
		w1 = fmt.Sprintf("%02X", lo)
	}
	if size > 2 {
		w2 = fmt.Sprintf("%02X", hi)
	}

	// 非官方指令前加 *, 占用名字前面的空格
	name := " " + e.name
	if e.illegal {
		name = "*" + e.name
	}

	return fmt.Sprintf("%04X  %02X %s %s %s %-28s  A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d",
		cpu.PC, opcode, w1, w2, name, operand(e.mode, cpu.PC, lo, hi),
		cpu.A, cpu.X, cpu.Y, cpu.Flags(), cpu.SP, cpu.Cycles)
}

// operand 按寻址方式格式化操作数
func operand(mode addrMode, pc uint16, lo, hi byte) string {
	word := uint16(hi)<<8 | uint16(lo)
	switch mode {
	case modeAbsolute:
		return fmt.Sprintf("$%04X", word)
	case modeAbsoluteX:
		return fmt.Sprintf("$%04X,X", word)
	case modeAbsoluteY:
		return fmt.Sprintf("$%04X,Y", word)
	case modeAccumulator:
		return "A"
	case modeImmediate:
		return fmt.Sprintf("#$%02X", lo)
	case modeIndexedIndirect:
		return fmt.Sprintf("($%02X,X)", lo)
	case modeIndirect:
		return fmt.Sprintf("($%04X)", word)
	case modeIndirectIndexed:
		return fmt.Sprintf("($%02X),Y", lo)
	case modeRelative:
		return fmt.Sprintf("$%04X", pc+2+uint16(int8(lo)))
	case modeZeroPage:
		return fmt.Sprintf("$%02X", lo)
	case modeZeroPageX:
		return fmt.Sprintf("$%02X,X", lo)
	case modeZeroPageY:
		return fmt.Sprintf("$%02X,Y", lo)
	}
	return ""
}
