package nes

import "fmt"

// run 执行一条指令, 返回额外的周期数 (分支跳转)
func (cpu *CPU) run(bus *Bus, e *opcodeEntry, addr uint16, crossed bool) int {
	switch e.inst {
	// 读取/存储
	case LDA:
		cpu.A = cpu.read(bus, addr)
		cpu.setZN(cpu.A)
	case LDX:
		cpu.X = cpu.read(bus, addr)
		cpu.setZN(cpu.X)
	case LDY:
		cpu.Y = cpu.read(bus, addr)
		cpu.setZN(cpu.Y)
	case STA:
		cpu.write(bus, addr, cpu.A)
	case STX:
		cpu.write(bus, addr, cpu.X)
	case STY:
		cpu.write(bus, addr, cpu.Y)

	// 运算
	case ADC:
		cpu.adc(cpu.read(bus, addr))
	case SBC, USBC:
		cpu.sbc(cpu.read(bus, addr))
	case AND:
		cpu.A &= cpu.read(bus, addr)
		cpu.setZN(cpu.A)
	case ORA:
		cpu.A |= cpu.read(bus, addr)
		cpu.setZN(cpu.A)
	case EOR:
		cpu.A ^= cpu.read(bus, addr)
		cpu.setZN(cpu.A)
	case CMP:
		cpu.compare(cpu.A, cpu.read(bus, addr))
	case CPX:
		cpu.compare(cpu.X, cpu.read(bus, addr))
	case CPY:
		cpu.compare(cpu.Y, cpu.read(bus, addr))
	case BIT:
		value := cpu.read(bus, addr)
		cpu.setZ(cpu.A & value)
		cpu.V = (value >> 6) & 1
		cpu.N = (value >> 7) & 1

	// 自增自减
	case INC:
		value := cpu.read(bus, addr) + 1
		cpu.write(bus, addr, value)
		cpu.setZN(value)
	case DEC:
		value := cpu.read(bus, addr) - 1
		cpu.write(bus, addr, value)
		cpu.setZN(value)
	case INX:
		cpu.X++
		cpu.setZN(cpu.X)
	case DEX:
		cpu.X--
		cpu.setZN(cpu.X)
	case INY:
		cpu.Y++
		cpu.setZN(cpu.Y)
	case DEY:
		cpu.Y--
		cpu.setZN(cpu.Y)

	// 移位
	case ASL, LSR, ROL, ROR:
		if e.mode == modeAccumulator {
			cpu.A = cpu.shift(e.inst, cpu.A)
		} else {
			cpu.write(bus, addr, cpu.shift(e.inst, cpu.read(bus, addr)))
		}

	// 传送
	case TAX:
		cpu.X = cpu.A
		cpu.setZN(cpu.X)
	case TXA:
		cpu.A = cpu.X
		cpu.setZN(cpu.A)
	case TAY:
		cpu.Y = cpu.A
		cpu.setZN(cpu.Y)
	case TYA:
		cpu.A = cpu.Y
		cpu.setZN(cpu.A)
	case TSX:
		cpu.X = cpu.SP
		cpu.setZN(cpu.X)
	case TXS:
		cpu.SP = cpu.X

	// 标志位
	case CLC:
		cpu.C = 0
	case SEC:
		cpu.C = 1
	case CLD:
		cpu.D = 0
	case SED:
		cpu.D = 1
	case CLV:
		cpu.V = 0
	case CLI:
		cpu.I = 0
	case SEI:
		cpu.I = 1

	// 栈
	case PHA:
		cpu.push(bus, cpu.A)
	case PLA:
		cpu.A = cpu.pull(bus)
		cpu.setZN(cpu.A)
	case PHP:
		// 压栈时 B 和 U 都是 1
		cpu.push(bus, cpu.Flags()|0x30)
	case PLP:
		cpu.SetFlags(cpu.pull(bus)&0xef | 0x20)

	// 跳转
	case JMP:
		cpu.PC = addr
	case JSR:
		cpu.push16(bus, cpu.PC-1)
		cpu.PC = addr
	case RTS:
		cpu.PC = cpu.pull16(bus) + 1
	case RTI:
		cpu.SetFlags(cpu.pull(bus)&0xef | 0x20)
		cpu.PC = cpu.pull16(bus)
	case BRK:
		// BRK 强制中断, 跳过一个填充字节
		cpu.push16(bus, cpu.PC+1)
		cpu.push(bus, cpu.Flags()|0x30)
		cpu.I = 1
		cpu.PC = cpu.read16(bus, vectorIRQ)

	// 分支
	case BCC:
		return cpu.branch(cpu.C == 0, addr)
	case BCS:
		return cpu.branch(cpu.C != 0, addr)
	case BEQ:
		return cpu.branch(cpu.Z != 0, addr)
	case BNE:
		return cpu.branch(cpu.Z == 0, addr)
	case BMI:
		return cpu.branch(cpu.N != 0, addr)
	case BPL:
		return cpu.branch(cpu.N == 0, addr)
	case BVS:
		return cpu.branch(cpu.V != 0, addr)
	case BVC:
		return cpu.branch(cpu.V == 0, addr)

	case NOP:
		// 多字节 NOP 也会读取操作数
		if e.mode != modeImplied {
			cpu.read(bus, addr)
		}

	// 非官方指令
	case SLO:
		value := cpu.shift(ASL, cpu.read(bus, addr))
		cpu.write(bus, addr, value)
		cpu.A |= value
		cpu.setZN(cpu.A)
	case RLA:
		value := cpu.shift(ROL, cpu.read(bus, addr))
		cpu.write(bus, addr, value)
		cpu.A &= value
		cpu.setZN(cpu.A)
	case SRE:
		value := cpu.shift(LSR, cpu.read(bus, addr))
		cpu.write(bus, addr, value)
		cpu.A ^= value
		cpu.setZN(cpu.A)
	case RRA:
		value := cpu.shift(ROR, cpu.read(bus, addr))
		cpu.write(bus, addr, value)
		cpu.adc(value)
	case SAX:
		cpu.write(bus, addr, cpu.A&cpu.X)
	case LAX:
		value := cpu.read(bus, addr)
		if e.mode == modeImmediate {
			// $AB 不稳定, 使用常见的魔数 $EE
			value &= cpu.A | 0xEE
		}
		cpu.A = value
		cpu.X = value
		cpu.setZN(value)
	case DCP:
		value := cpu.read(bus, addr) - 1
		cpu.write(bus, addr, value)
		cpu.compare(cpu.A, value)
	case ISC:
		value := cpu.read(bus, addr) + 1
		cpu.write(bus, addr, value)
		cpu.sbc(value)
	case ANC:
		cpu.A &= cpu.read(bus, addr)
		cpu.setZN(cpu.A)
		cpu.C = cpu.N
	case ALR:
		cpu.A &= cpu.read(bus, addr)
		cpu.A = cpu.shift(LSR, cpu.A)
	case ARR:
		cpu.A &= cpu.read(bus, addr)
		cpu.A = cpu.A>>1 | cpu.C<<7
		cpu.setZN(cpu.A)
		cpu.C = (cpu.A >> 6) & 1
		cpu.V = ((cpu.A >> 6) ^ (cpu.A >> 5)) & 1
	case ANE:
		cpu.A = (cpu.A | 0xEE) & cpu.X & cpu.read(bus, addr)
		cpu.setZN(cpu.A)
	case SBX:
		value := cpu.read(bus, addr)
		ax := cpu.A & cpu.X
		cpu.C = b2u(ax >= value)
		cpu.X = ax - value
		cpu.setZN(cpu.X)
	case LAS:
		value := cpu.read(bus, addr) & cpu.SP
		cpu.A = value
		cpu.X = value
		cpu.SP = value
		cpu.setZN(value)
	case SHA:
		cpu.storeHigh(bus, addr, crossed, cpu.A&cpu.X)
	case SHX:
		cpu.storeHigh(bus, addr, crossed, cpu.X)
	case SHY:
		cpu.storeHigh(bus, addr, crossed, cpu.Y)
	case TAS:
		cpu.SP = cpu.A & cpu.X
		cpu.storeHigh(bus, addr, crossed, cpu.SP)
	case JAM:
		// 停在 JAM 指令上, 只有复位才能恢复
		cpu.PC--
		cpu.jammed = true

	default:
		panic(fmt.Sprintf("cpu: unimplemented instruction %s", e.name))
	}

	return 0
}

// ADC - add with carry -- A = A + M + C
func (cpu *CPU) adc(b byte) {
	a := cpu.A
	c := cpu.C
	sum := int(a) + int(b) + int(c)
	cpu.A = byte(sum)
	cpu.setZN(cpu.A)
	cpu.C = b2u(sum > 0xFF)
	// 两个操作数符号相同, 结果符号不同
	cpu.V = b2u((a^b)&0x80 == 0 && (a^cpu.A)&0x80 != 0)
}

// SBC - subtract with carry -- A = A - M - (1 - C)
func (cpu *CPU) sbc(b byte) {
	a := cpu.A
	c := cpu.C
	diff := int(a) - int(b) - int(1-c)
	cpu.A = byte(diff)
	cpu.setZN(cpu.A)
	cpu.C = b2u(diff >= 0)
	cpu.V = b2u((a^b)&0x80 != 0 && (a^cpu.A)&0x80 != 0)
}

func (cpu *CPU) compare(a, b byte) {
	cpu.setZN(a - b)
	cpu.C = b2u(a >= b)
}

// ASL/LSR/ROL/ROR
//
//	ASL: C <- |7|6|5|4|3|2|1|0| <- 0
//	LSR: 0 -> |7|6|5|4|3|2|1|0| -> C
//	ROL: C <- |7|6|5|4|3|2|1|0| <- C
//	ROR: C -> |7|6|5|4|3|2|1|0| -> C
func (cpu *CPU) shift(inst instruction, value byte) byte {
	c := cpu.C
	switch inst {
	case ASL:
		cpu.C = (value >> 7) & 1
		value <<= 1
	case LSR:
		cpu.C = value & 1
		value >>= 1
	case ROL:
		cpu.C = (value >> 7) & 1
		value = value<<1 | c
	case ROR:
		cpu.C = value & 1
		value = value>>1 | c<<7
	}
	cpu.setZN(value)
	return value
}

// 分支跳转 cycle+1，如果跨page，cycle再+1
func (cpu *CPU) branch(cond bool, addr uint16) int {
	if !cond {
		return 0
	}
	extra := 1
	if pageDiff(cpu.PC, addr) {
		extra++
	}
	cpu.PC = addr
	return extra
}

// SHA/SHX/SHY/TAS 写入 value & (H+1), H 是基址的高字节.
// 跨页时写入的地址高字节也被替换成这个值.
func (cpu *CPU) storeHigh(bus *Bus, addr uint16, crossed bool, value byte) {
	h := byte(addr >> 8)
	if crossed {
		h--
	}
	value &= h + 1
	if crossed {
		addr = uint16(value)<<8 | addr&0x00FF
	}
	cpu.write(bus, addr, value)
}
