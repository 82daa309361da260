package nes

import (
	"github.com/55utah/fc-simulator/logger"
)

/*
CPU模块，对外需要以下接口：
Clock
Reset
IRQ
NMI

CPU 不持有总线, 每次调用时由 Console 传入
*/

// 各中断的地址信息，2byte
const (
	// NMI中断
	vectorNMI = 0xfffa
	// 每次启动触发
	vectorReset = 0xfffc
	// IRQ/BRK共用中断地址
	vectorIRQ = 0xfffe
)

// CPUFrequency NTSC CPU 时钟
const CPUFrequency = 1789773

// 复位消耗的周期数
const resetCycles = 7

// CPU is the 2A03 core: a 6502 without decimal mode. The APU shares the CPU
// register space and is owned by it.
type CPU struct {
	PC uint16
	SP byte // 堆栈寄存器
	A  byte
	X  byte
	Y  byte
	C  byte // 8个状态FLAG C - 进位标志
	Z  byte // Z - 结果为零标志
	I  byte // I - 中断屏蔽
	D  byte // D - 十进制, 保存但不参与运算
	B  byte // BRK
	U  byte // 未使用
	V  byte // 溢出标志，计算结果产生溢出
	N  byte // 负标志，结果为负

	// 上电以来的周期数
	Cycles uint64

	// 当前指令剩余周期数
	cycles int

	jammed bool

	APU *APU
}

// NewCPU creates a CPU with its APU. Reset must be called with a bus before
// the CPU is clocked.
func NewCPU() *CPU {
	return &CPU{APU: NewAPU()}
}

// read 拦截 APU 的寄存器, 其它交给总线
func (cpu *CPU) read(bus *Bus, addr uint16) byte {
	if addr == 0x4015 {
		return cpu.APU.ReadRegister(addr)
	}
	return bus.Read(addr)
}

func (cpu *CPU) write(bus *Bus, addr uint16, value byte) {
	switch {
	case addr >= 0x4000 && addr <= 0x4013, addr == 0x4015, addr == 0x4017:
		cpu.APU.WriteRegister(addr, value)
		return
	}
	bus.Write(addr, value)
}

func (cpu *CPU) read16(bus *Bus, addr uint16) uint16 {
	lo := cpu.read(bus, addr)
	hi := cpu.read(bus, addr+1)
	return uint16(hi)<<8 | uint16(lo)
}

// 这里模拟cpu的bug，读取16位数据
// 例如JMP ($10FF), 理论上讲是读取$10FF和$1100这两个字节的数据, 但是实际上是读取的$10FF和$1000这两个字节的数据.
func (cpu *CPU) read16bug(bus *Bus, addr uint16) uint16 {
	b := (addr & 0xFF00) | uint16(byte(addr)+1)
	lo := cpu.read(bus, addr)
	hi := cpu.read(bus, b)
	return uint16(hi)<<8 | uint16(lo)
}

// 栈操作：push/push16/pull/pull16
// 压栈 SP指针向0x00靠近, 对应真实地址的 0x100-0x1ff
func (cpu *CPU) push(bus *Bus, value byte) {
	cpu.write(bus, 0x100|uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) push16(bus *Bus, value uint16) {
	cpu.push(bus, byte(value>>8))
	cpu.push(bus, byte(value))
}

func (cpu *CPU) pull(bus *Bus) byte {
	cpu.SP++
	return cpu.read(bus, 0x100|uint16(cpu.SP))
}

func (cpu *CPU) pull16(bus *Bus) uint16 {
	lo := uint16(cpu.pull(bus))
	hi := uint16(cpu.pull(bus))
	return hi<<8 | lo
}

// 标志寄存器相关
func (cpu *CPU) setZ(value byte) {
	cpu.Z = b2u(value == 0)
}

func (cpu *CPU) setN(value byte) {
	cpu.N = (value >> 7) & 1
}

func (cpu *CPU) setZN(value byte) {
	cpu.setN(value)
	cpu.setZ(value)
}

func b2u(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// Flags returns the processor status register.
func (cpu *CPU) Flags() byte {
	var flags byte
	flags |= cpu.C << 0
	flags |= cpu.Z << 1
	flags |= cpu.I << 2
	flags |= cpu.D << 3
	flags |= cpu.B << 4
	flags |= cpu.U << 5
	flags |= cpu.V << 6
	flags |= cpu.N << 7
	return flags
}

// SetFlags sets the processor status register.
func (cpu *CPU) SetFlags(p byte) {
	cpu.C = (p >> 0) & 1
	cpu.Z = (p >> 1) & 1
	cpu.I = (p >> 2) & 1
	cpu.D = (p >> 3) & 1
	cpu.B = (p >> 4) & 1
	cpu.U = (p >> 5) & 1
	cpu.V = (p >> 6) & 1
	cpu.N = (p >> 7) & 1
}

// Reset loads PC from the reset vector and charges the fixed reset cost of 7
// cycles. A jammed CPU is released.
func (cpu *CPU) Reset(bus *Bus) {
	cpu.PC = cpu.read16(bus, vectorReset)
	cpu.A = 0
	cpu.X = 0
	cpu.Y = 0
	// 栈指针初始化为$FD即指向$1FD
	cpu.SP = 0xfd
	cpu.SetFlags(0x24)
	cpu.Cycles = 0
	cpu.cycles = resetCycles
	cpu.jammed = false
	cpu.APU.Reset()
}

// Jammed is true once a JAM opcode has been executed. Only Reset clears it.
func (cpu *CPU) Jammed() bool {
	return cpu.jammed
}

// Clock advances the CPU by one cycle. An instruction executes in full on the
// first of its cycles and the remaining cycles are counted down.
func (cpu *CPU) Clock(bus *Bus) {
	if cpu.jammed {
		return
	}
	if cpu.cycles == 0 {
		cpu.execute(bus)
	}
	if cpu.cycles > 0 {
		cpu.cycles--
	}
	cpu.Cycles++
}

// Step runs the CPU until one complete instruction has executed and returns
// the number of cycles it took. Cycles left over from a previous instruction
// or from reset are run first and not counted.
func (cpu *CPU) Step(bus *Bus) int {
	for cpu.cycles > 0 && !cpu.jammed {
		cpu.Clock(bus)
	}
	start := cpu.Cycles
	cpu.Clock(bus)
	for cpu.cycles > 0 && !cpu.jammed {
		cpu.Clock(bus)
	}
	return int(cpu.Cycles - start)
}

// 中断触发相关, irq/nmi/brk实现类似
func (cpu *CPU) interrupt(bus *Bus, vector uint16) {
	cpu.push16(bus, cpu.PC)
	// B 清零, U 置位
	cpu.push(bus, cpu.Flags()&^0x10|0x20)
	cpu.I = 1
	cpu.PC = cpu.read16(bus, vector)
	cpu.cycles += 7
}

// IRQ services a maskable interrupt. Ignored while I is set.
func (cpu *CPU) IRQ(bus *Bus) {
	if cpu.jammed || cpu.I == 1 {
		return
	}
	cpu.interrupt(bus, vectorIRQ)
}

// NMI services a non-maskable interrupt.
func (cpu *CPU) NMI(bus *Bus) {
	if cpu.jammed {
		return
	}
	cpu.interrupt(bus, vectorNMI)
}

// 判断地址是否跨页, 跨页则返回true
func pageDiff(a uint16, b uint16) bool {
	return a&0xff00 != b&0xff00
}

// step执行一个指令：读指令-寻址-将数据提供给指令方法执行-计算时钟数
func (cpu *CPU) execute(bus *Bus) {
	// 初始1byte必定是opcode
	opcode := cpu.read(bus, cpu.PC)
	cpu.PC++

	entry := opcodeTable[opcode]
	if entry == nil {
		panic("cpu: no table entry for opcode")
	}

	address, pageCrossed := cpu.address(bus, entry.mode)

	cycles := int(entry.cycles)
	if pageCrossed {
		cycles += int(entry.pageCycles)
	}
	cycles += cpu.run(bus, entry, address, pageCrossed)

	if cpu.jammed {
		logger.Logf(logger.Allow, "cpu", "jammed at $%04x", cpu.PC)
		cpu.cycles = 0
		return
	}
	cpu.cycles = cycles
}

// address 按寻址方式计算操作数地址, PC 移到下一条指令
// 参考这里： https://github.com/dustpg/BlogFM/issues/9
func (cpu *CPU) address(bus *Bus, mode addrMode) (address uint16, pageCrossed bool) {
	pc := cpu.PC

	switch mode {
	case modeAbsolute:
		address = cpu.read16(bus, pc)
	case modeAbsoluteX:
		base := cpu.read16(bus, pc)
		address = base + uint16(cpu.X)
		pageCrossed = pageDiff(base, address)
	case modeAbsoluteY:
		base := cpu.read16(bus, pc)
		address = base + uint16(cpu.Y)
		pageCrossed = pageDiff(base, address)
	case modeAccumulator, modeImplied:
		// 无需地址置0
		address = 0
	case modeImmediate:
		address = pc
	// 变址间接寻址
	case modeIndexedIndirect:
		// 将指令的数据 + X 结果作为零页地址去获取数据作为新地址
		address = cpu.read16bug(bus, uint16(cpu.read(bus, pc)+cpu.X))
	// 间接寻址
	case modeIndirect:
		address = cpu.read16bug(bus, cpu.read16(bus, pc))
	// 间接变址寻址
	case modeIndirectIndexed:
		base := cpu.read16bug(bus, uint16(cpu.read(bus, pc)))
		address = base + uint16(cpu.Y)
		pageCrossed = pageDiff(base, address)
	// 相对寻址
	case modeRelative:
		offset := uint16(cpu.read(bus, pc))
		next := pc + 1
		if offset < 0x80 {
			address = next + offset
		} else {
			address = next + offset - 0x100
		}
	case modeZeroPage:
		address = uint16(cpu.read(bus, pc))
	case modeZeroPageX:
		address = uint16(cpu.read(bus, pc) + cpu.X)
	case modeZeroPageY:
		address = uint16(cpu.read(bus, pc) + cpu.Y)
	default:
		panic("cpu: unknown address mode")
	}

	cpu.PC += mode.size() - 1
	return address, pageCrossed
}
