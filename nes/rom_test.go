package nes

import (
	"bytes"
	"testing"

	"github.com/55utah/fc-simulator/test"
)

// 中断处理程序的位置, 只有一条 RTI
const testHandler = 0xBF00

// makeROM 生成一个 iNES 镜像. PRG 用 NOP 填充, program 从 $8000 开始,
// 复位向量指向 $8000, NMI 和 IRQ 指向 testHandler.
func makeROM(mapper byte, prgBanks, chrBanks int, flags6 byte, program []byte) []byte {
	header := []byte{
		'N', 'E', 'S', 0x1A,
		byte(prgBanks), byte(chrBanks),
		flags6 | mapper<<4, mapper & 0xF0,
		0, 0, 0, 0, 0, 0, 0, 0,
	}

	prg := bytes.Repeat([]byte{0xEA}, prgBanks*prgBankSize)
	copy(prg, program)
	prg[testHandler-0x8000] = 0x40

	n := len(prg)
	prg[n-6], prg[n-5] = byte(testHandler&0xFF), byte(testHandler>>8)
	prg[n-4], prg[n-3] = 0x00, 0x80
	prg[n-2], prg[n-1] = byte(testHandler&0xFF), byte(testHandler>>8)

	chr := make([]byte, chrBanks*chrBankSize)
	for i := range chr {
		chr[i] = byte(i)
	}

	data := append(header, prg...)
	return append(data, chr...)
}

// newTestCPU 返回已经复位并且跑完复位周期的 CPU
func newTestCPU(t *testing.T, program []byte) (*CPU, *Bus) {
	t.Helper()
	cart, err := LoadINES(makeROM(0, 1, 1, 0, program))
	test.DemandSuccess(t, err)

	bus := &Bus{Cartridge: cart}
	cpu := NewCPU()
	cpu.Reset(bus)
	for cpu.cycles > 0 {
		cpu.Clock(bus)
	}
	return cpu, bus
}
