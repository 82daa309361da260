package nes

import (
	"testing"

	"github.com/55utah/fc-simulator/test"
)

func expectPanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic")
		}
	}()
	f()
}

func countSamples(apu *APU, cycles int) int {
	n := 0
	for i := 0; i < cycles; i++ {
		if _, ok := apu.TryClockSample(); ok {
			n++
		}
	}
	return n
}

func TestSampleRate(t *testing.T) {
	apu := NewAPU()
	n := countSamples(apu, CPUFrequency)
	test.ExpectedSuccess(t, n >= 44099 && n <= 44100)

	// 两倍速时每个CPU周期只有一半的时间
	apu = NewAPU()
	apu.AdjustCPUClockRate(2)
	n = countSamples(apu, CPUFrequency)
	test.ExpectedSuccess(t, n >= 22049 && n <= 22050)

	apu = NewAPU()
	apu.AdjustSampleRate(48000)
	n = countSamples(apu, CPUFrequency)
	test.ExpectedSuccess(t, n >= 47999 && n <= 48000)
}

func TestRatePanics(t *testing.T) {
	apu := NewAPU()
	expectPanic(t, func() { apu.AdjustSampleRate(0) })
	expectPanic(t, func() { apu.AdjustCPUClockRate(0) })
	expectPanic(t, func() { apu.AdjustCPUClockRate(2.5) })
}

func TestLengthStatus(t *testing.T) {
	apu := NewAPU()

	// 关闭时不加载长度
	apu.WriteRegister(0x4003, 0x08)
	test.Equate(t, apu.ReadRegister(0x4015), 0)

	apu.WriteRegister(0x4015, 0x0F)
	apu.WriteRegister(0x4003, 0x08)
	apu.WriteRegister(0x4007, 0x08)
	apu.WriteRegister(0x400B, 0x08)
	apu.WriteRegister(0x400F, 0x08)
	test.Equate(t, apu.ReadRegister(0x4015), 0x0F)
	test.Equate(t, apu.pulse1.length.value, 254)

	apu.WriteRegister(0x4015, 0x05)
	test.Equate(t, apu.ReadRegister(0x4015), 0x05)
	test.Equate(t, apu.pulse2.length.value, 0)
}

func TestLengthCountdown(t *testing.T) {
	apu := NewAPU()
	bus := &Bus{}
	apu.WriteRegister(0x4015, 0x01)
	// 长度索引 3 = 2
	apu.WriteRegister(0x4003, 0x03<<3)
	test.Equate(t, apu.pulse1.length.value, 2)

	// 两个半帧之后静音, 4步模式一帧约 29830 个CPU周期
	for i := 0; i < 30000; i++ {
		apu.Clock(bus)
	}
	test.Equate(t, apu.ReadRegister(0x4015)&0x01, 0)
}

func TestFrameIRQ(t *testing.T) {
	bus := &Bus{}

	apu := NewAPU()
	for i := 0; i < 30000; i++ {
		apu.Clock(bus)
	}
	test.ExpectedSuccess(t, apu.IRQActive())
	test.Equate(t, apu.ReadRegister(0x4015)&0x40, 0x40)
	test.ExpectedFailure(t, apu.IRQActive())

	// 中断禁止
	apu = NewAPU()
	apu.WriteRegister(0x4017, 0x40)
	for i := 0; i < 30000; i++ {
		apu.Clock(bus)
	}
	test.ExpectedFailure(t, apu.IRQActive())

	// 写 $4017 禁止中断时清除已有的中断
	apu = NewAPU()
	for i := 0; i < 30000; i++ {
		apu.Clock(bus)
	}
	test.ExpectedSuccess(t, apu.IRQActive())
	apu.WriteRegister(0x4017, 0x40)
	test.ExpectedFailure(t, apu.IRQActive())

	// 5步模式没有帧中断
	apu = NewAPU()
	apu.WriteRegister(0x4017, 0x80)
	for i := 0; i < 40000; i++ {
		apu.Clock(bus)
	}
	test.ExpectedFailure(t, apu.IRQActive())
}

func TestDMC(t *testing.T) {
	bus := &Bus{}
	apu := NewAPU()

	apu.WriteRegister(0x4010, 0x80)
	apu.WriteRegister(0x4012, 0x00)
	apu.WriteRegister(0x4013, 0x00)
	apu.WriteRegister(0x4015, 0x10)
	test.Equate(t, apu.ReadRegister(0x4015)&0x10, 0x10)

	// 一个字节的样本, 取完马上中断
	apu.Clock(bus)
	test.Equate(t, bus.DMCStall, 2)
	test.ExpectedSuccess(t, apu.IRQActive())
	test.Equate(t, apu.ReadRegister(0x4015)&0x90, 0x80)

	// 写 $4015 清除 DMC 中断
	apu.WriteRegister(0x4015, 0x00)
	test.ExpectedFailure(t, apu.IRQActive())

	// 直接写输出
	apu.WriteRegister(0x4011, 0xFF)
	test.Equate(t, apu.dmc.output(), 0x7F)
}

func TestNoiseLFSR(t *testing.T) {
	n := noise{lfsr: 1}
	seen := map[uint16]bool{}
	for i := 0; i < 32767; i++ {
		seen[n.lfsr] = true
		n.clockTimer()
	}
	// 长模式下周期是 32767
	test.Equate(t, n.lfsr, 1)
	test.Equate(t, len(seen), 32767)
}

func TestChannelMute(t *testing.T) {
	apu := NewAPU()
	test.ExpectedSuccess(t, apu.ChannelEnabled(ChannelNoise))
	apu.SetChannelEnabled(ChannelNoise, false)
	test.ExpectedFailure(t, apu.ChannelEnabled(ChannelNoise))

	// 复位保留静音设置
	apu.Reset()
	test.ExpectedFailure(t, apu.ChannelEnabled(ChannelNoise))

	// 噪声固定音量 15, 静音后历史里全是 0
	apu.WriteRegister(0x4015, 0x08)
	apu.WriteRegister(0x400C, 0x1F)
	apu.WriteRegister(0x400F, 0x08)
	for i := 0; i < 2000; i++ {
		apu.sample()
	}
	h := apu.ChannelHistory(ChannelNoise)
	test.Equate(t, len(h), historySize)
	for _, v := range h {
		test.DemandEquality(t, v, float32(0))
	}

	apu.ClearHistory()
	test.Equate(t, len(apu.ChannelHistory(ChannelNoise)), 0)
}

func TestHistoryOrder(t *testing.T) {
	apu := NewAPU()
	apu.WriteRegister(0x4011, 10)
	apu.sample()
	apu.WriteRegister(0x4011, 20)
	apu.sample()

	h := apu.ChannelHistory(ChannelDMC)
	test.Equate(t, len(h), 2)
	test.Equate(t, h[0], float32(10))
	test.Equate(t, h[1], float32(20))
}

func TestMixer(t *testing.T) {
	apu := NewAPU()
	// 三角波停下来时保持在 15
	test.Equate(t, apu.triangle.output(), 15)
	apu.SetChannelEnabled(ChannelTriangle, false)
	test.Equate(t, apu.sample(), float32(0))

	apu.WriteRegister(0x4011, 0x7F)
	s := apu.sample()
	test.ExpectedSuccess(t, s > 0 && s < 1)
}

func TestChannelNames(t *testing.T) {
	test.Equate(t, ChannelPulse1.String(), "pulse1")
	test.Equate(t, ChannelDMC.String(), "dmc")
	test.Equate(t, Channel(10).String(), "unknown")
}
