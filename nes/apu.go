package nes

import (
	"fmt"
)

// DefaultSampleRate is the output sample rate used until AdjustSampleRate is
// called.
const DefaultSampleRate = 44100

// 每个声道保留的历史样本数
const historySize = 1024

// Channel identifies one of the five APU voices.
type Channel int

const (
	ChannelPulse1 Channel = iota
	ChannelPulse2
	ChannelTriangle
	ChannelNoise
	ChannelDMC
	numChannels
)

func (ch Channel) String() string {
	switch ch {
	case ChannelPulse1:
		return "pulse1"
	case ChannelPulse2:
		return "pulse2"
	case ChannelTriangle:
		return "triangle"
	case ChannelNoise:
		return "noise"
	case ChannelDMC:
		return "dmc"
	}
	return "unknown"
}

// 帧序列器的步骤, 单位是APU时钟 (CPU时钟的一半)
const (
	frameStep1      = 3728
	frameStep2      = 7456
	frameStep3      = 11185
	frameStep4      = 14914
	frameStep5      = 18640
	frameReset4Step = 14915
	frameReset5Step = 18641
)

/*
output = square_out + tnd_out

	                      95.88
	square_out = -----------------------
	                    8128
	             ----------------- + 100
	             square1 + square2

	                      159.79
	tnd_out = ------------------------------
	                      1
	          ------------------------ + 100
	          triangle   noise    dmc
	          -------- + ----- + -----
	            8227     12241   22638
*/

// 查表法降低计算复杂度
var pulseTable [31]float32
var tndTable [203]float32

func init() {
	for i := 1; i < 31; i++ {
		pulseTable[i] = 95.52 / (8128.0/float32(i) + 100)
	}
	for i := 1; i < 203; i++ {
		tndTable[i] = 163.67 / (24329.0/float32(i) + 100)
	}
}

// APU is the 2A03 audio unit. It is owned by the CPU, which routes the APU
// registers to it, and is clocked once per CPU cycle.
type APU struct {
	pulse1   pulse
	pulse2   pulse
	triangle triangle
	noise    noise
	dmc      dmc

	cycle uint64

	// 帧计数器 $4017
	fiveStep     bool // 0：4 步模式，1：5 步模式
	irqInhibit   bool // 中断禁止标志
	frameCounter uint64
	frameIRQ     bool

	// 采样
	sampleRate       float64
	speed            float64
	nanosPerCPUCycle float64
	nanosPerSample   float64
	sampleClock      float64

	channelEnabled [numChannels]bool
	history        [numChannels][historySize]float32
	historyPos     int
	historyLen     int
}

// NewAPU creates an APU sampling at DefaultSampleRate at normal speed.
func NewAPU() *APU {
	apu := &APU{
		sampleRate: DefaultSampleRate,
		speed:      1,
	}
	for i := range apu.channelEnabled {
		apu.channelEnabled[i] = true
	}
	apu.updateRates()
	apu.Reset()
	return apu
}

// Reset silences every channel. Sample rate, speed and channel mutes are
// kept.
func (apu *APU) Reset() {
	apu.pulse1 = pulse{channel: 1}
	apu.pulse2 = pulse{channel: 2}
	apu.triangle = triangle{}
	apu.noise = noise{lfsr: 1}
	apu.dmc = newDMC()
	apu.cycle = 0
	apu.fiveStep = false
	apu.irqInhibit = false
	apu.frameCounter = 0
	apu.frameIRQ = false
	apu.sampleClock = 0
	apu.ClearHistory()
}

func (apu *APU) updateRates() {
	apu.nanosPerCPUCycle = 1e9 / (CPUFrequency * apu.speed)
	apu.nanosPerSample = 1e9 / apu.sampleRate
}

// AdjustSampleRate changes the output sample rate.
func (apu *APU) AdjustSampleRate(rate float64) {
	if rate <= 0 {
		panic(fmt.Sprintf("apu: sample rate must be positive (%f)", rate))
	}
	apu.sampleRate = rate
	apu.updateRates()
}

// AdjustCPUClockRate rescales the length of a CPU cycle so that the sample
// stream stays at real time when the emulation runs faster or slower. Speed
// must be in (0, 2].
func (apu *APU) AdjustCPUClockRate(speed float64) {
	if speed <= 0 || speed > 2 {
		panic(fmt.Sprintf("apu: speed out of range (%f)", speed))
	}
	apu.speed = speed
	apu.updateRates()
}

// Clock advances the APU by one CPU cycle.
func (apu *APU) Clock(bus *Bus) {
	// 三角波按CPU时钟, 其它是CPU时钟的一半
	apu.triangle.clockTimer()

	if apu.cycle%2 == 0 {
		apu.clockFrameSequencer()
		apu.pulse1.clockTimer()
		apu.pulse2.clockTimer()
		apu.noise.clockTimer()
		apu.dmc.clock(bus)
	}

	apu.cycle++
}

/*
4 步模式	5 步模式	功能
- - - f	- - - - -	产生中断
- l - l	- l - - l	驱动长度计数器（Length counter）和扫描单元（Sweep）
e e e e	e e e - e	驱动包络（Envelope）与线性计数器（Linear counter）
*/
func (apu *APU) clockFrameSequencer() {
	apu.frameCounter++
	if (!apu.fiveStep && apu.frameCounter == frameReset4Step) || (apu.fiveStep && apu.frameCounter == frameReset5Step) {
		apu.frameCounter = 0
	}

	switch apu.frameCounter {
	case frameStep1, frameStep3:
		apu.quarterFrame()
	case frameStep2:
		apu.quarterFrame()
		apu.halfFrame()
	case frameStep4:
		if !apu.fiveStep {
			apu.quarterFrame()
			apu.halfFrame()
			if !apu.irqInhibit {
				apu.frameIRQ = true
			}
		}
	case frameStep5:
		if apu.fiveStep {
			apu.quarterFrame()
			apu.halfFrame()
		}
	}
}

// 包络与线性计数器
func (apu *APU) quarterFrame() {
	apu.pulse1.envelope.clock()
	apu.pulse2.envelope.clock()
	apu.noise.envelope.clock()
	apu.triangle.clockLinear()
}

// 长度计数器和扫描单元
func (apu *APU) halfFrame() {
	apu.pulse1.length.clock()
	apu.pulse2.length.clock()
	apu.triangle.length.clock()
	apu.noise.length.clock()
	apu.pulse1.clockSweep()
	apu.pulse2.clockSweep()
}

// IRQActive is the APU's IRQ line: the frame interrupt or the DMC interrupt.
func (apu *APU) IRQActive() bool {
	return apu.frameIRQ || apu.dmc.irq
}

// WriteRegister handles a CPU write to $4000-$4013, $4015 or $4017.
func (apu *APU) WriteRegister(addr uint16, value byte) {
	switch {
	case addr >= 0x4000 && addr <= 0x4003:
		apu.pulse1.write(addr-0x4000, value)
	case addr >= 0x4004 && addr <= 0x4007:
		apu.pulse2.write(addr-0x4004, value)
	case addr >= 0x4008 && addr <= 0x400B:
		apu.triangle.write(addr-0x4008, value)
	case addr >= 0x400C && addr <= 0x400F:
		apu.noise.write(addr-0x400C, value)
	case addr >= 0x4010 && addr <= 0x4013:
		apu.dmc.write(addr-0x4010, value)
	case addr == 0x4015:
		apu.pulse1.length.setEnabled(value&0x01 != 0)
		apu.pulse2.length.setEnabled(value&0x02 != 0)
		apu.triangle.length.setEnabled(value&0x04 != 0)
		apu.noise.length.setEnabled(value&0x08 != 0)
		apu.dmc.setEnabled(value&0x10 != 0)
	case addr == 0x4017:
		apu.fiveStep = value&0x80 != 0
		apu.irqInhibit = value&0x40 != 0
		if apu.irqInhibit {
			apu.frameIRQ = false
		}
		apu.frameCounter = 0
		// 5步模式马上触发一次
		if apu.fiveStep {
			apu.quarterFrame()
			apu.halfFrame()
		}
	}
}

// ReadRegister handles a CPU read of $4015, the only readable APU register.
// Reading clears the frame interrupt.
func (apu *APU) ReadRegister(addr uint16) byte {
	if addr != 0x4015 {
		return 0
	}
	status := apu.peekStatus()
	apu.frameIRQ = false
	return status
}

func (apu *APU) peekStatus() byte {
	var status byte
	if apu.pulse1.length.active() {
		status |= 0x01
	}
	if apu.pulse2.length.active() {
		status |= 0x02
	}
	if apu.triangle.length.active() {
		status |= 0x04
	}
	if apu.noise.length.active() {
		status |= 0x08
	}
	if apu.dmc.bytesLeft > 0 {
		status |= 0x10
	}
	if apu.frameIRQ {
		status |= 0x40
	}
	if apu.dmc.irq {
		status |= 0x80
	}
	return status
}

// TryClockSample is called once per CPU cycle. It returns a mixed sample
// whenever enough emulated time has passed for the next output sample.
func (apu *APU) TryClockSample() (float32, bool) {
	apu.sampleClock += apu.nanosPerCPUCycle
	if apu.sampleClock < apu.nanosPerSample {
		return 0, false
	}
	apu.sampleClock -= apu.nanosPerSample
	return apu.sample(), true
}

// 最终输出, 顺便记录每个声道的历史
func (apu *APU) sample() float32 {
	var levels [numChannels]byte
	levels[ChannelPulse1] = apu.pulse1.output()
	levels[ChannelPulse2] = apu.pulse2.output()
	levels[ChannelTriangle] = apu.triangle.output()
	levels[ChannelNoise] = apu.noise.output()
	levels[ChannelDMC] = apu.dmc.output()

	for ch := range levels {
		if !apu.channelEnabled[ch] {
			levels[ch] = 0
		}
		apu.history[ch][apu.historyPos] = float32(levels[ch])
	}
	apu.historyPos = (apu.historyPos + 1) % historySize
	if apu.historyLen < historySize {
		apu.historyLen++
	}

	p := pulseTable[levels[ChannelPulse1]+levels[ChannelPulse2]]
	tnd := tndTable[3*int(levels[ChannelTriangle])+2*int(levels[ChannelNoise])+int(levels[ChannelDMC])]
	return p + tnd
}

// SetChannelEnabled mutes or unmutes a channel in the mix. The channel keeps
// running either way.
func (apu *APU) SetChannelEnabled(ch Channel, on bool) {
	apu.channelEnabled[ch] = on
}

// ChannelEnabled reports whether a channel is audible.
func (apu *APU) ChannelEnabled(ch Channel) bool {
	return apu.channelEnabled[ch]
}

// ChannelHistory returns a copy of the most recent output levels of a
// channel, oldest first. At most 1024 levels are kept.
func (apu *APU) ChannelHistory(ch Channel) []float32 {
	h := make([]float32, apu.historyLen)
	start := (apu.historyPos - apu.historyLen + historySize) % historySize
	for i := range h {
		h[i] = apu.history[ch][(start+i)%historySize]
	}
	return h
}

// ClearHistory forgets all recorded channel levels.
func (apu *APU) ClearHistory() {
	apu.historyPos = 0
	apu.historyLen = 0
}
