package ui

import (
	"encoding/binary"
	"testing"

	"github.com/55utah/fc-simulator/nes"
	"github.com/55utah/fc-simulator/test"
)

func TestPCM16(t *testing.T) {
	test.ExpectedSuccess(t, pcm16(0) == -32767)
	test.ExpectedSuccess(t, pcm16(0.5) == 0)
	test.ExpectedSuccess(t, pcm16(1) == 32767)
	test.ExpectedSuccess(t, pcm16(3) == 32767)
	test.ExpectedSuccess(t, pcm16(-1) == -32767)
}

func TestFillPCM(t *testing.T) {
	q := nes.NewAudioQueue(16)
	q.Push(1)
	q.Push(0)

	last := pcm16(0)
	buf := make([]byte, 8)
	test.Equate(t, fillPCM(buf, q, &last), 2)
	test.Equate(t, q.Len(), 0)

	test.ExpectedSuccess(t, int16(binary.LittleEndian.Uint16(buf[0:])) == 32767)
	test.ExpectedSuccess(t, int16(binary.LittleEndian.Uint16(buf[2:])) == -32767)

	// 队列空了保持最后一个值
	test.ExpectedSuccess(t, int16(binary.LittleEndian.Uint16(buf[4:])) == -32767)
	test.ExpectedSuccess(t, int16(binary.LittleEndian.Uint16(buf[6:])) == -32767)
	test.ExpectedSuccess(t, last == -32767)
}

func TestFillPCMUnderrun(t *testing.T) {
	q := nes.NewAudioQueue(16)
	q.Push(0.75)

	last := pcm16(0)
	buf := make([]byte, 6)
	test.Equate(t, fillPCM(buf, q, &last), 1)
	for i := 0; i < len(buf); i += 2 {
		test.ExpectedSuccess(t, int16(binary.LittleEndian.Uint16(buf[i:])) == pcm16(0.75))
	}

	// 一开始就是空的: 静音电平, 不是 0
	last = pcm16(0)
	test.Equate(t, fillPCM(buf, q, &last), 0)
	test.ExpectedSuccess(t, int16(binary.LittleEndian.Uint16(buf[0:])) == -32767)
}

func TestPortAudioCallback(t *testing.T) {
	q := nes.NewAudioQueue(16)
	q.Push(0.25)
	q.Push(0.75)

	audio := &portAudio{outputChannels: 2, queue: q}
	out := make([]float32, 6)
	audio.callback(out)

	test.Equate(t, out[0], float32(0.25))
	test.Equate(t, out[1], float32(0.25))
	test.Equate(t, out[2], float32(0.75))
	test.Equate(t, out[3], float32(0.75))
	test.Equate(t, out[4], float32(0))
	test.Equate(t, out[5], float32(0))
}
