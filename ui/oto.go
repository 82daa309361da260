package ui

import (
	"encoding/binary"
	"fmt"

	"github.com/55utah/fc-simulator/nes"

	"github.com/hajimehoshi/oto"
)

// 单声道 16 位
const (
	otoChannels  = 1
	otoBytes     = 2
	otoChunk     = 512
	otoBufferLen = otoChunk * otoBytes * 4
)

type otoAudio struct {
	ctx        *oto.Context
	player     *oto.Player
	sampleRate int
	queue      *nes.AudioQueue
	last       int16
	quit       chan struct{}
	done       chan struct{}
}

func newOto(queue *nes.AudioQueue, sampleRate int) (*otoAudio, error) {
	ctx, err := oto.NewContext(sampleRate, otoChannels, otoBytes, otoBufferLen)
	if err != nil {
		return nil, fmt.Errorf("audio: %w", err)
	}

	audio := &otoAudio{
		ctx:        ctx,
		player:     ctx.NewPlayer(),
		sampleRate: sampleRate,
		queue:      queue,
		last:       pcm16(0),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go audio.run()

	return audio, nil
}

func (audio *otoAudio) SampleRate() float64 {
	return float64(audio.sampleRate)
}

func (audio *otoAudio) Close() error {
	close(audio.quit)
	<-audio.done
	if err := audio.player.Close(); err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	return audio.ctx.Close()
}

// Write 会阻塞到播放器有空间为止, 所以这个循环跟着声卡的速度走
func (audio *otoAudio) run() {
	defer close(audio.done)

	buf := make([]byte, otoChunk*otoBytes)
	for {
		select {
		case <-audio.quit:
			return
		default:
		}

		fillPCM(buf, audio.queue, &audio.last)
		if _, err := audio.player.Write(buf); err != nil {
			return
		}
	}
}

// fillPCM converts samples in the range 0 to 1 to signed 16-bit little endian
// PCM. When the queue runs dry the last value written is held, so an underrun
// does not jump the waveform.
func fillPCM(buf []byte, queue *nes.AudioQueue, last *int16) int {
	n := 0
	for i := 0; i+1 < len(buf); i += 2 {
		if s, ok := queue.TryPop(); ok {
			*last = pcm16(s)
			n++
		}
		binary.LittleEndian.PutUint16(buf[i:], uint16(*last))
	}
	return n
}

func pcm16(s float32) int16 {
	f := (s*2 - 1) * 32767
	if f > 32767 {
		f = 32767
	} else if f < -32767 {
		f = -32767
	}
	return int16(f)
}
