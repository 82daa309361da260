package ui

import (
	"fmt"

	"github.com/55utah/fc-simulator/emulation"
	"github.com/55utah/fc-simulator/logger"
	"github.com/55utah/fc-simulator/nes"

	"github.com/gordonklaus/portaudio"
)

// AudioDevice plays the samples the emulation sends to its output queue.
type AudioDevice interface {
	SampleRate() float64
	Close() error
}

// OpenAudio opens the audio backend named by the audio.backend preference and
// tells the emulation the device's sample rate. BackendNone returns a nil
// device.
func OpenAudio(emu *emulation.Emulation) (AudioDevice, error) {
	var dev AudioDevice
	var err error

	backend := emu.Prefs().Backend.String()
	switch backend {
	case emulation.BackendNone:
		return nil, nil
	case emulation.BackendPortAudio:
		dev, err = newPortAudio(emu.Output)
	case emulation.BackendOto:
		dev, err = newOto(emu.Output, emu.Prefs().SampleRate.Get().(int))
	default:
		return nil, fmt.Errorf("audio: unknown backend %q", backend)
	}
	if err != nil {
		return nil, err
	}

	emu.SetSampleRate(dev.SampleRate())
	logger.Logf(logger.Allow, "audio", "%s at %.0fHz", backend, dev.SampleRate())
	return dev, nil
}

type portAudio struct {
	stream         *portaudio.Stream
	sampleRate     float64
	outputChannels int
	queue          *nes.AudioQueue
}

func newPortAudio(queue *nes.AudioQueue) (*portAudio, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("audio: %w", err)
	}

	api, err := portaudio.DefaultHostApi()
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("audio: %w", err)
	}

	audio := &portAudio{queue: queue}

	parameters := portaudio.HighLatencyParameters(nil, api.DefaultOutputDevice)
	stream, err := portaudio.OpenStream(parameters, audio.callback)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("audio: %w", err)
	}

	audio.stream = stream
	audio.sampleRate = parameters.SampleRate
	audio.outputChannels = parameters.Output.Channels

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("audio: %w", err)
	}

	return audio, nil
}

func (audio *portAudio) SampleRate() float64 {
	return audio.sampleRate
}

func (audio *portAudio) Close() error {
	defer portaudio.Terminate()
	return audio.stream.Close()
}

// 每个声道输出同一个样本, 队列空了就输出 0
func (audio *portAudio) callback(out []float32) {
	var output float32
	for i := range out {
		if i%audio.outputChannels == 0 {
			sample, ok := audio.queue.TryPop()
			if ok {
				output = sample
			} else {
				output = 0
			}
		}
		out[i] = output
	}
}
