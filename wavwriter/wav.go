// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

// Package wavwriter records the console's audio output to a WAV file. The
// samples are buffered in memory in their entirety and written to disk when
// EndMixing() is called, so it is only suitable for short recordings and for
// testing.
package wavwriter

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/55utah/fc-simulator/curated"
	"github.com/55utah/fc-simulator/logger"
)

// WavWriteError is the pattern of every error returned by the package.
const WavWriteError = "wavwriter: %v"

const bitDepth = 16

// WavWriter collects mono samples in the range 0..1 as produced by the APU
// mixer.
type WavWriter struct {
	filename   string
	sampleRate int
	buffer     []int
}

// New is the preferred method of initialisation for the WavWriter type.
func New(filename string, sampleRate int) (*WavWriter, error) {
	if sampleRate <= 0 {
		return nil, curated.Errorf(WavWriteError, "sample rate must be positive")
	}
	return &WavWriter{
		filename:   filename,
		sampleRate: sampleRate,
		buffer:     make([]int, 0),
	}, nil
}

// SetAudio appends samples to the recording.
func (aw *WavWriter) SetAudio(samples ...float32) {
	for _, s := range samples {
		// 混音器的输出是 0..1, 转成有符号 16 位
		v := int((s*2 - 1) * 32767)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		aw.buffer = append(aw.buffer, v)
	}
}

// Len is the number of samples recorded so far.
func (aw *WavWriter) Len() int {
	return len(aw.buffer)
}

// EndMixing writes the recording to disk.
func (aw *WavWriter) EndMixing() (rerr error) {
	f, err := os.Create(aw.filename)
	if err != nil {
		return curated.Errorf(WavWriteError, err)
	}
	defer func() {
		err := f.Close()
		if err != nil && rerr == nil {
			rerr = curated.Errorf(WavWriteError, err)
		}
	}()

	enc := wav.NewEncoder(f, aw.sampleRate, bitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  aw.sampleRate,
		},
		Data:           aw.buffer,
		SourceBitDepth: bitDepth,
	}

	logger.Logf(logger.Allow, "wavwriter", "writing %d samples to %s", len(aw.buffer), aw.filename)

	if err := enc.Write(buf); err != nil {
		return curated.Errorf(WavWriteError, err)
	}
	if err := enc.Close(); err != nil {
		return curated.Errorf(WavWriteError, err)
	}

	return nil
}

// Reset discards the recording.
func (aw *WavWriter) Reset() {
	aw.buffer = aw.buffer[:0]
}
