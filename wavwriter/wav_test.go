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

package wavwriter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/youpy/go-wav"

	"github.com/55utah/fc-simulator/curated"
	"github.com/55utah/fc-simulator/test"
	"github.com/55utah/fc-simulator/wavwriter"
)

func TestWrite(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "out.wav")

	aw, err := wavwriter.New(fn, 44100)
	test.DemandSuccess(t, err)

	aw.SetAudio(0, 0.5, 1, 2)
	test.Equate(t, aw.Len(), 4)
	test.DemandSuccess(t, aw.EndMixing())

	f, err := os.Open(fn)
	test.DemandSuccess(t, err)
	defer f.Close()

	r := wav.NewReader(f)
	format, err := r.Format()
	test.DemandSuccess(t, err)
	test.Equate(t, int(format.NumChannels), 1)
	test.Equate(t, int(format.SampleRate), 44100)
	test.Equate(t, int(format.BitsPerSample), 16)

	samples, err := r.ReadSamples(4)
	test.DemandSuccess(t, err)
	test.Equate(t, len(samples), 4)

	expected := []int{-32767, 0, 32767, 32767}
	for i, s := range samples {
		test.DemandEquality(t, r.IntValue(s, 0), expected[i], i)
	}
}

func TestReset(t *testing.T) {
	aw, err := wavwriter.New(filepath.Join(t.TempDir(), "out.wav"), 48000)
	test.DemandSuccess(t, err)
	aw.SetAudio(0.1, 0.2)
	aw.Reset()
	test.Equate(t, aw.Len(), 0)
}

func TestBadParameters(t *testing.T) {
	_, err := wavwriter.New("out.wav", 0)
	test.ExpectedSuccess(t, curated.Is(err, wavwriter.WavWriteError))

	aw, err := wavwriter.New(filepath.Join(t.TempDir(), "missing", "out.wav"), 44100)
	test.DemandSuccess(t, err)
	err = aw.EndMixing()
	test.ExpectedSuccess(t, curated.Is(err, wavwriter.WavWriteError))
}
