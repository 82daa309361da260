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

package logger_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/55utah/fc-simulator/logger"
	"github.com/55utah/fc-simulator/test"
)

func TestCentralLogger(t *testing.T) {
	logger.Clear()
	w := &strings.Builder{}

	logger.Write(w)
	test.Equate(t, w.String(), "")

	logger.Log(logger.Allow, "test", "this is a test")
	logger.Write(w)
	test.Equate(t, w.String(), "test: this is a test\n")

	w.Reset()

	logger.Log(logger.Allow, "test2", "this is another test")
	logger.Write(w)
	test.Equate(t, w.String(), "test: this is a test\ntest2: this is another test\n")

	// asking for too many entries in a Tail() should be okay
	w.Reset()
	logger.Tail(w, 100)
	test.Equate(t, w.String(), "test: this is a test\ntest2: this is another test\n")

	w.Reset()
	logger.Tail(w, 1)
	test.Equate(t, w.String(), "test2: this is another test\n")

	w.Reset()
	logger.Tail(w, 0)
	test.Equate(t, w.String(), "")
}

func TestRepeatedEntries(t *testing.T) {
	logger.Clear()
	w := &strings.Builder{}

	logger.Log(logger.Allow, "cpu", "jammed")
	logger.Log(logger.Allow, "cpu", "jammed")
	logger.Logf(logger.Allow, "cpu", "%s", "jammed")
	logger.Write(w)
	test.Equate(t, w.String(), "cpu: jammed (repeat x3)\n")
}

type prohibit struct{}

func (_ prohibit) AllowLogging() bool {
	return false
}

func TestPermission(t *testing.T) {
	logger.Clear()
	w := &strings.Builder{}

	logger.Log(prohibit{}, "tag", "detail")
	logger.Write(w)
	test.Equate(t, w.String(), "")
}

func TestMaximumEntries(t *testing.T) {
	logger.Clear()

	for i := 0; i < 300; i++ {
		logger.Logf(logger.Allow, "tag", "entry %d", i)
	}

	var n int
	var first string
	logger.BorrowLog(func(e []logger.Entry) {
		n = len(e)
		first = e[0].Detail
	})
	test.Equate(t, n, 256)
	test.Equate(t, first, fmt.Sprintf("entry %d", 300-256))
}

func TestEcho(t *testing.T) {
	logger.Clear()
	w := &strings.Builder{}

	logger.SetEcho(w)
	defer logger.SetEcho(nil)

	logger.Log(logger.Allow, "ui", "window opened")
	test.Equate(t, w.String(), "ui: window opened\n")
}
