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

package curated_test

import (
	"errors"
	"io"
	"testing"

	"github.com/55utah/fc-simulator/curated"
	"github.com/55utah/fc-simulator/test"
)

const testError = "test error: %s"
const testErrorB = "test error B: %s"
const savesError = "saves: %v"

func TestDuplicateParts(t *testing.T) {
	e := curated.Errorf(savesError, "saves: file missing")
	test.Equate(t, e.Error(), "saves: file missing")

	f := curated.Errorf(savesError, e)
	test.Equate(t, f.Error(), "saves: file missing")
}

func TestIs(t *testing.T) {
	e := curated.Errorf(testError, "foo")
	test.Equate(t, e.Error(), "test error: foo")
	test.ExpectedSuccess(t, curated.Is(e, testError))
	test.ExpectedFailure(t, curated.Is(e, testErrorB))

	// plain errors are never curated
	test.ExpectedFailure(t, curated.IsAny(io.EOF))
	test.ExpectedFailure(t, curated.Is(nil, testError))
}

func TestHas(t *testing.T) {
	e := curated.Errorf(testError, "foo")
	f := curated.Errorf(testErrorB, e)

	test.ExpectedSuccess(t, curated.Has(f, testError))
	test.ExpectedSuccess(t, curated.Has(f, testErrorB))
	test.ExpectedFailure(t, curated.Is(f, testError))
	test.ExpectedFailure(t, curated.Has(e, testErrorB))
}

func TestUnwrap(t *testing.T) {
	e := curated.Errorf(savesError, io.ErrUnexpectedEOF)
	test.ExpectedSuccess(t, errors.Is(e, io.ErrUnexpectedEOF))
}
