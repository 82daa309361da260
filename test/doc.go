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

// Package test holds the small helpers shared by the package tests.
//
// Equate and the Expected functions report with t.Errorf() so a test can
// carry on after a mismatch. The Demand functions stop the test with
// t.Fatalf().
//
// A nil value counts as success. An error interface holding nil arrives here
// as an untyped nil so ExpectedSuccess(t, err) does the right thing.
package test
