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

// Package cartridgeloader reads iNES images from disk (or over HTTP) and
// manages the battery backed save RAM that goes with them.
//
// A Loader names a ROM and, once Load() has been called, carries its data and
// a SHA1 hash of the data. The data is given to nes.NewConsole() or
// Console.LoadCartridge().
//
// Saves are kept in a single folder, one file per game, named after the ROM
// file with the extension replaced by ".sav". Saves.Load() is called after
// the cartridge is inserted and Saves.Write() when it is removed. With
// autosave enabled the host also calls Saves.AutoWrite() periodically.
package cartridgeloader
