package emulation_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/55utah/fc-simulator/cartridgeloader"
	"github.com/55utah/fc-simulator/emulation"
	"github.com/55utah/fc-simulator/nes"
	"github.com/55utah/fc-simulator/test"
)

// 16KB PRG + 8KB CHR, 程序放在 $8000, 复位向量指向 $8000
func makeROM(flags6 byte, program []byte) []byte {
	data := []byte{'N', 'E', 'S', 0x1A, 1, 1, flags6, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	prg := make([]byte, 0x4000)
	copy(prg, program)
	prg[0x3FFC] = 0x00
	prg[0x3FFD] = 0x80
	data = append(data, prg...)
	return append(data, make([]byte, 0x2000)...)
}

// LDA #$42; STA $6000; JMP $8005
var storeLoop = []byte{0xA9, 0x42, 0x8D, 0x00, 0x60, 0x4C, 0x05, 0x80}

// newTestEmulation writes the ROM to a temporary folder and inserts it. Saves
// go to a folder beside it.
func newTestEmulation(t *testing.T, rom []byte) (*emulation.Emulation, string) {
	t.Helper()

	dir := t.TempDir()
	p, err := emulation.NewPreferences(filepath.Join(dir, "prefs"))
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, p.SaveFolder.Set(filepath.Join(dir, "saves")))

	console, err := nes.NewConsole(nil)
	test.DemandSuccess(t, err)
	emu := emulation.New(console, p)

	fn := filepath.Join(dir, "game.nes")
	test.DemandSuccess(t, os.WriteFile(fn, rom, 0o600))
	test.DemandSuccess(t, emu.Insert(cartridgeloader.NewLoader(fn)))

	return emu, dir
}
