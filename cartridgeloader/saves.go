package cartridgeloader

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/55utah/fc-simulator/curated"
	"github.com/55utah/fc-simulator/logger"
	"github.com/55utah/fc-simulator/nes"
)

// DefaultSaveFolder is used when no folder has been set in the preferences.
const DefaultSaveFolder = "saves"

// Saves reads and writes save RAM files.
type Saves struct {
	Folder   string
	AutoSave bool
}

// SavePath returns the path of the save file for a ROM: the ROM's file stem
// with the extension ".sav", inside folder.
func SavePath(folder string, romFilename string) string {
	stem := filepath.Base(romFilename)
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	return filepath.Join(folder, stem+".sav")
}

// Load copies the save file of the ROM into the cartridge. A missing save
// file is not an error, the game has simply never been saved.
func (s *Saves) Load(cart *nes.Cartridge, romFilename string) error {
	if cart == nil || !cart.HasSaveRAM() {
		return nil
	}

	path := SavePath(s.Folder, romFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Logf(logger.Allow, "saves", "no save file for %s", filepath.Base(romFilename))
			return nil
		}
		return curated.Errorf(nes.SaveIoError, err)
	}

	if err := cart.LoadSaveRAM(data); err != nil {
		return err
	}

	logger.Logf(logger.Allow, "saves", "loaded save RAM from %s", path)
	return nil
}

// Write the cartridge's save RAM to disk. Nothing happens for cartridges
// without battery backed RAM.
func (s *Saves) Write(cart *nes.Cartridge, romFilename string) error {
	if cart == nil || !cart.HasSaveRAM() {
		return nil
	}

	if err := os.MkdirAll(s.Folder, 0o755); err != nil {
		return curated.Errorf(nes.SaveIoError, err)
	}

	path := SavePath(s.Folder, romFilename)
	if err := os.WriteFile(path, cart.SaveRAM(), 0o600); err != nil {
		return curated.Errorf(nes.SaveIoError, err)
	}

	logger.Logf(logger.Allow, "saves", "saved RAM to %s", path)
	return nil
}

// AutoWrite calls Write() if autosave is enabled.
func (s *Saves) AutoWrite(cart *nes.Cartridge, romFilename string) error {
	if !s.AutoSave {
		return nil
	}
	return s.Write(cart, romFilename)
}
