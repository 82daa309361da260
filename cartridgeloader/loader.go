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

package cartridgeloader

import (
	"crypto/sha1"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/55utah/fc-simulator/curated"
)

// LoaderError is the pattern of errors returned while loading a ROM.
const LoaderError = "cartridgeloader: %v"

// FileExtensions is the list of file extensions recognised as iNES images.
var FileExtensions = [...]string{".NES"}

// Loader is used to specify the ROM to insert into the console.
type Loader struct {
	// filename of the ROM. may also be an http or https URL.
	Filename string

	// expected hash of the ROM data. empty string indicates that the hash is
	// unknown and need not be validated. after a successful Load() the value
	// will be the hash of the loaded data
	Hash string

	// copy of the loaded data
	Data []byte
}

// NewLoader is the preferred method of initialisation for the Loader type.
func NewLoader(filename string) Loader {
	return Loader{Filename: filename}
}

// ShortName returns the filename without the path and the extension.
func (cl Loader) ShortName() string {
	name := filepath.Base(cl.Filename)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// HasLoaded returns true if Load() has been successfully called.
func (cl Loader) HasLoaded() bool {
	return len(cl.Data) > 0
}

// Load the ROM data. Filenames with an http or https scheme are fetched,
// anything else is read from the local filesystem.
func (cl *Loader) Load() error {
	if cl.HasLoaded() {
		return nil
	}

	scheme := "file"
	if u, err := url.Parse(cl.Filename); err == nil && u.Scheme != "" {
		scheme = u.Scheme
	}

	switch scheme {
	case "http", "https":
		resp, err := http.Get(cl.Filename)
		if err != nil {
			return curated.Errorf(LoaderError, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return curated.Errorf(LoaderError, fmt.Sprintf("http status %d", resp.StatusCode))
		}

		cl.Data, err = io.ReadAll(resp.Body)
		if err != nil {
			return curated.Errorf(LoaderError, err)
		}

	case "file":
		data, err := os.ReadFile(cl.Filename)
		if err != nil {
			return curated.Errorf(LoaderError, err)
		}
		cl.Data = data

	default:
		// windows drive letters parse as a scheme
		if len(scheme) == 1 {
			data, err := os.ReadFile(cl.Filename)
			if err != nil {
				return curated.Errorf(LoaderError, err)
			}
			cl.Data = data
			break
		}
		return curated.Errorf(LoaderError, fmt.Sprintf("unsupported URL scheme (%s)", scheme))
	}

	if len(cl.Data) == 0 {
		return curated.Errorf(LoaderError, "empty file")
	}

	hash := fmt.Sprintf("%x", sha1.Sum(cl.Data))
	if cl.Hash != "" && cl.Hash != hash {
		cl.Data = nil
		return curated.Errorf(LoaderError, "unexpected hash value")
	}
	cl.Hash = hash

	return nil
}

// ListROMs returns the names of the iNES files in dir, sorted.
func ListROMs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, curated.Errorf(LoaderError, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		ext := strings.ToUpper(filepath.Ext(e.Name()))
		for _, x := range FileExtensions {
			if ext == x {
				names = append(names, e.Name())
				break
			}
		}
	}
	sort.Strings(names)

	return names, nil
}
