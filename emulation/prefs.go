package emulation

import (
	"fmt"
	"strings"

	"github.com/55utah/fc-simulator/cartridgeloader"
	"github.com/55utah/fc-simulator/curated"
	"github.com/55utah/fc-simulator/nes"
	"github.com/55utah/fc-simulator/prefs"
)

// Audio backends selectable with the audio.backend preference.
const (
	BackendPortAudio = "portaudio"
	BackendOto       = "oto"
	BackendNone      = "none"
)

// Preferences of the emulator, backed by a prefs file.
type Preferences struct {
	dsk *prefs.Disk

	Speed      prefs.Float
	AutoSave   prefs.Bool
	SampleRate prefs.Int
	Volume     prefs.Float
	Backend    prefs.String
	SaveFolder prefs.String
	Scale      prefs.Int

	// 按键绑定, 顺序和手柄的位一致: A B Select Start Up Down Left Right
	Keys [8]prefs.String
}

var keyNames = [8]string{"a", "b", "select", "start", "up", "down", "left", "right"}

var keyButtons = [8]byte{
	nes.ButtonA, nes.ButtonB, nes.ButtonSelect, nes.ButtonStart,
	nes.ButtonUp, nes.ButtonDown, nes.ButtonLeft, nes.ButtonRight,
}

// 默认按键: J=A K=B U=Select I=Start WSAD 方向
var defaultKeys = [8]string{"J", "K", "U", "I", "W", "S", "A", "D"}

// NewPreferences is the preferred method of initialisation for the
// Preferences type. Values are set to their defaults and then loaded from the
// file at path, if it exists.
func NewPreferences(path string) (*Preferences, error) {
	p := &Preferences{}
	p.SetDefaults()

	var err error
	p.dsk, err = prefs.NewDisk(path)
	if err != nil {
		return nil, err
	}

	if err := p.dsk.Add("emulation.speed", &p.Speed); err != nil {
		return nil, err
	}
	if err := p.dsk.Add("emulation.autosave", &p.AutoSave); err != nil {
		return nil, err
	}
	if err := p.dsk.Add("audio.samplerate", &p.SampleRate); err != nil {
		return nil, err
	}
	if err := p.dsk.Add("audio.volume", &p.Volume); err != nil {
		return nil, err
	}
	if err := p.dsk.Add("audio.backend", &p.Backend); err != nil {
		return nil, err
	}
	if err := p.dsk.Add("saves.folder", &p.SaveFolder); err != nil {
		return nil, err
	}
	if err := p.dsk.Add("display.scale", &p.Scale); err != nil {
		return nil, err
	}
	for i := range p.Keys {
		if err := p.dsk.Add("keys."+keyNames[i], &p.Keys[i]); err != nil {
			return nil, err
		}
	}

	p.Speed.SetHookPre(func(v prefs.Value) error {
		if s := v.(float64); s < 0.5 || s > 2 {
			return fmt.Errorf("emulation.speed must be between 0.5 and 2.0 (%v)", s)
		}
		return nil
	})
	p.Scale.SetHookPre(func(v prefs.Value) error {
		if s := v.(int); s < 1 || s > 8 {
			return fmt.Errorf("display.scale must be between 1 and 8 (%d)", s)
		}
		return nil
	})
	p.SampleRate.SetHookPre(func(v prefs.Value) error {
		if r := v.(int); r < 8000 || r > 192000 {
			return fmt.Errorf("audio.samplerate must be between 8000 and 192000 (%d)", r)
		}
		return nil
	})
	p.Volume.SetHookPre(func(v prefs.Value) error {
		if f := v.(float64); f < 0 || f > 1 {
			return fmt.Errorf("audio.volume must be between 0.0 and 1.0 (%v)", f)
		}
		return nil
	})
	p.Backend.SetHookPre(func(v prefs.Value) error {
		switch v.(string) {
		case BackendPortAudio, BackendOto, BackendNone:
			return nil
		}
		return fmt.Errorf("unknown audio.backend (%v)", v)
	})

	err = p.dsk.Load()
	if err != nil && !curated.Is(err, prefs.NoPrefsFile) {
		return nil, err
	}

	return p, nil
}

// SetDefaults reverts all preferences to their default value.
func (p *Preferences) SetDefaults() {
	_ = p.Speed.Set(1.0)
	_ = p.AutoSave.Set(true)
	_ = p.SampleRate.Set(nes.DefaultSampleRate)
	_ = p.Volume.Set(1.0)
	_ = p.Backend.Set(BackendPortAudio)
	_ = p.SaveFolder.Set(cartridgeloader.DefaultSaveFolder)
	_ = p.Scale.Set(2)
	for i := range p.Keys {
		_ = p.Keys[i].Set(defaultKeys[i])
	}
}

// Load preferences from disk.
func (p *Preferences) Load() error {
	return p.dsk.Load()
}

// Save current preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}

// KeyMap returns the button bit for every bound key name. Key names are
// upper case, the same as fyne's key names for letters.
func (p *Preferences) KeyMap() map[string]byte {
	m := make(map[string]byte, len(p.Keys))
	for i := range p.Keys {
		k := strings.ToUpper(strings.TrimSpace(p.Keys[i].String()))
		if k != "" {
			m[k] |= keyButtons[i]
		}
	}
	return m
}
