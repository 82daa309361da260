// Package emulation drives a nes.Console on behalf of a host. It owns the
// console and serialises access to it: the run loop, user input and the
// debug snapshot all go through the Emulation type.
//
// The package has no dependency on a windowing system so that the same
// code serves the fyne window in the ui package and the headless runner.
package emulation

import (
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"github.com/55utah/fc-simulator/cartridgeloader"
	"github.com/55utah/fc-simulator/logger"
	"github.com/55utah/fc-simulator/nes"
	"github.com/55utah/fc-simulator/wavwriter"
)

// State indicates the emulation's state.
type State int

// List of possible emulation states.
const (
	Initialising State = iota
	Paused
	Running
	Ending
)

func (s State) String() string {
	switch s {
	case Initialising:
		return "initialising"
	case Paused:
		return "paused"
	case Running:
		return "running"
	case Ending:
		return "ending"
	}
	return "unknown"
}

// 每次最多模拟的时间, 防止窗口拖动之类的停顿之后追赶太久
const maxStep = 100 * time.Millisecond

const autoSaveInterval = 30 * time.Second

// 给输出设备的队列
const outputQueueSize = 8192

// Emulation wraps a console with everything a host needs to run it.
type Emulation struct {
	crit sync.Mutex

	console *nes.Console
	prefs   *Preferences
	saves   cartridgeloader.Saves
	loader  cartridgeloader.Loader
	state   State

	keys map[string]byte
	pads [2]byte

	// Output carries samples to the audio device. Samples are copied here
	// from the console's queue with the volume applied.
	Output *nes.AudioQueue
	wav    *wavwriter.WavWriter

	lastAutoSave time.Time
}

// New is the preferred method of initialisation for the Emulation type.
func New(console *nes.Console, p *Preferences) *Emulation {
	emu := &Emulation{
		console: console,
		prefs:   p,
		saves: cartridgeloader.Saves{
			Folder:   p.SaveFolder.String(),
			AutoSave: p.AutoSave.Get().(bool),
		},
		keys:         p.KeyMap(),
		Output:       nes.NewAudioQueue(outputQueueSize),
		lastAutoSave: time.Now(),
	}
	console.SetSpeed(p.Speed.Get().(float64))
	return emu
}

// State returns the current state of the emulation.
func (emu *Emulation) State() State {
	emu.crit.Lock()
	defer emu.crit.Unlock()
	return emu.state
}

// SetPaused pauses or resumes the emulation.
func (emu *Emulation) SetPaused(paused bool) {
	emu.crit.Lock()
	defer emu.crit.Unlock()
	if emu.state == Ending || !emu.console.Loaded() {
		return
	}
	emu.console.SetPaused(paused)
	if paused {
		emu.state = Paused
	} else {
		emu.state = Running
	}
}

// SetSpeed changes the emulation speed. The value must be between 0.5 and
// 2.0.
func (emu *Emulation) SetSpeed(speed float64) error {
	emu.crit.Lock()
	defer emu.crit.Unlock()
	if err := emu.prefs.Speed.Set(speed); err != nil {
		return err
	}
	emu.console.SetSpeed(speed)
	return nil
}

// SetSampleRate tells the APU the sample rate of the audio device.
func (emu *Emulation) SetSampleRate(rate float64) {
	emu.crit.Lock()
	defer emu.crit.Unlock()
	emu.console.CPU.APU.AdjustSampleRate(rate)
}

// Record audio to the WAV writer. Nil stops recording.
func (emu *Emulation) Record(w *wavwriter.WavWriter) {
	emu.crit.Lock()
	defer emu.crit.Unlock()
	emu.wav = w
}

// Insert loads the ROM named by the loader, inserts it and loads its save
// file. The cartridge being replaced, if any, has its save RAM written first.
func (emu *Emulation) Insert(cl cartridgeloader.Loader) error {
	if err := cl.Load(); err != nil {
		return err
	}

	emu.crit.Lock()
	defer emu.crit.Unlock()

	emu.writeSave()

	if err := emu.console.LoadCartridge(cl.Data); err != nil {
		return err
	}
	emu.loader = cl

	if err := emu.saves.Load(emu.console.Cartridge(), cl.Filename); err != nil {
		logger.Logf(logger.Allow, "saves", "%v", err)
	}

	logger.Logf(logger.Allow, "console", "inserted %s", cl.ShortName())
	emu.console.SetPaused(false)
	emu.state = Running
	return nil
}

// Eject writes the save RAM and removes the cartridge.
func (emu *Emulation) Eject() {
	emu.crit.Lock()
	defer emu.crit.Unlock()
	emu.writeSave()
	emu.console.Unload()
	emu.loader = cartridgeloader.Loader{}
	if emu.state != Ending {
		emu.state = Initialising
	}
}

// Reset presses the console's reset button.
func (emu *Emulation) Reset() {
	emu.crit.Lock()
	defer emu.crit.Unlock()
	emu.console.Reset()
	emu.Output.Drain()
	if emu.state == Paused {
		emu.console.SetPaused(false)
		emu.state = Running
	}
}

func (emu *Emulation) writeSave() {
	if !emu.console.Loaded() {
		return
	}
	if err := emu.saves.Write(emu.console.Cartridge(), emu.loader.Filename); err != nil {
		logger.Logf(logger.Allow, "saves", "%v", err)
	}
}

// KeyDown handles a key press. False if the key is not bound to a button.
func (emu *Emulation) KeyDown(key string) bool {
	return emu.key(key, true)
}

// KeyUp handles a key release. False if the key is not bound to a button.
func (emu *Emulation) KeyUp(key string) bool {
	return emu.key(key, false)
}

func (emu *Emulation) key(key string, down bool) bool {
	mask, ok := emu.keys[key]
	if !ok {
		return false
	}

	emu.crit.Lock()
	defer emu.crit.Unlock()

	if down {
		emu.pads[0] |= mask
	} else {
		emu.pads[0] &^= mask
	}
	emu.console.UpdateJoypadState(emu.pads[0], 0)
	return true
}

// Step runs the console for d of emulated time and returns a copy of the
// frame if one was completed. A jammed CPU pauses the emulation and the
// CpuJammed error is returned.
func (emu *Emulation) Step(d time.Duration) (*image.RGBA, error) {
	emu.crit.Lock()
	defer emu.crit.Unlock()

	if emu.state != Running {
		return nil, nil
	}

	if d > maxStep {
		d = maxStep
	}
	emu.console.RunForDuration(d)
	emu.pumpAudio()

	if time.Since(emu.lastAutoSave) >= autoSaveInterval {
		emu.lastAutoSave = time.Now()
		if err := emu.saves.AutoWrite(emu.console.Cartridge(), emu.loader.Filename); err != nil {
			logger.Logf(logger.Allow, "saves", "%v", err)
		}
	}

	if err := emu.console.CheckJam(); err != nil {
		logger.Logf(logger.Allow, "console", "%v", err)
		emu.state = Paused
		return nil, err
	}

	frame, ok := emu.console.TryGetFrame()
	if !ok {
		return nil, nil
	}

	// PPU 两帧之后会重用这个图像
	cp := image.NewRGBA(frame.Rect)
	copy(cp.Pix, frame.Pix)
	return cp, nil
}

// 把主机队列里的样本转到输出队列, 顺便录音
func (emu *Emulation) pumpAudio() {
	vol := float32(emu.prefs.Volume.Get().(float64))
	for {
		s, ok := emu.console.Audio.TryPop()
		if !ok {
			return
		}
		if emu.wav != nil {
			emu.wav.SetAudio(s)
		}
		emu.Output.Push(s * vol)
	}
}

// Run steps the emulation in real time until quit is closed. Completed frames
// are sent to frames without blocking; a frame is dropped if the receiver
// is not ready.
func (emu *Emulation) Run(quit <-chan struct{}, frames chan<- *image.RGBA) {
	emu.crit.Lock()
	if emu.state == Initialising {
		emu.state = Running
	}
	emu.crit.Unlock()

	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-quit:
			return
		case now := <-ticker.C:
			frame, err := emu.Step(now.Sub(last))
			last = now
			if err != nil {
				continue
			}
			if frame != nil {
				select {
				case frames <- frame:
				default:
				}
			}
		}
	}
}

// RunHeadless runs the console as fast as possible until the given number of
// frames have been completed. If trace is not nil a line is written for
// every instruction executed.
func (emu *Emulation) RunHeadless(frames int, trace io.Writer) error {
	emu.crit.Lock()
	defer emu.crit.Unlock()

	emu.state = Running
	count := 0
	for count < frames {
		if trace != nil {
			fmt.Fprintln(trace, emu.console.Trace())
			emu.console.StepInstruction()
		} else {
			emu.console.RunCycles(1000)
		}
		emu.pumpAudio()

		if _, ok := emu.console.TryGetFrame(); ok {
			count++
		}
		if err := emu.console.CheckJam(); err != nil {
			emu.state = Paused
			return err
		}
	}

	logger.Logf(logger.Allow, "console", "ran %d frames headless", count)
	return nil
}

// Stop ends the emulation. The save RAM is written and any audio recording
// is flushed to disk.
func (emu *Emulation) Stop() error {
	emu.crit.Lock()
	defer emu.crit.Unlock()

	emu.state = Ending
	emu.writeSave()

	if emu.wav != nil {
		err := emu.wav.EndMixing()
		emu.wav = nil
		return err
	}
	return nil
}

// Snapshot is a copy of the console's debug state.
type Snapshot struct {
	CPU       nes.CPUState
	PPU       nes.PPUState
	APU       nes.APUState
	Cartridge nes.CartridgeInfo
	State     State
}

// Snapshot returns the console's debug state.
func (emu *Emulation) Snapshot() Snapshot {
	emu.crit.Lock()
	defer emu.crit.Unlock()

	s := Snapshot{
		CPU:   emu.console.CPUState(),
		PPU:   emu.console.PPUState(),
		APU:   emu.console.APUState(),
		State: emu.state,
	}
	s.Cartridge, _ = emu.console.CartridgeInfo()
	return s
}

// Debug gives f exclusive access to the console. The console must not be
// retained.
func (emu *Emulation) Debug(f func(*nes.Console)) {
	emu.crit.Lock()
	defer emu.crit.Unlock()
	f(emu.console)
}

// Prefs returns the preferences the emulation was created with.
func (emu *Emulation) Prefs() *Preferences {
	return emu.prefs
}
