package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/55utah/fc-simulator/cartridgeloader"
	"github.com/55utah/fc-simulator/emulation"
	"github.com/55utah/fc-simulator/logger"
	"github.com/55utah/fc-simulator/nes"
	"github.com/55utah/fc-simulator/statsview"
	"github.com/55utah/fc-simulator/ui"
	"github.com/55utah/fc-simulator/wavwriter"

	"github.com/bradleyjkemp/memviz"
	"golang.org/x/term"
)

type options struct {
	prefs     string
	speed     float64
	scale     int
	audio     string
	wav       string
	stats     bool
	memviz    string
	headless  bool
	frames    int
	trace     bool
	savePrefs bool
	list      string
}

func main() {
	var opts options
	flag.StringVar(&opts.prefs, "prefs", "fc-simulator.prefs", "preferences file")
	flag.Float64Var(&opts.speed, "speed", 0, "emulation speed, 0.5 to 2.0")
	flag.IntVar(&opts.scale, "scale", 0, "window scale, 1 to 8")
	flag.StringVar(&opts.audio, "audio", "", "audio backend: portaudio, oto or none")
	flag.StringVar(&opts.wav, "wav", "", "record audio to a WAV file")
	flag.BoolVar(&opts.stats, "statsview", false, "serve runtime statistics at "+statsview.URL())
	flag.StringVar(&opts.memviz, "memviz", "", "write the console state as a graphviz file on exit")
	flag.BoolVar(&opts.headless, "headless", false, "run without a window")
	flag.IntVar(&opts.frames, "frames", 60, "number of frames to run in headless mode")
	flag.BoolVar(&opts.trace, "trace", false, "print every instruction in headless mode")
	flag.BoolVar(&opts.savePrefs, "saveprefs", false, "write the preferences file on exit")
	flag.StringVar(&opts.list, "list", "", "list the ROMs in a directory and exit")
	flag.Parse()

	// 输出到终端的时候才回显日志
	if term.IsTerminal(int(os.Stdout.Fd())) && !opts.trace {
		logger.SetEcho(os.Stdout)
	}

	if err := run(opts, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts options, args []string) error {
	if opts.list != "" {
		roms, err := cartridgeloader.ListROMs(opts.list)
		if err != nil {
			return err
		}
		for _, r := range roms {
			fmt.Println(r)
		}
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("usage: fc-simulator [flags] <rom path or url>")
	}

	p, err := emulation.NewPreferences(opts.prefs)
	if err != nil {
		return err
	}
	if err := applyOptions(p, opts); err != nil {
		return err
	}

	console, err := nes.NewConsole(nil)
	if err != nil {
		return err
	}
	emu := emulation.New(console, p)

	if err := emu.Insert(cartridgeloader.NewLoader(args[0])); err != nil {
		return err
	}

	if opts.stats {
		statsview.Launch(os.Stdout)
	}

	if opts.headless {
		err = runHeadless(emu, opts)
	} else {
		err = runWindow(emu, opts)
	}

	if serr := emu.Stop(); serr != nil && err == nil {
		err = serr
	}

	if opts.memviz != "" {
		if merr := writeMemviz(emu, opts.memviz); merr != nil && err == nil {
			err = merr
		}
	}

	if opts.savePrefs {
		if perr := p.Save(); perr != nil && err == nil {
			err = perr
		}
	}

	return err
}

// 命令行参数覆盖配置文件
func applyOptions(p *emulation.Preferences, opts options) error {
	if opts.speed != 0 {
		if err := p.Speed.Set(opts.speed); err != nil {
			return err
		}
	}
	if opts.scale != 0 {
		if err := p.Scale.Set(opts.scale); err != nil {
			return err
		}
	}
	if opts.audio != "" {
		if err := p.Backend.Set(opts.audio); err != nil {
			return err
		}
	}
	return nil
}

// 录音的采样率要和 APU 输出的一致
func record(emu *emulation.Emulation, filename string, sampleRate float64) error {
	if filename == "" {
		return nil
	}
	w, err := wavwriter.New(filename, int(sampleRate))
	if err != nil {
		return err
	}
	emu.Record(w)
	return nil
}

func runHeadless(emu *emulation.Emulation, opts options) error {
	rate := float64(emu.Prefs().SampleRate.Get().(int))
	emu.SetSampleRate(rate)
	if err := record(emu, opts.wav, rate); err != nil {
		return err
	}

	var trace io.Writer
	if opts.trace {
		w := bufio.NewWriter(os.Stdout)
		defer w.Flush()
		trace = w
	}
	return emu.RunHeadless(opts.frames, trace)
}

func runWindow(emu *emulation.Emulation, opts options) error {
	rate := float64(emu.Prefs().SampleRate.Get().(int))

	dev, err := ui.OpenAudio(emu)
	if err != nil {
		// 没有声音也能玩
		logger.Logf(logger.Allow, "audio", "%v", err)
	}
	if dev != nil {
		defer dev.Close()
		rate = dev.SampleRate()
	} else {
		emu.SetSampleRate(rate)
	}

	if err := record(emu, opts.wav, rate); err != nil {
		return err
	}

	ui.OpenWindow(emu)
	return nil
}

func writeMemviz(emu *emulation.Emulation, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("memviz: %w", err)
	}
	defer f.Close()

	snapshot := emu.Snapshot()
	memviz.Map(f, &snapshot)
	return nil
}
