/*
负责ui渲染，声音输出，接受控制的模块
*/

package ui

import (
	"image"

	"fyne.io/fyne"
	"fyne.io/fyne/app"
	"fyne.io/fyne/canvas"
	"fyne.io/fyne/driver/desktop"

	"github.com/55utah/fc-simulator/emulation"
	"github.com/55utah/fc-simulator/logger"
)

const title = "fc-simulator"

// 不能在按键设置里改的快捷键
const (
	keyPause = fyne.KeyEscape
	keyReset = fyne.KeyF5
)

// OpenWindow runs the emulation in a window until the window is closed.
// Frames are scaled by the display.scale preference.
func OpenWindow(emu *emulation.Emulation) {
	myApp := app.New()
	w := myApp.NewWindow(title)

	scale := emu.Prefs().Scale.Get().(int)
	w.Resize(fyne.NewSize(256*scale, 240*scale))
	myCanvas := w.Canvas()

	quit := make(chan struct{})
	frames := make(chan *image.RGBA, 1)

	go emu.Run(quit, frames)

	if deskCanvas, ok := myCanvas.(desktop.Canvas); ok {
		deskCanvas.SetOnKeyDown(func(ev *fyne.KeyEvent) {
			switch ev.Name {
			case keyPause:
				emu.SetPaused(emu.State() == emulation.Running)
				logger.Logf(logger.Allow, "ui", "%s", emu.State())
				return
			case keyReset:
				emu.Reset()
				return
			}
			emu.KeyDown(string(ev.Name))
		})
		deskCanvas.SetOnKeyUp(func(ev *fyne.KeyEvent) {
			emu.KeyUp(string(ev.Name))
		})
	}

	go changeContent(myCanvas, frames, quit, scale)

	w.ShowAndRun()
	close(quit)
}

func changeContent(can fyne.Canvas, frames <-chan *image.RGBA, quit <-chan struct{}, scale int) {
	for {
		select {
		case <-quit:
			return
		case frame := <-frames:
			can.SetContent(canvas.NewImageFromImage(Resize(frame, scale)))
		}
	}
}
