// This file is part of pcsim.
//
// pcsim is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// pcsim is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with pcsim.  If not, see <https://www.gnu.org/licenses/>.

package video

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/environment"
	"github.com/pcsim/pcsim/hardware/clocks"
	"github.com/pcsim/pcsim/hardware/controller"
	"github.com/pcsim/pcsim/hardware/device"
	"github.com/pcsim/pcsim/hardware/lifecycle"
	"github.com/pcsim/pcsim/hardware/memory"
	"github.com/pcsim/pcsim/hardware/peripherals"
	"github.com/pcsim/pcsim/logger"
	"github.com/pcsim/pcsim/notifications"
	"github.com/pcsim/pcsim/prefs"
)

// Kind is the registry kind of the video controller.
const Kind = "video"

// Default configuration.
const (
	DefaultAddress   = 0x03d0
	DefaultFrequency = 1 * clocks.MHz
	DefaultRefresh   = 60
	DefaultVRAM      = 0x000b8000

	// attribute used by the teletype until the screen is cleared
	DefaultAttribute = 0x07
)

// Opcodes.
const (
	OpSetCursor  = 0x30
	OpGetCursor  = 0x31
	OpClear      = 0x32
	OpPutChar    = 0x33
	OpSetPalette = 0x34
	OpFrames     = 0x35
	OpEnable     = 0x36
)

// Sentinal errors.
const (
	ScreenshotError = "video: screenshot: %v"
)

// Video is the video controller.
type Video struct {
	*lifecycle.Machine[*device.Board]
	*peripherals.Base

	// base address of video memory on the memory bus
	VRAM prefs.Base

	// frames per second
	Refresh prefs.Int

	mem  *memory.Bus
	vram uint32

	// guarded by the controller lock
	render    *renderer
	snapshot  []uint8
	enabled   bool
	col       int
	row       int
	attr      uint8
	frames    uint16
	interval  int
	countdown int
}

// NewVideo is the preferred method of initialisation for the Video type.
func NewVideo(name string, env *environment.Environment) *Video {
	vid := &Video{}

	vid.Base = peripherals.NewBase(name, env, controller.Config{
		Commands: map[uint8]controller.Command{
			OpSetCursor:  {Name: "set cursor", Length: controller.Fixed(3), Execute: vid.setCursor},
			OpGetCursor:  {Name: "get cursor", Length: controller.Fixed(1), Execute: vid.getCursor},
			OpClear:      {Name: "clear", Length: controller.Fixed(2), Execute: vid.clear},
			OpPutChar:    {Name: "put char", Length: controller.Fixed(2), Execute: vid.putChar},
			OpSetPalette: {Name: "set palette", Length: controller.Fixed(5), Execute: vid.setPalette},
			OpFrames:     {Name: "frames", Length: controller.Fixed(1), Execute: vid.frameCount},
			OpEnable:     {Name: "enable", Length: controller.Fixed(2), Execute: vid.enable},
		},
		Tick: vid.tick,
	}, DefaultAddress, DefaultFrequency)

	vid.Machine = lifecycle.NewMachine[*device.Board](name, vid)
	_ = vid.VRAM.Set(uint32(DefaultVRAM))
	_ = vid.Refresh.Set(DefaultRefresh)

	return vid
}

// Kind implements the device.Device interface.
func (vid *Video) Kind() string {
	return Kind
}

// Prefs implements the device.Device interface.
func (vid *Video) Prefs(dsk *prefs.Disk, prefix string) error {
	return vid.Bind(dsk, prefix, map[string]prefs.Pref{
		"vram":    &vid.VRAM,
		"refresh": &vid.Refresh,
	})
}

// Frame returns a copy of the frame buffer. Returns nil if the controller
// has not been initialised.
func (vid *Video) Frame() *image.RGBA {
	var img *image.RGBA
	vid.WithLock(func() {
		if vid.render != nil {
			img = vid.render.copyFrame()
		}
	})
	return img
}

// SavePNG saves the frame buffer to a PNG file.
func (vid *Video) SavePNG(path string) error {
	img := vid.Frame()
	if img == nil {
		img = image.NewRGBA(image.Rect(0, 0, Width, Height))
	}

	f, err := os.Create(path)
	if err != nil {
		return curated.Errorf(ScreenshotError, err)
	}

	err = png.Encode(f, img)
	if err != nil {
		f.Close()
		return curated.Errorf(ScreenshotError, err)
	}

	if err := f.Close(); err != nil {
		return curated.Errorf(ScreenshotError, err)
	}

	logger.Logf(vid.Env(), vid.Name(), "screenshot saved to %s", path)
	vid.notify(notifications.NotifyScreenshot, path)

	return nil
}

func (vid *Video) notify(notice notifications.Notice, detail string) {
	if err := vid.Env().Notify(notice, detail); err != nil {
		logger.Log(vid.Env(), vid.Name(), err)
	}
}

// address of a cell in video memory.
func (vid *Video) address(col, row int) uint32 {
	return vid.vram + uint32(row*Columns+col)*2
}

func (vid *Video) setCursor(cmd []uint8) controller.Outcome {
	col, row := int(cmd[1]), int(cmd[2])
	if col >= Columns || row >= Rows {
		return controller.Fail(controller.InvalidParameter)
	}
	vid.col = col
	vid.row = row
	return controller.Done(controller.NoError)
}

func (vid *Video) getCursor([]uint8) controller.Outcome {
	return controller.Done(controller.NoError, uint8(vid.col), uint8(vid.row))
}

func (vid *Video) clear(cmd []uint8) controller.Outcome {
	vid.attr = cmd[1]
	for row := 0; row < Rows; row++ {
		vid.clearRow(row)
	}
	vid.col = 0
	vid.row = 0
	return controller.Done(controller.NoError)
}

func (vid *Video) clearRow(row int) {
	line := make([]uint8, Columns*2)
	for i := 0; i < len(line); i += 2 {
		line[i] = ' '
		line[i+1] = vid.attr
	}
	vid.mem.Store(vid.address(0, row), line)
}

func (vid *Video) putChar(cmd []uint8) controller.Outcome {
	switch ch := cmd[1]; ch {
	case '\r':
		vid.col = 0
	case '\n':
		vid.col = 0
		vid.lineFeed()
	case '\b':
		if vid.col > 0 {
			vid.col--
		}
	default:
		vid.mem.Write8(vid.address(vid.col, vid.row), ch)
		vid.mem.Write8(vid.address(vid.col, vid.row)+1, vid.attr)
		vid.col++
		if vid.col >= Columns {
			vid.col = 0
			vid.lineFeed()
		}
	}
	return controller.Done(controller.NoError)
}

// move the cursor down a row, scrolling the screen if necessary.
func (vid *Video) lineFeed() {
	vid.row++
	if vid.row < Rows {
		return
	}
	vid.row = Rows - 1

	scroll := make([]uint8, (Rows-1)*Columns*2)
	vid.mem.Load(vid.address(0, 1), scroll)
	vid.mem.Store(vid.address(0, 0), scroll)
	vid.clearRow(Rows - 1)
}

func (vid *Video) setPalette(cmd []uint8) controller.Outcome {
	idx := int(cmd[1])
	if idx >= PaletteSize {
		return controller.Fail(controller.InvalidParameter)
	}
	vid.render.palette[idx] = color.RGBA{R: cmd[2], G: cmd[3], B: cmd[4], A: 0xff}
	vid.render.dirty = true
	return controller.Done(controller.NoError)
}

func (vid *Video) frameCount([]uint8) controller.Outcome {
	return controller.Done(controller.NoError, uint8(vid.frames), uint8(vid.frames>>8))
}

func (vid *Video) enable(cmd []uint8) controller.Outcome {
	vid.enabled = cmd[1] != 0
	if !vid.enabled {
		vid.render.blank()
	} else {
		vid.render.dirty = true
	}
	return controller.Done(controller.NoError)
}

// called on every clock tick with the controller lock held.
func (vid *Video) tick() {
	vid.countdown--
	if vid.countdown > 0 {
		return
	}
	vid.countdown = vid.interval

	if vid.enabled {
		vid.mem.Load(vid.vram, vid.snapshot)
		vid.render.render(vid.snapshot)
	}

	vid.frames++
	vid.Signal(controller.CondDevice)
	vid.notify(notifications.NotifyFrameReady, vid.Name())
}

// OnConnect implements the lifecycle.Hooks interface.
func (vid *Video) OnConnect(b *device.Board) error {
	vid.mem = b.Mem
	vid.vram = vid.VRAM.Get().(uint32)

	if err := b.Mem.Map(vid.vram, memory.NewRAM(VRAMSize)); err != nil {
		return curated.Errorf(device.InvalidConfig, vid.Name(), err)
	}

	if err := vid.ConnectPorts(b); err != nil {
		_ = b.Mem.Unmap(vid.vram)
		return err
	}

	return nil
}

// OnDisconnect implements the lifecycle.Hooks interface.
func (vid *Video) OnDisconnect(b *device.Board) {
	vid.DisconnectPorts(b)
	if err := b.Mem.Unmap(vid.vram); err != nil {
		logger.Log(vid.Env(), vid.Name(), err)
	}
	vid.mem = nil
}

// OnInitialise implements the lifecycle.Hooks interface.
func (vid *Video) OnInitialise() error {
	refresh := max(1, vid.Refresh.Get().(int))
	freq := int(vid.Frequency.Get().(clocks.Frequency))

	vid.WithLock(func() {
		vid.render = newRenderer()
		vid.snapshot = make([]uint8, VRAMSize)
		vid.enabled = true
		vid.col = 0
		vid.row = 0
		vid.attr = DefaultAttribute
		vid.frames = 0
		vid.interval = max(1, freq/refresh)
		vid.countdown = vid.interval
	})
	vid.Allocate()

	return nil
}

// OnDeinitialise implements the lifecycle.Hooks interface.
func (vid *Video) OnDeinitialise() {
	vid.Release()
	vid.WithLock(func() {
		vid.render = nil
		vid.snapshot = nil
	})
}

// OnStart implements the lifecycle.Hooks interface.
func (vid *Video) OnStart() error {
	return vid.StartClock(vid.Context())
}

// OnStop implements the lifecycle.Hooks interface.
func (vid *Video) OnStop() {
	vid.StopClock(vid.Context())
}
