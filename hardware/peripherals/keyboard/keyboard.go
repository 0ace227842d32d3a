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

package keyboard

import (
	"sync"

	"github.com/pcsim/pcsim/environment"
	"github.com/pcsim/pcsim/hardware/clocks"
	"github.com/pcsim/pcsim/hardware/controller"
	"github.com/pcsim/pcsim/hardware/device"
	"github.com/pcsim/pcsim/hardware/lifecycle"
	"github.com/pcsim/pcsim/hardware/peripherals"
	"github.com/pcsim/pcsim/logger"
	"github.com/pcsim/pcsim/notifications"
	"github.com/pcsim/pcsim/prefs"
)

// Kind is the registry kind of the keyboard controller.
const Kind = "keyboard"

// Default configuration.
const (
	DefaultAddress      = 0x0060
	DefaultFrequency    = 1 * clocks.MHz
	DefaultScanInterval = 1000
)

// BufferSize is the number of keys the controller can hold.
const BufferSize = 16

// the number of keys the host can queue before the controller scans them
const hostQueueSize = 64

// Opcodes.
const (
	OpReadKey  = 0x20
	OpKeyCount = 0x21
	OpFlush    = 0x22
	OpEnable   = 0x23
	OpEcho     = 0x24
)

// Status port device bits.
const (
	StatusKeyAvailable = 0x01
	StatusEnabled      = 0x02
)

// Keyboard is the keyboard controller.
type Keyboard struct {
	*lifecycle.Machine[*device.Board]
	*peripherals.Base

	// number of clock ticks between scans of the host queue
	ScanInterval prefs.Int

	// keys pressed on the host and not yet scanned
	hostCrit sync.Mutex
	host     []uint8

	// guarded by the controller lock
	buffer    []uint8
	enabled   bool
	interval  int
	countdown int
}

// NewKeyboard is the preferred method of initialisation for the Keyboard
// type.
func NewKeyboard(name string, env *environment.Environment) *Keyboard {
	kbd := &Keyboard{
		host: make([]uint8, 0, hostQueueSize),
	}

	kbd.Base = peripherals.NewBase(name, env, controller.Config{
		Commands: map[uint8]controller.Command{
			OpReadKey:  {Name: "read key", Length: controller.Fixed(1), Execute: kbd.readKey},
			OpKeyCount: {Name: "key count", Length: controller.Fixed(1), Execute: kbd.keyCount},
			OpFlush:    {Name: "flush", Length: controller.Fixed(1), Execute: kbd.flush},
			OpEnable:   {Name: "enable", Length: controller.Fixed(2), Execute: kbd.enable},
			OpEcho:     {Name: "echo", Length: controller.Fixed(2), Execute: kbd.echo},
		},
		DeviceStatus: kbd.deviceStatus,
		Tick:         kbd.tick,
	}, DefaultAddress, DefaultFrequency)

	kbd.Machine = lifecycle.NewMachine[*device.Board](name, kbd)
	_ = kbd.ScanInterval.Set(DefaultScanInterval)

	return kbd
}

// Kind implements the device.Device interface.
func (kbd *Keyboard) Kind() string {
	return Kind
}

// Prefs implements the device.Device interface.
func (kbd *Keyboard) Prefs(dsk *prefs.Disk, prefix string) error {
	return kbd.Bind(dsk, prefix, map[string]prefs.Pref{
		"scan": &kbd.ScanInterval,
	})
}

// PressKey queues a key code from the host. Safe to call from any
// goroutine. Returns false if the host queue is full and the key has been
// dropped.
func (kbd *Keyboard) PressKey(code uint8) bool {
	kbd.hostCrit.Lock()
	defer kbd.hostCrit.Unlock()

	if len(kbd.host) >= hostQueueSize {
		kbd.overflow(code)
		return false
	}
	kbd.host = append(kbd.host, code)
	return true
}

func (kbd *Keyboard) overflow(code uint8) {
	logger.Logf(kbd.Env(), kbd.Name(), "key %#02x dropped", code)
	if err := kbd.Env().Notify(notifications.NotifyKeyboardOverflow, kbd.Name()); err != nil {
		logger.Log(kbd.Env(), kbd.Name(), err)
	}
}

// called on every clock tick with the controller lock held.
func (kbd *Keyboard) tick() {
	kbd.countdown--
	if kbd.countdown > 0 {
		return
	}
	kbd.countdown = kbd.interval

	if !kbd.enabled {
		return
	}

	kbd.hostCrit.Lock()
	if len(kbd.host) == 0 {
		kbd.hostCrit.Unlock()
		return
	}
	code := kbd.host[0]
	kbd.host = append(kbd.host[:0], kbd.host[1:]...)
	kbd.hostCrit.Unlock()

	if len(kbd.buffer) >= BufferSize {
		kbd.overflow(code)
		return
	}

	kbd.buffer = append(kbd.buffer, code)
	kbd.Signal(controller.CondDevice)
}

func (kbd *Keyboard) deviceStatus() uint8 {
	var s uint8
	if len(kbd.buffer) > 0 {
		s |= StatusKeyAvailable
	}
	if kbd.enabled {
		s |= StatusEnabled
	}
	return s
}

func (kbd *Keyboard) readKey([]uint8) controller.Outcome {
	if len(kbd.buffer) == 0 {
		return controller.Fail(controller.NotReady)
	}
	k := kbd.buffer[0]
	kbd.buffer = append(kbd.buffer[:0], kbd.buffer[1:]...)
	return controller.Done(controller.NoError, k)
}

func (kbd *Keyboard) keyCount([]uint8) controller.Outcome {
	return controller.Done(controller.NoError, uint8(len(kbd.buffer)))
}

func (kbd *Keyboard) flush([]uint8) controller.Outcome {
	kbd.buffer = kbd.buffer[:0]
	return controller.Done(controller.NoError)
}

func (kbd *Keyboard) enable(cmd []uint8) controller.Outcome {
	kbd.enabled = cmd[1] != 0
	return controller.Done(controller.NoError)
}

func (kbd *Keyboard) echo(cmd []uint8) controller.Outcome {
	return controller.Done(controller.NoError, cmd[1])
}

// OnConnect implements the lifecycle.Hooks interface.
func (kbd *Keyboard) OnConnect(b *device.Board) error {
	return kbd.ConnectPorts(b)
}

// OnDisconnect implements the lifecycle.Hooks interface.
func (kbd *Keyboard) OnDisconnect(b *device.Board) {
	kbd.DisconnectPorts(b)
}

// OnInitialise implements the lifecycle.Hooks interface.
func (kbd *Keyboard) OnInitialise() error {
	kbd.WithLock(func() {
		kbd.buffer = make([]uint8, 0, BufferSize)
		kbd.enabled = true
		kbd.interval = max(1, kbd.ScanInterval.Get().(int))
		kbd.countdown = kbd.interval
	})
	kbd.Allocate()
	return nil
}

// OnDeinitialise implements the lifecycle.Hooks interface.
func (kbd *Keyboard) OnDeinitialise() {
	kbd.Release()
	kbd.WithLock(func() {
		kbd.buffer = nil
	})
}

// OnStart implements the lifecycle.Hooks interface.
func (kbd *Keyboard) OnStart() error {
	return kbd.StartClock(kbd.Context())
}

// OnStop implements the lifecycle.Hooks interface.
func (kbd *Keyboard) OnStop() {
	kbd.StopClock(kbd.Context())
}
