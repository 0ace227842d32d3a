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

package drive

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/environment"
	"github.com/pcsim/pcsim/hardware/async"
	"github.com/pcsim/pcsim/hardware/controller"
	"github.com/pcsim/pcsim/hardware/device"
	"github.com/pcsim/pcsim/hardware/lifecycle"
	"github.com/pcsim/pcsim/logger"
	"github.com/pcsim/pcsim/notifications"
	"github.com/pcsim/pcsim/prefs"
)

// Kind is the registry kind of a floppy drive.
const Kind = "floppy-drive"

// MaxUnits is the number of drives a controller can have.
const MaxUnits = 4

// the number of requests that can wait for the worker
const queueLength = 8

// Sentinal errors.
const (
	WorkerBusy = "drive: %s: cannot %s while the worker is running"
)

// State of the drive.
type State int32

// List of valid State values.
const (
	NotMounted State = iota
	Mounted
	Spinning
	CalibrateInProgress
	SeekInProgress
	ReadInProgress
	WriteInProgress
)

func (s State) String() string {
	switch s {
	case NotMounted:
		return "not mounted"
	case Mounted:
		return "mounted"
	case Spinning:
		return "spinning"
	case CalibrateInProgress:
		return "calibrating"
	case SeekInProgress:
		return "seeking"
	case ReadInProgress:
		return "reading"
	case WriteInProgress:
		return "writing"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// spinning returns true if the motor is on.
func (s State) spinning() bool {
	return s >= Spinning
}

// Host is implemented by the controller a drive connects to.
type Host interface {
	AttachDrive(unit int, d *Drive) error
	DetachDrive(unit int, d *Drive)
}

// Drive is a floppy drive with a worker goroutine.
type Drive struct {
	*lifecycle.Machine[*device.Board]

	name string
	env  *environment.Environment

	// name of the floppy controller
	Controller prefs.String

	// unit number on the controller. 0 to 3
	Unit prefs.Int

	// the backing image and whether it should be mounted at initialisation
	Image   prefs.Path
	Mounted prefs.Bool

	// physical timings. the cost of a seek is SeekDelay per cylinder
	// travelled and the cost of a transfer is SectorDelay per sector
	SeekDelay   prefs.Duration
	SpinUp      prefs.Duration
	SpinDown    prefs.Duration
	SectorDelay prefs.Duration

	host Host

	// written by the worker (or by Mount/Unmount when the worker is stopped)
	// and read from anywhere
	state    atomic.Int32
	cylinder atomic.Int32

	// the currently mounted image
	imgCrit sync.Mutex
	img     *image

	// worker channels. nil when the worker is not running
	crit  sync.Mutex
	queue chan request
	quit  chan struct{}
	done  chan struct{}

	// the request the worker is executing
	current *request
}

// NewDrive is the preferred method of initialisation for the Drive type.
func NewDrive(name string, env *environment.Environment) *Drive {
	d := &Drive{
		name: name,
		env:  env,
	}
	d.Machine = lifecycle.NewMachine[*device.Board](name, d)
	d.SetDefaults()
	return d
}

// SetDefaults reverts the drive configuration to the default values.
func (d *Drive) SetDefaults() {
	_ = d.Controller.Set("fdc")
	_ = d.Unit.Set(0)
	_ = d.Image.Set("")
	_ = d.Mounted.Set(false)
	_ = d.SeekDelay.Set(3 * time.Millisecond)
	_ = d.SpinUp.Set(250 * time.Millisecond)
	_ = d.SpinDown.Set(100 * time.Millisecond)
	_ = d.SectorDelay.Set(11 * time.Millisecond)
}

func (d *Drive) String() string {
	return fmt.Sprintf("%s: unit %d: %s: cylinder %d: %s", d.name, d.unit(), d.State(),
		d.Cylinder(), d.describe())
}

func (d *Drive) describe() string {
	d.imgCrit.Lock()
	defer d.imgCrit.Unlock()
	return describeImage(d.img)
}

// Kind implements the device.Device interface.
func (d *Drive) Kind() string {
	return Kind
}

// Name implements the device.Device interface.
func (d *Drive) Name() string {
	return d.name
}

// Prefs implements the device.Device interface.
func (d *Drive) Prefs(dsk *prefs.Disk, prefix string) error {
	return device.Bind(dsk, prefix, map[string]prefs.Pref{
		"controller":  &d.Controller,
		"unit":        &d.Unit,
		"image":       &d.Image,
		"mounted":     &d.Mounted,
		"seekdelay":   &d.SeekDelay,
		"spinup":      &d.SpinUp,
		"spindown":    &d.SpinDown,
		"sectordelay": &d.SectorDelay,
	})
}

func (d *Drive) unit() int {
	return d.Unit.Get().(int)
}

// DriveState returns the state of the drive. Safe to call from any goroutine.
func (d *Drive) DriveState() State {
	return State(d.state.Load())
}

// Cylinder returns the cylinder the head is over. Safe to call from any
// goroutine.
func (d *Drive) Cylinder() uint8 {
	return uint8(d.cylinder.Load())
}

// Spinning returns true if the motor is on. Safe to call from any goroutine.
func (d *Drive) Spinning() bool {
	return d.DriveState().spinning()
}

// IsMounted returns true if an image is mounted.
func (d *Drive) IsMounted() bool {
	return d.DriveState() != NotMounted
}

// OnConnect implements the lifecycle.Hooks interface.
func (d *Drive) OnConnect(b *device.Board) error {
	u := d.unit()
	if u < 0 || u >= MaxUnits {
		return curated.Errorf(device.InvalidConfig, d.name, fmt.Sprintf("unit %d out of range", u))
	}

	h, err := device.RequirePeer[Host](b, d.name, d.Controller.String(), "floppy controller")
	if err != nil {
		return err
	}

	if err := h.AttachDrive(u, d); err != nil {
		return err
	}
	d.host = h

	return nil
}

// OnDisconnect implements the lifecycle.Hooks interface.
func (d *Drive) OnDisconnect(_ *device.Board) {
	if d.host != nil {
		d.host.DetachDrive(d.unit(), d)
		d.host = nil
	}
}

// OnInitialise implements the lifecycle.Hooks interface. A configured image
// that cannot be mounted is logged and the drive is left empty.
func (d *Drive) OnInitialise() error {
	d.cylinder.Store(0)
	if d.Mounted.Get().(bool) && d.Image.String() != "" {
		pth := d.Image.String()
		if b := d.Context(); b != nil {
			pth = d.Image.Resolve(b.Dir)
		}
		if err := d.mount(pth); err != nil {
			logger.Log(d.env, d.name, err)
		}
	}
	return nil
}

// OnDeinitialise implements the lifecycle.Hooks interface.
func (d *Drive) OnDeinitialise() {
	d.unmount()
}

// OnStart implements the lifecycle.Hooks interface.
func (d *Drive) OnStart() error {
	d.StartWorker()
	return nil
}

// OnStop implements the lifecycle.Hooks interface.
func (d *Drive) OnStop() {
	d.StopWorker()
}

// Mount the image at path. Any existing image is unmounted first, so a
// failed mount leaves no image mounted. Fails while the worker is running;
// use BeginMount() instead.
func (d *Drive) Mount(path string) error {
	if d.WorkerRunning() {
		return curated.Errorf(WorkerBusy, d.name, "mount")
	}
	return d.insert(path)
}

// Unmount the current image. Fails while the worker is running; use
// BeginUnmount() instead.
func (d *Drive) Unmount() error {
	if d.WorkerRunning() {
		return curated.Errorf(WorkerBusy, d.name, "unmount")
	}
	d.eject()
	return nil
}

// insert mounts the image and records it in the drive configuration.
func (d *Drive) insert(path string) error {
	if err := d.mount(path); err != nil {
		return err
	}
	_ = d.Image.Set(path)
	_ = d.Mounted.Set(true)
	return nil
}

// eject unmounts the image and records it in the drive configuration.
func (d *Drive) eject() {
	d.unmount()
	_ = d.Mounted.Set(false)
}

func (d *Drive) mount(path string) error {
	d.imgCrit.Lock()
	defer d.imgCrit.Unlock()

	d.closeImage()

	img, err := openImage(path)
	if err != nil {
		return err
	}

	d.img = img
	d.state.Store(int32(Mounted))
	d.cylinder.Store(0)

	logger.Logf(d.env, d.name, "mounted %s", img)
	d.notify(notifications.NotifyMount, img.String())

	return nil
}

func (d *Drive) unmount() {
	d.imgCrit.Lock()
	defer d.imgCrit.Unlock()
	d.closeImage()
}

// must be called with imgCrit held.
func (d *Drive) closeImage() {
	if d.img == nil {
		d.state.Store(int32(NotMounted))
		return
	}

	if err := d.img.close(); err != nil {
		logger.Log(d.env, d.name, err)
	}
	logger.Logf(d.env, d.name, "unmounted %s", d.img)
	d.notify(notifications.NotifyUnmount, d.img.String())

	d.img = nil
	d.state.Store(int32(NotMounted))
}

func (d *Drive) notify(notice notifications.Notice, detail string) {
	if err := d.env.Notify(notice, fmt.Sprintf("%s: %s", d.name, detail)); err != nil {
		logger.Log(d.env, d.name, err)
	}
}

// result builds a result from the current drive state.
func (d *Drive) result(op async.Op, status uint8, cost time.Duration) async.Result {
	return async.Result{
		Op:       op,
		Unit:     d.unit(),
		Status:   status,
		Cylinder: d.Cylinder(),
		Spinning: d.Spinning(),
		Cost:     cost,
	}
}

// BeginStatus completes immediately, on the caller's goroutine, with the
// drive status.
func (d *Drive) BeginStatus(done func(async.Result)) {
	status := controller.NoError
	if !d.IsMounted() {
		status = controller.NotReady
	}
	done(d.result(async.OpStatus, status, 0))
}

// BeginMotorOn starts the motor. The drive must have an image mounted.
func (d *Drive) BeginMotorOn(done func(async.Result)) {
	if !d.IsMounted() {
		done(d.result(async.OpMotorOn, controller.NotReady, 0))
		return
	}
	d.submit(request{op: async.OpMotorOn, done: done})
}

// BeginMotorOff stops the motor.
func (d *Drive) BeginMotorOff(done func(async.Result)) {
	d.submit(request{op: async.OpMotorOff, done: done})
}

// BeginSeek moves the head to the cylinder. The motor must be on.
func (d *Drive) BeginSeek(cylinder uint8, done func(async.Result)) {
	if cylinder >= Cylinders {
		done(d.result(async.OpSeek, controller.InvalidCylinder, 0))
		return
	}
	if !d.Spinning() {
		done(d.result(async.OpSeek, controller.NotReady, 0))
		return
	}
	d.submit(request{op: async.OpSeek, cylinder: cylinder, done: done})
}

// BeginCalibrate moves the head to cylinder zero. The motor must be on.
func (d *Drive) BeginCalibrate(done func(async.Result)) {
	if !d.Spinning() {
		done(d.result(async.OpCalibrate, controller.NotReady, 0))
		return
	}
	d.submit(request{op: async.OpCalibrate, done: done})
}

// validTransfer checks the parameters of a read or write.
func validTransfer(head, sector, count uint8) bool {
	return head < Heads && sector < SectorsPerTrack && count >= 1 &&
		count <= SectorsPerTrack && int(sector)+int(count) <= SectorsPerTrack
}

// BeginRead reads count sectors from the current cylinder. The motor must
// be on.
func (d *Drive) BeginRead(head, sector, count uint8, done func(async.Result)) {
	if !validTransfer(head, sector, count) {
		done(d.result(async.OpRead, controller.InvalidParameter, 0))
		return
	}
	if !d.Spinning() {
		done(d.result(async.OpRead, controller.NotReady, 0))
		return
	}
	d.submit(request{op: async.OpRead, head: head, sector: sector, count: count, done: done})
}

// BeginWrite writes data to the current cylinder. The data must be a whole
// number of sectors. The motor must be on.
func (d *Drive) BeginWrite(head, sector uint8, data []uint8, done func(async.Result)) {
	if len(data) == 0 || len(data)%SectorSize != 0 || len(data)/SectorSize > SectorsPerTrack ||
		!validTransfer(head, sector, uint8(len(data)/SectorSize)) {
		done(d.result(async.OpWrite, controller.InvalidParameter, 0))
		return
	}
	if !d.Spinning() {
		done(d.result(async.OpWrite, controller.NotReady, 0))
		return
	}

	c := make([]uint8, len(data))
	copy(c, data)
	d.submit(request{op: async.OpWrite, head: head, sector: sector,
		count: uint8(len(data) / SectorSize), data: c, done: done})
}

// BeginMount mounts the image at path.
func (d *Drive) BeginMount(path string, done func(async.Result)) {
	d.submit(request{op: async.OpMount, path: path, done: done})
}

// BeginUnmount unmounts the current image. The motor is stopped.
func (d *Drive) BeginUnmount(done func(async.Result)) {
	d.submit(request{op: async.OpUnmount, done: done})
}
