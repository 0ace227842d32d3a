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

package controller

import (
	"fmt"
	"sync"
	"time"

	"github.com/pcsim/pcsim/hardware/async"
	"github.com/pcsim/pcsim/hardware/clocks"
	"github.com/pcsim/pcsim/hardware/iobus"
	"github.com/pcsim/pcsim/logger"
)

// MaxCommandLength is the largest command any controller accepts: an opcode,
// three parameters and a full track of sector data.
const MaxCommandLength = 4 + 18*512

// Config for a Controller.
type Config struct {
	// name used in log entries
	Name string

	// logging permission. logger.Allow if nil
	Perm logger.Permission

	// the opcode table
	Commands map[uint8]Command

	// returns the device specific bits of the status port. called with the
	// controller's lock held. can be nil
	DeviceStatus func() uint8

	// converts an asynchronous result into result bytes. called with the
	// controller's lock held. can be nil if the controller never returns a
	// Pending() outcome
	Complete func(r async.Result) []uint8

	// called once per clock tick, after the protocol has been advanced, with
	// the controller's lock held. can be nil
	Tick func()
}

// Controller implements the command/response protocol. Concrete controllers
// embed a Controller and register it with the clock distributor.
type Controller struct {
	cfg  Config
	perm logger.Permission

	// everything below is guarded by crit. port handlers and OnClockTick
	// both take the lock
	crit sync.Mutex

	freq clocks.Frequency

	ports  []*iobus.Port
	status *iobus.Port

	// runtime buffers are only allocated between Allocate() and Release()
	active bool
	cmd    []uint8
	result []uint8
	cursor int

	state State
	ticks uint64

	// delayed result countdown
	delay int

	// asynchronous command bookkeeping. seq identifies the outstanding
	// command. a collected result is held until the tick count reaches due
	mailbox   async.Mailbox
	seq       uint64
	issued    uint64
	collected *async.Result

	// interrupt mask, conditions signalled since the last tick and conditions
	// raised but not yet consumed
	mask      uint8
	signalled uint8
	latched   uint8
}

// NewController is the preferred method of initialisation for the Controller
// type.
func NewController(cfg Config) *Controller {
	c := &Controller{
		cfg:  cfg,
		perm: cfg.Perm,
	}
	if c.perm == nil {
		c.perm = logger.Allow
	}
	return c
}

func (c *Controller) String() string {
	c.crit.Lock()
	defer c.crit.Unlock()
	return fmt.Sprintf("%s: %s", c.cfg.Name, c.state)
}

// SetFrequency sets the frequency the controller is clocked at. Used to
// convert the simulated cost of an asynchronous result into clock ticks.
func (c *Controller) SetFrequency(freq clocks.Frequency) {
	c.crit.Lock()
	defer c.crit.Unlock()
	c.freq = freq
}

// CreatePorts creates the controller's ports at the base address. The ports
// must be attached to the I/O bus by the caller.
func (c *Controller) CreatePorts(base uint16) []*iobus.Port {
	c.crit.Lock()
	defer c.crit.Unlock()

	c.ports = []*iobus.Port{
		iobus.NewPort(base+PortStatus, iobus.Byte, c.readStatus, nil),
		iobus.NewPort(base+PortCommand, iobus.Byte, nil, c.writeCommand),
		iobus.NewPort(base+PortData, iobus.Byte, c.readData, c.writeData),
		iobus.NewPort(base+PortMask, iobus.Byte, c.readMask, c.writeMask),
	}
	c.status = c.ports[PortStatus]

	return c.ports
}

// Ports returns the ports created by CreatePorts().
func (c *Controller) Ports() []*iobus.Port {
	c.crit.Lock()
	defer c.crit.Unlock()
	return c.ports
}

// Allocate the runtime buffers and reset the protocol to Ready.
func (c *Controller) Allocate() {
	c.crit.Lock()
	defer c.crit.Unlock()

	c.cmd = make([]uint8, 0, MaxCommandLength)
	c.result = make([]uint8, 0, MaxCommandLength)
	c.active = true
	c.reset()
}

// Release the runtime buffers. Any outstanding command is abandoned.
func (c *Controller) Release() {
	c.crit.Lock()
	defer c.crit.Unlock()

	c.reset()
	c.cmd = nil
	c.result = nil
	c.active = false
}

// must be called with the critical section held.
func (c *Controller) reset() {
	c.state = Ready
	c.cmd = c.cmd[:0]
	c.result = c.result[:0]
	c.cursor = 0
	c.delay = 0
	c.collected = nil
	c.seq++
	c.mailbox.Discard()
	c.signalled = 0
	c.latched = 0
}

// State returns the protocol state.
func (c *Controller) State() State {
	c.crit.Lock()
	defer c.crit.Unlock()
	return c.state
}

// ResultWaiting returns true if an asynchronous result has been posted by a
// worker but not yet applied.
func (c *Controller) ResultWaiting() bool {
	c.crit.Lock()
	defer c.crit.Unlock()
	return c.collected != nil || c.mailbox.Occupied()
}

// Ticks returns the number of clock ticks the controller has received.
func (c *Controller) Ticks() uint64 {
	c.crit.Lock()
	defer c.crit.Unlock()
	return c.ticks
}

// WithLock runs f with the controller's lock held. Used by concrete
// controllers to access their own state from outside the clock goroutine.
func (c *Controller) WithLock(f func()) {
	c.crit.Lock()
	defer c.crit.Unlock()
	f()
}

// Signal an interrupt condition. The condition is raised, if enabled by the
// mask, during the next clock tick. Must be called with the controller's lock
// held, which is the case for Execute, DeviceStatus, Complete and Tick.
func (c *Controller) Signal(cond uint8) {
	c.signalled |= cond
}

// Completion returns the function a worker calls with the result of the
// outstanding command. The function is safe to call from any goroutine. Must
// be called from Execute.
func (c *Controller) Completion() func(async.Result) {
	seq := c.seq
	return func(r async.Result) {
		r.Seq = seq
		if !c.mailbox.Post(r) {
			logger.Logf(c.perm, c.cfg.Name, "late result dropped (%s)", r)
		}
	}
}

func (c *Controller) readStatus() uint64 {
	c.crit.Lock()
	defer c.crit.Unlock()

	if !c.active {
		return 0
	}

	s := StatusPresent
	switch c.state {
	case Ready, AcceptingCommand:
		s |= StatusInputReady
	case ExecutingCommand:
		s |= StatusBusy
	case ProvidingResult:
		s |= StatusOutputReady
	}
	if c.cfg.DeviceStatus != nil {
		s |= c.cfg.DeviceStatus() & StatusDevice
	}
	return uint64(s)
}

func (c *Controller) writeCommand(v uint64) {
	c.crit.Lock()
	defer c.crit.Unlock()

	if !c.active {
		return
	}

	switch c.state {
	case ExecutingCommand:
		logger.Logf(c.perm, c.cfg.Name, "command %#02x ignored while executing", v)
		return
	case AcceptingCommand:
		logger.Logf(c.perm, c.cfg.Name, "command %#02x abandoned after %d bytes", c.cmd[0], len(c.cmd))
	case ProvidingResult:
		if c.cursor < len(c.result) {
			logger.Logf(c.perm, c.cfg.Name, "%d result bytes discarded", len(c.result)-c.cursor)
		}
	}

	c.begin(uint8(v))
}

func (c *Controller) writeData(v uint64) {
	c.crit.Lock()
	defer c.crit.Unlock()

	if !c.active {
		return
	}

	switch c.state {
	case Ready:
		c.begin(uint8(v))
	case AcceptingCommand:
		c.cmd = append(c.cmd, uint8(v))
		c.advance()
	default:
		logger.Logf(c.perm, c.cfg.Name, "data write ignored while %s", c.state)
	}
}

func (c *Controller) readData() uint64 {
	c.crit.Lock()
	defer c.crit.Unlock()

	if !c.active || c.state != ProvidingResult {
		return 0
	}

	v := c.result[c.cursor]
	c.cursor++
	if c.cursor >= len(c.result) {
		c.ready()
	}

	return uint64(v)
}

func (c *Controller) readMask() uint64 {
	c.crit.Lock()
	defer c.crit.Unlock()
	return uint64(c.mask)
}

func (c *Controller) writeMask(v uint64) {
	c.crit.Lock()
	defer c.crit.Unlock()
	c.mask = uint8(v)
}

// start a new command with the opcode. must be called with the critical
// section held.
func (c *Controller) begin(op uint8) {
	c.result = c.result[:0]
	c.cursor = 0
	c.cmd = append(c.cmd[:0], op)
	c.advance()
}

// check the received bytes against the command length and execute the
// command if it is complete. must be called with the critical section held.
func (c *Controller) advance() {
	cmd, ok := c.cfg.Commands[c.cmd[0]]
	if !ok {
		logger.Logf(c.perm, c.cfg.Name, "invalid command %#02x", c.cmd[0])
		c.provide([]uint8{InvalidCommand})
		return
	}

	n := cmd.Length(c.cmd)
	if n > MaxCommandLength {
		logger.Logf(c.perm, c.cfg.Name, "%s: command too long (%d bytes)", cmd.Name, n)
		c.provide([]uint8{InvalidParameter})
		return
	}

	if len(c.cmd) < n {
		c.state = AcceptingCommand
		return
	}

	c.state = ExecutingCommand
	c.seq++
	c.issued = c.ticks
	c.mailbox.Discard()

	o := cmd.Execute(c.cmd)
	switch o.kind {
	case done:
		c.provide(o.result)
	case delayed:
		c.delay = o.ticks
		c.result = append(c.result[:0], o.result...)
	case pending:
	}
}

// make the result available to the CPU. must be called with the critical
// section held.
func (c *Controller) provide(result []uint8) {
	c.result = append(c.result[:0], result...)
	c.cursor = 0
	c.Signal(CondCommandComplete)
	if len(c.result) == 0 {
		c.ready()
		return
	}
	c.state = ProvidingResult
	c.Signal(CondOutputReady)
}

// return to the ready state. must be called with the critical section held.
func (c *Controller) ready() {
	c.state = Ready
	c.cmd = c.cmd[:0]
	c.result = c.result[:0]
	c.cursor = 0
	c.Signal(CondInputReady)
}

// costTicks converts a simulated duration into clock ticks at the
// controller's frequency, rounding up.
func (c *Controller) costTicks(d time.Duration) uint64 {
	if d <= 0 || c.freq == 0 {
		return 0
	}
	n := uint64(d) * uint64(c.freq)
	t := n / uint64(time.Second)
	if n%uint64(time.Second) != 0 {
		t++
	}
	return t
}

// OnClockTick implements the clocks.Clocked interface.
func (c *Controller) OnClockTick() {
	c.crit.Lock()
	defer c.crit.Unlock()

	if !c.active {
		return
	}

	c.ticks++

	if c.state == ExecutingCommand {
		if c.delay > 0 {
			c.delay--
			if c.delay == 0 {
				c.provide(c.result)
			}
		} else {
			c.collect()
		}
	}

	if c.cfg.Tick != nil {
		c.cfg.Tick()
	}

	c.interrupts()
}

// collect an asynchronous result from the mailbox and apply it once enough
// simulated time has passed. must be called with the critical section held.
func (c *Controller) collect() {
	if c.collected == nil {
		r, ok := c.mailbox.Collect()
		if !ok {
			return
		}
		if r.Seq != c.seq {
			logger.Logf(c.perm, c.cfg.Name, "stale result discarded (%s)", r)
			return
		}
		c.collected = &r
	}

	if c.ticks-c.issued < c.costTicks(c.collected.Cost) {
		return
	}

	r := *c.collected
	c.collected = nil

	var result []uint8
	if c.cfg.Complete != nil {
		result = c.cfg.Complete(r)
	} else {
		result = []uint8{r.Status}
	}
	c.provide(result)
}

// raise signalled interrupt conditions. must be called with the critical
// section held.
func (c *Controller) interrupts() {
	if c.status == nil {
		c.signalled = 0
		return
	}

	// the CPU has consumed the previous interrupt so the latched conditions
	// are re-armed
	if c.latched != 0 {
		if _, pending := c.status.Pending(); !pending {
			c.latched = 0
		}
	}

	fire := c.signalled & c.mask &^ c.latched
	c.signalled = 0
	if fire != 0 {
		c.latched |= fire
		c.status.RaiseInterrupt(uint32(fire))
	}
}
