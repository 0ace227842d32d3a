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

package lifecycle

import (
	"sync"
	"sync/atomic"

	"github.com/pcsim/pcsim/curated"
)

// State of the lifecycle.
type State int32

// List of valid State values.
const (
	Constructed State = iota
	Connected
	Initialised
	Running
)

func (s State) String() string {
	switch s {
	case Constructed:
		return "constructed"
	case Connected:
		return "connected"
	case Initialised:
		return "initialised"
	case Running:
		return "running"
	}
	return "unknown"
}

// Sentinal errors.
const (
	InvalidTransition = "lifecycle: %s: cannot %s while %s"
	HookFailed        = "lifecycle: %s: %v"
)

// Hooks are called by the Machine for each transition. The type parameter
// is the type of the context passed to OnConnect, which is the environment
// the device is being connected into.
type Hooks[C any] interface {
	OnConnect(ctx C) error
	OnDisconnect(ctx C)
	OnInitialise() error
	OnDeinitialise()
	OnStart() error
	OnStop()
}

// Machine is the lifecycle state machine.
type Machine[C any] struct {
	name  string
	hooks Hooks[C]

	// transitions are serialised. the state can be read at any time
	crit  sync.Mutex
	state atomic.Int32

	// the context passed to Connect(). valid while connected
	ctx C
}

// NewMachine is the preferred method of initialisation for the Machine type.
// The name is used in error messages.
func NewMachine[C any](name string, hooks Hooks[C]) *Machine[C] {
	return &Machine[C]{
		name:  name,
		hooks: hooks,
	}
}

// State returns the current state. Safe to call from any goroutine.
func (m *Machine[C]) State() State {
	return State(m.state.Load())
}

// IsRunning returns true if the state is Running.
func (m *Machine[C]) IsRunning() bool {
	return m.State() == Running
}

// Context returns the context passed to Connect(). Only meaningful while
// connected.
func (m *Machine[C]) Context() C {
	return m.ctx
}

func (m *Machine[C]) transition(op string, from State, to State, hook func() error) error {
	m.crit.Lock()
	defer m.crit.Unlock()

	if s := m.State(); s != from {
		return curated.Errorf(InvalidTransition, m.name, op, s)
	}

	if hook != nil {
		if err := hook(); err != nil {
			return curated.Errorf(HookFailed, m.name, err)
		}
	}

	m.state.Store(int32(to))
	return nil
}

// Connect moves from Constructed to Connected.
func (m *Machine[C]) Connect(ctx C) error {
	return m.transition("connect", Constructed, Connected, func() error {
		if err := m.hooks.OnConnect(ctx); err != nil {
			return err
		}
		m.ctx = ctx
		return nil
	})
}

// Disconnect moves from Connected to Constructed.
func (m *Machine[C]) Disconnect() error {
	return m.transition("disconnect", Connected, Constructed, func() error {
		m.hooks.OnDisconnect(m.ctx)
		var zero C
		m.ctx = zero
		return nil
	})
}

// Initialise moves from Connected to Initialised.
func (m *Machine[C]) Initialise() error {
	return m.transition("initialise", Connected, Initialised, m.hooks.OnInitialise)
}

// Deinitialise moves from Initialised to Connected.
func (m *Machine[C]) Deinitialise() error {
	return m.transition("deinitialise", Initialised, Connected, func() error {
		m.hooks.OnDeinitialise()
		return nil
	})
}

// Start moves from Initialised to Running.
func (m *Machine[C]) Start() error {
	return m.transition("start", Initialised, Running, m.hooks.OnStart)
}

// Stop moves from Running to Initialised.
func (m *Machine[C]) Stop() error {
	return m.transition("stop", Running, Initialised, func() error {
		m.hooks.OnStop()
		return nil
	})
}
