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

package scripting

import (
	"fmt"
	"time"

	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/hardware"
	"github.com/pcsim/pcsim/hardware/async"
	"github.com/pcsim/pcsim/hardware/controller"
	"github.com/pcsim/pcsim/hardware/peripherals/floppy/drive"
	"github.com/pcsim/pcsim/hardware/peripherals/keyboard"
	"github.com/pcsim/pcsim/logger"
	lua "github.com/yuin/gopher-lua"
)

// Sentinal errors.
const (
	ScriptError = "scripting: %v"
)

// the longest a script will wait for a drive worker to mount an image
const mountTimeout = 5 * time.Second

// Script is a Lua state bound to an appliance.
type Script struct {
	app *hardware.Appliance
	L   *lua.LState
}

// NewScript is the preferred method of initialisation for the Script type.
// Close() should be called when the script is no longer required.
func NewScript(app *hardware.Appliance) *Script {
	scr := &Script{
		app: app,
		L:   lua.NewState(),
	}

	for name, f := range map[string]lua.LGFunction{
		"inb":   scr.inb,
		"outb":  scr.outb,
		"inw":   scr.inw,
		"outw":  scr.outw,
		"tick":  scr.tick,
		"irq":   scr.irq,
		"key":   scr.key,
		"mount": scr.mount,
		"log":   scr.log,
	} {
		scr.L.SetGlobal(name, scr.L.NewFunction(f))
	}

	return scr
}

// Close the Lua state.
func (scr *Script) Close() {
	scr.L.Close()
}

// Run the Lua source.
func (scr *Script) Run(src string) error {
	if err := scr.L.DoString(src); err != nil {
		return curated.Errorf(ScriptError, err)
	}
	return nil
}

// RunFile runs the Lua file.
func (scr *Script) RunFile(path string) error {
	logger.Logf(scr.app.Env(), "script", "running %s", path)
	if err := scr.L.DoFile(path); err != nil {
		return curated.Errorf(ScriptError, err)
	}
	return nil
}

// check that argument n is a valid port address.
func checkPort(L *lua.LState, n int) uint16 {
	p := L.CheckInt(n)
	if p < 0 || p > 0xffff {
		L.ArgError(n, fmt.Sprintf("port %#x out of range", p))
	}
	return uint16(p)
}

func (scr *Script) inb(L *lua.LState) int {
	L.Push(lua.LNumber(scr.app.IO.Read8(checkPort(L, 1))))
	return 1
}

func (scr *Script) outb(L *lua.LState) int {
	scr.app.IO.Write8(checkPort(L, 1), uint8(L.CheckInt(2)))
	return 0
}

func (scr *Script) inw(L *lua.LState) int {
	L.Push(lua.LNumber(scr.app.IO.Read16(checkPort(L, 1))))
	return 1
}

func (scr *Script) outw(L *lua.LState) int {
	scr.app.IO.Write16(checkPort(L, 1), uint16(L.CheckInt(2)))
	return 0
}

func (scr *Script) tick(L *lua.LState) int {
	n := L.OptInt(1, 1)
	if n < 0 {
		L.ArgError(1, "negative tick count")
	}
	if err := scr.app.Step(n); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (scr *Script) irq(L *lua.LState) int {
	irq, ok := scr.app.IO.GetIoInterrupt()
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(irq.Port))
	L.Push(lua.LNumber(irq.Code))
	return 2
}

// the named keyboard or the first keyboard in the appliance if the name is
// empty.
func (scr *Script) keyboard(name string) (*keyboard.Keyboard, bool) {
	if name != "" {
		d, ok := scr.app.Device(name)
		if !ok {
			return nil, false
		}
		kbd, ok := d.(*keyboard.Keyboard)
		return kbd, ok
	}

	for _, d := range scr.app.Devices() {
		if kbd, ok := d.(*keyboard.Keyboard); ok {
			return kbd, true
		}
	}
	return nil, false
}

func (scr *Script) key(L *lua.LState) int {
	code := L.CheckInt(1)
	name := L.OptString(2, "")

	kbd, ok := scr.keyboard(name)
	if !ok {
		L.RaiseError("no keyboard %q", name)
	}

	L.Push(lua.LBool(kbd.PressKey(uint8(code))))
	return 1
}

func (scr *Script) mount(L *lua.LState) int {
	name := L.CheckString(1)
	path := L.CheckString(2)

	d, ok := scr.app.Device(name)
	if !ok {
		L.RaiseError("no drive %q", name)
	}
	drv, ok := d.(*drive.Drive)
	if !ok {
		L.RaiseError("%q is not a floppy drive", name)
	}

	if !drv.WorkerRunning() {
		if err := drv.Mount(path); err != nil {
			L.Push(lua.LNumber(controller.DataError))
			return 1
		}
		L.Push(lua.LNumber(controller.NoError))
		return 1
	}

	done := make(chan async.Result, 1)
	drv.BeginMount(path, func(r async.Result) {
		done <- r
	})

	select {
	case r := <-done:
		L.Push(lua.LNumber(r.Status))
	case <-time.After(mountTimeout):
		L.Push(lua.LNumber(controller.Timeout))
	}
	return 1
}

func (scr *Script) log(L *lua.LState) int {
	logger.Log(scr.app.Env(), "script", L.CheckString(1))
	return 0
}
