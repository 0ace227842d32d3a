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

package scripting_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/environment"
	"github.com/pcsim/pcsim/hardware"
	"github.com/pcsim/pcsim/hardware/peripherals/floppy/drive"
	"github.com/pcsim/pcsim/hardware/peripherals/rtc"
	"github.com/pcsim/pcsim/hardware/preferences"
	"github.com/pcsim/pcsim/logger"
	"github.com/pcsim/pcsim/scripting"
	"github.com/pcsim/pcsim/test"
)

// a running, stepped appliance with a real time clock, a keyboard and a
// floppy drive with no image
func newAppliance(t *testing.T) *hardware.Appliance {
	t.Helper()

	env, err := environment.NewEnvironment(environment.MainEmulation, nil, preferences.NewDefaultPreferences())
	test.DemandSuccess(t, err)
	env.Normalise()

	app := hardware.NewAppliance(env, hardware.NewRegistry())
	for _, d := range [][2]string{
		{"rtc", "rtc"},
		{"keyboard", "kbd"},
		{"fdc", "fdc"},
		{"floppy-drive", "drive0"},
	} {
		_, err := app.AddDevice(d[0], d[1])
		test.DemandSuccess(t, err)
	}

	test.DemandSuccess(t, app.SetStepped(true))
	test.DemandSuccess(t, app.Connect())
	test.DemandSuccess(t, app.Initialise())
	test.DemandSuccess(t, app.Start())

	t.Cleanup(func() {
		_ = app.Stop()
		_ = app.Deinitialise()
		_ = app.Disconnect()
	})

	return app
}

// helper functions written in Lua. gopher-lua implements Lua 5.1 which has
// no bitwise operators
const prelude = `
function busy(base)
	return math.floor(inb(base) / 64) % 2 == 1
end

function await(base)
	local n = 0
	while busy(base) do
		tick(1000)
		n = n + 1
		assert(n < 1000, "controller did not finish")
	end
end
`

func TestPorts(t *testing.T) {
	app := newAppliance(t)
	scr := scripting.NewScript(app)
	defer scr.Close()

	src := prelude + `
outb(0x71, 0x11)
outb(0x72, 0x20)
outb(0x72, 0x5a)
await(0x70)
assert(inb(0x72) == 0, "status")

outb(0x71, 0x10)
outb(0x72, 0x20)
await(0x70)
assert(inb(0x72) == 0, "status")
assert(inb(0x72) == 0x5a, "value")
`
	test.ExpectSuccess(t, scr.Run(src))

	d, _ := app.Device("rtc")
	test.ExpectEquality(t, d.(*rtc.RTC).NVRAMByte(0x20), uint8(0x5a))
}

func TestInterrupt(t *testing.T) {
	app := newAppliance(t)
	scr := scripting.NewScript(app)
	defer scr.Close()

	// interrupt on command completion
	src := prelude + `
assert(irq() == nil)
outb(0x73, 0x02)
outb(0x71, 0x12)
await(0x70)
local port, code = irq()
assert(port == 0x70, "port")
assert(code == 0x02, "code")
assert(irq() == nil)
`
	test.ExpectSuccess(t, scr.Run(src))
}

func TestKeyAndLog(t *testing.T) {
	app := newAppliance(t)
	scr := scripting.NewScript(app)
	defer scr.Close()

	test.ExpectSuccess(t, scr.Run(`assert(key(0x1c) == true)`))
	test.ExpectSuccess(t, scr.Run(`assert(key(0x1c, "kbd") == true)`))
	test.ExpectSuccess(t, curated.Is(scr.Run(`key(0x1c, "rtc")`), scripting.ScriptError))

	test.ExpectSuccess(t, scr.Run(`log("hello from lua")`))
	w := &strings.Builder{}
	logger.Tail(w, 1)
	test.ExpectEquality(t, w.String(), "script: hello from lua\n")
}

func TestMount(t *testing.T) {
	app := newAppliance(t)
	scr := scripting.NewScript(app)
	defer scr.Close()

	dir := t.TempDir()
	img := filepath.Join(dir, "disk.img")
	test.DemandSuccess(t, drive.CreateImage(img))
	test.DemandSuccess(t, os.WriteFile(filepath.Join(dir, "short.img"), []byte{0x00}, 0o644))

	src := fmt.Sprintf(`assert(mount("drive0", %q) == 0)`, img)
	test.ExpectSuccess(t, scr.Run(src))

	d, _ := app.Device("drive0")
	test.ExpectSuccess(t, d.(*drive.Drive).IsMounted())

	// wrong sized image
	src = fmt.Sprintf(`assert(mount("drive0", %q) == 6)`, filepath.Join(dir, "short.img"))
	test.ExpectSuccess(t, scr.Run(src))
	test.ExpectFailure(t, d.(*drive.Drive).IsMounted())

	test.ExpectSuccess(t, curated.Is(scr.Run(`mount("kbd", "x")`), scripting.ScriptError))
}

func TestErrors(t *testing.T) {
	app := newAppliance(t)
	scr := scripting.NewScript(app)
	defer scr.Close()

	test.ExpectSuccess(t, curated.Is(scr.Run(`this is not lua`), scripting.ScriptError))
	test.ExpectSuccess(t, curated.Is(scr.Run(`inb(0x10000)`), scripting.ScriptError))
	test.ExpectSuccess(t, curated.Is(scr.Run(`tick(-1)`), scripting.ScriptError))
	test.ExpectSuccess(t, curated.Is(scr.RunFile(filepath.Join(t.TempDir(), "missing.lua")), scripting.ScriptError))

	pth := filepath.Join(t.TempDir(), "script.lua")
	test.DemandSuccess(t, os.WriteFile(pth, []byte(`tick(10)`), 0o644))
	test.ExpectSuccess(t, scr.RunFile(pth))
}
