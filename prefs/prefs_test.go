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

package prefs_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/hardware/clocks"
	"github.com/pcsim/pcsim/prefs"
	"github.com/pcsim/pcsim/test"
)

func cmpFile(t *testing.T, fn string, expected string) {
	t.Helper()

	data, err := os.ReadFile(fn)
	if err != nil {
		t.Errorf("error reading prefs file: %v", err)
		return
	}

	expected = fmt.Sprintf("%s\n%s", prefs.WarningBoilerPlate, expected)
	test.ExpectEquality(t, string(data), expected)
}

func TestBool(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "prefs")
	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v, w, x prefs.Bool
	test.ExpectSuccess(t, dsk.Add("test", &v))
	test.ExpectSuccess(t, dsk.Add("testB", &w))
	test.ExpectSuccess(t, dsk.Add("testC", &x))

	test.ExpectSuccess(t, v.Set(true))
	test.ExpectSuccess(t, w.Set("foo"))
	test.ExpectSuccess(t, x.Set("TRUE"))
	test.ExpectFailure(t, x.Set(10))

	test.DemandSuccess(t, dsk.Save())
	cmpFile(t, fn, "test :: true\ntestB :: false\ntestC :: true\n")
}

func TestIntAndFloat(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "prefs")
	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var i prefs.Int
	var f prefs.Float
	test.ExpectSuccess(t, dsk.Add("number", &i))
	test.ExpectSuccess(t, dsk.Add("scale", &f))

	test.ExpectSuccess(t, i.Set("99"))
	test.ExpectSuccess(t, f.Set(0.5))
	test.ExpectFailure(t, i.Set("---"))
	test.ExpectFailure(t, i.Set(1.0))

	// failed Set() leaves the value unchanged
	test.ExpectEquality(t, i.Get().(int), 99)

	test.DemandSuccess(t, dsk.Save())
	cmpFile(t, fn, "number :: 99\nscale :: 0.500\n")
}

func TestHardwareTypes(t *testing.T) {
	var f prefs.Frequency
	test.ExpectSuccess(t, f.Set("10MHz"))
	test.ExpectEquality(t, f.Get().(clocks.Frequency), 10*clocks.MHz)
	test.ExpectEquality(t, f.String(), "10MHz")
	test.ExpectFailure(t, f.Set("fast"))
	test.ExpectFailure(t, f.Set("0Hz"))
	test.ExpectEquality(t, f.String(), "10MHz")

	var d prefs.Duration
	test.ExpectSuccess(t, d.Set("10ms"))
	test.ExpectEquality(t, d.Get().(time.Duration), 10*time.Millisecond)
	test.ExpectFailure(t, d.Set("-1s"))
	test.ExpectFailure(t, d.Set("soon"))

	var a prefs.Address
	test.ExpectSuccess(t, a.Set("03F0"))
	test.ExpectEquality(t, a.Get().(uint16), 0x03f0)
	test.ExpectEquality(t, a.String(), "03F0")
	test.ExpectFailure(t, a.Set("3F0"))
	test.ExpectFailure(t, a.Set("03G0"))
	test.ExpectFailure(t, a.Set(0x10000))

	var b prefs.Base
	test.ExpectSuccess(t, b.Set("000B8000"))
	test.ExpectEquality(t, b.Get().(uint32), 0xb8000)
	test.ExpectEquality(t, b.String(), "000B8000")
	test.ExpectFailure(t, b.Set("B8000"))

	var p prefs.Path
	test.ExpectSuccess(t, p.Set("$/boot.img"))
	test.ExpectEquality(t, p.Resolve("/projects/dos"), filepath.Join("/projects/dos", "boot.img"))
	test.ExpectSuccess(t, p.Set("/images/boot.img"))
	test.ExpectEquality(t, p.Resolve("/projects/dos"), "/images/boot.img")
}

func TestHooks(t *testing.T) {
	var a prefs.Address
	var seen uint16
	a.SetHookPre(func(v prefs.Value) error {
		if v.(uint16)&0x03 != 0 {
			return fmt.Errorf("base must be aligned")
		}
		return nil
	})
	a.SetHookPost(func(v prefs.Value) error {
		seen = v.(uint16)
		return nil
	})

	test.ExpectSuccess(t, a.Set("0070"))
	test.ExpectEquality(t, seen, 0x0070)
	test.ExpectFailure(t, a.Set("0071"))
	test.ExpectEquality(t, a.Get().(uint16), 0x0070)
}

func TestGeneric(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "prefs")
	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var col, row int

	v := prefs.NewGeneric(
		func(s string) error {
			_, err := fmt.Sscanf(s, "%d,%d", &col, &row)
			return err
		},
		func() string {
			return fmt.Sprintf("%d,%d", col, row)
		},
	)
	test.ExpectSuccess(t, dsk.Add("cursor", v))

	col = 1
	row = 2
	test.DemandSuccess(t, dsk.Save())
	cmpFile(t, fn, "cursor :: 1,2\n")

	col = 0
	row = 0
	test.DemandSuccess(t, dsk.Load(false))
	test.ExpectEquality(t, col, 1)
	test.ExpectEquality(t, row, 2)
}

// two Disk instances sharing the same file must not clobber each other's
// entries.
func TestSharedFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "prefs")

	dskA, _ := prefs.NewDisk(fn)
	var a prefs.Bool
	test.ExpectSuccess(t, dskA.Add("device.fdc.present", &a))
	test.ExpectSuccess(t, a.Set(true))
	test.DemandSuccess(t, dskA.Save())

	dskB, _ := prefs.NewDisk(fn)
	var b prefs.Address
	test.ExpectSuccess(t, dskB.Add("device.fdc.base", &b))
	test.ExpectSuccess(t, b.Set("03F0"))
	test.DemandSuccess(t, dskB.Save())

	cmpFile(t, fn, "device.fdc.base :: 03F0\ndevice.fdc.present :: true\n")
	test.ExpectSuccess(t, dskB.Has("device.fdc.present"))
	test.ExpectFailure(t, dskB.Has("device.rtc.base"))
}

func TestLoad(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "prefs")

	err := os.WriteFile(fn, []byte(strings.Join([]string{
		prefs.WarningBoilerPlate,
		"device.fdc.base :: 03F0",
		"device.fdc.frequency :: quick",
		"device.fdc.unknown :: 1",
		"",
	}, "\n")), 0o600)
	test.DemandSuccess(t, err)

	dsk, _ := prefs.NewDisk(fn)

	var base prefs.Address
	var freq prefs.Frequency
	var delay prefs.Duration
	test.ExpectSuccess(t, base.Set("0000"))
	test.ExpectSuccess(t, freq.Set("1MHz"))
	test.ExpectSuccess(t, delay.Set("10ms"))
	test.ExpectSuccess(t, dsk.Add("device.fdc.base", &base))
	test.ExpectSuccess(t, dsk.Add("device.fdc.frequency", &freq))
	test.ExpectSuccess(t, dsk.Add("device.fdc.delay", &delay))

	test.DemandSuccess(t, dsk.Load(false))

	// present and valid
	test.ExpectEquality(t, base.Get().(uint16), 0x03f0)

	// malformed value keeps its default
	test.ExpectEquality(t, freq.Get().(clocks.Frequency), clocks.MHz)

	// missing value keeps its default
	test.ExpectEquality(t, delay.Get().(time.Duration), 10*time.Millisecond)

	// duplicate and invalid keys
	test.ExpectSuccess(t, curated.Is(dsk.Add("device.fdc.base", &base), prefs.DuplicateKey))
	test.ExpectSuccess(t, curated.Is(dsk.Add("device fdc", &base), prefs.InvalidKey))
}

func TestMissingFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "prefs")
	dsk, _ := prefs.NewDisk(fn)

	var v prefs.Bool
	test.ExpectSuccess(t, dsk.Add("realtime", &v))

	err := dsk.Load(true)
	test.ExpectSuccess(t, curated.Is(err, prefs.NoPrefsFile))

	// saveOnFail has created the file
	cmpFile(t, fn, "realtime :: false\n")
}

func TestCommandLine(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "prefs")
	dsk, _ := prefs.NewDisk(fn)

	var base prefs.Address
	test.ExpectSuccess(t, dsk.Add("device.rtc.base", &base))
	test.ExpectSuccess(t, base.Set("0070"))
	test.DemandSuccess(t, dsk.Save())

	prefs.PushCommandLineStack("device.rtc.base::0170; device.other::1")
	test.ExpectEquality(t, prefs.SizeCommandLineStack(), 1)

	test.DemandSuccess(t, dsk.Load(false))
	test.ExpectEquality(t, base.Get().(uint16), 0x0170)

	// unused entries are returned when the stack is popped
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "device.other::1")
	test.ExpectEquality(t, prefs.SizeCommandLineStack(), 0)
}
