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

package preferences

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pcsim/pcsim/prefs"
	"github.com/pcsim/pcsim/test"
)

func TestDefaults(t *testing.T) {
	p := NewDefaultPreferences()
	test.ExpectEquality(t, p.RealTime.Get().(bool), true)
	test.ExpectEquality(t, p.StopTimeout.Get().(time.Duration), time.Second)
	test.ExpectEquality(t, p.Delay(10*time.Millisecond), 10*time.Millisecond)

	test.ExpectSuccess(t, p.DelayScale.Set(0.5))
	test.ExpectEquality(t, p.Delay(10*time.Millisecond), 5*time.Millisecond)

	test.ExpectSuccess(t, p.DelayScale.Set(0))
	test.ExpectEquality(t, p.Delay(10*time.Millisecond), time.Duration(0))

	// not backed by a file
	test.ExpectSuccess(t, p.Save())
	test.ExpectSuccess(t, p.Load())
}

func TestFile(t *testing.T) {
	pth := filepath.Join(t.TempDir(), prefs.DefaultPrefsFile)

	// missing file is created with the default values
	p, err := newPreferences(pth)
	test.DemandSuccess(t, err)
	_, err = os.Stat(pth)
	test.ExpectSuccess(t, err)

	test.ExpectSuccess(t, p.RealTime.Set(false))
	test.ExpectSuccess(t, p.Save())

	q, err := newPreferences(pth)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, q.RealTime.Get().(bool), false)
}
