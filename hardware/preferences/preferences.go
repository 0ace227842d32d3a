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
	"time"

	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/paths"
	"github.com/pcsim/pcsim/prefs"
)

// Preferences defines and collates the preference values that apply to the
// hardware as a whole rather than to an individual device.
type Preferences struct {
	dsk *prefs.Disk

	// pace the master clock to real time. when false the clock runs as fast
	// as possible
	RealTime prefs.Bool

	// scale applied to the real time delays of device workers. zero disables
	// sleeping entirely, which is useful for testing. simulated time is not
	// affected by the scale
	DelayScale prefs.Float

	// the time to wait for a device worker to stop before abandoning it
	StopTimeout prefs.Duration

	// echo log entries to the terminal
	EchoLog prefs.Bool
}

func (p *Preferences) String() string {
	if p.dsk == nil {
		return ""
	}
	return p.dsk.String()
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type. The values are loaded from the global preferences
// file in the resource directory.
func NewPreferences() (*Preferences, error) {
	pth, err := paths.ResourcePath("", prefs.DefaultPrefsFile)
	if err != nil {
		return nil, err
	}
	return newPreferences(pth)
}

// NewDefaultPreferences creates a Preferences instance that is not backed by
// a file. Load() and Save() do nothing. Used for testing and for secondary
// emulations.
func NewDefaultPreferences() *Preferences {
	p := &Preferences{}
	p.SetDefaults()
	return p
}

func newPreferences(pth string) (*Preferences, error) {
	p := &Preferences{}
	p.SetDefaults()

	var err error
	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, err
	}

	err = p.dsk.Add("hardware.realtime", &p.RealTime)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("hardware.worker.delayscale", &p.DelayScale)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("hardware.worker.stoptimeout", &p.StopTimeout)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("hardware.echolog", &p.EchoLog)
	if err != nil {
		return nil, err
	}

	err = p.dsk.Load(true)
	if err != nil {
		// ignore missing prefs file errors
		if !curated.Is(err, prefs.NoPrefsFile) {
			return nil, err
		}
	}

	return p, nil
}

// SetDefaults reverts all hardware preferences to the default values.
func (p *Preferences) SetDefaults() {
	_ = p.RealTime.Set(true)
	_ = p.DelayScale.Set(1.0)
	_ = p.StopTimeout.Set(time.Second)
	_ = p.EchoLog.Set(false)
}

// Load current hardware preferences from disk.
func (p *Preferences) Load() error {
	if p.dsk == nil {
		return nil
	}
	return p.dsk.Load(false)
}

// Save current hardware preferences to disk.
func (p *Preferences) Save() error {
	if p.dsk == nil {
		return nil
	}
	return p.dsk.Save()
}

// Delay scales a real time worker delay by the DelayScale value.
func (p *Preferences) Delay(d time.Duration) time.Duration {
	s := p.DelayScale.Get().(float64)
	if s <= 0 {
		return 0
	}
	return time.Duration(float64(d) * s)
}
