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

package environment

import (
	"github.com/pcsim/pcsim/hardware/preferences"
	"github.com/pcsim/pcsim/notifications"
)

// Label is used to name the environment.
type Label string

// MainEmulation is the label used for the main emulation.
const MainEmulation = Label("")

// Environment is used to provide context for an emulation. Particularly useful
// when running more than one appliance in the same program.
type Environment struct {
	Label Label

	// the hardware preferences
	Prefs *preferences.Preferences

	// notifications are sent to the front end through this interface
	Notifications notifications.Notify
}

// NewEnvironment is the preferred method of initialisation for the
// Environment type.
//
// The notify argument can be nil, in which case notifications are discarded.
// The prefs argument can also be nil and a new Preferences instance will be
// created from the global preferences file. Providing a non-nil value allows
// the preferences of more than one appliance to be shared.
func NewEnvironment(label Label, notify notifications.Notify, prefs *preferences.Preferences) (*Environment, error) {
	env := &Environment{
		Label:         label,
		Notifications: notify,
	}

	if env.Notifications == nil {
		env.Notifications = notifications.Discard
	}

	if prefs == nil {
		var err error
		prefs, err = preferences.NewPreferences()
		if err != nil {
			return nil, err
		}
	}
	env.Prefs = prefs

	return env, nil
}

// Normalise ensures the environment is in a known default state. Useful for
// tests where the initial state must be the same for every run.
func (env *Environment) Normalise() {
	env.Prefs.SetDefaults()
	_ = env.Prefs.DelayScale.Set(0.0)
	_ = env.Prefs.RealTime.Set(false)
}

// IsMainEmulation returns true if the environment is intended for the main
// emulation in the program.
func (env *Environment) IsMainEmulation() bool {
	return env.Label == MainEmulation
}

// IsEmulation checks the emulation label and returns true if it matches.
func (env *Environment) IsEmulation(label Label) bool {
	return env.Label == label
}

// AllowLogging implements the logger.Permission interface. Only the main
// emulation is allowed to log.
func (env *Environment) AllowLogging() bool {
	return env.IsMainEmulation()
}

// Notify sends a notice to the front end. Errors from the front end are
// returned but the caller will usually just log them.
func (env *Environment) Notify(notice notifications.Notice, detail string) error {
	return env.Notifications.Notify(notice, detail)
}
