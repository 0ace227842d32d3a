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

package registry_test

import (
	"testing"

	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/environment"
	"github.com/pcsim/pcsim/hardware/device"
	"github.com/pcsim/pcsim/hardware/lifecycle"
	"github.com/pcsim/pcsim/hardware/peripherals/beeper"
	"github.com/pcsim/pcsim/hardware/preferences"
	"github.com/pcsim/pcsim/hardware/registry"
	"github.com/pcsim/pcsim/test"
)

func newBeeper(name string, env *environment.Environment) device.Device {
	return beeper.NewBeeper(name, env)
}

func TestRegistry(t *testing.T) {
	env, err := environment.NewEnvironment(environment.MainEmulation, nil, preferences.NewDefaultPreferences())
	test.DemandSuccess(t, err)

	r := registry.NewRegistry()
	test.ExpectEquality(t, len(r.Kinds()), 0)

	test.ExpectSuccess(t, r.Register(beeper.Kind, newBeeper))
	test.ExpectSuccess(t, r.Register("speaker", newBeeper))

	err = r.Register(beeper.Kind, newBeeper)
	test.ExpectSuccess(t, curated.Is(err, registry.DuplicateKind))

	err = r.Register("bad:kind", newBeeper)
	test.ExpectSuccess(t, curated.Is(err, registry.InvalidKind))
	err = r.Register("", newBeeper)
	test.ExpectSuccess(t, curated.Is(err, registry.InvalidKind))

	k := r.Kinds()
	test.DemandEquality(t, len(k), 2)
	test.ExpectEquality(t, k[0], beeper.Kind)
	test.ExpectEquality(t, k[1], "speaker")

	d, err := r.Create(beeper.Kind, "pc speaker", env)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, d.Name(), "pc speaker")
	test.ExpectEquality(t, d.Kind(), beeper.Kind)
	test.ExpectEquality(t, d.State(), lifecycle.Constructed)

	_, err = r.Create("teleprinter", "tty", env)
	test.ExpectSuccess(t, curated.Is(err, registry.UnknownKind))
}
