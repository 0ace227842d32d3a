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

package registry

import (
	"sort"
	"sync"

	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/environment"
	"github.com/pcsim/pcsim/hardware/device"
)

// Sentinal errors.
const (
	DuplicateKind = "registry: kind %q is already registered"
	UnknownKind   = "registry: unknown kind %q"
	InvalidKind   = "registry: invalid kind %q"
)

// Constructor defines the function signature for creating a new device of a
// registered kind.
type Constructor func(name string, env *environment.Environment) device.Device

// Registry of device constructors.
type Registry struct {
	crit  sync.Mutex
	kinds map[string]Constructor
}

// NewRegistry is the preferred method of initialisation for the Registry
// type. The registry is empty.
func NewRegistry() *Registry {
	return &Registry{
		kinds: make(map[string]Constructor),
	}
}

// Register a constructor for a kind. A kind can only be registered once and
// must not contain any of the separators used in the project file.
func (r *Registry) Register(kind string, c Constructor) error {
	if kind == "" || c == nil {
		return curated.Errorf(InvalidKind, kind)
	}
	for _, ch := range kind {
		if ch == ':' || ch == ',' || ch == ' ' {
			return curated.Errorf(InvalidKind, kind)
		}
	}

	r.crit.Lock()
	defer r.crit.Unlock()

	if _, ok := r.kinds[kind]; ok {
		return curated.Errorf(DuplicateKind, kind)
	}
	r.kinds[kind] = c

	return nil
}

// Create a new device of the kind. The device is in the Constructed state.
func (r *Registry) Create(kind string, name string, env *environment.Environment) (device.Device, error) {
	r.crit.Lock()
	c, ok := r.kinds[kind]
	r.crit.Unlock()

	if !ok {
		return nil, curated.Errorf(UnknownKind, kind)
	}

	return c(name, env), nil
}

// Kinds returns the sorted list of registered kinds.
func (r *Registry) Kinds() []string {
	r.crit.Lock()
	defer r.crit.Unlock()

	k := make([]string, 0, len(r.kinds))
	for n := range r.kinds {
		k = append(k, n)
	}
	sort.Strings(k)

	return k
}
