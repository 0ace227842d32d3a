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

package prefs

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pcsim/pcsim/hardware/clocks"
)

// Frequency implements a clock frequency type in the prefs system. The string
// form is <count><unit>, for example "10MHz" or "32768Hz".
type Frequency struct {
	hooks
	value atomic.Value // clocks.Frequency
}

func (p *Frequency) String() string {
	return p.Get().(clocks.Frequency).String()
}

// Set new value to Frequency type. New value can be a clocks.Frequency, an
// int or a string. A frequency of zero is not allowed.
func (p *Frequency) Set(v Value) error {
	var nv clocks.Frequency
	switch v := v.(type) {
	case clocks.Frequency:
		nv = v
	case int:
		nv = clocks.Frequency(v)
	case string:
		var err error
		nv, err = clocks.ParseFrequency(v)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("prefs: cannot convert %T to prefs.Frequency", v)
	}
	if nv == 0 {
		return fmt.Errorf("prefs: frequency must be greater than zero")
	}
	return p.store(nv, &p.value)
}

// Get returns the raw pref value.
func (p *Frequency) Get() Value {
	ov := p.value.Load()
	if ov == nil {
		return clocks.Frequency(0)
	}
	return ov.(clocks.Frequency)
}

// Reset leaves the frequency at its current value. There is no meaningful
// zero frequency.
func (p *Frequency) Reset() error {
	return nil
}

// Duration implements a time.Duration type in the prefs system. The string
// form is anything accepted by time.ParseDuration(), for example "10ms".
type Duration struct {
	hooks
	value atomic.Value // time.Duration
}

func (p *Duration) String() string {
	return p.Get().(time.Duration).String()
}

// Set new value to Duration type. New value can be a time.Duration or a
// string. Negative durations are not allowed.
func (p *Duration) Set(v Value) error {
	var nv time.Duration
	switch v := v.(type) {
	case time.Duration:
		nv = v
	case string:
		var err error
		nv, err = time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("prefs: cannot convert %q to prefs.Duration", v)
		}
	default:
		return fmt.Errorf("prefs: cannot convert %T to prefs.Duration", v)
	}
	if nv < 0 {
		return fmt.Errorf("prefs: duration must not be negative")
	}
	return p.store(nv, &p.value)
}

// Get returns the raw pref value.
func (p *Duration) Get() Value {
	ov := p.value.Load()
	if ov == nil {
		return time.Duration(0)
	}
	return ov.(time.Duration)
}

// Reset sets the duration to zero.
func (p *Duration) Reset() error {
	return p.Set(time.Duration(0))
}

// Address implements an I/O port address in the prefs system. The string
// form is exactly four hexadecimal digits, for example "03F0".
type Address struct {
	hooks
	value atomic.Value // uint16
}

func (p *Address) String() string {
	return fmt.Sprintf("%04X", p.Get())
}

// Set new value to Address type. New value can be a uint16, an int or a
// string.
func (p *Address) Set(v Value) error {
	var nv uint16
	switch v := v.(type) {
	case uint16:
		nv = v
	case int:
		if v < 0 || v > 0xffff {
			return fmt.Errorf("prefs: address out of range (%#x)", v)
		}
		nv = uint16(v)
	case string:
		n, err := parseHex(v, 4)
		if err != nil {
			return err
		}
		nv = uint16(n)
	default:
		return fmt.Errorf("prefs: cannot convert %T to prefs.Address", v)
	}
	return p.store(nv, &p.value)
}

// Get returns the raw pref value.
func (p *Address) Get() Value {
	ov := p.value.Load()
	if ov == nil {
		return uint16(0)
	}
	return ov.(uint16)
}

// Reset sets the address to zero.
func (p *Address) Reset() error {
	return p.Set(uint16(0))
}

// Base implements a memory bus address in the prefs system. The string form is
// exactly eight hexadecimal digits, for example "000B8000".
type Base struct {
	hooks
	value atomic.Value // uint32
}

func (p *Base) String() string {
	return fmt.Sprintf("%08X", p.Get())
}

// Set new value to Base type. New value can be a uint32, an int or a
// string.
func (p *Base) Set(v Value) error {
	var nv uint32
	switch v := v.(type) {
	case uint32:
		nv = v
	case int:
		if v < 0 || v > 0xffffffff {
			return fmt.Errorf("prefs: base out of range (%#x)", v)
		}
		nv = uint32(v)
	case string:
		n, err := parseHex(v, 8)
		if err != nil {
			return err
		}
		nv = uint32(n)
	default:
		return fmt.Errorf("prefs: cannot convert %T to prefs.Base", v)
	}
	return p.store(nv, &p.value)
}

// Get returns the raw pref value.
func (p *Base) Get() Value {
	ov := p.value.Load()
	if ov == nil {
		return uint32(0)
	}
	return ov.(uint32)
}

// Reset sets the base to zero.
func (p *Base) Reset() error {
	return p.Set(uint32(0))
}

func parseHex(s string, digits int) (uint64, error) {
	t := strings.TrimSpace(s)
	if len(t) != digits {
		return 0, fmt.Errorf("prefs: %q is not %d hex digits", s, digits)
	}
	n, err := strconv.ParseUint(t, 16, digits*4)
	if err != nil {
		return 0, fmt.Errorf("prefs: %q is not %d hex digits", s, digits)
	}
	return n, nil
}

// DirMarker at the start of a Path value is replaced by the directory of the
// preferences file when the path is resolved.
const DirMarker = "$/"

// Path implements a file path in the prefs system.
type Path struct {
	hooks
	value atomic.Value // string
}

func (p *Path) String() string {
	return p.Get().(string)
}

// Set new value to Path type. New value can be of any type that can be
// formatted with the %v verb.
func (p *Path) Set(v Value) error {
	return p.store(strings.TrimSpace(fmt.Sprintf("%v", v)), &p.value)
}

// Get returns the raw, unresolved, pref value.
func (p *Path) Get() Value {
	ov := p.value.Load()
	if ov == nil {
		return ""
	}
	return ov.(string)
}

// Reset sets the path to the empty string.
func (p *Path) Reset() error {
	return p.Set("")
}

// Resolve returns the path with any leading DirMarker replaced by dir.
func (p *Path) Resolve(dir string) string {
	s := p.String()
	if strings.HasPrefix(s, DirMarker) {
		return filepath.Join(dir, strings.TrimPrefix(s, DirMarker))
	}
	return s
}
