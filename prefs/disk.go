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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/logger"
)

// DefaultPrefsFile is the default filename of the global preferences file.
const DefaultPrefsFile = "preferences"

// WarningBoilerPlate is the first line of every preferences file.
const WarningBoilerPlate = "*** do not edit this file by hand ***"

// KeySep separates the key from the value on each line of the file.
const KeySep = " :: "

// Sentinal errors.
const (
	NoPrefsFile  = "prefs: file does not exist (%s)"
	DuplicateKey = "prefs: key already added (%s)"
	InvalidKey   = "prefs: invalid key (%s)"
	DiskError    = "prefs: %v"
)

// Disk binds preference values to keys and saves/loads them to/from a file.
type Disk struct {
	path    string
	entries map[string]Pref
}

// NewDisk is the preferred method of initialisation for the Disk type.
func NewDisk(path string) (*Disk, error) {
	return &Disk{
		path:    path,
		entries: make(map[string]Pref),
	}, nil
}

func (dsk *Disk) String() string {
	s := strings.Builder{}
	for _, k := range dsk.keys() {
		s.WriteString(fmt.Sprintf("%s%s%s\n", k, KeySep, dsk.entries[k]))
	}
	return s.String()
}

// Path returns the filename of the preferences file.
func (dsk *Disk) Path() string {
	return dsk.path
}

// Dir returns the directory containing the preferences file. Used to resolve
// Path values.
func (dsk *Disk) Dir() string {
	return filepath.Dir(dsk.path)
}

// Add a preference value to the list of values bound to a key.
func (dsk *Disk) Add(key string, p Pref) error {
	if key == "" || strings.Contains(key, KeySep) || strings.ContainsAny(key, "\n ") {
		return curated.Errorf(InvalidKey, key)
	}
	if _, ok := dsk.entries[key]; ok {
		return curated.Errorf(DuplicateKey, key)
	}
	dsk.entries[key] = p
	return nil
}

// Remove a key from the list of bound values. The value itself is not changed.
func (dsk *Disk) Remove(key string) {
	delete(dsk.entries, key)
}

// Reset all bound values.
func (dsk *Disk) Reset() error {
	for _, k := range dsk.keys() {
		if err := dsk.entries[k].Reset(); err != nil {
			return curated.Errorf(DiskError, err)
		}
	}
	return nil
}

func (dsk *Disk) keys() []string {
	k := make([]string, 0, len(dsk.entries))
	for key := range dsk.entries {
		k = append(k, key)
	}
	sort.Strings(k)
	return k
}

// Save current bound values to disk. Entries in the file that are not bound
// to this Disk instance are preserved.
func (dsk *Disk) Save() (rerr error) {
	data, err := readFile(dsk.path)
	if err != nil && !curated.Is(err, NoPrefsFile) {
		return err
	}

	for k, v := range dsk.entries {
		data[k] = v.String()
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f, err := os.Create(dsk.path)
	if err != nil {
		return curated.Errorf(DiskError, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			rerr = curated.Errorf(DiskError, err)
		}
	}()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, WarningBoilerPlate)
	for _, k := range keys {
		fmt.Fprintf(w, "%s%s%s\n", k, KeySep, data[k])
	}
	if err := w.Flush(); err != nil {
		return curated.Errorf(DiskError, err)
	}

	return nil
}

// Load bound values from disk. Values that are missing from the file keep
// their current value. Values that cannot be set are logged and also keep
// their current value.
//
// If saveOnFail is true and the file does not exist then the current values
// are saved, creating the file. The NoPrefsFile error is still returned.
//
// Command line preferences (see PushCommandLineStack()) take priority over
// values in the file.
func (dsk *Disk) Load(saveOnFail bool) error {
	data, err := readFile(dsk.path)
	if err != nil {
		if curated.Is(err, NoPrefsFile) && saveOnFail {
			if serr := dsk.Save(); serr != nil {
				return serr
			}
		}
		dsk.applyCommandLine()
		return err
	}

	for _, k := range dsk.keys() {
		v, ok := data[k]
		if !ok {
			continue
		}
		if err := dsk.entries[k].Set(v); err != nil {
			logger.Logf(logger.Allow, "prefs", "%s: %v (keeping %s)", k, err, dsk.entries[k])
		}
	}

	dsk.applyCommandLine()

	return nil
}

// Has returns true if the key is present in the file on disk. The key need
// not be bound to this Disk instance.
func (dsk *Disk) Has(key string) bool {
	data, err := readFile(dsk.path)
	if err != nil {
		return false
	}
	_, ok := data[key]
	return ok
}

func (dsk *Disk) applyCommandLine() {
	for _, k := range dsk.keys() {
		if ok, v := GetCommandLinePref(k); ok {
			if err := dsk.entries[k].Set(v); err != nil {
				logger.Logf(logger.Allow, "prefs", "%s: %v (command line value ignored)", k, err)
			}
		}
	}
}

// readFile returns the key/value pairs in the file.
func readFile(path string) (map[string]string, error) {
	data := make(map[string]string)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return data, curated.Errorf(NoPrefsFile, path)
		}
		return data, curated.Errorf(DiskError, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	// the first line must be the warning boiler plate
	if !scanner.Scan() {
		return data, nil
	}
	if scanner.Text() != WarningBoilerPlate {
		return data, curated.Errorf(DiskError, fmt.Errorf("%s is not a preferences file", path))
	}

	for scanner.Scan() {
		k, v, ok := strings.Cut(scanner.Text(), KeySep)
		if !ok {
			continue
		}
		data[strings.TrimSpace(k)] = v
	}

	if err := scanner.Err(); err != nil {
		return data, curated.Errorf(DiskError, err)
	}

	return data, nil
}
