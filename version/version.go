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

// Package version reports the version of the program. The version number is
// set by the linker when building a release:
//
//	go build -ldflags "-X github.com/pcsim/pcsim/version.number=v0.1.0"
//
// Otherwise the version is derived from the build information embedded by
// the Go toolchain.
package version

import (
	"fmt"
	"runtime/debug"
)

// ApplicationName is the name to use when referring to the program.
const ApplicationName = "pcsim"

// set by the linker for release builds
var number string

var (
	version  string
	revision string
)

// Version returns the version string, the revision string and whether this
// is a numbered release.
//
// A version of "unreleased" means the program was built from a repository
// without a version number. A version of "local" means there is no version
// number and no repository information, which happens with "go run".
func Version() (string, string, bool) {
	return version, revision, number != "" && version == number
}

// String returns a single line description of the version.
func String() string {
	v, r, release := Version()
	if release {
		return fmt.Sprintf("%s %s", ApplicationName, v)
	}
	return fmt.Sprintf("%s %s (%s)", ApplicationName, v, r)
}

func init() {
	version, revision = describe(number, readSettings())
}

// the build settings of interest
type settings struct {
	vcs      bool
	revision string
	modified bool
}

func readSettings() settings {
	var s settings

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return s
	}

	for _, v := range info.Settings {
		switch v.Key {
		case "vcs":
			s.vcs = true
		case "vcs.revision":
			s.revision = v.Value
		case "vcs.modified":
			s.modified = v.Value == "true"
		}
	}

	return s
}

func describe(number string, s settings) (string, string) {
	rev := "no revision information"
	if s.revision != "" {
		rev = s.revision
		if s.modified {
			rev += "+dirty"
		}
	}

	switch {
	case number != "":
		return number, rev
	case s.vcs:
		return "unreleased", rev
	}
	return "local", rev
}
