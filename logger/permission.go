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

package logger

// Permission is consulted before a log entry is created.
type Permission interface {
	AllowLogging() bool
}

// constant permissions are comparable so that Log() can skip the interface
// call for Allow.
type constant bool

func (c constant) AllowLogging() bool {
	return bool(c)
}

var (
	// Allow always permits the log entry.
	Allow Permission = constant(true)

	// Deny never permits the log entry.
	Deny Permission = constant(false)
)

// PermissionFunc adapts an ordinary function to the Permission interface.
type PermissionFunc func() bool

func (f PermissionFunc) AllowLogging() bool {
	return f()
}
