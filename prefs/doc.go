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

// Package prefs holds typed configuration values and the Disk type that
// binds them to keys in a preferences file.
//
// Each value type (Bool, String, Int, Float, Generic, and the emulator
// specific Frequency, Duration, Address, Base and Path types) can be set
// from a string, which is how values arrive from disk or from the command
// line. Values are stored atomically and are safe to read from the clock
// goroutine while the front end changes them.
//
// Disk files are plain text, one key/value pair per line separated by
// " :: ", preceded by a warning line:
//
//	*** do not edit this file by hand ***
//	device.fdc.base :: 03F0
//	device.fdc.frequency :: 1MHz
//	device.drive0.image :: $/boot.img
//
// A Path value beginning with the "$/" marker is relative to the directory
// containing the file it was loaded from.
//
// Keys not registered with a Disk are preserved when the file is saved so
// that several Disk instances can share a single file.
package prefs
