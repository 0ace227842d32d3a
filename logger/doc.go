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

// Package logger is the central log for the emulator. Devices, workers and
// the appliance all write to it. There is one central log for the program
// but independent Logger instances can be created for testing.
//
// Every log call takes a Permission. An environment that should not be
// allowed to log (for example, a secondary emulation used for comparison)
// can refuse the request by returning false from AllowLogging(). The Allow
// value should be used when there is no environment to hand. Deny silences a
// caller completely and PermissionFunc turns a closure into a Permission.
//
// Repeated entries are collapsed into a single entry with a repeat count.
// This is important for the emulator because a misbehaving guest program
// can cause the same condition to be logged on every clock tick.
package logger
