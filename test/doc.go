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

// Package test contains helper functions to remove common boilerplate from
// package tests.
//
// The Expect functions report a failure and allow the test to continue. The
// Demand functions stop the test. Both accept optional tags which are
// prefixed to the failure message, useful when the check is inside a loop.
//
// ExpectSuccess() and ExpectFailure() interpret their argument by type. A
// bool is a success when true. An error is a success when nil. An untyped
// nil is a success.
//
// RingWriter keeps the tail of everything written to it. Tests use it to
// capture echoed log output.
package test
