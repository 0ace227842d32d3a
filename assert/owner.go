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

//go:build !assertions

package assert

// Owner records the goroutine that currently owns a resource. Without the
// "assertions" build tag it records nothing.
type Owner struct{}

// Claim makes the calling goroutine the owner.
func (o *Owner) Claim() {}

// Release clears the owner.
func (o *Owner) Release() {}

// Check panics if the resource is owned by a different goroutine.
func (o *Owner) Check(what string) {}
