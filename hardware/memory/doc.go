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

// Package memory implements the memory bus: an address space of sorted,
// non-overlapping mappings onto memory blocks.
//
// Blocks are either RAM or ROM, or any other type implementing the Block
// interface. The video controller, for example, maps its text buffer onto
// the memory bus as a block.
//
// Multi-byte accesses are little-endian and are composed a byte at a time,
// so an access may straddle two mappings or partly fall on unmapped
// addresses. Unmapped bytes read as zero and writes to them are ignored.
package memory
