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

package bus

// Address is the type of a bus address. I/O port addresses are 16 bits and
// memory addresses are 32 bits.
type Address interface {
	~uint16 | ~uint32
}

// Loader is the read half of LoadStore.
type Loader[A Address] interface {
	Read8(address A) uint8
	Read16(address A) uint16
	Read32(address A) uint32
	Read64(address A) uint64
}

// Storer is the write half of LoadStore.
type Storer[A Address] interface {
	Write8(address A, data uint8)
	Write16(address A, data uint16)
	Write32(address A, data uint32)
	Write64(address A, data uint64)
}

// LoadStore is implemented by both buses. A read of an unmapped address
// returns zero and a write to an unmapped address is ignored. Neither
// operation returns an error because open bus behaviour is not an error.
type LoadStore[A Address] interface {
	Loader[A]
	Storer[A]
}
