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

package memory

// Block is a contiguous area of memory that can be mapped onto the bus.
// Offsets passed to Load() and Store() are relative to the start of the
// block and are always less than Size().
type Block interface {
	Size() uint32
	Load(offset uint32) uint8
	Store(offset uint32, data uint8)
}

// RAM is a read/write block.
type RAM struct {
	data []uint8
}

// NewRAM is the preferred method of initialisation for the RAM type.
func NewRAM(size uint32) *RAM {
	return &RAM{data: make([]uint8, size)}
}

// Size implements the Block interface.
func (r *RAM) Size() uint32 {
	return uint32(len(r.data))
}

// Load implements the Block interface.
func (r *RAM) Load(offset uint32) uint8 {
	return r.data[offset]
}

// Store implements the Block interface.
func (r *RAM) Store(offset uint32, data uint8) {
	r.data[offset] = data
}

// ROM is a read-only block. Stores are ignored.
type ROM struct {
	data []uint8
}

// NewROM is the preferred method of initialisation for the ROM type. The data
// is copied.
func NewROM(data []uint8) *ROM {
	r := &ROM{data: make([]uint8, len(data))}
	copy(r.data, data)
	return r
}

// Size implements the Block interface.
func (r *ROM) Size() uint32 {
	return uint32(len(r.data))
}

// Load implements the Block interface.
func (r *ROM) Load(offset uint32) uint8 {
	return r.data[offset]
}

// Store implements the Block interface.
func (r *ROM) Store(offset uint32, data uint8) {
}
