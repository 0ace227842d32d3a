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

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/hardware/memory/bus"
)

// Sentinal errors.
const (
	Overlap    = "memory: mapping at %#08x overlaps mapping at %#08x"
	EmptyBlock = "memory: cannot map empty block at %#08x"
	OutOfRange = "memory: mapping at %#08x extends beyond the address space"
	NotMapped  = "memory: no mapping at %#08x"
)

type mapping struct {
	base  uint32
	block Block
}

// end returns the address one past the end of the mapping. A mapping may end
// exactly at the top of the address space so the result is 64 bit.
func (m mapping) end() uint64 {
	return uint64(m.base) + uint64(m.block.Size())
}

// Bus is the memory bus. It is safe for concurrent use.
type Bus struct {
	crit sync.RWMutex

	// sorted by base address. mappings never overlap.
	mappings []mapping
}

// NewBus is the preferred method of initialisation for the Bus type.
func NewBus() *Bus {
	return &Bus{}
}

// Bus implements the bus.LoadStore interface.
var _ bus.LoadStore[uint32] = (*Bus)(nil)

// Map a block onto the bus at the base address. Fails if the block would
// overlap an existing mapping.
func (b *Bus) Map(base uint32, blk Block) error {
	if blk.Size() == 0 {
		return curated.Errorf(EmptyBlock, base)
	}

	m := mapping{base: base, block: blk}
	if m.end() > 1<<32 {
		return curated.Errorf(OutOfRange, base)
	}

	b.crit.Lock()
	defer b.crit.Unlock()

	// index of the first mapping starting after the new base
	i := sort.Search(len(b.mappings), func(i int) bool {
		return b.mappings[i].base > base
	})

	if i > 0 && b.mappings[i-1].end() > uint64(base) {
		return curated.Errorf(Overlap, base, b.mappings[i-1].base)
	}
	if i < len(b.mappings) && uint64(b.mappings[i].base) < m.end() {
		return curated.Errorf(Overlap, base, b.mappings[i].base)
	}

	b.mappings = append(b.mappings, mapping{})
	copy(b.mappings[i+1:], b.mappings[i:])
	b.mappings[i] = m

	return nil
}

// Unmap the block mapped at base.
func (b *Bus) Unmap(base uint32) error {
	b.crit.Lock()
	defer b.crit.Unlock()

	i := sort.Search(len(b.mappings), func(i int) bool {
		return b.mappings[i].base >= base
	})
	if i >= len(b.mappings) || b.mappings[i].base != base {
		return curated.Errorf(NotMapped, base)
	}

	b.mappings = append(b.mappings[:i], b.mappings[i+1:]...)
	return nil
}

// find the mapping containing the address. must be called with the critical
// section held.
func (b *Bus) find(address uint32) (mapping, bool) {
	i := sort.Search(len(b.mappings), func(i int) bool {
		return b.mappings[i].base > address
	})
	if i == 0 {
		return mapping{}, false
	}
	m := b.mappings[i-1]
	if uint64(address) >= m.end() {
		return mapping{}, false
	}
	return m, true
}

func (b *Bus) load(address uint32) uint8 {
	if m, ok := b.find(address); ok {
		return m.block.Load(address - m.base)
	}
	return 0
}

func (b *Bus) store(address uint32, data uint8) {
	if m, ok := b.find(address); ok {
		m.block.Store(address-m.base, data)
	}
}

func (b *Bus) read(address uint32, n int) uint64 {
	b.crit.RLock()
	defer b.crit.RUnlock()

	var v uint64
	for i := 0; i < n; i++ {
		v |= uint64(b.load(address+uint32(i))) << (8 * i)
	}
	return v
}

func (b *Bus) write(address uint32, data uint64, n int) {
	b.crit.Lock()
	defer b.crit.Unlock()

	for i := 0; i < n; i++ {
		b.store(address+uint32(i), uint8(data>>(8*i)))
	}
}

// Read8 implements the bus.LoadStore interface.
func (b *Bus) Read8(address uint32) uint8 {
	return uint8(b.read(address, 1))
}

// Read16 implements the bus.LoadStore interface.
func (b *Bus) Read16(address uint32) uint16 {
	return uint16(b.read(address, 2))
}

// Read32 implements the bus.LoadStore interface.
func (b *Bus) Read32(address uint32) uint32 {
	return uint32(b.read(address, 4))
}

// Read64 implements the bus.LoadStore interface.
func (b *Bus) Read64(address uint32) uint64 {
	return b.read(address, 8)
}

// Write8 implements the bus.LoadStore interface.
func (b *Bus) Write8(address uint32, data uint8) {
	b.write(address, uint64(data), 1)
}

// Write16 implements the bus.LoadStore interface.
func (b *Bus) Write16(address uint32, data uint16) {
	b.write(address, uint64(data), 2)
}

// Write32 implements the bus.LoadStore interface.
func (b *Bus) Write32(address uint32, data uint32) {
	b.write(address, uint64(data), 4)
}

// Write64 implements the bus.LoadStore interface.
func (b *Bus) Write64(address uint32, data uint64) {
	b.write(address, data, 8)
}

// Load copies data from the bus into p, starting at address. Unmapped bytes
// are zero.
func (b *Bus) Load(address uint32, p []uint8) {
	b.crit.RLock()
	defer b.crit.RUnlock()
	for i := range p {
		p[i] = b.load(address + uint32(i))
	}
}

// Store copies p onto the bus, starting at address.
func (b *Bus) Store(address uint32, p []uint8) {
	b.crit.Lock()
	defer b.crit.Unlock()
	for i := range p {
		b.store(address+uint32(i), p[i])
	}
}

// Mappings returns the number of mappings on the bus.
func (b *Bus) Mappings() int {
	b.crit.RLock()
	defer b.crit.RUnlock()
	return len(b.mappings)
}

func (b *Bus) String() string {
	b.crit.RLock()
	defer b.crit.RUnlock()

	s := strings.Builder{}
	for _, m := range b.mappings {
		s.WriteString(fmt.Sprintf("%08x-%08x %T\n", m.base, m.end()-1, m.block))
	}
	return s.String()
}

// WriteMap writes a description of the memory map to w.
func (b *Bus) WriteMap(w io.Writer) {
	io.WriteString(w, b.String())
}
