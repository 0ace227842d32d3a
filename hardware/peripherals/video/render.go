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

package video

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Text geometry.
const (
	Columns = 80
	Rows    = 25

	// bytes of video memory. each cell is a character and an attribute
	VRAMSize = Columns * Rows * 2
)

// Frame buffer geometry.
const (
	CellWidth  = 8
	CellHeight = 16

	Width  = Columns * CellWidth
	Height = Rows * CellHeight
)

// PaletteSize is the number of entries in the palette.
const PaletteSize = 16

// DefaultPalette is the palette a controller starts with.
var DefaultPalette = [PaletteSize]color.RGBA{
	{0x00, 0x00, 0x00, 0xff}, {0x00, 0x00, 0xaa, 0xff}, {0x00, 0xaa, 0x00, 0xff}, {0x00, 0xaa, 0xaa, 0xff},
	{0xaa, 0x00, 0x00, 0xff}, {0xaa, 0x00, 0xaa, 0xff}, {0xaa, 0x55, 0x00, 0xff}, {0xaa, 0xaa, 0xaa, 0xff},
	{0x55, 0x55, 0x55, 0xff}, {0x55, 0x55, 0xff, 0xff}, {0x55, 0xff, 0x55, 0xff}, {0x55, 0xff, 0xff, 0xff},
	{0xff, 0x55, 0x55, 0xff}, {0xff, 0x55, 0xff, 0xff}, {0xff, 0xff, 0x55, 0xff}, {0xff, 0xff, 0xff, 0xff},
}

// the vertical position of the glyph baseline in a cell
const baseline = 13

// renderer draws video memory into a frame buffer.
type renderer struct {
	frame   *image.RGBA
	palette [PaletteSize]color.RGBA
	face    font.Face

	// video memory as it was when the frame was last drawn
	shadow []uint8

	// redraw every cell on the next frame
	dirty bool
}

func newRenderer() *renderer {
	return &renderer{
		frame:   image.NewRGBA(image.Rect(0, 0, Width, Height)),
		palette: DefaultPalette,
		face:    basicfont.Face7x13,
		shadow:  make([]uint8, VRAMSize),
		dirty:   true,
	}
}

// render the cells that differ from the shadow copy.
func (r *renderer) render(vram []uint8) {
	for i := 0; i < len(vram); i += 2 {
		if !r.dirty && vram[i] == r.shadow[i] && vram[i+1] == r.shadow[i+1] {
			continue
		}
		cell := i / 2
		r.cell(cell%Columns, cell/Columns, vram[i], vram[i+1])
	}
	copy(r.shadow, vram)
	r.dirty = false
}

// blank the frame buffer. the next render will redraw every cell.
func (r *renderer) blank() {
	draw.Draw(r.frame, r.frame.Bounds(), image.NewUniform(color.RGBA{A: 0xff}), image.Point{}, draw.Src)
	r.dirty = true
}

func (r *renderer) cell(col, row int, ch uint8, attr uint8) {
	fg := r.palette[attr&0x0f]
	bg := r.palette[attr>>4]

	x := col * CellWidth
	y := row * CellHeight
	rect := image.Rect(x, y, x+CellWidth, y+CellHeight)
	draw.Draw(r.frame, rect, image.NewUniform(bg), image.Point{}, draw.Src)

	if ch <= ' ' {
		return
	}

	d := font.Drawer{
		Dst:  r.frame,
		Src:  image.NewUniform(fg),
		Face: r.face,
		Dot:  fixed.P(x, y+baseline),
	}
	d.DrawString(string(rune(ch)))
}

// copy of the frame buffer.
func (r *renderer) copyFrame() *image.RGBA {
	c := image.NewRGBA(r.frame.Bounds())
	copy(c.Pix, r.frame.Pix)
	return c
}
