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

// Package video implements a text mode video controller. Video memory is an
// 80x25 array of cells mapped onto the memory bus. Each cell is two bytes: a
// character code and an attribute. The low nibble of the attribute selects
// the foreground colour and the high nibble the background colour from a
// sixteen entry palette.
//
// Once per frame the controller regenerates its 640x400 frame buffer from
// video memory and signals the device specific interrupt condition. Only
// cells that have changed since the previous frame are redrawn. The frame
// buffer is available to a front end with Frame() and can be saved as a PNG
// file with SavePNG().
//
// The controller also has a small teletype interface for guests that would
// rather not write to video memory directly.
package video
