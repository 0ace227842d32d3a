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

package drive

import (
	"fmt"
	"io"
	"os"

	"github.com/pcsim/pcsim/curated"
)

// Disk geometry.
const (
	Cylinders       = 80
	Heads           = 2
	SectorsPerTrack = 18
	SectorSize      = 512

	ImageSize = Cylinders * Heads * SectorsPerTrack * SectorSize
)

// Sentinal errors.
const (
	WrongImageSize = "drive: %s: image is %d bytes, expected %d"
	ImageError     = "drive: %s: %v"
	NoImage        = "drive: %s: no image mounted"
)

// LBA returns the logical block address of a sector.
func LBA(cylinder, head, sector int) int {
	return (cylinder*Heads+head)*SectorsPerTrack + sector
}

// image is an open backing file.
type image struct {
	path string
	f    *os.File
}

func openImage(path string) (*image, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, curated.Errorf(ImageError, path, err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, curated.Errorf(ImageError, path, err)
	}

	if st.Size() != ImageSize {
		f.Close()
		return nil, curated.Errorf(WrongImageSize, path, st.Size(), ImageSize)
	}

	return &image{path: path, f: f}, nil
}

func (img *image) String() string {
	return img.path
}

func (img *image) close() error {
	return img.f.Close()
}

func (img *image) read(lba int, count int) ([]uint8, error) {
	data := make([]uint8, count*SectorSize)
	n, err := img.f.ReadAt(data, int64(lba*SectorSize))
	if err != nil && !(err == io.EOF && n == len(data)) {
		return nil, curated.Errorf(ImageError, img.path, err)
	}
	return data, nil
}

func (img *image) write(lba int, data []uint8) error {
	_, err := img.f.WriteAt(data, int64(lba*SectorSize))
	if err != nil {
		return curated.Errorf(ImageError, img.path, err)
	}
	return nil
}

// CreateImage writes a blank image file at the path. An existing file is
// truncated.
func CreateImage(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return curated.Errorf(ImageError, path, err)
	}
	defer f.Close()

	if err := f.Truncate(ImageSize); err != nil {
		return curated.Errorf(ImageError, path, err)
	}
	return nil
}

func describeImage(img *image) string {
	if img == nil {
		return "no image"
	}
	return fmt.Sprintf("image %s", img)
}

func errNoImage(name string) error {
	return curated.Errorf(NoImage, name)
}
