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

package paths_test

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/pcsim/pcsim/paths"
	"github.com/pcsim/pcsim/test"
)

func TestResourcePath(t *testing.T) {
	// run in a directory with a local resource path so that the test does not
	// touch the user's config directory
	wd, err := os.Getwd()
	test.DemandSuccess(t, err)
	defer os.Chdir(wd)

	dir := t.TempDir()
	test.DemandSuccess(t, os.Chdir(dir))
	test.DemandSuccess(t, os.Mkdir(".pcsim", 0o700))

	pth, err := paths.ResourcePath("nvram", "rtc.bin")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pth, filepath.Join(".pcsim", "nvram", "rtc.bin"))

	// sub-directory has been created
	_, err = os.Stat(filepath.Join(".pcsim", "nvram"))
	test.ExpectSuccess(t, err)

	pth, err = paths.ResourcePath("", "preferences")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pth, filepath.Join(".pcsim", "preferences"))
}

func TestUniqueFilename(t *testing.T) {
	m := regexp.MustCompile(`^frame_video_\d{8}_\d{6}$`)
	test.ExpectSuccess(t, m.MatchString(paths.UniqueFilename("frame", "video")))

	m = regexp.MustCompile(`^beeper_\d{8}_\d{6}$`)
	test.ExpectSuccess(t, m.MatchString(paths.UniqueFilename("beeper", " ")))
}
