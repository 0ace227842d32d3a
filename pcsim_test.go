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

package main

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/hardware/peripherals/floppy/drive"
	"github.com/pcsim/pcsim/logger"
	"github.com/pcsim/pcsim/test"
)

func parse(t *testing.T, args ...string) (*cli, *kong.Context) {
	t.Helper()
	var c cli
	parser, err := kong.New(&c, kong.Name("pcsim"))
	test.DemandSuccess(t, err)
	ctx, err := parser.Parse(args)
	test.DemandSuccess(t, err)
	return &c, ctx
}

func TestParseRun(t *testing.T) {
	project := filepath.Join(t.TempDir(), "machine.pcsim")
	test.DemandSuccess(t, os.WriteFile(project, nil, 0o644))

	c, ctx := parse(t, "--set", "appliance.ram::4096", "-s", "rtc.address::0x80",
		"run", project, "--duration", "2s", "--screenshot")
	test.ExpectEquality(t, ctx.Command(), "run <project>")
	test.ExpectEquality(t, c.Run.Project, project)
	test.ExpectEquality(t, c.Run.Duration, 2*time.Second)
	test.ExpectSuccess(t, c.Run.Screenshot)
	test.ExpectEquality(t, c.Run.ShotFile, "")
	test.ExpectEquality(t, len(c.Set), 2)
	test.ExpectEquality(t, c.Set[1], "rtc.address::0x80")
	test.ExpectFailure(t, c.EchoLog)
}

func TestParseNew(t *testing.T) {
	c, _ := parse(t, "new", "machine.pcsim", "rtc:clock", "fdc:fdc0", "--force")
	test.ExpectEquality(t, c.New.Project, "machine.pcsim")
	test.DemandEquality(t, len(c.New.Devices), 2)
	test.ExpectEquality(t, c.New.Devices[0], "rtc:clock")
	test.ExpectEquality(t, c.New.Devices[1], "fdc:fdc0")
	test.ExpectSuccess(t, c.New.Force)
}

func TestParseMemvizDefault(t *testing.T) {
	project := filepath.Join(t.TempDir(), "machine.pcsim")
	test.DemandSuccess(t, os.WriteFile(project, nil, 0o644))

	c, _ := parse(t, "memviz", project)
	test.ExpectEquality(t, c.Memviz.Output, "-")
}

func TestImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blank.img")
	cmd := imageCmd{Path: path}
	test.DemandSuccess(t, cmd.Run())

	st, err := os.Stat(path)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, st.Size(), int64(drive.ImageSize))
}

func TestScreenshotPath(t *testing.T) {
	pth, err := screenshotPath("machine.pcsim", "shot.png")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pth, "shot.png")

	// keep the resource directory local to the test
	wd, err := os.Getwd()
	test.DemandSuccess(t, err)
	defer os.Chdir(wd)
	test.DemandSuccess(t, os.Chdir(t.TempDir()))
	test.DemandSuccess(t, os.Mkdir(".pcsim", 0o700))

	pth, err = screenshotPath(filepath.Join("projects", "machine.pcsim"), "")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, filepath.Dir(pth), filepath.Join(".pcsim", "screenshots"))
	m := regexp.MustCompile(`^screenshot_machine_\d{8}_\d{6}\.png$`)
	test.ExpectSuccess(t, m.MatchString(filepath.Base(pth)))
}

func TestLogTail(t *testing.T) {
	logger.Clear()
	defer logger.Clear()
	logger.Log(logger.Allow, "fdc", "seek error")

	w := &strings.Builder{}
	logTail(w, nil)
	test.ExpectEquality(t, w.String(), "")

	logTail(w, curated.Errorf("appliance: %v", "no project"))
	test.ExpectEquality(t, w.String(), "")

	logTail(w, errors.New("unexpected"))
	test.ExpectEquality(t, w.String(), "recent log entries:\nfdc: seek error\n")
}
