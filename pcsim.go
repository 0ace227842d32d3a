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
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/environment"
	"github.com/pcsim/pcsim/hardware"
	"github.com/pcsim/pcsim/hardware/peripherals/floppy/drive"
	"github.com/pcsim/pcsim/hardware/peripherals/keyboard"
	"github.com/pcsim/pcsim/hardware/peripherals/video"
	"github.com/pcsim/pcsim/logger"
	"github.com/pcsim/pcsim/notifications"
	"github.com/pcsim/pcsim/paths"
	"github.com/pcsim/pcsim/prefs"
	"github.com/pcsim/pcsim/scripting"
	"github.com/pcsim/pcsim/statsview"
	"github.com/pcsim/pcsim/userinput"
	"github.com/pcsim/pcsim/version"
	"golang.org/x/term"
)

// Globals are the options that apply to every command.
type Globals struct {
	Set     []string `name:"set" short:"s" help:"Override a project value with key::value. Can be repeated."`
	EchoLog bool     `name:"echolog" help:"Echo log entries to stderr."`
}

type cli struct {
	Globals

	Run     runCmd     `cmd:"" help:"Run a project."`
	Script  scriptCmd  `cmd:"" help:"Run a Lua script against a stepped project."`
	New     newCmd     `cmd:"" help:"Create a project file."`
	Image   imageCmd   `cmd:"" help:"Create a blank floppy disk image."`
	Memviz  memvizCmd  `cmd:"" help:"Write a graph of a connected project in the dot language."`
	Kinds   kindsCmd   `cmd:"" help:"List the kinds of device that can be used in a project."`
	Version versionCmd `cmd:"" help:"Print version information."`
}

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.Name(version.ApplicationName),
		kong.Description("A cycle driven emulator of a small computer and its peripherals."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&c.Globals)
	logTail(os.Stderr, err)
	ctx.FatalIfErrorf(err)
}

// number of log entries shown with an unexpected error.
const tailLength = 10

// logTail writes the most recent log entries if err did not originate in
// pcsim. Curated errors are complete on their own.
func logTail(output io.Writer, err error) {
	if err == nil || curated.IsAny(err) {
		return
	}
	fmt.Fprintln(output, "recent log entries:")
	logger.Tail(output, tailLength)
}

// notices from devices are added to the log.
type logNotify struct{}

func (logNotify) Notify(notice notifications.Notice, detail string) error {
	logger.Logf(logger.Allow, "notice", "%s: %s", notice, detail)
	return nil
}

// newEnvironment creates the environment for the main emulation.
func (g *Globals) newEnvironment() (*environment.Environment, error) {
	env, err := environment.NewEnvironment(environment.MainEmulation, logNotify{}, nil)
	if err != nil {
		return nil, err
	}
	if g.EchoLog || env.Prefs.EchoLog.Get().(bool) {
		logger.SetEcho(os.Stderr, true)
	}
	return env, nil
}

// load creates an appliance from the project file. The values given with
// the --set option take priority over the values in the file.
func (g *Globals) load(project string) (*hardware.Appliance, error) {
	env, err := g.newEnvironment()
	if err != nil {
		return nil, err
	}

	prefs.PushCommandLineStack(strings.Join(g.Set, ";"))
	defer func() {
		if unused := prefs.PopCommandLineStack(); unused != "" {
			logger.Logf(logger.Allow, version.ApplicationName, "unused --set values: %s", unused)
		}
	}()

	app := hardware.NewAppliance(env, hardware.NewRegistry())
	if err := app.Load(project); err != nil {
		return nil, err
	}

	return app, nil
}

// start connects, initialises and starts the appliance.
func start(app *hardware.Appliance) error {
	if err := app.Connect(); err != nil {
		return err
	}
	if err := app.Initialise(); err != nil {
		_ = app.Disconnect()
		return err
	}
	if err := app.Start(); err != nil {
		_ = app.Deinitialise()
		_ = app.Disconnect()
		return err
	}
	return nil
}

// shutdown stops, deinitialises and disconnects the appliance.
func shutdown(app *hardware.Appliance) {
	for _, f := range []func() error{app.Stop, app.Deinitialise, app.Disconnect} {
		if err := f(); err != nil {
			logger.Log(logger.Allow, version.ApplicationName, err)
		}
	}
}

type runCmd struct {
	Project    string        `arg:"" type:"existingfile" help:"The project file."`
	Duration   time.Duration `name:"duration" help:"Stop after the duration. Zero means run until interrupted."`
	Screenshot bool          `name:"screenshot" help:"Save the display of the first video controller to a PNG file when stopping."`
	ShotFile   string        `name:"screenshot-file" placeholder:"PATH" help:"File for the screenshot. Defaults to a unique name in the screenshots resource directory."`
	Statsview  bool          `name:"statsview" help:"Launch the runtime statistics server."`
	StatsRate  time.Duration `name:"statsview-interval" default:"1s" help:"Sampling interval of the statistics server."`
}

// screenshotPath returns the file the screenshot should be written to. An
// empty file gives a unique name in the screenshots resource directory.
func screenshotPath(project string, file string) (string, error) {
	if file != "" {
		return file, nil
	}
	name := strings.TrimSuffix(filepath.Base(project), filepath.Ext(project))
	return paths.ResourcePath("screenshots", paths.UniqueFilename("screenshot", name)+".png")
}

func (r *runCmd) Run(g *Globals) error {
	if r.Statsview {
		if statsview.Available() {
			defer statsview.Launch(os.Stdout, r.StatsRate).Stop()
		} else {
			fmt.Fprintln(os.Stderr, "statsview is not available in this build")
		}
	}

	app, err := g.load(r.Project)
	if err != nil {
		return err
	}
	if err := start(app); err != nil {
		return err
	}

	// the terminal is only used if there is a keyboard controller to send
	// the key presses to
	var quit <-chan struct{}
	if kbd := firstDevice[*keyboard.Keyboard](app); kbd != nil && term.IsTerminal(int(os.Stdin.Fd())) {
		t, err := userinput.NewTerminal(os.Stdin, kbd)
		if err != nil {
			logger.Log(logger.Allow, version.ApplicationName, err)
		} else {
			defer t.Close()
			quit = t.Quit()
			fmt.Fprintf(os.Stderr, "forwarding key presses to %s. press Ctrl-] to stop\r\n", kbd.Name())
		}
	}

	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)
	defer signal.Stop(intChan)

	var timeout <-chan time.Time
	if r.Duration > 0 {
		timeout = time.After(r.Duration)
	}

	select {
	case <-app.Done():
	case <-quit:
	case <-intChan:
	case <-timeout:
	}

	var shotErr error
	if r.Screenshot || r.ShotFile != "" {
		if vid := firstDevice[*video.Video](app); vid != nil {
			var pth string
			pth, shotErr = screenshotPath(r.Project, r.ShotFile)
			if shotErr == nil {
				shotErr = vid.SavePNG(pth)
			}
		} else {
			shotErr = curated.Errorf("screenshot: project has no video controller")
		}
	}

	shutdown(app)

	if err := app.Err(); err != nil {
		return err
	}
	return shotErr
}

// firstDevice returns the first device in the appliance of type T.
func firstDevice[T any](app *hardware.Appliance) T {
	for _, d := range app.Devices() {
		if t, ok := d.(T); ok {
			return t
		}
	}
	var zero T
	return zero
}

type scriptCmd struct {
	Project string `arg:"" type:"existingfile" help:"The project file."`
	Script  string `arg:"" type:"existingfile" help:"The Lua script."`
}

func (s *scriptCmd) Run(g *Globals) error {
	app, err := g.load(s.Project)
	if err != nil {
		return err
	}
	if err := app.SetStepped(true); err != nil {
		return err
	}
	if err := start(app); err != nil {
		return err
	}
	defer shutdown(app)

	scr := scripting.NewScript(app)
	defer scr.Close()

	return scr.RunFile(s.Script)
}

type newCmd struct {
	Project string   `arg:"" help:"The project file to create."`
	Devices []string `arg:"" optional:"" help:"Devices to add, as kind:name pairs."`
	Force   bool     `name:"force" help:"Overwrite an existing project file."`
}

func (n *newCmd) Run(g *Globals) error {
	if _, err := os.Stat(n.Project); err == nil && !n.Force {
		return curated.Errorf("new: %s already exists", n.Project)
	}

	env, err := g.newEnvironment()
	if err != nil {
		return err
	}

	app := hardware.NewAppliance(env, hardware.NewRegistry())
	for _, d := range n.Devices {
		kind, name, ok := strings.Cut(d, ":")
		if !ok {
			name = kind
		}
		if _, err := app.AddDevice(kind, name); err != nil {
			return err
		}
	}

	return app.Save(n.Project)
}

type imageCmd struct {
	Path string `arg:"" help:"The image file to create."`
}

func (i *imageCmd) Run() error {
	return drive.CreateImage(i.Path)
}

type memvizCmd struct {
	Project string `arg:"" type:"existingfile" help:"The project file."`
	Output  string `arg:"" default:"-" help:"The output file. Standard output if omitted."`
}

func (m *memvizCmd) Run(g *Globals) (rerr error) {
	app, err := g.load(m.Project)
	if err != nil {
		return err
	}
	if err := app.Connect(); err != nil {
		return err
	}
	defer func() {
		if err := app.Disconnect(); err != nil && rerr == nil {
			rerr = err
		}
	}()

	var w io.Writer = os.Stdout
	if m.Output != "-" {
		f, err := os.Create(m.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	app.Memviz(w)

	return nil
}

type kindsCmd struct{}

func (kindsCmd) Run() error {
	for _, k := range hardware.NewRegistry().Kinds() {
		fmt.Println(k)
	}
	return nil
}

type versionCmd struct{}

func (versionCmd) Run() error {
	fmt.Println(version.String())
	return nil
}
