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

package hardware

import (
	"context"

	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/hardware/clocks"
	"github.com/pcsim/pcsim/hardware/lifecycle"
	"github.com/pcsim/pcsim/logger"
	"golang.org/x/sync/errgroup"
)

// run the clock and the processor on their own goroutines. if either
// goroutine returns an error the other is stopped.
func (app *Appliance) run() {
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)

	if app.env.Prefs.RealTime.Get().(bool) {
		app.lmtr = clocks.NewLimiter()
	}

	lmtr := app.lmtr
	g.Go(func() error {
		return app.Clock.Run(gctx, lmtr)
	})

	if app.cpu != nil {
		z := app.cpu
		g.Go(func() error {
			z.Run(gctx)
			return nil
		})
	}

	app.cancel = cancel
	app.group = g
	app.done = gctx.Done()

	logger.Logf(app.env, "appliance", "running at %s", app.Clock.Master())
}

// halt stops the goroutines started by run() and waits for them to end.
func (app *Appliance) halt() {
	if app.group == nil {
		return
	}

	app.cancel()
	err := app.group.Wait()
	if err != nil {
		logger.Log(app.env, "appliance", err)
	}
	app.setErr(err)

	if app.lmtr != nil {
		app.lmtr.Stop()
	}

	app.cancel = nil
	app.group = nil
	app.done = nil
	app.lmtr = nil
}

func (app *Appliance) setErr(err error) {
	app.errCrit.Lock()
	defer app.errCrit.Unlock()
	app.err = err
}

// Err returns the error that ended the most recent run, if any. The error is
// only available after the appliance has been stopped.
func (app *Appliance) Err() error {
	app.errCrit.Lock()
	defer app.errCrit.Unlock()
	return app.err
}

// Done returns a channel that is closed when the running goroutines end,
// either because the appliance has been stopped or because of an error. The
// channel is nil if the appliance is not running or is being stepped.
func (app *Appliance) Done() <-chan struct{} {
	return app.done
}

// Measured returns the measured master clock frequency. Returns zero if the
// clock is not being paced.
func (app *Appliance) Measured() float64 {
	if app.lmtr == nil {
		return 0
	}
	return app.lmtr.Measured.Load().(float64)
}

// Step advances the master clock by n cycles. The appliance must be running
// and stepped.
func (app *Appliance) Step(n int) error {
	if !app.IsRunning() {
		return curated.Errorf(lifecycle.InvalidTransition, "appliance", "step", app.State())
	}
	if !app.stepped {
		return curated.Errorf(NotStepped)
	}
	app.Clock.Step(n)
	return nil
}
