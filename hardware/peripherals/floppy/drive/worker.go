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
	"sync"
	"time"

	"github.com/pcsim/pcsim/hardware/async"
	"github.com/pcsim/pcsim/hardware/controller"
	"github.com/pcsim/pcsim/logger"
	"github.com/pcsim/pcsim/notifications"
)

// request is a queued operation.
type request struct {
	op       async.Op
	cylinder uint8
	head     uint8
	sector   uint8
	count    uint8
	data     []uint8
	path     string
	done     func(async.Result)
}

// finishOnce wraps a completion handler so that it only runs the first time.
// the worker and StopWorker() can both try to complete a request.
func finishOnce(done func(async.Result)) func(async.Result) {
	var once sync.Once
	return func(r async.Result) {
		once.Do(func() { done(r) })
	}
}

// StartWorker starts the worker goroutine. Does nothing if the worker is
// already running.
func (d *Drive) StartWorker() {
	d.crit.Lock()
	defer d.crit.Unlock()

	if d.queue != nil {
		return
	}

	d.queue = make(chan request, queueLength)
	d.quit = make(chan struct{})
	d.done = make(chan struct{})

	go d.run(d.queue, d.quit, d.done)
}

// StopWorker stops the worker goroutine. The worker is given the
// hardware.worker.stoptimeout preference to finish what it is doing, after
// which it is abandoned. The request being executed and requests still in
// the queue complete with the Timeout status.
func (d *Drive) StopWorker() {
	d.crit.Lock()
	queue, quit, done := d.queue, d.quit, d.done
	d.queue = nil
	d.quit = nil
	d.done = nil
	d.crit.Unlock()

	if quit == nil {
		return
	}

	close(quit)

	timeout := d.env.Prefs.StopTimeout.Get().(time.Duration)
	select {
	case <-done:
	case <-time.After(timeout):
		logger.Logf(d.env, d.name, "worker abandoned after %s", timeout)
		d.crit.Lock()
		cur := d.current
		d.crit.Unlock()
		if cur != nil {
			d.expire(*cur)
		}
		d.expireQueue(queue)
	}
}

// expire completes the request with the Timeout status.
func (d *Drive) expire(req request) {
	logger.Logf(d.env, d.name, "%s timed out", req.op)
	req.done(d.result(req.op, controller.Timeout, 0))
}

// expireQueue completes every request waiting in the queue with the Timeout
// status. never blocks.
func (d *Drive) expireQueue(queue <-chan request) {
	for {
		select {
		case req := <-queue:
			d.expire(req)
		default:
			return
		}
	}
}

// WorkerRunning returns true if the worker goroutine has been started.
func (d *Drive) WorkerRunning() bool {
	d.crit.Lock()
	defer d.crit.Unlock()
	return d.queue != nil
}

// submit a request to the worker. the request is rejected with NotReady if
// the worker is not running or the queue is full. never blocks.
func (d *Drive) submit(req request) {
	d.crit.Lock()
	defer d.crit.Unlock()

	req.done = finishOnce(req.done)

	if d.queue == nil {
		req.done(d.result(req.op, controller.NotReady, 0))
		return
	}

	select {
	case d.queue <- req:
	default:
		logger.Logf(d.env, d.name, "%s rejected: queue full", req.op)
		req.done(d.result(req.op, controller.NotReady, 0))
	}
}

func (d *Drive) run(queue <-chan request, quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-quit:
			d.expireQueue(queue)
			return
		case req := <-queue:
			d.setCurrent(&req)
			r, ok := d.execute(req, quit)
			d.setCurrent(nil)
			if !ok {
				d.expire(req)
				d.expireQueue(queue)
				return
			}
			req.done(r)
		}
	}
}

func (d *Drive) setCurrent(req *request) {
	d.crit.Lock()
	defer d.crit.Unlock()
	d.current = req
}

// sleep for the scaled duration. returns false if quit was closed first.
func (d *Drive) sleep(cost time.Duration, quit <-chan struct{}) bool {
	t := d.env.Prefs.Delay(cost)
	if t <= 0 {
		select {
		case <-quit:
			return false
		default:
			return true
		}
	}

	tmr := time.NewTimer(t)
	defer tmr.Stop()

	select {
	case <-quit:
		return false
	case <-tmr.C:
		return true
	}
}

// execute a request on the worker goroutine. the drive state is checked
// again because it may have changed since the request was queued.
func (d *Drive) execute(req request, quit <-chan struct{}) (async.Result, bool) {
	switch req.op {
	case async.OpMotorOn:
		return d.motorOn(quit)
	case async.OpMotorOff:
		return d.motorOff(quit)
	case async.OpSeek:
		return d.seek(async.OpSeek, SeekInProgress, req.cylinder, quit)
	case async.OpCalibrate:
		return d.seek(async.OpCalibrate, CalibrateInProgress, 0, quit)
	case async.OpRead:
		return d.read(req, quit)
	case async.OpWrite:
		return d.write(req, quit)
	case async.OpMount:
		if err := d.insert(req.path); err != nil {
			logger.Log(d.env, d.name, err)
			return d.result(req.op, controller.DataError, 0), true
		}
		return d.result(req.op, controller.NoError, 0), true
	case async.OpUnmount:
		r, ok := d.motorOff(quit)
		if !ok {
			return r, false
		}
		d.eject()
		r = d.result(req.op, controller.NoError, r.Cost)
		return r, true
	}

	panic("drive: unhandled request " + req.op.String())
}

func (d *Drive) motorOn(quit <-chan struct{}) (async.Result, bool) {
	switch d.DriveState() {
	case NotMounted:
		return d.result(async.OpMotorOn, controller.NotReady, 0), true
	case Mounted:
	default:
		return d.result(async.OpMotorOn, controller.NoError, 0), true
	}

	cost := d.SpinUp.Get().(time.Duration)
	if !d.sleep(cost, quit) {
		return async.Result{}, false
	}

	d.state.Store(int32(Spinning))
	d.notify(notifications.NotifyMotorOn, "")

	return d.result(async.OpMotorOn, controller.NoError, cost), true
}

func (d *Drive) motorOff(quit <-chan struct{}) (async.Result, bool) {
	if !d.Spinning() {
		return d.result(async.OpMotorOff, controller.NoError, 0), true
	}

	cost := d.SpinDown.Get().(time.Duration)
	if !d.sleep(cost, quit) {
		return async.Result{}, false
	}

	d.state.Store(int32(Mounted))
	d.notify(notifications.NotifyMotorOff, "")

	return d.result(async.OpMotorOff, controller.NoError, cost), true
}

func (d *Drive) seek(op async.Op, busy State, cylinder uint8, quit <-chan struct{}) (async.Result, bool) {
	if !d.Spinning() {
		return d.result(op, controller.NotReady, 0), true
	}

	from := int(d.Cylinder())
	dist := int(cylinder) - from
	if dist < 0 {
		dist = -dist
	}
	cost := time.Duration(dist) * d.SeekDelay.Get().(time.Duration)

	d.state.Store(int32(busy))
	ok := d.sleep(cost, quit)
	d.state.Store(int32(Spinning))
	if !ok {
		return async.Result{}, false
	}

	d.cylinder.Store(int32(cylinder))

	return d.result(op, controller.NoError, cost), true
}

func (d *Drive) read(req request, quit <-chan struct{}) (async.Result, bool) {
	if !d.Spinning() {
		return d.result(req.op, controller.NotReady, 0), true
	}

	cost := time.Duration(req.count) * d.SectorDelay.Get().(time.Duration)

	d.state.Store(int32(ReadInProgress))
	ok := d.sleep(cost, quit)
	if !ok {
		d.state.Store(int32(Spinning))
		return async.Result{}, false
	}

	lba := LBA(int(d.Cylinder()), int(req.head), int(req.sector))

	d.imgCrit.Lock()
	var data []uint8
	var err error
	if d.img == nil {
		err = errNoImage(d.name)
	} else {
		data, err = d.img.read(lba, int(req.count))
	}
	d.imgCrit.Unlock()

	d.state.Store(int32(Spinning))

	if err != nil {
		logger.Log(d.env, d.name, err)
		return d.result(req.op, controller.DataError, cost), true
	}

	r := d.result(req.op, controller.NoError, cost)
	r.Data = data
	return r, true
}

func (d *Drive) write(req request, quit <-chan struct{}) (async.Result, bool) {
	if !d.Spinning() {
		return d.result(req.op, controller.NotReady, 0), true
	}

	cost := time.Duration(req.count) * d.SectorDelay.Get().(time.Duration)

	d.state.Store(int32(WriteInProgress))
	ok := d.sleep(cost, quit)
	if !ok {
		d.state.Store(int32(Spinning))
		return async.Result{}, false
	}

	lba := LBA(int(d.Cylinder()), int(req.head), int(req.sector))

	d.imgCrit.Lock()
	var err error
	if d.img == nil {
		err = errNoImage(d.name)
	} else {
		err = d.img.write(lba, req.data)
	}
	d.imgCrit.Unlock()

	d.state.Store(int32(Spinning))

	if err != nil {
		logger.Log(d.env, d.name, err)
		return d.result(req.op, controller.DataError, cost), true
	}

	return d.result(req.op, controller.NoError, cost), true
}
