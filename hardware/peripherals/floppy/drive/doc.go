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

// Package drive implements a floppy drive. Each drive has a worker goroutine
// that performs the slow physical operations (spin up, seek, sector transfer)
// in the order they were requested.
//
// Requests are made with the Begin functions. A Begin function never blocks.
// Parameters and the drive state are checked before the request is queued
// and a request that fails the checks is completed immediately, on the
// caller's goroutine, with a status code. A request that passes the checks
// is completed on the worker's goroutine. Either way the completion function
// receives an async.Result.
//
// Every result carries the simulated time the operation took. The worker
// sleeps for that time, scaled by the hardware.worker.delayscale preference,
// but the controller uses the unscaled cost to decide when the result
// becomes visible. Simulated timing does not depend on how quickly the
// worker ran.
//
// The backing image is a flat file of exactly ImageSize bytes. The image is
// guarded by its own lock. Mount() and Unmount() are refused while the
// worker is running; BeginMount() and BeginUnmount() go through the queue.
//
// Stopping the worker completes the request it was executing, and any
// request still queued, with the Timeout status so that the controller
// waiting for the result is never left busy.
package drive
