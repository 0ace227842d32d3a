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

// Package async is the hand-off between a device worker and the controller
// that owns it.
//
// A worker completes an operation on its own goroutine and posts a Result
// to the controller's Mailbox. The Mailbox has a single slot. The controller
// collects the result on the clock goroutine, during a clock tick, and that
// is the only way worker output becomes visible to the simulation.
//
// The controller has one operation outstanding at a time but a worker that
// was abandoned can still post late. When two results meet in the Mailbox
// the one with the higher sequence number is kept.
package async
