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

// Package notifications allow devices to tell the front end about events
// that change the presentation of the emulation: a drive motor starting, an
// image being mounted, a new video frame being ready.
//
// Notifications are sent from whichever goroutine the event happens on,
// which may be a drive worker or the clock goroutine. Implementations of
// Notify must not block and must not call back into the device.
package notifications
