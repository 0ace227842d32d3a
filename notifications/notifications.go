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

package notifications

// Notice describes an event that the front end may want to present.
type Notice string

// List of defined notifications.
const (
	// drive motor has changed state. detail is the drive name
	NotifyMotorOn  Notice = "NotifyMotorOn"
	NotifyMotorOff Notice = "NotifyMotorOff"

	// a disk image has been mounted or unmounted. detail is the drive name
	NotifyMount   Notice = "NotifyMount"
	NotifyUnmount Notice = "NotifyUnmount"

	// the video controller has regenerated its frame buffer. detail is the
	// controller name
	NotifyFrameReady Notice = "NotifyFrameReady"

	// a screenshot has been saved. detail is the filename
	NotifyScreenshot Notice = "NotifyScreenshot"

	// the keyboard controller has dropped a key because its host queue is
	// full. detail is the controller name
	NotifyKeyboardOverflow Notice = "NotifyKeyboardOverflow"
)

// Notify is implemented by the front end, or anything else wanting to
// receive notices.
type Notify interface {
	Notify(notice Notice, detail string) error
}

// Discard is a Notify implementation that ignores every notice.
var Discard Notify = discard{}

type discard struct{}

func (discard) Notify(Notice, string) error {
	return nil
}
