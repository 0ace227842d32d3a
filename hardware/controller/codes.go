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

package controller

// Status codes. The first byte of every result is a status code.
const (
	NoError          uint8 = 0x00
	InvalidCommand   uint8 = 0x01
	NotReady         uint8 = 0x02
	InvalidParameter uint8 = 0x03
	SeekError        uint8 = 0x04
	InvalidCylinder  uint8 = 0x05
	DataError        uint8 = 0x06
	Timeout          uint8 = 0x07
)

// StatusName returns a name for the status code.
func StatusName(code uint8) string {
	switch code {
	case NoError:
		return "no error"
	case InvalidCommand:
		return "invalid command"
	case NotReady:
		return "not ready"
	case InvalidParameter:
		return "invalid parameter"
	case SeekError:
		return "seek error"
	case InvalidCylinder:
		return "invalid cylinder"
	case DataError:
		return "data error"
	case Timeout:
		return "timeout"
	}
	return "unknown"
}

// Status port bits. The low nibble is device specific.
const (
	StatusPresent     uint8 = 0x80
	StatusBusy        uint8 = 0x40
	StatusInputReady  uint8 = 0x20
	StatusOutputReady uint8 = 0x10
	StatusDevice      uint8 = 0x0f
)

// Interrupt conditions. These are also the bits of the interrupt mask and
// the code of the interrupt raised on the status port.
const (
	CondOutputReady     uint8 = 0x01
	CondCommandComplete uint8 = 0x02
	CondInputReady      uint8 = 0x04
	CondDevice          uint8 = 0x08
)

// Port offsets from the base address.
const (
	PortStatus  = 0
	PortCommand = 1
	PortData    = 2
	PortMask    = 3

	NumPorts = 4
)
