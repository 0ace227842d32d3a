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

import "fmt"

// State of the protocol.
type State int

// List of valid State values.
const (
	Ready State = iota
	AcceptingCommand
	ExecutingCommand
	ProvidingResult
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case AcceptingCommand:
		return "accepting command"
	case ExecutingCommand:
		return "executing command"
	case ProvidingResult:
		return "providing result"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type outcomeKind int

const (
	done outcomeKind = iota
	delayed
	pending
)

// Outcome of executing a command.
type Outcome struct {
	kind   outcomeKind
	ticks  int
	result []uint8
}

// Done indicates that the result is available immediately.
func Done(result ...uint8) Outcome {
	return Outcome{kind: done, result: result}
}

// Fail is a shorthand for a result consisting only of a status code.
func Fail(status uint8) Outcome {
	return Done(status)
}

// Delayed indicates that the result is available after the given number of
// clock ticks.
func Delayed(ticks int, result ...uint8) Outcome {
	if ticks <= 0 {
		return Done(result...)
	}
	return Outcome{kind: delayed, ticks: ticks, result: result}
}

// Pending indicates that the command has been handed to a worker. The result
// will be posted to the controller's mailbox by the function returned by
// Completion().
func Pending() Outcome {
	return Outcome{kind: pending}
}

// Command is an entry in a controller's opcode table.
type Command struct {
	Name string

	// Length returns the total length of the command, including the opcode,
	// given the bytes received so far. It is called after every byte. Most
	// commands have a fixed length (see Fixed()) but a command can decide its
	// length from its parameters.
	Length func(received []uint8) int

	// Execute the command. The slice contains the opcode and every parameter
	// and must not be retained. Called with the controller's lock held.
	Execute func(cmd []uint8) Outcome
}

// Fixed returns a Length function for a command of fixed length.
func Fixed(n int) func([]uint8) int {
	return func([]uint8) int {
		return n
	}
}

// Reserved returns a command that is recognised but not implemented. It
// always answers InvalidCommand.
func Reserved(name string, length int) Command {
	return Command{
		Name:   name,
		Length: Fixed(length),
		Execute: func([]uint8) Outcome {
			return Fail(InvalidCommand)
		},
	}
}
