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

package userinput

import (
	"os"
	"sync"

	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/logger"
	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// Sentinal errors.
const (
	TerminalError = "userinput: %v"
)

// Terminal forwards key presses from a terminal to a keyboard.
type Terminal struct {
	input *os.File

	canAttr unix.Termios
	rawAttr unix.Termios

	// closed when forwarding ends
	quit chan struct{}

	closeOnce sync.Once

	crit  sync.Mutex
	stats Stats
}

// NewTerminal is the preferred method of initialisation for the Terminal
// type. The terminal is put into raw mode and forwarding begins on a new
// goroutine. Close() must be called to restore the terminal.
func NewTerminal(input *os.File, kbd Keyboard) (*Terminal, error) {
	t := &Terminal{
		input: input,
		quit:  make(chan struct{}),
	}

	if err := termios.Tcgetattr(t.input.Fd(), &t.canAttr); err != nil {
		return nil, curated.Errorf(TerminalError, err)
	}
	t.rawAttr = t.canAttr
	termios.Cfmakeraw(&t.rawAttr)

	if err := termios.Tcsetattr(t.input.Fd(), termios.TCIFLUSH, &t.rawAttr); err != nil {
		return nil, curated.Errorf(TerminalError, err)
	}

	go func() {
		defer close(t.quit)

		var stats Stats
		_, err := Forward(t.input, kbd, &stats)
		if err != nil {
			logger.Log(logger.Allow, "userinput", err)
		}

		t.crit.Lock()
		t.stats = stats
		t.crit.Unlock()
	}()

	return t, nil
}

// Quit returns a channel that is closed when the quit key is pressed or the
// input ends.
func (t *Terminal) Quit() <-chan struct{} {
	return t.quit
}

// Stats returns the forwarding statistics. Only complete after forwarding
// has ended.
func (t *Terminal) Stats() Stats {
	t.crit.Lock()
	defer t.crit.Unlock()
	return t.stats
}

// Close restores the terminal to the mode it was in before NewTerminal() was
// called. The forwarding goroutine ends with the next byte read.
func (t *Terminal) Close() error {
	var err error
	t.closeOnce.Do(func() {
		err = termios.Tcsetattr(t.input.Fd(), termios.TCIFLUSH, &t.canAttr)
	})
	if err != nil {
		return curated.Errorf(TerminalError, err)
	}
	return nil
}
