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

//go:build !statsview

package statsview

import (
	"io"
	"time"
)

// Address of the server.
const Address = ""

// Server is a running statistics server. A nil Server can be stopped.
type Server struct{}

// Launch does nothing without the statsview build tag.
func Launch(_ io.Writer, _ time.Duration) *Server {
	return nil
}

// Stop shuts the server down.
func (srv *Server) Stop() {
}

// Available returns true if the server can be launched.
func Available() bool {
	return false
}
