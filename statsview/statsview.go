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

//go:build statsview

package statsview

import (
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// Address of the server.
const Address = "localhost:12600"

const url = "/debug/statsview"

// Server is a running statistics server. A nil Server can be stopped.
type Server struct {
	mgr *statsview.ViewManager
}

// Launch the server on a new goroutine, sampling the runtime at the given
// interval. The address of the server is written to output.
func Launch(output io.Writer, interval time.Duration) *Server {
	viewer.SetConfiguration(
		viewer.WithAddr(Address),
		viewer.WithInterval(int(interval.Milliseconds())),
	)

	srv := &Server{mgr: statsview.New()}
	go srv.mgr.Start()

	fmt.Fprintf(output, "stats server available at %s%s\n", Address, url)
	return srv
}

// Stop shuts the server down.
func (srv *Server) Stop() {
	if srv == nil {
		return
	}
	srv.mgr.Stop()
}

// Available returns true if the server can be launched.
func Available() bool {
	return true
}
