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

// Package statsview offers a HTTP server running locally with runtime
// statistics of the emulator process. The server is provided by
// github.com/go-echarts/statsview and is only built when the statsview build
// tag is present. Without the tag Launch() does nothing and Available()
// returns false. The Server returned by Launch() is stopped with Stop(), which
// is safe to call on the nil Server of an untagged build.
//
// After launch, graphical statistics will be viewable at:
//
//	localhost:12600/debug/statsview
//
// And the standard Go pprof statistics are available at:
//
//	localhost:12600/debug/pprof/
package statsview
