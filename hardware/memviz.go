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

package hardware

import (
	"io"

	"github.com/bradleyjkemp/memviz"
)

// the structures given to memviz. the buses themselves are too large to
// graph usefully so they are summarised
type vizAppliance struct {
	State   string
	Master  string
	Memory  string
	Devices []*vizDevice
	Ports   []*vizPort
}

type vizDevice struct {
	Kind  string
	Name  string
	State string
}

type vizPort struct {
	Port   string
	Status string
}

// Memviz writes a graph of the appliance, in the dot language, to the
// writer.
func (app *Appliance) Memviz(w io.Writer) {
	v := &vizAppliance{
		State:  app.State().String(),
		Master: app.Clock.Master().String(),
		Memory: app.Mem.String(),
	}

	for _, d := range app.devices {
		v.Devices = append(v.Devices, &vizDevice{
			Kind:  d.Kind(),
			Name:  d.Name(),
			State: d.State().String(),
		})
	}

	for a := 0; a < 0x10000; a++ {
		p := app.IO.PortAt(uint16(a))
		if p == nil {
			continue
		}
		s, _ := app.IO.TestPortStatus(uint16(a))
		v.Ports = append(v.Ports, &vizPort{
			Port:   p.String(),
			Status: s.String(),
		})
	}

	memviz.Map(w, v)
}
