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

package beeper_test

import (
	"path/filepath"
	"testing"

	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/hardware/device"
	"github.com/pcsim/pcsim/hardware/lifecycle"
	"github.com/pcsim/pcsim/hardware/peripherals/beeper"
	"github.com/pcsim/pcsim/hardware/peripherals/bench"
	"github.com/pcsim/pcsim/test"
	"github.com/pcsim/pcsim/wavwriter"
)

const base = beeper.DefaultAddress

func newBeeper(t *testing.T, dir string, wav string) (*bench.Bench, *beeper.Beeper) {
	t.Helper()

	b, err := bench.NewBench(dir)
	test.DemandSuccess(t, err)

	bpr := beeper.NewBeeper("beeper", b.Env)
	_ = bpr.Frequency.Set("1kHz")
	_ = bpr.Wav.Set(wav)
	b.Add(bpr)
	test.DemandSuccess(t, b.Start())

	return b, bpr
}

// count the number of times the sample changes over n ticks
func transitions(b *bench.Bench, bpr *beeper.Beeper, n int) int {
	var c int
	prev := bpr.Sample()
	for i := 0; i < n; i++ {
		b.Step(1)
		s := bpr.Sample()
		if s != prev {
			c++
		}
		prev = s
	}
	return c
}

func TestSilence(t *testing.T) {
	b, bpr := newBeeper(t, t.TempDir(), "")
	defer b.Stop()

	b.Step(10)
	test.ExpectEquality(t, bpr.Sample(), uint8(beeper.SampleSilent))
	test.ExpectEquality(t, bpr.Tone(), 0)

	// a divisor without the gate is silent
	b.IO.Write16(base, 11932)
	b.Step(10)
	test.ExpectEquality(t, bpr.Sample(), uint8(beeper.SampleSilent))
	test.ExpectEquality(t, b.IO.Read16(base), uint16(11932))

	// and so is the gate without a divisor
	b.IO.Write16(base, 0)
	b.IO.Write8(base+1, 0x01)
	b.Step(10)
	test.ExpectEquality(t, bpr.Sample(), uint8(beeper.SampleSilent))
	test.ExpectEquality(t, b.IO.Read8(base+1), uint8(0x01))
}

func TestTone(t *testing.T) {
	b, bpr := newBeeper(t, t.TempDir(), "")
	defer b.Stop()

	// approximately 100Hz
	b.IO.Write16(base, 11932)
	b.IO.Write8(base+1, 0xff)
	test.ExpectEquality(t, bpr.Tone(), 99)

	// sampled at 1kHz the output changes twice per period of the tone
	test.ExpectApproximate(t, transitions(b, bpr, 1000), 200, 0.02)

	// 250Hz
	b.IO.Write16(base, 4773)
	test.ExpectApproximate(t, transitions(b, bpr, 1000), 500, 0.02)

	b.IO.Write8(base+1, 0x00)
	b.Step(1)
	test.ExpectEquality(t, bpr.Sample(), uint8(beeper.SampleSilent))
}

func TestWav(t *testing.T) {
	dir := t.TempDir()

	b, _ := newBeeper(t, dir, "$/tone.wav")
	b.IO.Write16(base, 11932)
	b.IO.Write8(base+1, 0x01)
	b.Step(500)
	b.Stop()

	data, rate, err := wavwriter.Load(filepath.Join(dir, "tone.wav"))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, rate, 1000)
	test.DemandEquality(t, len(data), 500)
	for i, s := range data {
		if s != beeper.SampleHigh && s != beeper.SampleLow {
			t.Errorf("unexpected sample %#02x at %d", s, i)
			break
		}
	}
}

func TestPortConflict(t *testing.T) {
	b, err := bench.NewBench(t.TempDir())
	test.DemandSuccess(t, err)

	one := beeper.NewBeeper("one", b.Env)
	two := beeper.NewBeeper("two", b.Env)
	_ = two.Address.Set("0041")
	b.Add(one, two)

	err = b.Start()
	test.ExpectSuccess(t, curated.Has(err, device.InvalidConfig))
	test.ExpectEquality(t, two.State(), lifecycle.Constructed)
	test.ExpectEquality(t, b.IO.Occupied(), 2)

	b.Stop()
	test.ExpectEquality(t, b.IO.Occupied(), 0)
}
