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

// Package wavwriter allows writing of audio data to disk as a WAV file. Note
// that audio data is buffered in memory in its entirity, and written to disk
// when the writer is closed. It is therefore probably only suitable for
// capturing short recordings.
package wavwriter

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/logger"
)

// Sentinal errors.
const (
	WavError = "wavwriter: %v"
)

// the format of the written samples
const (
	bitDepth  = 8
	channels  = 1
	wavFormat = 1 // PCM
)

// WavWriter buffers unsigned 8 bit mono samples and writes them to a WAV
// file.
type WavWriter struct {
	filename string
	rate     int
	max      int
	buffer   []int
}

// New is the preferred method of initialisation for the WavWriter type. The
// max argument limits the number of samples that will be buffered. Samples
// beyond the limit are discarded. A max of zero means no limit.
func New(filename string, rate int, max int) (*WavWriter, error) {
	if rate <= 0 {
		return nil, curated.Errorf(WavError, "sample rate must be greater than zero")
	}

	aw := &WavWriter{
		filename: filename,
		rate:     rate,
		max:      max,
		buffer:   make([]int, 0, 4096),
	}

	return aw, nil
}

// Add samples to the buffer.
func (aw *WavWriter) Add(samples ...uint8) {
	for _, s := range samples {
		if aw.max > 0 && len(aw.buffer) >= aw.max {
			return
		}
		aw.buffer = append(aw.buffer, int(s))
	}
}

// Len returns the number of samples in the buffer.
func (aw *WavWriter) Len() int {
	return len(aw.buffer)
}

// Close writes the buffered samples to disk.
func (aw *WavWriter) Close() (rerr error) {
	f, err := os.Create(aw.filename)
	if err != nil {
		return curated.Errorf(WavError, err)
	}
	defer func() {
		err := f.Close()
		if err != nil && rerr == nil {
			rerr = curated.Errorf(WavError, err)
		}
	}()

	enc := wav.NewEncoder(f, aw.rate, bitDepth, channels, wavFormat)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  aw.rate,
		},
		Data:           aw.buffer,
		SourceBitDepth: bitDepth,
	}

	logger.Logf(logger.Allow, "wavwriter", "writing %d samples to %s", len(aw.buffer), aw.filename)

	if err := enc.Write(buf); err != nil {
		return curated.Errorf(WavError, err)
	}
	if err := enc.Close(); err != nil {
		return curated.Errorf(WavError, err)
	}

	return nil
}

// Load reads the samples of a mono WAV file. The sample rate of the file is
// also returned.
func Load(filename string) ([]int, int, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, 0, curated.Errorf(WavError, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, curated.Errorf(WavError, "not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, curated.Errorf(WavError, err)
	}

	return buf.Data, int(dec.SampleRate), nil
}
