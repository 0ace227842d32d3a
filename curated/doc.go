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

// Package curated is used for the errors that the emulator expects to
// produce. Every configuration failure, every rejected lifecycle transition
// and every persistence problem is a curated error.
//
// Curated errors are created with Errorf(). The first argument is a pattern
// rather than a format because the pattern identifies the error:
//
//	const PortConflict = "iobus: port conflict at %#04x"
//
//	err := curated.Errorf(PortConflict, 0x3f0)
//	if curated.Is(err, PortConflict) {
//		...
//	}
//
// Patterns are exported as string constants by the package that produces
// them. Has() looks for a pattern anywhere in a chain of wrapped curated
// errors:
//
//	err = curated.Errorf("appliance: %v", err)
//	curated.Has(err, iobus.PortConflict) // true
//	curated.Is(err, iobus.PortConflict)  // false
//
// The Error() string is normalised so that adjacent duplicate parts of the
// chain are collapsed. Parts are separated by ": ". Wrapping an error with
// the same prefix it already has does not repeat the prefix:
//
//	curated.Errorf("fdc: %v", curated.Errorf("fdc: no drive")).Error() == "fdc: no drive"
//
// Curated errors also implement Unwrap() so that the standard errors.Is()
// and errors.As() functions can see any non-curated error that has been
// wrapped, such as an *os.PathError.
package curated
