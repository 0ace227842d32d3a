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

// Package lifecycle implements the state machine shared by every device:
//
//	Constructed -> Connected -> Initialised -> Running
//
// and back down through the same states on teardown. A device embeds a
// Machine and implements the Hooks interface. The Machine validates every
// transition and only calls a hook when the transition is legal. A hook that
// fails leaves the state unchanged.
package lifecycle
