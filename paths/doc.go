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

// Package paths prepares paths to pcsim resources: the global preferences
// file, default NVRAM files and captured output such as screenshots.
//
// The policy of ResourcePath() is simple: if the base resource path,
// ".pcsim", is present in the program's current directory then that is the
// base path used. Otherwise the user's config directory is used. On a
// modern Linux system:
//
//	paths.ResourcePath("nvram", "rtc.bin")
//
// returns
//
//	/home/user/.config/pcsim/nvram/rtc.bin
package paths
