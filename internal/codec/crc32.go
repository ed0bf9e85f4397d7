// Botwbuild is an incremental mod build pipeline for The Legend of Zelda: Breath of the Wild.
// Copyright (C) 2025 Matthew Burns
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package codec

import "hash/crc32"

// HashName computes the CRC32 (ISO-HDLC / "IEEE", reflected, poly
// 0xEDB88320) hash used throughout for resource and parameter names. This
// is the same variant exposed by hash/crc32.ChecksumIEEE.
func HashName(name string) uint32 {
	return crc32.ChecksumIEEE([]byte(name))
}
