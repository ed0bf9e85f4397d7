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

package builder

import (
	"strconv"
	"strings"

	"botwbuild/internal/codec"
)

// dotSlashMarker and dotAlignMarker are the sentinel file names a source
// directory can carry to override the archive's root leading-slash policy
// and byte alignment respectively, mirroring the convention used
// throughout the source tree for directories that become SARC archives.
const (
	dotSlashMarker = ".slash"
	dotAlignMarker = ".align"
)

// ArchiveWriter accumulates named entries for one output archive, applying
// the leading-slash and alignment policy a source directory's sentinel
// files request.
type ArchiveWriter struct {
	sarc        *codec.SarcFile
	leadingSlash bool
}

// NewArchiveWriter returns a writer for a new archive. Its endianness is
// fixed for the writer's lifetime.
func NewArchiveWriter(bigEndian bool) *ArchiveWriter {
	return &ArchiveWriter{sarc: codec.NewSarcFile(bigEndian)}
}

// ApplySentinels reads a directory's recognized sentinel file set (as
// produced by a directory listing) and applies any `.slash`/`.align`
// overrides found there.
func (w *ArchiveWriter) ApplySentinels(names []string) {
	for _, n := range names {
		switch {
		case n == dotSlashMarker:
			w.leadingSlash = true
		case strings.HasPrefix(n, dotAlignMarker):
			if idx := strings.IndexByte(n, '='); idx >= 0 {
				if v, err := strconv.Atoi(n[idx+1:]); err == nil && v > 0 {
					w.sarc.Align = uint16(v)
				}
			}
		}
	}
}

// Add inserts one entry, applying the leading-slash policy to its path.
func (w *ArchiveWriter) Add(path string, data []byte) {
	if w.leadingSlash && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	w.sarc.Set(path, data)
}

// MergeFrom copies every entry of an existing archive into this writer,
// without overwriting entries already added — used when a pack is being
// rebuilt incrementally on top of a previous output archive.
func (w *ArchiveWriter) MergeFrom(existing *codec.SarcFile) {
	for _, e := range existing.Entries {
		if _, ok := w.sarc.Get(e.Name); !ok {
			w.sarc.Entries = append(w.sarc.Entries, e)
		}
	}
}

// Bytes serializes the accumulated archive.
func (w *ArchiveWriter) Bytes() []byte {
	return w.sarc.Marshal()
}

// Len reports how many entries the archive currently holds.
func (w *ArchiveWriter) Len() int {
	return len(w.sarc.Entries)
}
