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
	"sort"
	"strings"

	"botwbuild/internal/botwconst"
	"botwbuild/internal/codec"
)

// SourceDir is an in-memory directory tree of already-compiled file
// bytes, the shape the Pack Builder assembles into nested SARC archives.
// The orchestrator (builder.go) is responsible for walking the real
// source tree and populating one of these per Pack/ entry.
type SourceDir struct {
	Name      string
	Files     map[string][]byte
	Dirs      map[string]*SourceDir
	Sentinels []string
}

// NewSourceDir returns an empty named directory node.
func NewSourceDir(name string) *SourceDir {
	return &SourceDir{Name: name, Files: map[string][]byte{}, Dirs: map[string]*SourceDir{}}
}

const titleBGStagingPrefix = "TitleBG.pack/"

// BuildPack assembles one Pack/<name>.pack archive from dir. titleStaged
// holds compiled bytes staged outside of dir: title actors/events that
// TitleBG.pack inlines directly under the "TitleBG.pack/" virtual-key
// prefix, and the bare "Event/EventInfo.product.sbyml" key that Bootup.pack
// falls back to when the event-info fragment wasn't rebuilt this run.
func BuildPack(name string, dir *SourceDir, bigEndian bool, titleStaged map[string][]byte) (*ArchiveWriter, error) {
	w := buildPackNode(dir, bigEndian)

	if name == "TitleBG" {
		paths := make([]string, 0, len(titleStaged))
		for p := range titleStaged {
			if strings.HasPrefix(p, titleBGStagingPrefix) {
				paths = append(paths, p)
			}
		}
		sort.Strings(paths)
		for _, p := range paths {
			w.Add(strings.TrimPrefix(p, titleBGStagingPrefix), titleStaged[p])
		}
	}

	if name == "Bootup" {
		if _, ok := findEntry(w, "Event/EventInfo.product.sbyml"); !ok {
			if data, ok := titleStaged["Event/EventInfo.product.sbyml"]; ok {
				w.Add("Event/EventInfo.product.sbyml", data)
			} else {
				return nil, ErrMissingBootupEventInfo
			}
		}
	}

	return w, nil
}

func buildPackNode(dir *SourceDir, bigEndian bool) *ArchiveWriter {
	w := NewArchiveWriter(bigEndian)
	w.ApplySentinels(dir.Sentinels)

	names := make([]string, 0, len(dir.Files))
	for n := range dir.Files {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		w.Add(n, dir.Files[n])
	}

	dirNames := make([]string, 0, len(dir.Dirs))
	for n := range dir.Dirs {
		dirNames = append(dirNames, n)
	}
	sort.Strings(dirNames)
	for _, n := range dirNames {
		child := dir.Dirs[n]
		_, ext := StemAndExt(n)
		if botwconst.IsArchiveExt(ext) {
			nested := buildPackNode(child, bigEndian)
			data := nested.Bytes()
			if codec.ShouldCompress(ext, data) {
				data = codec.Yaz0Compress(data)
			}
			w.Add(n, data)
			continue
		}
		// A plain subdirectory contributes its files under a path prefix
		// rather than becoming its own nested archive.
		flattenInto(w, n, child)
	}

	return w
}

func flattenInto(w *ArchiveWriter, prefix string, dir *SourceDir) {
	names := make([]string, 0, len(dir.Files))
	for n := range dir.Files {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		w.Add(prefix+"/"+n, dir.Files[n])
	}
	dirNames := make([]string, 0, len(dir.Dirs))
	for n := range dir.Dirs {
		dirNames = append(dirNames, n)
	}
	sort.Strings(dirNames)
	for _, n := range dirNames {
		flattenInto(w, prefix+"/"+n, dir.Dirs[n])
	}
}

func findEntry(w *ArchiveWriter, path string) ([]byte, bool) {
	e, ok := w.sarc.Get(path)
	if ok {
		return e.Data, true
	}
	e, ok = w.sarc.Get("/" + path)
	if ok {
		return e.Data, true
	}
	// search nested archives one level deep, since EventInfo typically
	// lives inside Bootup.pack's own Event/ subtree rather than the root.
	for _, entry := range w.sarc.Entries {
		if !strings.HasSuffix(entry.Name, ".pack") && !strings.HasSuffix(entry.Name, ".sarc") {
			continue
		}
		if codec.IsYaz0(entry.Data) {
			continue
		}
		if nested, err := codec.UnmarshalSarc(entry.Data); err == nil {
			if ne, ok := nested.Get(path); ok {
				return ne.Data, true
			}
		}
	}
	return nil, false
}
