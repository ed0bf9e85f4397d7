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
	"path"
	"strings"

	"botwbuild/internal/botwconst"
)

// Canonicalize computes a resource's canonical name from its full
// slash-separated path relative to the source root: strip the nearest
// enclosing archive extension's directory prefix when the path lives
// inside an archive-rooted subtree, otherwise strip the source-root
// prefix outright, then drop a trailing ".yml".
//
// relPath must already be relative to sourceRoot and use forward slashes.
func Canonicalize(relPath string) string {
	name := strings.TrimSuffix(relPath, ".yml")

	segments := strings.Split(name, "/")
	for i := len(segments) - 2; i >= 0; i-- {
		if botwconst.IsArchiveExt(extOf(segments[i])) {
			return path.Join(segments[i+1:]...)
		}
	}
	return name
}

func extOf(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

// StemAndExt splits a file name (no directories) into its base name and
// lowercase extension, without the leading dot.
func StemAndExt(name string) (stem, ext string) {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return name, ""
	}
	return name[:idx], strings.ToLower(name[idx+1:])
}
