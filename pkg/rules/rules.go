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

// Package rules emits rules.txt, the Cemu mod-metadata file, for
// big-endian (Wii U) builds.
package rules

import (
	"fmt"
	"io"
	"sort"
)

const titleIDs = "00050000101C9300,00050000101C9400,00050000101C9500"

// Write emits rules.txt to w from the given meta map. The file is only
// ever produced for big-endian builds; callers must gate that themselves
// (Write has no opinion about platform).
//
// When meta carries "name" but not "path", a path entry is derived so
// Cemu can locate the mod under its default mods directory.
func Write(w io.Writer, meta map[string]string) error {
	if _, err := fmt.Fprintln(w, "[Definition]"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "titleIds = %s\n", titleIDs); err != nil {
		return err
	}

	if _, hasPath := meta["path"]; !hasPath {
		if name, hasName := meta["name"]; hasName {
			if _, err := fmt.Fprintf(w, "path = The Legend of Zelda: Breath of the Wild/Mods/%s\n", name); err != nil {
				return err
			}
		}
	}

	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s = %s\n", k, meta[k]); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, "version = 7"); err != nil {
		return err
	}
	return nil
}
