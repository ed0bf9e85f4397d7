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
	"strings"
	"testing"

	"botwbuild/internal/codec"
)

func pathsOf(files []UnbuiltFile) map[string][]byte {
	out := make(map[string][]byte, len(files))
	for _, f := range files {
		out[f.Path] = f.Data
	}
	return out
}

func TestUnbuildArchiveDecodesAampMember(t *testing.T) {
	root := codec.NewAampObject("LinkTarget")
	root.Params["AIProgramUser"] = "Work/Dog.baiprog"
	doc := &codec.AampDocument{Root: root}

	archive := codec.NewSarcFile(false)
	archive.Set("ActorLink/Dog.bxml", doc.MarshalBinary())

	out, err := UnbuildArchive("Dog.sbactorpack", archive.Marshal(), false)
	if err != nil {
		t.Fatalf("UnbuildArchive: %v", err)
	}

	files := pathsOf(out)
	text, ok := files["ActorLink/Dog.bxml.yml"]
	if !ok {
		t.Fatalf("got %v, want a decoded ActorLink/Dog.bxml.yml", files)
	}
	if !strings.Contains(string(text), "AIProgramUser") {
		t.Fatalf("decoded text missing expected param: %s", text)
	}
}

func TestUnbuildArchiveFlattensRootPackActorInfo(t *testing.T) {
	actors := codec.NewBymlArray()
	dog := codec.NewBymlMap()
	dog.Set("name", codec.NewBymlScalar("Dog"))
	dog.Set("profile", codec.NewBymlScalar("Animal"))
	actors.Array = append(actors.Array, dog)

	root := codec.NewBymlMap()
	root.Set("Actors", actors)
	root.Set("Hashes", codec.NewBymlArray())

	archive := codec.NewSarcFile(false)
	archive.Set("ActorInfo.product.sbyml", codec.MarshalBymlBinary(root))

	out, err := UnbuildArchive("ActorInfo.product.sbactorpack", archive.Marshal(), false)
	if err != nil {
		t.Fatalf("UnbuildArchive: %v", err)
	}

	files := pathsOf(out)
	if _, ok := files["Actor/ActorInfo/Dog.info.yml"]; !ok {
		t.Fatalf("got %v, want Actor/ActorInfo/Dog.info.yml", files)
	}
}

func TestUnbuildArchiveHandlesLanguageBundle(t *testing.T) {
	msyts := map[string]*codec.MsytDocument{
		"Msg_0": {Entries: []codec.MsytEntry{{Label: "Msg_0", Text: "Hello"}}},
	}
	bundle, _, err := BuildLanguageBundle("USen", msyts, false)
	if err != nil {
		t.Fatalf("BuildLanguageBundle: %v", err)
	}

	out, err := UnbuildArchive("Bootup_USen.pack", bundle, false)
	if err != nil {
		t.Fatalf("UnbuildArchive: %v", err)
	}

	files := pathsOf(out)
	text, ok := files["Message/USen/Msg_0.msyt"]
	if !ok {
		t.Fatalf("got %v, want Message/USen/Msg_0.msyt", files)
	}
	if !strings.Contains(string(text), "Hello") {
		t.Fatalf("decoded msyt missing expected text: %s", text)
	}
}

func TestUnbuildArchiveNestedPackGetsStrippedDirectory(t *testing.T) {
	inner := codec.NewSarcFile(false)
	inner.Set("Placeholder/Dummy.txt", []byte("data"))

	outer := codec.NewSarcFile(false)
	outer.Set("Dummy.sarc", inner.Marshal())

	out, err := UnbuildArchive("TitleBG.pack", outer.Marshal(), false)
	if err != nil {
		t.Fatalf("UnbuildArchive: %v", err)
	}

	files := pathsOf(out)
	if _, ok := files["Dummy/Placeholder/Dummy.txt"]; !ok {
		t.Fatalf("got %v, want nested archive content under its extension-stripped name", files)
	}
}

func TestUnbuildArchiveEmitsSlashSentinel(t *testing.T) {
	archive := codec.NewSarcFile(false)
	archive.Set("/Absolute/Path.txt", []byte("data"))

	out, err := UnbuildArchive("Odd.sarc", archive.Marshal(), false)
	if err != nil {
		t.Fatalf("UnbuildArchive: %v", err)
	}

	files := pathsOf(out)
	if _, ok := files[dotSlashMarker]; !ok {
		t.Fatalf("got %v, want a %s sentinel for a leading-slash entry", files, dotSlashMarker)
	}
}
