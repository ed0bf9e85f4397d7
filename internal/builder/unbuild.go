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
	"fmt"
	"strings"

	"botwbuild/internal/codec"
)

// UnbuiltFile is one file the Unbuilder wants written to the source tree.
type UnbuiltFile struct {
	Path string
	Data []byte
}

// rootPackExtensions lists the archive extensions whose contents unpack
// flat into their containing directory rather than into a subdirectory
// named after the archive itself — the root actor/event packs.
var rootPackExtensions = map[string]bool{
	"sbactorpack": true,
	"sbeventpack": true,
}

const bootupLanguagePrefix = "Bootup_"

// UnbuildArchive recursively expands a SARC archive rooted at name into a
// set of source files: AAMP/BYML members decode back to their text `.yml`
// form, ActorInfo.product.sbyml/EventInfo.product.sbyml split into
// per-entity documents, nested archives recurse (flat for root-pack
// extensions, into a subdirectory named after themselves otherwise), and
// a Bootup_<lang>.pack wrapper unpacks its inner message archive to
// Message/<lang>/*.msyt text.
func UnbuildArchive(name string, data []byte, bigEndian bool) ([]UnbuiltFile, error) {
	data, err := codec.DecompressIf(data)
	if err != nil {
		return nil, fmt.Errorf("builder: decompress %s: %w", name, err)
	}

	sarc, err := codec.UnmarshalSarc(data)
	if err != nil {
		return nil, fmt.Errorf("builder: parse archive %s: %w", name, err)
	}

	if lang, ok := bootupLanguage(name); ok {
		return unbuildLanguageBundle(lang, sarc)
	}

	var out []UnbuiltFile
	for _, entry := range sarc.Entries {
		files, err := unbuildEntry(name, entry)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	out = append(out, archiveSentinels(name, sarc)...)
	return out, nil
}

// UnbuildArchiveName returns the directory name an archive's unbuilt
// contents belong under: its file name with the extension stripped, or
// empty for root-pack extensions (sbactorpack/sbeventpack), which unpack
// flat into their containing processed directory rather than a
// subdirectory of their own.
func UnbuildArchiveName(name string) string {
	stem, ext := StemAndExt(name)
	if rootPackExtensions[ext] {
		return ""
	}
	return stem
}

// bootupLanguage reports whether name is a boot language bundle
// ("Bootup_USen.pack"), returning its language code. "Bootup.pack" itself
// (no language suffix) is the title-resident pack and is not one of these.
func bootupLanguage(name string) (string, bool) {
	stem := strings.TrimSuffix(name, ".pack")
	if stem == name || !strings.HasPrefix(stem, bootupLanguagePrefix) {
		return "", false
	}
	lang := strings.TrimPrefix(stem, bootupLanguagePrefix)
	if lang == "" {
		return "", false
	}
	return lang, true
}

// unbuildLanguageBundle decodes a Bootup_<lang>.pack's inner
// Message/Msg_<lang>.product.ssarc archive back to per-message MSYT text
// under Message/<lang>/.
func unbuildLanguageBundle(lang string, outer *codec.SarcFile) ([]UnbuiltFile, error) {
	var inner *codec.SarcEntry
	for i := range outer.Entries {
		if strings.HasPrefix(outer.Entries[i].Name, "Message/Msg_") {
			inner = &outer.Entries[i]
			break
		}
	}
	if inner == nil {
		return nil, fmt.Errorf("builder: Bootup_%s.pack missing its Message archive", lang)
	}

	raw, err := codec.DecompressIf(inner.Data)
	if err != nil {
		return nil, fmt.Errorf("builder: decompress %s: %w", inner.Name, err)
	}
	msgSarc, err := codec.UnmarshalSarc(raw)
	if err != nil {
		return nil, fmt.Errorf("builder: parse %s: %w", inner.Name, err)
	}

	var out []UnbuiltFile
	for _, e := range msgSarc.Entries {
		doc, err := codec.UnmarshalMsbtBinary(e.Data)
		if err != nil {
			return nil, fmt.Errorf("builder: decode %s: %w", e.Name, err)
		}
		text, err := doc.MarshalText()
		if err != nil {
			return nil, fmt.Errorf("builder: marshal msyt for %s: %w", e.Name, err)
		}
		stem := strings.TrimSuffix(e.Name, ".msbt")
		out = append(out, UnbuiltFile{Path: fmt.Sprintf("Message/%s/%s.msyt", lang, stem), Data: text})
	}
	return out, nil
}

// archiveSentinels emits the `.slash`/`.align` marker files a source
// directory needs to reproduce a non-default leading-slash or alignment
// policy on rebuild, as bare file names relative to the archive's own
// implied directory — callers are responsible for applying whatever
// prefix places that directory correctly (see UnbuildArchiveName).
func archiveSentinels(name string, sarc *codec.SarcFile) []UnbuiltFile {
	if UnbuildArchiveName(name) == "" {
		return nil
	}

	var out []UnbuiltFile
	leadingSlash := false
	for _, e := range sarc.Entries {
		if strings.HasPrefix(e.Name, "/") {
			leadingSlash = true
			break
		}
	}
	if leadingSlash {
		out = append(out, UnbuiltFile{Path: dotSlashMarker})
	}
	if sarc.Align != 0 && sarc.Align != 4 {
		out = append(out, UnbuiltFile{Path: fmt.Sprintf("%s=%d", dotAlignMarker, sarc.Align)})
	}
	return out
}

// unbuildEntry expands one archive member: nested archives recurse,
// AAMP/BYML binaries decode to their text `.yml` form (with
// ActorInfo.product.sbyml/EventInfo.product.sbyml split per-entity), and
// anything else is copied through verbatim.
func unbuildEntry(containerName string, entry codec.SarcEntry) ([]UnbuiltFile, error) {
	stem, ext := StemAndExt(entry.Name)

	if codec.IsYaz0(entry.Data) || looksLikeArchive(ext) {
		if nested, err := codec.DecompressIf(entry.Data); err == nil {
			if nestedSarc, err := codec.UnmarshalSarc(nested); err == nil {
				return unbuildNested(entry.Name, nestedSarc)
			}
		}
	}

	switch stemName(entry.Name) {
	case "ActorInfo.product.sbyml":
		root, err := codec.UnmarshalBymlBinary(entry.Data)
		if err != nil {
			return nil, fmt.Errorf("builder: decode %s: %w", entry.Name, err)
		}
		docs, err := UnbuildActorInfo(root)
		if err != nil {
			return nil, err
		}
		return docsToFiles("Actor/ActorInfo", docs), nil
	case "EventInfo.product.sbyml":
		root, err := codec.UnmarshalBymlBinary(entry.Data)
		if err != nil {
			return nil, fmt.Errorf("builder: decode %s: %w", entry.Name, err)
		}
		docs, err := UnbuildEventInfo(root)
		if err != nil {
			return nil, err
		}
		return docsToFiles("Event/EventInfo", docs), nil
	}

	switch codec.SniffBinary(entry.Data) {
	case codec.KindAamp:
		doc, err := codec.UnmarshalAampBinary(entry.Data)
		if err != nil {
			return nil, fmt.Errorf("builder: decode %s: %w", entry.Name, err)
		}
		text, err := doc.MarshalText()
		if err != nil {
			return nil, fmt.Errorf("builder: marshal text for %s: %w", entry.Name, err)
		}
		return []UnbuiltFile{{Path: entry.Name + ".yml", Data: text}}, nil
	case codec.KindByml:
		node, err := codec.UnmarshalBymlBinary(entry.Data)
		if err != nil {
			return nil, fmt.Errorf("builder: decode %s: %w", entry.Name, err)
		}
		text, err := codec.MarshalBymlText(node)
		if err != nil {
			return nil, fmt.Errorf("builder: marshal text for %s: %w", entry.Name, err)
		}
		return []UnbuiltFile{{Path: entry.Name + ".yml", Data: text}}, nil
	}

	_ = stem
	return []UnbuiltFile{{Path: entry.Name, Data: entry.Data}}, nil
}

// unbuildNested expands one nested archive's entries, flattening root-pack
// extensions (sbactorpack/sbeventpack) directly into the parent and
// otherwise nesting under a subdirectory named after the archive, minus
// its extension — mirroring the Pack Builder's source-side convention of
// an extension-less directory (Pack/TitleBG/, not Pack/TitleBG.pack/).
func unbuildNested(name string, nested *codec.SarcFile) ([]UnbuiltFile, error) {
	prefix := UnbuildArchiveName(name)

	var pending []UnbuiltFile
	for _, child := range nested.Entries {
		files, err := unbuildEntry(name, child)
		if err != nil {
			return nil, err
		}
		pending = append(pending, files...)
	}
	pending = append(pending, archiveSentinels(name, nested)...)

	if prefix == "" {
		return pending, nil
	}
	out := make([]UnbuiltFile, len(pending))
	for i, f := range pending {
		out[i] = UnbuiltFile{Path: prefix + "/" + f.Path, Data: f.Data}
	}
	return out, nil
}

func docsToFiles(dir string, docs map[string][]byte) []UnbuiltFile {
	out := make([]UnbuiltFile, 0, len(docs))
	for name, data := range docs {
		out = append(out, UnbuiltFile{Path: dir + "/" + name, Data: data})
	}
	return out
}

// stemName strips any directory component, leaving just the file name, so
// special-cased BYML documents can be recognized regardless of where they
// live inside an archive.
func stemName(path string) string {
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

func looksLikeArchive(ext string) bool {
	switch ext {
	case "pack", "sarc", "bactorpack", "sbactorpack", "beventpack", "sbeventpack",
		"blarc", "sblarc", "bfarc", "sfarc":
		return true
	default:
		return false
	}
}

// UnbuildActorInfo splits ActorInfo.product.sbyml's Actors array into
// per-actor Actor/ActorInfo/<name>.info.yml documents, discarding the
// Hashes side table the compiled form carries for fast lookup (it is
// redundant with the actor names themselves and only consulted in-game).
func UnbuildActorInfo(root *codec.BymlNode) (map[string][]byte, error) {
	actors, ok := root.Get("Actors")
	if !ok || !actors.IsArray() {
		return nil, fmt.Errorf("builder: ActorInfo.product.sbyml missing Actors array")
	}

	out := map[string][]byte{}
	for _, actor := range actors.Array {
		nameNode, ok := actor.Get("name")
		if !ok {
			continue
		}
		name, _ := nameNode.Value.(string)
		if name == "" {
			continue
		}
		stripped := codec.NewBymlMap()
		for k, v := range actor.Map {
			if k == "name" {
				continue
			}
			stripped.Set(k, v)
		}
		text, err := codec.MarshalBymlText(stripped)
		if err != nil {
			return nil, fmt.Errorf("builder: marshal actor info for %s: %w", name, err)
		}
		out[name+".info.yml"] = text
	}
	return out, nil
}

// UnbuildEventInfo groups EventInfo.product.sbyml's flat merged-key map
// back into one Event/EventInfo/<eventName>.info.yml document per event,
// each holding its sub-events keyed by the part after the "<...>"
// delimiter.
func UnbuildEventInfo(root *codec.BymlNode) (map[string][]byte, error) {
	if !root.IsMap() {
		return nil, fmt.Errorf("builder: EventInfo.product.sbyml root is not a map")
	}

	byEvent := map[string]*codec.BymlNode{}
	for key, node := range root.Map {
		eventName, subKey, ok := SplitMergedEventKey(key)
		if !ok {
			eventName, subKey = key, key
		}
		doc, exists := byEvent[eventName]
		if !exists {
			doc = codec.NewBymlMap()
			byEvent[eventName] = doc
		}
		doc.Set(subKey, node)
	}

	out := map[string][]byte{}
	for name, doc := range byEvent {
		text, err := codec.MarshalBymlText(doc)
		if err != nil {
			return nil, fmt.Errorf("builder: marshal event info for %s: %w", name, err)
		}
		out[name+".info.yml"] = text
	}
	return out, nil
}
