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
	"sort"
	"strings"

	"botwbuild/internal/codec"
)

// EventDescriptor is one resolved sub-event: its merged info key (the
// event name followed by the sub-event key in angle brackets, as
// MergedEventKey formats it), the files it pulls in split by whether
// they route through the Compile Cache (Files) or are copied opaque
// (RawFiles), and the singleton fields folded into the event's info
// fragment.
type EventDescriptor struct {
	MergedKey string
	Files     []string
	RawFiles  []string
	Info      map[string]interface{}
}

var eventSingletonFields = []string{
	"demo_event", "is_timeline", "elink_user", "slink_user", "exist_extra_model",
}

var eventFileSetArrays = []string{"subfile", "as", "camera"}

// MergedEventKey formats the EventInfo.product.sbyml key for one
// sub-event: the event name, then the sub-event key wrapped in angle
// brackets, e.g. "Demo000_0<Demo_OpeningDemo>". The delimiter makes the
// split unambiguous for the Unbuilder, which otherwise has no way to tell
// where the event name ends and the sub-event key begins.
func MergedEventKey(eventName, subEventKey string) string {
	return eventName + "<" + subEventKey + ">"
}

// SplitMergedEventKey reverses MergedEventKey, returning ok=false if key
// doesn't carry the expected delimiter.
func SplitMergedEventKey(key string) (eventName, subEventKey string, ok bool) {
	open := -1
	for i := 0; i < len(key); i++ {
		if key[i] == '<' {
			open = i
			break
		}
	}
	if open < 0 || key[len(key)-1] != '>' {
		return "", "", false
	}
	return key[:open], key[open+1 : len(key)-1], true
}

// eventArrayItemFile extracts the referenced filename from one subfile/
// as/camera array entry. Entries are normally maps carrying a "file" key;
// a bare string is accepted too for leniency.
func eventArrayItemFile(item *codec.BymlNode) (string, bool) {
	if item.IsMap() {
		v, ok := item.Get("file")
		if !ok {
			return "", false
		}
		s, ok := v.Value.(string)
		return s, ok && s != ""
	}
	s, ok := item.Value.(string)
	return s, ok && s != ""
}

// isPrimaryEventFile reports whether path is one of the two required
// EventFlow forms; a missing primary file blocks archive emission for a
// non-title event (§4.5 step 4).
func isPrimaryEventFile(path string) bool {
	return strings.HasSuffix(path, ".bfevfl") || strings.HasSuffix(path, ".bfevtm")
}

func bymlTruthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int:
		return t != 0
	case int64:
		return t != 0
	case string:
		return t != "" && t != "false" && t != "0"
	default:
		return false
	}
}

// ResolveEvent parses one sub-event node of an Event/EventInfo/*.info.yml
// document (keyed by sub-event name within the event) into its merged
// info key and file set. All derived paths are content-root-relative
// rather than nested under "Event/" (an ActorDescriptor's Files, by
// contrast, are relative to "Actor/").
func ResolveEvent(eventName, subEventKey string, node *codec.BymlNode) EventDescriptor {
	desc := EventDescriptor{
		MergedKey: MergedEventKey(eventName, subEventKey),
		Info:      map[string]interface{}{},
	}

	seenCompiled := map[string]bool{}
	seenRaw := map[string]bool{}
	addCompiled := func(p string) {
		if p != "" && !seenCompiled[p] {
			seenCompiled[p] = true
			desc.Files = append(desc.Files, p)
		}
	}
	addRaw := func(p string) {
		if p != "" && !seenRaw[p] {
			seenRaw[p] = true
			desc.RawFiles = append(desc.RawFiles, p)
		}
	}

	for _, arrayKey := range eventFileSetArrays {
		arr, ok := node.Get(arrayKey)
		if !ok || !arr.IsArray() {
			continue
		}
		for _, item := range arr.Array {
			f, ok := eventArrayItemFile(item)
			if !ok {
				continue
			}
			switch arrayKey {
			case "subfile":
				addRaw("EventFlow/" + f)
			case "as":
				addCompiled(fmt.Sprintf("Actor/AS/%s/%s.bas.yml", eventName, f))
			case "camera":
				addRaw(fmt.Sprintf("Camera/%s/%s", eventName, f))
			}
		}
	}

	for _, field := range eventSingletonFields {
		if v, ok := node.Get(field); ok {
			desc.Info[field] = v.Value
		}
	}

	// demo_event, is_timeline, and exist_extra_model are booleans gating a
	// single derived path keyed by the event's own name, not by a value
	// the field carries.
	if v, ok := desc.Info["demo_event"]; ok && bymlTruthy(v) {
		addCompiled("Demo/" + eventName + ".bdemo.yml")
	}

	// is_timeline, even when the field is entirely absent, defaults to the
	// non-timeline .bfevfl form.
	if v, ok := desc.Info["is_timeline"]; ok && bymlTruthy(v) {
		addRaw("EventFlow/" + eventName + ".bfevtm")
		addRaw("EventFlow/" + eventName + "_effect.bfevtm")
	} else {
		addRaw("EventFlow/" + eventName + ".bfevfl")
	}

	if v, ok := desc.Info["exist_extra_model"]; ok && bymlTruthy(v) {
		addRaw("Model/" + eventName + ".sbfres")
	}

	if s, ok := desc.Info["elink_user"].(string); ok && s != "" && s != "Dummy" {
		addRaw("Effect/" + s + ".sesetlist")
	}

	if s, ok := desc.Info["slink_user"].(string); ok && s != "" && s != "Dummy" {
		addRaw("Sound/Resource/" + s + ".bars")
	}

	sort.Strings(desc.Files)
	sort.Strings(desc.RawFiles)

	return desc
}

// BuildEventInfo assembles the Event/EventInfo.product.sbyml document from
// the set of resolved sub-events: a flat map keyed by merged key, each
// holding that sub-event's singleton info fields.
func BuildEventInfo(descriptors []EventDescriptor) *codec.BymlNode {
	root := codec.NewBymlMap()
	for _, d := range descriptors {
		entry := codec.NewBymlMap()
		for k, v := range d.Info {
			entry.Set(k, codec.NewBymlScalar(v))
		}
		root.Set(d.MergedKey, entry)
	}
	return root
}
