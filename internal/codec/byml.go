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

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// BymlNode is a node of a BYML document tree: a map, an array, or a scalar
// (bool, int64, float64, string, nil).
type BymlNode struct {
	Map   map[string]*BymlNode
	Array []*BymlNode
	Value interface{}
}

// NewBymlMap returns an empty map node.
func NewBymlMap() *BymlNode {
	return &BymlNode{Map: map[string]*BymlNode{}}
}

// NewBymlArray returns an empty array node.
func NewBymlArray() *BymlNode {
	return &BymlNode{Array: []*BymlNode{}}
}

// NewBymlScalar wraps a leaf value.
func NewBymlScalar(v interface{}) *BymlNode {
	return &BymlNode{Value: v}
}

// IsMap reports whether n holds map entries.
func (n *BymlNode) IsMap() bool { return n != nil && n.Map != nil }

// IsArray reports whether n holds array entries.
func (n *BymlNode) IsArray() bool { return n != nil && n.Array != nil }

// Get looks up a key in a map node.
func (n *BymlNode) Get(key string) (*BymlNode, bool) {
	if n == nil || n.Map == nil {
		return nil, false
	}
	v, ok := n.Map[key]
	return v, ok
}

// Set inserts or replaces a key in a map node, initializing Map if needed.
func (n *BymlNode) Set(key string, v *BymlNode) {
	if n.Map == nil {
		n.Map = map[string]*BymlNode{}
	}
	n.Map[key] = v
}

// MarshalBymlText renders the node as plain YAML, matching the teacher's
// "human-editable text form" of compiled binary documents.
func MarshalBymlText(n *BymlNode) ([]byte, error) {
	out, err := yaml.Marshal(bymlToAny(n))
	if err != nil {
		return nil, fmt.Errorf("codec: marshal byml text: %w", err)
	}
	return out, nil
}

// ParseBymlText parses a plain YAML document into a BYML tree.
func ParseBymlText(data []byte) (*BymlNode, error) {
	var v interface{}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("codec: parse byml text: %w", err)
	}
	return anyToByml(v), nil
}

func bymlToAny(n *BymlNode) interface{} {
	if n == nil {
		return nil
	}
	switch {
	case n.IsMap():
		out := map[string]interface{}{}
		for k, v := range n.Map {
			out[k] = bymlToAny(v)
		}
		return out
	case n.IsArray():
		out := make([]interface{}, len(n.Array))
		for i, v := range n.Array {
			out[i] = bymlToAny(v)
		}
		return out
	default:
		return n.Value
	}
}

func anyToByml(v interface{}) *BymlNode {
	switch val := v.(type) {
	case map[string]interface{}:
		out := NewBymlMap()
		for k, e := range val {
			out.Map[k] = anyToByml(e)
		}
		return out
	case []interface{}:
		out := NewBymlArray()
		for _, e := range val {
			out.Array = append(out.Array, anyToByml(e))
		}
		return out
	default:
		return NewBymlScalar(val)
	}
}

// Binary layout mirrors aamp.go's: a small self-describing tree codec,
// sufficient to round-trip within this pipeline; not byte-identical to the
// console format.
const bymlBinaryMagic = "BYML"

const (
	bymlTagMap byte = iota + 1
	bymlTagArray
	bymlTagNil
	bymlTagBool
	bymlTagInt
	bymlTagFloat
	bymlTagString
)

// MarshalBymlBinary serializes n to the compiled binary form.
func MarshalBymlBinary(n *BymlNode) []byte {
	var buf bytes.Buffer
	buf.WriteString(bymlBinaryMagic)
	writeBymlNode(&buf, n)
	return buf.Bytes()
}

func writeBymlNode(buf *bytes.Buffer, n *BymlNode) {
	switch {
	case n.IsMap():
		buf.WriteByte(bymlTagMap)
		keys := make([]string, 0, len(n.Map))
		for k := range n.Map {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		binary.Write(buf, binary.BigEndian, uint32(len(keys)))
		for _, k := range keys {
			writeAampString(buf, k)
			writeBymlNode(buf, n.Map[k])
		}
	case n.IsArray():
		buf.WriteByte(bymlTagArray)
		binary.Write(buf, binary.BigEndian, uint32(len(n.Array)))
		for _, v := range n.Array {
			writeBymlNode(buf, v)
		}
	default:
		writeBymlScalar(buf, n.Value)
	}
}

func writeBymlScalar(buf *bytes.Buffer, v interface{}) {
	switch val := v.(type) {
	case nil:
		buf.WriteByte(bymlTagNil)
	case bool:
		buf.WriteByte(bymlTagBool)
		if val {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case int:
		buf.WriteByte(bymlTagInt)
		binary.Write(buf, binary.BigEndian, int64(val))
	case int64:
		buf.WriteByte(bymlTagInt)
		binary.Write(buf, binary.BigEndian, val)
	case float64:
		buf.WriteByte(bymlTagFloat)
		binary.Write(buf, binary.BigEndian, val)
	case string:
		buf.WriteByte(bymlTagString)
		writeAampString(buf, val)
	default:
		buf.WriteByte(bymlTagNil)
	}
}

// UnmarshalBymlBinary parses the compiled form back into a tree.
func UnmarshalBymlBinary(data []byte) (*BymlNode, error) {
	if len(data) < 4 || string(data[0:4]) != bymlBinaryMagic {
		return nil, fmt.Errorf("codec: not a byml binary document")
	}
	r := &byteReader{data: data, pos: 4}
	return readBymlNode(r)
}

func readBymlNode(r *byteReader) (*BymlNode, error) {
	tag, err := r.readByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case bymlTagMap:
		n := NewBymlMap()
		count, err := r.readUint32()
		if err != nil {
			return nil, err
		}
		for i := uint32(0); i < count; i++ {
			key, err := r.readString()
			if err != nil {
				return nil, err
			}
			child, err := readBymlNode(r)
			if err != nil {
				return nil, err
			}
			n.Map[key] = child
		}
		return n, nil
	case bymlTagArray:
		n := NewBymlArray()
		count, err := r.readUint32()
		if err != nil {
			return nil, err
		}
		for i := uint32(0); i < count; i++ {
			child, err := readBymlNode(r)
			if err != nil {
				return nil, err
			}
			n.Array = append(n.Array, child)
		}
		return n, nil
	case bymlTagNil:
		return NewBymlScalar(nil), nil
	case bymlTagBool:
		b, err := r.readByte()
		return NewBymlScalar(b != 0), err
	case bymlTagInt:
		v, err := r.readInt64()
		return NewBymlScalar(v), err
	case bymlTagFloat:
		v, err := r.readFloat64()
		return NewBymlScalar(v), err
	case bymlTagString:
		s, err := r.readString()
		return NewBymlScalar(s), err
	default:
		return nil, fmt.Errorf("codec: unknown byml tag %d", tag)
	}
}
