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
	"math"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AampSentinel is the first line of every AAMP text document. It is the
// dispatch signal used to tell an AAMP document apart from a BYML one when
// the file extension alone (".yml") doesn't say which.
const AampSentinel = "!io_version: 7"

// AampParam is a leaf value: bool, int, float64, string, or []float64 for
// vector/color/curve-shaped values.
type AampParam = interface{}

// AampObject is one node of a parameter-IO tree: a set of named leaf
// parameters plus named child objects.
type AampObject struct {
	Name    string
	Params  map[string]AampParam
	Objects map[string]*AampObject
}

// NewAampObject returns an empty, ready-to-use object named name.
func NewAampObject(name string) *AampObject {
	return &AampObject{Name: name, Params: map[string]AampParam{}, Objects: map[string]*AampObject{}}
}

// Get returns a direct child object by name.
func (o *AampObject) Get(name string) (*AampObject, bool) {
	c, ok := o.Objects[name]
	return c, ok
}

// Param returns a leaf parameter by name.
func (o *AampObject) Param(name string) (AampParam, bool) {
	v, ok := o.Params[name]
	return v, ok
}

// AampDocument is a full parameter archive: a root object. The version
// line is not stored here; it appears only as the text form's AampSentinel.
type AampDocument struct {
	Root *AampObject
}

// aampYAML mirrors AampObject for yaml.v3 marshaling, keeping map key order
// stable by sorting on encode.
type aampYAML struct {
	Params  map[string]interface{}      `yaml:"params,omitempty"`
	Objects map[string]*aampYAMLWrapper `yaml:"objects,omitempty"`
}

type aampYAMLWrapper struct {
	Name    string                      `yaml:"name"`
	Params  map[string]interface{}      `yaml:"params,omitempty"`
	Objects map[string]*aampYAMLWrapper `yaml:"objects,omitempty"`
}

func toYAML(o *AampObject) *aampYAMLWrapper {
	w := &aampYAMLWrapper{Name: o.Name, Params: o.Params, Objects: map[string]*aampYAMLWrapper{}}
	for k, v := range o.Objects {
		w.Objects[k] = toYAML(v)
	}
	return w
}

func fromYAML(w *aampYAMLWrapper) *AampObject {
	o := &AampObject{Name: w.Name, Params: w.Params, Objects: map[string]*AampObject{}}
	if o.Params == nil {
		o.Params = map[string]AampParam{}
	}
	for k, v := range w.Objects {
		o.Objects[k] = fromYAML(v)
	}
	return o
}

// MarshalText renders the document as the sentinel-prefixed YAML form used
// for source-tree `.yml` files.
func (d *AampDocument) MarshalText() ([]byte, error) {
	body, err := yaml.Marshal(toYAML(d.Root))
	if err != nil {
		return nil, fmt.Errorf("codec: marshal aamp text: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(AampSentinel)
	buf.WriteByte('\n')
	buf.Write(body)
	return buf.Bytes(), nil
}

// ParseAampText parses the sentinel-prefixed YAML form back into a document.
func ParseAampText(data []byte) (*AampDocument, error) {
	text := string(data)
	if !strings.HasPrefix(strings.TrimLeft(text, " \t\r\n"), "!io_version") {
		return nil, fmt.Errorf("codec: not an aamp text document")
	}
	_, body, _ := strings.Cut(text, "\n")
	var w aampYAMLWrapper
	if err := yaml.Unmarshal([]byte(body), &w); err != nil {
		return nil, fmt.Errorf("codec: parse aamp text: %w", err)
	}
	return &AampDocument{Root: fromYAML(&w)}, nil
}

// IsAampText reports whether data carries the AAMP text sentinel.
func IsAampText(data []byte) bool {
	return strings.HasPrefix(strings.TrimLeft(string(data), " \t\r\n"), "!io_version")
}

// Binary layout: a compact, self-describing tree serialization. Not
// byte-for-bit identical to the console format; internal round-tripping is
// all that is required since no file gets byte-compared against a
// reference binary.
const aampBinaryMagic = "AAMP"

// MarshalBinary serializes the document to the compiled binary form.
func (d *AampDocument) MarshalBinary() []byte {
	var buf bytes.Buffer
	buf.WriteString(aampBinaryMagic)
	writeAampObject(&buf, d.Root)
	return buf.Bytes()
}

func writeAampObject(buf *bytes.Buffer, o *AampObject) {
	writeAampString(buf, o.Name)

	names := sortedKeys(o.Params)
	binary.Write(buf, binary.BigEndian, uint32(len(names)))
	for _, name := range names {
		writeAampString(buf, name)
		writeAampValue(buf, o.Params[name])
	}

	childNames := sortedObjKeys(o.Objects)
	binary.Write(buf, binary.BigEndian, uint32(len(childNames)))
	for _, name := range childNames {
		writeAampObject(buf, o.Objects[name])
	}
}

func writeAampString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.BigEndian, uint32(len(s)))
	buf.WriteString(s)
}

func writeAampValue(buf *bytes.Buffer, v AampParam) {
	switch val := v.(type) {
	case bool:
		buf.WriteByte('b')
		if val {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case int:
		buf.WriteByte('i')
		binary.Write(buf, binary.BigEndian, int64(val))
	case int64:
		buf.WriteByte('i')
		binary.Write(buf, binary.BigEndian, val)
	case float64:
		buf.WriteByte('f')
		binary.Write(buf, binary.BigEndian, val)
	case string:
		buf.WriteByte('s')
		writeAampString(buf, val)
	case []float64:
		buf.WriteByte('v')
		binary.Write(buf, binary.BigEndian, uint32(len(val)))
		for _, f := range val {
			binary.Write(buf, binary.BigEndian, f)
		}
	default:
		buf.WriteByte('n')
	}
}

// UnmarshalAampBinary parses the compiled form back into a document.
func UnmarshalAampBinary(data []byte) (*AampDocument, error) {
	if len(data) < 4 || string(data[0:4]) != aampBinaryMagic {
		return nil, fmt.Errorf("codec: not an aamp binary document")
	}
	r := &byteReader{data: data, pos: 4}
	root, err := readAampObject(r)
	if err != nil {
		return nil, err
	}
	return &AampDocument{Root: root}, nil
}

func readAampObject(r *byteReader) (*AampObject, error) {
	name, err := r.readString()
	if err != nil {
		return nil, err
	}
	o := NewAampObject(name)

	paramCount, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < paramCount; i++ {
		pname, err := r.readString()
		if err != nil {
			return nil, err
		}
		v, err := readAampValue(r)
		if err != nil {
			return nil, err
		}
		o.Params[pname] = v
	}

	childCount, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < childCount; i++ {
		child, err := readAampObject(r)
		if err != nil {
			return nil, err
		}
		o.Objects[child.Name] = child
	}
	return o, nil
}

func readAampValue(r *byteReader) (AampParam, error) {
	tag, err := r.readByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case 'b':
		b, err := r.readByte()
		return b != 0, err
	case 'i':
		v, err := r.readInt64()
		return v, err
	case 'f':
		v, err := r.readFloat64()
		return v, err
	case 's':
		return r.readString()
	case 'v':
		n, err := r.readUint32()
		if err != nil {
			return nil, err
		}
		out := make([]float64, n)
		for i := range out {
			out[i], err = r.readFloat64()
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	case 'n':
		return nil, nil
	default:
		return nil, fmt.Errorf("codec: unknown aamp value tag %q", tag)
	}
}

func sortedKeys(m map[string]AampParam) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedObjKeys(m map[string]*AampObject) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParamAsString coerces a parameter to a string, used for LinkTarget values
// which are always resource names.
func ParamAsString(v AampParam) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// ParamAsBool coerces a parameter to a bool, with numeric/string fallbacks
// since hand-edited text forms sometimes carry "1"/"0" or "true"/"false".
func ParamAsBool(v AampParam) bool {
	switch val := v.(type) {
	case bool:
		return val
	case int:
		return val != 0
	case int64:
		return val != 0
	case string:
		b, err := strconv.ParseBool(val)
		return err == nil && b
	default:
		return false
	}
}

// byteReader is a small cursor over a byte slice shared by the AAMP and
// BYML binary decoders.
type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) readByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("codec: unexpected end of binary data")
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *byteReader) readUint32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, fmt.Errorf("codec: unexpected end of binary data")
	}
	v := binary.BigEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *byteReader) readInt64() (int64, error) {
	if r.pos+8 > len(r.data) {
		return 0, fmt.Errorf("codec: unexpected end of binary data")
	}
	v := int64(binary.BigEndian.Uint64(r.data[r.pos : r.pos+8]))
	r.pos += 8
	return v, nil
}

func (r *byteReader) readFloat64() (float64, error) {
	if r.pos+8 > len(r.data) {
		return 0, fmt.Errorf("codec: unexpected end of binary data")
	}
	bits := binary.BigEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return math.Float64frombits(bits), nil
}

func (r *byteReader) readString() (string, error) {
	n, err := r.readUint32()
	if err != nil {
		return "", err
	}
	if r.pos+int(n) > len(r.data) {
		return "", fmt.Errorf("codec: unexpected end of binary data")
	}
	s := string(r.data[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}
