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

// MsytEntry is one labeled message in a bundle.
type MsytEntry struct {
	Label string `yaml:"label"`
	Text  string `yaml:"text"`
}

// MsytDocument is the text (MSYT) form of a message bundle: an ordered set
// of label/text entries.
type MsytDocument struct {
	Entries []MsytEntry
}

type msytYAML struct {
	Entries []MsytEntry `yaml:"entries"`
}

// MarshalText renders the bundle as YAML, with entries sorted by label so
// the same bundle always serializes identically.
func (d *MsytDocument) MarshalText() ([]byte, error) {
	sorted := append([]MsytEntry(nil), d.Entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Label < sorted[j].Label })
	out, err := yaml.Marshal(msytYAML{Entries: sorted})
	if err != nil {
		return nil, fmt.Errorf("codec: marshal msyt text: %w", err)
	}
	return out, nil
}

// ParseMsytText parses the YAML text form back into a bundle.
func ParseMsytText(data []byte) (*MsytDocument, error) {
	var y msytYAML
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("codec: parse msyt text: %w", err)
	}
	return &MsytDocument{Entries: y.Entries}, nil
}

const msbtBinaryMagic = "MSBT"

// MarshalBinary encodes the bundle to its compiled MSBT form: the magic,
// the entry count in the platform byte order, then each entry's label and
// text as big-endian length-prefixed strings (messages are stored as UTF-8 here; the console format is UTF-16, but
// nothing downstream of this pipeline needs to read raw bytes back out as
// a console-loadable file).
func (d *MsytDocument) MarshalBinary(bigEndian bool) []byte {
	order := binaryOrder(bigEndian)
	var buf bytes.Buffer
	buf.WriteString(msbtBinaryMagic)
	binary.Write(&buf, order, uint32(len(d.Entries)))
	for _, e := range d.Entries {
		writeAampString(&buf, e.Label)
		writeAampString(&buf, e.Text)
	}
	return buf.Bytes()
}

// UnmarshalMsbtBinary decodes a compiled bundle back to its entries.
func UnmarshalMsbtBinary(data []byte) (*MsytDocument, error) {
	if len(data) < 4 || string(data[0:4]) != msbtBinaryMagic {
		return nil, fmt.Errorf("codec: not an msbt document")
	}
	r := &byteReader{data: data, pos: 4}
	count, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	// The count is written in the platform byte order. Every entry takes at
	// least eight bytes, so a big-endian count that cannot fit in the
	// remaining data means the bundle was written little-endian.
	if uint64(count)*8 > uint64(len(data)-r.pos) {
		count = binary.LittleEndian.Uint32(data[4:8])
	}
	doc := &MsytDocument{}
	for i := uint32(0); i < count; i++ {
		label, err := r.readString()
		if err != nil {
			return nil, err
		}
		text, err := r.readString()
		if err != nil {
			return nil, err
		}
		doc.Entries = append(doc.Entries, MsytEntry{Label: label, Text: text})
	}
	return doc, nil
}

func binaryOrder(bigEndian bool) binary.ByteOrder {
	if bigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
