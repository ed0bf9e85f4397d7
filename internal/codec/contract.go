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

// Package codec implements the binary/text formats the build pipeline
// compiles between: AAMP parameter trees, BYML documents, MSBT/MSYT
// message bundles, SARC archives, Yaz0 compression, CRC32 name hashing,
// and the resource size table (RSTB). None of these formats has a
// published Go module; internal/builder depends only on the small
// contracts below so a future swap-in of a real library stays possible.
package codec

// DocumentKind identifies which compiler a source file's contents need.
type DocumentKind int

const (
	// KindUnknown means neither Sniff nor SniffBinary recognized the document.
	KindUnknown DocumentKind = iota
	KindAamp
	KindByml
	KindMsbt
)

// SniffBinary is Sniff's inverse: it inspects a compiled document's magic
// bytes to decide which decompiler owns it. Used by the Unbuilder, which
// only ever has the binary form in hand.
func SniffBinary(data []byte) DocumentKind {
	switch {
	case len(data) >= 4 && string(data[0:4]) == aampBinaryMagic:
		return KindAamp
	case len(data) >= 4 && string(data[0:4]) == bymlBinaryMagic:
		return KindByml
	case len(data) >= 4 && string(data[0:4]) == msbtBinaryMagic:
		return KindMsbt
	default:
		return KindUnknown
	}
}

// Sniff inspects a text-form document's leading bytes and its source
// extension (without a leading dot, with any ".yml" suffix already
// stripped) to decide which compiler owns it. The sentinel line takes
// priority since it is unambiguous; the extension is the fallback for
// documents that don't carry one (e.g. hand-written BYML used outside the
// Actor/Event resolvers' own naming conventions).
func Sniff(data []byte, ext string) DocumentKind {
	if IsAampText(data) {
		return KindAamp
	}
	switch ext {
	case "bxml", "baiprog", "baischedule", "baniminfo", "baslist", "batcllist",
		"bawareness", "bbonectrl", "bchemical", "bdmgparam", "bdrop",
		"bgparamlist", "blifecondition", "blod", "bmodellist", "bphysics",
		"brgbw", "brgconfiglist", "brecipe", "bshop", "bumii", "bxml.yml":
		return KindAamp
	case "sbyml", "byml", "bgyml", "info", "info.yml":
		return KindByml
	}
	return KindUnknown
}

// CompileText compiles a recognized text-form document to its binary
// artifact. Callers that already know the kind (the Actor/Event resolvers
// do) should skip Sniff and call the relevant Marshal function directly.
func CompileText(data []byte, kind DocumentKind) ([]byte, error) {
	switch kind {
	case KindAamp:
		doc, err := ParseAampText(data)
		if err != nil {
			return nil, err
		}
		return doc.MarshalBinary(), nil
	case KindByml:
		node, err := ParseBymlText(data)
		if err != nil {
			return nil, err
		}
		return MarshalBymlBinary(node), nil
	default:
		return nil, errUnknownKind
	}
}

var errUnknownKind = &kindError{}

type kindError struct{}

func (*kindError) Error() string { return "codec: document kind could not be determined" }
