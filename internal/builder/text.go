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

	"botwbuild/internal/codec"
)

// BuildLanguageBundle compiles every MSYT document for one language into a
// Msg_<lang>.product.ssarc archive (Yaz0-compressed, per the "s" prefix
// convention) wrapped in an outer Bootup_<lang>.pack. It also returns the
// inner ssarc's compiled bytes, needed to update the RSTB under the
// corresponding non-"ss" canonical name (Message/Msg_<lang>.product.sarc).
//
// msyts maps a message file's stem (e.g. "ErrorMessage") to its parsed
// MSYT document.
func BuildLanguageBundle(lang string, msyts map[string]*codec.MsytDocument, bigEndian bool) (bundle []byte, innerSsarc []byte, err error) {
	inner := codec.NewSarcFile(bigEndian)

	names := make([]string, 0, len(msyts))
	for n := range msyts {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		bin := msyts[name].MarshalBinary(bigEndian)
		inner.Set(name+".msbt", bin)
	}

	ssarcData := inner.Marshal()
	if codec.ShouldCompress("ssarc", ssarcData) {
		ssarcData = codec.Yaz0Compress(ssarcData)
	}

	outer := codec.NewSarcFile(bigEndian)
	outer.Set(fmt.Sprintf("Message/Msg_%s.product.ssarc", lang), ssarcData)

	return outer.Marshal(), ssarcData, nil
}

// LanguageBundleName returns the outer pack's file name for a language.
func LanguageBundleName(lang string) string {
	return fmt.Sprintf("Bootup_%s.pack", lang)
}
