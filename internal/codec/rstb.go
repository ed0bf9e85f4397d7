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
	"strings"
	"sync"
)

// StockHashTable answers whether a canonical resource name belongs to the
// unmodified game data, which gates whether a missing size estimate is
// grounds for dropping an RSTB entry outright (stock files must always
// keep some entry; modded files with no estimate simply don't need one).
type StockHashTable interface {
	IsModded(canonicalName string) bool
}

// SizeEstimator computes the resource size an RSTB entry should record for
// a compiled artifact, when one can be computed at all.
type SizeEstimator interface {
	Estimate(canonicalName string, compiled []byte) (size uint32, ok bool)
}

// EmptyStockHashTable treats every resource as modded, which is the
// correct default for a mod project that carries no bundled copy of the
// base game's resource listing: every file the pipeline touches must be
// the mod's own.
type EmptyStockHashTable struct{}

// IsModded always returns true.
func (EmptyStockHashTable) IsModded(string) bool { return true }

// HeuristicSizeEstimator computes a conservative padded estimate from the
// compiled byte length, scaled per extension the way each binary format's
// in-memory footprint tends to exceed its serialized size (structures with
// pointers/alignment cost more live than on disk).
type HeuristicSizeEstimator struct{}

var rstbPaddingFactor = map[string]float64{
	"bfres":  1.15,
	"hkrb":   1.05,
	"hkcl":   1.05,
	"hksc":   1.05,
	"bphysics": 1.1,
	"baiprog":  1.2,
	"bas":      1.2,
}

// Estimate implements SizeEstimator with the heuristic above. It reports
// ok for any non-empty compiled payload and no estimate for an empty one;
// callers that want "no estimate" behavior (e.g. for archive containers,
// which are excluded earlier) should not call Estimate at all.
func (HeuristicSizeEstimator) Estimate(canonicalName string, compiled []byte) (uint32, bool) {
	if len(compiled) == 0 {
		return 0, false
	}
	ext := ""
	if idx := strings.LastIndexByte(canonicalName, '.'); idx >= 0 {
		ext = canonicalName[idx+1:]
	}
	factor, ok := rstbPaddingFactor[ext]
	if !ok {
		factor = 1.08
	}
	size := uint32(float64(len(compiled))*factor) + 32
	return size, true
}

// RSTB is the sparse canonical-name -> compiled-size map, keyed by the
// CRC32 hash of the canonical name. All mutation goes through Update so
// the monotonic-increase-or-remove-on-no-estimate rule is enforced in one
// place, matching the single-mutex sharing model used everywhere else a
// goroutine pool touches shared state.
type RSTB struct {
	mu        sync.Mutex
	BigEndian bool
	entries   map[uint32]uint32
}

// NewRSTB returns an empty table for the given platform endianness.
func NewRSTB(bigEndian bool) *RSTB {
	return &RSTB{BigEndian: bigEndian, entries: map[uint32]uint32{}}
}

// Get returns the current size recorded for name, if any.
func (r *RSTB) Get(name string) (uint32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.entries[HashName(name)]
	return v, ok
}

// Len reports the number of entries currently recorded.
func (r *RSTB) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Update applies one resource's new estimate under the table's rule: an
// entry only ever grows (never shrinks) unless the resource has no
// estimate at all and isn't part of the stock game, in which case its
// entry (if any) is dropped rather than left stale.
func (r *RSTB) Update(canonicalName string, size uint32, hasEstimate bool, stock StockHashTable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	hash := HashName(canonicalName)

	if !hasEstimate {
		if !stock.IsModded(canonicalName) {
			return
		}
		delete(r.entries, hash)
		return
	}

	if existing, ok := r.entries[hash]; ok && existing >= size {
		return
	}
	r.entries[hash] = size
}

// Remove drops an entry unconditionally, used when a source file is
// deleted from the mod tree.
func (r *RSTB) Remove(canonicalName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, HashName(canonicalName))
}

const rstbBinaryMagic = "RSTB"

// Marshal serializes the table as a sorted (hash, size) pair list so the
// same logical table always produces identical bytes.
func (r *RSTB) Marshal() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	order := binaryOrder(r.BigEndian)
	hashes := make([]uint32, 0, len(r.entries))
	for h := range r.entries {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })

	var buf bytes.Buffer
	buf.WriteString(rstbBinaryMagic)
	binary.Write(&buf, order, uint32(len(hashes)))
	for _, h := range hashes {
		binary.Write(&buf, order, h)
		binary.Write(&buf, order, r.entries[h])
	}
	return buf.Bytes()
}

// UnmarshalRSTB parses a previously written table.
func UnmarshalRSTB(data []byte, bigEndian bool) (*RSTB, error) {
	if len(data) < 8 || string(data[0:4]) != rstbBinaryMagic {
		return nil, fmt.Errorf("codec: not an rstb table")
	}
	order := binaryOrder(bigEndian)
	count := order.Uint32(data[4:8])
	entries := make(map[uint32]uint32, count)
	pos := 8
	for i := uint32(0); i < count; i++ {
		if pos+8 > len(data) {
			return nil, fmt.Errorf("codec: truncated rstb table")
		}
		hash := order.Uint32(data[pos : pos+4])
		size := order.Uint32(data[pos+4 : pos+8])
		entries[hash] = size
		pos += 8
	}
	return &RSTB{BigEndian: bigEndian, entries: entries}, nil
}
