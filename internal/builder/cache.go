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
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CompileCache memoizes path -> compiled bytes across a single build,
// bounded by an LRU so very large mod trees don't pin every compiled
// artifact in memory at once. A miss is never a correctness problem, only
// wasted work, which is why eviction is safe here unlike in the RSTB.
type CompileCache struct {
	mu      sync.Mutex
	keyLock map[string]*sync.Mutex
	lru     *lru.Cache[string, []byte]
}

// NewCompileCache returns a cache holding up to size compiled entries.
func NewCompileCache(size int) *CompileCache {
	c, err := lru.New[string, []byte](size)
	if err != nil {
		// Only non-positive sizes error, which NewCompileCache's callers
		// never pass; fall back to a minimal cache rather than panicking.
		c, _ = lru.New[string, []byte](1)
	}
	return &CompileCache{keyLock: map[string]*sync.Mutex{}, lru: c}
}

// Get returns a cached compiled artifact for path, if present.
func (c *CompileCache) Get(path string) ([]byte, bool) {
	return c.lru.Get(path)
}

// Set stores a compiled artifact for path.
func (c *CompileCache) Set(path string, data []byte) {
	c.lru.Add(path, data)
}

// lockFor returns the per-key mutex path's compilation should hold,
// creating it if needed. This lets unrelated paths compile in parallel
// while guaranteeing at most one compile of a given path runs at a time
// (a path evicted from the LRU is compiled again on its next request).
func (c *CompileCache) lockFor(path string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.keyLock[path]
	if !ok {
		l = &sync.Mutex{}
		c.keyLock[path] = l
	}
	return l
}

// GetOrCompile returns the cached artifact for path, compiling it via fn
// under a per-path lock if it isn't already cached.
func (c *CompileCache) GetOrCompile(path string, fn func() ([]byte, error)) ([]byte, error) {
	if data, ok := c.Get(path); ok {
		return data, nil
	}
	lock := c.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	if data, ok := c.Get(path); ok {
		return data, nil
	}
	data, err := fn()
	if err != nil {
		return nil, err
	}
	c.Set(path, data)
	return data, nil
}
