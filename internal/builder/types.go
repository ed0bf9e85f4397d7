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

// Package builder implements the incremental mod build pipeline: source
// scan, Actor/Event/Text/Pack compilation, RSTB maintenance, and the
// structural inverse (Unbuilder) that turns a built mod back into an
// editable source tree.
package builder

import (
	"fmt"
	"log/slog"

	"botwbuild/internal/cachedb"
	"botwbuild/internal/codec"
	"botwbuild/pkg/config"

	"github.com/google/uuid"
)

// WarnLevel controls how the pipeline reacts to a non-fatal build warning.
type WarnLevel int

const (
	// WarnNormal logs a warning and continues.
	WarnNormal WarnLevel = iota
	// WarnIgnore suppresses the warning entirely.
	WarnIgnore
	// WarnHard promotes every warning to a build-ending error.
	WarnHard
)

// CompiledArtifact is one unit of output the pipeline produced: compiled
// bytes plus the canonical resource name they were compiled for.
type CompiledArtifact struct {
	CanonicalName string
	Data          []byte
	SourcePath    string
}

// Builder is the single in-memory context object threaded through every
// pipeline stage. It owns the shared mutable state (compile cache, RSTB)
// that multiple worker goroutines touch concurrently, and the read-only
// configuration and collaborators every stage consults.
type Builder struct {
	RunID string

	Config config.Config
	Log    *slog.Logger

	SourceRoot string
	OutputRoot string

	WarnLevel WarnLevel

	Cache *CompileCache
	RSTB  *codec.RSTB
	State *BuildState

	Stock     codec.StockHashTable
	Estimator codec.SizeEstimator

	History *cachedb.DB

	Metrics *Metrics

	// TitleActors/TitleEvents replace the compile-time defaults in
	// internal/botwconst when non-empty, letting a mod supply its own
	// always-resident actor set via `--title-actors`.
	TitleActors []string
	TitleEvents []string
}

// New constructs a Builder ready to run a single build. Run itself loads
// the previous build state and RSTB from OutputRoot.
func New(cfg config.Config, log *slog.Logger) *Builder {
	return &Builder{
		RunID:      uuid.NewString(),
		Config:     cfg,
		Log:        log,
		SourceRoot: cfg.Source,
		OutputRoot: cfg.Output,
		WarnLevel:  warnLevelFromConfig(cfg),
		Cache:      NewCompileCache(2048),
		RSTB:       codec.NewRSTB(cfg.BigEndian),
		Stock:      codec.EmptyStockHashTable{},
		Estimator:  codec.HeuristicSizeEstimator{},
	}
}

func warnLevelFromConfig(cfg config.Config) WarnLevel {
	switch {
	case cfg.HardWarnings:
		return WarnHard
	case cfg.IgnoreWarnings:
		return WarnIgnore
	default:
		return WarnNormal
	}
}

// Warn routes a build warning through the configured WarnLevel, returning
// a non-nil error only when WarnHard is in effect.
func (b *Builder) Warn(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	switch b.WarnLevel {
	case WarnIgnore:
		return nil
	case WarnHard:
		return &BuildError{Stage: "warn", Msg: msg}
	default:
		if b.Log != nil {
			b.Log.Warn(msg)
		}
		return nil
	}
}
