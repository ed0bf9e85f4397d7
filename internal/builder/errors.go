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
	"errors"
	"fmt"
)

// ErrNoLinkTarget is returned by the Actor Resolver when a .bxml.yml
// document has no LinkTarget object at all.
var ErrNoLinkTarget = errors.New("builder: actor link has no LinkTarget object")

// ErrMissingBootupEventInfo is returned by the Pack Builder when
// Bootup.pack is assembled without an Event/EventInfo.product.sbyml entry.
var ErrMissingBootupEventInfo = errors.New("builder: Bootup.pack requires Event/EventInfo.product.sbyml")

// BuildError is a stage-scoped error: the first failure in a concurrent
// stage wins and is wrapped in one of these so callers can tell which
// stage produced it without parsing strings.
type BuildError struct {
	Stage string
	Path  string
	Msg   string
	Err   error
}

func (e *BuildError) Error() string {
	switch {
	case e.Err != nil && e.Path != "":
		return fmt.Sprintf("builder: %s: %s: %v", e.Stage, e.Path, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("builder: %s: %v", e.Stage, e.Err)
	case e.Path != "":
		return fmt.Sprintf("builder: %s: %s: %s", e.Stage, e.Path, e.Msg)
	default:
		return fmt.Sprintf("builder: %s: %s", e.Stage, e.Msg)
	}
}

func (e *BuildError) Unwrap() error { return e.Err }

// firstError collects errors from a fan-out stage and keeps only the
// first one received, matching the "first-error-wins" sequencing spec.md
// mandates instead of errors.Join's accumulate-everything behavior.
type firstError struct {
	ch  chan error
	set bool
	err error
}

func newFirstError() *firstError {
	return &firstError{ch: make(chan error, 1)}
}

func (f *firstError) Send(err error) {
	if err == nil {
		return
	}
	select {
	case f.ch <- err:
	default:
	}
}

func (f *firstError) Err() error {
	select {
	case err := <-f.ch:
		return err
	default:
		return nil
	}
}
