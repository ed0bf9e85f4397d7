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

// Package progress prints build summaries to a terminal, suppressing color
// codes when stdout isn't actually a terminal.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

const (
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorRed    = "\x1b[31m"
	colorReset  = "\x1b[0m"
)

// Reporter writes build progress lines to an output stream, colorizing
// them only when that stream is attached to a terminal.
type Reporter struct {
	out    io.Writer
	colors bool
}

// NewReporter returns a Reporter writing to out. Pass os.Stdout to get
// isatty-based color detection; any other writer disables color.
func NewReporter(out io.Writer) *Reporter {
	colors := false
	if f, ok := out.(*os.File); ok {
		colors = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Reporter{out: out, colors: colors}
}

func (r *Reporter) colorize(code, text string) string {
	if !r.colors {
		return text
	}
	return code + text + colorReset
}

// Wrote reports a single compiled/copied artifact and its size.
func (r *Reporter) Wrote(path string, size int) {
	fmt.Fprintf(r.out, "%s %s (%s)\n", r.colorize(colorGreen, "wrote"), path, humanize.Bytes(uint64(size)))
}

// Skipped reports a file left untouched by the incremental pass.
func (r *Reporter) Skipped(path string) {
	fmt.Fprintf(r.out, "%s %s\n", r.colorize(colorYellow, "skip "), path)
}

// Warn reports a non-fatal build warning.
func (r *Reporter) Warn(format string, args ...interface{}) {
	fmt.Fprintf(r.out, "%s %s\n", r.colorize(colorYellow, "warn "), fmt.Sprintf(format, args...))
}

// Failed reports a fatal build error.
func (r *Reporter) Failed(format string, args ...interface{}) {
	fmt.Fprintf(r.out, "%s %s\n", r.colorize(colorRed, "error"), fmt.Sprintf(format, args...))
}

// Summary reports the terminal line of a build: total files changed,
// archives rewritten, and total bytes written.
func (r *Reporter) Summary(filesChanged, archivesWritten int, totalBytes int64) {
	fmt.Fprintf(r.out, "%s %d files changed, %d archives rewritten, %s written\n",
		r.colorize(colorGreen, "done "), filesChanged, archivesWritten, humanize.Bytes(uint64(totalBytes)))
}
