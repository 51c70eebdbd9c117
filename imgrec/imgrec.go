// Package imgrec contains the output recorder used to persist capture artifacts to disk.
package imgrec

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// MeterPlaceholder is the token in an output path template that is
// replaced with the 1-based meter index.
const MeterPlaceholder = "{{meter}}"

// ResolvePath replaces every MeterPlaceholder in template with the meter
// index.  A template without the placeholder resolves to itself, which is
// fine for single-meter captures and makes multi-meter ones overwrite the
// same file; the caller decides whether that is a mistake.
func ResolvePath(template string, meter int) string {
	return strings.ReplaceAll(template, MeterPlaceholder, strconv.Itoa(meter))
}

// Recorder writes capture artifacts with per-meter resolved filenames.
// It is not thread safe.
type Recorder struct {
	// Root is prepended to relative output paths.  Absolute paths are
	// used as-is.
	Root string

	// MakeDirs creates missing parent folders on write
	MakeDirs bool
}

// Path resolves template for the given meter, underneath Root when the
// result is relative
func (r *Recorder) Path(template string, meter int) string {
	p := ResolvePath(template, meter)
	if r.Root != "" && !filepath.IsAbs(p) {
		p = filepath.Join(r.Root, p)
	}
	return p
}

// Write persists one artifact.  Folders are created with permission 777
// and files with 666; if the results are more restrictive than you want
// on linux, your umask is to blame.
func (r *Recorder) Write(fn string, data []byte) error {
	if r.MakeDirs {
		if err := os.MkdirAll(filepath.Dir(fn), 0777); err != nil {
			return err
		}
	}
	return os.WriteFile(fn, data, 0666)
}
