/*Package meter implements the capture session for ZDLL photometric cameras.

A Session owns the driver lifecycle.  It moves through three states:
uninitialized, initialized, and disposed.  Initialize is idempotent and
the driver stays initialized across captures; Finalize is terminal.  One
capture call fills one native buffer per meter in a single blocking
foreign call, and the requested meter indices only select which of those
already-filled buffers get persisted.  Buffers are freed before the
capture returns, success or failure; no reference escapes.

Only one session should be initialized per process.  The vendor DLL
holds process-global state and is not re-entrant, so a mutex serializes
every operation on a session.
*/
package meter

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/wl99/node-red-zdll/imgenc"
	"github.com/wl99/node-red-zdll/imgrec"
	"github.com/wl99/node-red-zdll/util"
	"github.com/wl99/node-red-zdll/zdll"
)

var (
	// ErrDisposed is generated when a disposed session is used.  There is
	// no way back; create a new session.
	ErrDisposed = errors.New("session has been disposed")

	// ErrNoTargets is generated when a capture is requested with no
	// meter indices
	ErrNoTargets = errors.New("capture requires at least one meter index")
)

// InitError is generated when the driver's init entry point returns a
// code outside the success set.  It is fatal; the session does not retry.
type InitError struct {
	// Code is the raw init return code
	Code int
}

func (e InitError) Error() string {
	return fmt.Sprintf("driver init returned code %d, outside the success set", e.Code)
}

// DeviceStateError is generated when the driver reports a nonphysical
// resolution or meter count.  Retrying does not help; this indicates a
// wedged device or driver.
type DeviceStateError struct {
	Width, Height, Meters int
}

func (e DeviceStateError) Error() string {
	return fmt.Sprintf("driver reported width=%d height=%d meters=%d; all must be positive", e.Width, e.Height, e.Meters)
}

// Target pairs one output path with one 1-based meter index.  Multiple
// targets share a single driver invocation.
type Target struct {
	// Path is the output path; it may embed imgrec.MeterPlaceholder
	Path string `json:"path"`

	// Meter is the requested 1-based meter index.  Out-of-range indices
	// are clamped, not rejected.
	Meter int `json:"meter"`
}

// Options describes one capture request.  It is not mutated.
type Options struct {
	// PathTemplate is the output path; it may embed imgrec.MeterPlaceholder,
	// which resolves per target.  The extension selects the container.
	PathTemplate string

	// Format is the pixel layout the driver fills buffers with
	Format imgenc.PixelFormat

	// Zones optionally overrides the per-meter zone selectors; see
	// BuildZones for the accepted shapes
	Zones []int32

	// Meters are the 1-based meter indices to persist, one output file
	// each, at PathTemplate
	Meters []int

	// Targets, when non-empty, names the output pairs explicitly and
	// PathTemplate/Meters are ignored.  The orchestration layer uses
	// this to give colliding meter indices distinct filenames.
	Targets []Target
}

// targets expands the options into the concrete target list
func (o Options) targets() []Target {
	if len(o.Targets) > 0 {
		return o.Targets
	}
	ts := make([]Target, 0, len(o.Meters))
	for _, m := range o.Meters {
		ts = append(ts, Target{Path: o.PathTemplate, Meter: m})
	}
	return ts
}

// DeviceStatus is the cached device metadata
type DeviceStatus struct {
	Manufacturer string `json:"manufacturer"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Meters       int    `json:"meters"`
}

// Session drives the ZDLL camera through init, capture and release
type Session struct {
	mu  sync.Mutex
	drv zdll.Driver

	// Success is the set of driver codes treated as success.  Some
	// driver builds report success as 0, others as 1; both are accepted
	// by default.
	Success zdll.SuccessSet

	// Recorder writes capture artifacts to disk
	Recorder *imgrec.Recorder

	manufacturer string
	width        int
	height       int
	meters       int
	initialized  bool
	disposed     bool
}

// NewSession returns a session around the given driver with the default
// success set and a recorder that creates missing folders.
func NewSession(d zdll.Driver) *Session {
	return &Session{
		drv:      d,
		Success:  zdll.DefaultSuccessSet,
		Recorder: &imgrec.Recorder{MakeDirs: true},
	}
}

// Initialize connects to the driver and caches the device metadata.  It
// is idempotent while the session is live and fails with ErrDisposed
// afterwards.
func (s *Session) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialize()
}

func (s *Session) initialize() error {
	if s.disposed {
		return ErrDisposed
	}
	if s.initialized {
		return nil
	}
	r := s.drv.Init()
	if !s.Success.Ok(r.Code) {
		return InitError{Code: r.Code}
	}
	s.manufacturer = r.Manufacturer
	if r.Combined {
		if err := s.setDims(r.Width, r.Height, r.Meters); err != nil {
			return err
		}
	} else if err := s.refresh(); err != nil {
		return err
	}
	s.initialized = true
	return nil
}

// refresh re-queries the resolution and meter count.  The driver may
// legitimately change these between calls, so this runs before every
// capture.
func (s *Session) refresh() error {
	q := s.drv.Query()
	if err := s.Success.Err(q.Code); err != nil {
		return err
	}
	return s.setDims(q.Width, q.Height, q.Meters)
}

func (s *Session) setDims(w, h, m int) error {
	if w <= 0 || h <= 0 || m < 1 {
		return DeviceStateError{Width: w, Height: h, Meters: m}
	}
	s.width = w
	s.height = h
	s.meters = m
	return nil
}

// Status reports the device metadata, initializing the driver and
// refreshing the metadata if needed
func (s *Session) Status() (DeviceStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.initialize(); err != nil {
		return DeviceStatus{}, err
	}
	if err := s.refresh(); err != nil {
		return DeviceStatus{}, err
	}
	return DeviceStatus{
		Manufacturer: s.manufacturer,
		Width:        s.width,
		Height:       s.height,
		Meters:       s.meters,
	}, nil
}

// Capture performs one driver capture call and persists one file per
// requested meter index.  The driver call is shared: every target reads
// from the buffers of the same invocation.  When the driver call fails,
// each target gets an unsuccessful result and nothing is written.  When
// it succeeds, targets are encoded independently; one target's write
// failure does not stop the others, and the failures are joined into the
// returned error.
func (s *Session) Capture(opts Options) ([]Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.initialize(); err != nil {
		return nil, err
	}
	targets := opts.targets()
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}
	if err := s.refresh(); err != nil {
		return nil, err
	}
	zones, err := BuildZones(opts.Zones, s.meters)
	if err != nil {
		return nil, err
	}
	code, segs, err := s.captureAll(zones, opts.Format)
	if err != nil {
		return nil, err
	}
	ok := s.Success.Ok(code)
	results := make([]Result, 0, len(targets))
	var failures []string
	for _, t := range targets {
		idx := util.ClampInt(t.Meter-1, 0, s.meters-1)
		res := Result{
			Code:         code,
			Success:      ok,
			Manufacturer: s.manufacturer,
			Width:        s.width,
			Height:       s.height,
			Meters:       s.meters,
			Meter:        idx + 1,
			Path:         s.Recorder.Path(t.Path, idx+1),
		}
		if ok {
			data, err := imgenc.EncodeBytes(res.Path, segs[idx], s.width, s.height, opts.Format)
			if err == nil {
				err = s.Recorder.Write(res.Path, data)
			}
			if err != nil {
				res.Error = err.Error()
				failures = append(failures, fmt.Sprintf("%s: %v", res.Path, err))
			} else {
				res.Saved = true
				res.Checksum = checksum(data)
			}
		}
		results = append(results, res)
	}
	if len(failures) > 0 {
		return results, errors.New(strings.Join(failures, "\n"))
	}
	return results, nil
}

// Snap performs one capture and returns a copy of the selected meter's
// pixels without touching the filesystem.  The index is clamped the same
// way Capture clamps it.
func (s *Session) Snap(meterIdx int, pf imgenc.PixelFormat, zones []int32) ([]byte, int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.initialize(); err != nil {
		return nil, 0, 0, err
	}
	if err := s.refresh(); err != nil {
		return nil, 0, 0, err
	}
	zs, err := BuildZones(zones, s.meters)
	if err != nil {
		return nil, 0, 0, err
	}
	code, segs, err := s.captureAll(zs, pf)
	if err != nil {
		return nil, 0, 0, err
	}
	if err := s.Success.Err(code); err != nil {
		return nil, 0, 0, err
	}
	idx := util.ClampInt(meterIdx-1, 0, s.meters-1)
	return segs[idx], s.width, s.height, nil
}

// captureAll allocates one native buffer per meter, performs the single
// blocking capture call, and returns the raw driver code plus Go-owned
// copies of every segment.  The native buffers never outlive this
// function, success or failure.
func (s *Session) captureAll(zones []int32, pf imgenc.PixelFormat) (int, [][]byte, error) {
	bpp := pf.BytesPerPixel()
	if bpp == 0 {
		return 0, nil, imgenc.UnsupportedFormatError{Format: pf}
	}
	rowBytes, ok := util.MulNonNeg(s.width, bpp)
	if !ok {
		return 0, nil, imgenc.ErrSizeOverflow
	}
	size, ok := util.MulNonNeg(rowBytes, s.height)
	if !ok {
		return 0, nil, imgenc.ErrSizeOverflow
	}
	bufs := make([]zdll.Buffer, 0, s.meters)
	defer func() {
		for _, b := range bufs {
			b.Free()
		}
	}()
	for i := 0; i < s.meters; i++ {
		b, err := s.drv.NewBuffer(size)
		if err != nil {
			return 0, nil, err
		}
		bufs = append(bufs, b)
	}
	code := s.drv.Capture(zones, bufs)
	if !s.Success.Ok(code) {
		return code, nil, nil
	}
	segs := make([][]byte, s.meters)
	for i, b := range bufs {
		segs[i] = append([]byte(nil), b.Bytes()...)
	}
	return code, segs, nil
}

// Finalize releases the driver if it is initialized and disposes the
// session.  It is idempotent and best-effort: release failures are
// logged, never returned.
func (s *Session) Finalize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	if s.initialized {
		if err := s.Success.Err(s.drv.Release()); err != nil {
			log.Printf("zdll release: %v", err)
		}
		s.initialized = false
	}
	s.disposed = true
}
