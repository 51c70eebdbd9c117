/*Package sim provides a software ZDLL camera.

The simulated camera obeys the same contract as the real binding and is
used in tests and on machines without the vendor DLL.  Return codes for
every entry point are settable so both success conventions (0 and 1) and
arbitrary failures can be exercised.  It also counts live buffers, which
lets tests prove that no allocation outlives a capture call.
*/
package sim

import (
	"errors"

	"github.com/wl99/node-red-zdll/zdll"
)

// ErrNegativeSize is generated when a buffer of negative size is requested
var ErrNegativeSize = errors.New("buffer size must be nonnegative")

// Camera is a simulated ZDLL device.  The zero value is not useful; use New.
type Camera struct {
	// Manufacturer is reported by Init
	Manufacturer string

	// Width and Height are the simulated resolution
	Width, Height int

	// Meters is the simulated measurement zone count
	Meters int

	// InitCode, QueryCode, CaptureCode and ReleaseCode are the values
	// returned by the corresponding entry points
	InitCode, QueryCode, CaptureCode, ReleaseCode int

	// CombinedInit makes Init report resolution and meter count itself,
	// mimicking driver builds with the combined entry point
	CombinedInit bool

	live     int
	inits    int
	captures int
	releases int
	zones    []int32
}

// New returns a simulated camera with a VGA sensor and three meters,
// reporting success as 0.
func New() *Camera {
	return &Camera{
		Manufacturer: "ZDLL Simulated",
		Width:        640,
		Height:       480,
		Meters:       3,
	}
}

// Init implements zdll.Driver
func (c *Camera) Init() zdll.InitReport {
	c.inits++
	r := zdll.InitReport{Code: c.InitCode, Manufacturer: c.Manufacturer}
	if c.CombinedInit {
		r.Width = c.Width
		r.Height = c.Height
		r.Meters = c.Meters
		r.Combined = true
	}
	return r
}

// Query implements zdll.Driver
func (c *Camera) Query() zdll.QueryReport {
	return zdll.QueryReport{
		Code:   c.QueryCode,
		Width:  c.Width,
		Height: c.Height,
		Meters: c.Meters,
	}
}

// Capture fills each buffer with the 1-based index of its meter, so a
// consumer can tell which segment a persisted file came from.
func (c *Camera) Capture(zones []int32, bufs []zdll.Buffer) int {
	c.captures++
	c.zones = append([]int32(nil), zones...)
	if !zdll.DefaultSuccessSet.Ok(c.CaptureCode) {
		return c.CaptureCode
	}
	for i, b := range bufs {
		pix := b.Bytes()
		for j := range pix {
			pix[j] = byte(i + 1)
		}
	}
	return c.CaptureCode
}

// Release implements zdll.Driver
func (c *Camera) Release() int {
	c.releases++
	return c.ReleaseCode
}

// NewBuffer allocates a zero-filled Go-backed buffer
func (c *Camera) NewBuffer(n int) (zdll.Buffer, error) {
	if n < 0 {
		return nil, ErrNegativeSize
	}
	c.live++
	return &buffer{b: make([]byte, n), cam: c}, nil
}

// LiveBuffers returns the number of buffers allocated and not yet freed
func (c *Camera) LiveBuffers() int {
	return c.live
}

// Inits returns how many times Init has been called
func (c *Camera) Inits() int {
	return c.inits
}

// Captures returns how many times Capture has been called
func (c *Camera) Captures() int {
	return c.captures
}

// Releases returns how many times Release has been called
func (c *Camera) Releases() int {
	return c.releases
}

// LastZones returns the zone array passed to the most recent capture
func (c *Camera) LastZones() []int32 {
	return c.zones
}

type buffer struct {
	b     []byte
	cam   *Camera
	freed bool
}

func (b *buffer) Bytes() []byte {
	return b.b
}

func (b *buffer) Free() {
	if b.freed {
		return
	}
	b.freed = true
	b.cam.live--
}
