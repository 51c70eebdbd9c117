/*Package zdll describes the contract of the ZDLL photometric camera driver.

The vendor ships a 32-bit DLL with four entry points: init, query, capture,
and release.  This package does not bind the DLL itself; it defines the Go
shape of those calls so that the capture session can be run against either
the real binding (package zdll/native) or a software camera (package
zdll/sim).  All four entry points return a bare integer code.  The meaning
of that code is not uniform across driver builds: some report success as 0,
others as 1, so success is decided by a SuccessSet value rather than a
constant.
*/
package zdll

import (
	"fmt"

	"github.com/wl99/node-red-zdll/util"
)

// LengthOfManufacturerBuffer is the capacity, in wide characters, of the
// caller-provided buffer the init entry point writes the manufacturer
// name into.
const LengthOfManufacturerBuffer = 64

// InitReport is everything the driver tells us at init time.
type InitReport struct {
	// Code is the raw return code of the init entry point
	Code int

	// Manufacturer is the manufacturer string reported by the driver
	Manufacturer string

	// Width, Height and Meters are only populated when Combined is true;
	// some driver builds report them atomically at init, others require
	// a separate query call
	Width, Height, Meters int

	// Combined indicates the resolution and meter count above are valid
	Combined bool
}

// QueryReport is the resolution and meter count reported by the driver.
// The driver may legitimately change these between calls, so they are
// re-queried before every capture.
type QueryReport struct {
	// Code is the raw return code of the query entry point
	Code int

	// Width and Height are the frame dimensions in pixels
	Width, Height int

	// Meters is the number of measurement zones filled per capture call
	Meters int
}

// Buffer is a pixel buffer the driver writes into during capture.  The
// real binding allocates it with malloc so the DLL can fill it across the
// foreign-call boundary; Free must always be called, success or failure.
type Buffer interface {
	// Bytes exposes the buffer contents.  The returned slice aliases the
	// underlying allocation and must not be retained past Free.
	Bytes() []byte

	// Free releases the allocation.  Calling Free twice is safe.
	Free()
}

// Driver is the fixed set of foreign entry points the capture session
// consumes.  Implementations return raw driver codes; interpretation of
// those codes belongs to the caller via a SuccessSet.
type Driver interface {
	// Init loads the vendor library and connects to the device
	Init() InitReport

	// Query reports the current resolution and meter count
	Query() QueryReport

	// Capture blocks until the driver has filled every buffer.  It is a
	// single call that fills all meter buffers at once; zones and bufs
	// must both have length equal to the reported meter count.
	Capture(zones []int32, bufs []Buffer) int

	// Release disconnects from the device
	Release() int

	// NewBuffer allocates a zero-filled pixel buffer of n bytes
	NewBuffer(n int) (Buffer, error)
}

// SuccessSet is the set of return codes treated as success.  The ZDLL
// family is inconsistent about its success convention, so this is a
// configuration value, not a constant.
type SuccessSet []int

// DefaultSuccessSet accepts both conventions seen in the wild.
var DefaultSuccessSet = SuccessSet{0, 1}

// Ok returns true if code is within the success set.
func (s SuccessSet) Ok(code int) bool {
	return util.IntSliceContains(s, code)
}

// Err returns nil if code is within the success set, otherwise a CodeError.
func (s SuccessSet) Err(code int) error {
	if s.Ok(code) {
		return nil
	}
	return CodeError(code)
}

// CodeNames maps the return codes documented by the vendor to their names.
// The vendor manual is not exhaustive; unknown codes print as such.
var CodeNames = map[CodeError]string{
	0:  "ZD_OK",
	1:  "ZD_OK_LEGACY",
	-1: "ZD_ERR_NO_DEVICE",
	2:  "ZD_ERR_NOT_INITIALIZED",
	3:  "ZD_ERR_BUSY",
	4:  "ZD_ERR_TIMEOUT",
	5:  "ZD_ERR_BAD_ZONE",
	6:  "ZD_ERR_BUFFER",
	7:  "ZD_ERR_USB",
	8:  "ZD_ERR_FIRMWARE",
}

// CodeError represents a driver return code outside the success set
type CodeError int

func (e CodeError) Error() string {
	if s, ok := CodeNames[e]; ok {
		return fmt.Sprintf("%d - %s", int(e), s)
	}
	return fmt.Sprintf("%d - UNKNOWN_ERROR_CODE", int(e))
}
