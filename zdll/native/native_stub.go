//go:build !(windows && 386 && cgo)

// Package native binds the vendor's 32-bit ZDLL camera library.  On this
// platform the binding is unavailable; New returns ErrPlatform.
package native

import (
	"errors"

	"github.com/wl99/node-red-zdll/zdll"
)

// ErrPlatform is generated when the native binding is requested on a
// platform the vendor DLL does not exist for.
var ErrPlatform = errors.New("zdll native binding requires windows/386 with cgo; use the simulated camera")

// Driver is a placeholder that satisfies zdll.Driver so callers compile
// everywhere.  New never hands one out on this platform.
type Driver struct{}

// New returns ErrPlatform
func New() (*Driver, error) {
	return nil, ErrPlatform
}

// Init implements zdll.Driver
func (d *Driver) Init() zdll.InitReport {
	return zdll.InitReport{Code: -1}
}

// Query implements zdll.Driver
func (d *Driver) Query() zdll.QueryReport {
	return zdll.QueryReport{Code: -1}
}

// Capture implements zdll.Driver
func (d *Driver) Capture(zones []int32, bufs []zdll.Buffer) int {
	return -1
}

// Release implements zdll.Driver
func (d *Driver) Release() int {
	return -1
}

// NewBuffer implements zdll.Driver
func (d *Driver) NewBuffer(n int) (zdll.Buffer, error) {
	return nil, ErrPlatform
}
