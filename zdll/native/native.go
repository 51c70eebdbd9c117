//go:build windows && 386 && cgo

/*Package native binds the vendor's 32-bit ZDLL camera library.

The DLL is only shipped as a 32-bit Windows binary, so this package is
build-constrained to windows/386 with cgo.  Everything else gets a stub
whose New returns ErrPlatform; run against zdll/sim there instead.
*/
package native

import (
	"errors"
	"unsafe"

	cwch "github.com/lordadamson/cgo.wchar"

	"github.com/wl99/node-red-zdll/zdll"
)

/*
#cgo LDFLAGS: -L${SRCDIR} -lzdll
#include <stdlib.h>
#include <wchar.h>

extern int ZM_Init(wchar_t *manufacturer);
extern int ZM_GetCameraInfo(int *width, int *height, int *meters);
extern int ZM_Capture(int *zones, unsigned char **buffers);
extern int ZM_Release(void);
*/
import "C"

var (
	// ErrBadBufferSize is generated when a nonpositive buffer size is requested
	ErrBadBufferSize = errors.New("buffer size must be positive")

	// ErrAllocFailed is generated when the C allocator returns NULL
	ErrAllocFailed = errors.New("C allocator returned NULL")
)

// Driver is the real binding to the vendor DLL.  Only one may be in use
// per process; the DLL holds process-global state.
type Driver struct{}

// New returns the real driver
func New() (*Driver, error) {
	return &Driver{}, nil
}

// Init implements zdll.Driver.  The manufacturer string comes back as a
// wide character buffer of fixed capacity.
func (d *Driver) Init() zdll.InitReport {
	ws := cwch.NewWcharString(zdll.LengthOfManufacturerBuffer)
	code := int(C.ZM_Init((*C.wchar_t)(ws.Pointer())))
	manu, err := ws.GoString()
	if err != nil {
		// the device is still usable without its nameplate
		manu = ""
	}
	return zdll.InitReport{Code: code, Manufacturer: manu}
}

// Query implements zdll.Driver
func (d *Driver) Query() zdll.QueryReport {
	var w, h, m C.int
	code := int(C.ZM_GetCameraInfo(&w, &h, &m))
	return zdll.QueryReport{
		Code:   code,
		Width:  int(w),
		Height: int(h),
		Meters: int(m),
	}
}

// Capture implements zdll.Driver.  It blocks inside the DLL until every
// meter buffer has been filled.
func (d *Driver) Capture(zones []int32, bufs []zdll.Buffer) int {
	var zptr *C.int
	if len(zones) > 0 {
		// C int is 32 bits on 386, same layout as int32
		zptr = (*C.int)(unsafe.Pointer(&zones[0]))
	}
	// the pointer array holds C pointers only, so it may live in Go memory
	ptrs := make([]*C.uchar, len(bufs))
	for i, b := range bufs {
		ptrs[i] = b.(*buffer).cptr
	}
	var pptr **C.uchar
	if len(ptrs) > 0 {
		pptr = &ptrs[0]
	}
	return int(C.ZM_Capture(zptr, pptr))
}

// Release implements zdll.Driver
func (d *Driver) Release() int {
	return int(C.ZM_Release())
}

// NewBuffer allocates a zero-filled buffer in C memory so the DLL can
// write to it without tripping the cgo pointer rules.
func (d *Driver) NewBuffer(n int) (zdll.Buffer, error) {
	if n <= 0 {
		return nil, ErrBadBufferSize
	}
	p := C.calloc(C.size_t(n), 1)
	if p == nil {
		return nil, ErrAllocFailed
	}
	return &buffer{cptr: (*C.uchar)(p), size: n, allocated: true}, nil
}

// buffer is a block of C memory used for frame readout
type buffer struct {
	cptr      *C.uchar
	size      int
	allocated bool
}

func (b *buffer) Bytes() []byte {
	if !b.allocated {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(b.cptr)), b.size)
}

func (b *buffer) Free() {
	if !b.allocated {
		return
	}
	C.free(unsafe.Pointer(b.cptr))
	b.allocated = false
}
