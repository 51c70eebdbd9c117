/*Package imgenc encodes raw ZDLL pixel buffers into image containers.

The driver hands back bare pixel data in one of three layouts (8-bit
grayscale, 24-bit BGR, 24-bit RGB).  This package turns one such buffer
into a file body: a headerless raw dump, a BMP container written
bit-exactly by hand, a JPEG or PNG via the standard image codecs, or a
FITS image for photometric post-processing.  The container is selected
by the extension of the output path.
*/
package imgenc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"strings"

	"github.com/wl99/node-red-zdll/util"
)

// PixelFormat is the layout of the driver's pixel buffer
type PixelFormat int

const (
	// Gray8 is 8-bit grayscale, one byte per pixel
	Gray8 PixelFormat = iota

	// BGR24 is 24-bit color in blue, green, red byte order
	BGR24

	// RGB24 is 24-bit color in red, green, blue byte order
	RGB24
)

// BytesPerPixel returns the storage size of one pixel, or 0 for an
// unknown format
func (p PixelFormat) BytesPerPixel() int {
	switch p {
	case Gray8:
		return 1
	case BGR24, RGB24:
		return 3
	}
	return 0
}

func (p PixelFormat) String() string {
	switch p {
	case Gray8:
		return "gray8"
	case BGR24:
		return "bgr24"
	case RGB24:
		return "rgb24"
	}
	return fmt.Sprintf("PixelFormat(%d)", int(p))
}

// ParsePixelFormat converts a config string to a PixelFormat.  It is
// case insensitive.
func ParsePixelFormat(s string) (PixelFormat, error) {
	switch strings.ToLower(s) {
	case "gray8", "gray", "grey8":
		return Gray8, nil
	case "bgr24", "bgr":
		return BGR24, nil
	case "rgb24", "rgb":
		return RGB24, nil
	}
	return 0, fmt.Errorf("unknown pixel format %q", s)
}

// UnsupportedFormatError is generated when a pixel format outside the
// known set reaches the encoder
type UnsupportedFormatError struct {
	// Format is the offending value
	Format PixelFormat
}

func (e UnsupportedFormatError) Error() string {
	return fmt.Sprintf("pixel format %v is not supported", e.Format)
}

var (
	// ErrSizeOverflow is generated when width*height*bytesPerPixel does
	// not fit in an int
	ErrSizeOverflow = errors.New("image dimensions overflow size arithmetic")

	// ErrShortBuffer is generated when the pixel buffer is smaller than
	// the dimensions require
	ErrShortBuffer = errors.New("pixel buffer shorter than width*height*bytesPerPixel")
)

// Container is the output file layout
type Container int

const (
	// Raw is a headerless dump of exactly width*height*bytesPerPixel bytes
	Raw Container = iota

	// BMP is an uncompressed Windows bitmap
	BMP

	// JPEG is encoded via an intermediate 24-bit bitmap
	JPEG

	// PNG is encoded via the same intermediate bitmap as JPEG
	PNG

	// FITS is a flexible image transport system file
	FITS
)

// ContainerForPath selects the container by the extension of the output
// path.  Unrecognized extensions get a raw dump.
func ContainerForPath(p string) Container {
	switch strings.ToLower(path.Ext(p)) {
	case ".bmp":
		return BMP
	case ".jpg", ".jpeg":
		return JPEG
	case ".png":
		return PNG
	case ".fits", ".fit":
		return FITS
	}
	return Raw
}

// frameSize returns width*height*bytesPerPixel with overflow checking,
// and validates the buffer length against it
func frameSize(pix []byte, width, height int, pf PixelFormat) (int, error) {
	bpp := pf.BytesPerPixel()
	if bpp == 0 {
		return 0, UnsupportedFormatError{Format: pf}
	}
	rowBytes, ok := util.MulNonNeg(width, bpp)
	if !ok {
		return 0, ErrSizeOverflow
	}
	n, ok := util.MulNonNeg(rowBytes, height)
	if !ok {
		return 0, ErrSizeOverflow
	}
	if len(pix) < n {
		return 0, ErrShortBuffer
	}
	return n, nil
}

// Encode writes pix to w in the given container.  Write failures are
// propagated as-is and never retried.
func Encode(w io.Writer, pix []byte, width, height int, pf PixelFormat, c Container) error {
	switch c {
	case Raw:
		n, err := frameSize(pix, width, height, pf)
		if err != nil {
			return err
		}
		_, err = w.Write(pix[:n])
		return err
	case BMP:
		return encodeBMP(w, pix, width, height, pf)
	case JPEG:
		img, err := toImage(pix, width, height, pf)
		if err != nil {
			return err
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case PNG:
		img, err := toImage(pix, width, height, pf)
		if err != nil {
			return err
		}
		return png.Encode(w, img)
	case FITS:
		return encodeFITS(w, pix, width, height, pf)
	}
	return fmt.Errorf("unknown container %d", int(c))
}

// EncodeBytes encodes pix into the container selected by the extension
// of p and returns the file body
func EncodeBytes(p string, pix []byte, width, height int, pf PixelFormat) ([]byte, error) {
	var b bytes.Buffer
	// bytes.Buffer never errors, so any error out of Encode is an
	// encode error, not an I/O one
	err := Encode(&b, pix, width, height, pf, ContainerForPath(p))
	if err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// toImage builds the intermediate 24-bit image used by the JPEG and PNG
// paths.  The source buffer is top-down and the intermediate image is
// top-down, so rows map 1:1; the net orientation matches what a BMP of
// the same buffer displays as.  Channels are normalized to RGB order.
func toImage(pix []byte, width, height int, pf PixelFormat) (image.Image, error) {
	if _, err := frameSize(pix, width, height, pf); err != nil {
		return nil, err
	}
	if pf == Gray8 {
		img := image.NewGray(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			copy(img.Pix[y*img.Stride:], pix[y*width:(y+1)*width])
		}
		return img, nil
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowBytes := width * 3
	for y := 0; y < height; y++ {
		src := pix[y*rowBytes : (y+1)*rowBytes]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < width; x++ {
			var r, g, b byte
			if pf == BGR24 {
				b, g, r = src[x*3], src[x*3+1], src[x*3+2]
			} else {
				r, g, b = src[x*3], src[x*3+1], src[x*3+2]
			}
			dst[x*4] = r
			dst[x*4+1] = g
			dst[x*4+2] = b
			dst[x*4+3] = 0xFF
		}
	}
	return img, nil
}
