package imgenc

import (
	"encoding/binary"
	"io"

	"github.com/wl99/node-red-zdll/util"
)

const (
	bmpFileHeaderSize = 14
	bmpInfoHeaderSize = 40
	bmpPaletteSize    = 256 * 4

	// 72 DPI expressed in pixels per meter, the BMP density unit
	bmpPixelsPerMeter = 2835
)

// bmpLayout holds the numeric layout of one BMP file
type bmpLayout struct {
	rowBytes   int
	stride     int
	imageSize  int
	headerSize int
	fileSize   int
	paletted   bool
}

// layoutBMP computes the byte layout for a width x height image of the
// given format, with all multiplications overflow-checked
func layoutBMP(width, height int, pf PixelFormat) (bmpLayout, error) {
	var l bmpLayout
	bpp := pf.BytesPerPixel()
	if bpp == 0 {
		return l, UnsupportedFormatError{Format: pf}
	}
	rowBytes, ok := util.MulNonNeg(width, bpp)
	if !ok {
		return l, ErrSizeOverflow
	}
	// BMP rows are aligned to 4 bytes, pad bytes are zero
	stride, ok := util.AddNonNeg(rowBytes, 3)
	if !ok {
		return l, ErrSizeOverflow
	}
	stride &^= 3
	imageSize, ok := util.MulNonNeg(stride, height)
	if !ok {
		return l, ErrSizeOverflow
	}
	headerSize := bmpFileHeaderSize + bmpInfoHeaderSize
	paletted := pf == Gray8
	if paletted {
		headerSize += bmpPaletteSize
	}
	fileSize, ok := util.AddNonNeg(headerSize, imageSize)
	if !ok {
		return l, ErrSizeOverflow
	}
	l = bmpLayout{
		rowBytes:   rowBytes,
		stride:     stride,
		imageSize:  imageSize,
		headerSize: headerSize,
		fileSize:   fileSize,
		paletted:   paletted,
	}
	return l, nil
}

// encodeBMP writes pix as an uncompressed BMP.  Gray8 sources get a
// 256-entry grayscale palette; 24-bit sources are stored as BGR, which
// means RGB24 input has its R and B bytes swapped per pixel.  Rows are
// stored bottom-up per the format.
func encodeBMP(w io.Writer, pix []byte, width, height int, pf PixelFormat) error {
	l, err := layoutBMP(width, height, pf)
	if err != nil {
		return err
	}
	if _, err := frameSize(pix, width, height, pf); err != nil {
		return err
	}

	hdr := make([]byte, 0, l.headerSize)

	// file header: signature, file size, two reserved zeros, data offset
	hdr = append(hdr, 'B', 'M')
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(l.fileSize))
	hdr = binary.LittleEndian.AppendUint16(hdr, 0)
	hdr = binary.LittleEndian.AppendUint16(hdr, 0)
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(l.headerSize))

	// info header; positive height signals bottom-up row order
	bitCount := uint16(pf.BytesPerPixel() * 8)
	var colorsUsed uint32
	if l.paletted {
		colorsUsed = 256
	}
	hdr = binary.LittleEndian.AppendUint32(hdr, bmpInfoHeaderSize)
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(width))
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(height))
	hdr = binary.LittleEndian.AppendUint16(hdr, 1)
	hdr = binary.LittleEndian.AppendUint16(hdr, bitCount)
	hdr = binary.LittleEndian.AppendUint32(hdr, 0) // BI_RGB, uncompressed
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(l.imageSize))
	hdr = binary.LittleEndian.AppendUint32(hdr, bmpPixelsPerMeter)
	hdr = binary.LittleEndian.AppendUint32(hdr, bmpPixelsPerMeter)
	hdr = binary.LittleEndian.AppendUint32(hdr, colorsUsed)
	hdr = binary.LittleEndian.AppendUint32(hdr, 0) // all colors important

	if l.paletted {
		// entry i is gray (i,i,i) packed as little-endian BGR0
		for i := 0; i < 256; i++ {
			hdr = append(hdr, byte(i), byte(i), byte(i), 0)
		}
	}
	if _, err := w.Write(hdr); err != nil {
		return err
	}

	row := make([]byte, l.stride)
	for y := 0; y < height; y++ {
		// file rows are bottom-up, the source is top-down
		src := pix[(height-1-y)*l.rowBytes : (height-y)*l.rowBytes]
		copy(row, src)
		if pf == RGB24 {
			// the file must be BGR; swap R and B per pixel
			for x := 0; x < l.rowBytes; x += 3 {
				row[x], row[x+2] = row[x+2], row[x]
			}
		}
		for x := l.rowBytes; x < l.stride; x++ {
			row[x] = 0
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
