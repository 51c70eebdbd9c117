package imgenc

import (
	"io"

	"github.com/astrogo/fitsio"
)

// encodeFITS streams a fits file to w.  Gray8 becomes a single 16-bit
// image plane; the 24-bit formats become a [width, height, 3] cube with
// planes in R, G, B order.  16-bit storage is used throughout because
// FITS has no unsigned 8-bit convention worth fighting with.
func encodeFITS(w io.Writer, pix []byte, width, height int, pf PixelFormat) error {
	if _, err := frameSize(pix, width, height, pf); err != nil {
		return err
	}
	fits, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer fits.Close()

	dims := []int{width, height}
	if pf != Gray8 {
		dims = append(dims, 3)
	}
	im := fitsio.NewImage(16, dims)
	defer im.Close()
	err = im.Header().Append(
		fitsio.Card{Name: "BZERO", Value: 0, Comment: "zero point"},
		fitsio.Card{Name: "BSCALE", Value: 1.0, Comment: "scale factor"},
	)
	if err != nil {
		return err
	}

	npx := width * height
	var out []int16
	if pf == Gray8 {
		out = make([]int16, npx)
		for i := 0; i < npx; i++ {
			out[i] = int16(pix[i])
		}
	} else {
		// de-interleave into channel planes
		out = make([]int16, npx*3)
		for i := 0; i < npx; i++ {
			b, g, r := pix[i*3], pix[i*3+1], pix[i*3+2]
			if pf == RGB24 {
				r, b = b, r
			}
			out[i] = int16(r)
			out[npx+i] = int16(g)
			out[2*npx+i] = int16(b)
		}
	}
	err = im.Write(out)
	if err != nil {
		return err
	}
	return fits.Write(im)
}
