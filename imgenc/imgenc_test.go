package imgenc

import (
	"bytes"
	"errors"
	"image/png"
	"testing"
)

func TestContainerForPath(t *testing.T) {
	cases := []struct {
		path string
		want Container
	}{
		{"out.bmp", BMP},
		{"out.BMP", BMP},
		{"out.jpg", JPEG},
		{"out.jpeg", JPEG},
		{"out.png", PNG},
		{"out.fits", FITS},
		{"out.fit", FITS},
		{"out.raw", Raw},
		{"out.bin", Raw},
		{"out", Raw},
	}
	for _, c := range cases {
		if got := ContainerForPath(c.path); got != c.want {
			t.Errorf("%q: expected container %d, got %d", c.path, c.want, got)
		}
	}
}

func TestParsePixelFormat(t *testing.T) {
	cases := []struct {
		in   string
		want PixelFormat
	}{
		{"gray8", Gray8},
		{"GRAY8", Gray8},
		{"grey8", Gray8},
		{"bgr24", BGR24},
		{"bgr", BGR24},
		{"rgb24", RGB24},
		{"rgb", RGB24},
	}
	for _, c := range cases {
		got, err := ParsePixelFormat(c.in)
		if err != nil {
			t.Fatalf("%q: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("%q: expected %v, got %v", c.in, c.want, got)
		}
	}
	if _, err := ParsePixelFormat("cmyk"); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestEncodeRawTrimsToFrame(t *testing.T) {
	// the driver may hand back an oversized buffer; the dump is exact
	pix := make([]byte, 100)
	var b bytes.Buffer
	if err := Encode(&b, pix, 4, 2, Gray8, Raw); err != nil {
		t.Fatal(err)
	}
	if b.Len() != 8 {
		t.Errorf("expected 8 raw bytes, got %d", b.Len())
	}
}

func TestEncodeRawShortBuffer(t *testing.T) {
	var b bytes.Buffer
	err := Encode(&b, make([]byte, 7), 4, 2, Gray8, Raw)
	if err != ErrShortBuffer {
		t.Errorf("expected ErrShortBuffer, got %v", err)
	}
}

func TestEncodeUnsupportedFormat(t *testing.T) {
	var b bytes.Buffer
	err := Encode(&b, nil, 1, 1, PixelFormat(42), Raw)
	var ufe UnsupportedFormatError
	if !errors.As(err, &ufe) {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
	if ufe.Format != PixelFormat(42) {
		t.Errorf("expected offending format 42, got %v", ufe.Format)
	}
}

func TestEncodePNGColorOrder(t *testing.T) {
	// one pixel with only the first byte set distinguishes BGR from RGB
	cases := []struct {
		pf      PixelFormat
		r, g, b uint32
	}{
		{BGR24, 0, 0, 0xFFFF},
		{RGB24, 0xFFFF, 0, 0},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		if err := Encode(&buf, []byte{255, 0, 0}, 1, 1, c.pf, PNG); err != nil {
			t.Fatal(err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			t.Fatal(err)
		}
		r, g, b, _ := img.At(0, 0).RGBA()
		if r != c.r || g != c.g || b != c.b {
			t.Errorf("%v: expected rgb %d %d %d, got %d %d %d", c.pf, c.r, c.g, c.b, r, g, b)
		}
	}
}

func TestEncodePNGGrayRoundTrip(t *testing.T) {
	pix := []byte{0, 64, 128, 255}
	var buf bytes.Buffer
	if err := Encode(&buf, pix, 2, 2, Gray8, PNG); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range pix {
		x, y := i%2, i/2
		r, _, _, _ := img.At(x, y).RGBA()
		if byte(r>>8) != want {
			t.Errorf("pixel (%d,%d): expected %d, got %d", x, y, want, r>>8)
		}
	}
}

func TestEncodeJPEGProducesSOI(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, make([]byte, 8*8), 8, 8, Gray8, JPEG); err != nil {
		t.Fatal(err)
	}
	out := buf.Bytes()
	if len(out) < 2 || out[0] != 0xFF || out[1] != 0xD8 {
		t.Error("expected a JPEG start-of-image marker")
	}
}

func TestEncodeFITSHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, make([]byte, 4*4), 4, 4, Gray8, FITS); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("SIMPLE")) {
		t.Error("expected a FITS primary header")
	}
	// FITS files are written in 2880-byte blocks
	if buf.Len()%2880 != 0 {
		t.Errorf("expected a whole number of FITS blocks, got %d bytes", buf.Len())
	}
}

func TestEncodeBytesDispatch(t *testing.T) {
	pix := make([]byte, 4)
	raw, err := EncodeBytes("a.bin", pix, 2, 2, Gray8)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 4 {
		t.Errorf("expected 4 raw bytes, got %d", len(raw))
	}
	bmp, err := EncodeBytes("a.bmp", pix, 2, 2, Gray8)
	if err != nil {
		t.Fatal(err)
	}
	if len(bmp) < 2 || bmp[0] != 'B' || bmp[1] != 'M' {
		t.Error("expected a BMP body for a .bmp path")
	}
}
