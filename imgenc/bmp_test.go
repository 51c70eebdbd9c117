package imgenc

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func TestEncodeBMPGray8Layout(t *testing.T) {
	pix := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	var b bytes.Buffer
	if err := encodeBMP(&b, pix, 4, 2, Gray8); err != nil {
		t.Fatal(err)
	}
	out := b.Bytes()
	// 14 + 40 + 1024 palette bytes of header, then 2 rows of stride 4
	if len(out) != 1086 {
		t.Fatalf("expected 1086 file bytes, got %d", len(out))
	}
	if out[0] != 'B' || out[1] != 'M' {
		t.Error("missing BM signature")
	}
	if got := binary.LittleEndian.Uint32(out[2:]); got != 1086 {
		t.Errorf("expected file size 1086, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(out[10:]); got != 1078 {
		t.Errorf("expected pixel data offset 1078, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(out[14:]); got != 40 {
		t.Errorf("expected info header size 40, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(out[18:]); got != 4 {
		t.Errorf("expected width 4, got %d", got)
	}
	if got := int32(binary.LittleEndian.Uint32(out[22:])); got != 2 {
		t.Errorf("expected positive height 2 (bottom-up), got %d", got)
	}
	if got := binary.LittleEndian.Uint16(out[28:]); got != 8 {
		t.Errorf("expected 8 bits per pixel, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(out[30:]); got != 0 {
		t.Errorf("expected uncompressed, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(out[38:]); got != 2835 {
		t.Errorf("expected 2835 pixels per meter, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(out[46:]); got != 256 {
		t.Errorf("expected 256 palette colors, got %d", got)
	}
	// palette entry i is (i,i,i,0)
	for _, i := range []int{0, 1, 128, 255} {
		e := out[54+4*i : 54+4*i+4]
		if e[0] != byte(i) || e[1] != byte(i) || e[2] != byte(i) || e[3] != 0 {
			t.Errorf("palette entry %d: got % x", i, e)
		}
	}
	// rows are bottom-up, so the source's second row is stored first
	data := out[1078:]
	want := []byte{4, 5, 6, 7, 0, 1, 2, 3}
	if !bytes.Equal(data, want) {
		t.Errorf("expected bottom-up rows % x, got % x", want, data)
	}
}

func TestEncodeBMPRGB24SwapsAndPads(t *testing.T) {
	// 5x2 at 3 bytes per pixel: 15-byte rows padded to a 16-byte stride
	width, height := 5, 2
	pix := make([]byte, width*height*3)
	for i := range pix {
		pix[i] = byte(i + 1)
	}
	var b bytes.Buffer
	if err := encodeBMP(&b, pix, width, height, RGB24); err != nil {
		t.Fatal(err)
	}
	out := b.Bytes()
	if len(out) != 86 {
		t.Fatalf("expected 86 file bytes, got %d", len(out))
	}
	if got := binary.LittleEndian.Uint32(out[2:]); got != 86 {
		t.Errorf("expected file size 86, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(out[10:]); got != 54 {
		t.Errorf("expected pixel data offset 54, got %d", got)
	}
	if got := binary.LittleEndian.Uint16(out[28:]); got != 24 {
		t.Errorf("expected 24 bits per pixel, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(out[34:]); got != 32 {
		t.Errorf("expected image size 32, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(out[46:]); got != 0 {
		t.Errorf("expected no palette, got %d colors", got)
	}
	data := out[54:]
	// first stored row is the source's bottom row with R and B swapped
	srcRow := pix[15:30]
	for x := 0; x < width; x++ {
		r, g, bb := srcRow[x*3], srcRow[x*3+1], srcRow[x*3+2]
		if data[x*3] != bb || data[x*3+1] != g || data[x*3+2] != r {
			t.Fatalf("pixel %d: expected BGR %d %d %d, got % x", x, bb, g, r, data[x*3:x*3+3])
		}
	}
	if data[15] != 0 || data[31] != 0 {
		t.Error("expected zero pad bytes at the end of each stride")
	}
}

func TestEncodeBMPBGR24PassesThrough(t *testing.T) {
	pix := []byte{10, 20, 30, 40, 50, 60}
	var b bytes.Buffer
	if err := encodeBMP(&b, pix, 2, 1, BGR24); err != nil {
		t.Fatal(err)
	}
	out := b.Bytes()
	data := out[54:]
	if !bytes.Equal(data[:6], pix) {
		t.Errorf("expected BGR source stored untouched, got % x", data[:6])
	}
}

func TestEncodeBMPShortBuffer(t *testing.T) {
	var b bytes.Buffer
	err := encodeBMP(&b, make([]byte, 7), 4, 2, Gray8)
	if err != ErrShortBuffer {
		t.Errorf("expected ErrShortBuffer, got %v", err)
	}
}

func TestLayoutBMPOverflow(t *testing.T) {
	_, err := layoutBMP(math.MaxInt, 2, Gray8)
	if err != ErrSizeOverflow {
		t.Errorf("expected ErrSizeOverflow, got %v", err)
	}
	_, err = layoutBMP(math.MaxInt/2, 4, RGB24)
	if err != ErrSizeOverflow {
		t.Errorf("expected ErrSizeOverflow, got %v", err)
	}
}

func TestLayoutBMPStride(t *testing.T) {
	cases := []struct {
		width  int
		pf     PixelFormat
		stride int
	}{
		{4, Gray8, 4},
		{5, Gray8, 8},
		{5, RGB24, 16},
		{2, BGR24, 8},
	}
	for _, c := range cases {
		l, err := layoutBMP(c.width, 1, c.pf)
		if err != nil {
			t.Fatal(err)
		}
		if l.stride != c.stride {
			t.Errorf("width %d %v: expected stride %d, got %d", c.width, c.pf, c.stride, l.stride)
		}
	}
}
