package sim

import (
	"testing"

	"github.com/wl99/node-red-zdll/zdll"
)

func TestBufferLifecycle(t *testing.T) {
	c := New()
	b, err := c.NewBuffer(16)
	if err != nil {
		t.Fatal(err)
	}
	if c.LiveBuffers() != 1 {
		t.Errorf("expected 1 live buffer, got %d", c.LiveBuffers())
	}
	b.Free()
	b.Free()
	if c.LiveBuffers() != 0 {
		t.Errorf("expected double free to count once, %d live", c.LiveBuffers())
	}
}

func TestNewBufferNegative(t *testing.T) {
	c := New()
	if _, err := c.NewBuffer(-1); err != ErrNegativeSize {
		t.Errorf("expected ErrNegativeSize, got %v", err)
	}
}

func TestCaptureFillsPerMeter(t *testing.T) {
	c := New()
	bufs := make([]zdll.Buffer, c.Meters)
	for i := range bufs {
		b, err := c.NewBuffer(4)
		if err != nil {
			t.Fatal(err)
		}
		defer b.Free()
		bufs[i] = b
	}
	code := c.Capture([]int32{1, 1, 1}, bufs)
	if code != 0 {
		t.Fatalf("expected code 0, got %d", code)
	}
	for i, b := range bufs {
		for _, v := range b.Bytes() {
			if v != byte(i+1) {
				t.Fatalf("buffer %d: expected fill %d, got %d", i, i+1, v)
			}
		}
	}
}

func TestCaptureFailureLeavesBuffersZero(t *testing.T) {
	c := New()
	c.CaptureCode = 7
	b, err := c.NewBuffer(4)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Free()
	if code := c.Capture([]int32{1, 1, 1}, []zdll.Buffer{b}); code != 7 {
		t.Fatalf("expected code 7, got %d", code)
	}
	for _, v := range b.Bytes() {
		if v != 0 {
			t.Error("expected buffers untouched on failure")
		}
	}
}
