package imgrec

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolvePath(t *testing.T) {
	cases := []struct {
		template string
		meter    int
		want     string
	}{
		{"capture-{{meter}}.bmp", 2, "capture-2.bmp"},
		{"{{meter}}/{{meter}}.raw", 3, "3/3.raw"},
		{"capture.bmp", 5, "capture.bmp"},
	}
	for _, c := range cases {
		if got := ResolvePath(c.template, c.meter); got != c.want {
			t.Errorf("%q meter %d: expected %q, got %q", c.template, c.meter, c.want, got)
		}
	}
}

func TestPathJoinsRoot(t *testing.T) {
	r := &Recorder{Root: "/data"}
	if got := r.Path("m-{{meter}}.raw", 1); got != filepath.Join("/data", "m-1.raw") {
		t.Errorf("expected rooted path, got %q", got)
	}
	abs := filepath.Join(string(filepath.Separator), "elsewhere", "m.raw")
	if got := r.Path(abs, 1); got != abs {
		t.Errorf("expected absolute path untouched, got %q", got)
	}
}

func TestWriteMakeDirs(t *testing.T) {
	dir := t.TempDir()
	r := &Recorder{MakeDirs: true}
	fn := filepath.Join(dir, "a", "b", "out.raw")
	if err := r.Write(fn, []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(fn)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 3 {
		t.Errorf("expected 3 bytes, got %d", len(data))
	}
}

func TestWriteNoMakeDirs(t *testing.T) {
	dir := t.TempDir()
	r := &Recorder{}
	fn := filepath.Join(dir, "missing", "out.raw")
	if err := r.Write(fn, []byte{1}); err == nil {
		t.Error("expected a write into a missing folder to fail")
	}
}
