package bioformats

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/robert-malhotra/go-bioformats/internal/binary"
	"github.com/robert-malhotra/go-bioformats/internal/ifd"
)

// tracker records what a reader does with its files.
type tracker struct {
	opened map[string]int
	closed map[string]int
	reads  int
}

func newTracker() *tracker {
	return &tracker{opened: make(map[string]int), closed: make(map[string]int)}
}

func (tr *tracker) open(path string) (source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	tr.opened[filepath.Base(path)]++
	return &trackedFile{f: f, tr: tr, name: filepath.Base(path)}, nil
}

// openCount returns the number of handles currently open.
func (tr *tracker) openCount() int {
	n := 0
	for name, c := range tr.opened {
		n += c - tr.closed[name]
	}
	return n
}

type trackedFile struct {
	f    *os.File
	tr   *tracker
	name string
}

func (tf *trackedFile) ReadAt(p []byte, off int64) (int, error) {
	tf.tr.reads++
	return tf.f.ReadAt(p, off)
}

func (tf *trackedFile) Close() error {
	tf.tr.closed[tf.name]++
	return tf.f.Close()
}

func withOpener(open func(string) (source, error)) Option {
	return func(o *readerOptions) {
		o.open = open
	}
}

// page returns a width x height 8-bit page filled with value.
func page(width, height int, value byte) ifd.Page {
	return ifd.Page{
		Width:         width,
		Height:        height,
		BitsPerSample: 8,
		Blocks:        [][]byte{bytes.Repeat([]byte{value}, width*height)},
	}
}

// pages returns n 4x3 pages filled with 0, 1, ... n-1.
func pages(n int) []ifd.Page {
	out := make([]ifd.Page, n)
	for i := range out {
		out[i] = page(4, 3, byte(i))
	}
	return out
}

func writeTIFF(t *testing.T, dir, name string, opts ifd.Options, pp []ifd.Page) string {
	t.Helper()
	var buf binary.Buffer
	if _, err := ifd.Encode(&buf, opts, pp); err != nil {
		t.Fatalf("encoding %s: %v", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// planeValue reads a plane and returns its first byte, checking the plane
// is uniform.
func planeValue(t *testing.T, r *Reader, path string, series, index int) byte {
	t.Helper()
	data, err := r.OpenBytes(path, series, index)
	if err != nil {
		t.Fatalf("OpenBytes(%d, %d) failed: %v", series, index, err)
	}
	for _, b := range data {
		if b != data[0] {
			t.Fatalf("plane %d is not uniform", index)
		}
	}
	return data[0]
}
