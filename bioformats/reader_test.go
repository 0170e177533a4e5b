package bioformats

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/robert-malhotra/go-bioformats/internal/ifd"
)

func TestLazyGuard(t *testing.T) {
	dir := t.TempDir()
	path := writeTIFF(t, dir, "stack.tif", ifd.Options{}, pages(3))

	queries := map[string]func(r *Reader) error{
		"SeriesCount": func(r *Reader) error { _, err := r.SeriesCount(path); return err },
		"Series":      func(r *Reader) error { _, err := r.Series(path, 0); return err },
		"Index":       func(r *Reader) error { _, err := r.Index(path, 0, 1, 0, 0); return err },
		"Coords":      func(r *Reader) error { _, _, _, err := r.Coords(path, 0, 1); return err },
		"OpenBytes":   func(r *Reader) error { _, err := r.OpenBytes(path, 0, 0); return err },
		"OpenRegion":  func(r *Reader) error { _, err := r.OpenRegion(path, 0, 0, 0, 0, 1, 1); return err },
		"OpenPlane":   func(r *Reader) error { var v []uint8; return r.OpenPlane(path, 0, 0, &v) },
		"Metadata":    func(r *Reader) error { _, err := r.Metadata(path); return err },
		"Format":      func(r *Reader) error { _, err := r.Format(path); return err },
		"UsedFiles":   func(r *Reader) error { _, err := r.UsedFiles(path); return err },
	}
	for name, query := range queries {
		t.Run(name, func(t *testing.T) {
			tr := newTracker()
			r := NewReader(withOpener(tr.open))
			defer r.Close()

			if r.Path() != "" {
				t.Fatalf("new reader has path %q", r.Path())
			}
			if err := query(r); err != nil {
				t.Fatalf("query on unopened reader failed: %v", err)
			}
			if r.Path() != path {
				t.Errorf("expected path %q after query, got %q", path, r.Path())
			}
			if err := query(r); err != nil {
				t.Fatalf("second query failed: %v", err)
			}
			if tr.opened["stack.tif"] != 1 {
				t.Errorf("file opened %d times, want 1", tr.opened["stack.tif"])
			}
		})
	}
}

func TestEquivalentPathReuse(t *testing.T) {
	dir := t.TempDir()
	path := writeTIFF(t, dir, "a.tif", ifd.Options{}, pages(2))

	tr := newTracker()
	r := NewReader(withOpener(tr.open))
	defer r.Close()

	if err := r.SetID(path); err != nil {
		t.Fatal(err)
	}
	alias := filepath.Join(dir, ".", "a.tif")
	if _, err := r.SeriesCount(alias); err != nil {
		t.Fatal(err)
	}
	if tr.opened["a.tif"] != 1 {
		t.Errorf("equivalent path reopened the file: %d opens", tr.opened["a.tif"])
	}
}

func TestSameFilePredicate(t *testing.T) {
	dir := t.TempDir()
	a := writeTIFF(t, dir, "a.tif", ifd.Options{}, pages(2))
	b := writeTIFF(t, dir, "b.tif", ifd.Options{}, pages(3))

	var calls int
	tr := newTracker()
	r := NewReader(withOpener(tr.open), WithSameFile(func(x, y string) bool {
		calls++
		return true
	}))
	defer r.Close()

	if err := r.SetID(a); err != nil {
		t.Fatal(err)
	}
	// the predicate says b is the same file, so a stays open
	s, err := r.Series(b, 0)
	if err != nil {
		t.Fatal(err)
	}
	if calls == 0 {
		t.Error("predicate never consulted")
	}
	if s.ImageCount() != 2 || tr.opened["b.tif"] != 0 {
		t.Errorf("expected a.tif to stay open, got %d planes, %d opens of b.tif", s.ImageCount(), tr.opened["b.tif"])
	}
}

func TestSwitchFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeTIFF(t, dir, "a.tif", ifd.Options{}, pages(2))
	b := writeTIFF(t, dir, "b.tif", ifd.Options{}, pages(3))

	tr := newTracker()
	r := NewReader(withOpener(tr.open))
	defer r.Close()

	s, err := r.Series(a, 0)
	if err != nil || s.ImageCount() != 2 {
		t.Fatalf("a.tif: %v planes, %v", s, err)
	}
	s, err = r.Series(b, 0)
	if err != nil || s.ImageCount() != 3 {
		t.Fatalf("b.tif: %v", err)
	}
	if tr.closed["a.tif"] != 1 {
		t.Errorf("a.tif closed %d times, want 1", tr.closed["a.tif"])
	}
	if r.Path() != b {
		t.Errorf("expected path %q, got %q", b, r.Path())
	}
}

func TestDefaultSameFile(t *testing.T) {
	dir := t.TempDir()
	a := writeTIFF(t, dir, "a.tif", ifd.Options{}, pages(1))
	b := writeTIFF(t, dir, "b.tif", ifd.Options{}, pages(1))

	if !SameFile(a, filepath.Join(dir, "x", "..", "a.tif")) {
		t.Error("cleaned paths should match")
	}
	if SameFile(a, b) {
		t.Error("different files should not match")
	}
	link := filepath.Join(dir, "link.tif")
	if err := os.Symlink(a, link); err == nil && !SameFile(a, link) {
		t.Error("symlink should match its target")
	}
	if SameFile(a, filepath.Join(dir, "missing.tif")) {
		t.Error("missing file should not match")
	}
}

func TestFailedInitializeIsReusable(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.tif")
	if err := os.WriteFile(bad, []byte("not a tiff at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	good := writeTIFF(t, dir, "good.tif", ifd.Options{}, pages(2))

	tr := newTracker()
	r := NewReader(withOpener(tr.open))
	defer r.Close()

	if _, err := r.SeriesCount(bad); !errors.Is(err, ErrNotTIFF) {
		t.Fatalf("expected ErrNotTIFF, got %v", err)
	}
	if r.Path() != "" {
		t.Errorf("failed reader has path %q", r.Path())
	}
	if tr.openCount() != 0 {
		t.Errorf("%d handles left open after failure", tr.openCount())
	}

	if _, err := r.SeriesCount(filepath.Join(dir, "missing.tif")); err == nil {
		t.Error("expected error for missing file")
	}

	n, err := r.SeriesCount(good)
	if err != nil || n != 1 {
		t.Fatalf("SeriesCount after failure = %d, %v", n, err)
	}
}

func TestFailedReconcileClosesFiles(t *testing.T) {
	dir := t.TempDir()
	// two planes at z=0,t=0 and z=1,t=1 of a 2x1x3 stack
	desc := omeDoc("", omeImageXML("XYZCT", 4, 3, 2, 1, 3,
		`<TiffData IFD="0" FirstZ="0" FirstT="0" PlaneCount="1"/>`+
			`<TiffData IFD="1" FirstZ="1" FirstT="1" PlaneCount="1"/>`))
	pp := pages(2)
	pp[0].Description = desc
	path := writeTIFF(t, dir, "sparse.ome.tif", ifd.Options{}, pp)

	tr := newTracker()
	r := NewReader(withOpener(tr.open))
	defer r.Close()

	if _, err := r.SeriesCount(path); !errors.Is(err, ErrUnsupportedMapping) {
		t.Fatalf("expected ErrUnsupportedMapping, got %v", err)
	}
	if tr.openCount() != 0 {
		t.Errorf("%d handles left open", tr.openCount())
	}
	if r.Path() != "" {
		t.Error("reader should be unopened")
	}
}

func TestClose(t *testing.T) {
	dir := t.TempDir()
	path := writeTIFF(t, dir, "a.tif", ifd.Options{}, pages(2))

	tr := newTracker()
	r, err := Open(path, withOpener(tr.open))
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if tr.closed["a.tif"] != 1 {
		t.Errorf("file closed %d times, want 1", tr.closed["a.tif"])
	}
	if _, err := r.SeriesCount(path); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := r.SetID(path); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from SetID, got %v", err)
	}
	if _, err := r.OpenBytes(path, 0, 0); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from OpenBytes, got %v", err)
	}
}

func TestCloseUnopened(t *testing.T) {
	r := NewReader()
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := r.SeriesCount("anything.tif"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeTIFF(t, dir, "a.tif", ifd.Options{}, pages(1))
	if _, err := Open(path, WithFormat("bmp")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestOutOfRange(t *testing.T) {
	dir := t.TempDir()
	path := writeTIFF(t, dir, "a.tif", ifd.Options{}, pages(2))
	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if _, err := r.Series(path, 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Series(1): expected ErrOutOfRange, got %v", err)
	}
	if _, err := r.OpenBytes(path, 0, 2); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("OpenBytes(2): expected ErrOutOfRange, got %v", err)
	}
	if _, err := r.Index(path, 0, 0, 1, 0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Index(c=1): expected ErrOutOfRange, got %v", err)
	}
	if _, _, _, err := r.Coords(path, 0, -1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Coords(-1): expected ErrOutOfRange, got %v", err)
	}
	if _, err := r.OpenRegion(path, 0, 0, 3, 0, 2, 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("OpenRegion: expected ErrOutOfRange, got %v", err)
	}
}

func TestOpenRegion(t *testing.T) {
	dir := t.TempDir()
	data := make([]byte, 4*3)
	for i := range data {
		data[i] = byte(i)
	}
	p := ifd.Page{Width: 4, Height: 3, BitsPerSample: 8, RowsPerStrip: 1,
		Blocks: [][]byte{data[0:4], data[4:8], data[8:12]}}
	path := writeTIFF(t, dir, "a.tif", ifd.Options{}, []ifd.Page{p})

	for _, cache := range []int{0, 1 << 20} {
		r, err := Open(path, WithPlaneCache(cache))
		if err != nil {
			t.Fatal(err)
		}
		if cache > 0 {
			if _, err := r.OpenBytes(path, 0, 0); err != nil {
				t.Fatal(err)
			}
		}
		got, err := r.OpenRegion(path, 0, 0, 1, 1, 2, 2)
		if err != nil {
			t.Fatalf("cache=%d: OpenRegion failed: %v", cache, err)
		}
		if !reflect.DeepEqual(got, []byte{5, 6, 9, 10}) {
			t.Errorf("cache=%d: got %v", cache, got)
		}
		r.Close()
	}
}

func TestPlaneCache(t *testing.T) {
	dir := t.TempDir()
	path := writeTIFF(t, dir, "a.tif", ifd.Options{}, pages(2))

	tr := newTracker()
	r, err := Open(path, withOpener(tr.open), WithPlaneCache(1<<20))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	first := planeValue(t, r, path, 0, 1)
	reads := tr.reads
	second := planeValue(t, r, path, 0, 1)
	if first != second || first != 1 {
		t.Errorf("plane values %d, %d", first, second)
	}
	if tr.reads != reads {
		t.Errorf("cached plane read from file again (%d reads)", tr.reads-reads)
	}
}

func TestTypedReads(t *testing.T) {
	dir := t.TempDir()
	const width, height = 3, 2
	raw := make([]byte, width*height*2)
	want := make([]uint16, width*height)
	for i := range want {
		want[i] = uint16(1000*i + 7)
		binary.BigEndian.PutUint16(raw[2*i:], want[i])
	}
	p := ifd.Page{Width: width, Height: height, BitsPerSample: 16, Blocks: [][]byte{raw}}
	path := writeTIFF(t, dir, "be.tif", ifd.Options{ByteOrder: binary.BigEndian}, []ifd.Page{p})

	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	s, _ := r.Series(path, 0)
	if s.PixelType() != Uint16 || s.LittleEndian() {
		t.Fatalf("expected big-endian uint16, got %v little=%v", s.PixelType(), s.LittleEndian())
	}
	got, err := r.OpenUint16(path, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("OpenUint16 = %v, want %v", got, want)
	}
	f64, err := r.OpenFloat64(path, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if f64[5] != float64(want[5]) {
		t.Errorf("OpenFloat64[5] = %v", f64[5])
	}
}

func TestTypedFloat(t *testing.T) {
	dir := t.TempDir()
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint32(raw, math.Float32bits(0.25))
	binary.LittleEndian.PutUint32(raw[4:], math.Float32bits(-8))
	p := ifd.Page{Width: 2, Height: 1, BitsPerSample: 32, SampleFormat: ifd.SampleFormatFloat, Blocks: [][]byte{raw}}
	path := writeTIFF(t, dir, "f.tif", ifd.Options{}, []ifd.Page{p})

	r := NewReader()
	defer r.Close()
	got, err := r.OpenFloat32(path, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []float32{0.25, -8}) {
		t.Errorf("got %v", got)
	}
}

func TestCompressedPlaneUnsupported(t *testing.T) {
	dir := t.TempDir()
	p := page(2, 2, 1)
	p.Compression = ifd.CompressionLZW
	path := writeTIFF(t, dir, "lzw.tif", ifd.Options{}, []ifd.Page{p})

	r := NewReader()
	defer r.Close()
	s, err := r.Series(path, 0)
	if err != nil {
		t.Fatalf("metadata should not need decompression: %v", err)
	}
	if s.SizeX() != 2 {
		t.Errorf("SizeX = %d", s.SizeX())
	}
	if _, err := r.OpenBytes(path, 0, 0); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}
