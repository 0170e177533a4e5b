package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"github.com/robert-malhotra/go-bioformats/internal/binary"
	"github.com/robert-malhotra/go-bioformats/internal/ifd"
)

func writeStack(t *testing.T, dir string, n int) string {
	t.Helper()
	pages := make([]ifd.Page, n)
	for i := range pages {
		pages[i] = ifd.Page{
			Width: 4, Height: 3, BitsPerSample: 8,
			Blocks: [][]byte{bytes.Repeat([]byte{byte(i)}, 12)},
		}
	}
	pages[0].Description = "ImageJ=1.53t\nimages=4\nchannels=2\nslices=2\n"
	var buf binary.Buffer
	if _, err := ifd.Encode(&buf, ifd.Options{}, pages); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "stack.tif")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "planeinfo.toml")
	content := `
[log]
logfile = "` + filepath.ToSlash(filepath.Join(dir, "planeinfo.log")) + `"
max_log_size = 5
level = "debug"

[reader]
charset = "windows-1252"
workers = 2
codec = "zstd"
cache_size = 1048576
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Log.MaxSize != 5 || cfg.Log.MaxAge != 7 || cfg.Log.Level != "debug" {
		t.Errorf("log config %+v", cfg.Log)
	}
	if cfg.Reader.Workers != 2 || cfg.Reader.Codec != "zstd" || cfg.Reader.CacheSize != 1<<20 {
		t.Errorf("reader config %+v", cfg.Reader)
	}
	if cfg.Log.Logger().GetLevel() != zerolog.DebugLevel {
		t.Error("logger level not applied")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "[reader]\nspeed = 3\n"},
		{"bad codec", "[reader]\ncodec = \"lz4\"\n"},
		{"bad charset", "[reader]\ncharset = \"ebcdic\"\n"},
		{"bad level", "[log]\nlevel = \"loud\"\n"},
		{"no workers", "[reader]\nworkers = 0\n"},
		{"syntax", "[reader\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Error("expected error")
			}
		})
	}

	if cfg, err := LoadConfig(""); err != nil || cfg.Reader.Workers != 4 {
		t.Errorf("defaults: %+v, %v", cfg, err)
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := defaultConfig()
	applyFlags(&cfg, "imagej", 8, "snappy")
	if cfg.Reader.Format != "imagej" || cfg.Reader.Workers != 8 || cfg.Reader.Codec != "snappy" {
		t.Errorf("flags not applied: %+v", cfg.Reader)
	}
	applyFlags(&cfg, "", 0, "")
	if cfg.Reader.Workers != 8 {
		t.Error("unset flags should keep config values")
	}
}

func TestCodecs(t *testing.T) {
	data := bytes.Repeat([]byte("plane data "), 100)

	none, _ := newCodec("")
	if !bytes.Equal(none.encode(data), data) || none.ext != ".raw" {
		t.Error("none codec changed data")
	}

	sz, _ := newCodec("snappy")
	decoded, err := snappy.Decode(nil, sz.encode(data))
	if err != nil || !bytes.Equal(decoded, data) {
		t.Errorf("snappy round trip failed: %v", err)
	}

	zs, err := newCodec("zstd")
	if err != nil {
		t.Fatal(err)
	}
	defer zs.Close()
	dec, err := zstd.NewReader(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()
	decoded, err = dec.DecodeAll(zs.encode(data), nil)
	if err != nil || !bytes.Equal(decoded, data) {
		t.Errorf("zstd round trip failed: %v", err)
	}

	if _, err := newCodec("gzip"); err == nil {
		t.Error("expected error for unknown codec")
	}
}

func TestRunDescribe(t *testing.T) {
	dir := t.TempDir()
	path := writeStack(t, dir, 4)

	var out bytes.Buffer
	if err := run(context.Background(), &out, zerolog.Nop(), defaultConfig(), path, ""); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	for _, want := range []string{
		"Format: imagej",
		"Size: X=4 Y=3 Z=2 C=2 T=1",
		"Order: XYCZT (certain)",
		"Shape: dense",
		"Planes: 4 x 12 B = 48 B",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunExtract(t *testing.T) {
	dir := t.TempDir()
	path := writeStack(t, dir, 4)
	outDir := filepath.Join(dir, "planes")

	for _, name := range []string{"none", "snappy", "zstd"} {
		t.Run(name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Reader.Codec = name
			cfg.Reader.Workers = 3

			var out bytes.Buffer
			if err := run(context.Background(), &out, zerolog.Nop(), cfg, path, outDir); err != nil {
				t.Fatalf("run failed: %v", err)
			}
			cd, _ := newCodec(name)
			defer cd.Close()
			matches, _ := filepath.Glob(filepath.Join(outDir, "stack_s0_*"+cd.ext))
			if len(matches) != 4 {
				t.Errorf("expected 4 planes, found %v", matches)
			}
			if !strings.Contains(out.String(), "Extracted 4 planes") {
				t.Errorf("output %q", out.String())
			}
		})
	}

	// z=1, c=0 is the third plane in channel-fastest order
	raw, err := os.ReadFile(filepath.Join(outDir, "stack_s0_z1_c0_t0.raw"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(raw, bytes.Repeat([]byte{2}, 12)) {
		t.Errorf("plane content %v", raw)
	}
}
