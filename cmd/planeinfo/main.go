// Command planeinfo prints the reconciled dimensions of microscope image
// files and optionally extracts their planes.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/robert-malhotra/go-bioformats/bioformats"
)

func main() {
	configFile := flag.String("config", "", "TOML configuration file")
	format := flag.String("format", "", "read files as this format (ome-tiff, imagej, tiff)")
	extractDir := flag.String("extract", "", "write every plane to this directory")
	workers := flag.Int("workers", 0, "concurrent extraction workers")
	codecName := flag.String("codec", "", "compression of extracted planes (none, zstd, snappy)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: planeinfo [flags] file...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	applyFlags(&cfg, *format, *workers, *codecName)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	log := cfg.Log.Logger()
	failed := false
	for _, path := range flag.Args() {
		if err := run(context.Background(), os.Stdout, log, cfg, path, *extractDir); err != nil {
			log.Error().Err(err).Str("path", path).Msg("failed")
			fmt.Fprintf(os.Stderr, "ERROR: %s: %v\n", path, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// applyFlags overrides configuration values with flags that were set.
func applyFlags(cfg *Config, format string, workers int, codecName string) {
	if format != "" {
		cfg.Reader.Format = format
	}
	if workers > 0 {
		cfg.Reader.Workers = workers
	}
	if codecName != "" {
		cfg.Reader.Codec = codecName
	}
}

func readerOptions(cfg Config, log zerolog.Logger) []bioformats.Option {
	opts := []bioformats.Option{bioformats.WithLogger(log)}
	if cm, err := parseCharset(cfg.Reader.Charset); err == nil {
		opts = append(opts, bioformats.WithCharset(cm))
	}
	if cfg.Reader.Format != "" {
		opts = append(opts, bioformats.WithFormat(cfg.Reader.Format))
	}
	if cfg.Reader.CacheSize > 0 {
		opts = append(opts, bioformats.WithPlaneCache(cfg.Reader.CacheSize))
	}
	return opts
}

// run describes one file and extracts its planes when extractDir is set.
func run(ctx context.Context, w io.Writer, log zerolog.Logger, cfg Config, path, extractDir string) error {
	opts := readerOptions(cfg, log)
	r := bioformats.NewReader(opts...)
	defer r.Close()

	if err := describe(w, r, path); err != nil {
		return err
	}
	if extractDir == "" {
		return nil
	}

	all, err := jobs(r, path)
	if err != nil {
		return err
	}
	cd, err := newCodec(cfg.Reader.Codec)
	if err != nil {
		return err
	}
	defer cd.Close()

	e := &extractor{dir: extractDir, workers: cfg.Reader.Workers, codec: cd, opts: opts}
	if err := e.Extract(ctx, path, all); err != nil {
		return err
	}
	fmt.Fprintf(w, "Extracted %d planes to %s (%s, %s)\n",
		len(all), extractDir, cd.name, humanize.Bytes(uint64(e.written.Load())))
	return nil
}

func describe(w io.Writer, r *bioformats.Reader, path string) error {
	format, err := r.Format(path)
	if err != nil {
		return err
	}
	files, err := r.UsedFiles(path)
	if err != nil {
		return err
	}
	n, err := r.SeriesCount(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "=== %s ===\n", path)
	fmt.Fprintf(w, "Format: %s\n", format)
	if len(files) > 1 {
		fmt.Fprintf(w, "Files: %d\n", len(files))
		for _, f := range files {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
	fmt.Fprintf(w, "Series: %d\n", n)

	for i := 0; i < n; i++ {
		s, err := r.Series(path, i)
		if err != nil {
			return err
		}
		certainty := "guessed"
		if s.OrderCertain() {
			certainty = "certain"
		}
		byteOrder := "big-endian"
		if s.LittleEndian() {
			byteOrder = "little-endian"
		}
		im := s.Image()

		fmt.Fprintf(w, "\nSeries %d %q:\n", i, im.Name)
		fmt.Fprintf(w, "  Size: X=%d Y=%d Z=%d C=%d T=%d\n", s.SizeX(), s.SizeY(), s.SizeZ(), s.SizeC(), s.SizeT())
		fmt.Fprintf(w, "  Order: %s (%s)\n", s.DimensionOrder(), certainty)
		fmt.Fprintf(w, "  Pixels: %s, %s, %d samples", s.PixelType(), byteOrder, s.RGBChannelCount())
		if s.Interleaved() {
			fmt.Fprint(w, " interleaved")
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Shape: %s\n", s.Shape())
		fmt.Fprintf(w, "  Planes: %d x %s = %s\n", s.ImageCount(),
			humanize.Bytes(uint64(s.PlaneBytes())), humanize.Bytes(uint64(s.ImageCount()*s.PlaneBytes())))
		if !im.AcquisitionDate.IsZero() {
			fmt.Fprintf(w, "  Acquired: %s\n", im.AcquisitionDate.Format("2006-01-02 15:04:05"))
		}
	}
	fmt.Fprintln(w)
	return nil
}
