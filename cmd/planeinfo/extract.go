package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/robert-malhotra/go-bioformats/bioformats"
)

// planeJob names one plane to extract.
type planeJob struct {
	series, index int
	z, c, t       int
}

// extractor writes every plane of a file to a directory.
type extractor struct {
	dir     string
	workers int
	codec   *codec
	opts    []bioformats.Option
	written atomic.Int64
}

// outputName returns the file name for one plane.
func (e *extractor) outputName(path string, j planeJob) string {
	base := filepath.Base(path)
	for _, ext := range []string{".ome.tiff", ".ome.tif", ".tiff", ".tif"} {
		if strings.HasSuffix(strings.ToLower(base), ext) {
			base = base[:len(base)-len(ext)]
			break
		}
	}
	return filepath.Join(e.dir, fmt.Sprintf("%s_s%d_z%d_c%d_t%d%s", base, j.series, j.z, j.c, j.t, e.codec.ext))
}

// jobs lists every plane of path.
func jobs(r *bioformats.Reader, path string) ([]planeJob, error) {
	n, err := r.SeriesCount(path)
	if err != nil {
		return nil, err
	}
	var out []planeJob
	for s := 0; s < n; s++ {
		series, err := r.Series(path, s)
		if err != nil {
			return nil, err
		}
		for i := 0; i < series.ImageCount(); i++ {
			z, c, t, err := r.Coords(path, s, i)
			if err != nil {
				return nil, err
			}
			out = append(out, planeJob{series: s, index: i, z: z, c: c, t: t})
		}
	}
	return out, nil
}

// Extract writes every plane of path. Planes are split into one shard per
// worker and every worker reads through its own Reader.
func (e *extractor) Extract(ctx context.Context, path string, all []planeJob) error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", e.dir, err)
	}

	workers := min(e.workers, len(all))
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		var shard []planeJob
		for i := w; i < len(all); i += workers {
			shard = append(shard, all[i])
		}
		g.Go(func() error {
			return e.extractShard(ctx, path, shard)
		})
	}
	return g.Wait()
}

func (e *extractor) extractShard(ctx context.Context, path string, shard []planeJob) (err error) {
	r := bioformats.NewReader(e.opts...)
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for _, j := range shard {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := r.OpenBytes(path, j.series, j.index)
		if err != nil {
			return fmt.Errorf("series %d plane %d: %w", j.series, j.index, err)
		}
		out := e.codec.encode(data)
		if err := os.WriteFile(e.outputName(path, j), out, 0o644); err != nil {
			return err
		}
		e.written.Add(int64(len(out)))
	}
	return nil
}
