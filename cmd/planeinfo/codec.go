package main

import (
	"fmt"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

const (
	codecNone   = "none"
	codecZstd   = "zstd"
	codecSnappy = "snappy"
)

// codec compresses extracted planes. Encode is safe for concurrent use.
type codec struct {
	name   string
	ext    string
	encode func([]byte) []byte
	close  func()
}

func newCodec(name string) (*codec, error) {
	switch name {
	case "", codecNone:
		return &codec{name: codecNone, ext: ".raw", encode: func(b []byte) []byte { return b }, close: func() {}}, nil
	case codecSnappy:
		return &codec{name: codecSnappy, ext: ".raw.sz", encode: func(b []byte) []byte { return snappy.Encode(nil, b) }, close: func() {}}, nil
	case codecZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("creating zstd encoder: %w", err)
		}
		return &codec{
			name:   codecZstd,
			ext:    ".raw.zst",
			encode: func(b []byte) []byte { return enc.EncodeAll(b, nil) },
			close:  func() { enc.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unknown codec %q (want none, zstd or snappy)", name)
}

func (c *codec) Close() {
	c.close()
}
