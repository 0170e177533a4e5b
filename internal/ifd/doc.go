// Package ifd decodes and encodes TIFF tag directories (IFDs).
//
// A TIFF-family file starts with an 8-byte (classic) or 16-byte (BigTIFF)
// header naming the byte order and the offset of the first image file
// directory. Each directory is a table of entries mapping a small integer
// tag to a typed value, followed by the offset of the next directory.
// Sample data lives outside the directories, addressed by the StripOffsets
// or TileOffsets entries.
//
// # Decoding
//
// [Decode] reads the header and walks the directory chain:
//
//	f, err := ifd.Decode(r)
//	for _, d := range f.Directories {
//		w, _ := d.Int(ifd.ImageWidth, true, 0)
//		layout, _ := d.SampleLayout()
//		offsets, _ := d.Offsets()
//	}
//
// Entries of unknown type are skipped; the problems are collected and
// reported by [File.Problems] so callers can log them without failing.
//
// # Encoding
//
// [Encode] writes a complete file from a list of [Page] descriptions. It is
// used to build fixtures and to round-trip files in tests.
//
// # Key Types
//
//   - [Header]: byte order, classic vs BigTIFF, first directory offset
//   - [Directory]: decoded entries of one IFD with typed accessors
//   - [Value]: one entry's typed payload
//   - [SampleLayout]: bits, samples per pixel, compression, sample format
package ifd
