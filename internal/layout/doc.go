// Package layout assembles 2-D planes from the strips or tiles a tag
// directory points at.
//
// # Storage Layouts
//
// A directory stores its samples in one of two block arrangements:
//
//   - Strips: bands of RowsPerStrip full-width rows. The last strip may be
//     shorter than the others.
//
//   - Tiles: TileWidth x TileLength rectangles in row-major tile order.
//     Edge tiles are stored padded to the full tile size.
//
// Independently, PlanarConfiguration 1 stores the samples of a pixel
// together (interleaved) and PlanarConfiguration 2 stores one block set per
// sample, all blocks of sample 0 first.
//
// # Output Arrangement
//
// [Plane.Read] and [Plane.ReadRegion] return row-major bytes in the stored
// arrangement: interleaved pixels for chunky data, or one complete
// sample plane after another for separate data. Samples keep the file's
// byte order.
//
// Only uncompressed blocks are supported; any other compression code yields
// [ErrUnsupported].
//
// # Regions
//
// [Region] crops a rectangle out of an already assembled plane. It is a
// recursive strided copy over (sample plane, row, column), so the same code
// serves interleaved and separate data.
package layout
