// Package alloc plans file offsets when encoding tag-directory files.
//
// Every directory must know where its sample blocks, its out-of-line values
// and the next directory live before it can be serialized. The encoder
// reserves all of them first, word aligned and in file order, then writes
// each region at its address.
//
//	a := alloc.New(8)                 // after the classic header
//	strip := a.Alloc(4096, "strip 0")
//	dir := a.Alloc(dirSize, "ifd 0")
package alloc
