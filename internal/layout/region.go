package layout

import "fmt"

// Region crops the w x h rectangle at (x, y) from an assembled plane of
// samplePlanes consecutive width x height sample planes, each pixel elem
// bytes wide.
func Region(data []byte, width, height, samplePlanes, elem, x, y, w, h int) ([]byte, error) {
	if err := checkRegion(width, height, x, y, w, h); err != nil {
		return nil, err
	}
	if samplePlanes < 1 || elem < 1 {
		return nil, fmt.Errorf("invalid plane geometry: %d sample planes of %d-byte pixels", samplePlanes, elem)
	}
	if len(data) < width*height*samplePlanes*elem {
		return nil, fmt.Errorf("plane holds %d bytes, need %d", len(data), width*height*samplePlanes*elem)
	}
	dims := []int{samplePlanes, height, width}
	start := []int{0, y, x}
	count := []int{samplePlanes, h, w}
	return extractHyperslab(data, dims, start, count, elem), nil
}

// extractHyperslab extracts a rectangular selection from row-major data.
func extractHyperslab(data []byte, dims, start, count []int, elementSize int) []byte {
	ndims := len(dims)

	total := 1
	for _, c := range count {
		total *= c
	}
	result := make([]byte, total*elementSize)

	srcStrides := make([]int, ndims)
	dstStrides := make([]int, ndims)
	srcStrides[ndims-1] = elementSize
	dstStrides[ndims-1] = elementSize
	for d := ndims - 2; d >= 0; d-- {
		srcStrides[d] = srcStrides[d+1] * dims[d+1]
		dstStrides[d] = dstStrides[d+1] * count[d+1]
	}

	extractRecursive(data, result, start, count, srcStrides, dstStrides, 0, 0, 0)
	return result
}

func extractRecursive(src, dst []byte, start, count, srcStrides, dstStrides []int, srcOffset, dstOffset, dim int) {
	if dim == len(count)-1 {
		// innermost dimension is contiguous
		n := count[dim] * srcStrides[dim]
		s := srcOffset + start[dim]*srcStrides[dim]
		copy(dst[dstOffset:dstOffset+n], src[s:s+n])
		return
	}
	for i := 0; i < count[dim]; i++ {
		extractRecursive(src, dst, start, count, srcStrides, dstStrides,
			srcOffset+(start[dim]+i)*srcStrides[dim],
			dstOffset+i*dstStrides[dim],
			dim+1)
	}
}
