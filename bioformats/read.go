package bioformats

// OpenUint8 reads one plane as uint8 values.
func (r *Reader) OpenUint8(path string, series, index int) ([]uint8, error) {
	var result []uint8
	err := r.OpenPlane(path, series, index, &result)
	return result, err
}

// OpenInt8 reads one plane as int8 values.
func (r *Reader) OpenInt8(path string, series, index int) ([]int8, error) {
	var result []int8
	err := r.OpenPlane(path, series, index, &result)
	return result, err
}

// OpenUint16 reads one plane as uint16 values.
func (r *Reader) OpenUint16(path string, series, index int) ([]uint16, error) {
	var result []uint16
	err := r.OpenPlane(path, series, index, &result)
	return result, err
}

// OpenInt16 reads one plane as int16 values.
func (r *Reader) OpenInt16(path string, series, index int) ([]int16, error) {
	var result []int16
	err := r.OpenPlane(path, series, index, &result)
	return result, err
}

// OpenUint32 reads one plane as uint32 values.
func (r *Reader) OpenUint32(path string, series, index int) ([]uint32, error) {
	var result []uint32
	err := r.OpenPlane(path, series, index, &result)
	return result, err
}

// OpenInt32 reads one plane as int32 values.
func (r *Reader) OpenInt32(path string, series, index int) ([]int32, error) {
	var result []int32
	err := r.OpenPlane(path, series, index, &result)
	return result, err
}

// OpenFloat32 reads one plane as float32 values.
func (r *Reader) OpenFloat32(path string, series, index int) ([]float32, error) {
	var result []float32
	err := r.OpenPlane(path, series, index, &result)
	return result, err
}

// OpenFloat64 reads one plane as float64 values, converting any pixel type.
func (r *Reader) OpenFloat64(path string, series, index int) ([]float64, error) {
	var result []float64
	err := r.OpenPlane(path, series, index, &result)
	return result, err
}
