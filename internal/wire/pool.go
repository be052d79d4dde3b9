package wire

import "sync"

// Size-tiered buffer pools for encode-side buffer reuse, shared by the
// BCS and Bincode codecs. Buffers are pooled in size classes: 64, 256,
// 1024, 4096, 16384, 65536 bytes.
var bufferPools = [6]sync.Pool{
	{New: func() any { return make([]byte, 0, 64) }},
	{New: func() any { return make([]byte, 0, 256) }},
	{New: func() any { return make([]byte, 0, 1024) }},
	{New: func() any { return make([]byte, 0, 4096) }},
	{New: func() any { return make([]byte, 0, 16384) }},
	{New: func() any { return make([]byte, 0, 65536) }},
}

var bufferSizes = [6]int{64, 256, 1024, 4096, 16384, 65536}

func poolIndex(size int) int {
	for i, s := range bufferSizes {
		if size <= s {
			return i
		}
	}
	return -1
}

// GetBuffer returns a zero-length buffer with at least sizeHint capacity,
// from the appropriate size-tiered pool when sizeHint is small enough to
// be pooled.
func GetBuffer(sizeHint int) []byte {
	idx := poolIndex(sizeHint)
	if idx < 0 {
		return make([]byte, 0, sizeHint)
	}
	buf := bufferPools[idx].Get().([]byte)
	return buf[:0]
}

// PutBuffer returns buf to the pool matching its capacity. Buffers larger
// than the largest size class are left for the garbage collector.
func PutBuffer(buf []byte) {
	c := cap(buf)
	if c > bufferSizes[len(bufferSizes)-1] {
		return
	}
	if idx := poolIndex(c); idx >= 0 {
		bufferPools[idx].Put(buf[:0]) //nolint:staticcheck // buf[:0] clears length, keeps capacity
	}
}
