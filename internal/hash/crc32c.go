package hash

import (
	"hash"
	"hash/crc32"
)

// crc32cTable is pre-computed for CRC32-Castagnoli polynomial.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// NewCRC32C returns a new CRC32-Castagnoli hash.Hash32.
func NewCRC32C() hash.Hash32 {
	return crc32.New(crc32cTable)
}

// Bucket maps data onto [0, buckets). It returns -1 if buckets <= 0.
func Bucket(data []byte, buckets int) int {
	if buckets <= 0 {
		return -1
	}
	return int(CRC32C(data) % uint32(buckets))
}

// BucketInt maps an integral key onto [0, buckets) by its non-negative
// remainder. It returns -1 if buckets <= 0.
func BucketInt(v int64, buckets int) int {
	if buckets <= 0 {
		return -1
	}
	b := int64(buckets)
	r := v % b
	if r < 0 {
		r += b
	}
	return int(r)
}
