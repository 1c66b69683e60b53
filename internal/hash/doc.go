// Package hash provides the checksum and bucket hashing primitives used by
// ddbgo.
//
// # CRC32-Castagnoli (CRC32C)
//
// Encoded value frames carry a CRC32C checksum, and literal, binary and
// floating point elements are bucketed through CRC32C of their canonical
// bytes. Go's crc32 package uses hardware instructions when available.
//
// # Buckets
//
// Integral elements are bucketed by their value modulo the bucket count, so
// partitioning by small integer keys stays predictable:
//
//	hash.BucketInt(-3, 4)          // 1
//	hash.Bucket([]byte("abc"), 4)  // CRC32C("abc") % 4
package hash
