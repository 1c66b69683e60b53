// Package checkpoint persists the last delivered offset of streaming
// subscriptions so a restarted subscriber can resume where it stopped.
//
// A Store maps a topic ("host:port/table/action") to an offset. Load
// returns ErrNotFound for topics that were never saved. Implementations
// live in this package (Memory, File, Cached) and in the minio and s3
// sub-packages for object storage.
package checkpoint
