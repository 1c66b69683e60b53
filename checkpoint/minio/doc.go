// Package minio stores checkpoints as objects in MinIO or any other
// S3-compatible service reachable through minio-go.
package minio
