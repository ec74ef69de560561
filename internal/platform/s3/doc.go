// Package s3 provides a client for S3-compatible object storage.
//
// It stores DKIM key backups in a single bucket. Without an endpoint the
// client talks to AWS; with one it uses path-style addressing, which
// MinIO, Ceph and most other S3-compatible services expect.
package s3
