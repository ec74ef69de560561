// Package retry retries transient failures with exponential backoff.
//
// [Do] is used for SSH connection establishment against hosts that may
// still be booting. Errors wrapped with [Fatal] stop the loop at once.
package retry
