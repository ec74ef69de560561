// Package ssh provides an SSH client for executing commands on the target host.
//
// The host package wraps it to read, write and stat files and to run the
// key-generation tool and service manager remotely. The client keeps one
// connection per run and retries only connection establishment.
package ssh
