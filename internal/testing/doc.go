// Package testing provides test utilities, builders, and fixtures shared by
// package tests.
//
//   - ConfigBuilder: fluent builder for test configurations
//   - HostFixture: an in-memory host that simulates a distribution's
//     package manager, systemd and opendkim-genkey
//   - MockDNS, MockObjectStore: testify mocks for the optional publishers
//
// Usage:
//
//	cfg := testing.NewConfigBuilder().
//	    WithSelector("mail").
//	    WithDomains("example.com").
//	    Build()
//
//	fixture := testing.NewHostFixture("CentOS")
//	h := fixture.Host
package testing
