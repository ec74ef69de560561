// Package provisioning provides shared types and orchestration for
// converging a host.
//
// # Core Types
//
// Context carries configuration, the target host, detected facts, the
// observer and the per-run handler and result accumulators.
// Phase defines a provisioning step with Name() and Provision() methods.
// Pipeline runs phases in order and stops at the first failure.
// Handlers collects deferred notifications and flushes each at most once.
package provisioning
