// Package testing provides test utilities for the planboard library.
//
// This package offers helpers for setting up test environments, particularly
// embedded NATS servers for integration testing. It follows Go's convention
// of providing testing utilities in a dedicated package (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - NewJetStream: Convenience wrapper for creating a JetStream context
//   - NewTestLogger: Logger that writes to the testing.T log
//
// Example usage:
//
//	import (
//	    "testing"
//	    planboardtest "github.com/fieldline/planboard/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := planboardtest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
