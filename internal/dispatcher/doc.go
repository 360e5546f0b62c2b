// Package dispatcher wraps the Spark dispatcher submissions REST API.
//
// Every call is a single synchronous request: status lookups, driver
// submission, and driver kills. Responses are decoded into typed structs and
// any non-success status or undecodable body surfaces as a wrapped error.
package dispatcher
