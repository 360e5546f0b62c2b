// Package testsupport provides shared test fixtures, most notably an
// in-process fake of the cluster stack handling dispatcher, orchestration,
// master, and agent requests from a single httptest server.
package testsupport
