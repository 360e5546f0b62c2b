// Package logsession turns a submission id into a live local view of its
// console output.
//
// A Session resolves the submission through the dispatcher and the cluster
// state, then runs one Capture per logical stream (stdout, stderr) copying
// the remote file into an append-only local buffer, and in follow mode one
// Watcher per buffer emitting lines as they arrive. Buffers have exactly one
// writer and any number of polling readers, so no locking is needed between
// capture and tail; readers simply see a prefix of the final content.
package logsession
