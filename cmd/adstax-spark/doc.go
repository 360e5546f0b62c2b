// Package main hosts the adstax-spark CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into calls
// against the Spark dispatcher and the Mesos cluster: driver submission,
// kill and status requests, log capture and tailing, local submission
// history, and configuration scaffolding. It centralizes configuration
// resolution and structured logging setup so subcommands can focus on user
// experience instead of wiring.
package main
