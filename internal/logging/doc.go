// Package logging constructs the slog loggers used for CLI diagnostics.
//
// It offers a compact console format for interactive use and a JSON format
// for machine consumption, selected through configuration. Diagnostic output
// always goes to stderr so it never interleaves with streamed job logs on
// stdout.
package logging
