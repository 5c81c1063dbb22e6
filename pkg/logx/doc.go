// Package logx wraps zerolog behind a small, swap-at-runtime logging API.
//
// The Service owns the sinks (console, file) and can re-apply configuration
// without invalidating loggers already handed out; Logger values derived
// from it stay live across Apply() calls.
package logx
