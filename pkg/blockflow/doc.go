// Package blockflow provides a minimal public façade for registering block
// types and executing programs without importing internal packages. It
// re-exports the core domain types for convenience and exposes a Runtime with
// simple methods to save and run programs.
package blockflow
