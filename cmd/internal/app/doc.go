// Package app wires configuration, storage, logging, metrics and the
// HTTP server into a runnable service.
package app
