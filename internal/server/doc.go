// Package server implements the optional local status server.
//
// It exposes the latest sample and the recent history as JSON, a
// Server-Sent Events stream for live updates, and a small embedded
// status page. The server is entirely optional: when no status port
// is configured, seatwatch runs as a pure console tool.
//
// This package is internal; its types may change without notice.
package server
