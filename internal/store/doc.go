// Package store provides in-memory storage for check samples.
//
// The store keeps the latest sample, a bounded ring of recent
// samples, and a publish-subscribe mechanism used by the status
// server to push live updates to connected clients.
//
// Everything lives in memory: nothing is persisted and all history is
// lost when the process exits, which is the intended behavior.
//
// This package is internal; its types may change without notice.
package store
