// Package media defines the core value types shared across the resolution
// pipeline: parsed video references with their platform tag and credential
// bundle, fetched media assets, and the per-resolution scratch directory
// that owns temporary asset storage.
package media
