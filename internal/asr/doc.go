// Package asr defines the contract shared by every transcript provider
// backend along with the error taxonomy the fallback chain is built on.
//
// Key responsibilities:
//   - The Provider interface (transcribe, cost estimate, input ceiling) that
//     the resolver iterates over.
//   - Sentinel error markers plus the Wrap helper so every backend reports
//     failures the chain can classify uniformly (retry, skip, or abort).
//   - Context helpers that stamp resolution and provider identifiers for
//     logging.
//
// Backends live in subpackages (filetrans, omni, whisper); nothing here
// performs network or subprocess work.
package asr
