// Package locator resolves a video reference against the platform's detail
// API. The outcome is one of three shapes: an ordered native subtitle track,
// a downloadable media URL for the ASR fallback chain, or not-found. The
// platform response is treated as an untrusted collaborator; anything the
// parser cannot make sense of degrades to not-found rather than guessing.
//
// Only douyin has a detail endpoint wired up. Other recognized platforms
// such as video channels are rejected with an unsupported-format error
// until their lookup APIs are implemented.
package locator
