// Package urlnorm canonicalizes URL strings into deduplication keys.
//
// A normalized URL is only ever used for set membership while crawling a
// site. It is never used for navigation, so the functions here are free to
// produce strings that are not valid URLs.
//
// Two strategies are provided:
//   - Normalize: the literal rule used by earlier result files. It lowercases
//     the input and removes every "www." substring and all trailing slashes.
//   - NormalizeHost: strips "www." only when it prefixes the host.
//
// Design decision: Normalize keeps the substring rule even though it can
// collide unrelated paths that contain "www." because results recorded with
// it must stay comparable. NormalizeHost is opt-in via configuration.
package urlnorm
