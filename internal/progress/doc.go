// Package progress reports batch progress on the terminal.
//
// Spinner animates a single line ("[3/10] checking https://a.com") while a
// site is being crawled, in the spirit of a progress bar over the seed list.
// Plain prints one line per finished site and suits logs and CI output.
// Nop discards everything.
package progress
