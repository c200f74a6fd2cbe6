// Package review implements the hard code review engine.
//
// A review runs a fixed, ordered battery of pattern checks over a snippet,
// summarizes the findings and derives remediation steps. Every function in
// this package is pure: the same input always yields the same result and no
// state is shared between calls, so an Engine may be used concurrently.
package review
