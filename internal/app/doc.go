// Package app drives one poll-diff-notify cycle per process invocation.
//
// The runner resolves a credential (reusing the persisted one when present),
// queries the live set with a single re-authentication retry on HTTP 401,
// diffs the result against the previously announced set, and sends the
// notification before persisting the new snapshot. Persisting only after a
// successful send keeps announcements at-most-once across restarts.
package app
