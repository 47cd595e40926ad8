// Package chatid derives deterministic chat thread identifiers.
//
// A one-to-one chat is keyed by the sorted pair of its participant ids, so
// both participants, racing concurrently, always address the same document.
// No server-side uniqueness index or lock is needed: creating a chat by this
// key is idempotent.
package chatid

import "strings"

// Separator joins the two participant ids. User ids are UUIDs and never
// contain it.
const Separator = "_"

// ThreadID returns the canonical chat id for the unordered pair {a, b}.
// ThreadID(a, b) == ThreadID(b, a). A self-chat (a == b) yields the id with
// the user's own id repeated, which is distinct from every two-party id.
func ThreadID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + Separator + b
}

// Participants returns the sorted participant pair for the unordered pair
// {a, b}, matching the order embedded in ThreadID.
func Participants(a, b string) []string {
	if b < a {
		a, b = b, a
	}
	return []string{a, b}
}

// Split recovers the sorted participant pair from a thread id. The second
// return is false for ids not produced by ThreadID.
func Split(threadID string) ([]string, bool) {
	parts := strings.Split(threadID, Separator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, false
	}
	if parts[1] < parts[0] {
		return nil, false
	}
	return parts, true
}
