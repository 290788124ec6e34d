// Package discussion composes the announcement and message services behind
// the user-facing initialize, accept, and refuse operations.
package discussion
