// Package refresh is the periodic liveness sweep over active discussions.
//
// It detects dead or expired sessions, surfaces the renewal-needed callback
// for them, and sends keep-alives to peers whose unacknowledged sends have
// gone quiet past the keep-alive interval.
package refresh
