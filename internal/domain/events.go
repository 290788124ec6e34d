package domain

// Events is the set of application-level callbacks the caller injects at
// wiring time. Fields may be nil; use the Emit helpers. There is no global
// event bus.
type Events struct {
	// OnSessionBecameActive fires when a peer's session transitions to
	// Active. The subscriber is expected to flush that peer's
	// WAITING_SESSION queue.
	OnSessionBecameActive func(peer UserID)

	// OnSessionRenewalNeeded fires when a session is dead or an announcement
	// retry has escalated past the broken threshold; the subscriber should
	// trigger a fresh establishment rather than blind retry.
	OnSessionRenewalNeeded func(peer UserID)

	// OnError receives failures that are reported rather than returned.
	OnError func(err error)
}

// EmitSessionBecameActive invokes the callback when set.
func (e Events) EmitSessionBecameActive(peer UserID) {
	if e.OnSessionBecameActive != nil {
		e.OnSessionBecameActive(peer)
	}
}

// EmitSessionRenewalNeeded invokes the callback when set.
func (e Events) EmitSessionRenewalNeeded(peer UserID) {
	if e.OnSessionRenewalNeeded != nil {
		e.OnSessionRenewalNeeded(peer)
	}
}

// EmitError invokes the callback when set.
func (e Events) EmitError(err error) {
	if e.OnError != nil {
		e.OnError(err)
	}
}
