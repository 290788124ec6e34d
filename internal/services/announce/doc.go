// Package announce publishes outgoing session-establishment announcements
// and applies incoming ones.
//
// It owns the pending-announcement queue and the transport cursor: fetched
// announcements are persisted before processing, a processing failure leaves
// the record queued for the next sweep, and the cursor never advances past a
// retained failure.
package announce
