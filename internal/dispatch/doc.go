// Package dispatch implements the reminder delivery side of the system: a
// periodic scanner that finds reminders due for sending, drives them through
// the per-channel senders, and applies the retry state machine
// (pending -> sent, pending -> pending with retry bookkeeping, or
// pending -> failed once attempts are exhausted).
//
// One scan pass processes each due reminder independently: a failure sending
// one reminder never aborts the rest of the pass. Per-reminder transitions
// are serialized by identity so a manual trigger overlapping the periodic
// scan cannot double-send the same reminder.
package dispatch
