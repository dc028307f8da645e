// Package events provides the reminder lifecycle event types and emitter.
//
// The dispatch scanner publishes an event whenever a reminder reaches a
// terminal state, without knowing which handlers will process it. This keeps
// audit logging and any future downstream consumers decoupled from the
// delivery loop.
//
// The primary components are:
// - ReminderLifecycleEvent: Records a terminal reminder state transition
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
