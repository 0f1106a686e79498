// Package events carries domain events between the study services and the
// components that react to them, such as the reward summary cache.
//
// Services emit an Event after their unit of work commits. Handlers run
// synchronously in registration order and must not fail the emitting
// operation: the emitter reports handler errors but the state change that
// produced the event has already been persisted.
package events
