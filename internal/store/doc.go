// Package store defines the persistence interfaces for subjects, topics,
// learners, the reward ledger and notifications.
//
// Every write that touches more than one row runs inside a UnitOfWork so
// that a topic transition, its ledger entry and the learner's balance are
// committed together. Implementations live under internal/platform.
package store
