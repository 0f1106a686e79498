// Package service contains the study planner's application services. It
// coordinates domain rules with the stores in internal/store, running every
// multi-step change inside a store.UnitOfWork so that a learner's data is
// never observed half-written.
//
// Subject and topic management live here. Topic lifecycle transitions are
// in the progress subpackage, reward reporting in rewards and reminders in
// notifications.
package service
