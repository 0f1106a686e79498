// Package domain contains the core entities of the study planner: subjects,
// topics, learners, reward ledger entries and notifications. Entities carry
// their own validation; state transitions live in the lifecycle package.
package domain
