// Package task runs the study planner's background jobs. The reminder
// sweep walks every learner on a fixed interval and asks the notification
// service to create a due-review reminder where one is needed.
package task
