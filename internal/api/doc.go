// Package api translates HTTP requests into calls on the study, progress,
// rewards and notification services and renders their results as JSON.
// Handlers read the authenticated learner from the request context, which
// the middleware package populates.
package api
