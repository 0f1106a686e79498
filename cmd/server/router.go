package main

import (
	"net/http"

	"github.com/arch2702/smart-study-scheduler/internal/api"
	apiMiddleware "github.com/arch2702/smart-study-scheduler/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// setupRouter creates the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(app.logger))

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.verifier)
	profile := api.NewProfileHandler(app.profiles, app.location, app.logger)
	subjects := api.NewSubjectHandler(app.study, app.logger)
	topics := api.NewTopicHandler(app.study, app.progress, app.logger)
	rewardsHandler := api.NewRewardsHandler(app.rewards, app.logger)
	notificationHandler := api.NewNotificationHandler(app.notifications, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/me", profile.GetProfile)
		r.Patch("/me", profile.UpdateProfile)

		r.Get("/subjects", subjects.ListSubjects)
		r.Post("/subjects", subjects.CreateSubject)
		r.Get("/subjects/{id}", subjects.GetSubject)
		r.Put("/subjects/{id}", subjects.UpdateSubject)
		r.Delete("/subjects/{id}", subjects.DeleteSubject)

		r.Get("/topics/subject/{id}", topics.ListTopicsBySubject)
		r.Post("/topics", topics.CreateTopic)
		r.Get("/topics/{id}", topics.GetTopic)
		r.Put("/topics/{id}", topics.UpdateTopic)
		r.Delete("/topics/{id}", topics.DeleteTopic)
		r.Post("/topics/{id}/complete", topics.CompleteTopic)
		r.Post("/topics/{id}/review", topics.ReviewTopic)

		r.Get("/dashboard", rewardsHandler.GetDashboard)
		r.Get("/reviews/due", rewardsHandler.ListDueReviews)
		r.Get("/rewards", rewardsHandler.GetRewards)
		r.Get("/rewards/reconcile", rewardsHandler.ReconcileRewards)

		r.Get("/notifications", notificationHandler.ListNotifications)
		r.Post("/notifications/{id}/read", notificationHandler.MarkRead)
	})

	r.Get("/health", api.NewHealthHandler(app.healthChecks(), app.logger).Health)

	return r
}

func (app *application) healthChecks() map[string]api.HealthChecker {
	checks := make(map[string]api.HealthChecker)
	if app.db != nil {
		checks["database"] = api.HealthCheckFunc(app.db.PingContext)
	}
	if app.cache != nil {
		checks["cache"] = app.cache
	}
	return checks
}
