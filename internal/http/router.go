// Package http wires the handlers and guards into the route tree.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/fin100x/server/internal/auth"
	"github.com/fin100x/server/internal/http/handlers"
	"github.com/fin100x/server/internal/middleware"
	"github.com/fin100x/server/internal/repo"
)

// Deps carries everything the router needs.
type Deps struct {
	Codec     *auth.TokenCodec
	Sessions  repo.SessionRepo
	Blacklist repo.BlacklistRepo

	Auth      *handlers.AuthHandler
	AdminAuth *handlers.AdminAuthHandler
	User      *handlers.UserHandler
	Financial *handlers.FinancialHandler
	Advisor   *handlers.AdvisorHandler
	Banner    *handlers.BannerHandler
	Glossary  *handlers.GlossaryHandler
	Quiz      *handlers.QuizHandler
	Meeting   *handlers.MeetingHandler
}

// NewRouter builds the route tree.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	userGuard := middleware.Authenticate(d.Codec, d.Sessions)
	adminGuard := middleware.AuthenticateAdmin(d.Codec, d.Blacklist)

	r.Get("/health", handlers.HandleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/otp/request", d.Auth.HandleRequestOTP)
		r.Post("/otp/verify", d.Auth.HandleVerifyOTP)
		r.Post("/token/refresh", d.Auth.HandleRefresh)
		r.With(userGuard).Post("/logout", d.Auth.HandleLogout)
	})

	r.Route("/admin-auth", func(r chi.Router) {
		r.Post("/login", d.AdminAuth.HandleLogin)
		r.Post("/refresh", d.AdminAuth.HandleRefresh)
		r.Post("/logout", d.AdminAuth.HandleLogout)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/banners", d.Banner.HandleListActive)
		r.Get("/glossary", d.Glossary.HandleList)

		r.Group(func(r chi.Router) {
			r.Use(userGuard)

			r.Route("/user", func(r chi.Router) {
				r.Get("/me", d.User.HandleMe)
				r.Patch("/profile", d.User.HandleUpdateProfile)
				r.Post("/chat", d.User.HandleChat)
			})

			r.Route("/financial", func(r chi.Router) {
				r.Post("/", d.Financial.HandleSubmit)
				r.Get("/latest", d.Financial.HandleLatest)
			})

			r.Route("/advisor", func(r chi.Router) {
				r.Get("/", d.Advisor.HandleList)
				r.Get("/{id}", d.Advisor.HandleGet)
				r.Get("/{id}/reviews", d.Advisor.HandleListReviews)
				r.Post("/{id}/reviews", d.Advisor.HandleCreateReview)
			})

			r.Route("/meetings", func(r chi.Router) {
				r.Post("/", d.Meeting.HandleCreate)
				r.Get("/", d.Meeting.HandleList)
				r.Get("/next", d.Meeting.HandleNext)
				r.Get("/{id}/transcript", d.Meeting.HandleTranscript)
			})

			r.Get("/quiz/latest", d.Quiz.HandleLatest)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminGuard)

			r.Route("/advisors", func(r chi.Router) {
				r.Post("/", d.Advisor.HandleCreate)
				r.Put("/{id}", d.Advisor.HandleUpdate)
				r.Delete("/{id}", d.Advisor.HandleDelete)
			})

			r.Route("/banners", func(r chi.Router) {
				r.Get("/", d.Banner.HandleList)
				r.Post("/", d.Banner.HandleCreate)
				r.Put("/{id}", d.Banner.HandleUpdate)
				r.Delete("/{id}", d.Banner.HandleDelete)
			})

			r.Route("/glossary", func(r chi.Router) {
				r.Post("/", d.Glossary.HandleCreate)
				r.Put("/{id}", d.Glossary.HandleUpdate)
				r.Delete("/{id}", d.Glossary.HandleDelete)
			})

			r.Route("/quizzes", func(r chi.Router) {
				r.Get("/", d.Quiz.HandleList)
				r.Post("/", d.Quiz.HandleCreate)
				r.Delete("/{id}", d.Quiz.HandleDelete)
			})
		})
	})

	return r
}
