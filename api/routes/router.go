package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/gymdesk-backend/api/controllers"
	"github.com/angelmondragon/gymdesk-backend/api/middleware"
	"github.com/angelmondragon/gymdesk-backend/internal/activities"
	"github.com/angelmondragon/gymdesk-backend/internal/auth"
	"github.com/angelmondragon/gymdesk-backend/internal/members"
	"github.com/angelmondragon/gymdesk-backend/internal/payments"
	"github.com/angelmondragon/gymdesk-backend/internal/plans"
	"github.com/angelmondragon/gymdesk-backend/pkg/auth/session"
	"github.com/angelmondragon/gymdesk-backend/pkg/config"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
	"github.com/angelmondragon/gymdesk-backend/pkg/redis"
)

// Services bundles the domain services mounted by the router.
type Services struct {
	Auth       auth.Service
	Members    members.Service
	Plans      plans.Service
	Payments   payments.Service
	Activities activities.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	storePinger controllers.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	svc Services,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	idem := idempotencyStore(redisClient)
	limiter := rateLimitStore(redisClient)

	loginPolicy := middleware.NewRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	publicPolicy := middleware.NewRateLimitPolicy(
		"public_payments",
		cfg.PublicRateLimit.Window,
		cfg.PublicRateLimit.IPLimit,
		0,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessDeps(storePinger, redisClient)))
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/public/v1", func(r chi.Router) {
		r.Get("/plans", controllers.PublicListPlans(svc.Plans, logg))
		r.With(
			middleware.RateLimit(publicPolicy, limiter, logg),
			middleware.Idempotency(idem, logg),
		).Post("/payments", controllers.PublicCreatePayment(svc.Payments, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.AuthLogin(svc.Auth, logg))
			if !cfg.App.IsProd() {
				r.Post("/register", controllers.AuthRegister(svc.Auth, logg))
			}
			r.With(middleware.Auth(cfg.JWT, sessions, logg)).Post("/logout", controllers.AuthLogout(svc.Auth, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Use(middleware.RequireRole(logg, enums.StaffRoleAdmin, enums.StaffRoleStaff))
			r.Use(middleware.Idempotency(idem, logg))

			r.Route("/members", func(r chi.Router) {
				r.Get("/", controllers.ListMembers(svc.Members, logg))
				r.Post("/", controllers.CreateMember(svc.Members, logg))
				r.Get("/{memberId}", controllers.GetMember(svc.Members, logg))
				r.Patch("/{memberId}", controllers.UpdateMember(svc.Members, logg))
			})

			r.Route("/plans", func(r chi.Router) {
				r.Get("/", controllers.ListPlans(svc.Plans, logg))
				r.Get("/{planId}", controllers.GetPlan(svc.Plans, logg))
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(logg, enums.StaffRoleAdmin))
					r.Post("/", controllers.CreatePlan(svc.Plans, logg))
					r.Patch("/{planId}", controllers.UpdatePlan(svc.Plans, logg))
				})
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", controllers.ListPayments(svc.Payments, logg))
				r.Post("/", controllers.CreatePayment(svc.Payments, logg))
				r.Get("/{paymentId}", controllers.GetPayment(svc.Payments, logg))
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(logg, enums.StaffRoleAdmin))
					r.Post("/{paymentId}/verify", controllers.VerifyPayment(svc.Payments, logg))
					r.Post("/{paymentId}/reject", controllers.RejectPayment(svc.Payments, logg))
				})
			})

			r.Get("/activities", controllers.ListActivities(svc.Activities, logg))
		})
	})

	return r
}

// A nil client must become a nil interface so the middleware can skip it.
func idempotencyStore(c *redis.Client) redis.IdempotencyStore {
	if c == nil {
		return nil
	}
	return c
}

func rateLimitStore(c *redis.Client) middleware.RateLimitStore {
	if c == nil {
		return nil
	}
	return c
}

func readinessDeps(storePinger controllers.Pinger, c *redis.Client) map[string]controllers.Pinger {
	deps := map[string]controllers.Pinger{"store": storePinger}
	if c != nil {
		deps["redis"] = c
	}
	return deps
}
