package api

import (
	"ctf_arena/internal/api/handler"
	"ctf_arena/internal/api/middleware"
	"ctf_arena/internal/app/service"
	"ctf_arena/internal/common/security"
	"ctf_arena/internal/domain/repository"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	challengeService *service.ChallengeService,
	solveService *service.SolveService,
	scoreService *service.ScoreService,
	broadcastService *service.BroadcastService,
	attemptRepo repository.AttemptRepository,
	achievementRepo repository.AchievementRepository,
	rewardRepo repository.RewardRepository,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// JWT Auth Middleware Setup
	// It will search for a token in "Authorization: Bearer T".
	r.Use(jwtauth.Verifier(security.TokenAuth)) // Verifies token, puts claims in context

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		// Auth routes (public)
		authHandler := handler.NewAuthHandler(authService)
		v1.Group(func(publicAuth chi.Router) {
			authHandler.RegisterRoutes(publicAuth)
		})

		// Challenge routes: the solve endpoint lives under the same
		// prefix as the challenge CRUD, so register both on it.
		challengeHandler := handler.NewChallengeHandler(challengeService, broadcastService)
		solveHandler := handler.NewSolveHandler(solveService)
		v1.Route("/challenges", func(cr chi.Router) {
			cr.Use(middleware.Authenticator)
			challengeHandler.RegisterRoutes(cr)
			solveHandler.RegisterRoutes(cr)
		})

		// Attempt ledger (admin)
		attemptHandler := handler.NewAttemptHandler(attemptRepo)
		v1.Route("/attempts", attemptHandler.RegisterRoutes)

		// Achievement ledger
		achievementHandler := handler.NewAchievementHandler(achievementRepo)
		v1.Route("/achievements", achievementHandler.RegisterRoutes)

		// Rewards
		rewardHandler := handler.NewRewardHandler(rewardRepo)
		v1.Route("/rewards", rewardHandler.RegisterRoutes)

		// Scoreboard (recomputed per request)
		scoreHandler := handler.NewScoreHandler(scoreService)
		v1.Route("/score", scoreHandler.RegisterRoutes)
	})

	return r
}
