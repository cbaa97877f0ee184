package main

import (
	"context"
	"ctf_arena/internal/api"
	"ctf_arena/internal/app/service"
	"ctf_arena/internal/common/security"
	"ctf_arena/internal/domain/repository"
	"ctf_arena/internal/platform/config"
	"ctf_arena/internal/platform/database"
	"ctf_arena/internal/platform/pubsub"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 4. Initialize Redis (broadcast transport)
	pubsub.ConnectRedis()
	defer pubsub.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	challengeRepo := repository.NewPgChallengeRepository(database.DB)
	attemptRepo := repository.NewPgAttemptRepository(database.DB)
	achievementRepo := repository.NewPgAchievementRepository(database.DB)
	rewardRepo := repository.NewPgRewardRepository(database.DB)

	// 6. Initialize Services
	authService := service.NewAuthService(userRepo)
	challengeService := service.NewChallengeService(challengeRepo)
	broadcastService := service.NewBroadcastService(service.NewRedisPublisher(pubsub.RDB))
	solveService := service.NewSolveService(challengeService, attemptRepo, achievementRepo, broadcastService, config.AppConfig.SolveLockout)
	scoreService := service.NewScoreService(challengeRepo, achievementRepo, userRepo, rewardRepo,
		config.AppConfig.BaseChallengeScore, config.AppConfig.ScoreFloor)

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(authService, challengeService, solveService, scoreService, broadcastService,
		attemptRepo, achievementRepo, rewardRepo)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
