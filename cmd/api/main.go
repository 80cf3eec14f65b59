package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fin100x/server/internal/auth"
	"github.com/fin100x/server/internal/chat"
	"github.com/fin100x/server/internal/config"
	"github.com/fin100x/server/internal/db"
	apihttp "github.com/fin100x/server/internal/http"
	"github.com/fin100x/server/internal/http/handlers"
	"github.com/fin100x/server/internal/meet"
	"github.com/fin100x/server/internal/repo"
	"github.com/fin100x/server/internal/sms"
	"github.com/fin100x/server/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(pool); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	users := repo.NewUserRepo(pool)
	otps := repo.NewOTPRepo(pool)
	sessions := repo.NewSessionRepo(pool)
	admins := repo.NewAdminRepo(pool)
	adminTokens := repo.NewAdminTokenRepo(pool)
	blacklist := repo.NewBlacklistRepo(pool)
	advisors := repo.NewAdvisorRepo(pool)
	reviews := repo.NewReviewRepo(pool)
	banners := repo.NewBannerRepo(pool)
	glossary := repo.NewGlossaryRepo(pool)
	quizzes := repo.NewQuizRepo(pool)
	meetings := repo.NewMeetingRepo(pool)
	financials := repo.NewFinancialRepo(pool)

	var sender sms.Sender
	if cfg.SMSDryRun {
		sender = sms.DryRunSender{}
	} else {
		sender = sms.NewTwilioClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom)
	}

	var signer storage.URLSigner
	if cfg.GCSBucket != "" && cfg.GCSAccessID != "" && cfg.GCSPrivateKey != "" {
		signer = storage.NewGCSSigner(cfg.GCSBucket, cfg.GCSAccessID, []byte(cfg.GCSPrivateKey), cfg.SignedURLTTL)
	} else {
		log.Print("GCS signing not configured, serving raw object names")
		signer = storage.PassthroughSigner{}
	}

	codec := auth.NewTokenCodec(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	otpService := auth.NewOTPService(otps, sender)
	authService := auth.NewService(otpService, codec, users, sessions)
	adminService := auth.NewAdminService(codec, admins, adminTokens, blacklist)

	transcripts := meet.NewClient(func(context.Context) (string, error) {
		if cfg.MeetAccessToken == "" {
			return "", errors.New("MEET_ACCESS_TOKEN not configured")
		}
		return cfg.MeetAccessToken, nil
	})

	router := apihttp.NewRouter(apihttp.Deps{
		Codec:     codec,
		Sessions:  sessions,
		Blacklist: blacklist,
		Auth:      handlers.NewAuthHandler(authService),
		AdminAuth: handlers.NewAdminAuthHandler(adminService),
		User:      handlers.NewUserHandler(users, chat.NewClient(cfg.ChatBackendURL)),
		Financial: handlers.NewFinancialHandler(financials),
		Advisor:   handlers.NewAdvisorHandler(advisors, reviews, signer),
		Banner:    handlers.NewBannerHandler(banners, signer),
		Glossary:  handlers.NewGlossaryHandler(glossary),
		Quiz:      handlers.NewQuizHandler(quizzes),
		Meeting:   handlers.NewMeetingHandler(meetings, transcripts),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Print("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
