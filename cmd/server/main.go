package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	_ "studyhub/docs"
	"studyhub/internal/app"
	"studyhub/internal/config"
	"studyhub/internal/llm"
	"studyhub/internal/logging"
	"studyhub/internal/service"
	"studyhub/internal/transport/rest"
	"studyhub/internal/transport/ws"
	"studyhub/internal/zoom"
)

const feedInterval = 30 * time.Second

// @title                      studyhub API
// @version                    1.0
// @description                Tutoring sessions, meeting provisioning, tutor matching and study games
// @host                       localhost:8080
// @BasePath                   /v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	authSvc, err := service.NewAuthService(cfg)
	if err != nil {
		log.Fatal("authentication unavailable", zap.Error(err))
	}

	stores, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("storage unavailable", zap.Error(err))
	}
	defer stores.Close(context.Background())

	// Optional features degrade to a stand-in that reports the missing keys per request.
	var provisioner service.MeetingProvisioner
	if c, err := zoom.NewClient(ctx, cfg.Zoom, log); err != nil {
		log.Warn("meeting provisioning disabled", zap.Error(err))
		provisioner = zoom.Disabled{Err: err}
	} else {
		provisioner = c
	}
	var signer service.Signer
	if s, err := zoom.NewSigner(cfg.Zoom); err != nil {
		log.Warn("meeting SDK signatures disabled", zap.Error(err))
		signer = zoom.Disabled{Err: err}
	} else {
		signer = s
	}

	matchingModel := newModel(cfg.AI, cfg.AI.Models.Matching, log)
	gamesModel := newModel(cfg.AI, cfg.AI.Models.Games, log, llm.WithJSONResponses())
	log.Info("AI models",
		zap.String("matching", cfg.AI.Models.Matching),
		zap.String("games", cfg.AI.Models.Games),
		zap.Bool("enabled", cfg.AI.IsEnabled()))

	// Initialize services
	profileSvc := service.NewProfileService(stores.ProfileRepo)
	sessionSvc := service.NewSessionService(stores.SessionRepo, stores.ProfileRepo, stores.SessionCache, log)
	meetingSvc := service.NewMeetingService(sessionSvc, provisioner, signer, log)
	matchingSvc := service.NewMatchingService(matchingModel, profileSvc, log)
	gameSvc := service.NewGameService(gamesModel, stores.GameCache, stores.LeaderboardCache, stores.ProfileRepo, log)

	// Live session status feed
	wsHub := ws.NewHub(log)
	feed := ws.NewFeed(wsHub, sessionSvc, feedInterval, log)
	go feed.Run(ctx)

	router := rest.NewRouter(&rest.Container{
		AuthService:     authSvc,
		ProfileService:  profileSvc,
		SessionService:  sessionSvc,
		MeetingService:  meetingSvc,
		MatchingService: matchingSvc,
		GameService:     gameSvc,
		WSHub:           wsHub,
		SessionFeed:     feed,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		Logger:          log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe failed", zap.Error(err))
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")
	stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

func newModel(cfg *config.AIConfig, name string, log *zap.Logger, opts ...llm.Option) llms.Model {
	c, err := llm.NewClient(cfg, name, log, opts...)
	if err != nil {
		log.Warn("AI study tools disabled", zap.String("model", name), zap.Error(err))
		return llm.Disabled{Err: err}
	}
	return c
}
