package rest

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
	"go.uber.org/zap"

	"studyhub/internal/service"
	"studyhub/internal/transport/rest/handler"
	"studyhub/internal/transport/rest/middleware"
	"studyhub/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService     *service.AuthService
	ProfileService  *service.ProfileService
	SessionService  *service.SessionService
	MeetingService  *service.MeetingService
	MatchingService *service.MatchingService
	GameService     *service.GameService
	WSHub           *ws.Hub
	SessionFeed     *ws.Feed
	AllowedOrigins  string
	Logger          *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()
	log := c.Logger

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.ProfileService, log)
	meetingHandler := handler.NewMeetingHandler(c.MeetingService, log)
	sessionHandler := handler.NewSessionHandler(c.SessionService, c.MeetingService, log)
	tutorHandler := handler.NewTutorHandler(c.ProfileService, c.MatchingService, log)
	gameHandler := handler.NewGameHandler(c.GameService, log)
	wsHandler := ws.NewHandler(c.WSHub, c.SessionFeed, c.AuthService, log)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.AllowedOrigins))
	r.Use(middleware.RequestLogger(log))

	// Meeting relay, original paths
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/create-zoom-meeting", meetingHandler.CreateMeeting).Methods("POST", "OPTIONS")
	api.HandleFunc("/zoom-signature", meetingHandler.Signature).Methods("POST", "OPTIONS")

	// Health, metrics and docs
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/docs/swagger.json", serveDocs).Methods("GET")
	v1.HandleFunc("/tutors", tutorHandler.Search).Methods("GET", "OPTIONS")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/sessions", wsHandler.SessionsWS).Methods("GET")

	// Joining works signed in or not
	joinRoutes := v1.NewRoute().Subrouter()
	joinRoutes.Use(authMW.OptionalUser)
	joinRoutes.HandleFunc("/sessions/{id}/join", sessionHandler.Join).Methods("POST", "OPTIONS")

	// User routes (require auth)
	userRoutes := v1.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireUser)

	userRoutes.HandleFunc("/me", authHandler.Me).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/match", tutorHandler.Match).Methods("POST", "OPTIONS")

	userRoutes.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/sessions", sessionHandler.List).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods("GET", "OPTIONS")

	userRoutes.HandleFunc("/games/leaderboard/{kind}", gameHandler.Leaderboard).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/games/matching/{id}/flip", gameHandler.Flip).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/games/rpg/{id}/choose", gameHandler.Choose).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/games/rpg/{id}/finish", gameHandler.Finish).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/games/quiz/{id}/submit", gameHandler.Submit).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/games/{kind:matching|rpg|quiz}", gameHandler.Start).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/games/{id}/reload", gameHandler.Reload).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/games/{id}", gameHandler.Get).Methods("GET", "OPTIONS")

	return r
}

func serveDocs(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		http.Error(w, `{"error":"api docs are not registered"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if strings.TrimSpace(allowedOrigins) == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
