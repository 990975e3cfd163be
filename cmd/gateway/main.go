package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	api "github.com/knowledge-challenge/quiz-platform/internal/api/http"
	"github.com/knowledge-challenge/quiz-platform/internal/auth"
	authmw "github.com/knowledge-challenge/quiz-platform/internal/auth/middleware"
	"github.com/knowledge-challenge/quiz-platform/internal/config"
	"github.com/knowledge-challenge/quiz-platform/internal/db"
	"github.com/knowledge-challenge/quiz-platform/internal/quiz"
	"github.com/knowledge-challenge/quiz-platform/internal/trivia"
)

func main() {
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	authSvc := authmw.NewAuthService(cfg.AuthSecret)

	// Session cache: Redis when configured so attempts survive a restart,
	// in-process otherwise.
	var store quiz.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store = quiz.NewRedisStore(client, cfg.SessionTTL)
	} else {
		store = quiz.NewMemoryStore()
	}

	provider := trivia.NewClient(cfg.TriviaBaseURL, nil)
	quizSvc := quiz.NewService(store, provider, cfg.QuestionCount, cfg.QuizDuration)
	defer quizSvc.Close()

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "auth-token"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/api/auth/register", api.RegisterHandler(dbh))
	r.Post("/api/auth/login", api.LoginHandler(dbh, authSvc))

	if cfg.EnableGoogleAuth {
		r.Get("/api/auth/google", auth.GoogleLoginHandler(cfg))
		r.Get("/api/auth/google/callback", auth.GoogleCallbackHandler(authSvc, dbh, cfg))
	}

	r.Group(func(pr chi.Router) {
		pr.Use(authmw.TokenMiddleware(authSvc))

		pr.Get("/api/user/me", api.MeHandler(dbh))

		pr.Route("/api/quiz/session", func(qr chi.Router) {
			qr.Post("/", api.StartSessionHandler(quizSvc))
			qr.Get("/", api.GetSessionHandler(quizSvc))
			qr.Post("/navigate", api.NavigateHandler(quizSvc))
			qr.Post("/answers", api.AnswerHandler(quizSvc))
			qr.Post("/review", api.ReviewHandler(quizSvc))
			qr.Post("/submit", api.SubmitSessionHandler(quizSvc))
			qr.Get("/report", api.ReportHandler(quizSvc))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
