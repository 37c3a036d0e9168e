package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"schooltalk/internal/common"
	"schooltalk/internal/wire"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	log.Println("Initializing application...")
	app, err := wire.InitializeApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	router := setupRouter(app)

	server := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", app.Config.Server.Host, app.Config.Server.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(app.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(app.Config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if app.Mongo != nil {
		if err := app.Mongo.Close(ctx); err != nil {
			log.Printf("Mongo disconnect failed: %v", err)
		}
	}

	log.Println("Server gracefully stopped")
}

func setupRouter(app *wire.Application) *mux.Router {
	router := mux.NewRouter()

	router.Use(corsMiddleware)
	router.Use(loggingMiddleware)

	router.HandleFunc("/api/v1/health", healthCheckHandler).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(common.AuthMiddleware)

	threads := api.PathPrefix("/threads").Subrouter()
	threads.HandleFunc("", app.MessagingHandler.ListThreads).Methods("GET")
	threads.HandleFunc("", app.MessagingHandler.CreateThread).Methods("POST")
	threads.HandleFunc("/unread-count", app.MessagingHandler.TotalUnread).Methods("GET")
	threads.HandleFunc("/{threadID}", app.MessagingHandler.GetThread).Methods("GET")
	threads.HandleFunc("/{threadID}", app.MessagingHandler.DeleteThread).Methods("DELETE")
	threads.HandleFunc("/{threadID}/messages", app.MessagingHandler.GetMessages).Methods("GET")
	threads.HandleFunc("/{threadID}/messages", app.MessagingHandler.AppendMessage).Methods("POST")
	threads.HandleFunc("/{threadID}/messages/{messageID}/read", app.MessagingHandler.MarkRead).Methods("POST")
	threads.HandleFunc("/{threadID}/close", app.MessagingHandler.CloseThread).Methods("POST")
	threads.HandleFunc("/{threadID}/reopen", app.MessagingHandler.ReopenThread).Methods("POST")

	api.HandleFunc("/broadcasts", app.FanoutHandler.Broadcast).Methods("POST")

	api.HandleFunc("/attachments", app.AttachmentHandler.Upload).Methods("POST")
	api.HandleFunc("/media/{fileID}", app.AttachmentHandler.Serve).Methods("GET")
	api.HandleFunc("/media/{fileID}", app.AttachmentHandler.Discard).Methods("DELETE")

	return router
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"schooltalk-messaging"}`))
}
