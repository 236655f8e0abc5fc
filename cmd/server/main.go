package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/mystic-06/quik-type/internal/constants"
	"github.com/mystic-06/quik-type/internal/db"
	"github.com/mystic-06/quik-type/internal/handlers"
	"github.com/mystic-06/quik-type/internal/registry"
	"github.com/mystic-06/quik-type/internal/words"
)

// Initialize logging configuration
func init() {
	godotenv.Load()
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
}

// corsMiddleware sets CORS headers and answers preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	origin := os.Getenv("ALLOWED_ORIGIN")
	if origin == "" {
		origin = "http://localhost:3000"
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")

		// Websocket upgrades skip further CORS checks
		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Main server function
func main() {
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		if err := db.Connect(uri); err != nil {
			log.Printf("Could not connect to MongoDB, using generated words: %v", err)
		}
	} else {
		log.Printf("MONGO_URI not set, using generated words")
	}

	source := words.NewSource()
	reg := registry.New(source.TestText)
	coordinator := handlers.NewCoordinator(reg)

	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.HandleFunc("/health", coordinator.HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/debug/rooms", coordinator.HandleDebugRooms).Methods(http.MethodGet)
	r.HandleFunc("/api/check-room", coordinator.HandleCheckRoom).Methods(http.MethodGet)
	r.HandleFunc("/ws", coordinator.HandleWebSocket)

	// Safety-net sweep of rooms that never got a participant.
	go func() {
		ticker := time.NewTicker(constants.SweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			if removed := reg.Sweep(constants.RoomMaxIdle); removed > 0 {
				log.Printf("Sweep removed %d stale rooms", removed)
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(constants.StatsInterval)
		defer ticker.Stop()
		for range ticker.C {
			rooms, participants := reg.Stats()
			log.Printf("Server stats - Rooms: %d, Participants: %d", rooms, participants)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-stop
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	log.Printf("Server starting on http://localhost:%s", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
