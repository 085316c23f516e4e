package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"AutoDJ/config"
	"AutoDJ/core/audio"
	"AutoDJ/core/finder"
	"AutoDJ/core/mixjob"
	"AutoDJ/db"
	"AutoDJ/repository"
	"AutoDJ/storage"

	"github.com/gorilla/mux"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Connect to the database
	if err := db.ConnectDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.DB.Close()

	// Connect to Redis
	if err := db.ConnectRedis(cfg); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer db.CloseRedis()
	log.Println("Successfully connected to Redis")

	// Initialize MinIO
	if err := storage.InitMinio(cfg); err != nil {
		log.Fatalf("Failed to initialize MinIO: %v", err)
	}

	// Initialize database schema
	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	ensureDirExists(cfg.TrackDir)
	ensureDirExists(cfg.MixDir)

	trackRepo := repository.NewMySQLTrackRepository()
	mixRepo := repository.NewMySQLMixRepository()
	trackFinder := finder.New(cfg)
	decoder := audio.NewFFmpegDecoder(cfg.FFmpegPath)
	encoder := audio.NewFFmpegEncoder(cfg.FFmpegPath, cfg.AudioBitrate)
	runner := mixjob.NewRunner(cfg, trackRepo, mixRepo, trackFinder, decoder, encoder,
		&mixjob.MinioStore{Bucket: cfg.MinioBucket}, mixjob.NewBroker())

	apiHandler := NewAPIHandler(trackRepo, mixRepo, trackFinder, decoder, runner, cfg)

	router := mux.NewRouter()

	// CORS middleware
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// API Endpoints
	router.HandleFunc("/api/genres", apiHandler.GetGenresHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/search/genre", apiHandler.SearchByGenreHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks", apiHandler.CreateTrackHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks", apiHandler.GetTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/download", apiHandler.DownloadTrackHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/mixes", apiHandler.CreateMixHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/mixes", apiHandler.GetMixesHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/mixes/{id}", apiHandler.GetMixHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/mixes/{id}/file", apiHandler.StreamMixHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/mixes/{id}/events", apiHandler.MixEventsHandler).Methods(http.MethodGet)

	server.Handler = router

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s...", cfg.ListenAddr)
		log.Println("Create mixes via POST to /api/mixes, query via GET /api/mixes/{id}")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func ensureDirExists(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("Creating directory: %s", path)
		if err := os.MkdirAll(path, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", path, err)
		}
	} else if err != nil {
		log.Fatalf("Failed to check directory %s: %v", path, err)
	}
}
