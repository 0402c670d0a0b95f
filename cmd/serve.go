package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/campus-hub/campus-services/api/handlers"
	"github.com/campus-hub/campus-services/api/middleware"
	"github.com/campus-hub/campus-services/api/services"
	"github.com/campus-hub/campus-services/db"
	"github.com/campus-hub/campus-services/internal/events"
	"github.com/campus-hub/campus-services/internal/storage"
	"github.com/campus-hub/campus-services/internal/tokens"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var version = "dev"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server for handling API requests",
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config and set up logging
		commonSetUp()

		// Initialize event publisher
		publisher, err := events.NewEventPublisher(appCfg.Pulsar.URL, appCfg.Pulsar.TopicProducer)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize event publisher")
		}

		// Initialize the database
		logger := log.With().Str("component", "db").Logger()
		campusDB, err = db.NewCampusDB(appCfg.Database.Driver, appCfg.Database.Source, publisher, &logger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize CampusDB")
		}
		defer campusDB.Close()

		// Initialize the object store
		objectStore, err := storage.NewS3Store(appCfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize object store")
		}

		service := &services.Service{
			Config:    appCfg,
			DB:        campusDB,
			Store:     objectStore,
			Publisher: publisher,
			Tokens:    tokens.NewMemoryRegistry(),
			Version:   version,
			StartedAt: time.Now(),
		}

		// Pick the rate limit counter store: shared via redis when
		// configured, otherwise per-instance in memory.
		var counters middleware.CounterStore
		if appCfg.RateLimit.RedisURL != "" {
			redisCounters, err := middleware.NewRedisCounterStore(appCfg.RateLimit.RedisURL)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to initialize redis counter store")
			}
			counters = redisCounters
		} else {
			counters = middleware.NewMemoryCounterStore()
		}

		gate := &middleware.Gate{
			Auth:      appCfg.Auth,
			Roles:     &services.IdentityService{DB: campusDB},
			Incidents: campusDB,
			Counters:  counters,
			Limit:     appCfg.RateLimit,
		}

		// Create routes
		r := mux.NewRouter()

		// Every request passes through the full gate; public routes skip
		// the auth stages inside the middleware, not the chain itself.
		r.Use(middleware.SecurityHeaders)
		r.Use(middleware.WithLogger)
		r.Use(gate.RateLimit)
		r.Use(gate.Authenticate)
		r.Use(gate.DomainPolicy)
		r.Use(gate.AdminOnly)

		// Public routes
		r.HandleFunc("/health", handlers.GetHealth(service)).Methods(http.MethodGet, http.MethodHead)
		r.HandleFunc("/blob-download", handlers.RedeemDownload(service)).Methods(http.MethodGet)

		// Authenticated routes
		api := r.PathPrefix("/api").Subrouter()
		api.HandleFunc("/users/me/display-name", handlers.SetDisplayName(service)).Methods(http.MethodPut)
		api.HandleFunc("/blob-download", handlers.RegisterDownload(service)).Methods(http.MethodPost)
		api.HandleFunc("/courses", handlers.GetCourses(service)).Methods(http.MethodGet)
		api.HandleFunc("/courses/{course-id}/files", handlers.GetCourseFiles(service)).Methods(http.MethodGet)
		api.HandleFunc("/presentation-groups", handlers.CreateGroup(service)).Methods(http.MethodPost)
		api.HandleFunc("/presentation-groups/{group-id}", handlers.GetGroup(service)).Methods(http.MethodGet)
		api.HandleFunc("/presentation-groups/{group-id}/file", handlers.ReplaceGroupFile(service)).Methods(http.MethodPost)
		api.HandleFunc("/presentation-groups/{group-id}/members", handlers.SaveMembers(service)).Methods(http.MethodPut)
		api.HandleFunc("/presentation-groups/{group-id}/members/{member-id}", handlers.DeleteMember(service)).Methods(http.MethodDelete)

		// Admin routes
		admin := r.PathPrefix(appCfg.Auth.AdminPrefix).Subrouter()
		admin.HandleFunc("/courses", handlers.CreateCourse(service)).Methods(http.MethodPost)
		admin.HandleFunc("/courses/{course-id}", handlers.DeleteCourse(service)).Methods(http.MethodDelete)
		admin.HandleFunc("/courses/{course-id}/file", handlers.ReplaceCourseFile(service)).Methods(http.MethodPost)
		admin.HandleFunc("/courses/files/{course-id}", handlers.DeleteCourseFile(service)).Methods(http.MethodDelete)
		admin.HandleFunc("/users/{user-id}/role", handlers.UpdateUserRole(service)).Methods(http.MethodPut)

		log.Info().Msg(fmt.Sprintf("Server started at %s:%d", host, port))

		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", host, port),
			r); err != nil {

			log.Error().Err(err).Msg("could not start server")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&host, "host", "0.0.0.0", "host to run the server on")
	serveCmd.Flags().IntVar(&port, "port", 8080, "port to run the server on")
}
