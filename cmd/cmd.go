package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tripshare-backend/internal/config"
	"tripshare-backend/internal/enrich"
	"tripshare-backend/internal/handlers"
	"tripshare-backend/internal/linkpreview"
	"tripshare-backend/internal/notify"
	"tripshare-backend/internal/repository"
	"tripshare-backend/internal/seed"
	"tripshare-backend/internal/services"
	"tripshare-backend/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

// Execute runs the root command
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "tripshare",
		Short:         "Trip planning and sharing backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		setupLogger(cfg.Log.Level, cfg.Log.Format)
		return cfg, nil
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				log.Error().Err(err).Msg("Failed to load configuration")
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			db, err := connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := repository.Migrate(cmd.Context(), db); err != nil {
				log.Error().Err(err).Msg("Migration failed")
				return err
			}
			log.Info().Msg("Schema applied")
			return nil
		},
	})

	var opts seed.Options
	var password string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert generated mock data for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			db, err := connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			return runSeed(cmd.Context(), db, opts, password)
		},
	}
	seedCmd.Flags().Uint64Var(&opts.Seed, "seed", seed.DefaultOptions.Seed, "random seed")
	seedCmd.Flags().IntVar(&opts.Profiles, "profiles", seed.DefaultOptions.Profiles, "number of profiles")
	seedCmd.Flags().IntVar(&opts.TripsPerProfile, "trips", seed.DefaultOptions.TripsPerProfile, "trips per profile")
	seedCmd.Flags().StringVar(&password, "password", "password123", "password for every seeded profile")
	root.AddCommand(seedCmd)

	return root
}

func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info().Msg("Database connection established")
	return db, nil
}

func runSeed(ctx context.Context, db *pgxpool.Pool, opts seed.Options, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}
	opts.PasswordHash = string(hash)

	ds := seed.Generate(opts)
	err = seed.Load(ctx, seed.Stores{
		Profiles:   repository.NewProfileRepository(db),
		Trips:      repository.NewTripRepository(db),
		Activities: repository.NewActivityRepository(db),
		Ideas:      repository.NewIdeaRepository(db),
		Expenses:   repository.NewExpenseRepository(db),
		Posts:      repository.NewPostRepository(db),
	}, ds)
	if err != nil {
		log.Error().Err(err).Msg("Seeding failed")
		return err
	}

	log.Info().
		Int("profiles", len(ds.Profiles)).
		Int("trips", len(ds.Trips)).
		Int("activities", len(ds.Activities)).
		Int("expenses", len(ds.Expenses)).
		Int("posts", len(ds.Posts)).
		Msg("Seed data inserted")
	return nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := connect(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to database")
		return err
	}
	defer db.Close()

	// Initialize repositories
	profileRepo := repository.NewProfileRepository(db)
	tripRepo := repository.NewTripRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	ideaRepo := repository.NewIdeaRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	postRepo := repository.NewPostRepository(db)
	logRepo := repository.NewActivityLogRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	// External integrations
	objects, err := storage.NewS3Store(ctx, cfg.AWS)
	if err != nil {
		return fmt.Errorf("failed to create object store: %w", err)
	}
	var notifier services.Notifier = notify.LogNotifier{}
	if cfg.APNs.KeyPath != "" {
		apns, err := notify.NewAPNsNotifier(cfg.APNs)
		if err != nil {
			return fmt.Errorf("failed to create push notifier: %w", err)
		}
		notifier = apns
	}
	var generator enrich.TextGenerator
	if cfg.GenAI.APIKey != "" {
		gen, err := enrich.NewGenAIGenerator(ctx, cfg.GenAI.APIKey, cfg.GenAI.Model)
		if err != nil {
			return fmt.Errorf("failed to create recommendation generator: %w", err)
		}
		generator = gen
	}
	places, err := enrich.NewPlacesClient(cfg.Places.APIKey)
	if err != nil {
		return err
	}
	previewer := linkpreview.NewFetcher(nil)

	hub := services.NewHub(services.HubConfig{
		CursorThrottle: cfg.Realtime.CursorThrottle,
		CursorStale:    cfg.Realtime.CursorStale,
		SweepInterval:  cfg.Realtime.SweepInterval,
		SendBuffer:     cfg.Realtime.SendBuffer,
	})
	go hub.Run(ctx)

	// Initialize services
	limits := services.UploadLimits{MaxBytes: cfg.Uploads.MaxBytes, Expiry: cfg.Uploads.PresignExpiry}
	activityLogger := services.NewActivityLogger(logRepo)
	userService := services.NewUserService(profileRepo, cfg.JWT.Secret, cfg.JWT.TTL)
	profileService := services.NewProfileService(profileRepo, objects, limits)
	tripService := services.NewTripService(tripRepo, photoRepo, objects, activityLogger, hub)
	invitationService := services.NewInvitationService(invitationRepo, tripRepo, profileRepo, notifier, activityLogger, hub)
	activityService := services.NewActivityService(activityRepo, tripRepo, activityLogger, hub)
	ideaService := services.NewIdeaService(ideaRepo, activityRepo, tripRepo, previewer, activityLogger, hub)
	expenseService := services.NewExpenseService(expenseRepo, tripRepo, activityLogger, hub)
	photoService := services.NewPhotoService(photoRepo, tripRepo, objects, limits, activityLogger, hub)
	postService := services.NewPostService(postRepo, profileRepo, tripRepo, objects, limits)
	adminService := services.NewAdminService(analyticsRepo, profileRepo, postService, hub)

	// Initialize handlers
	h := routes{
		auth:        handlers.NewAuthHandler(userService),
		profiles:    handlers.NewProfileHandler(profileService),
		trips:       handlers.NewTripHandler(tripService),
		invitations: handlers.NewInvitationHandler(invitationService),
		activities:  handlers.NewActivityHandler(activityService),
		ideas:       handlers.NewIdeaHandler(ideaService),
		expenses:    handlers.NewExpenseHandler(expenseService),
		photos:      handlers.NewPhotoHandler(photoService),
		posts:       handlers.NewPostHandler(postService),
		admin:       handlers.NewAdminHandler(adminService),
		enrich: handlers.NewEnrichHandler(
			tripService,
			enrich.NewRecommender(generator),
			places,
			enrich.NewWeatherClient(cfg.Weather.BaseURL, nil),
			enrich.NewImageSearchClient(cfg.Images.BaseURL, cfg.Images.AccessKey, nil),
			previewer,
		),
		ws:    handlers.NewWebSocketHandler(hub, userService, tripService, photoService, cfg.Server.AllowedOrigin),
		authn: userService,
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      newRouter(h, cfg.Server.AllowedOrigin),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Error().Err(err).Msg("Server failed to start")
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
	return nil
}

// setupLogger configures zerolog logger
func setupLogger(level, format string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS for the configured origin
func corsMiddleware(allowedOrigin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			w.Header().Set("Access-Control-Allow-Methods", strings.Join([]string{
				http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions,
			}, ", "))
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
