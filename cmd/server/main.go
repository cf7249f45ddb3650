package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hospital-admission/internal/admission"
	"hospital-admission/internal/config"
	"hospital-admission/internal/database"
	"hospital-admission/internal/handler"
	"hospital-admission/internal/middleware"
	"hospital-admission/internal/models"
	"hospital-admission/internal/repository"
	"hospital-admission/internal/service"
	"hospital-admission/internal/web"
	"hospital-admission/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const serviceName = "hospital-admission"

func main() {
	rootCmd := &cobra.Command{
		Use:           "admission-server",
		Short:         "Patient admission service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(apiKeyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the admission HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool("migrate")
			return runServer(migrate)
		},
	}
	cmd.Flags().Bool("migrate", true, "Apply schema migrations before serving")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			logger := utils.NewLogger(cfg.Server.GinMode)

			db, err := database.Connect(cfg, logger)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}

			logger.Info().Msg("Database schema is up to date")
			return nil
		},
	}
}

func apiKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage integration API keys",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Generate an API key and print it once",
		RunE: func(cmd *cobra.Command, args []string) error {
			description, _ := cmd.Flags().GetString("description")
			days, _ := cmd.Flags().GetInt("expires-in-days")

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			logger := utils.NewLogger(cfg.Server.GinMode)

			db, err := database.Connect(cfg, logger)
			if err != nil {
				return err
			}

			keys := service.NewAPIKeyService(repository.NewAPIKeyRepo(db), repository.NewAuditRepo(db), logger)
			key, err := keys.GenerateAPIKey(cmd.Context(), description, time.Duration(days)*24*time.Hour)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), key.Key)
			return nil
		},
	}
	createCmd.Flags().String("description", "admission client", "What the key is used for")
	createCmd.Flags().Int("expires-in-days", 0, "Days until the key expires (0 never expires)")
	cmd.AddCommand(createCmd)

	return cmd
}

func runServer(migrate bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger := utils.NewLogger(cfg.Server.GinMode)
	logger.Info().Str("db_driver", cfg.Database.Driver).Msg("Configuration loaded")

	utils.InitJWT(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	if err := handler.RegisterValidators(); err != nil {
		return err
	}

	db, err := database.Connect(cfg, logger)
	if err != nil {
		return err
	}
	if migrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	userRepo := repository.NewUserRepo(db)
	patientRepo := repository.NewPatientRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	apiKeyRepo := repository.NewAPIKeyRepo(db)

	authService := service.NewAuthService(userRepo, auditRepo, logger)
	patientService := service.NewPatientService(patientRepo, auditRepo, logger)
	apiKeyService := service.NewAPIKeyService(apiKeyRepo, auditRepo, logger)

	sessions := admission.NewSessions(newAdmitter(cfg.Admission, patientService, logger), logger)
	janitor := service.NewJanitorService(sessions, userRepo, cfg.Admission.JanitorInterval, cfg.Admission.SessionIdleTimeout, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go janitor.Start(ctx)

	gin.SetMode(cfg.Server.GinMode)
	secureCookies := cfg.Server.GinMode == gin.ReleaseMode

	r := gin.New()
	r.Use(middleware.RequestLogger(logger), gin.Recovery(), middleware.CORS(cfg))
	r.SetHTMLTemplate(web.Templates())

	registerRoutes(r, apiKeyService, authService, secureCookies, sessions,
		handler.NewAuthHandler(authService, secureCookies, logger),
		handler.NewPatientHandler(patientService, logger),
		handler.NewSpecialtyHandler(patientService, logger),
		handler.NewAdmissionHandler(sessions, secureCookies, logger),
		handler.NewAPIKeyHandler(apiKeyService, logger),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Server.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info().Msg("Server exited")
	return nil
}

// newAdmitter sends form submissions to the remote patient API when one is
// configured, and to the local patient service otherwise
func newAdmitter(cfg config.AdmissionConfig, local admission.Admitter, logger zerolog.Logger) admission.Admitter {
	if cfg.APIURL == "" {
		return local
	}
	logger.Info().Str("url", cfg.APIURL).Msg("Admitting patients through remote API")
	return admission.NewRemoteAdmitter(cfg.APIURL, cfg.APIToken, nil)
}

func registerRoutes(
	r *gin.Engine,
	keys middleware.APIKeyValidator,
	refresher middleware.AccessRefresher,
	secureCookies bool,
	sessions *admission.Sessions,
	authHandler *handler.AuthHandler,
	patientHandler *handler.PatientHandler,
	specialtyHandler *handler.SpecialtyHandler,
	admissionHandler *handler.AdmissionHandler,
	apiKeyHandler *handler.APIKeyHandler,
) {
	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{
			"status":             "healthy",
			"service":            serviceName,
			"admission_sessions": sessions.Len(),
		})
	})

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/patients/admit")
	})
	r.GET(middleware.LoginRoute, authHandler.LoginPage)
	r.POST(middleware.LoginRoute, authHandler.SubmitLogin)
	r.POST("/logout", authHandler.SubmitLogout)

	// HTML pages authenticate with the cookies set by the login form
	pages := r.Group("", middleware.CookieAuth(refresher, secureCookies,
		models.RoleAdmin, models.RoleDoctor, models.RoleNurse))
	{
		pages.GET("/patients/admit", admissionHandler.ShowForm)
		pages.POST("/patients/admit", admissionHandler.SubmitForm)
		pages.GET(admission.SpecialtiesRoute, specialtyHandler.SpecialtiesPage)
	}

	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
	}

	staff := middleware.RequireRole(models.RoleAdmin, models.RoleDoctor, models.RoleNurse)

	// API keys may only admit patients and read the census
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(keys))
	{
		api.GET("/specialties", specialtyHandler.ListSpecialties)
		api.POST("/patients", patientHandler.CreatePatient)

		api.GET("/patients", staff, patientHandler.ListPatients)
		api.GET("/patients/export", staff, patientHandler.ExportCensus)
		api.GET("/patients/:id", staff, patientHandler.GetPatient)
		api.PATCH("/patients/:id/discharge",
			middleware.RequireRole(models.RoleAdmin, models.RoleDoctor),
			patientHandler.DischargePatient)
	}

	admin := api.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/api-keys", apiKeyHandler.GenerateAPIKey)
		admin.GET("/api-keys", apiKeyHandler.ListAPIKeys)
		admin.DELETE("/api-keys/:id", apiKeyHandler.RevokeAPIKey)
	}
}
