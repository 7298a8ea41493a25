package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/chidi/libman/docs" // Import generated swagger docs
	appControllers "github.com/chidi/libman/internal/app/controllers"
	appMigrations "github.com/chidi/libman/internal/app/migrations"
	appRepos "github.com/chidi/libman/internal/app/repositories"
	appRoutes "github.com/chidi/libman/internal/app/routes"
	appServices "github.com/chidi/libman/internal/app/services"
	"github.com/chidi/libman/internal/config"
	"github.com/chidi/libman/internal/db"
	appMiddleware "github.com/chidi/libman/internal/middleware"
	pkgAuth "github.com/chidi/libman/internal/pkg/auth"
	"github.com/chidi/libman/internal/pkg/email"
	"github.com/chidi/libman/internal/pkg/idcode"
	"github.com/chidi/libman/internal/pkg/logger"
	"github.com/chidi/libman/internal/pkg/staging"
	"github.com/chidi/libman/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService          *appServices.AuthService
	DepartmentService    *appServices.DepartmentService
	AuthorService        *appServices.AuthorService
	CategoryService      *appServices.CategoryService
	BookService          *appServices.BookService
	StudentService       *appServices.StudentService
	BorrowService        *appServices.BorrowService
	AuthController       *appControllers.AuthController
	DepartmentController *appControllers.DepartmentController
	AuthorController     *appControllers.AuthorController
	CategoryController   *appControllers.CategoryController
	BookController       *appControllers.BookController
	StudentController    *appControllers.StudentController
	BorrowController     *appControllers.BorrowController
	AuthMiddleware       *appMiddleware.AuthMiddleware
	Repos                *appRepos.Repositories
	JWTService           *pkgAuth.JWTService
	ResetCipher          *pkgAuth.ResetTokenCipher
	Mailer               email.EmailService
	Encoder              *idcode.Encoder
	Stager               *staging.Stager
	Logger               zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the default admin account.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		// Log the error but don't fail the startup
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// SetupRedis connects to the redis instance that backs staged borrow
// selections.
func SetupRedis(cfg *config.Config, lgr zerolog.Logger) (*redis.Client, error) {
	lgr.Info().Str("addr", cfg.GetRedisAddr()).Msg("Connecting to redis...")
	client, err := db.NewRedisClient(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to redis")
		return nil, err
	}
	lgr.Info().Msg("Redis connection successfully established.")
	return client, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, redisClient *redis.Client, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)
	database := &db.PostgresDB{Pool: dbPool}

	var err error
	deps.Encoder, err = idcode.NewEncoder(cfg.Server.StoragePath)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize code image storage")
		return nil, fmt.Errorf("failed to initialize code image storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  config.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: config.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.ResetCipher, err = pkgAuth.NewResetTokenCipher(cfg.Reset.Secret, config.ParseDuration(cfg.Reset.TokenTTL, 30*time.Minute))
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize reset token cipher")
		return nil, fmt.Errorf("failed to initialize reset token cipher: %w", err)
	}

	deps.Mailer = email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		BaseURL:   cfg.Server.BaseURL,
	}, lgr)

	deps.Stager = staging.NewStager(redisClient, config.ParseDuration(cfg.Borrow.StagedSelectionTTL, 15*time.Minute))

	// Initialize services
	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.TokenRepository,
		deps.JWTService,
		deps.ResetCipher,
		deps.Mailer,
		lgr,
	)
	deps.DepartmentService = appServices.NewDepartmentService(deps.Repos.DepartmentRepository)
	deps.AuthorService = appServices.NewAuthorService(deps.Repos.AuthorRepository)
	deps.CategoryService = appServices.NewCategoryService(deps.Repos.CategoryRepository)
	deps.BookService = appServices.NewBookService(
		deps.Repos.BookRepository,
		deps.Repos.AuthorRepository,
		deps.Repos.CategoryRepository,
		deps.Repos.LoanRepository,
		database,
		deps.Encoder,
		lgr,
	)
	deps.StudentService = appServices.NewStudentService(
		deps.Repos.StudentRepository,
		deps.Repos.UserRepository,
		deps.Repos.DepartmentRepository,
		deps.Repos.LoanRepository,
		database,
		deps.Encoder,
		lgr,
	)
	deps.BorrowService = appServices.NewBorrowService(
		deps.Repos.BookRepository,
		deps.Repos.StudentRepository,
		deps.Repos.LoanRepository,
		database,
		deps.Stager,
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService)
	deps.DepartmentController = appControllers.NewDepartmentController(deps.DepartmentService)
	deps.AuthorController = appControllers.NewAuthorController(deps.AuthorService)
	deps.CategoryController = appControllers.NewCategoryController(deps.CategoryService)
	deps.BookController = appControllers.NewBookController(deps.BookService)
	deps.StudentController = appControllers.NewStudentController(deps.StudentService)
	deps.BorrowController = appControllers.NewBorrowController(deps.BorrowService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger())

	// Setup Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json"), ginSwagger.DefaultModelsExpandDepth(1)))

	// Setup API routes using the dependencies
	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.DepartmentController,
		deps.AuthorController,
		deps.CategoryController,
		deps.BookController,
		deps.StudentController,
		deps.BorrowController,
		deps.AuthMiddleware,
	)

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
