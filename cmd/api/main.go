package main

import (
	_ "backend/api/swagger" // swagger docs
	"backend/internal/auth"
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/mailer"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func newLogger() *logrus.Logger {
	log := logrus.New()
	if os.Getenv("GIN_MODE") == "release" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

// @title           Account Management API
// @version         1.0
// @description     Multi-role account management backend with polynomial storage.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log := newLogger()

	if err := godotenv.Load("configs/.env"); err != nil {
		log.Info("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Info("Connected to PostgreSQL successfully.")

	hasher := auth.NewPasswordHasher()
	issuer, err := auth.NewTokenIssuer(middleware.GetJWTSecret())
	if err != nil {
		log.Fatalf("Token issuer setup failed: %v", err)
	}

	if err := database.Seed(db, hasher, log); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	// Set up WebSocket account-event feed
	wsHub := websocket.NewHub(log)
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	calculatorRepo := repository.NewCalculatorRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	directory := repository.NewDirectoryRepository(db)
	polynomialRepo := repository.NewPolynomialRepository(db)

	authenticator := auth.NewDirectoryAuthenticator(directory, hasher)
	notifier := mailer.NewSMTPMailer(mailer.ConfigFromEnv(), log)

	base := service.AccountServiceConfig{
		Directory: directory,
		Hasher:    hasher,
		Tokens:    issuer,
		Authn:     authenticator,
		Notifier:  notifier,
		Events:    wsHub,
		Log:       log,
	}

	newSvc := func(kind, kindKey string, repo repository.AccountRepository, policy service.RegisterPolicy) service.AccountService {
		cfg := base
		cfg.Kind = kind
		cfg.KindKey = kindKey
		cfg.Repo = repo
		cfg.Policy = policy
		return service.NewAccountService(cfg)
	}

	userService := newSvc("Utilisateur", "user", userRepo, service.RegisterPolicy{
		UnifiedIndex: true, SendVerification: true,
	})
	calculatorService := newSvc("Calculator", "calculator", calculatorRepo, service.RegisterPolicy{
		RoleLabel: "CALCULATOR", Verified: true, SendVerification: true,
	})
	adminService := newSvc("Administrateur", "admin", adminRepo, service.RegisterPolicy{
		RoleLabel: "ADMIN", UnifiedIndex: true, SendVerification: true,
	})

	// Alternate registration flows reachable through /api/users.
	registrars := handler.UserRegistrars{
		CalculatorViaUsers: newSvc("Calculator", "calculator", calculatorRepo, service.RegisterPolicy{
			UnifiedIndex: true, SendVerification: true,
		}),
		Admin: newSvc("Admin", "admin", adminRepo, service.RegisterPolicy{
			RoleLabel: "ADMIN", UnifiedIndex: true,
		}),
		Calculator: newSvc("Calculator", "calculator", calculatorRepo, service.RegisterPolicy{
			RoleLabel: "CALCULATOR", UnifiedIndex: true,
		}),
	}

	polynomialService := service.NewPolynomialService(polynomialRepo, userRepo, log)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService, registrars)
	calculatorHandler := handler.NewCalculatorHandler(calculatorService)
	adminHandler := handler.NewAdminHandler(adminService, directory, issuer)
	polynomialHandler := handler.NewPolynomialHandler(polynomialService, issuer)

	// Set up Gin Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:4200"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint for the admin dashboard feed
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, issuer)
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	calculatorHandler.RegisterRoutes(router.Group(""))
	adminHandler.RegisterRoutes(router.Group(""))
	polynomialHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Infof("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
