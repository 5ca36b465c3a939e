package config

import (
	"VoiceAgentGolang/database/postgres"
	callHandler "VoiceAgentGolang/internal/api/call/handler"
	callService "VoiceAgentGolang/internal/api/call/service"
	schedulingHandler "VoiceAgentGolang/internal/api/scheduling/handler"
	schedulingRepository "VoiceAgentGolang/internal/api/scheduling/repository"
	schedulingService "VoiceAgentGolang/internal/api/scheduling/service"
	uploadHandler "VoiceAgentGolang/internal/api/upload/handler"
	uploadRepository "VoiceAgentGolang/internal/api/upload/repository"
	uploadService "VoiceAgentGolang/internal/api/upload/service"
	"VoiceAgentGolang/internal/middleware"
	"VoiceAgentGolang/pkg/extract"
	"VoiceAgentGolang/pkg/gemini"
	"VoiceAgentGolang/pkg/openai"
	"VoiceAgentGolang/pkg/redis"
	"VoiceAgentGolang/pkg/s3"
	"VoiceAgentGolang/pkg/smtp"
	"VoiceAgentGolang/pkg/utils"
	"VoiceAgentGolang/pkg/whatsapp"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine         *fiber.App
	db             *sqlx.DB
	log            *logrus.Logger
	middleware     middleware.Middleware
	validator      *validator.Validate
	utils          utils.IUtils
	handlers       []handler
	publicHandlers []publicHandler
	redisServer    redis.IRedis
	smtpMailer     smtp.ItfSmtp
	whatsappClient whatsapp.IWhatsappSender
	geminiClient   gemini.IGemini
	oracle         extract.Oracle
	s3Client       s3.ItfS3
	callServices   callService.ICallService
}

type handler interface {
	Start(srv fiber.Router)
}

// publicHandler registers routes outside the versioned, token-guarded API
// group. The upload page is the only such surface.
type publicHandler interface {
	StartPublic(app fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

// WithMigrations applies the schema and, when SEED_ON_START=true, loads the
// demo technician roster. Must come after WithDatabase.
func WithMigrations() ServerOption {
	return func(s *Server) error {
		if s.db == nil {
			return fmt.Errorf("database must be initialized before migrations")
		}
		if err := postgres.Migrate(s.db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		if os.Getenv("SEED_ON_START") == "true" {
			if err := postgres.Seed(s.db, s.log); err != nil {
				return fmt.Errorf("failed to seed database: %w", err)
			}
		}
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithSMTPMailer(smtpMailer smtp.ItfSmtp) ServerOption {
	return func(s *Server) error {
		s.smtpMailer = smtpMailer
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithWhatsappClient() ServerOption {
	return func(s *Server) error {
		client, err := whatsapp.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize WhatsApp client: %v", err)
			}
			return fmt.Errorf("failed to create WhatsApp client: %w", err)
		}
		s.whatsappClient = client
		return nil
	}
}

func WithGeminiClient() ServerOption {
	return func(s *Server) error {
		client, err := gemini.NewGeminiClient()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to create Gemini client: %v", err)
			}
			return fmt.Errorf("failed to create Gemini client: %w", err)
		}
		s.geminiClient = client
		return nil
	}
}

// WithOracle picks the extraction model behind the dialog. Gemini is the
// default; ORACLE_PROVIDER=openai switches providers without touching the
// vision path, which stays on Gemini.
func WithOracle() ServerOption {
	return func(s *Server) error {
		if os.Getenv("ORACLE_PROVIDER") == "openai" {
			s.oracle = openai.NewClient()
			return nil
		}
		if s.geminiClient == nil {
			return fmt.Errorf("gemini client must be initialized before the oracle")
		}
		s.oracle = s.geminiClient
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Scheduling Domain
	schedulingRepo := schedulingRepository.New(s.db, s.log)
	schedulingServices := schedulingService.New(s.log, schedulingRepo)
	schedulingHandlers := schedulingHandler.New(s.log, s.validator, s.middleware, schedulingServices)

	// Upload Domain
	uploadRepo := uploadRepository.New(s.db, s.log)
	uploadServices := uploadService.New(s.log, uploadRepo, s.s3Client, s.geminiClient, s.smtpMailer, s.redisServer, s.utils)
	uploadHandlers := uploadHandler.New(s.log, s.validator, s.middleware, uploadServices)

	// Call Domain
	extractor := extract.New(s.oracle, s.log)
	s.callServices = callService.New(s.log, extractor, schedulingServices, uploadServices, s.whatsappClient, callService.NewDialogConfig())
	callHandlers := callHandler.New(s.log, s.validator, s.middleware, s.callServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, schedulingHandlers, uploadHandlers, callHandlers)
	s.publicHandlers = append(s.publicHandlers, uploadHandlers)
}

func (s *Server) Run() error {
	router := s.engine.Group("/api/v1")
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())

	for _, h := range s.handlers {
		h.Start(router)
	}
	for _, h := range s.publicHandlers {
		h.StartPublic(s.engine)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	if err := s.engine.Listen(fmt.Sprintf(":%s", port)); err != nil {
		s.Shutdown()
		return err
	}

	return nil
}

func (s *Server) Shutdown() {
	if s.callServices != nil {
		s.callServices.Close()
	}
	if s.whatsappClient != nil {
		s.whatsappClient.Disconnect()
	}
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
