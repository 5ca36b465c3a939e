package uploadService

import (
	"VoiceAgentGolang/internal/api/upload"
	uploadRepository "VoiceAgentGolang/internal/api/upload/repository"
	"VoiceAgentGolang/pkg/gemini"
	"VoiceAgentGolang/pkg/redis"
	"VoiceAgentGolang/pkg/s3"
	"VoiceAgentGolang/pkg/smtp"
	"VoiceAgentGolang/pkg/utils"
	"context"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

type IUploadService interface {
	CreateToken(ctx context.Context, req upload.CreateTokenRequest) (*upload.CreateTokenResponse, error)
	HandleUpload(ctx context.Context, req upload.UploadImageRequest) (*upload.UploadImageResponse, error)
	Status(ctx context.Context, callID string) (*upload.StatusResponse, error)
	ResetForReupload(ctx context.Context, callID string) (string, error)
}

type uploadService struct {
	log          *logrus.Logger
	uploadRepo   uploadRepository.Repository
	s3Client     s3.ItfS3
	geminiClient gemini.IGemini
	smtpMailer   smtp.ItfSmtp
	redisServer  redis.IRedis
	utils        utils.IUtils
	baseURL      string
	tokenTTL     time.Duration
}

func New(
	log *logrus.Logger,
	repo uploadRepository.Repository,
	s3Client s3.ItfS3,
	geminiClient gemini.IGemini,
	smtpMailer smtp.ItfSmtp,
	redisServer redis.IRedis,
	utilsPkg utils.IUtils,
) IUploadService {
	baseURL := os.Getenv("APP_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}

	ttl := 24 * time.Hour
	if v := os.Getenv("UPLOAD_TOKEN_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = time.Duration(n) * time.Hour
		}
	}

	return &uploadService{
		log:          log,
		uploadRepo:   repo,
		s3Client:     s3Client,
		geminiClient: geminiClient,
		smtpMailer:   smtpMailer,
		redisServer:  redisServer,
		utils:        utilsPkg,
		baseURL:      baseURL,
		tokenTTL:     ttl,
	}
}
