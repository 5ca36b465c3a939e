package uploadService

import (
	"VoiceAgentGolang/internal/api/upload"
	"VoiceAgentGolang/internal/entity"
	contextPkg "VoiceAgentGolang/pkg/context"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const statusCacheTTL = 5 * time.Second

func (s *uploadService) uploadURL(token string) string {
	return fmt.Sprintf("%s/upload/%s", s.baseURL, token)
}

// CreateToken mints a single-use upload token for a call and emails the
// upload link to the caller. Email delivery happens in the background so the
// dialog turn is not held up by the mail server.
func (s *uploadService) CreateToken(ctx context.Context, req upload.CreateTokenRequest) (*upload.CreateTokenResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.uploadRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	token := entity.ImageUploadToken{
		Token:          s.utils.NewUploadToken(),
		CallID:         req.CallID,
		Email:          req.Email,
		ApplianceType:  req.ApplianceType,
		SymptomSummary: req.SymptomSummary,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.tokenTTL),
	}

	if err := repo.Tokens.CreateToken(ctx, token); err != nil {
		return nil, err
	}

	url := s.uploadURL(token.Token)

	go func() {
		if err := s.smtpMailer.SendUploadLink(req.Email, url, req.ApplianceType); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"call_id":    req.CallID,
				"error":      err.Error(),
			}).Error("Failed to send upload link email")
		}
	}()

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"call_id":    req.CallID,
		"expires_at": token.ExpiresAt,
	}).Info("Upload token created")

	return &upload.CreateTokenResponse{
		Token:     token.Token,
		UploadURL: url,
		ExpiresAt: token.ExpiresAt.Format(time.RFC3339),
	}, nil
}

// HandleUpload stores the photo, claims the token, and runs the vision
// analysis. The token claim is the atomic step: expired and already-used
// tokens are rejected before any storage work happens.
func (s *uploadService) HandleUpload(ctx context.Context, req upload.UploadImageRequest) (*upload.UploadImageResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.uploadRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	tokenRow, err := repo.Tokens.GetToken(ctx, req.Token)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if now.After(tokenRow.ExpiresAt) {
		return nil, upload.ErrTokenExpired
	}
	if tokenRow.UsedAt != nil {
		return nil, upload.ErrTokenAlreadyUsed
	}

	if err := s.utils.ValidateImageFile(req.File); err != nil {
		return nil, upload.ErrInvalidFileType
	}

	src, err := req.File.Open()
	if err != nil {
		return nil, upload.ErrFailedToUploadFile
	}
	defer src.Close()

	fileBytes, err := io.ReadAll(src)
	if err != nil {
		return nil, upload.ErrFailedToUploadFile
	}

	imageURL, err := s.s3Client.UploadFileFromBytes(fileBytes, req.File.Filename, req.File.Header.Get("Content-Type"))
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to store photo in S3")
		return nil, upload.ErrFailedToUploadFile
	}

	claimed, err := repo.Tokens.MarkTokenUsed(ctx, tokenRow.Token, imageURL, now)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, upload.ErrTokenAlreadyUsed
	}

	analysis := s.analyzeImage(ctx, fileBytes, tokenRow.ApplianceType, tokenRow.SymptomSummary)

	if err := repo.Tokens.UpdateTokenAnalysis(ctx, tokenRow.Token, analysis.Summary, analysis.Troubleshooting, analysis.IsApplianceImage); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to persist vision analysis")
	}

	if err := s.redisServer.DeleteUploadStatus(ctx, tokenRow.CallID); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"call_id":    tokenRow.CallID,
		}).Debug("Could not invalidate status cache")
	}

	s.log.WithFields(logrus.Fields{
		"request_id":         requestID,
		"call_id":            tokenRow.CallID,
		"is_appliance_image": analysis.IsApplianceImage,
	}).Info("Photo uploaded and analyzed")

	message := "Photo received. We are walking your caller through the findings."
	if !analysis.IsApplianceImage {
		message = "The photo does not appear to show an appliance. You may be asked to upload another one."
	}

	return &upload.UploadImageResponse{
		Message:          message,
		IsApplianceImage: analysis.IsApplianceImage,
	}, nil
}

// Status reports upload progress for a call. Results are cached briefly in
// Redis because the dialog engine polls this on every waiting turn.
func (s *uploadService) Status(ctx context.Context, callID string) (*upload.StatusResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if cached, err := s.redisServer.GetUploadStatus(ctx, callID); err == nil && cached != "" {
		var resp upload.StatusResponse
		if err := json.UnmarshalFromString(cached, &resp); err == nil {
			return &resp, nil
		}
	}

	repo, err := s.uploadRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	tokenRow, err := repo.Tokens.GetLatestTokenByCallID(ctx, callID)
	if err != nil {
		if errors.Is(err, upload.ErrTokenNotFound) {
			return &upload.StatusResponse{TokenExists: false}, nil
		}
		return nil, err
	}

	resp := &upload.StatusResponse{
		TokenExists:      true,
		ImageUploaded:    tokenRow.UsedAt != nil,
		AnalysisReady:    tokenRow.AnalysisSummary != "",
		AnalysisSummary:  tokenRow.AnalysisSummary,
		Troubleshooting:  tokenRow.Troubleshooting,
		IsApplianceImage: tokenRow.IsApplianceImage,
		ApplianceType:    tokenRow.ApplianceType,
	}

	if encoded, err := json.MarshalToString(resp); err == nil {
		if err := s.redisServer.SetUploadStatus(ctx, callID, encoded, statusCacheTTL); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"call_id":    callID,
			}).Debug("Could not cache upload status")
		}
	}

	return resp, nil
}

// ResetForReupload clears the most recent token for a call so the caller can
// try another photo with the same link.
func (s *uploadService) ResetForReupload(ctx context.Context, callID string) (string, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.uploadRepo.NewClient(false)
	if err != nil {
		return "", err
	}

	tokenRow, err := repo.Tokens.GetLatestTokenByCallID(ctx, callID)
	if err != nil {
		return "", err
	}

	if err := repo.Tokens.ResetToken(ctx, tokenRow.Token); err != nil {
		return "", err
	}

	if err := s.redisServer.DeleteUploadStatus(ctx, callID); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"call_id":    callID,
		}).Debug("Could not invalidate status cache")
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"call_id":    callID,
	}).Info("Upload token reset for re-upload")

	return s.uploadURL(tokenRow.Token), nil
}
