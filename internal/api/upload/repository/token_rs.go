package uploadRepository

import (
	"VoiceAgentGolang/internal/api/upload"
	"VoiceAgentGolang/internal/entity"
	contextPkg "VoiceAgentGolang/pkg/context"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func (r *tokenRepository) CreateToken(ctx context.Context, token entity.ImageUploadToken) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"token":           token.Token,
		"call_id":         token.CallID,
		"email":           token.Email,
		"appliance_type":  token.ApplianceType,
		"symptom_summary": token.SymptomSummary,
		"created_at":      token.CreatedAt,
		"expires_at":      token.ExpiresAt,
	}

	query, args, err := sqlx.Named(queryCreateToken, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateToken named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating upload token")
		return err
	}

	return nil
}

func (r *tokenRepository) GetToken(ctx context.Context, token string) (entity.ImageUploadToken, error) {
	return r.getOne(ctx, queryGetToken, map[string]interface{}{"token": token})
}

func (r *tokenRepository) GetLatestTokenByCallID(ctx context.Context, callID string) (entity.ImageUploadToken, error) {
	return r.getOne(ctx, queryGetLatestTokenByCallID, map[string]interface{}{"call_id": callID})
}

func (r *tokenRepository) getOne(ctx context.Context, namedQuery string, argsKV map[string]interface{}) (entity.ImageUploadToken, error) {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(namedQuery, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Upload token named query preparation err")
		return entity.ImageUploadToken{}, err
	}
	query = r.q.Rebind(query)

	var tokenRow entity.ImageUploadToken
	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&tokenRow); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.ImageUploadToken{}, upload.ErrTokenNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when reading upload token")
		return entity.ImageUploadToken{}, err
	}

	return tokenRow, nil
}

// MarkTokenUsed claims the token for this upload. The WHERE clause only
// matches an unused token, so a second concurrent upload loses the race and
// gets false back.
func (r *tokenRepository) MarkTokenUsed(ctx context.Context, token, imageURL string, usedAt time.Time) (bool, error) {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"token":     token,
		"image_url": imageURL,
		"used_at":   usedAt,
	}

	query, args, err := sqlx.Named(queryMarkTokenUsed, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("MarkTokenUsed named query preparation err")
		return false, err
	}
	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when marking upload token used")
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

func (r *tokenRepository) UpdateTokenAnalysis(ctx context.Context, token, summary, troubleshooting string, isAppliance bool) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"token":              token,
		"analysis_summary":   summary,
		"troubleshooting":    troubleshooting,
		"is_appliance_image": isAppliance,
	}

	query, args, err := sqlx.Named(queryUpdateTokenAnalysis, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateTokenAnalysis named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when updating token analysis")
		return err
	}

	return nil
}

func (r *tokenRepository) ResetToken(ctx context.Context, token string) error {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryResetToken, map[string]interface{}{"token": token})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ResetToken named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when resetting upload token")
		return err
	}

	return nil
}
