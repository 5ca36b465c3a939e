package schedulingRepository

import (
	"VoiceAgentGolang/internal/entity"
	contextPkg "VoiceAgentGolang/pkg/context"
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func (r *technicianRepository) GetTechnicianByID(ctx context.Context, id int64) (entity.Technician, error) {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryGetTechnicianByID, map[string]interface{}{"id": id})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetTechnicianByID named query preparation err")
		return entity.Technician{}, err
	}
	query = r.q.Rebind(query)

	var technician entity.Technician
	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&technician); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Technician{}, sql.ErrNoRows
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when getting technician")
		return entity.Technician{}, err
	}

	return technician, nil
}
