package schedulingRepository

import (
	"VoiceAgentGolang/internal/api/scheduling"
	"VoiceAgentGolang/internal/entity"
	contextPkg "VoiceAgentGolang/pkg/context"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func (r *slotRepository) FindAvailableSlots(ctx context.Context, zipCode, applianceType string, now time.Time) ([]AvailableSlot, error) {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"zip_code":       zipCode,
		"appliance_type": applianceType,
		"now":            now,
	}

	query, args, err := sqlx.Named(queryFindAvailableSlots, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("FindAvailableSlots named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	var slots []AvailableSlot
	if err := r.q.SelectContext(ctx, &slots, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when finding available slots")
		return nil, err
	}

	return slots, nil
}

func (r *slotRepository) GetSlotByID(ctx context.Context, id int64) (entity.AvailabilitySlot, error) {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryGetSlotByID, map[string]interface{}{"id": id})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetSlotByID named query preparation err")
		return entity.AvailabilitySlot{}, err
	}
	query = r.q.Rebind(query)

	var slot entity.AvailabilitySlot
	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&slot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.AvailabilitySlot{}, scheduling.ErrSlotNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when getting slot")
		return entity.AvailabilitySlot{}, err
	}

	return slot, nil
}

// BookSlot flips is_booked only when the slot is still free. The boolean
// reports whether this call won the slot; false means another booking got
// there first.
func (r *slotRepository) BookSlot(ctx context.Context, id int64) (bool, error) {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryBookSlot, map[string]interface{}{"id": id})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("BookSlot named query preparation err")
		return false, err
	}
	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when booking slot")
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}
