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

func (r *appointmentRepository) CreateAppointment(ctx context.Context, appointment entity.Appointment) (int64, error) {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"call_id":         appointment.CallID,
		"customer_phone":  appointment.CustomerPhone,
		"zip_code":        appointment.ZipCode,
		"appliance_type":  appointment.ApplianceType,
		"symptom_summary": appointment.SymptomSummary,
		"error_codes":     appointment.ErrorCodes,
		"is_urgent":       appointment.IsUrgent,
		"technician_id":   appointment.TechnicianID,
		"start_time":      appointment.StartTime,
		"end_time":        appointment.EndTime,
		"created_at":      appointment.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateAppointment, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateAppointment named query preparation err")
		return 0, err
	}
	query = r.q.Rebind(query)

	var id int64
	if err := r.q.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating appointment")
		return 0, err
	}

	return id, nil
}

func (r *appointmentRepository) GetAppointmentByCallID(ctx context.Context, callID string) (entity.Appointment, error) {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryGetAppointmentByCallID, map[string]interface{}{"call_id": callID})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAppointmentByCallID named query preparation err")
		return entity.Appointment{}, err
	}
	query = r.q.Rebind(query)

	var appointment entity.Appointment
	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&appointment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Appointment{}, sql.ErrNoRows
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when getting appointment")
		return entity.Appointment{}, err
	}

	return appointment, nil
}
