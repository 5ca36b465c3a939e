package schedulingService

import (
	"VoiceAgentGolang/internal/api/scheduling"
	"VoiceAgentGolang/internal/entity"
	contextPkg "VoiceAgentGolang/pkg/context"
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultSlotLimit = 3

// FindSlots returns up to the requested number of future, unbooked slots for
// technicians covering the caller's ZIP and appliance, soonest first. A
// morning preference keeps slots starting before noon, afternoon keeps noon
// and later.
func (s *schedulingService) FindSlots(ctx context.Context, req scheduling.FindSlotsRequest) (*scheduling.FindSlotsResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.schedulingRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	rows, err := repo.Slots.FindAvailableSlots(ctx, req.ZipCode, req.ApplianceType, time.Now().UTC())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to query available slots")
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultSlotLimit
	}

	resp := &scheduling.FindSlotsResponse{Slots: []scheduling.SlotResponse{}}
	for _, row := range rows {
		if !matchesPreference(row.StartTime, req.TimePreference) {
			continue
		}
		resp.Slots = append(resp.Slots, scheduling.SlotResponse{
			SlotID:         row.ID,
			TechnicianID:   row.TechnicianID,
			TechnicianName: row.TechnicianName,
			StartTime:      row.StartTime,
			EndTime:        row.EndTime,
		})
		if len(resp.Slots) >= limit {
			break
		}
	}

	s.log.WithFields(logrus.Fields{
		"request_id":     requestID,
		"zip_code":       req.ZipCode,
		"appliance_type": req.ApplianceType,
		"preference":     req.TimePreference,
		"found":          len(resp.Slots),
	}).Info("Slot search completed")

	return resp, nil
}

func matchesPreference(start time.Time, preference string) bool {
	switch preference {
	case "morning":
		return start.Hour() < 12
	case "afternoon":
		return start.Hour() >= 12
	default:
		return true
	}
}

// Book claims the slot and records the appointment in one transaction. The
// slot update only matches an unbooked row, so two calls racing for the same
// slot produce exactly one appointment and one ErrSlotConflict.
func (s *schedulingService) Book(ctx context.Context, req scheduling.BookingRequest) (*scheduling.BookingResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.schedulingRepo.NewClient(true)
	if err != nil {
		return nil, err
	}
	defer repo.Rollback()

	slot, err := repo.Slots.GetSlotByID(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}

	won, err := repo.Slots.BookSlot(ctx, slot.ID)
	if err != nil {
		return nil, err
	}
	if !won {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"slot_id":    slot.ID,
			"call_id":    req.CallID,
		}).Warn("Slot already booked by another call")
		return nil, scheduling.ErrSlotConflict
	}

	appointmentID, err := repo.Appointments.CreateAppointment(ctx, entity.Appointment{
		CallID:         req.CallID,
		CustomerPhone:  req.CustomerPhone,
		ZipCode:        req.ZipCode,
		ApplianceType:  req.ApplianceType,
		SymptomSummary: req.SymptomSummary,
		ErrorCodes:     req.ErrorCodes,
		IsUrgent:       req.IsUrgent,
		TechnicianID:   slot.TechnicianID,
		StartTime:      slot.StartTime,
		EndTime:        slot.EndTime,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	technician, err := repo.Technicians.GetTechnicianByID(ctx, slot.TechnicianID)
	if err != nil {
		return nil, err
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit booking transaction")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":     requestID,
		"call_id":        req.CallID,
		"slot_id":        slot.ID,
		"appointment_id": appointmentID,
		"technician_id":  slot.TechnicianID,
	}).Info("Appointment booked")

	return &scheduling.BookingResponse{
		AppointmentID:  appointmentID,
		TechnicianName: technician.Name,
		StartTime:      slot.StartTime,
		EndTime:        slot.EndTime,
	}, nil
}
