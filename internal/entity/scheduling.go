package entity

import (
	"time"
)

type Technician struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Phone string `json:"phone" db:"phone"`
	Email string `json:"email" db:"email"`
}

// ServiceArea maps a technician to one ZIP code they cover.
type ServiceArea struct {
	ID           int64  `json:"id" db:"id"`
	TechnicianID int64  `json:"technician_id" db:"technician_id"`
	ZipCode      string `json:"zip_code" db:"zip_code"`
}

// Specialty maps a technician to one appliance type they service.
type Specialty struct {
	ID            int64  `json:"id" db:"id"`
	TechnicianID  int64  `json:"technician_id" db:"technician_id"`
	ApplianceType string `json:"appliance_type" db:"appliance_type"`
}

// AvailabilitySlot is a bookable technician time window. IsBooked moves
// false to true exactly once and is never reverted.
type AvailabilitySlot struct {
	ID           int64     `json:"id" db:"id"`
	TechnicianID int64     `json:"technician_id" db:"technician_id"`
	StartTime    time.Time `json:"start_time" db:"start_time"`
	EndTime      time.Time `json:"end_time" db:"end_time"`
	IsBooked     bool      `json:"is_booked" db:"is_booked"`
}

type Appointment struct {
	ID             int64     `json:"id" db:"id"`
	CallID         string    `json:"call_id" db:"call_id"`
	CustomerPhone  string    `json:"customer_phone" db:"customer_phone"`
	ZipCode        string    `json:"zip_code" db:"zip_code"`
	ApplianceType  string    `json:"appliance_type" db:"appliance_type"`
	SymptomSummary string    `json:"symptom_summary" db:"symptom_summary"`
	ErrorCodes     string    `json:"error_codes" db:"error_codes"`
	IsUrgent       bool      `json:"is_urgent" db:"is_urgent"`
	TechnicianID   int64     `json:"technician_id" db:"technician_id"`
	StartTime      time.Time `json:"start_time" db:"start_time"`
	EndTime        time.Time `json:"end_time" db:"end_time"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
