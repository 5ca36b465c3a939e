package scheduling

import "time"

type FindSlotsRequest struct {
	ZipCode        string `json:"zip_code" query:"zip_code" validate:"required,len=5,numeric"`
	ApplianceType  string `json:"appliance_type" query:"appliance_type" validate:"required,oneof=washer dryer refrigerator dishwasher oven hvac"`
	TimePreference string `json:"time_preference" query:"time_preference" validate:"omitempty,oneof=morning afternoon"`
	Limit          int    `json:"limit" query:"limit" validate:"omitempty,min=1,max=10"`
}

type SlotResponse struct {
	SlotID         int64     `json:"slot_id"`
	TechnicianID   int64     `json:"technician_id"`
	TechnicianName string    `json:"technician_name"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
}

type FindSlotsResponse struct {
	Slots []SlotResponse `json:"slots"`
}

type BookingRequest struct {
	SlotID         int64  `json:"slot_id" validate:"required"`
	CallID         string `json:"call_id" validate:"required"`
	CustomerPhone  string `json:"customer_phone"`
	ZipCode        string `json:"zip_code" validate:"required,len=5,numeric"`
	ApplianceType  string `json:"appliance_type" validate:"required"`
	SymptomSummary string `json:"symptom_summary"`
	ErrorCodes     string `json:"error_codes"`
	IsUrgent       bool   `json:"is_urgent"`
}

type BookingResponse struct {
	AppointmentID  int64     `json:"appointment_id"`
	TechnicianName string    `json:"technician_name"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
}
