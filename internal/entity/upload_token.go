package entity

import (
	"time"
)

// ImageUploadToken is a one-shot, time-boxed permission to upload a single
// appliance photo for a call. The first successful upload sets UsedAt and is
// terminal for the token.
type ImageUploadToken struct {
	Token            string     `json:"token" db:"token"`
	CallID           string     `json:"call_id" db:"call_id"`
	Email            string     `json:"email" db:"email"`
	ApplianceType    string     `json:"appliance_type" db:"appliance_type"`
	SymptomSummary   string     `json:"symptom_summary" db:"symptom_summary"`
	ImageURL         string     `json:"image_url" db:"image_url"`
	AnalysisSummary  string     `json:"analysis_summary" db:"analysis_summary"`
	Troubleshooting  string     `json:"troubleshooting" db:"troubleshooting"`
	IsApplianceImage *bool      `json:"is_appliance_image" db:"is_appliance_image"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt        time.Time  `json:"expires_at" db:"expires_at"`
	UsedAt           *time.Time `json:"used_at" db:"used_at"`
}

// Usable reports whether the token can still accept an upload.
func (t ImageUploadToken) Usable(now time.Time) bool {
	return now.Before(t.ExpiresAt) && t.UsedAt == nil
}
