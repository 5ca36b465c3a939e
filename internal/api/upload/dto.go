package upload

import "mime/multipart"

type CreateTokenRequest struct {
	CallID         string `json:"call_id" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	ApplianceType  string `json:"appliance_type"`
	SymptomSummary string `json:"symptom_summary"`
}

type CreateTokenResponse struct {
	Token     string `json:"token"`
	UploadURL string `json:"upload_url"`
	ExpiresAt string `json:"expires_at"`
}

type UploadImageRequest struct {
	Token string
	File  *multipart.FileHeader
}

type UploadImageResponse struct {
	Message          string `json:"message"`
	IsApplianceImage bool   `json:"is_appliance_image"`
}

// StatusResponse is what the dialog engine polls while the caller waits.
type StatusResponse struct {
	TokenExists      bool   `json:"token_exists"`
	ImageUploaded    bool   `json:"image_uploaded"`
	AnalysisReady    bool   `json:"analysis_ready"`
	AnalysisSummary  string `json:"analysis_summary"`
	Troubleshooting  string `json:"troubleshooting"`
	IsApplianceImage *bool  `json:"is_appliance_image"`
	ApplianceType    string `json:"appliance_type"`
}

// VisionAnalysis is the structured read of the appliance photo.
type VisionAnalysis struct {
	IsApplianceImage bool   `json:"is_appliance_image"`
	Summary          string `json:"summary"`
	Troubleshooting  string `json:"troubleshooting"`
}
