package uploadRepository

const (
	queryCreateToken = `
		INSERT INTO image_upload_tokens (
			token, call_id, email, appliance_type, symptom_summary,
			created_at, expires_at
		) VALUES (
			:token, :call_id, :email, :appliance_type, :symptom_summary,
			:created_at, :expires_at
		)
	`

	queryGetToken = `
		SELECT
			token, call_id, email, appliance_type, symptom_summary,
			image_url, analysis_summary, troubleshooting, is_appliance_image,
			created_at, expires_at, used_at
		FROM image_upload_tokens
		WHERE token = :token
	`

	queryGetLatestTokenByCallID = `
		SELECT
			token, call_id, email, appliance_type, symptom_summary,
			image_url, analysis_summary, troubleshooting, is_appliance_image,
			created_at, expires_at, used_at
		FROM image_upload_tokens
		WHERE call_id = :call_id
		ORDER BY created_at DESC
		LIMIT 1
	`

	queryMarkTokenUsed = `
		UPDATE image_upload_tokens
		SET used_at = :used_at, image_url = :image_url
		WHERE token = :token AND used_at IS NULL
	`

	queryUpdateTokenAnalysis = `
		UPDATE image_upload_tokens
		SET analysis_summary = :analysis_summary,
		    troubleshooting = :troubleshooting,
		    is_appliance_image = :is_appliance_image
		WHERE token = :token
	`

	queryResetToken = `
		UPDATE image_upload_tokens
		SET used_at = NULL,
		    image_url = '',
		    analysis_summary = '',
		    troubleshooting = '',
		    is_appliance_image = NULL
		WHERE token = :token
	`
)
