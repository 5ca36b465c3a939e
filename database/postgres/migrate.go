package postgres

import (
	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS technicians (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS service_areas (
		id BIGSERIAL PRIMARY KEY,
		technician_id BIGINT NOT NULL REFERENCES technicians(id),
		zip_code TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_service_areas_zip ON service_areas(zip_code)`,
	`CREATE TABLE IF NOT EXISTS specialties (
		id BIGSERIAL PRIMARY KEY,
		technician_id BIGINT NOT NULL REFERENCES technicians(id),
		appliance_type TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_specialties_appliance ON specialties(appliance_type)`,
	`CREATE TABLE IF NOT EXISTS availability_slots (
		id BIGSERIAL PRIMARY KEY,
		technician_id BIGINT NOT NULL REFERENCES technicians(id),
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ NOT NULL,
		is_booked BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_slots_start ON availability_slots(start_time)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id BIGSERIAL PRIMARY KEY,
		call_id TEXT NOT NULL,
		customer_phone TEXT NOT NULL DEFAULT '',
		zip_code TEXT NOT NULL,
		appliance_type TEXT NOT NULL,
		symptom_summary TEXT NOT NULL DEFAULT '',
		error_codes TEXT NOT NULL DEFAULT '',
		is_urgent BOOLEAN NOT NULL DEFAULT FALSE,
		technician_id BIGINT NOT NULL REFERENCES technicians(id),
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS image_upload_tokens (
		token TEXT PRIMARY KEY,
		call_id TEXT NOT NULL,
		email TEXT NOT NULL,
		appliance_type TEXT NOT NULL DEFAULT '',
		symptom_summary TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		analysis_summary TEXT NOT NULL DEFAULT '',
		troubleshooting TEXT NOT NULL DEFAULT '',
		is_appliance_image BOOLEAN,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at TIMESTAMPTZ NOT NULL,
		used_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_upload_tokens_call ON image_upload_tokens(call_id)`,
}

func Migrate(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
