package schedulingRepository

const (
	queryFindAvailableSlots = `
		SELECT
			s.id, s.technician_id, s.start_time, s.end_time, s.is_booked,
			t.name AS technician_name
		FROM availability_slots s
		JOIN technicians t ON t.id = s.technician_id
		WHERE s.is_booked = FALSE
		  AND s.start_time > :now
		  AND s.technician_id IN (
			SELECT technician_id FROM service_areas WHERE zip_code = :zip_code
		  )
		  AND s.technician_id IN (
			SELECT technician_id FROM specialties WHERE appliance_type = :appliance_type
		  )
		ORDER BY s.start_time ASC
	`

	queryGetSlotByID = `
		SELECT id, technician_id, start_time, end_time, is_booked
		FROM availability_slots
		WHERE id = :id
	`

	queryBookSlot = `
		UPDATE availability_slots
		SET is_booked = TRUE
		WHERE id = :id AND is_booked = FALSE
	`

	queryGetTechnicianByID = `
		SELECT id, name, phone, email
		FROM technicians
		WHERE id = :id
	`

	queryCreateAppointment = `
		INSERT INTO appointments (
			call_id, customer_phone, zip_code, appliance_type,
			symptom_summary, error_codes, is_urgent,
			technician_id, start_time, end_time, created_at
		) VALUES (
			:call_id, :customer_phone, :zip_code, :appliance_type,
			:symptom_summary, :error_codes, :is_urgent,
			:technician_id, :start_time, :end_time, :created_at
		)
		RETURNING id
	`

	queryGetAppointmentByCallID = `
		SELECT
			id, call_id, customer_phone, zip_code, appliance_type,
			symptom_summary, error_codes, is_urgent,
			technician_id, start_time, end_time, created_at
		FROM appointments
		WHERE call_id = :call_id
		ORDER BY created_at DESC
		LIMIT 1
	`
)
