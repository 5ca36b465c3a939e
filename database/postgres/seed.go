package postgres

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type seedTechnician struct {
	name        string
	phone       string
	email       string
	zipCodes    []string
	specialties []string
}

var seedTechnicians = []seedTechnician{
	{"Alex Martinez", "555-1001", "alex.martinez@homeservices.example.com",
		[]string{"60601", "60602", "60603"}, []string{"refrigerator", "washer"}},
	{"Maria Chen", "555-1002", "maria.chen@homeservices.example.com",
		[]string{"10001", "10002", "60601"}, []string{"washer", "dryer"}},
	{"John Patel", "555-1003", "john.patel@homeservices.example.com",
		[]string{"60601", "10001", "90210"}, []string{"dryer", "dishwasher", "oven"}},
	{"Priya Singh", "555-1004", "priya.singh@homeservices.example.com",
		[]string{"90210", "90211", "90212"}, []string{"refrigerator", "hvac"}},
	{"David Johnson", "555-1005", "david.johnson@homeservices.example.com",
		[]string{"60601", "60602", "10001"}, []string{"hvac", "oven"}},
	{"Emily Clark", "555-1006", "emily.clark@homeservices.example.com",
		[]string{"10001", "10002", "10003"}, []string{"washer", "dryer", "dishwasher"}},
	{"Michael Brown", "555-1007", "michael.brown@homeservices.example.com",
		[]string{"90210", "60601", "77001"}, []string{"refrigerator", "oven"}},
	{"Sarah Lopez", "555-1008", "sarah.lopez@homeservices.example.com",
		[]string{"77001", "77002", "77003"}, []string{"washer", "dryer", "hvac"}},
	{"Kevin Nguyen", "555-1009", "kevin.nguyen@homeservices.example.com",
		[]string{"60601", "60602", "77001"}, []string{"dishwasher", "oven", "refrigerator"}},
	{"Laura Garcia", "555-1010", "laura.garcia@homeservices.example.com",
		[]string{"10001", "90210", "77001"}, []string{"hvac", "washer", "dryer"}},
}

// Seed fills an empty database with ten technicians, their coverage, and a
// morning plus afternoon slot per technician for each of the next ten days.
// Idempotent: it does nothing when technicians already exist.
func Seed(db *sqlx.DB, log *logrus.Logger) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM technicians"); err != nil {
		return err
	}
	if count > 0 {
		log.Info("Seed data already present, skipping")
		return nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	slotCount := 0

	for _, tech := range seedTechnicians {
		var techID int64
		err := tx.QueryRowx(
			"INSERT INTO technicians (name, phone, email) VALUES ($1, $2, $3) RETURNING id",
			tech.name, tech.phone, tech.email,
		).Scan(&techID)
		if err != nil {
			return err
		}

		for _, zip := range tech.zipCodes {
			if _, err := tx.Exec(
				"INSERT INTO service_areas (technician_id, zip_code) VALUES ($1, $2)",
				techID, zip,
			); err != nil {
				return err
			}
		}

		for _, appliance := range tech.specialties {
			if _, err := tx.Exec(
				"INSERT INTO specialties (technician_id, appliance_type) VALUES ($1, $2)",
				techID, appliance,
			); err != nil {
				return err
			}
		}

		for dayOffset := 1; dayOffset <= 10; dayOffset++ {
			day := now.AddDate(0, 0, dayOffset)
			morning := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC)
			afternoon := time.Date(day.Year(), day.Month(), day.Day(), 13, 0, 0, 0, time.UTC)

			for _, start := range []time.Time{morning, afternoon} {
				if _, err := tx.Exec(
					"INSERT INTO availability_slots (technician_id, start_time, end_time, is_booked) VALUES ($1, $2, $3, FALSE)",
					techID, start, start.Add(3*time.Hour),
				); err != nil {
					return err
				}
				slotCount++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Infof("Seeded %d technicians and %d availability slots", len(seedTechnicians), slotCount)
	return nil
}
