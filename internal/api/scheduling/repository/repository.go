package schedulingRepository

import (
	"VoiceAgentGolang/internal/entity"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		var err error
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Slots:        &slotRepository{q: sqlExecutor, log: r.log},
		Technicians:  &technicianRepository{q: sqlExecutor, log: r.log},
		Appointments: &appointmentRepository{q: sqlExecutor, log: r.log},
		Commit:       commitFunc,
		Rollback:     rollbackFunc,
	}, nil
}

type Client struct {
	Slots interface {
		FindAvailableSlots(ctx context.Context, zipCode, applianceType string, now time.Time) ([]AvailableSlot, error)
		GetSlotByID(ctx context.Context, id int64) (entity.AvailabilitySlot, error)
		BookSlot(ctx context.Context, id int64) (bool, error)
	}

	Technicians interface {
		GetTechnicianByID(ctx context.Context, id int64) (entity.Technician, error)
	}

	Appointments interface {
		CreateAppointment(ctx context.Context, appointment entity.Appointment) (int64, error)
		GetAppointmentByCallID(ctx context.Context, callID string) (entity.Appointment, error)
	}

	Commit   func() error
	Rollback func() error
}

type slotRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type technicianRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type appointmentRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

// AvailableSlot is a slot row joined with its technician's name.
type AvailableSlot struct {
	ID             int64     `db:"id"`
	TechnicianID   int64     `db:"technician_id"`
	StartTime      time.Time `db:"start_time"`
	EndTime        time.Time `db:"end_time"`
	IsBooked       bool      `db:"is_booked"`
	TechnicianName string    `db:"technician_name"`
}
