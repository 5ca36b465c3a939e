package scheduling

import "errors"

var (
	ErrNoSlotsAvailable = errors.New("no availability slots match the request")
	ErrSlotNotFound     = errors.New("availability slot not found")
	ErrSlotConflict     = errors.New("availability slot was booked by another call")
)
