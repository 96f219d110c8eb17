package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in / check-out errors
	ErrAlreadyCheckedIn = errors.New("you have already checked in today")
	ErrNoActiveCheckIn  = errors.New("no active check-in found for today")
	ErrInvalidAction    = errors.New("action must be checkin or checkout")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrAttendanceExists   = errors.New("attendance already recorded for this employee and date")
	ErrUnauthorized       = errors.New("unauthorized to record attendance for this employee")
	ErrCheckOutBeforeIn   = errors.New("check_out must not be before check_in")
)
