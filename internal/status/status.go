package status

import "errors"

var (
	ErrDataAccess           = errors.New("sales: data access failed")
	ErrInvalidEventDate     = errors.New("demand: invalid event date")
	ErrWindowNotActive      = errors.New("demand: sale window not active")
	ErrEscalationWrite      = errors.New("escalation: write failed")
	ErrEscalationDelete     = errors.New("escalation: delete failed")
	ErrNotificationNotFound = errors.New("feed: notification not found")
	ErrJobAlreadyRunning    = errors.New("recommendation: job already running")
)
