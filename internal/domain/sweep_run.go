package domain

import (
	"database/sql"
	"time"
)

const (
	SweepTriggerSchedule = "SCHEDULE"
	SweepTriggerManual   = "MANUAL"
)

// SweepRun records one pass of the auto-completion sweeper.
type SweepRun struct {
	ID         int64
	Trigger    string
	Started    time.Time
	Finished   sql.NullTime
	Scanned    int
	Candidates int
	Completed  int
	Failed     int
}
