package availability

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Defaults filled into records so clients never see nulls.
const (
	DefaultServiceArea      = "Local Area"
	DefaultAvgResponseTime  = 30
	DefaultAssignmentSource = "explicit"
)

// Query asks for workers free in zip on Date ("YYYY-MM-DD") from Time
// ("HH:MM") for DurationMinutes.
type Query struct {
	Zip             string
	Date            string
	Time            string
	DurationMinutes int
}

// Row is a candidate worker as read from the database; optional columns may
// be NULL.
type Row struct {
	WorkerID         uuid.UUID
	Name             string
	ServiceArea      *string
	AvgResponseTime  *int
	Specializations  pq.StringArray `gorm:"type:text[]"`
	AssignmentSource *string
	WorkStart        string
	WorkEnd          string
}

// Record is one available worker.
type Record struct {
	WorkerID         string   `json:"worker_id"`
	Name             string   `json:"name"`
	ServiceArea      string   `json:"service_area"`
	AvgResponseTime  int      `json:"avg_response_time"`
	Specializations  []string `json:"specializations"`
	AssignmentSource string   `json:"assignment_source"`
}

// Slot is one bookable start time and how many workers are free for it.
type Slot struct {
	Time      string `json:"time"`
	Available int    `json:"available"`
}

func toRecord(r Row) Record {
	out := Record{
		WorkerID:         r.WorkerID.String(),
		Name:             r.Name,
		ServiceArea:      DefaultServiceArea,
		AvgResponseTime:  DefaultAvgResponseTime,
		Specializations:  []string{},
		AssignmentSource: DefaultAssignmentSource,
	}
	if r.ServiceArea != nil && *r.ServiceArea != "" {
		out.ServiceArea = *r.ServiceArea
	}
	if r.AvgResponseTime != nil {
		out.AvgResponseTime = *r.AvgResponseTime
	}
	if len(r.Specializations) > 0 {
		out.Specializations = []string(r.Specializations)
	}
	if r.AssignmentSource != nil && *r.AssignmentSource != "" {
		out.AssignmentSource = *r.AssignmentSource
	}
	return out
}
