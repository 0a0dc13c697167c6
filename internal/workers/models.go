package workers

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Assignment sources for a service ZIP row.
const (
	SourceManual  = "manual"
	SourcePolygon = "polygon"
)

// Booking statuses, mirrored by the coverage.booking_status enum.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type Worker struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string         `gorm:"not null" json:"name"`
	Email           string         `gorm:"uniqueIndex" json:"email"`
	IsActive        bool           `gorm:"not null;default:true" json:"is_active"`
	ServiceArea     *string        `json:"service_area"`
	AvgResponseTime *int           `json:"avg_response_time"`
	Specializations pq.StringArray `gorm:"type:text[]" json:"specializations"`
	WorkStart       string         `gorm:"type:varchar(5);not null;default:'08:00'" json:"work_start"`
	WorkEnd         string         `gorm:"type:varchar(5);not null;default:'18:00'" json:"work_end"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ServiceZipcode is an explicit worker-to-ZIP assignment, the only signal
// that gates booking. Polygon rows carry the area they were expanded from.
type ServiceZipcode struct {
	ID        uint       `gorm:"primaryKey" json:"-"`
	WorkerID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_service_zip_worker" json:"worker_id"`
	Zipcode   string     `gorm:"type:char(5);not null;uniqueIndex:idx_service_zip_worker;index" json:"zipcode"`
	Source    string     `gorm:"type:varchar(16);not null;default:'manual'" json:"source"`
	AreaID    *uuid.UUID `gorm:"type:uuid;index" json:"area_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ServiceArea is a polygon a worker drew on the coverage map, stored as
// GeoJSON geometry text.
type ServiceArea struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WorkerID  uuid.UUID `gorm:"type:uuid;not null;index" json:"worker_id"`
	Name      string    `json:"name"`
	GeoJSON   string    `gorm:"type:text;not null" json:"geojson"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type Booking struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WorkerID        uuid.UUID `gorm:"type:uuid;not null;index:idx_booking_worker_date" json:"worker_id"`
	Date            time.Time `gorm:"type:date;not null;index:idx_booking_worker_date" json:"date"`
	StartTime       string    `gorm:"type:varchar(5);not null" json:"start_time"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	Status          string    `gorm:"type:coverage.booking_status;not null;default:'confirmed'" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

func (Worker) TableName() string         { return "coverage.workers" }
func (ServiceZipcode) TableName() string { return "coverage.service_zipcodes" }
func (ServiceArea) TableName() string    { return "coverage.service_areas" }
func (Booking) TableName() string        { return "coverage.bookings" }
