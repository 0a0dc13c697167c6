package workers

import (
	"log"

	"github.com/mountly/coverage-backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "coverage"); err != nil {
		log.Fatal("Failed to ensure schema coverage: ", err)
	}

	err := db.EnsureEnum(db.DB, "coverage", "booking_status",
		StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled)
	if err != nil {
		log.Fatal("Failed to create coverage.booking_status: ", err)
	}

	if err := db.DB.AutoMigrate(&Worker{}, &ServiceZipcode{}, &ServiceArea{}, &Booking{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}
