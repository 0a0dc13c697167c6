package auth

import (
	"log"
	"time"

	"github.com/mountly/coverage-backend/internal/db"
)

// Init migrates the auth tables and drops sessions that expired while the
// process was down.
func Init() {
	if err := db.EnsureSchema(db.DB, "app_auth"); err != nil {
		log.Fatal("Failed to ensure schema app_auth: ", err)
	}

	if err := db.DB.AutoMigrate(&User{}, &Session{}); err != nil {
		log.Fatal("Failed to auto-migrate auth tables: ", err)
	}

	if n, err := PurgeExpiredSessions(); err != nil {
		log.Printf("[auth] purge expired sessions: %v", err)
	} else if n > 0 {
		log.Printf("[auth] purged %d expired sessions", n)
	}
}

// PurgeExpiredSessions deletes every session past its expiry and reports how
// many were removed.
func PurgeExpiredSessions() (int64, error) {
	res := db.DB.Where("expires_at < ?", time.Now()).Delete(&Session{})
	return res.RowsAffected, res.Error
}
