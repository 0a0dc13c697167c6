package auth

import "time"

// Roles a back-office user can hold. Only admins may edit workers or drop
// cached coverage verdicts.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Session is the server side of the session_id cookie; one per user.
type Session struct {
	SessionID string    `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"not null;unique" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
}

// User is a back-office operator. There is no customer login here.
type User struct {
	UserID         string    `gorm:"primaryKey" json:"user_id"`
	Username       string    `gorm:"uniqueIndex;not null" json:"username"`
	HashedPassword string    `gorm:"not null" json:"-"`
	Role           string    `gorm:"type:varchar(16);not null;default:'staff'" json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	Session        Session   `gorm:"foreignKey:UserID" json:"-"`
}

func (Session) TableName() string { return "app_auth.sessions" }
func (User) TableName() string    { return "app_auth.users" }
