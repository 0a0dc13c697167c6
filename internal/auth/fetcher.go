package auth

import (
	"github.com/mountly/coverage-backend/internal/db"
	"github.com/mountly/coverage-backend/internal/utils"
)

// SessionInfo backs the session and admin middleware with the auth tables.
type SessionInfo struct{}

func (si SessionInfo) FindSessionByID(id string) (utils.SessionData, error) {
	var session Session

	err := db.DB.First(&session, "session_id = ?", id).Error
	if err != nil {
		return utils.SessionData{}, err
	}

	return utils.SessionData{
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (si SessionInfo) FindRoleByUserID(userID string) (string, error) {
	var user User
	if err := db.DB.Select("role").First(&user, "user_id = ?", userID).Error; err != nil {
		return "", err
	}
	return user.Role, nil
}
