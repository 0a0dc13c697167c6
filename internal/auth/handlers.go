package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mountly/coverage-backend/internal/db"
	"github.com/mountly/coverage-backend/internal/httputil"
	"github.com/mountly/coverage-backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionTTL is how long a login stays valid.
const SessionTTL = 6 * time.Hour

var ErrUsernameTaken = errors.New("username already taken")

var validate = httputil.NewValidator()

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type MeResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// CreateUser stores a back-office user with a bcrypt hash. Only coveragectl
// create-admin calls it; there is no public sign-up.
func CreateUser(username, password, role string) (*User, error) {
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}
	var existing User
	err := db.DB.First(&existing, "username = ?", username).Error
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := User{
		UserID:         utils.GenerateUUID(),
		Username:       username,
		HashedPassword: string(hashed),
		Role:           role,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

func sessionCookie(r *http.Request, value string, maxAge int) *http.Cookie {
	secure := r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
	c := &http.Cookie{
		Name:     "session_id",
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
	if secure {
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.DecodeAndValidate(r, validate, &req); err != nil {
		http.Error(w, "Invalid Data", http.StatusBadRequest)
		return
	}

	var user User
	if err := db.DB.First(&user, "username = ?", req.Username).Error; err != nil {
		http.Error(w, "Invalid Credentials", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		http.Error(w, "Invalid Credentials", http.StatusUnauthorized)
		return
	}

	// One session per user; logging in again replaces it.
	session := Session{
		SessionID: utils.GenerateUUID(),
		UserID:    user.UserID,
		ExpiresAt: time.Now().Add(SessionTTL),
	}
	err := db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"session_id", "expires_at"}),
	}).Create(&session).Error
	if err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, sessionCookie(r, session.SessionID, int(SessionTTL.Seconds())))
	httputil.WriteJSON(w, MeResponse{UserID: user.UserID, Username: user.Username, Role: user.Role})
}

func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("session_id")
	if err != nil {
		http.Error(w, "Couldn't find cookie", http.StatusUnauthorized)
		return
	}

	if err := db.DB.Where("session_id = ?", cookie.Value).Delete(&Session{}).Error; err != nil {
		http.Error(w, "Failed to delete session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, sessionCookie(r, "", -1))
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Logout successful")
}

func MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Failed converting ID to string", http.StatusInternalServerError)
		return
	}

	var user User
	if err := db.DB.First(&user, "user_id = ?", userID).Error; err != nil {
		http.Error(w, "Couldn't find user", http.StatusNotFound)
		return
	}

	httputil.WriteJSON(w, MeResponse{UserID: user.UserID, Username: user.Username, Role: user.Role})
}
