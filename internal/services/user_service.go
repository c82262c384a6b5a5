package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"github.com/buk/tasker-be/internal/models"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(username, password string) (models.User, error)
	Authenticate(username, password string) (models.User, error)
	ResolveUser(username string) (models.User, error)
}

// UserService provides registration, authentication and principal
// resolution over the user table.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// Register creates a new user with a bcrypt-hashed password.
func (s *UserService) Register(username, password string) (models.User, error) {
	if strings.TrimSpace(username) == "" {
		return models.User{}, &ValidationError{Field: "username", Message: "Username must not be blank"}
	}
	if password == "" {
		return models.User{}, &ValidationError{Field: "password", Message: "Password must not be empty"}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hashed),
	}

	stmt, err := s.db.Prepare("INSERT INTO users(id, username, password_hash) VALUES(?, ?, ?)")
	if err != nil {
		return models.User{}, err
	}
	defer stmt.Close()

	// The UNIQUE index is the single arbiter of username ownership;
	// checking first and inserting after would let two concurrent
	// registrations race past the check.
	if _, err := stmt.Exec(user.ID, user.Username, user.PasswordHash); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, err
	}

	// Refetch without the hash so CreatedAt is populated
	return s.getByUsername(user.Username, false)
}

// Authenticate verifies a user's credentials. Unknown usernames and
// wrong passwords are reported identically.
func (s *UserService) Authenticate(username, password string) (models.User, error) {
	user, err := s.getByUsername(username, true)
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// ResolveUser maps an authenticated principal's username to its user
// record. A miss means the token and the store disagree, so it surfaces
// as ErrPrincipalNotFound rather than a normal not-found.
func (s *UserService) ResolveUser(username string) (models.User, error) {
	user, err := s.getByUsername(username, false)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrPrincipalNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *UserService) getByUsername(username string, withHash bool) (models.User, error) {
	var user models.User
	if withHash {
		row := s.db.QueryRow("SELECT id, username, password_hash, created_at FROM users WHERE username = ?", username)
		if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt); err != nil {
			return models.User{}, err
		}
		return user, nil
	}
	row := s.db.QueryRow("SELECT id, username, created_at FROM users WHERE username = ?", username)
	if err := row.Scan(&user.ID, &user.Username, &user.CreatedAt); err != nil {
		return models.User{}, err
	}
	return user, nil
}
