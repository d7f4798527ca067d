package identity

import (
	"context"
	"strings"
	"time"

	"github.com/jo-maerz/loka/internal/domain/shared"
)

// User mirrors an identity-provider account locally. Rows are created
// by signup or lazily from token claims on first authenticated use.
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	SubjectID string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	FirstName string    `gorm:"type:varchar(100)"`
	LastName  string    `gorm:"type:varchar(100)"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a local user for an identity-provider subject
func NewUser(subjectID, email, firstName, lastName string) (*User, error) {
	if strings.TrimSpace(subjectID) == "" {
		return nil, shared.NewDomainError("MISSING_SUBJECT", "User must carry an identity-provider subject")
	}
	if strings.TrimSpace(email) == "" {
		return nil, shared.NewDomainError("MISSING_EMAIL", "User email cannot be empty")
	}
	return &User{
		SubjectID: subjectID,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

// Repository defines the interface for user persistence
type Repository interface {
	// FindBySubject finds a user by identity-provider subject
	FindBySubject(ctx context.Context, subjectID string) (*User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Save creates or updates a user
	Save(ctx context.Context, u *User) error
}
