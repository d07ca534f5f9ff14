// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type Role uint8

const (
	RoleNone Role = iota
	RoleStudent
	RoleCompany
)

func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "student"
	case RoleCompany:
		return "company"
	default:
		return "none"
	}
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	role, ok := ParseRole(string(text))
	if !ok {
		return fmt.Errorf("unknown role %q", text)
	}
	*r = role
	return nil
}

// ParseRole accepts the String form of a role.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "student":
		return RoleStudent, true
	case "company":
		return RoleCompany, true
	case "none":
		return RoleNone, true
	}
	return RoleNone, false
}

// ScholarshipStatus moves Open -> InProgress -> Completed. Closed is reserved and never entered.
type ScholarshipStatus uint8

const (
	StatusOpen ScholarshipStatus = iota
	StatusInProgress
	StatusClosed
	StatusCompleted
)

func (s ScholarshipStatus) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusInProgress:
		return "in_progress"
	case StatusClosed:
		return "closed"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

func (s ScholarshipStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ScholarshipStatus) UnmarshalText(text []byte) error {
	for _, status := range []ScholarshipStatus{StatusOpen, StatusInProgress, StatusClosed, StatusCompleted} {
		if status.String() == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown scholarship status %q", text)
}
