package employee

import (
	"time"

	"github.com/google/uuid"
)

type Employee struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Email       string    `gorm:"not null;uniqueIndex:uq_employees_email" json:"email"`
	Department  string    `gorm:"not null" json:"department"`
	JoiningDate time.Time `gorm:"type:date;not null" json:"joining_date"`
	Role        string    `gorm:"not null;default:employee" json:"role"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
