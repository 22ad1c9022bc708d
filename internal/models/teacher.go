package models

import "github.com/google/uuid"

// Teacher is the personnel record behind a user with the teacher role.
// Periods, licenses, documents and schedules all hang off this row, not off
// the user directly.
type Teacher struct {
	BaseModel
	Name   string    `json:"nombre" gorm:"type:varchar(100);not null"`
	Email  string    `json:"email" gorm:"type:varchar(255);not null"`
	Phone  string    `json:"telefono" gorm:"type:varchar(50)"`
	UserID uuid.UUID `json:"usuario_id" gorm:"type:uuid;not null;uniqueIndex"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID"`
}

func (Teacher) TableName() string {
	return "profesores"
}
