package models

import (
	"time"

	"github.com/google/uuid"
)

// License is an approved absence interval. Overlapping licenses for the same
// teacher are allowed: concurrent leaves with different reasons are a real
// case and nothing downstream assumes disjoint intervals.
type License struct {
	BaseModel
	TeacherID uuid.UUID  `json:"profesor_id" gorm:"type:uuid;not null;index"`
	StartDate time.Time  `json:"fecha_inicio" gorm:"type:date;not null"`
	EndDate   *time.Time `json:"fecha_fin" gorm:"type:date"`
	Reason    *string    `json:"motivo" gorm:"type:varchar(255)"`

	Teacher Teacher `json:"-" gorm:"foreignKey:TeacherID;references:ID"`
}

func (License) TableName() string {
	return "licencias"
}
