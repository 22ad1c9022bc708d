package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkPeriod is an employment interval at the institution itself. A nil
// EndDate means the period is still running; tenure math treats it as ending
// today. StartDate never exceeds EndDate when both are present.
type WorkPeriod struct {
	BaseModel
	TeacherID uuid.UUID  `json:"profesor_id" gorm:"type:uuid;not null;index"`
	StartDate time.Time  `json:"fecha_ingreso" gorm:"type:date;not null"`
	EndDate   *time.Time `json:"fecha_egreso" gorm:"type:date"`

	Teacher Teacher `json:"-" gorm:"foreignKey:TeacherID;references:ID"`
}

func (WorkPeriod) TableName() string {
	return "periodos_trabajo"
}

// ExternalWorkPeriod is an employment interval at a prior employer. It counts
// toward tenure exactly like an internal period.
type ExternalWorkPeriod struct {
	BaseModel
	TeacherID uuid.UUID  `json:"profesor_id" gorm:"type:uuid;not null;index"`
	Employer  string     `json:"empresa" gorm:"type:varchar(255);not null"`
	StartDate time.Time  `json:"fecha_ingreso" gorm:"type:date;not null"`
	EndDate   *time.Time `json:"fecha_egreso" gorm:"type:date"`

	Teacher Teacher `json:"-" gorm:"foreignKey:TeacherID;references:ID"`
}

func (ExternalWorkPeriod) TableName() string {
	return "periodos_externos"
}
