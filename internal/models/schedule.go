package models

import "github.com/google/uuid"

type Schedule struct {
	BaseModel
	TeacherID   uuid.UUID `json:"profesor_id" gorm:"type:uuid;not null;index"`
	Day         string    `json:"dia" gorm:"type:varchar(20);not null"`
	StartTime   string    `json:"hora_inicio" gorm:"type:varchar(10);not null"`
	EndTime     string    `json:"hora_fin" gorm:"type:varchar(10);not null"`
	Annotations string    `json:"anotaciones" gorm:"type:text"`
	GroupLabel  string    `json:"grupo" gorm:"type:varchar(50)"`

	Teacher Teacher `json:"-" gorm:"foreignKey:TeacherID;references:ID"`
}

func (Schedule) TableName() string {
	return "horarios"
}
