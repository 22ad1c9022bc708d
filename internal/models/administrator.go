package models

import "github.com/google/uuid"

type Administrator struct {
	BaseModel
	Name         string    `json:"nombre" gorm:"type:varchar(100);not null"`
	Email        string    `json:"email" gorm:"type:varchar(255);not null"`
	Phone        string    `json:"telefono" gorm:"type:varchar(50)"`
	ProfilePhoto *string   `json:"foto_perfil,omitempty" gorm:"type:text"`
	UserID       uuid.UUID `json:"usuario_id" gorm:"type:uuid;not null;uniqueIndex"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID"`
}

func (Administrator) TableName() string {
	return "administradores"
}
