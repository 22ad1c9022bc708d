package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds the personal file of a teacher. Rows are created lazily: the
// first write for a teacher inserts, every later write overwrites the whole
// row. The unique index on TeacherID is what keeps concurrent first writes
// from producing duplicates.
type Profile struct {
	BaseModel
	TeacherID        uuid.UUID  `json:"profesor_id" gorm:"type:uuid;not null;uniqueIndex"`
	FirstName        string     `json:"nombre" gorm:"type:varchar(100)"`
	LastName         string     `json:"apellido" gorm:"type:varchar(100)"`
	NationalID       string     `json:"dni" gorm:"type:varchar(20)"`
	Address          string     `json:"direccion" gorm:"type:varchar(255)"`
	MobilePhone      string     `json:"telefono_celular" gorm:"type:varchar(50)"`
	BirthDate        *time.Time `json:"fecha_nacimiento" gorm:"type:date"`
	Annotation       string     `json:"anotacion" gorm:"type:text"`
	Position         string     `json:"cargo" gorm:"type:varchar(100)"`
	Sex              string     `json:"sexo" gorm:"type:varchar(20)"`
	MaritalStatus    string     `json:"estado_civil" gorm:"type:varchar(30)"`
	TaxID            string     `json:"cuil" gorm:"type:varchar(20)"`
	EmergencyContact string     `json:"tel_contacto_emergencias" gorm:"type:varchar(50)"`
	Observations     string     `json:"observaciones" gorm:"type:text"`
	Email            string     `json:"email" gorm:"type:varchar(255)"`
	ProfilePhoto     *string    `json:"foto_perfil,omitempty" gorm:"type:text"`

	Teacher Teacher `json:"-" gorm:"foreignKey:TeacherID;references:ID"`
}

func (Profile) TableName() string {
	return "perfil"
}
