package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is the metadata row behind a stored teacher file (degree scans,
// medical certificates, ...). DocumentType addresses the well-known slots;
// free-form uploads leave it empty and carry a Title instead.
type Document struct {
	BaseModel
	TeacherID    uuid.UUID `json:"profesor_id" gorm:"type:uuid;not null;index"`
	OriginalName string    `json:"nombre_archivo" gorm:"type:varchar(255);not null"`
	MimeType     string    `json:"tipo_archivo" gorm:"type:varchar(255);not null"`
	StoragePath  string    `json:"ruta_archivo" gorm:"type:text;not null"`
	DocumentType string    `json:"tipo_documento" gorm:"type:varchar(100);index"`
	Title        *string   `json:"titulo,omitempty" gorm:"type:varchar(255)"`
	UploadedAt   time.Time `json:"fecha_subida" gorm:"not null"`

	Teacher Teacher `json:"-" gorm:"foreignKey:TeacherID;references:ID"`
}

func (Document) TableName() string {
	return "archivos_profesor"
}
