package models

// UserRole is a closed set: every identity is exactly one of these and the
// role never changes after creation. Authorization decisions switch
// exhaustively on this type instead of comparing raw strings.
type UserRole string

const (
	UserRoleAdministrator UserRole = "administrador"
	UserRoleTeacher       UserRole = "profesor"
)

// IsValid reports whether r is one of the two known variants.
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdministrator, UserRoleTeacher:
		return true
	default:
		return false
	}
}

type User struct {
	BaseModel
	Name         string   `json:"nombre" gorm:"type:varchar(100);not null"`
	Email        string   `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string   `json:"-" gorm:"type:text;not null"`
	Role         UserRole `json:"rol" gorm:"type:varchar(20);not null"`
}

func (User) TableName() string {
	return "usuarios"
}
