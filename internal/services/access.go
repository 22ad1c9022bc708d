package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sanjose/backend/internal/models"
	"gorm.io/gorm"
)

// AccessPolicy answers every role/ownership question in the system. It never
// writes anything: handlers consult it first and act second.
type AccessPolicy struct {
	DB *gorm.DB
}

func NewAccessPolicy(db *gorm.DB) *AccessPolicy {
	return &AccessPolicy{DB: db}
}

// CanAccessTeacherSchedule reports whether user may read or write schedules
// belonging to the teacher record teacherID. Administrators may touch any
// schedule; a teacher only their own record. Unknown roles deny.
func (a *AccessPolicy) CanAccessTeacherSchedule(ctx context.Context, user *models.User, teacherID uuid.UUID) bool {
	if user == nil {
		return false
	}

	switch user.Role {
	case models.UserRoleAdministrator:
		return true
	case models.UserRoleTeacher:
		var teacher models.Teacher
		err := a.DB.WithContext(ctx).
			Select("id").
			First(&teacher, "user_id = ?", user.ID).Error
		if err != nil {
			return false
		}
		return teacher.ID == teacherID
	default:
		return false
	}
}

// CanMessage applies the directionality rule: one endpoint must be an
// administrator and the other a teacher. Same-role pairs are rejected in both
// directions.
func CanMessage(sender, recipient models.UserRole) bool {
	switch sender {
	case models.UserRoleAdministrator:
		return recipient == models.UserRoleTeacher
	case models.UserRoleTeacher:
		return recipient == models.UserRoleAdministrator
	default:
		return false
	}
}

// CanDeleteMessage restricts message deletion to administrators.
func CanDeleteMessage(user *models.User) bool {
	return user != nil && user.Role == models.UserRoleAdministrator
}
