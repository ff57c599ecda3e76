// Package repository implements the service stores on top of gorm.
package repository

import (
	"errors"

	"gorm.io/gorm"

	"taskhub/errs"
)

// Repositories bundles every store over one connection
type Repositories struct {
	Users         *UserRepository
	Teams         *TeamRepository
	Memberships   *MembershipRepository
	Projects      *ProjectRepository
	Tasks         *TaskRepository
	Comments      *CommentRepository
	Notifications *NotificationRepository
	Files         *FileRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:         &UserRepository{DB: db},
		Teams:         &TeamRepository{DB: db},
		Memberships:   &MembershipRepository{DB: db},
		Projects:      &ProjectRepository{DB: db},
		Tasks:         &TaskRepository{DB: db},
		Comments:      &CommentRepository{DB: db},
		Notifications: &NotificationRepository{DB: db},
		Files:         &FileRepository{DB: db},
	}
}

// notFound converts gorm's record-not-found into the shared sentinel
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NotFound("%s not found", what)
	}
	return err
}

func duplicate(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.Conflict(format, args...)
	}
	return err
}
