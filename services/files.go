package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"taskhub/errs"
	"taskhub/models"
	"taskhub/policy"
	"taskhub/utils"
)

// Upload is a file received from a multipart form
type Upload struct {
	TaskID   uint
	Name     string
	MimeType string
	Data     []byte
}

type FileService struct {
	Scope    *Scope
	Files    FileStore
	MaxBytes int64
	Log      *logrus.Entry
}

func (s *FileService) Upload(ctx context.Context, userID uint, up Upload) (*models.TaskFile, error) {
	if up.TaskID == 0 {
		return nil, errs.Validation("task_id is required")
	}
	if len(up.Data) == 0 {
		return nil, errs.Validation("file is required")
	}
	if s.MaxBytes > 0 && int64(len(up.Data)) > s.MaxBytes {
		return nil, errs.Validation("file exceeds the %d byte limit", s.MaxBytes)
	}
	if !utils.AllowedUpload(up.Name) {
		return nil, errs.Validation("file type is not allowed")
	}
	task, _, err := s.Scope.Task(ctx, userID, up.TaskID, policy.FileUpload, policy.Resource{})
	if err != nil {
		return nil, err
	}

	file := &models.TaskFile{
		TaskID:     task.ID,
		UploadedBy: userID,
		Name:       up.Name,
		Size:       int64(len(up.Data)),
		MimeType:   utils.MimeTypeFor(up.Name, up.MimeType),
		Data:       up.Data,
	}
	if err := s.Files.Create(ctx, file); err != nil {
		return nil, err
	}
	return file, nil
}

func (s *FileService) List(ctx context.Context, userID, taskID uint) ([]models.TaskFile, error) {
	task, _, err := s.Scope.Task(ctx, userID, taskID, policy.FileRead, policy.Resource{})
	if err != nil {
		return nil, err
	}
	files, err := s.Files.ByTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []models.TaskFile{}
	}
	return files, nil
}

// Download returns the file with its payload
func (s *FileService) Download(ctx context.Context, userID, fileID uint) (*models.TaskFile, error) {
	file, err := s.Files.ByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.Scope.Task(ctx, userID, file.TaskID, policy.FileRead, policy.Resource{OwnerID: file.UploadedBy}); err != nil {
		return nil, err
	}
	return file, nil
}

func (s *FileService) Delete(ctx context.Context, userID, fileID uint) error {
	file, err := s.Files.ByID(ctx, fileID)
	if err != nil {
		return err
	}
	if _, _, err := s.Scope.Task(ctx, userID, file.TaskID, policy.FileDelete, policy.Resource{OwnerID: file.UploadedBy}); err != nil {
		return err
	}
	return s.Files.Delete(ctx, file.ID)
}
