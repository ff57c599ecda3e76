package controller

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"taskhub/middleware"
	"taskhub/services"
	"taskhub/utils"
)

type FileController struct {
	Files *services.FileService
	Log   *logrus.Entry
}

func NewFileController(files *services.FileService, log *logrus.Entry) *FileController {
	return &FileController{Files: files, Log: log}
}

func (fc *FileController) Upload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}
	if fc.Files.MaxBytes > 0 && header.Size > fc.Files.MaxBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is too large"})
	}
	src, err := header.Open()
	if err != nil {
		return respondError(c, fc.Log, err)
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return respondError(c, fc.Log, err)
	}

	file, err := fc.Files.Upload(c.UserContext(), middleware.UserID(c), services.Upload{
		TaskID:   utils.ParseUint(c.FormValue("task_id")),
		Name:     header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Data:     data,
	})
	if err != nil {
		return respondError(c, fc.Log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(file)
}

func (fc *FileController) List(c *fiber.Ctx) error {
	taskID, err := paramID(c, "taskId")
	if err != nil {
		return respondError(c, fc.Log, err)
	}
	files, err := fc.Files.List(c.UserContext(), middleware.UserID(c), taskID)
	if err != nil {
		return respondError(c, fc.Log, err)
	}
	return c.JSON(files)
}

func (fc *FileController) Download(c *fiber.Ctx) error {
	id, err := paramID(c, "fileId")
	if err != nil {
		return respondError(c, fc.Log, err)
	}
	file, err := fc.Files.Download(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return respondError(c, fc.Log, err)
	}
	c.Set(fiber.HeaderContentType, file.MimeType)
	c.Set(fiber.HeaderContentDisposition, utils.ContentDisposition(file.Name))
	return c.Send(file.Data)
}

func (fc *FileController) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "fileId")
	if err != nil {
		return respondError(c, fc.Log, err)
	}
	if err := fc.Files.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, fc.Log, err)
	}
	return c.JSON(fiber.Map{"message": "File deleted successfully"})
}
