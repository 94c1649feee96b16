package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/raghav0014/AI-Feedback/utils"
)

// UploadController handles review attachment uploads.
type UploadController struct {
	uploader *utils.CloudinaryUploader
}

func NewUploadController(uploader *utils.CloudinaryUploader) *UploadController {
	return &UploadController{uploader: uploader}
}

// Upload stores a multipart file and returns its URL.
func (u *UploadController) Upload(c *fiber.Ctx) error {
	if u.uploader == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"message": "File uploads are not configured",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "Missing file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return badRequest(c, "Cannot read file")
	}
	defer file.Close()

	url, err := u.uploader.Upload(c.UserContext(), file, uuid.NewString(), "reviews")
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"url":     url,
	})
}
