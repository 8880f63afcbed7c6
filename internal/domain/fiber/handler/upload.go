package handler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fadilmartias/cv-evaluator/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxUploadSize = 5 * 1024 * 1024

var allowedExtensions = map[string]bool{".pdf": true, ".txt": true, ".md": true, ".markdown": true}

type TextExtractor interface {
	ExtractFile(path string) (string, error)
}

// uploadError carries the status and message the handler should answer with.
type uploadError struct {
	code    int
	message string
	err     error
}

func (e *uploadError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

func (e *uploadError) Unwrap() error { return e.err }

// saveUpload stores the multipart file fieldName under dir with a generated
// name and returns the path and the original filename.
func saveUpload(c *fiber.Ctx, fieldName, dir string) (string, string, error) {
	file, err := c.FormFile(fieldName)
	if err != nil {
		return "", "", &uploadError{code: fiber.StatusBadRequest, message: fmt.Sprintf("%s file is required", fieldName), err: err}
	}
	if file.Size > maxUploadSize {
		return "", "", &uploadError{code: fiber.StatusRequestEntityTooLarge, message: fmt.Sprintf("%s file size is too large (max 5MB)", fieldName)}
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", "", &uploadError{code: fiber.StatusUnsupportedMediaType, message: fmt.Sprintf("unsupported %s file type", fieldName)}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", &uploadError{code: fiber.StatusInternalServerError, message: fmt.Sprintf("cannot save %s file", fieldName), err: err}
	}
	savePath := filepath.Join(dir, uuid.NewString()+ext)
	if err := c.SaveFile(file, savePath); err != nil {
		return "", "", &uploadError{code: fiber.StatusInternalServerError, message: fmt.Sprintf("cannot save %s file", fieldName), err: err}
	}
	return savePath, file.Filename, nil
}

func respondUploadError(c *fiber.Ctx, err error) error {
	var ue *uploadError
	if errors.As(err, &ue) {
		return util.ErrorResponse(c, util.ErrorResponseFormat{Code: ue.code, Message: ue.message}, ue.err)
	}
	return util.ErrorResponse(c, util.ErrorResponseFormat{Message: "upload failed"}, err)
}
