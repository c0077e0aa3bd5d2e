package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrValidation           = errors.New("validation error")
	ErrNotFound             = errors.New("session not found")
	ErrConflict             = errors.New("conflict")
	ErrGenerationIncomplete = errors.New("generation incomplete")
	ErrGenerationFailed     = errors.New("generation failed")
	ErrPlaceholderNotFound  = errors.New("placeholder not found")
	ErrTemplateLoadFailed   = errors.New("template load failed")
	ErrSerializationFailed  = errors.New("serialization failed")
)

// DetailError pairs a sentinel kind with the detail shown to the caller.
type DetailError struct {
	Kind   error
	Detail string
}

func (e *DetailError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Detail)
}

func (e *DetailError) Unwrap() error {
	return e.Kind
}

// Validation wraps ErrValidation with a caller-facing detail.
func Validation(detail string) error {
	return &DetailError{Kind: ErrValidation, Detail: detail}
}

// Conflict wraps ErrConflict with a caller-facing detail.
func Conflict(detail string) error {
	return &DetailError{Kind: ErrConflict, Detail: detail}
}

// Message is the text sent to the caller: the detail of a DetailError,
// otherwise the full error string.
func Message(err error) string {
	var de *DetailError
	if errors.As(err, &de) {
		return de.Detail
	}
	return err.Error()
}

// GenerationFailedError carries the name of the section whose generation call failed.
type GenerationFailedError struct {
	Section string
	Err     error
}

func (e *GenerationFailedError) Error() string {
	return fmt.Sprintf("generation failed for section %q: %v", e.Section, e.Err)
}

func (e *GenerationFailedError) Unwrap() []error {
	return []error{ErrGenerationFailed, e.Err}
}

// PlaceholderNotFoundError reports a template that lacks an expected marker.
type PlaceholderNotFoundError struct {
	Marker string
}

func (e *PlaceholderNotFoundError) Error() string {
	return fmt.Sprintf("placeholder %q not found in the template", e.Marker)
}

func (e *PlaceholderNotFoundError) Unwrap() error {
	return ErrPlaceholderNotFound
}

// StatusCode maps an error to the HTTP status returned to the caller.
// Caller-caused errors are 4xx, everything else is 5xx.
func StatusCode(err error) int {
	var fe *fiber.Error
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, ErrGenerationIncomplete), errors.Is(err, ErrGenerationFailed):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
