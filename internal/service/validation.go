package service

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Nurdhuha/website-ukim/internal/models"
	appErrors "github.com/Nurdhuha/website-ukim/pkg/errors"
)

// UploadsPublicPrefix is the URL prefix stored media paths must start with.
const UploadsPublicPrefix = "/uploads/"

// NewValidator returns a validator with the CMS-specific rules registered.
// Field names in errors follow the JSON tags.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("mediapath", func(fl validator.FieldLevel) bool {
		return IsMediaPath(fl.Field().String())
	})
	_ = v.RegisterValidation("contentstatus", func(fl validator.FieldLevel) bool {
		switch models.ContentStatus(fl.Field().String()) {
		case models.ContentStatusDraft, models.ContentStatusPublished:
			return true
		}
		return false
	})
	return v
}

// IsMediaPath accepts uploaded file paths and absolute http(s) URLs.
func IsMediaPath(value string) bool {
	if strings.HasPrefix(value, UploadsPublicPrefix) {
		rest := strings.TrimPrefix(value, UploadsPublicPrefix)
		return rest != "" && !strings.Contains(rest, "..")
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// validationError converts validator output into a client-facing message.
func validationError(err error) *appErrors.Error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		parts := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload: "+strings.Join(parts, ", "))
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
}
