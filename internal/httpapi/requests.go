package httpapi

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.String {
			return false
		}
		return strings.TrimSpace(field.String()) != ""
	})
	validate.RegisterValidation("maxlines", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.String {
			return false
		}
		raw := field.String()
		lines := strings.Count(raw, "\n") + 1
		return lines <= maxLinesFromParam(fl.Param())
	})
}

type SnippetCreateDTO struct {
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Language    string `json:"language" validate:"omitempty,notblank,max=32"`
	Description string `json:"description" validate:"omitempty,max=120"`
	Code        string `json:"code" validate:"required,notblank,max=250000,maxlines=5000"`
}

func (r *SnippetCreateDTO) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationMessage(err, map[string]map[string]string{
			"Title": {
				"required": "title and code are required",
				"notblank": "title and code are required",
				"max":      "title is too long",
			},
			"Code": {
				"required": "title and code are required",
				"notblank": "title and code are required",
				"max":      "code is too long",
				"maxlines": "code has too many lines",
			},
			"Language": {
				"notblank": "invalid language",
				"max":      "invalid language",
			},
			"Description": {
				"max": "description is too long",
			},
		}, "invalid request")
	}
	return nil
}

type CommentCreateDTO struct {
	Body string `json:"body" validate:"required,notblank,max=2000"`
}

func (r *CommentCreateDTO) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationMessage(err, map[string]map[string]string{
			"Body": {
				"required": "comment body is required",
				"notblank": "comment body is required",
				"max":      "comment is too long",
			},
		}, "invalid request")
	}
	return nil
}

type LikeToggleDTO struct {
	// Liked is the state the client currently shows; the server flips it.
	Liked bool `json:"liked"`
}

func validationMessage(err error, messages map[string]map[string]string, fallback string) error {
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return errors.New(fallback)
	}
	for _, valErr := range valErrs {
		if fieldMessages, ok := messages[valErr.Field()]; ok {
			if msg, ok := fieldMessages[valErr.Tag()]; ok {
				return errors.New(msg)
			}
			if msg, ok := fieldMessages["*"]; ok {
				return errors.New(msg)
			}
		}
	}
	return errors.New(fallback)
}

func maxLinesFromParam(param string) int {
	n := 0
	for _, r := range param {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
