package board

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"messageboard/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Input is a submitted message form.
type Input struct {
	Title      string `form:"title" validate:"required,max=255"`
	Content    string `form:"content" validate:"required"`
	YouTubeURL string `form:"youtube_url" validate:"omitempty,url"`
}

// Normalize trims surrounding whitespace from every field, so a blank title
// counts as missing.
func (in Input) Normalize() Input {
	return Input{
		Title:      strings.TrimSpace(in.Title),
		Content:    strings.TrimSpace(in.Content),
		YouTubeURL: strings.TrimSpace(in.YouTubeURL),
	}
}

// Validate returns the fields to store, or a *domain.ValidationError.
func (in Input) Validate() (domain.Fields, error) {
	in = in.Normalize()

	err := validate.Struct(in)
	if err == nil {
		return domain.Fields{Title: in.Title, Content: in.Content, YouTubeURL: in.YouTubeURL}, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Fields{}, err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return domain.Fields{}, &domain.ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	label := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", label, fe.Param())
	case "url":
		return fmt.Sprintf("The %s field must be a valid URL.", label)
	default:
		return fmt.Sprintf("The %s field is invalid.", label)
	}
}
