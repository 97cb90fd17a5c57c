package httpserver

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fairyhunter13/pm-interview-coach/internal/domain"
	"github.com/fairyhunter13/pm-interview-coach/internal/usecase"
)

// evaluationRequest is the JSON body accepted by the evaluation endpoints.
type evaluationRequest struct {
	UserID       string `json:"user_id" validate:"required,max=128"`
	QuestionID   string `json:"question_id" validate:"max=128"`
	QuestionText string `json:"question_text" validate:"max=2000"`
	Transcript   string `json:"transcript" validate:"max=20000"`
	Framework    string `json:"framework" validate:"omitempty,framework"`
}

func (r evaluationRequest) toDomain() domain.EvaluationRequest {
	return domain.EvaluationRequest{
		UserID:       strings.TrimSpace(r.UserID),
		QuestionID:   strings.TrimSpace(r.QuestionID),
		QuestionText: r.QuestionText,
		Transcript:   r.Transcript,
		Framework:    r.Framework,
	}
}

type detectRequest struct {
	Transcript string `json:"transcript" validate:"required,max=20000"`
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() {
		vld = validator.New()
		vld.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = vld.RegisterValidation("framework", func(fl validator.FieldLevel) bool {
			_, ok := domain.ParseFramework(fl.Field().String())
			return ok
		})
	})
	return vld
}

// validate runs struct validation and returns an ErrInvalidArgument with
// per-field details keyed by json name.
func validate(v any) (map[string]string, error) {
	err := getValidator().Struct(v)
	if err == nil {
		return nil, nil
	}
	details := map[string]string{}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			details[fe.Field()] = fe.Tag()
		}
	}
	return details, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument)
}

// ValidateEvaluationID checks that id is a UUID.
func ValidateEvaluationID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id required", domain.ErrInvalidArgument)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: id must be a uuid", domain.ErrInvalidArgument)
	}
	return nil
}

// ParseLimit reads a page size; empty means the service default.
func ParseLimit(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > usecase.MaxListLimit {
		return 0, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidArgument, usecase.MaxListLimit)
	}
	return n, nil
}
