// Package apperr описывает таксономию ошибок сервиса и их соответствие HTTP-кодам.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind класс ошибки
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindValidation
	KindConflict
)

// Коды ошибок для API
const (
	CodeUnauthenticated       = "UNAUTHENTICATED"
	CodeForbidden             = "FORBIDDEN"
	CodeNotFound              = "NOT_FOUND"
	CodeValidation            = "VALIDATION_ERROR"
	CodeConflict              = "CONFLICT"
	CodeInternal              = "INTERNAL"
	CodeInvalidClient         = "INVALID_CLIENT"
	CodeInvalidDeveloper      = "INVALID_DEVELOPER"
	CodeInvalidProject        = "INVALID_PROJECT"
	CodeProjectClientMismatch = "PROJECT_CLIENT_MISMATCH"
	CodeInvalidTask           = "INVALID_TASK"
	CodeDeveloperNotOnProject = "DEVELOPER_NOT_ON_PROJECT"
	CodeTaskProjectMismatch   = "TASK_PROJECT_MISMATCH"
	CodeDeveloperNotOnTask    = "DEVELOPER_NOT_ON_TASK"
	CodeAssigneeNotOnProject  = "ASSIGNEE_NOT_ON_PROJECT"
	CodeTaskRequired          = "TASK_REQUIRED"
	CodeClientNotFound        = "CLIENT_NOT_FOUND"
	CodeDeveloperNotFound     = "DEVELOPER_NOT_FOUND"
	CodeEmailExists           = "EMAIL_EXISTS"
	CodeRegistrationClosed    = "REGISTRATION_CLOSED"
)

// Error ошибка приложения с классом, кодом и сообщением для клиента
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по классу и коду, чтобы работал errors.Is с шаблонами
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Code == "" || e.Code == t.Code)
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, CodeUnauthenticated, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, CodeForbidden, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, CodeNotFound, message)
}

func Validation(code, message string) *Error {
	if code == "" {
		code = CodeValidation
	}
	return New(KindValidation, code, message)
}

func Conflict(code, message string) *Error {
	if code == "" {
		code = CodeConflict
	}
	return New(KindConflict, code, message)
}

// Internal оборачивает неожиданную ошибку хранилища
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: message, Err: err}
}

// From приводит произвольную ошибку к *Error; незнакомые ошибки считаются внутренними
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("internal server error", err)
}

// IsKind проверяет класс ошибки
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// HasCode проверяет код ошибки
func HasCode(err error, code string) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}

// HTTPStatus возвращает HTTP-код для класса ошибки
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
