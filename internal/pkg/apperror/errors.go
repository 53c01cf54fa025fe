package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest         ErrorCode = "BAD_REQUEST"
	ErrCodeConflict           ErrorCode = "CONFLICT"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation         ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidTransition  ErrorCode = "INVALID_TRANSITION"
	ErrCodeGatewayUnavailable ErrorCode = "GATEWAY_UNAVAILABLE"
	ErrCodeDatabaseError      ErrorCode = "DATABASE_ERROR"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodeInvalidTransition:
		return http.StatusConflict
	case ErrCodeGatewayUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeForbidden
}

func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeValidation
}

func IsInvalidTransition(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeInvalidTransition
}

func IsConflict(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeConflict
}

func IsGatewayUnavailable(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeGatewayUnavailable
}

var (
	ErrProposalNotFound        = New(ErrCodeNotFound, "предложение не найдено")
	ErrCounterProposalNotFound = New(ErrCodeNotFound, "встречное предложение не найдено")
	ErrJobNotFound             = New(ErrCodeNotFound, "работа не найдена")
	ErrPaymentNotFound         = New(ErrCodeNotFound, "платёж не найден")
	ErrCashOutNotFound         = New(ErrCodeNotFound, "вывод средств не найден")
	ErrUserNotFound            = New(ErrCodeNotFound, "пользователь не найден")
	ErrProfessionalNotFound    = New(ErrCodeNotFound, "специалист не найден")
	ErrAvailabilityNotFound    = New(ErrCodeNotFound, "окно доступности не найдено")
	ErrUnauthorized            = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden               = New(ErrCodeForbidden, "недостаточно прав")
	ErrInvalidCredentials      = New(ErrCodeUnauthorized, "неверные учетные данные")

	// Предусловия оплаты: проверяются до любого обращения к шлюзу.
	ErrCustomerRequired  = New(ErrCodeValidation, "у клиента нет платёжного профиля в шлюзе")
	ErrCardRequired      = New(ErrCodeValidation, "у клиента нет сохранённой карты")
	ErrAddressRequired   = New(ErrCodeValidation, "у клиента не указан платёжный адрес")
	ErrRecipientRequired = New(ErrCodeValidation, "у специалиста не зарегистрирован получатель выплат")
)
