package service

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/homecare-backend/internal/logger"
	"github.com/ignatzorin/homecare-backend/internal/pkg/apperror"
)

func TestMain(m *testing.M) {
	logger.Init("error")
	os.Exit(m.Run())
}

// assertCode проверяет код прикладной ошибки.
func assertCode(t *testing.T, err error, code apperror.ErrorCode) {
	t.Helper()
	var appErr *apperror.AppError
	if assert.True(t, errors.As(err, &appErr), "ожидалась AppError, получено: %v", err) {
		assert.Equal(t, code, appErr.Code)
	}
}

func boolPtr(v bool) *bool {
	return &v
}

func strPtr(v string) *string {
	return &v
}
