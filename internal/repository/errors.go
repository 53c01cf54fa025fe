package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Код уникального ограничения PostgreSQL.
const uniqueViolationCode = "23505"

// isUniqueViolation проверяет, является ли ошибка нарушением unique constraint.
// Уникальные ограничения базы — финальный арбитр для инвариантов уникальности,
// прикладные проверки перед вставкой лишь оптимизация.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}
