package handlers

import (
	"fmt"

	"github.com/google/uuid"
)

// parseUUIDField разбирает UUID из тела запроса.
func parseUUIDField(raw string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("неверный формат UUID")
	}
	return parsed, nil
}
