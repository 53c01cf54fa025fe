package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// User описывает пользователя платформы (клиента или владельца профиля специалиста).
type User struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	Email          string     `db:"email" json:"email"`
	FullName       string     `db:"full_name" json:"full_name"`
	PasswordHash   string     `db:"password_hash" json:"-"`
	Born           *time.Time `db:"born" json:"born,omitempty"`
	AvatarPath     *string    `db:"avatar_path" json:"avatar_path,omitempty"`
	Celphone       *string    `db:"celphone" json:"celphone,omitempty"`
	Telephone      *string    `db:"telephone" json:"telephone,omitempty"`
	SavedInGateway bool       `db:"saved_in_gateway" json:"saved_in_gateway"`
	IsActive       bool       `db:"is_active" json:"is_active"`
	LastLoginAt    *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Professional описывает профиль специалиста по уходу.
type Professional struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	UserID      uuid.UUID      `db:"user_id" json:"user_id"`
	About       *string        `db:"about" json:"about,omitempty"`
	AvgPrice    float64        `db:"avg_price" json:"avg_price"`
	State       string         `db:"state" json:"state"`
	City        string         `db:"city" json:"city"`
	Address     string         `db:"address" json:"address"`
	ZipCode     string         `db:"zip_code" json:"zip_code"`
	CPF         string         `db:"cpf" json:"cpf"`
	RG          string         `db:"rg" json:"rg"`
	Occupation  string         `db:"occupation" json:"occupation"`
	Skills      pq.StringArray `db:"skills" json:"skills,omitempty"`
	Coren       string         `db:"coren" json:"coren"`
	RecipientID *string        `db:"recipient_id" json:"recipient_id,omitempty"`
	AvgRating   *float64       `db:"avg_rating" json:"avg_rating,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// Session представляет сохранённую сессию пользователя.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
