package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ignatzorin/homecare-backend/internal/pkg/apperror"
)

// Статусы, возвращаемые шлюзом.
const (
	TransactionStatusPaid    = "paid"
	TransactionStatusRefused = "refused"
	TransferStatusPending    = "pending_transfer"
	TransferStatusCanceled   = "canceled"
)

// Address платёжный адрес клиента.
type Address struct {
	ZipCode      string `json:"zipcode"`
	Neighborhood string `json:"neighborhood"`
	Street       string `json:"street"`
	StreetNumber string `json:"street_number"`
}

// Phone телефон клиента в формате шлюза.
type Phone struct {
	DDD    string `json:"ddd"`
	Number string `json:"number"`
}

// Customer платёжный профиль клиента в шлюзе.
type Customer struct {
	ID             string   `json:"id"`
	Email          string   `json:"email"`
	Name           string   `json:"name"`
	DocumentNumber string   `json:"document_number"`
	Address        *Address `json:"address,omitempty"`
	Phone          *Phone   `json:"phone,omitempty"`
	Cards          []Card   `json:"cards,omitempty"`
}

// Card сохранённая карта клиента.
type Card struct {
	ID             string `json:"id"`
	Brand          string `json:"brand,omitempty"`
	LastDigits     string `json:"last_digits,omitempty"`
	HolderName     string `json:"holder_name,omitempty"`
	ExpirationDate string `json:"expiration_date,omitempty"`
}

// CardInput данные новой карты.
type CardInput struct {
	CustomerID     string `json:"customer_id"`
	Number         string `json:"card_number"`
	CVV            string `json:"card_cvv"`
	HolderName     string `json:"card_holder_name"`
	ExpirationDate string `json:"card_expiration_date"`
}

// ChargeInput параметры списания.
type ChargeInput struct {
	CustomerID string  `json:"customer_id"`
	CardID     string  `json:"card_id"`
	Amount     float64 `json:"amount"`
	Reference  string  `json:"reference"`
}

// Transaction результат списания.
type Transaction struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount float64 `json:"amount"`
}

// BankAccount реквизиты получателя выплат.
type BankAccount struct {
	BankCode  string `json:"bank_code"`
	Agency    string `json:"agencia"`
	AgencyDV  string `json:"agencia_dv"`
	Account   string `json:"conta"`
	AccountDV string `json:"conta_dv"`
	LegalName string `json:"legal_name"`
}

// Recipient зарегистрированный получатель выплат.
type Recipient struct {
	ID          string       `json:"id"`
	BankAccount *BankAccount `json:"bank_account,omitempty"`
}

// TransferInput параметры перевода средств получателю.
type TransferInput struct {
	RecipientID string  `json:"recipient_id"`
	Amount      float64 `json:"amount"`
	Reference   string  `json:"reference"`
}

// Transfer результат запроса на перевод.
type Transfer struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Client — HTTP клиент платёжного шлюза. Все вызовы синхронные, с жёстким
// таймаутом; повторных попыток внутри запроса нет.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient создаёт клиента шлюза.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreateCustomer регистрирует платёжный профиль клиента.
func (c *Client) CreateCustomer(ctx context.Context, customer *Customer) (*Customer, error) {
	var created Customer
	if err := c.do(ctx, http.MethodPost, "/customers", customer, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// FindCustomer ищет профиль по email, nil если не найден.
func (c *Client) FindCustomer(ctx context.Context, email string) (*Customer, error) {
	var found []Customer
	path := "/customers?email=" + url.QueryEscape(email)
	if err := c.do(ctx, http.MethodGet, path, nil, &found); err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// CreateCard сохраняет карту клиента.
func (c *Client) CreateCard(ctx context.Context, card *CardInput) (*Card, error) {
	var created Card
	if err := c.do(ctx, http.MethodPost, "/cards", card, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateTransaction выполняет списание.
func (c *Client) CreateTransaction(ctx context.Context, charge *ChargeInput) (*Transaction, error) {
	var created Transaction
	if err := c.do(ctx, http.MethodPost, "/transactions", charge, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// FindTransaction возвращает транзакцию по идентификатору, nil если не найдена.
func (c *Client) FindTransaction(ctx context.Context, id string) (*Transaction, error) {
	var found Transaction
	err := c.do(ctx, http.MethodGet, "/transactions/"+url.PathEscape(id), nil, &found)
	if err != nil {
		return nil, err
	}
	if found.ID == "" {
		return nil, nil
	}
	return &found, nil
}

// CreateRecipient регистрирует получателя выплат.
func (c *Client) CreateRecipient(ctx context.Context, account *BankAccount) (*Recipient, error) {
	var created Recipient
	if err := c.do(ctx, http.MethodPost, "/recipients", account, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateTransfer запрашивает перевод средств получателю.
func (c *Client) CreateTransfer(ctx context.Context, transfer *TransferInput) (*Transfer, error) {
	var created Transfer
	if err := c.do(ctx, http.MethodPost, "/transfers", transfer, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CancelTransfer отменяет ещё не исполненный перевод.
func (c *Client) CancelTransfer(ctx context.Context, id string) (*Transfer, error) {
	var canceled Transfer
	path := "/transfers/" + url.PathEscape(id) + "/cancel"
	if err := c.do(ctx, http.MethodPost, path, nil, &canceled); err != nil {
		return nil, err
	}
	return &canceled, nil
}

// do выполняет запрос к шлюзу и декодирует JSON ответ в out.
// Сетевые ошибки и ответы 5xx сворачиваются в GATEWAY_UNAVAILABLE.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.baseURL == "" {
		return apperror.New(apperror.ErrCodeGatewayUnavailable, "адрес платёжного шлюза не настроен")
	}

	var body *bytes.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("gateway: не удалось сериализовать запрос: %w", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("gateway: не удалось создать запрос: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeGatewayUnavailable, "платёжный шлюз недоступен")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return apperror.New(apperror.ErrCodeGatewayUnavailable,
			fmt.Sprintf("платёжный шлюз вернул статус %d", resp.StatusCode))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return apperror.New(apperror.ErrCodeBadRequest,
			fmt.Sprintf("платёжный шлюз отклонил запрос со статусом %d", resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeGatewayUnavailable, "не удалось разобрать ответ шлюза")
	}

	return nil
}
