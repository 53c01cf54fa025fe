package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinDescriptionLength = 10
	MaxDescriptionLength = 1000
	MaxAboutLength       = 1000
	MaxCityLength        = 100
	MaxAddressLength     = 200
	MinMessageLength     = 1
	MaxMessageLength     = 5000
)

var (
	cpfDigitsRegex = regexp.MustCompile(`^[0-9]{11}$`)
	zipCodeRegex   = regexp.MustCompile(`^[0-9]{5}-?[0-9]{3}$`)
	corenRegex     = regexp.MustCompile(`^[0-9]{2}\.?[0-9]{3}$`)
	nonDigitRegex  = regexp.MustCompile(`[^0-9]`)
	emailRegex     = regexp.MustCompile(`^[a-z0-9._+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("некорректный формат email")
	}

	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// UnmaskCPF убирает из CPF всё, кроме цифр.
func UnmaskCPF(cpf string) string {
	return nonDigitRegex.ReplaceAllString(cpf, "")
}

// ValidateCPF проверяет CPF вместе с контрольными цифрами.
// Алгоритм: два контрольных разряда считаются взвешенной суммой
// предыдущих цифр по модулю 11.
func ValidateCPF(cpf string) error {
	unmasked := UnmaskCPF(cpf)
	if !cpfDigitsRegex.MatchString(unmasked) {
		return fmt.Errorf("CPF должен содержать 11 цифр")
	}

	digits := make([]int, 11)
	for i, r := range unmasked {
		digits[i] = int(r - '0')
	}

	if !verifyCPFDigit(digits, 9) || !verifyCPFDigit(digits, 10) {
		return fmt.Errorf("некорректный CPF")
	}

	return nil
}

// verifyCPFDigit сверяет контрольную цифру на позиции lastIndex.
func verifyCPFDigit(digits []int, lastIndex int) bool {
	sum := 0
	multiplier := 2
	for i := lastIndex - 1; i >= 0; i-- {
		sum += digits[i] * multiplier
		multiplier++
	}

	rest := (sum * 10) % 11
	if rest == 10 || rest == 11 {
		rest = 0
	}
	return rest == digits[lastIndex]
}

// ValidateZipCode проверяет формат CEP (00000-000).
func ValidateZipCode(zip string) error {
	if !zipCodeRegex.MatchString(zip) {
		return fmt.Errorf("некорректный формат почтового индекса")
	}
	return nil
}

// ValidateCoren проверяет формат номера COREN (00.000).
func ValidateCoren(coren string) error {
	if !corenRegex.MatchString(coren) {
		return fmt.Errorf("некорректный формат COREN")
	}
	return nil
}

// ValidateChoice проверяет, что значение входит в список допустимых.
func ValidateChoice(fieldName, value string, choices map[string]struct{}) error {
	if _, ok := choices[value]; !ok {
		return fmt.Errorf("%s: значение %q недопустимо", fieldName, value)
	}
	return nil
}

// ValidateDescription проверяет описание предложения.
func ValidateDescription(description string) error {
	if description == "" {
		return fmt.Errorf("описание обязательно")
	}

	description = strings.TrimSpace(description)

	if err := ValidateLength("описание", description, MinDescriptionLength, MaxDescriptionLength); err != nil {
		return err
	}

	return nil
}

// ValidateMessageContent проверяет содержимое сообщения.
func ValidateMessageContent(content string) error {
	if content == "" {
		return fmt.Errorf("сообщение не может быть пустым")
	}

	content = strings.TrimSpace(content)

	if err := ValidateLength("сообщение", content, MinMessageLength, MaxMessageLength); err != nil {
		return err
	}

	return nil
}
