package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCPF(t *testing.T) {
	cases := []struct {
		name    string
		cpf     string
		wantErr bool
	}{
		{"валидный без маски", "52998224725", false},
		{"валидный с маской", "529.982.247-25", false},
		{"неверная контрольная цифра", "52998224724", true},
		{"слишком короткий", "5299822472", true},
		{"буквы вместо цифр", "529982247ab", true},
		{"пустой", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCPF(tc.cpf)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUnmaskCPF(t *testing.T) {
	assert.Equal(t, "52998224725", UnmaskCPF("529.982.247-25"))
	assert.Equal(t, "52998224725", UnmaskCPF("52998224725"))
}

func TestValidateZipCode(t *testing.T) {
	assert.NoError(t, ValidateZipCode("01310-000"))
	assert.NoError(t, ValidateZipCode("01310000"))
	assert.Error(t, ValidateZipCode("1310-000"))
	assert.Error(t, ValidateZipCode("abcde-fgh"))
	assert.Error(t, ValidateZipCode(""))
}

func TestValidateCoren(t *testing.T) {
	assert.NoError(t, ValidateCoren("12.345"))
	assert.NoError(t, ValidateCoren("12345"))
	assert.Error(t, ValidateCoren("1.2345"))
	assert.Error(t, ValidateCoren("12.34"))
	assert.Error(t, ValidateCoren(""))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("user@example.com"))
	assert.NoError(t, ValidateEmail("  User@Example.com  "))
	assert.Error(t, ValidateEmail("user@"))
	assert.Error(t, ValidateEmail("example.com"))
	assert.Error(t, ValidateEmail(""))
}

func TestValidateDescription(t *testing.T) {
	assert.Error(t, ValidateDescription(""))
	assert.Error(t, ValidateDescription("коротко"))
	assert.NoError(t, ValidateDescription("уход за пожилым человеком на дому"))
	assert.Error(t, ValidateDescription(strings.Repeat("а", MaxDescriptionLength+1)))
}

func TestValidateMessageContent(t *testing.T) {
	assert.Error(t, ValidateMessageContent(""))
	assert.NoError(t, ValidateMessageContent("привет"))
	assert.Error(t, ValidateMessageContent(strings.Repeat("а", MaxMessageLength+1)))
}

func TestValidateChoice(t *testing.T) {
	choices := map[string]struct{}{"SP": {}, "RJ": {}}
	assert.NoError(t, ValidateChoice("штат", "SP", choices))
	assert.Error(t, ValidateChoice("штат", "XX", choices))
}
