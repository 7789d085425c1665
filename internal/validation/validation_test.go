package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"too short", "short", true},
		{"exactly eight characters", "pass1234", false},
		{"longer password", "a much longer passphrase", false},
		{"too long", strings.Repeat("x", 129), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("alice"))
	assert.NoError(t, ValidateUsername("alice_2024"))
	assert.Error(t, ValidateUsername("al"))
	assert.Error(t, ValidateUsername("有名なユーザー"))
	assert.Error(t, ValidateUsername("alice smith"))
	assert.Error(t, ValidateUsername(strings.Repeat("a", 51)))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("alice@example.com"))
	assert.NoError(t, ValidateEmail("a.b+tag@sub.example.org"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("missing@tld"))
}

func TestValidateSlug(t *testing.T) {
	assert.NoError(t, ValidateSlug("hello-world"))
	assert.NoError(t, ValidateSlug("a1-b2-c3"))
	assert.Error(t, ValidateSlug(""))
	assert.Error(t, ValidateSlug("Hello-World"))
	assert.Error(t, ValidateSlug("-leading"))
	assert.Error(t, ValidateSlug("trailing-"))
	assert.Error(t, ValidateSlug("double--hyphen"))
}

func TestNormalizeTagName(t *testing.T) {
	assert.Equal(t, "nba", NormalizeTagName("  NBA "))
	assert.Equal(t, "playoffs", NormalizeTagName("Playoffs"))
}
