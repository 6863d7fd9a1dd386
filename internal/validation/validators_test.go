package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elskow/registry-auth/internal/config"
)

func TestValidPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{name: "mixed case and digit", password: "homeHome123$", want: true},
		{name: "too short", password: "aB1", want: false},
		{name: "missing uppercase", password: "homehome123", want: false},
		{name: "missing lowercase", password: "HOMEHOME123", want: false},
		{name: "missing digit", password: "homeHomeHome", want: false},
		{name: "empty", password: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPassword(tt.password))
		})
	}
}

func TestValidUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		want     bool
	}{
		{name: "alphanumeric", username: "cmyui123", want: true},
		{name: "too short", username: "abc", want: false},
		{name: "punctuation", username: "bad-name", want: false},
		{name: "too long", username: "abcdefghijklmnopqrstuvwxyz0123456789", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidUsername(tt.username))
		})
	}
}

func TestIdentifierValidator_Normalize(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.AuthConfig
		identifier string
		want       string
		wantOK     bool
	}{
		{
			name:       "international phone number",
			cfg:        config.AuthConfig{IdentifierKind: config.IdentifierPhone},
			identifier: "+15555555555",
			want:       "+15555555555",
			wantOK:     true,
		},
		{
			name:       "formatted phone number is canonicalized",
			cfg:        config.AuthConfig{IdentifierKind: config.IdentifierPhone},
			identifier: "+1 (555) 555-5555",
			want:       "+15555555555",
			wantOK:     true,
		},
		{
			name:       "phone number without country code",
			cfg:        config.AuthConfig{IdentifierKind: config.IdentifierPhone},
			identifier: "15555555555",
			wantOK:     false,
		},
		{
			name:       "national number with default region",
			cfg:        config.AuthConfig{IdentifierKind: config.IdentifierPhone, DefaultRegion: "us"},
			identifier: "(555) 555-5555",
			want:       "+15555555555",
			wantOK:     true,
		},
		{
			name:       "garbage phone number",
			cfg:        config.AuthConfig{IdentifierKind: config.IdentifierPhone},
			identifier: "not a number",
			wantOK:     false,
		},
		{
			name:       "username",
			cfg:        config.AuthConfig{IdentifierKind: config.IdentifierUsername},
			identifier: "  cmyui  ",
			want:       "cmyui",
			wantOK:     true,
		},
		{
			name:       "invalid username",
			cfg:        config.AuthConfig{IdentifierKind: config.IdentifierUsername},
			identifier: "a b",
			wantOK:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewIdentifierValidator(&tt.cfg)
			got, ok := v.Normalize(tt.identifier)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("John"))
	assert.False(t, ValidName("   "))
	assert.False(t, ValidName(""))
}
