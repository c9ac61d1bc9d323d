package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validCreateUserRequest() *CreateUserRequest {
	return &CreateUserRequest{
		Username: "alice_99",
		Email:    "alice@example.com",
		Password: "supersecret",
	}
}

func TestCreateUserRequest_Validate(t *testing.T) {
	assert.NoError(t, validCreateUserRequest().Validate())
}

func TestCreateUserRequest_Validate_Username(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"too short", "ab", true},
		{"minimum length", "abc", false},
		{"too long", strings.Repeat("a", 33), true},
		{"maximum length", strings.Repeat("a", 32), false},
		{"invalid chars", "alice!", true},
		{"spaces", "ali ce", true},
		{"underscore ok", "ali_ce", false},
		{"digits ok", "alice123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validCreateUserRequest()
			r.Username = tt.username
			err := r.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateUserRequest_Validate_Email(t *testing.T) {
	r := validCreateUserRequest()
	r.Email = "not-an-email"
	assert.Error(t, r.Validate())

	r = validCreateUserRequest()
	r.Email = ""
	assert.Error(t, r.Validate())
}

func TestCreateUserRequest_Validate_Password(t *testing.T) {
	r := validCreateUserRequest()
	r.Password = "1234567"
	assert.Error(t, r.Validate())

	r = validCreateUserRequest()
	r.Password = "12345678"
	assert.NoError(t, r.Validate())
}

func TestCreateUserRequest_Validate_DisplayName(t *testing.T) {
	r := validCreateUserRequest()
	r.DisplayName = strings.Repeat("x", 33)
	assert.Error(t, r.Validate())

	r = validCreateUserRequest()
	r.DisplayName = "Alice"
	assert.NoError(t, r.Validate())
}

func TestUpdateProfileRequest_Validate(t *testing.T) {
	// İki alan da nil — güncellenecek bir şey yok
	assert.Error(t, (&UpdateProfileRequest{}).Validate())

	name := "Alice"
	assert.NoError(t, (&UpdateProfileRequest{DisplayName: &name}).Validate())

	long := strings.Repeat("x", 33)
	assert.Error(t, (&UpdateProfileRequest{DisplayName: &long}).Validate())

	// Boş string geçerlidir — "temizle" anlamına gelir
	empty := ""
	assert.NoError(t, (&UpdateProfileRequest{AvatarURL: &empty}).Validate())
}

func TestChangePasswordRequest_Validate(t *testing.T) {
	assert.Error(t, (&ChangePasswordRequest{}).Validate())
	assert.Error(t, (&ChangePasswordRequest{CurrentPassword: "old", NewPassword: "short"}).Validate())
	assert.NoError(t, (&ChangePasswordRequest{CurrentPassword: "old", NewPassword: "longenough"}).Validate())
}

func TestUserSnapshot(t *testing.T) {
	name := "Alice"
	u := &User{ID: "u1", Username: "alice", DisplayName: &name, IsVerified: true}

	snap := u.Snapshot()
	assert.Equal(t, "u1", snap.ID)
	assert.Equal(t, "alice", snap.Username)
	assert.Equal(t, &name, snap.DisplayName)
	assert.True(t, snap.IsVerified)
}
