package kiosk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rodrigoinhaia/DiinPonto/core/models"
)

func hashedPin(t *testing.T, pin string) *string {
	t.Helper()
	// MinCost keeps the scan tests fast; production uses PINHashCost.
	h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	require.NoError(t, err)
	s := string(h)
	return &s
}

func TestPinFormat(t *testing.T) {
	tests := []struct {
		name  string
		pin   string
		valid bool
	}{
		{name: "Six digits", pin: "123456", valid: true},
		{name: "Leading zeros", pin: "000042", valid: true},
		{name: "Too short", pin: "12345", valid: false},
		{name: "Too long", pin: "1234567", valid: false},
		{name: "Letters", pin: "12a456", valid: false},
		{name: "Empty", pin: "", valid: false},
		{name: "Whitespace", pin: " 123456", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, pinPattern.MatchString(tt.pin))
		})
	}
}

func TestMatchPIN(t *testing.T) {
	a := NewAuthenticator()

	alice := models.User{ID: "u-alice", Name: "Alice", Pin: hashedPin(t, "123456")}
	bob := models.User{ID: "u-bob", Name: "Bob", Pin: hashedPin(t, "654321")}
	noPin := models.User{ID: "u-nopin", Name: "Carol"}
	candidates := []models.User{noPin, alice, bob}

	neverBlocked := func(string) (bool, error) { return false, nil }

	t.Run("Correct pin finds exactly its user", func(t *testing.T) {
		user, compared, skipped, err := a.matchPIN(candidates, "123456", neverBlocked)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "u-alice", user.ID)
		assert.Equal(t, []string{"u-alice"}, compared)
		assert.False(t, skipped)
	})

	t.Run("Off-by-one pin matches nobody", func(t *testing.T) {
		user, compared, skipped, err := a.matchPIN(candidates, "123457", neverBlocked)
		require.NoError(t, err)
		assert.Nil(t, user)
		assert.Equal(t, []string{"u-alice", "u-bob"}, compared, "a failed scan reports every compared candidate")
		assert.False(t, skipped)
	})

	t.Run("Blocked candidate is skipped without comparison", func(t *testing.T) {
		blocked := func(id string) (bool, error) { return id == "u-alice", nil }
		user, compared, skipped, err := a.matchPIN(candidates, "123456", blocked)
		require.NoError(t, err)
		assert.Nil(t, user, "correct pin for a blocked user must not match")
		assert.NotContains(t, compared, "u-alice")
		assert.True(t, skipped)
	})

	t.Run("Other users still match while one is blocked", func(t *testing.T) {
		blocked := func(id string) (bool, error) { return id == "u-alice", nil }
		user, _, _, err := a.matchPIN(candidates, "654321", blocked)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "u-bob", user.ID)
	})
}

func TestCountFailures(t *testing.T) {
	now := time.Now()
	uid := "u-1"

	logs := []models.KioskAuthLog{
		{UserID: &uid, Method: models.AuthMethodPIN, Success: false, AttemptAt: now},
		{UserID: &uid, Method: models.AuthMethodPIN, Success: false, AttemptAt: now},
		{UserID: &uid, Method: models.AuthMethodBarcode, Success: false, AttemptAt: now},
		{UserID: &uid, Method: models.AuthMethodPIN, Success: true, AttemptAt: now},
		// Punch audit rows never count toward the lockout.
		{UserID: &uid, Method: models.AuthMethodSystem, Success: false, AttemptAt: now},
	}

	assert.Equal(t, 3, countFailures(logs))
	assert.Equal(t, 0, countFailures(nil))
}

func TestHashPIN(t *testing.T) {
	t.Run("Round trip", func(t *testing.T) {
		hashed, err := HashPIN("123456")
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hashed), []byte("123456")))
		assert.Error(t, bcrypt.CompareHashAndPassword([]byte(hashed), []byte("123457")))
	})

	t.Run("Malformed pin rejected before hashing", func(t *testing.T) {
		_, err := HashPIN("12345")
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})
}
