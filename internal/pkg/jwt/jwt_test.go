package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	secret = "s3cret"
	issuer = "saeta-access"
)

var issued = time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)

func at(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestQRTokenRoundTrip(t *testing.T) {
	token, err := GenerateQRToken(7, 3, "nonce-1", issuer, secret, issued, 30*time.Second)
	require.NoError(t, err)

	claims, err := ParseQRToken(token, secret, issuer, at(issued.Add(29*time.Second)))
	require.NoError(t, err)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)
	assert.Equal(t, uint(3), claims.CardID)
	assert.Equal(t, "nonce-1", claims.Nonce)
}

func TestQRTokenExpiry(t *testing.T) {
	token, err := GenerateQRToken(7, 3, "n", issuer, secret, issued, 30*time.Second)
	require.NoError(t, err)

	_, err = ParseQRToken(token, secret, issuer, at(issued.Add(30*time.Second)))
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestQRTokenRejects(t *testing.T) {
	good, err := GenerateQRToken(7, 3, "n", issuer, secret, issued, time.Minute)
	require.NoError(t, err)

	otherIssuer, err := GenerateQRToken(7, 3, "n", "someone-else", secret, issued, time.Minute)
	require.NoError(t, err)

	noCard, err := GenerateQRToken(7, 0, "n", issuer, secret, issued, time.Minute)
	require.NoError(t, err)

	hs512, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, QRClaims{
		CardID: 3,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "7",
			Issuer:    issuer,
			ExpiresAt: gojwt.NewNumericDate(issued.Add(time.Minute)),
		},
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	badSubject, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, QRClaims{
		CardID: 3,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "seven",
			Issuer:    issuer,
			ExpiresAt: gojwt.NewNumericDate(issued.Add(time.Minute)),
		},
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	noExpiry, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, QRClaims{
		CardID:           3,
		RegisteredClaims: gojwt.RegisteredClaims{Subject: "7", Issuer: issuer},
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	cases := map[string]struct {
		token  string
		secret string
	}{
		"wrong secret":  {good, "other"},
		"wrong issuer":  {otherIssuer, secret},
		"missing card":  {noCard, secret},
		"wrong alg":     {hs512, secret},
		"bad subject":   {badSubject, secret},
		"no expiry":     {noExpiry, secret},
		"malformed":     {"a.b.c", secret},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseQRToken(tc.token, tc.secret, issuer, at(issued))
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestAccessToken(t *testing.T) {
	token, err := GenerateAccessToken(5, "alice", "ADMIN", secret, 15)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(5), claims.UserID)
	assert.Equal(t, "ADMIN", claims.Role)

	_, err = ValidateAccessToken(token, "other")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	expired, err := GenerateAccessToken(5, "alice", "ADMIN", secret, -1)
	require.NoError(t, err)
	_, err = ValidateAccessToken(expired, secret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
