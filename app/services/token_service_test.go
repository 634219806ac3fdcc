package services

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/amirphl/collab-market/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing-32-chars"

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService(t *testing.T) TokenService {
	t.Helper()
	service, err := NewTokenService(15*time.Minute, "test-issuer", "test-audience", false, "", "", testSecret)
	require.NoError(t, err)
	return service
}

func rsaKeyPair(t *testing.T) (string, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	priv := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pub := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	return string(priv), string(pub)
}

func TestNewTokenService(t *testing.T) {
	priv, pub := rsaKeyPair(t)

	tests := []struct {
		name          string
		useRSAKeys    bool
		privateKeyPEM string
		publicKeyPEM  string
		secretKey     string
		expectError   bool
	}{
		{name: "valid symmetric key configuration", secretKey: testSecret},
		{name: "missing secret key", expectError: true},
		{name: "valid RSA keys", useRSAKeys: true, privateKeyPEM: priv, publicKeyPEM: pub},
		{name: "RSA without public key", useRSAKeys: true, privateKeyPEM: priv, expectError: true},
		{name: "RSA with garbage", useRSAKeys: true, privateKeyPEM: "nope", publicKeyPEM: "nope", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(time.Minute, "iss", "aud", tt.useRSAKeys, tt.privateKeyPEM, tt.publicKeyPEM, tt.secretKey)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, service)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, service)
		})
	}
}

func TestGenerateAndValidate(t *testing.T) {
	service := createTestTokenService(t)

	tests := []struct {
		name    string
		role    models.RecipientType
		actorID uint
	}{
		{name: "brand", role: models.RecipientTypeBrand, actorID: 12},
		{name: "creator", role: models.RecipientTypeCreator, actorID: 999999999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := service.GenerateAccessToken(tt.role, tt.actorID)
			require.NoError(t, err)
			assert.Contains(t, token, "eyJ")

			claims, err := service.ValidateToken(token)
			require.NoError(t, err)
			assert.Equal(t, tt.actorID, claims.ActorID)
			assert.Equal(t, tt.role, claims.Role)
			assert.NotEmpty(t, claims.TokenID)
			assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
		})
	}

	t.Run("unsupported role", func(t *testing.T) {
		token, err := service.GenerateAccessToken("admin", 1)
		assert.Error(t, err)
		assert.Empty(t, token)
	})
}

func TestValidateTokenRejects(t *testing.T) {
	service := createTestTokenService(t)

	otherSecret, err := NewTokenService(15*time.Minute, "test-issuer", "test-audience", false, "", "", "a-completely-different-secret-key!!")
	require.NoError(t, err)
	foreign, err := otherSecret.GenerateAccessToken(models.RecipientTypeBrand, 1)
	require.NoError(t, err)

	otherAudience, err := NewTokenService(15*time.Minute, "test-issuer", "elsewhere", false, "", "", testSecret)
	require.NoError(t, err)
	wrongAudience, err := otherAudience.GenerateAccessToken(models.RecipientTypeBrand, 1)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "invalid token format", token: "invalid.token.format"},
		{name: "malformed token", token: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature"},
		{name: "token with wrong signature", token: foreign},
		{name: "token for another audience", token: wrongAudience},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateToken(tt.token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
			assert.Nil(t, claims)
		})
	}
}

func TestTokenExpiration(t *testing.T) {
	service, err := NewTokenService(-time.Minute, "test-issuer", "test-audience", false, "", "", testSecret)
	require.NoError(t, err)

	token, err := service.GenerateAccessToken(models.RecipientTypeCreator, 5)
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Nil(t, claims)
}

func TestRSATokens(t *testing.T) {
	priv, pub := rsaKeyPair(t)
	service, err := NewTokenService(time.Minute, "test-issuer", "test-audience", true, priv, pub, "")
	require.NoError(t, err)

	token, err := service.GenerateAccessToken(models.RecipientTypeBrand, 7)
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.ActorID)

	// an HS256 token must not pass an RS256 validator
	hmac := createTestTokenService(t)
	hsToken, err := hmac.GenerateAccessToken(models.RecipientTypeBrand, 7)
	require.NoError(t, err)
	_, err = service.ValidateToken(hsToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
