package probe

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const (
	// KeyJWTSecret is the key the API server reads to sign auth tokens.
	KeyJWTSecret = "JWT_SECRET"

	// KeyJWTSecretLegacy was written by older key generators.
	// Deprecated: read-only alias of KeyJWTSecret.
	KeyJWTSecretLegacy = "JWT_SECRET_KEY"

	jwtSecretBytes = 32
)

// JWTService is the token-signing secret used by the API server.
type JWTService struct{ BaseService }

var _ Service = (*JWTService)(nil)

func (j *JWTService) Name() string        { return "jwt" }
func (j *JWTService) DisplayName() string { return "JWT" }

func (j *JWTService) Keys() []KeySpec {
	return []KeySpec{
		{
			Key:      KeyJWTSecret,
			Label:    "Enter JWT Secret",
			Generate: GenerateJWTSecret,
			Secret:   true,
			Aliases:  []string{KeyJWTSecretLegacy},
		},
	}
}

func (j *JWTService) Help() []string {
	return []string{"Press Enter to generate a random 256-bit secret."}
}

// GenerateJWTSecret returns 32 random bytes, base64-encoded.
func GenerateJWTSecret() (string, error) {
	buf := make([]byte, jwtSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
