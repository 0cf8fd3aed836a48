package auth

import (
	"fmt"

	"github.com/pquerna/otp/totp"
)

const totpIssuer = "CampusResponse"

// GenerateTOTPSecret enrolls a staff account for the second login factor.
// The returned secret is stored on the profile; the URL is handed to the
// client once for authenticator-app provisioning.
func GenerateTOTPSecret(accountName string) (secret, url string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: accountName,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to generate TOTP secret: %w", err)
	}

	return key.Secret(), key.URL(), nil
}

// VerifyTOTP checks a 6-digit code against the stored secret.
func VerifyTOTP(secret, code string) bool {
	return totp.Validate(code, secret)
}
