package token

import (
	"fmt"

	"github.com/pquerna/otp/totp"
)

// MFAService wraps github.com/pquerna/otp for the TOTP enrollment and
// verification flows behind POST /auth/mfa/enable and
// /auth/mfa/verify. The TOTP algorithm itself is an out-of-scope
// external collaborator per spec §1 — this is a thin adapter, not a
// reimplementation.
type MFAService struct {
	issuer string
}

func NewMFAService(issuer string) *MFAService {
	return &MFAService{issuer: issuer}
}

// Enrollment is the secret plus the otpauth:// URI a client renders as
// a QR code.
type Enrollment struct {
	Secret string
	URI    string
}

// GenerateEnrollment creates a fresh TOTP secret for accountEmail.
func (m *MFAService) GenerateEnrollment(accountEmail string) (*Enrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      m.issuer,
		AccountName: accountEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("generate totp secret: %w", err)
	}
	return &Enrollment{Secret: key.Secret(), URI: key.URL()}, nil
}

// Verify checks a 6-digit code against secret at the current time step.
func (m *MFAService) Verify(secret, code string) bool {
	return totp.Validate(code, secret)
}
