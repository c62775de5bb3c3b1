package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpPeriod = 30
	totpSkew   = 2 // steps either side of now, so ±60s
	qrSize     = 200
)

type TOTPSetup struct {
	Secret     string
	OTPAuthURL string

	// QRCode is a data:image/png;base64 URL of OTPAuthURL.
	QRCode string
}

type TOTPService struct {
	Store  store.Store
	Sealer *cryptox.Sealer
	Issuer string // shown in the authenticator app
	Clock  Clock
}

// Setup generates a fresh pending secret for the user. Calling it again
// before Enable replaces the pending secret.
func (s *TOTPService) Setup(ctx context.Context, userID string) (TOTPSetup, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return TOTPSetup{}, mapUserErr(err)
	}
	if u.TOTPEnabled {
		return TOTPSetup{}, ErrTOTPAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: u.Username,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return TOTPSetup{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	qr, err := qrDataURL(key)
	if err != nil {
		return TOTPSetup{}, fmt.Errorf("failed to render QR code: %w", err)
	}

	sealed, err := s.Sealer.Seal([]byte(key.Secret()))
	if err != nil {
		return TOTPSetup{}, fmt.Errorf("failed to seal TOTP secret: %w", err)
	}

	u.TOTPSecret = sealed
	if _, err := s.Store.Users().UpdateUser(ctx, u); err != nil {
		return TOTPSetup{}, fmt.Errorf("failed to store TOTP secret: %w", err)
	}

	slogx.FromContext(ctx).Info("totp setup started", slog.String("user_id", userID))

	return TOTPSetup{
		Secret:     key.Secret(),
		OTPAuthURL: key.URL(),
		QRCode:     qr,
	}, nil
}

// Enable turns TOTP on once code matches the pending secret. A wrong code
// leaves the account untouched.
func (s *TOTPService) Enable(ctx context.Context, userID, code string) error {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return mapUserErr(err)
	}
	if u.TOTPEnabled {
		return ErrTOTPAlreadyEnabled
	}
	if u.TOTPSecret == "" {
		return ErrTOTPNotSetUp
	}

	ok, err := s.Check(u, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCode
	}

	u.TOTPEnabled = true
	if _, err := s.Store.Users().UpdateUser(ctx, u); err != nil {
		return fmt.Errorf("failed to enable TOTP: %w", err)
	}

	slogx.FromContext(ctx).Info("totp enabled", slog.String("user_id", userID))
	return nil
}

func (s *TOTPService) Disable(ctx context.Context, userID string) error {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return mapUserErr(err)
	}
	if !u.TOTPEnabled {
		return ErrTOTPNotEnabled
	}

	u.TOTPEnabled = false
	u.TOTPSecret = ""
	if _, err := s.Store.Users().UpdateUser(ctx, u); err != nil {
		return fmt.Errorf("failed to disable TOTP: %w", err)
	}

	slogx.FromContext(ctx).Info("totp disabled", slog.String("user_id", userID))
	return nil
}

// Check reports whether code is valid for the user's sealed secret right now.
func (s *TOTPService) Check(u domain.User, code string) (bool, error) {
	secret, err := s.Sealer.Open(u.TOTPSecret)
	if err != nil {
		return false, fmt.Errorf("failed to open TOTP secret: %w", err)
	}
	return ValidateCode(string(secret), code, s.Clock.now())
}

// ValidateCode checks a 6 digit SHA1 code with a 30s period, accepting two
// steps of clock drift either way.
func ValidateCode(secret, code string, at time.Time) (bool, error) {
	ok, err := totp.ValidateCustom(code, secret, at, totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if errors.Is(err, otp.ErrValidateInputInvalidLength) {
		return false, nil
	}
	return ok, err
}

func qrDataURL(key *otp.Key) (string, error) {
	img, err := key.Image(qrSize, qrSize)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func mapUserErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
