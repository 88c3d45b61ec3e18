// Package authenticator issues and verifies the per-artifact rotating
// download codes (RFC 6238 TOTP).
package authenticator

import (
	"bytes"
	"fmt"
	"image/png"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Options tunes code derivation. Zero values fall back to the RFC defaults
// used across the service: 30s period, 6 digits, 20-byte secrets, tolerance
// of 2 windows on each side.
type Options struct {
	Issuer     string
	PeriodSec  int
	Digits     int
	Skew       int
	SecretSize int
}

// Authenticator derives and checks time-based codes. It holds no per-artifact
// state; the base32 secret passed to each call is the whole credential.
type Authenticator struct {
	issuer     string
	period     uint
	digits     otp.Digits
	skew       uint
	secretSize uint
}

// New builds an Authenticator with defaults applied.
func New(opts Options) *Authenticator {
	if opts.Issuer == "" {
		opts.Issuer = "cipherdrop"
	}
	if opts.PeriodSec <= 0 {
		opts.PeriodSec = 30
	}
	if opts.Digits <= 0 {
		opts.Digits = 6
	}
	if opts.Skew <= 0 {
		opts.Skew = 2
	}
	if opts.SecretSize <= 0 {
		opts.SecretSize = 20
	}
	return &Authenticator{
		issuer:     opts.Issuer,
		period:     uint(opts.PeriodSec),
		digits:     otp.Digits(opts.Digits),
		skew:       uint(opts.Skew),
		secretSize: uint(opts.SecretSize),
	}
}

// IssuedSecret is the freshly minted secret for one artifact. It is shown to
// the uploader exactly once and never re-exposed afterwards.
type IssuedSecret struct {
	key *otp.Key
}

// Secret returns the base32 secret material.
func (s IssuedSecret) Secret() string {
	return s.key.Secret()
}

// URL returns the otpauth:// provisioning URL.
func (s IssuedSecret) URL() string {
	return s.key.URL()
}

// QRPNG renders the provisioning URL as a size x size PNG.
func (s IssuedSecret) QRPNG(size int) ([]byte, error) {
	img, err := s.key.Image(size, size)
	if err != nil {
		return nil, fmt.Errorf("render qr image: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode qr png: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateSecret mints an independent secret labelled with the given account,
// typically the artifact identifier.
func (a *Authenticator) GenerateSecret(account string) (IssuedSecret, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      a.issuer,
		AccountName: account,
		Period:      a.period,
		SecretSize:  a.secretSize,
		Digits:      a.digits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return IssuedSecret{}, fmt.Errorf("generate rotating-code secret: %w", err)
	}
	return IssuedSecret{key: key}, nil
}

// CurrentCode derives the code for the current time window.
func (a *Authenticator) CurrentCode(secret string) (string, error) {
	return a.CodeAt(secret, time.Now())
}

// CodeAt derives the code for the window containing t. Deterministic for a
// given secret and window.
func (a *Authenticator) CodeAt(secret string, t time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(secret, t, a.validateOpts())
	if err != nil {
		return "", fmt.Errorf("derive rotating code: %w", err)
	}
	return code, nil
}

// Verify checks code against the current window with the configured tolerance.
func (a *Authenticator) Verify(secret, code string) bool {
	return a.VerifyAt(secret, code, time.Now())
}

// VerifyAt checks code against the window containing t plus the configured
// number of adjacent windows on each side. Malformed secrets or codes verify
// false, never panic.
func (a *Authenticator) VerifyAt(secret, code string, t time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, t, a.validateOpts())
	if err != nil {
		return false
	}
	return ok
}

func (a *Authenticator) validateOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    a.period,
		Skew:      a.skew,
		Digits:    a.digits,
		Algorithm: otp.AlgorithmSHA1,
	}
}
