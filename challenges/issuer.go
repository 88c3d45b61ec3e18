package challenges

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"image/color"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mojocn/base64Captcha"

	"github.com/cipherdrop/cipherdrop/models"
)

// Alphabet is the pool challenge answers are drawn from. It excludes
// visually ambiguous characters (0/O, 1/l/i, 9/g) so a legible render is
// always typeable; the rendering style may change, this contract may not.
const Alphabet = "2345678abcdefhjkmnpqrstuvwxyz"

// Options tunes answer length and render dimensions.
type Options struct {
	Length     int
	Width      int
	Height     int
	NoiseCount int
	Expiry     time.Duration
}

// Issuer mints challenges and renders them as PNG images.
type Issuer struct {
	store  *Store
	driver *base64Captcha.DriverString
	length int
	expiry time.Duration
	now    func() time.Time
}

// NewIssuer builds an Issuer with defaults applied.
func NewIssuer(store *Store, opts Options) *Issuer {
	if opts.Length <= 0 {
		opts.Length = 6
	}
	if opts.Width <= 0 {
		opts.Width = 240
	}
	if opts.Height <= 0 {
		opts.Height = 80
	}
	if opts.Expiry <= 0 {
		opts.Expiry = 10 * time.Minute
	}
	driver := base64Captcha.NewDriverString(
		opts.Height,
		opts.Width,
		opts.NoiseCount,
		base64Captcha.OptionShowHollowLine,
		opts.Length,
		Alphabet,
		&color.RGBA{R: 240, G: 240, B: 246, A: 255},
		nil,
		nil,
	)
	return &Issuer{
		store:  store,
		driver: driver,
		length: opts.Length,
		expiry: opts.Expiry,
		now:    time.Now,
	}
}

// Expiry returns the configured validity window. The request-path check and
// the background sweep both use this value.
func (i *Issuer) Expiry() time.Duration {
	return i.expiry
}

// Generate mints a challenge: a random answer behind a fresh opaque token,
// persisted before the token leaves the process.
func (i *Issuer) Generate(ctx context.Context) (*models.Challenge, error) {
	answer, err := randomAnswer(i.length)
	if err != nil {
		return nil, err
	}
	ch := &models.Challenge{
		Token:     uuid.NewString(),
		Answer:    answer,
		CreatedAt: i.now(),
	}
	if err := i.store.Create(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// Render draws the answer as a PNG image.
func (i *Issuer) Render(answer string) ([]byte, error) {
	item, err := i.driver.DrawCaptcha(answer)
	if err != nil {
		return nil, fmt.Errorf("draw challenge: %w", err)
	}
	var buf bytes.Buffer
	if _, err := item.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode challenge png: %w", err)
	}
	return buf.Bytes(), nil
}

// Match compares a submitted answer with the stored one: surrounding
// whitespace ignored, case-insensitive, otherwise exact. Missing input is a
// mismatch, never an error.
func Match(submitted, stored string) bool {
	submitted = strings.TrimSpace(submitted)
	if submitted == "" || stored == "" {
		return false
	}
	return strings.EqualFold(submitted, stored)
}

func randomAnswer(length int) (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(Alphabet)))
	for j := 0; j < length; j++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("draw challenge answer: %w", err)
		}
		b.WriteByte(Alphabet[n.Int64()])
	}
	return b.String(), nil
}
