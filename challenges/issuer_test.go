package challenges

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cipherdrop/cipherdrop/models"
)

func TestGeneratePersistsChallenge(t *testing.T) {
	store := newTestStore(t)
	issuer := NewIssuer(store, Options{Length: 6, Expiry: time.Minute})
	ctx := context.Background()

	ch, err := issuer.Generate(ctx)
	require.NoError(t, err)

	_, err = uuid.Parse(ch.Token)
	assert.NoError(t, err, "token is a uuid")
	assert.Len(t, ch.Answer, 6)
	for _, r := range ch.Answer {
		assert.Contains(t, Alphabet, string(r), "answer drawn from the unambiguous alphabet")
	}

	got, err := store.Get(ctx, ch.Token)
	require.NoError(t, err)
	assert.Equal(t, ch.Answer, got.Answer)
}

func TestGenerateMintsIndependentChallenges(t *testing.T) {
	store := newTestStore(t)
	issuer := NewIssuer(store, Options{Length: 6, Expiry: time.Minute})
	ctx := context.Background()

	first, err := issuer.Generate(ctx)
	require.NoError(t, err)
	second, err := issuer.Generate(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
}

func TestRenderProducesPNG(t *testing.T) {
	issuer := NewIssuer(newTestStore(t), Options{Length: 6, Width: 240, Height: 80, Expiry: time.Minute})

	data, err := issuer.Render("abc234")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 240, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())
}

func TestMatch(t *testing.T) {
	cases := []struct {
		name      string
		submitted string
		stored    string
		want      bool
	}{
		{"exact", "abc234", "abc234", true},
		{"case insensitive", "ABC234", "abc234", true},
		{"trimmed", "  abc234  ", "abc234", true},
		{"wrong", "abc235", "abc234", false},
		{"empty submitted", "", "abc234", false},
		{"whitespace submitted", "   ", "abc234", false},
		{"empty stored", "abc234", "", false},
		{"both empty", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Match(tc.submitted, tc.stored))
		})
	}
}

func TestChallengeExpiryBoundary(t *testing.T) {
	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ttl := 10 * time.Minute
	ch := models.Challenge{CreatedAt: createdAt}

	assert.False(t, ch.Expired(createdAt.Add(ttl-time.Millisecond), ttl))
	assert.False(t, ch.Expired(createdAt.Add(ttl), ttl), "exactly at the boundary is still valid")
	assert.True(t, ch.Expired(createdAt.Add(ttl+time.Millisecond), ttl))
}

func TestAlphabetExcludesAmbiguousGlyphs(t *testing.T) {
	for _, c := range "0O1lIi9gG" {
		assert.False(t, strings.ContainsRune(Alphabet, c), "%q must not appear", c)
	}
}
