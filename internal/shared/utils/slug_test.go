package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlug(t *testing.T) {
	for _, length := range []int{3, 8, 16, 50} {
		slug, err := GenerateSlug(length)
		require.NoError(t, err)
		assert.Len(t, slug, length)
		assert.True(t, ValidateSlug(slug), "generated slug %q must validate", slug)
		for _, r := range slug {
			assert.True(t, strings.ContainsRune(SlugAlphabet, r), "unexpected rune %q", r)
		}
	}
}

func TestGenerateSlug_DefaultLength(t *testing.T) {
	slug, err := GenerateSlug(0)
	require.NoError(t, err)
	assert.Len(t, slug, DefaultSlugLength)
}

func TestGenerateSlug_Varies(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		slug, err := GenerateSlug(DefaultSlugLength)
		require.NoError(t, err)
		seen[slug] = struct{}{}
	}
	// 36^8 khả năng, 200 lần sinh gần như chắc chắn không trùng
	assert.Greater(t, len(seen), 190)
}

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"lowercase and trim", "  Hello ", "hello"},
		{"whitespace runs collapse", "my   promo\tcode", "my-promo-code"},
		{"strip punctuation", "Sale!! 50%", "sale-50"},
		{"keep hyphens", "a-b--c", "a-b--c"},
		{"only invalid", "!!!", ""},
		{"empty", "", ""},
		{"non ascii dropped", "café 2024", "caf-2024"},
		{"vertical tab", "my\vpromo", "my-promo"},
		{"no-break space", "my\u00a0promo", "my-promo"},
		{"ideographic space", "my\u3000promo", "my-promo"},
		{"line separator", "my\u2028promo", "my-promo"},
		{"byte order mark", "\ufeffmy\ufeffpromo", "my-promo"},
		{"mixed unicode run", "summer \u00a0\t\u2003sale", "summer-sale"},
		{"unicode trim", "\u00a0\u3000promo\u2029", "promo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSlug(tt.raw))
		})
	}
}

func TestNormalizeSlug_Idempotent(t *testing.T) {
	inputs := []string{"  Hello World ", "ABC_def", "x y z", "already-ok", "Ünïcode Ströng"}
	for _, in := range inputs {
		once := NormalizeSlug(in)
		assert.Equal(t, once, NormalizeSlug(once), "input %q", in)
		assert.Regexp(t, `^[a-z0-9-]*$`, once)
	}
}

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"abc", true},
		{"abc123", true},
		{"my-promo", true},
		{"ab", false},
		{strings.Repeat("a", 50), true},
		{strings.Repeat("a", 51), false},
		{"ABC", false},
		{"has space", false},
		{"under_score", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateSlug(tt.slug))
		})
	}
}

func TestRedirectURL(t *testing.T) {
	assert.Equal(t, "https://qr.example.com/r/abc123", RedirectURL("https://qr.example.com", "abc123"))
	assert.Equal(t, "https://qr.example.com/r/abc123", RedirectURL("https://qr.example.com/", "abc123"))
}
