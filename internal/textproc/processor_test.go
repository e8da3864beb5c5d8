package textproc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNormalize(t *testing.T) {
	p := NewProcessor(zap.NewNop())

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercases text",
			input:    "Hello World",
			expected: "hello world",
		},
		{
			name:     "replaces URLs with sentinel",
			input:    "Visit http://example.com/login today",
			expected: "visit URL today",
		},
		{
			name:     "replaces www URLs with sentinel",
			input:    "go to www.example.com please",
			expected: "go to URL please",
		},
		{
			name:     "replaces email addresses with sentinel",
			input:    "Contact admin@example.com for help",
			expected: "contact EMAIL for help",
		},
		{
			name:     "replaces digit runs with sentinel",
			input:    "Call 555 1234 today",
			expected: "call NUMBER NUMBER today",
		},
		{
			name:     "strips punctuation and collapses whitespace",
			input:    "Win  $1,000,000   now!!!",
			expected: "win NUMBER NUMBER NUMBER now",
		},
		{
			name:     "collapses tabs and newlines",
			input:    "subject line\n\tbody text",
			expected: "subject line body text",
		},
		{
			name:     "trims surrounding whitespace",
			input:    "   padded   ",
			expected: "padded",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "punctuation only",
			input:    "!!! ???",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.Normalize(tt.input))
		})
	}
}

func TestTokenize(t *testing.T) {
	p := NewProcessor(zap.NewNop())

	tokens := p.Tokenize("URGENT: Verify your account at http://evil.example!")
	assert.Equal(t, []string{"urgent", "verify", "your", "account", "at", "URL"}, tokens)

	assert.Nil(t, p.Tokenize(""))
	assert.Nil(t, p.Tokenize("  \t\n "))
}

func TestTokenizeDeterministic(t *testing.T) {
	p := NewProcessor(zap.NewNop())

	text := "Click here to claim your $500 prize at http://prize.example now!"
	first := p.Tokenize(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, p.Tokenize(text))
	}
}

func TestTruncateText(t *testing.T) {
	p := NewProcessor(zap.NewNop())

	short := "short text"
	assert.Equal(t, short, p.TruncateText(short, 100))
	assert.Equal(t, short, p.TruncateText(short, 0))

	long := strings.Repeat("a", 200)
	truncated := p.TruncateText(long, 50)
	assert.True(t, strings.HasPrefix(truncated, strings.Repeat("a", 50)))
	assert.Contains(t, truncated, "Content truncated")
}

func TestTruncateTextKeepsValidUTF8(t *testing.T) {
	p := NewProcessor(zap.NewNop())

	// 10 two-byte runes; cutting at 5 bytes lands mid-rune
	text := strings.Repeat("é", 10)
	truncated := p.TruncateText(text, 5)
	assert.True(t, strings.HasPrefix(truncated, "éé"))
	assert.NotContains(t, truncated, "�")
}

func TestSanitizeUTF8(t *testing.T) {
	p := NewProcessor(zap.NewNop())

	assert.Equal(t, "clean text", p.SanitizeUTF8("clean text"))
	assert.Equal(t, "ab", p.SanitizeUTF8("a\xffb"))
	assert.Equal(t, "héllo", p.SanitizeUTF8("héllo"))
}
