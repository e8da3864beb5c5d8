package textproc

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	urlPattern    = regexp.MustCompile(`http\S+|www\S+`)
	emailPattern  = regexp.MustCompile(`\S+@\S+`)
	numberPattern = regexp.MustCompile(`\d+`)
	punctPattern  = regexp.MustCompile(`[^\w\s]`)
	spacePattern  = regexp.MustCompile(`\s+`)
)

// Processor normalizes raw email text into the token stream the model is
// trained on. The exact same normalization must run at training and at
// inference time, otherwise the vocabulary indices no longer line up.
type Processor struct {
	folder cases.Caser
	logger *zap.Logger
}

// NewProcessor creates a new text processor
func NewProcessor(logger *zap.Logger) *Processor {
	return &Processor{
		folder: cases.Fold(),
		logger: logger,
	}
}

// Normalize cleans raw email text: case folding, URL/address/number token
// substitution, punctuation stripping and whitespace collapsing. URLs, email
// addresses and digit runs are mapped to the sentinel tokens URL, EMAIL and
// NUMBER so the model learns their presence rather than their contents.
func (p *Processor) Normalize(text string) string {
	text = norm.NFC.String(p.SanitizeUTF8(text))
	text = p.folder.String(text)
	text = urlPattern.ReplaceAllString(text, "URL")
	text = emailPattern.ReplaceAllString(text, "EMAIL")
	text = numberPattern.ReplaceAllString(text, "NUMBER")
	text = punctPattern.ReplaceAllString(text, " ")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Tokenize normalizes text and splits it into whitespace tokens
func (p *Processor) Tokenize(text string) []string {
	normalized := p.Normalize(text)
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}

// TruncateText safely truncates text to the specified maximum byte size
// and ensures the result is valid UTF-8
func (p *Processor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	if p.logger != nil {
		p.logger.Debug("Text truncated",
			zap.Int("original_size", len(text)),
			zap.Int("truncated_size", len(truncated)),
			zap.Int("max_size", maxSize))
	}

	return truncated + "\n[... Content truncated due to size limits ...]"
}

// ProcessText truncates and sanitizes text in one operation
func (p *Processor) ProcessText(text string, maxSize int) string {
	return p.SanitizeUTF8(p.TruncateText(text, maxSize))
}

// SanitizeUTF8 drops invalid UTF-8 sequences from the string
func (p *Processor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	result := make([]rune, 0, len(text))
	for i, r := range text {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(text[i:])
			if size == 1 {
				continue
			}
		}
		result = append(result, r)
	}

	return string(result)
}
