package utils

import (
	"fmt"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/mikey/phishdash/internal/core"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxSubjectRunes bounds subjects unless configured otherwise
const DefaultMaxSubjectRunes = 200

// TextProcessor prepares agent-supplied strings for display
type TextProcessor struct {
	logger          *zap.Logger
	maxSubjectRunes int
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger:          logger,
		maxSubjectRunes: DefaultMaxSubjectRunes,
	}
}

// WithSubjectLimit sets how many runes Subject keeps; 0 disables truncation
func (tp *TextProcessor) WithSubjectLimit(maxRunes int) *TextProcessor {
	tp.maxSubjectRunes = maxRunes
	return tp
}

// SanitizeUTF8 drops invalid UTF-8 sequences and normalizes the text to NFC
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if !utf8.ValidString(text) {
		cleaned := strings.ToValidUTF8(text, "")
		tp.logger.Debug("Text sanitized",
			zap.Int("original_size", len(text)),
			zap.Int("sanitized_size", len(cleaned)))
		text = cleaned
	}
	return norm.NFC.String(text)
}

// DecodeHeader decodes RFC 2047 encoded words such as "=?UTF-8?B?...?=".
// Undecodable input is returned unchanged.
func (tp *TextProcessor) DecodeHeader(text string) string {
	if !strings.Contains(text, "=?") {
		return text
	}

	dec := mime.WordDecoder{CharsetReader: charsetReader}
	decoded, err := dec.DecodeHeader(text)
	if err != nil {
		tp.logger.Debug("Failed to decode header", zap.String("header", text), zap.Error(err))
		return text
	}
	return decoded
}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

// CollapseWhitespace joins all whitespace runs into single spaces
func (tp *TextProcessor) CollapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// TruncateText shortens text to at most maxRunes runes, ending with an
// ellipsis when something was cut
func (tp *TextProcessor) TruncateText(text string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	if maxRunes == 1 {
		return "…"
	}

	runes := []rune(text)
	return string(runes[:maxRunes-1]) + "…"
}

// Clean sanitizes text and trims surrounding whitespace
func (tp *TextProcessor) Clean(text string) string {
	return strings.TrimSpace(tp.SanitizeUTF8(text))
}

// CleanAll applies Clean to each entry, keeping order and duplicates
func (tp *TextProcessor) CleanAll(texts []string) []string {
	if len(texts) == 0 {
		return nil
	}
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = tp.Clean(t)
	}
	return out
}

// ProcessLine decodes and cleans a header-like value, folds it onto one line
// and truncates it
func (tp *TextProcessor) ProcessLine(text string, maxRunes int) string {
	return tp.TruncateText(tp.CollapseWhitespace(tp.Clean(tp.DecodeHeader(text))), maxRunes)
}

// Subject prepares an email subject for display. A subject that is empty once
// decoded and cleaned shows as core.DefaultSubject.
func (tp *TextProcessor) Subject(text string) string {
	subject := tp.ProcessLine(text, tp.maxSubjectRunes)
	if subject == "" {
		return core.DefaultSubject
	}
	return subject
}
