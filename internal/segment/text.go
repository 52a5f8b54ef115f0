package segment

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/text/unicode/norm"
)

// PresplitDelimiter separates verses a client already segmented.
const PresplitDelimiter = "\n\n"

// Input formats accepted by FromFormat.
const (
	FormatText = "text"
	FormatHTML = "html"
)

// NormalizeNewlines unifies CRLF and CR line endings to LF. It is the only
// transform applied before the pre-split check.
func NormalizeNewlines(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Normalize unifies line endings and composes Unicode to NFC so identical
// text always hashes the same.
func Normalize(raw string) string {
	return norm.NFC.String(NormalizeNewlines(raw))
}

// FromHTML converts an HTML document to Markdown. Block elements become
// blank-line separated paragraphs, so the result pre-splits into one verse
// per paragraph.
func FromHTML(html string) (string, error) {
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("segment: convert html: %w", err)
	}
	return md, nil
}

// FromFormat returns raw as plain text. Only an explicit FormatHTML is
// converted; text is never sniffed for markup.
func FromFormat(raw, format string) (string, error) {
	switch format {
	case "", FormatText:
		return raw, nil
	case FormatHTML:
		return FromHTML(raw)
	default:
		return "", fmt.Errorf("segment: unknown format %q", format)
	}
}

// Presplit splits text on the double-newline delimiter. It reports false
// when the text carries no delimiter.
func Presplit(text string) ([]string, bool) {
	if !strings.Contains(text, PresplitDelimiter) {
		return nil, false
	}
	return Clean(strings.Split(text, PresplitDelimiter)), true
}

// SplitLines is the local fallback: one verse per non-blank line.
func SplitLines(text string) []string {
	return Clean(strings.Split(text, "\n"))
}

// Clean trims every element and drops the empty ones.
func Clean(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
