package textutil

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// timestampLayout is an ISO-8601 UTC instant with ':' and '.' replaced by '-'
// and 'T' replaced by '_', which keeps it safe inside filenames.
const timestampLayout = "2006-01-02_15-04-05.000Z"

// FormattedTimestamp renders t in the filename-safe timestamp form, for
// example 2024-01-02_03-04-05-678Z. Milliseconds are kept so two runs in the
// same second get distinct names.
func FormattedTimestamp(t time.Time) string {
	// Fractional seconds only parse after '.', so swap it out afterwards.
	return strings.Replace(t.UTC().Format(timestampLayout), ".", "-", 1)
}

// Timestamp is FormattedTimestamp for the current time.
func Timestamp() string {
	return FormattedTimestamp(time.Now())
}

// RandomFilename returns "<timestamp>_<8 hex chars>.<ext>". The extension
// defaults to mp4.
func RandomFilename(ext string) (string, error) {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		ext = "mp4"
	}
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("random filename: %w", err)
	}
	return fmt.Sprintf("%s_%s.%s", Timestamp(), hex.EncodeToString(buf[:]), ext), nil
}

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
	"\x00", "",
)

// SanitizeFilename NFC-normalizes name and replaces filesystem-unsafe
// characters. Slashes, backslashes, colons, and asterisks become dashes; other
// unsafe characters are removed. Surrounding whitespace and dots are trimmed so
// the result can never be "." or "..".
func SanitizeFilename(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	name = fileNameReplacer.Replace(name)
	return strings.Trim(name, " \t\r\n.")
}
