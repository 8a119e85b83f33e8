package irfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// ErrUnreadable marks a file whose content could not be decoded with any of
// the supported encodings. Callers skip such files instead of aborting.
var ErrUnreadable = errors.New("undecodable file content")

// Legacy encodings tried after UTF-8, in this fixed order.
var fallbackEncodings = []struct {
	name string
	enc  encoding.Encoding
}{
	{"windows-1252", charmap.Windows1252},
	{"iso-8859-1", charmap.ISO8859_1},
	{"utf-16", unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
}

// ReadLines reads a signal file and returns its lines. Content is decoded as
// UTF-8 when valid, otherwise the legacy encodings are attempted in order.
func ReadLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := DecodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnreadable, path)
	}
	return SplitLines(text), nil
}

// DecodeText decodes raw bytes trying UTF-8 first, then each fallback
// encoding in order.
func DecodeText(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	for _, fb := range fallbackEncodings {
		decoded, err := fb.enc.NewDecoder().Bytes(raw)
		if err != nil {
			continue
		}
		if utf8.Valid(decoded) {
			return string(decoded), nil
		}
	}
	return "", ErrUnreadable
}

// SplitLines splits decoded text into lines, normalizing CRLF and dropping a
// byte-order mark and the empty tail produced by a trailing newline.
func SplitLines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// WriteLines persists rebuilt content as UTF-8 with LF newlines, creating the
// parent directory when needed.
func WriteLines(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644)
}
