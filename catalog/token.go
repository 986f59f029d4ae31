package catalog

import (
	"encoding/base64"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Chapter tokens stand in for chapter display names inside callback data,
// which is delimiter-sensitive ('|' separates key from payload, ':' separates
// payload fields) and limited to 64 bytes overall. Short names are encoded
// reversibly; long names fall back to a lossy slug that the store resolves by
// matching.

// maxEncodedToken bounds chapter tokens so the widest frame,
// "\fget|<subject>:<token>:lecture:<no>", stays inside Telegram's 64-byte
// callback data limit. Subject codes are capped at 16 bytes and lecture
// numbers at 8, leaving 24 bytes for the token.
const maxEncodedToken = 24

const tokenPrefix = "~"

var tokenEnc = base64.RawURLEncoding

// EncodeChapterToken derives a delimiter-safe token from a chapter name.
// The result is deterministic and contains no '|' or ':'.
func EncodeChapterToken(name string) string {
	enc := tokenPrefix + tokenEnc.EncodeToString([]byte(name))
	if len(enc) <= maxEncodedToken {
		return enc
	}
	return Slug(name)
}

// DecodeChapterToken is the best-effort inverse of EncodeChapterToken.
// exact is true when the token carried the full reversible encoding; when
// false the returned string is a slug and must be resolved against the store.
func DecodeChapterToken(tok string) (name string, exact bool) {
	if rest, ok := strings.CutPrefix(tok, tokenPrefix); ok {
		if raw, err := tokenEnc.DecodeString(rest); err == nil {
			return string(raw), true
		}
	}
	return tok, false
}

// Slug lowercases the name, replaces every run of non-alphanumeric runes
// with a single dash, and truncates to the token budget on a rune boundary.
// Distinct names may slug-collide, which is why chapter creation rejects
// slug duplicates up front.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if b.Len()+utf8.RuneLen(r) > maxEncodedToken {
				break
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 && b.Len() < maxEncodedToken {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// normalizeName is the loosest comparison form: lowercased with all
// whitespace removed. Used as the last resolution fallback.
func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
