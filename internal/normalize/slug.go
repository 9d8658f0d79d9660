package normalize

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	reHTMLSuffix      = regexp.MustCompile(`\.html.*$`)
	reBoilerplateTail = regexp.MustCompile(`(?i)(hotel beschreibung|reviews|en gb|ja jp)$`)
	reNonAlnum        = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	reLocaleToken     = regexp.MustCompile(`(?i)\b([a-z]{2})-([a-z]{2})\b`)
	reLocaleSegment   = regexp.MustCompile(`(?i)^[a-z]{2}-[a-z]{2}$`)
)

// CleanSlugText prepares a display name or URL slug for slug comparison.
// Non-ASCII text is dropped, so names written only in Japanese clean to "".
func CleanSlugText(text string, stopwords StopwordSet) string {
	if text == "" {
		return ""
	}

	text = Unquote(text)
	text = strings.NewReplacer("-", " ", "_", " ").Replace(text)
	text = reHTMLSuffix.ReplaceAllString(text, "")
	text = reBoilerplateTail.ReplaceAllString(text, "")
	text = reNonAlnum.ReplaceAllString(text, " ")
	text = reLocaleToken.ReplaceAllString(text, "")

	return joinTokens(strings.Fields(strings.ToLower(text)), stopwords)
}

// IsLocaleSegment reports whether a path segment looks like "en-gb"
func IsLocaleSegment(segment string) bool {
	return reLocaleSegment.MatchString(segment)
}

// Unquote percent-decodes text. Malformed escapes are kept verbatim
// instead of failing the whole string.
func Unquote(text string) string {
	if !strings.Contains(text, "%") {
		return text
	}
	if decoded, err := url.PathUnescape(text); err == nil {
		return decoded
	}

	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if text[i] == '%' && i+2 < len(text) {
			if v, err := strconv.ParseUint(text[i+1:i+3], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 2
				continue
			}
		}
		b.WriteByte(text[i])
	}
	return strings.ToValidUTF8(b.String(), "�")
}
