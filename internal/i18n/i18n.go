package i18n

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LangCookieName stores the visitor's language preference.
const LangCookieName = "preferred-language"

var supportedTags = []language.Tag{
	language.English,
	language.French,
}

var tagMatcher = language.NewMatcher(supportedTags)

func Default() language.Tag {
	return language.English
}

// Base returns the two letter code used in URLs ("en", "fr").
func Base(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

// Parse maps a URL or cookie value to a supported tag.
func Parse(value string) (language.Tag, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "en":
		return language.English, true
	case "fr":
		return language.French, true
	}
	return language.Tag{}, false
}

// PreferredTag picks the language for a visitor with no language in the
// URL: cookie first, then Accept-Language, then English.
func PreferredTag(r *http.Request) language.Tag {
	if r == nil {
		return Default()
	}

	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if tag, ok := Parse(cookie.Value); ok {
			return tag
		}
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, index, confidence := tagMatcher.Match(tags...)
			if confidence != language.No {
				return supportedTags[index]
			}
		}
	}

	return Default()
}

func SetLanguageCookie(w http.ResponseWriter, tag language.Tag) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    Base(tag),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// T translates key for the given URL language code.
func T(lang, key string) string {
	tag, ok := Parse(lang)
	if !ok {
		tag = Default()
	}
	return Printer(tag).Sprintf(key)
}
