package i18n

import (
	"embed"
	"encoding/json"
	"io/fs"
	"sync"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	mu        sync.RWMutex
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	tag       = language.English
)

var supported = []language.Tag{language.AmericanEnglish, language.Korean}

// Init initializes the i18n bundle from locale files in fsys.
// A nil fsys loads the embedded locales.
func Init(fsys fs.FS, lang string) error {
	if fsys == nil {
		fsys = localeFS
	}

	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	files, err := fs.Glob(fsys, "locales/*.json")
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := b.LoadMessageFileFS(fsys, f); err != nil {
			return err
		}
	}

	mu.Lock()
	defer mu.Unlock()
	bundle = b
	localizer = i18n.NewLocalizer(bundle, lang)
	tag = matchTag(lang)
	return nil
}

func matchTag(lang string) language.Tag {
	t, err := language.Parse(lang)
	if err != nil {
		return language.English
	}
	_, idx, _ := language.NewMatcher(supported).Match(t)
	return supported[idx]
}

func current() *i18n.Localizer {
	mu.RLock()
	l := localizer
	mu.RUnlock()
	if l != nil {
		return l
	}

	// Messages are needed before main has run Init, e.g. in tests
	_ = Init(nil, "en-US")
	mu.RLock()
	defer mu.RUnlock()
	return localizer
}

// T translates a message by its ID with optional template data and plural count
func T(messageID string, templateData map[string]any, pluralCount ...int) string {
	config := &i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: templateData,
	}
	if len(pluralCount) > 0 {
		config.PluralCount = pluralCount[0]
	}

	msg, err := current().Localize(config)
	if err != nil {
		// Return message ID if translation fails
		return messageID
	}
	return msg
}

// SetLocale changes the current locale
func SetLocale(lang string) {
	current()
	mu.Lock()
	defer mu.Unlock()
	localizer = i18n.NewLocalizer(bundle, lang)
	tag = matchTag(lang)
}

// Language returns the matched language of the current locale
func Language() language.Tag {
	mu.RLock()
	defer mu.RUnlock()
	return tag
}

// FormatTimestamp renders t in the local zone using the locale's timestamp layout
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return T("history.unknownTime", nil)
	}
	return t.Local().Format(T("history.timestampLayout", nil))
}
