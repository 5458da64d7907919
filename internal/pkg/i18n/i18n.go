package i18n

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"gopkg.in/yaml.v3"
)

const DefaultLocale = "en"

type Translations map[string]string

//go:embed locales
var bundled embed.FS

var (
	locales = make(map[string]Translations)
	mu      sync.RWMutex
)

func init() {
	if err := LoadTranslations(bundled, "locales"); err != nil {
		panic(fmt.Sprintf("i18n: bundled translations: %v", err))
	}
}

// LoadTranslations reads <root>/<locale>/messages.yaml for every locale
// directory under root. Locales already loaded are replaced.
func LoadTranslations(fsys fs.FS, root string) error {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return err
	}

	loaded := make(map[string]Translations)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		locale := entry.Name()
		filePath := path.Join(root, locale, "messages.yaml")

		data, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			continue
		}

		var file struct {
			Messages Translations `yaml:"MESSAGES"`
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filePath, err)
		}
		loaded[locale] = file.Messages
	}

	mu.Lock()
	defer mu.Unlock()
	for locale, trans := range loaded {
		locales[locale] = trans
	}
	return nil
}

// Translate looks key up in locale, then in the default locale, and falls
// back to the key itself.
func Translate(locale, key string) string {
	mu.RLock()
	defer mu.RUnlock()

	if trans, ok := locales[locale]; ok {
		if val, ok := trans[key]; ok {
			return val
		}
	}

	if locale != DefaultLocale {
		if trans, ok := locales[DefaultLocale]; ok {
			if val, ok := trans[key]; ok {
				return val
			}
		}
	}

	return key
}

type localeKey struct{}

func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey{}, locale)
}

// LocaleFrom returns the locale stored on ctx, or fallback.
func LocaleFrom(ctx context.Context, fallback string) string {
	if l, ok := ctx.Value(localeKey{}).(string); ok && l != "" {
		return l
	}
	return fallback
}
