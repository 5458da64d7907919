package i18n

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	assert.Equal(t, "Initial Report", Translate("en", "STAGE_INITIAL"))
	assert.Equal(t, "Laporan Awal", Translate("id", "STAGE_INITIAL"))
	assert.Equal(t, "Initial Report", Translate("fr", "STAGE_INITIAL"))
	assert.Equal(t, "NO_SUCH_KEY", Translate("en", "NO_SUCH_KEY"))
}

func TestBundledLocalesHaveTheSameKeys(t *testing.T) {
	mu.RLock()
	defer mu.RUnlock()

	en, id := locales["en"], locales["id"]
	require.NotEmpty(t, en)
	for key := range en {
		assert.Contains(t, id, key)
	}
	for key := range id {
		assert.Contains(t, en, key)
	}
}

func TestLoadTranslations(t *testing.T) {
	fsys := fstest.MapFS{
		"extra/xx/messages.yaml": {Data: []byte("MESSAGES:\n  STAGE_INITIAL: \"Premier\"\n")},
		"extra/README.md":        {Data: []byte("ignored")},
	}

	require.NoError(t, LoadTranslations(fsys, "extra"))

	assert.Equal(t, "Premier", Translate("xx", "STAGE_INITIAL"))
	assert.Equal(t, "Completion", Translate("xx", "STAGE_COMPLETION"))
}

func TestLoadTranslations_Malformed(t *testing.T) {
	fsys := fstest.MapFS{
		"bad/yy/messages.yaml": {Data: []byte("MESSAGES: [unclosed")},
	}

	assert.Error(t, LoadTranslations(fsys, "bad"))
}

func TestLocaleContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "en", LocaleFrom(ctx, "en"))
	assert.Equal(t, "id", LocaleFrom(WithLocale(ctx, "id"), "en"))
	assert.Equal(t, "en", LocaleFrom(WithLocale(ctx, ""), "en"))
}
