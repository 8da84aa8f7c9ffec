package i18n_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/DjordjeVuckovic/apikit/pkg/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrans(t *testing.T) {
	tr, err := i18n.New("en")
	require.NoError(t, err)

	tests := []struct {
		name   string
		locale string
		key    string
		params map[string]string
		want   string
	}{
		{name: "nested key", locale: "en", key: "api.request.empty", want: "Request body is empty"},
		{name: "russian", locale: "ru", key: "api.forbidden", want: "Доступ запрещён"},
		{name: "unknown locale falls back", locale: "de", key: "api.not_found", want: "Not found"},
		{name: "missing key returns key", locale: "en", key: "api.nope", want: "api.nope"},
		{name: "percent params", locale: "en", key: "api.pagination.page_not_found", params: map[string]string{"%page%": "4"}, want: "Page 4 not found"},
		{name: "bare params", locale: "ru", key: "api.pagination.page_not_found", params: map[string]string{"page": "4"}, want: "Страница 4 не найдена"},
		{name: "params on literal", locale: "en", key: "hello %name%", params: map[string]string{"%name%": "ann"}, want: "hello ann"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Trans(tt.locale, tt.key, tt.params))
		})
	}
}

func TestNegotiate(t *testing.T) {
	tr, err := i18n.New("en")
	require.NoError(t, err)

	tests := []struct {
		header string
		want   string
	}{
		{header: "", want: "en"},
		{header: "ru-RU,ru;q=0.9,en;q=0.8", want: "ru"},
		{header: "en-US", want: "en"},
		{header: "ja", want: "en"},
		{header: "not a header;;", want: "en"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tr.Negotiate(tt.header), tt.header)
	}
	assert.ElementsMatch(t, []string{"en", "ru"}, tr.Locales())
}

func TestLoadDir_Overrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api.en.yaml"), []byte("api:\n  forbidden: Nope\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api.de.yaml"), []byte("api:\n  forbidden: Verboten\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("ignored"), 0o644))

	tr, err := i18n.New("en")
	require.NoError(t, err)
	require.NoError(t, tr.LoadDir(dir))

	assert.Equal(t, "Nope", tr.Trans("en", "api.forbidden", nil))
	assert.Equal(t, "Not found", tr.Trans("en", "api.not_found", nil), "merge keeps other keys")
	assert.Equal(t, "Verboten", tr.Trans(tr.Negotiate("de-AT"), "api.forbidden", nil))
	assert.True(t, tr.Has("api.forbidden"))
	assert.False(t, tr.Has("api.nope"))
}

func TestLoad_Invalid(t *testing.T) {
	tr, err := i18n.New("")
	require.NoError(t, err)
	assert.Error(t, tr.Load("en", []byte("api: [unclosed")))
}
