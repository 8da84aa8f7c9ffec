// Package i18n translates API message keys.
//
// Catalogs are YAML files named api.<locale>.yaml. Nested keys are flattened
// with dots, so
//
//	api:
//	  request:
//	    empty: Request body is empty
//
// defines api.request.empty. Placeholders are written %name%.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed translations/*.yaml
var embedded embed.FS

var catalogName = regexp.MustCompile(`^api\.([A-Za-z_-]+)\.ya?ml$`)

const DefaultLocale = "en"

type Translator struct {
	mu            sync.RWMutex
	defaultLocale string
	catalogs      map[string]map[string]string
	locales       []string
	matcher       language.Matcher
}

// New returns a translator preloaded with the embedded catalogs.
func New(defaultLocale string) (*Translator, error) {
	if defaultLocale == "" {
		defaultLocale = DefaultLocale
	}
	t := &Translator{
		defaultLocale: defaultLocale,
		catalogs:      make(map[string]map[string]string),
	}

	sub, err := fs.Sub(embedded, "translations")
	if err != nil {
		return nil, err
	}
	if err := t.LoadFS(sub); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadDir merges every api.<locale>.yaml of dir over the loaded catalogs.
func (t *Translator) LoadDir(dir string) error {
	return t.LoadFS(os.DirFS(dir))
}

func (t *Translator) LoadFS(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("failed to read translations: %w", err)
	}
	for _, e := range entries {
		m := catalogName.FindStringSubmatch(e.Name())
		if e.IsDir() || m == nil {
			continue
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		if err := t.Load(m[1], data); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(e.Name()), err)
		}
	}
	return nil
}

// Load merges one YAML catalog for locale.
func (t *Translator) Load(locale string, data []byte) error {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("failed to parse catalog: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	catalog, ok := t.catalogs[locale]
	if !ok {
		catalog = make(map[string]string)
		t.catalogs[locale] = catalog
	}
	flatten("", tree, catalog)
	t.rebuildMatcher()
	return nil
}

// Trans returns the message for key in locale, falling back to the default
// locale and then to the key itself.
func (t *Translator) Trans(locale, key string, params map[string]string) string {
	t.mu.RLock()
	msg, ok := t.catalogs[locale][key]
	if !ok {
		msg, ok = t.catalogs[t.defaultLocale][key]
	}
	t.mu.RUnlock()

	if !ok {
		msg = key
	}
	return substitute(msg, params)
}

// Has reports whether any catalog defines key.
func (t *Translator) Has(key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, c := range t.catalogs {
		if _, ok := c[key]; ok {
			return true
		}
	}
	return false
}

// Negotiate picks the best loaded locale for an Accept-Language header.
func (t *Translator) Negotiate(acceptLanguage string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if acceptLanguage == "" || t.matcher == nil {
		return t.defaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return t.defaultLocale
	}
	_, idx, conf := t.matcher.Match(tags...)
	if conf == language.No {
		return t.defaultLocale
	}
	return t.locales[idx]
}

func (t *Translator) Locales() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.locales...)
}

// rebuildMatcher must run with mu held. The default locale goes first so it
// wins when nothing matches.
func (t *Translator) rebuildMatcher() {
	locales := []string{t.defaultLocale}
	for l := range t.catalogs {
		if l != t.defaultLocale {
			locales = append(locales, l)
		}
	}

	tags := make([]language.Tag, 0, len(locales))
	kept := make([]string, 0, len(locales))
	for _, l := range locales {
		tag, err := language.Parse(l)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		kept = append(kept, l)
	}
	t.locales = kept
	t.matcher = language.NewMatcher(tags)
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

func substitute(msg string, params map[string]string) string {
	if len(params) == 0 {
		return msg
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		if !strings.HasPrefix(k, "%") {
			k = "%" + k + "%"
		}
		pairs = append(pairs, k, v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}
