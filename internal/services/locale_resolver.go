package services

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/lymphly/vps-ai-bridge/internal/models"
)

// maxAcceptLanguageEntries bounds work on hostile headers.
const maxAcceptLanguageEntries = 16

// localeAliases maps tags whose base language is not the bridge locale, or
// which x/text would not reduce on its own, to a supported locale.
var localeAliases = map[string]models.Locale{
	"zh-tw":   models.LocaleZH,
	"zh-hk":   models.LocaleZH,
	"zh-hant": models.LocaleZH,
	"zh-hans": models.LocaleZH,
	"zh-cn":   models.LocaleZH,
	"cmn":     models.LocaleZH,
	"yue":     models.LocaleZH,
	"jp":      models.LocaleJA,
	"ja-jp":   models.LocaleJA,
	"gsw":     models.LocaleDE,
}

// LocaleResolver picks the response locale from request signals.
type LocaleResolver struct {
	defaultLocale models.Locale
}

// NewLocaleResolver creates a resolver. An unsupported default becomes en.
func NewLocaleResolver(defaultLocale models.Locale) *LocaleResolver {
	if !defaultLocale.IsSupported() {
		defaultLocale = models.LocaleEN
	}
	return &LocaleResolver{defaultLocale: defaultLocale}
}

// Default returns the configured fallback locale.
func (r *LocaleResolver) Default() models.Locale {
	return r.defaultLocale
}

// Resolve returns the explicit locale if it maps to a supported one, then the
// best Accept-Language match, then the default. It never fails.
func (r *LocaleResolver) Resolve(explicit, acceptLanguage string) models.Locale {
	if l, ok := MatchLocale(explicit); ok {
		return l
	}
	for _, tag := range parseAcceptLanguage(acceptLanguage) {
		if l, ok := MatchLocale(tag); ok {
			return l
		}
	}
	return r.defaultLocale
}

// MatchLocale maps a single language tag to a supported locale.
func MatchLocale(raw string) (models.Locale, bool) {
	tag := normalizeTag(raw)
	if tag == "" || tag == "*" {
		return "", false
	}

	if l := models.Locale(tag); l.IsSupported() {
		return l, true
	}
	if l, ok := localeAliases[tag]; ok {
		return l, true
	}

	// Canonicalize through x/text (handles deprecated codes and scripts),
	// then fall back to the base language. Inferred bases ("und", "und-JP")
	// do not name a language and never match.
	if parsed, err := language.Parse(tag); err == nil {
		base, conf := parsed.Base()
		if conf != language.Exact {
			return "", false
		}
		if l := models.Locale(base.String()); l.IsSupported() {
			return l, true
		}
		if l, ok := localeAliases[base.String()]; ok {
			return l, true
		}
	}

	primary, _, _ := strings.Cut(tag, "-")
	if l := models.Locale(primary); l.IsSupported() {
		return l, true
	}
	if l, ok := localeAliases[primary]; ok {
		return l, true
	}
	return "", false
}

// normalizeTag lowercases and converts "_" separators to "-".
func normalizeTag(raw string) string {
	tag := strings.ToLower(strings.TrimSpace(raw))
	tag = strings.ReplaceAll(tag, "_", "-")
	// drop POSIX encoding / modifier suffixes such as "en_US.UTF-8"
	if i := strings.IndexAny(tag, ".@"); i >= 0 {
		tag = tag[:i]
	}
	return tag
}

type weightedTag struct {
	tag string
	q   float64
}

// parseAcceptLanguage splits a header into tags sorted by descending q.
// Malformed entries are skipped rather than failing the whole header,
// and entries with q=0 are dropped.
func parseAcceptLanguage(header string) []string {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}

	var entries []weightedTag
	for i, part := range strings.Split(header, ",") {
		if i >= maxAcceptLanguageEntries {
			break
		}
		tag, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}

		q := 1.0
		for _, p := range strings.Split(params, ";") {
			k, v, found := strings.Cut(strings.TrimSpace(p), "=")
			if !found || !strings.EqualFold(strings.TrimSpace(k), "q") {
				continue
			}
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil || parsed < 0 || parsed > 1 {
				q = -1
			} else {
				q = parsed
			}
		}
		if q <= 0 {
			continue
		}
		entries = append(entries, weightedTag{tag: tag, q: q})
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].q > entries[b].q
	})

	tags := make([]string, len(entries))
	for i, e := range entries {
		tags[i] = e.tag
	}
	return tags
}
