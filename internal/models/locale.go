package models

// Locale is a response language the bridge can produce.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleES Locale = "es"
	LocaleFR Locale = "fr"
	LocaleDE Locale = "de"
	LocaleJA Locale = "ja"
	LocaleZH Locale = "zh"
)

// SupportedLocales lists every locale in a stable order.
func SupportedLocales() []Locale {
	return []Locale{LocaleEN, LocaleES, LocaleFR, LocaleDE, LocaleJA, LocaleZH}
}

// IsSupported reports whether l is a member of the supported set.
func (l Locale) IsSupported() bool {
	switch l {
	case LocaleEN, LocaleES, LocaleFR, LocaleDE, LocaleJA, LocaleZH:
		return true
	}
	return false
}

// LanguageName is the English name of the locale, used in model prompts.
func (l Locale) LanguageName() string {
	switch l {
	case LocaleES:
		return "Spanish"
	case LocaleFR:
		return "French"
	case LocaleDE:
		return "German"
	case LocaleJA:
		return "Japanese"
	case LocaleZH:
		return "Simplified Chinese"
	default:
		return "English"
	}
}
