// Package catalog loads the supported language catalog and renders it for
// selection controls.
package catalog

import (
	"sort"

	"github.com/samber/lo"

	"akara-desktop/internal/domain"
)

// fallbackLanguages is used for both sides when the backend catalog is unavailable.
var fallbackLanguages = map[string]string{
	"hi": "Hindi",
	"en": "English",
	"bn": "Bengali",
	"ta": "Tamil",
	"te": "Telugu",
	"mr": "Marathi",
	"gu": "Gujarati",
	"kn": "Kannada",
	"ml": "Malayalam",
	"pa": "Punjabi",
	"ur": "Urdu",
	"or": "Odia",
}

// Fallback returns a fresh copy of the built-in twelve-language catalog.
func Fallback() domain.LanguageCatalog {
	return domain.LanguageCatalog{
		Source: lo.Assign(fallbackLanguages),
		Target: lo.Assign(fallbackLanguages),
	}
}

// Options renders one catalog side as options sorted by display name, then
// code. A nil or empty map renders no options.
func Options(names map[string]string) []domain.LanguageOption {
	options := lo.MapToSlice(names, func(code, name string) domain.LanguageOption {
		return domain.LanguageOption{Code: code, Name: name}
	})
	sort.Slice(options, func(i, j int) bool {
		if options[i].Name != options[j].Name {
			return options[i].Name < options[j].Name
		}
		return options[i].Code < options[j].Code
	})
	return options
}

// Codes returns the sorted codes of one catalog side.
func Codes(names map[string]string) []string {
	codes := lo.Keys(names)
	sort.Strings(codes)
	return codes
}
