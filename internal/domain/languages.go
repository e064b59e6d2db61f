package domain

// LanguageCatalog maps language codes to display names for both sides.
type LanguageCatalog struct {
	Source map[string]string `json:"sourceLanguages"`
	Target map[string]string `json:"targetLanguages"`
}

// LanguageOption is one renderable entry of a catalog side.
type LanguageOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// HasSource reports whether code is a known source language.
func (c LanguageCatalog) HasSource(code string) bool {
	_, ok := c.Source[code]
	return ok
}

// HasTarget reports whether code is a known target language.
func (c LanguageCatalog) HasTarget(code string) bool {
	_, ok := c.Target[code]
	return ok
}

// Clone returns a deep copy so callers cannot mutate shared maps.
func (c LanguageCatalog) Clone() LanguageCatalog {
	return LanguageCatalog{
		Source: cloneNames(c.Source),
		Target: cloneNames(c.Target),
	}
}

func cloneNames(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
