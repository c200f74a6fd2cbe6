package domain

import "strings"

// Language identifies the source language of a snippet under review
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
)

var languageLabels = map[Language]string{
	LanguagePython:     "Python",
	LanguageJavaScript: "JavaScript",
	LanguageTypeScript: "TypeScript",
}

// SupportedLanguages returns the languages accepted by the hard review, in display order
func SupportedLanguages() []Language {
	return []Language{LanguagePython, LanguageJavaScript, LanguageTypeScript}
}

// IsSupported reports whether the language is in the allowed set
func (l Language) IsSupported() bool {
	_, ok := languageLabels[l]
	return ok
}

// Label returns the display name, falling back to the raw code for unknown languages
func (l Language) Label() string {
	if label, ok := languageLabels[l]; ok {
		return label
	}
	return string(l)
}

func (l Language) String() string {
	return string(l)
}

// LanguageFromFilename infers a supported language from a file extension.
// It returns false when the extension is not recognized.
func LanguageFromFilename(filename string) (Language, bool) {
	switch {
	case strings.HasSuffix(filename, ".py"):
		return LanguagePython, true
	case strings.HasSuffix(filename, ".ts"), strings.HasSuffix(filename, ".tsx"):
		return LanguageTypeScript, true
	case strings.HasSuffix(filename, ".js"), strings.HasSuffix(filename, ".jsx"),
		strings.HasSuffix(filename, ".mjs"), strings.HasSuffix(filename, ".cjs"):
		return LanguageJavaScript, true
	default:
		return "", false
	}
}
