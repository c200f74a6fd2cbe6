package domain

import "testing"

func TestLanguage_Label(t *testing.T) {
	tests := []struct {
		lang Language
		want string
	}{
		{LanguagePython, "Python"},
		{LanguageJavaScript, "JavaScript"},
		{LanguageTypeScript, "TypeScript"},
		{"ruby", "ruby"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := tt.lang.Label(); got != tt.want {
			t.Errorf("Language(%q).Label() = %q; want %q", tt.lang, got, tt.want)
		}
	}
}

func TestLanguage_IsSupported(t *testing.T) {
	for _, lang := range SupportedLanguages() {
		if !lang.IsSupported() {
			t.Errorf("%q should be supported", lang)
		}
	}
	for _, lang := range []Language{"go", "ruby", "Python", ""} {
		if lang.IsSupported() {
			t.Errorf("%q should not be supported", lang)
		}
	}
}

func TestLanguageFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     Language
		ok       bool
	}{
		{"main.py", LanguagePython, true},
		{"app.ts", LanguageTypeScript, true},
		{"App.tsx", LanguageTypeScript, true},
		{"index.js", LanguageJavaScript, true},
		{"view.jsx", LanguageJavaScript, true},
		{"main.go", "", false},
		{"README", "", false},
	}

	for _, tt := range tests {
		got, ok := LanguageFromFilename(tt.filename)
		if got != tt.want || ok != tt.ok {
			t.Errorf("LanguageFromFilename(%q) = (%q, %v); want (%q, %v)", tt.filename, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFindingType_Valid(t *testing.T) {
	for _, ft := range AllFindingTypes() {
		if !ft.Valid() {
			t.Errorf("%q should be valid", ft)
		}
	}
	if FindingType("lint").Valid() {
		t.Error("unknown type should not be valid")
	}
}
