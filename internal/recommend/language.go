// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import "strings"

// Language is a tagged choice between any language and one specific
// ISO 639-1 code. The zero value is AnyLanguage.
type Language struct {
	code string
}

// AnyLanguage disables language filtering.
var AnyLanguage = Language{}

// mixedLanguage is the wire name of AnyLanguage.
const mixedLanguage = "mixed"

// languageNames maps the names accepted by the API to ISO codes.
var languageNames = map[string]string{
	"hindi":   "hi",
	"english": "en",
}

// SpecificLanguage restricts candidates to code (lowercased).
func SpecificLanguage(code string) Language {
	return Language{code: strings.ToLower(strings.TrimSpace(code))}
}

// ParseLanguage maps an API language preference to a Language.
// "mixed", the empty string and unknown names select AnyLanguage;
// "hindi" and "english" map to their codes; a bare two-letter code
// such as "fr" is accepted as-is.
func ParseLanguage(pref string) Language {
	p := strings.ToLower(strings.TrimSpace(pref))
	if p == "" || p == mixedLanguage {
		return AnyLanguage
	}
	if code, ok := languageNames[p]; ok {
		return SpecificLanguage(code)
	}
	if isLanguageCode(p) {
		return SpecificLanguage(p)
	}
	return AnyLanguage
}

func isLanguageCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

// IsAny reports whether no filtering applies.
func (l Language) IsAny() bool {
	return l.code == ""
}

// Code returns the ISO code, or "" for AnyLanguage.
func (l Language) Code() string {
	return l.code
}

// Matches reports whether item passes the filter.
//
//nolint:gocritic // Item passed by value to keep it immutable
func (l Language) Matches(item Item) bool {
	return l.IsAny() || strings.EqualFold(item.Language, l.code)
}

// String returns "mixed" for AnyLanguage, otherwise the code.
func (l Language) String() string {
	if l.IsAny() {
		return mixedLanguage
	}
	return l.code
}
