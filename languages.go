package epubtl

import "strings"

// LanguageNames maps BCP 47 language tags to human-readable names for
// prompts and reports.
var LanguageNames = map[string]string{
	"en-US": "English (United States)",
	"en-GB": "English (United Kingdom)",
	"de-DE": "German (Germany)",
	"es-ES": "Spanish (Spain)",
	"es-MX": "Spanish (Mexico)",
	"fr-FR": "French (France)",
	"it-IT": "Italian (Italy)",
	"ja-JP": "Japanese (Japan)",
	"ko-KR": "Korean (South Korea)",
	"pt-BR": "Portuguese (Brazil)",
	"pt-PT": "Portuguese (Portugal)",
	"ru-RU": "Russian (Russia)",
	"zh-CN": "Chinese (Simplified)",
	"zh-TW": "Chinese (Traditional)",
	"ar-SA": "Arabic (Saudi Arabia)",
	"he-IL": "Hebrew (Israel)",
	"fa-IR": "Persian (Iran)",
	"hi-IN": "Hindi (India)",
	"nl-NL": "Dutch (Netherlands)",
	"pl-PL": "Polish (Poland)",
	"sv-SE": "Swedish (Sweden)",
	"tr-TR": "Turkish (Turkey)",
	"uk-UA": "Ukrainian (Ukraine)",
	"vi-VN": "Vietnamese (Vietnam)",
}

// defaultRegion expands bare language codes for name lookups.
var defaultRegion = map[string]string{
	"en": "en-US",
	"de": "de-DE",
	"es": "es-ES",
	"fr": "fr-FR",
	"it": "it-IT",
	"ja": "ja-JP",
	"ko": "ko-KR",
	"pt": "pt-BR",
	"ru": "ru-RU",
	"zh": "zh-CN",
	"ar": "ar-SA",
	"he": "he-IL",
	"fa": "fa-IR",
	"hi": "hi-IN",
	"nl": "nl-NL",
	"pl": "pl-PL",
	"sv": "sv-SE",
	"tr": "tr-TR",
	"uk": "uk-UA",
	"vi": "vi-VN",
}

// NormalizeLang converts a language code to BCP 47 form with a lowercase
// language and uppercase region (e.g., "zh_cn" → "zh-CN").
func NormalizeLang(code string) string {
	code = strings.TrimSpace(strings.ReplaceAll(code, "_", "-"))
	lang, region, ok := strings.Cut(code, "-")
	lang = strings.ToLower(lang)
	if !ok {
		return lang
	}
	if len(region) == 2 {
		region = strings.ToUpper(region)
	}
	return lang + "-" + region
}

// BaseLang returns the language part of a code (e.g., "ar" from "ar-SA").
func BaseLang(code string) string {
	lang, _, _ := strings.Cut(NormalizeLang(code), "-")
	return lang
}

// LanguageName returns the human-readable name for a language code.
// Falls back to the code itself if not found.
func LanguageName(code string) string {
	norm := NormalizeLang(code)
	if name, ok := LanguageNames[norm]; ok {
		return name
	}
	if full, ok := defaultRegion[norm]; ok {
		return LanguageNames[full]
	}
	return code
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(code string) string {
	if RTLLanguages[BaseLang(code)] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(code string) bool {
	return GetDirection(code) == "rtl"
}
