package domain

import "strings"

// FallbackLanguage — язык, на который откатывается выбор перевода,
// если запрошенного языка у товара нет.
const FallbackLanguage = "en"

// NormalizeLanguage приводит код языка к каноническому виду (trim + lowercase).
// Пустой код превращается в FallbackLanguage.
func NormalizeLanguage(code string) string {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if normalized == "" {
		return FallbackLanguage
	}
	return normalized
}

// ResolveTranslation выбирает перевод детерминированно:
// точное совпадение с запрошенным языком, затем FallbackLanguage,
// затем первый доступный перевод. Возвращает nil для пустого набора.
func ResolveTranslation(translations []Translation, language string) *Translation {
	if len(translations) == 0 {
		return nil
	}

	requested := strings.ToLower(strings.TrimSpace(language))

	for i := range translations {
		if strings.ToLower(translations[i].Language) == requested {
			return &translations[i]
		}
	}
	for i := range translations {
		if strings.ToLower(translations[i].Language) == FallbackLanguage {
			return &translations[i]
		}
	}
	return &translations[0]
}
