package model

// Language enumerates the editor languages a candidate may answer in. The
// selection only affects the starter template shown for untouched questions.
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageJava       Language = "java"
	LanguageCPP        Language = "cpp"
	LanguageC          Language = "c"
)

// ParseLanguage maps a raw string onto a supported Language,
// falling back to python for anything unrecognized.
func ParseLanguage(raw string) Language {
	switch Language(raw) {
	case LanguagePython, LanguageJavaScript, LanguageJava, LanguageCPP, LanguageC:
		return Language(raw)
	default:
		return LanguagePython
	}
}
