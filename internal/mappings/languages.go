package mappings

// Language is a single language as the target applications define it.
// Negative ids are reserved sentinels: -1 is Any, -2 is Original.
type Language struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Sentinel languages shared by both applications.
var (
	LanguageAny      = Language{ID: -1, Name: "Any"}
	LanguageOriginal = Language{ID: -2, Name: "Original"}
)

// languages lists every language both applications agree on. Radarr and
// Sonarr share this table.
var languages = []Language{
	LanguageAny,
	LanguageOriginal,
	{ID: 0, Name: "Unknown"},
	{ID: 1, Name: "English"},
	{ID: 2, Name: "French"},
	{ID: 3, Name: "Spanish"},
	{ID: 4, Name: "German"},
	{ID: 5, Name: "Italian"},
	{ID: 6, Name: "Danish"},
	{ID: 7, Name: "Dutch"},
	{ID: 8, Name: "Japanese"},
	{ID: 9, Name: "Icelandic"},
	{ID: 10, Name: "Chinese"},
	{ID: 11, Name: "Russian"},
	{ID: 12, Name: "Polish"},
	{ID: 13, Name: "Vietnamese"},
	{ID: 14, Name: "Swedish"},
	{ID: 15, Name: "Norwegian"},
	{ID: 16, Name: "Finnish"},
	{ID: 17, Name: "Turkish"},
	{ID: 18, Name: "Portuguese"},
	{ID: 19, Name: "Flemish"},
	{ID: 20, Name: "Greek"},
	{ID: 21, Name: "Korean"},
	{ID: 22, Name: "Hungarian"},
	{ID: 23, Name: "Hebrew"},
	{ID: 24, Name: "Lithuanian"},
	{ID: 25, Name: "Czech"},
	{ID: 26, Name: "Hindi"},
	{ID: 27, Name: "Romanian"},
	{ID: 28, Name: "Thai"},
	{ID: 29, Name: "Bulgarian"},
	{ID: 30, Name: "Portuguese (Brazil)"},
	{ID: 31, Name: "Arabic"},
	{ID: 32, Name: "Ukrainian"},
	{ID: 33, Name: "Persian"},
	{ID: 34, Name: "Bengali"},
	{ID: 35, Name: "Slovak"},
	{ID: 36, Name: "Latvian"},
	{ID: 37, Name: "Spanish (Latino)"},
	{ID: 38, Name: "Catalan"},
	{ID: 39, Name: "Croatian"},
	{ID: 40, Name: "Serbian"},
	{ID: 41, Name: "Bosnian"},
	{ID: 42, Name: "Estonian"},
	{ID: 43, Name: "Tamil"},
	{ID: 44, Name: "Indonesian"},
	{ID: 45, Name: "Macedonian"},
	{ID: 46, Name: "Slovenian"},
}

var languageByKey map[string]Language

func init() {
	languageByKey = make(map[string]Language, len(languages))
	for _, l := range languages {
		languageByKey[languageKey(l.Name)] = l
	}
	// Accept the flat spellings used in profile selectors.
	languageByKey["portuguese_brazil"] = languageByKey["portuguese_(brazil)"]
	languageByKey["spanish_latino"] = languageByKey["spanish_(latino)"]
}

func languageKey(name string) string {
	return normalizeKey(name)
}

// LanguageByName resolves a language name for the target. Hyphen, space and
// underscore spellings are equivalent. When forProfile is set and the target
// is Sonarr the Original sentinel is returned regardless of the requested
// language: Sonarr profiles carry no real language field, so the selector is
// expressed through synthesized formats instead.
func LanguageByName(name string, target Target, forProfile bool) (Language, bool) {
	if forProfile && target == TargetSonarr {
		return LanguageOriginal, true
	}
	l, ok := languageByKey[languageKey(name)]
	return l, ok
}
