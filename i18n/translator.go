// Package i18n holds the message templates used by the built-in rules.
//
// Templates are keyed by message code (for example "string.min") and may
// contain {{ name }} tokens. T substitutes the tokens present in data and
// leaves the others untouched, so that the {{ field }} token survives until
// the validation context replaces it.
package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized message templates.
type Translator interface {
	Message(code string, data map[string]string) string
}

var english = map[string]string{
	"not_nullable":           "{{ field }} cannot be null",
	"required":               "{{ field }} is required",
	"schema":                 "{{ field }} must be an object",
	"with_key":               "{{ field }} must contain the key {{ key }}",
	"array":                  "{{ field }} must be an array",
	"array.min":              "{{ field }} must contain at least {{ min }} items",
	"array.max":              "{{ field }} must not contain more than {{ max }} items",
	"array.length":           "{{ field }} must contain exactly {{ length }} items",
	"array.empty":            "{{ field }} must be empty",
	"array.not_empty":        "{{ field }} must not be empty",
	"array.distinct":         "{{ field }} elements must be distinct",
	"string":                 "{{ field }} must be a string",
	"string.min":             "{{ field }} must count at least {{ min }} characters",
	"string.max":             "{{ field }} must not exceed {{ max }} characters",
	"string.length":          "{{ field }} must be exactly {{ length }} characters long",
	"string.prefix":          "{{ field }} must start with {{ prefix }}",
	"string.suffix":          "{{ field }} must end with {{ suffix }}",
	"string.contains":        "{{ field }} must contain '{{ substring }}'",
	"string.alphabetic":      "{{ field }} must contain only alphabetic characters",
	"string.numeric":         "{{ field }} must contain only numeric characters",
	"string.alphanumeric":    "{{ field }} must contain only alphanumeric characters",
	"string.no_whitespace":   "{{ field }} must not contain whitespace",
	"string.email":           "{{ field }} must be a valid email",
	"string.phone":           "{{ field }} must be a valid mobile phone",
	"string.json":            "{{ field }} must be a valid json string",
	"string.url":             "{{ field }} must be a valid url",
	"string.active_url":      "{{ field }} must be an active url",
	"string.credit_card":     "{{ field }} must be a valid credit card",
	"string.ip":              "{{ field }} must be a valid IP",
	"string.uuid":            "{{ field }} must be a valid UUID",
	"string.empty":           "{{ field }} must be an empty string",
	"string.not_empty":       "{{ field }} must not be empty",
	"string.pattern":         "{{ field }} must match the pattern",
	"string.one_of":          "{{ field }} must be one of {{ values }}",
	"number":                 "{{ field }} must be a valid integer or float",
	"number.min":             "{{ field }} must be at least {{ min }}",
	"number.max":             "{{ field }} must be at most {{ max }}",
	"number.range":           "{{ field }} must be between {{ min }} and {{ max }}",
	"number.zero":            "{{ field }} must be zero",
	"number.non_zero":        "{{ field }} must not be zero",
	"number.positive":        "{{ field }} must be positive",
	"number.negative":        "{{ field }} must be negative",
	"number.odd":             "{{ field }} must be odd",
	"number.even":            "{{ field }} must be even",
	"integer":                "{{ field }} must be an integer",
	"float":                  "{{ field }} must be a float",
	"float.nan":              "{{ field }} must be NaN",
	"float.not_nan":          "{{ field }} must not be NaN",
	"float.without_decimals": "{{ field }} must not have decimals",
	"bool":                   "{{ field }} must be a boolean",
	"bool.true":              "{{ field }} must be true",
	"bool.false":             "{{ field }} must be false",
	"accepted":               "{{ field }} must be accepted",
	"null":                   "{{ field }} must be null",
	"unique":                 "{{ field }} must be unique in {{ table }}",
	"exists":                 "{{ field }} must exist in {{ table }}",
	"unverified":             "{{ field }} could not be verified",
	"same":                   "{{ field }} must match {{ other }}",
	"different":              "{{ field }} must differ from {{ other }}",
	"expr":                   "{{ field }} is invalid",
}

var french = map[string]string{
	"not_nullable":           "{{ field }} ne peut pas être nul",
	"required":               "{{ field }} est requis",
	"schema":                 "{{ field }} doit être un objet",
	"with_key":               "{{ field }} doit contenir la clé {{ key }}",
	"array":                  "{{ field }} doit être un tableau",
	"array.min":              "{{ field }} doit contenir au moins {{ min }} éléments",
	"array.max":              "{{ field }} ne doit pas contenir plus de {{ max }} éléments",
	"array.length":           "{{ field }} doit contenir exactement {{ length }} éléments",
	"array.empty":            "{{ field }} doit être vide",
	"array.not_empty":        "{{ field }} ne doit pas être vide",
	"array.distinct":         "les éléments de {{ field }} doivent être distincts",
	"string":                 "{{ field }} doit être une chaîne",
	"string.min":             "{{ field }} doit compter au moins {{ min }} caractères",
	"string.max":             "{{ field }} ne doit pas dépasser {{ max }} caractères",
	"string.length":          "{{ field }} doit faire exactement {{ length }} caractères",
	"string.prefix":          "{{ field }} doit commencer par {{ prefix }}",
	"string.suffix":          "{{ field }} doit finir par {{ suffix }}",
	"string.contains":        "{{ field }} doit contenir '{{ substring }}'",
	"string.alphabetic":      "{{ field }} ne doit contenir que des lettres",
	"string.numeric":         "{{ field }} ne doit contenir que des chiffres",
	"string.alphanumeric":    "{{ field }} ne doit contenir que des lettres et des chiffres",
	"string.no_whitespace":   "{{ field }} ne doit pas contenir d'espace",
	"string.email":           "{{ field }} doit être un email valide",
	"string.phone":           "{{ field }} doit être un numéro de mobile valide",
	"string.json":            "{{ field }} doit être une chaîne json valide",
	"string.url":             "{{ field }} doit être une url valide",
	"string.active_url":      "{{ field }} doit être une url active",
	"string.credit_card":     "{{ field }} doit être une carte bancaire valide",
	"string.ip":              "{{ field }} doit être une IP valide",
	"string.uuid":            "{{ field }} doit être un UUID valide",
	"string.empty":           "{{ field }} doit être une chaîne vide",
	"string.not_empty":       "{{ field }} ne doit pas être vide",
	"string.pattern":         "{{ field }} doit respecter le format attendu",
	"string.one_of":          "{{ field }} doit valoir l'une des valeurs {{ values }}",
	"number":                 "{{ field }} doit être un entier ou un flottant",
	"number.min":             "{{ field }} doit valoir au moins {{ min }}",
	"number.max":             "{{ field }} doit valoir au plus {{ max }}",
	"number.range":           "{{ field }} doit être compris entre {{ min }} et {{ max }}",
	"number.zero":            "{{ field }} doit être nul",
	"number.non_zero":        "{{ field }} ne doit pas être nul",
	"number.positive":        "{{ field }} doit être positif",
	"number.negative":        "{{ field }} doit être négatif",
	"number.odd":             "{{ field }} doit être impair",
	"number.even":            "{{ field }} doit être pair",
	"integer":                "{{ field }} doit être un entier",
	"float":                  "{{ field }} doit être un flottant",
	"float.nan":              "{{ field }} doit être NaN",
	"float.not_nan":          "{{ field }} ne doit pas être NaN",
	"float.without_decimals": "{{ field }} ne doit pas avoir de décimales",
	"bool":                   "{{ field }} doit être un booléen",
	"bool.true":              "{{ field }} doit être vrai",
	"bool.false":             "{{ field }} doit être faux",
	"accepted":               "{{ field }} doit être accepté",
	"null":                   "{{ field }} doit être nul",
	"unique":                 "{{ field }} doit être unique dans {{ table }}",
	"exists":                 "{{ field }} doit exister dans {{ table }}",
	"unverified":             "{{ field }} n'a pas pu être vérifié",
	"same":                   "{{ field }} doit correspondre à {{ other }}",
	"different":              "{{ field }} doit être différent de {{ other }}",
	"expr":                   "{{ field }} est invalide",
}

// dictTranslator is the built-in dictionary-based Translator. Unknown codes
// fall back to English, then to the code itself.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := "", false
	if t.lang == "fr" {
		tmpl, ok = french[code]
	}
	if !ok {
		tmpl, ok = english[code]
	}
	if !ok {
		return code
	}
	return Render(tmpl, data)
}

var (
	mu                           = sync.RWMutex{}
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"fr").
func SetLanguage(lang string) {
	if lang != "fr" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation. nil restores English.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}

// Render replaces every {{ key }} token of tmpl found in data.
func Render(tmpl string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(tmpl, "{{") {
		return tmpl
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{{ "+k+" }}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
