package i18n

import (
	"sort"
	"strings"
)

// Translator retrieves localized messages for Issue codes.
// data fills {placeholders} in the message (for example "min" or "species").
type Translator interface {
	Message(code string, data map[string]string) string
}

var dictionaries = map[string]map[string]string{
	"en": {
		"required":                     "This field is required.",
		"invalid_format":               "Invalid array format. Use JSON format, e.g., {example}.",
		"too_short":                    "Array must have at least {min} items.",
		"too_long":                     "Array must have at most {max} items.",
		"invalid_element":              "Element {index} must be {expected}.",
		"invalid_type":                 "Value must be {expected}.",
		"invalid_enum":                 "Value must be one of: {allowed}.",
		"too_small":                    "Value must be {op} {limit}.",
		"too_big":                      "Value must be {op} {limit}.",
		"cross_entry":                  "{detail}",
		"unresolved_ref":               "Schema reference {ref} could not be resolved.",
		"discriminator_unknown":        "Unknown {field} {value}.",
		"malformed_path":               "Malformed field path.",
		"index_out_of_range":           "Index is out of range.",
		"no_electron":                  "Exactly one electron species is required; found {count}.",
		"undefined_species":            "{field} refers to undefined species {species}.",
		"ionization_needs_ions":        "Ionization requires ions to be enabled.",
		"ionization_no_models":         "Ionization requires at least one ionization model.",
		"electron_charge":              "{field} must be unset for electron species.",
		"fixed_charge_with_ionization": "{field} must be unset while ionization is modeled.",
		"ph_field":                     "Enter a value for {field}",
		"ph_boolean":                   "Select true or false",
		"ph_number":                    "Enter a number. Example: 1.5",
		"ph_integer":                   "Enter an integer. Example: 42",
		"ph_enum":                      "Choose one of: {allowed}. Example: {example}",
		"ph_string":                    "Enter a string. Example: Hello",
	},
	"ja": {
		"required":                     "必須項目です。",
		"invalid_format":               "配列の形式が不正です。JSON 形式で入力してください（例: {example}）。",
		"too_short":                    "{min} 個以上の要素が必要です。",
		"too_long":                     "要素は {max} 個以下にしてください。",
		"invalid_element":              "要素 {index} は {expected} である必要があります。",
		"invalid_type":                 "値は {expected} である必要があります。",
		"invalid_enum":                 "次のいずれかを指定してください: {allowed}",
		"too_small":                    "値は {limit} {op} にしてください。",
		"too_big":                      "値は {limit} {op} にしてください。",
		"cross_entry":                  "{detail}",
		"unresolved_ref":               "スキーマ参照 {ref} を解決できません。",
		"discriminator_unknown":        "{field} {value} は未知の種別です。",
		"malformed_path":               "フィールドパスが不正です。",
		"index_out_of_range":           "インデックスが範囲外です。",
		"no_electron":                  "電子種はちょうど 1 つ必要です（現在 {count} 個）。",
		"undefined_species":            "{field} が未定義の種 {species} を参照しています。",
		"ionization_needs_ions":        "電離を有効にするにはイオンを有効にしてください。",
		"ionization_no_models":         "電離モデルが 1 つ以上必要です。",
		"electron_charge":              "電子種では {field} を設定できません。",
		"fixed_charge_with_ionization": "電離をモデル化している間は {field} を設定できません。",
		"ph_field":                     "{field} の値を入力してください",
		"ph_boolean":                   "true か false を選択してください",
		"ph_number":                    "数値を入力してください。例: 1.5",
		"ph_integer":                   "整数を入力してください。例: 42",
		"ph_enum":                      "次から選択してください: {allowed}。例: {example}",
		"ph_string":                    "文字列を入力してください。例: Hello",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		msg, ok = dictionaries["en"][code]
	}
	if !ok {
		return code
	}
	return fill(msg, data)
}

// fill substitutes {key} markers. Keys are applied longest first so {min}
// never clobbers a hypothetical {minimum}.
func fill(msg string, data map[string]string) string {
	if len(data) == 0 {
		return msg
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", data[k])
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// Dictionary returns the built-in Translator for lang ("en" or "ja"; anything
// else falls back to "en").
func Dictionary(lang string) Translator {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	return dictTranslator{lang: lang}
}

// Or returns tr, or the English dictionary when tr is nil. There is no
// process-wide translator; callers hold their own.
func Or(tr Translator) Translator {
	if tr == nil {
		return dictTranslator{lang: "en"}
	}
	return tr
}
