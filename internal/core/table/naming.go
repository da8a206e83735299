// Package table contains the pure business logic for generator table metadata:
// deriving names from live tables and guarding manual edits.
package table

import (
	"regexp"
	"strings"
	"unicode"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsValidIdentifier reports whether s is a plain SQL/Go identifier.
func IsValidIdentifier(s string) bool {
	return identifierRe.MatchString(s)
}

// Names holds the derived names of an imported table.
type Names struct {
	EntityName   string // PascalCase: "DemoOrder"
	ModuleName   string // last underscore segment: "order"
	FunctionName string // human label taken from the comment
}

// DeriveNames derives entity, module and function names for a live table.
// prefix is stripped from the table name before building the entity name.
func DeriveNames(tableName, tableComment, prefix string) Names {
	entity := ToPascalCase(StripPrefix(tableName, prefix))
	function := FunctionName(tableComment)
	if function == "" {
		function = entity
	}
	return Names{
		EntityName:   entity,
		ModuleName:   ModuleName(tableName),
		FunctionName: function,
	}
}

// StripPrefix removes prefix from name when present and something remains.
func StripPrefix(name, prefix string) string {
	if prefix == "" || !strings.HasPrefix(name, prefix) || len(name) == len(prefix) {
		return name
	}
	return name[len(prefix):]
}

// ModuleName returns the last underscore-delimited segment of tableName.
// A segment that is not an identifier, such as "2024" in "log_2024", falls
// back to the whole lower-cased table name.
func ModuleName(tableName string) string {
	trimmed := strings.TrimRight(tableName, "_")
	module := strings.ToLower(trimmed)
	if i := strings.LastIndexByte(trimmed, '_'); i >= 0 {
		module = strings.ToLower(trimmed[i+1:])
	}
	if !IsValidIdentifier(module) {
		return strings.ToLower(tableName)
	}
	return module
}

// FunctionName strips a trailing "table" word (or 表) from a table comment.
func FunctionName(comment string) string {
	s := strings.TrimSpace(comment)
	s = strings.TrimSuffix(s, "表")
	if len(s) >= len("table") && strings.EqualFold(s[len(s)-len("table"):], "table") {
		head := s[:len(s)-len("table")]
		// only a whole word: "Order table", not "Timetable"
		if head == "" || strings.HasSuffix(head, " ") {
			s = head
		}
	}
	return strings.TrimSpace(s)
}

// ToPascalCase converts a string to PascalCase.
func ToPascalCase(s string) string {
	words := splitWords(s)
	for i, word := range words {
		words[i] = capitalize(strings.ToLower(word))
	}
	return strings.Join(words, "")
}

// ToCamelCase converts a string to camelCase.
func ToCamelCase(s string) string {
	pascal := ToPascalCase(s)
	if len(pascal) == 0 {
		return pascal
	}
	return strings.ToLower(pascal[:1]) + pascal[1:]
}

// ToSnakeCase converts a string to snake_case.
func ToSnakeCase(s string) string {
	words := splitWords(s)
	for i, word := range words {
		words[i] = strings.ToLower(word)
	}
	return strings.Join(words, "_")
}

// ToKebabCase converts a string to kebab-case.
func ToKebabCase(s string) string {
	return strings.ReplaceAll(ToSnakeCase(s), "_", "-")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// splitWords splits a string into words (handles camelCase, PascalCase, snake_case, kebab-case).
func splitWords(s string) []string {
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")

	var result strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			prev := rune(s[i-1])
			if !unicode.IsSpace(prev) && !unicode.IsUpper(prev) {
				result.WriteRune(' ')
			}
		}
		result.WriteRune(r)
	}

	return strings.Fields(result.String())
}
