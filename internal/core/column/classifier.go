// Package column contains the pure business logic for classifying live
// columns into generator semantics.
// Classify is a pure function: the same descriptor always yields the same result.
package column

import (
	"strconv"
	"strings"
)

// Logical types.
const (
	TypeString = "string"
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeDate   = "date"
)

// Widget (html) types.
const (
	HTMLInput       = "input"
	HTMLTextarea    = "textarea"
	HTMLSelect      = "select"
	HTMLRadio       = "radio"
	HTMLCheckbox    = "checkbox"
	HTMLDatetime    = "datetime"
	HTMLImageUpload = "imageUpload"
	HTMLFileUpload  = "fileUpload"
	HTMLEditor      = "editor"
)

// Query operators.
const (
	QueryEQ   = "="
	QueryLike = "LIKE"
)

// TextareaThreshold is the declared length at which character columns become textareas.
const TextareaThreshold = 500

var (
	charTypes = set("char", "varchar", "nvarchar", "varchar2", "character varying", "bpchar")
	textTypes = set("tinytext", "text", "mediumtext", "longtext")
	timeTypes = set("datetime", "time", "date", "timestamp", "timestamptz", "timetz")
	numTypes  = set("tinyint", "smallint", "mediumint", "int", "integer", "bigint",
		"float", "double", "decimal", "numeric", "real", "bit",
		"int2", "int4", "int8", "float4", "float8", "serial", "bigserial", "smallserial")

	floatTypes = set("float", "double", "real", "float4", "float8")

	timeNames = set("create_time", "update_time", "delete_time", "start_time", "end_time")

	// auditNames are dates whatever their declared type.
	auditNames = set("create_time", "update_time", "delete_time")

	notAdd   = set("id", "is_delete", "create_time", "update_time", "delete_time")
	notEdit  = set("is_delete", "create_time", "update_time", "delete_time")
	notList  = set("id", "intro", "content", "is_delete", "create_time", "update_time", "delete_time")
	notQuery = set("id", "is_delete", "create_time", "update_time", "delete_time")

	logicalTypes = set(TypeString, TypeInt, TypeFloat, TypeDate)
	htmlTypes    = set(HTMLInput, HTMLTextarea, HTMLSelect, HTMLRadio, HTMLCheckbox,
		HTMLDatetime, HTMLImageUpload, HTMLFileUpload, HTMLEditor)
	queryTypes = set(QueryEQ, QueryLike)
)

// IsLogicalType reports whether v is a known logical type.
func IsLogicalType(v string) bool { return logicalTypes[v] }

// IsHTMLType reports whether v is a known widget type.
func IsHTMLType(v string) bool { return htmlTypes[v] }

// IsQueryType reports whether v is a known query operator.
func IsQueryType(v string) bool { return queryTypes[v] }

// Descriptor is a live column as reported by the catalog.
type Descriptor struct {
	Name       string
	RawType    string // e.g. "varchar(100)", "decimal(10,2) unsigned"
	IsPk       bool
	IsRequired bool // NOT NULL and not primary key
}

// Classification is the derived generator semantics of one column.
type Classification struct {
	BaseType     string
	Length       int
	Scale        int
	HasScale     bool
	LogicalType  string
	HTMLType     string
	QueryType    string
	IsRequired   bool
	IsInsertable bool
	IsEditable   bool
	IsListable   bool
	IsQueryable  bool
}

// Classify maps a live column to its logical type, widget, query operator and CRUD flags.
// Rules are evaluated in a fixed order; later rules override earlier ones.
func Classify(d Descriptor) Classification {
	name := strings.ToLower(d.Name)
	base, length, scale, hasScale := ParseType(d.RawType)

	c := Classification{
		BaseType:    base,
		Length:      length,
		Scale:       scale,
		HasScale:    hasScale,
		LogicalType: TypeString,
		HTMLType:    HTMLInput,
		QueryType:   QueryEQ,
		IsRequired:  d.IsRequired,
	}

	// Audit timestamps win over a character declaration.
	isChar := charTypes[base] || textTypes[base]
	switch {
	case isChar && !auditNames[name]:
		c.LogicalType = TypeString
		if length >= TextareaThreshold || textTypes[base] {
			c.HTMLType = HTMLTextarea
		}
	case timeTypes[base] || timeNames[name]:
		c.LogicalType = TypeDate
		c.HTMLType = HTMLDatetime
	case numTypes[base]:
		c.HTMLType = HTMLInput
		if hasScale || floatTypes[base] {
			c.LogicalType = TypeFloat
		} else {
			c.LogicalType = TypeInt
		}
	}

	if hasAnySuffix(name, "name", "title", "mobile") {
		c.QueryType = QueryLike
	}

	switch {
	case strings.HasSuffix(name, "status") || name == "is_show" || name == "is_disable":
		c.HTMLType = HTMLRadio
	case hasAnySuffix(name, "type", "sex"):
		c.HTMLType = HTMLSelect
	case strings.HasSuffix(name, "image"):
		c.HTMLType = HTMLImageUpload
	case strings.HasSuffix(name, "file"):
		c.HTMLType = HTMLFileUpload
	case strings.HasSuffix(name, "content"):
		c.HTMLType = HTMLEditor
	}

	c.IsInsertable = !notAdd[name]
	c.IsEditable = !notEdit[name]
	if !c.IsEditable {
		c.IsRequired = false
	}
	c.IsListable = !notList[name] && !d.IsPk
	c.IsQueryable = !notQuery[name] && !d.IsPk

	return c
}

// ParseType splits a raw declared type into base type, length and scale.
// "decimal(10,2) unsigned" -> ("decimal", 10, 2, true).
func ParseType(raw string) (base string, length, scale int, hasScale bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	open := strings.IndexByte(raw, '(')
	if open < 0 {
		return firstWords(raw), 0, 0, false
	}

	base = strings.TrimSpace(raw[:open])
	closing := strings.IndexByte(raw[open:], ')')
	if closing < 0 {
		return base, 0, 0, false
	}

	parts := strings.Split(raw[open+1:open+closing], ",")
	length, _ = strconv.Atoi(strings.TrimSpace(parts[0]))
	if len(parts) == 2 {
		scale, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
		hasScale = true
	}
	return base, length, scale, hasScale
}

// firstWords drops trailing modifiers ("int unsigned" -> "int") but keeps
// multi-word base types like "character varying".
func firstWords(raw string) string {
	for _, multi := range []string{"character varying", "double precision", "timestamp with time zone", "timestamp without time zone"} {
		if strings.HasPrefix(raw, multi) {
			switch multi {
			case "double precision":
				return "double"
			case "timestamp with time zone", "timestamp without time zone":
				return "timestamp"
			}
			return multi
		}
	}
	if i := strings.IndexByte(raw, ' '); i >= 0 {
		return raw[:i]
	}
	return raw
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, item := range items {
		m[item] = true
	}
	return m
}
