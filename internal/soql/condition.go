// Package soql builds Salesforce Object Query Language statements from a small condition tree.
// Every value interpolated into a statement goes through Escape.
package soql

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Condition is a WHERE clause fragment. Match evaluates the same predicate against an
// in-memory record so fixtures can be filtered without a live org.
type Condition interface {
	SOQL() string
	Match(record map[string]any) bool
}

type matchAll struct{}

// MatchAll places no restriction on the result set.
var MatchAll Condition = matchAll{}

func (matchAll) SOQL() string              { return "" }
func (matchAll) Match(map[string]any) bool { return true }

// IsMatchAll reports whether c restricts nothing.
func IsMatchAll(c Condition) bool {
	return c == nil || c.SOQL() == ""
}

// Equals compares a field to a string literal.
type Equals struct {
	Field string
	Value string
}

func (e Equals) SOQL() string {
	return fmt.Sprintf("%s = '%s'", e.Field, Escape(e.Value))
}

func (e Equals) Match(record map[string]any) bool {
	v, ok := Lookup(record, e.Field)
	if !ok || v == nil {
		return false
	}
	return stringify(v) == e.Value
}

// In matches a field against a list of string literals.
type In struct {
	Field  string
	Values []string
}

func (in In) SOQL() string {
	quoted := make([]string, 0, len(in.Values))
	for _, v := range in.Values {
		quoted = append(quoted, "'"+Escape(v)+"'")
	}
	return fmt.Sprintf("%s IN (%s)", in.Field, strings.Join(quoted, ","))
}

func (in In) Match(record map[string]any) bool {
	v, ok := Lookup(record, in.Field)
	if !ok || v == nil {
		return false
	}
	s := stringify(v)
	for _, candidate := range in.Values {
		if candidate == s {
			return true
		}
	}
	return false
}

// Contains is a case-insensitive substring match rendered as LIKE '%value%'.
type Contains struct {
	Field string
	Value string
}

func (c Contains) SOQL() string {
	return fmt.Sprintf("%s LIKE '%%%s%%'", c.Field, escapeLike(Escape(c.Value)))
}

func (c Contains) Match(record map[string]any) bool {
	v, ok := Lookup(record, c.Field)
	if !ok || v == nil {
		return false
	}
	return strings.Contains(strings.ToLower(stringify(v)), strings.ToLower(c.Value))
}

// OnOrAfter bounds a datetime field by the start of a calendar day (UTC).
type OnOrAfter struct {
	Field string
	Date  time.Time
}

func (o OnOrAfter) SOQL() string {
	return fmt.Sprintf("%s >= %sT00:00:00Z", o.Field, o.Date.UTC().Format(time.DateOnly))
}

func (o OnOrAfter) Match(record map[string]any) bool {
	t, ok := lookupTime(record, o.Field)
	if !ok {
		return false
	}
	start := time.Date(o.Date.Year(), o.Date.Month(), o.Date.Day(), 0, 0, 0, 0, time.UTC)
	return !t.Before(start)
}

// OnOrBefore bounds a datetime field by the end of a calendar day (UTC).
type OnOrBefore struct {
	Field string
	Date  time.Time
}

func (o OnOrBefore) SOQL() string {
	return fmt.Sprintf("%s <= %sT23:59:59Z", o.Field, o.Date.UTC().Format(time.DateOnly))
}

func (o OnOrBefore) Match(record map[string]any) bool {
	t, ok := lookupTime(record, o.Field)
	if !ok {
		return false
	}
	end := time.Date(o.Date.Year(), o.Date.Month(), o.Date.Day(), 23, 59, 59, 0, time.UTC)
	return !t.After(end)
}

// Or matches when any member matches. It always renders parenthesised.
type Or []Condition

func (o Or) SOQL() string {
	parts := make([]string, 0, len(o))
	for _, c := range o {
		if IsMatchAll(c) {
			return ""
		}
		parts = append(parts, c.SOQL())
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func (o Or) Match(record map[string]any) bool {
	if len(o) == 0 {
		return true
	}
	for _, c := range o {
		if c == nil || c.Match(record) {
			return true
		}
	}
	return false
}

// And matches when every member matches. MatchAll members are dropped.
type And []Condition

func (a And) SOQL() string {
	parts := make([]string, 0, len(a))
	for _, c := range a {
		if IsMatchAll(c) {
			continue
		}
		parts = append(parts, c.SOQL())
	}
	return strings.Join(parts, " AND ")
}

func (a And) Match(record map[string]any) bool {
	for _, c := range a {
		if c != nil && !c.Match(record) {
			return false
		}
	}
	return true
}

var soqlEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// Escape makes a value safe to place inside a single-quoted SOQL literal.
func Escape(value string) string {
	return soqlEscaper.Replace(value)
}

var likeEscaper = strings.NewReplacer(`%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\.[A-Za-z][A-Za-z0-9_]*)*$`)

// ValidIdentifier reports whether name can be used unquoted as a field or object name.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}
