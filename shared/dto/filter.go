package dto

import (
	"fmt"
	"maps"
	"reflect"
	"strings"
)

const (
	FilterOperatorEq        = "eq"
	FilterOperatorLike      = "like"
	FilterOperatorIn        = "in"
	FilterOperatorNotEq     = "not_eq"
	FilterOperatorLessEq    = "less_eq"
	FilterOperatorGreaterEq = "greater_eq"
	FilterIsNotNull         = "is_not_null"
	FilterIsNull            = "is_null"
)

const (
	FilterGroupOperatorAnd = "AND"
	FilterGroupOperatorOr  = "OR"
)

// falseClause matches nothing; an IN over no values renders to it.
const falseClause = "1 = 0"

var comparisons = map[string]string{
	FilterOperatorEq:        "=",
	FilterOperatorNotEq:     "!=",
	FilterOperatorLessEq:    "<=",
	FilterOperatorGreaterEq: ">=",
}

// Filter is one predicate on a column. ArgName overrides the bind name when a
// column appears twice in one query.
type Filter struct {
	ArgName  string
	Field    string
	Value    any
	Operator string `validate:"required,oneof=eq like in not_eq less_eq greater_eq is_null is_not_null"`
	Table    string
}

func (f *Filter) column() string {
	if f.Table == "" {
		return f.Field
	}

	return f.Table + "." + f.Field
}

func (f *Filter) argName() string {
	if f.ArgName == "" {
		return f.Field
	}

	return f.ArgName
}

// GetWhereClause renders the predicate with sqlx named binds. Unknown operators render empty.
func (f *Filter) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}
	column, name := f.column(), f.argName()

	if op, ok := comparisons[f.Operator]; ok {
		args[name] = f.Value

		return fmt.Sprintf("%s %s :%s", column, op, name), args
	}

	switch f.Operator {
	case FilterOperatorLike:
		args[name] = fmt.Sprintf("%%%v%%", f.Value)

		return fmt.Sprintf("LOWER(%s) LIKE LOWER(:%s)", column, name), args
	case FilterOperatorIn:
		return f.inClause(column, name)
	case FilterIsNotNull:
		return column + " IS NOT NULL", args
	case FilterIsNull:
		return column + " IS NULL", args
	default:
		return "", args
	}
}

func (f *Filter) inClause(column, name string) (string, map[string]any) {
	args := map[string]any{}

	val := reflect.ValueOf(f.Value)
	if val.Kind() != reflect.Slice && val.Kind() != reflect.Array {
		args[name] = f.Value

		return fmt.Sprintf("%s IN (:%s)", column, name), args
	}

	if val.Len() == 0 {
		return falseClause, args
	}

	binds := make([]string, val.Len())
	for idx := range val.Len() {
		key := fmt.Sprintf("%s_%d", name, idx)
		args[key] = val.Index(idx).Interface()
		binds[idx] = ":" + key
	}

	return fmt.Sprintf("%s IN (%s)", column, strings.Join(binds, ", ")), args
}

// FilterGroup joins its filters with Operator, AND when empty. Filters holds
// Filter and nested FilterGroup values.
type FilterGroup struct {
	Filters  []any
	Operator string
}

func (f *FilterGroup) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}
	clauses := make([]string, 0, len(f.Filters))

	for _, item := range f.Filters {
		var (
			where string
			arg   map[string]any
		)

		switch fill := item.(type) {
		case Filter:
			where, arg = fill.GetWhereClause()
		case FilterGroup:
			where, arg = fill.GetWhereClause()
		}

		if where == "" {
			continue
		}

		clauses = append(clauses, where)
		maps.Copy(args, arg)
	}

	if len(clauses) == 0 {
		return "", args
	}

	operator := f.Operator
	if operator == "" {
		operator = FilterGroupOperatorAnd
	}

	return "(" + strings.Join(clauses, " "+operator+" ") + ")", args
}
