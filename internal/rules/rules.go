// Package rules answers field visibility and validation questions against a value store.
// Every function here is pure: it reads the store and never writes to it.
package rules

import (
	"fmt"
	"strings"

	"resolution-backend/internal/shared/util"
	"resolution-backend/internal/templates"
	"resolution-backend/internal/values"
)

// IsVisible reports whether a field's visibility condition holds.
func IsVisible(store *values.Store, field templates.Field) bool {
	return Holds(store, field.VisibleIf)
}

// Holds evaluates a condition. A nil condition always holds.
func Holds(store *values.Store, cond *templates.Condition) bool {
	if cond == nil {
		return true
	}
	v, ok := store.Lookup(cond.Field)
	if !ok {
		return false
	}
	switch {
	case cond.Includes != nil:
		return Includes(v, *cond.Includes)
	case cond.Equals != nil:
		return scalarEqual(v, *cond.Equals)
	default:
		return true
	}
}

// Includes reports whether an array value holds a scalar whose text equals needle.
func Includes(v values.Value, needle string) bool {
	items, ok := v.AsArray()
	if !ok {
		return false
	}
	for _, item := range items {
		switch item.Kind() {
		case values.KindString, values.KindNumber, values.KindBool:
			if item.Text() == needle {
				return true
			}
		}
	}
	return false
}

func scalarEqual(v, literal values.Value) bool {
	switch literal.Kind() {
	case values.KindString, values.KindNumber, values.KindBool:
		return values.Equal(v, literal)
	default:
		return false
	}
}

// IsEmpty reports whether a value counts as unanswered. Zero and false are answers.
func IsEmpty(v values.Value) bool {
	switch v.Kind() {
	case values.KindNull:
		return true
	case values.KindString:
		s, _ := v.AsString()
		return strings.TrimSpace(s) == ""
	case values.KindArray, values.KindObject:
		return v.Len() == 0
	default:
		return false
	}
}

// ValidateField returns the error messages for one field. Invisible fields never fail.
func ValidateField(tpl *templates.Template, store *values.Store, field templates.Field) []string {
	if !IsVisible(store, field) {
		return nil
	}

	var errs []string
	value, _ := store.Lookup(field.ID)
	label := labelOf(field)

	if field.Required && IsEmpty(value) {
		errs = append(errs, fmt.Sprintf("%s is required.", label))
	} else if field.MinItems > 0 {
		if items, ok := value.AsArray(); ok && len(items) > 0 && len(items) < field.MinItems {
			errs = append(errs, fmt.Sprintf("%s requires at least %d entries.", label, field.MinItems))
		}
	}

	if field.Validate == nil {
		return errs
	}

	if other := field.Validate.NotEqualField; other != "" {
		otherValue, _ := store.Lookup(other)
		if !IsEmpty(value) && !IsEmpty(otherValue) && sameAnswer(value, otherValue) {
			msg := field.Validate.NotEqualMessage
			if msg == "" {
				msg = fmt.Sprintf("%s must differ from %s", label, tpl.LabelFor(other))
			}
			errs = append(errs, msg)
		}
	}

	if other := field.Validate.GTEField; other != "" {
		otherValue, _ := store.Lookup(other)
		if before(value, otherValue) {
			msg := field.Validate.GTEMessage
			if msg == "" {
				msg = fmt.Sprintf("%s must be on/after %s", label, tpl.LabelFor(other))
			}
			errs = append(errs, msg)
		}
	}

	return errs
}

// Validate checks every field in template order and accumulates all messages.
func Validate(tpl *templates.Template, store *values.Store) []string {
	var errs []string
	for _, field := range tpl.Fields {
		errs = append(errs, ValidateField(tpl, store, field)...)
	}
	return errs
}

// sameAnswer compares objects by their id member and everything else directly.
func sameAnswer(a, b values.Value) bool {
	if a.Kind() == values.KindObject && b.Kind() == values.KindObject {
		aid, aok := a.Field("id")
		bid, bok := b.Field("id")
		if !aok || !bok {
			return values.Equal(a, b)
		}
		return values.Equal(aid, bid)
	}
	return values.Equal(a, b)
}

// before reports whether a's calendar date is strictly earlier than b's.
// Empty or unparseable sides skip the comparison.
func before(a, b values.Value) bool {
	as, aok := a.AsString()
	bs, bok := b.AsString()
	if !aok || !bok || strings.TrimSpace(as) == "" || strings.TrimSpace(bs) == "" {
		return false
	}
	ad, aok := util.ParseCalendarDate(as)
	bd, bok := util.ParseCalendarDate(bs)
	if !aok || !bok {
		return false
	}
	return ad.Before(bd)
}

func labelOf(f templates.Field) string {
	if f.Label != "" {
		return f.Label
	}
	return f.ID
}
