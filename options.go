package sqltmpl

import (
	"github.com/Konsultn-Engineering/sqltmpl/dialect"
	"github.com/Konsultn-Engineering/sqltmpl/format"
	"golang.org/x/text/language"
)

// DefaultLocale is used for formatting when no locale is given.
var DefaultLocale = language.AmericanEnglish

type Option func(*Statement)

// WithLocale sets the locale handed to the formatter. Unless WithFormatter is
// also given, format placeholders are then rendered by a format.Localized
// formatter, so `${%.2f ratio}` follows the locale's decimal separator.
func WithLocale(locale language.Tag) Option {
	return func(s *Statement) {
		s.locale = locale
		s.localized = true
	}
}

// WithFormatter replaces the formatter used for format placeholders.
func WithFormatter(f format.Formatter) Option {
	return func(s *Statement) {
		s.formatter = f
	}
}

// WithDialect rewrites bind markers into the dialect's positional form, e.g.
// `$1, $2` for Postgres. Without it the SQL keeps `?` markers. Markers are
// rewritten before format placeholders are rendered.
func WithDialect(d dialect.Dialect) Option {
	return func(s *Statement) {
		s.dialect = d
	}
}
