// Package sqltmpl builds SQL statements from templates with named placeholders.
//
// Two kinds of named arguments are supported:
//
//	${name}, ${modifier name}   substituted into the SQL text (printf-style)
//	?{name}                     replaced by a positional `?`, value returned separately
//
// For example:
//
//	stmt := sqltmpl.New("select ${columns} from ${table} where id = ?{id}").
//		Bind("columns", "id, name, time").
//		Bind("table", "my_table").
//		Bind("id", 33)
//	query, args, err := stmt.Build()
//	// query: select id, name, time from my_table where id = ?
//	// args:  [33]
//
// Names are shared between both kinds, so `select * from ${table} where
// table_name = ?{table}` needs a single binding. The template is parsed lazily:
// syntax errors surface from SQL, BindArgs or Build, not from New.
//
// A Statement is not safe for concurrent use.
package sqltmpl

import (
	"database/sql"
	"reflect"
	"slices"
	"sort"

	"github.com/Konsultn-Engineering/sqltmpl/dialect"
	"github.com/Konsultn-Engineering/sqltmpl/format"
	"github.com/Konsultn-Engineering/sqltmpl/template"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
)

type Statement struct {
	input     string
	locale    language.Tag
	localized bool
	formatter format.Formatter
	dialect   dialect.Dialect

	parsed   *template.Parsed
	parseErr error

	bindings map[string]any
	dirty    bool

	sql  string
	args []any
}

// New returns a Statement for input. Formatting uses DefaultLocale unless
// WithLocale is given.
func New(input string, opts ...Option) *Statement {
	s := &Statement{
		input:  input,
		locale: DefaultLocale,
		dirty:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.formatter == nil {
		if s.localized {
			s.formatter = format.NewLocalized()
		} else {
			s.formatter = format.Plain
		}
	}
	return s
}

// FromNullable is New for templates read from a nullable source. It fails with
// ErrNullInput when input is not valid.
func FromNullable(input sql.NullString, opts ...Option) (*Statement, error) {
	if !input.Valid {
		return nil, errors.WithStack(ErrNullInput)
	}
	return New(input.String, opts...), nil
}

// Bind sets the value of a named argument, replacing any previous value. A nil
// value is a valid binding. Names are checked against the template only when
// the statement is built.
func (s *Statement) Bind(name string, value any) *Statement {
	if s.bindings == nil {
		s.bindings = make(map[string]any, 3)
	}
	s.bindings[name] = value
	s.dirty = true
	return s
}

// BindValues binds every entry of values.
func (s *Statement) BindValues(values map[string]any) *Statement {
	for name, value := range values {
		s.Bind(name, value)
	}
	return s
}

// ClearBindings removes all bound values. The parsed template is kept.
func (s *Statement) ClearBindings() {
	clear(s.bindings)
	s.dirty = true
}

// SQL returns the statement with every placeholder substituted. A template
// without named arguments is returned unchanged.
func (s *Statement) SQL() (string, error) {
	if err := s.resolve(); err != nil {
		return "", err
	}
	return s.sql, nil
}

// BindArgs returns the bind arguments in marker order, or nil when the template
// has no bind placeholders.
func (s *Statement) BindArgs() ([]any, error) {
	if err := s.resolve(); err != nil {
		return nil, err
	}
	return slices.Clone(s.args), nil
}

// Build returns both the SQL text and its bind arguments.
func (s *Statement) Build() (string, []any, error) {
	if err := s.resolve(); err != nil {
		return "", nil, err
	}
	return s.sql, slices.Clone(s.args), nil
}

// BuildFor is Build with the bind markers written for d, overriding any
// WithDialect option. The result is memoized until the dialect or the bindings
// change.
func (s *Statement) BuildFor(d dialect.Dialect) (string, []any, error) {
	if !sameDialect(s.dialect, d) {
		s.dialect = d
		s.dirty = true
	}
	return s.Build()
}

// sameDialect compares dialects by identity; dialects of non-comparable types
// are never considered the same.
func sameDialect(a, b dialect.Dialect) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	return ta == tb && ta.Comparable() && a == b
}

// Parsed returns the parsed template. The template is parsed once per Statement.
func (s *Statement) Parsed() (*template.Parsed, error) {
	if s.parsed == nil && s.parseErr == nil {
		s.parsed, s.parseErr = template.Parse(s.input)
	}
	return s.parsed, s.parseErr
}

// Input returns the template the statement was created with.
func (s *Statement) Input() string { return s.input }

// Locale returns the locale handed to the formatter.
func (s *Statement) Locale() language.Tag { return s.locale }

func (s *Statement) resolve() error {
	if !s.dirty {
		return nil
	}

	p, err := s.Parsed()
	if err != nil {
		return err
	}

	query, args, err := s.apply(p)
	if err != nil {
		return err
	}

	s.sql = query
	s.args = args
	s.dirty = false
	return nil
}

func (s *Statement) apply(p *template.Parsed) (string, []any, error) {
	if p.NameCount() == 0 {
		if len(s.bindings) > 0 {
			return "", nil, bindingError(ErrUnexpectedBinding, s.input, nil, s.boundNames())
		}
		return s.input, nil, nil
	}

	if len(s.bindings) == 0 {
		return "", nil, bindingError(ErrMissingBindings, s.input, p.Names(), nil)
	}
	if len(s.bindings) != p.NameCount() {
		return "", nil, s.mismatch(p)
	}

	formatCount, bindCount := p.FormatCount(), p.BindCount()

	var formatArgs, bindArgs []any
	if formatCount > 0 {
		formatArgs = make([]any, formatCount)
	}
	if bindCount > 0 {
		bindArgs = make([]any, bindCount)
	}

	formatted, bound := 0, 0
	for name, value := range s.bindings {
		for _, i := range p.FormatIndexes(name) {
			formatArgs[i] = value
			formatted++
		}
		for _, i := range p.BindIndexes(name) {
			bindArgs[i] = value
			bound++
		}
	}

	if formatted != formatCount || bound != bindCount {
		return "", nil, s.mismatch(p)
	}

	query := dialect.Rebind(s.dialect, p.Text(), p.BindOffsets())
	if formatCount > 0 {
		query = s.formatter.Format(s.locale, query, formatArgs)
	}
	return query, bindArgs, nil
}

// mismatch lists the template names without a non-nil value, and the bound
// names the template does not know.
func (s *Statement) mismatch(p *template.Parsed) error {
	var missing []string
	for _, name := range p.Names() {
		if s.bindings[name] == nil {
			missing = append(missing, name)
		}
	}

	var unknown []string
	for _, name := range s.boundNames() {
		if !p.Has(name) {
			unknown = append(unknown, name)
		}
	}
	return bindingError(ErrBindingMismatch, s.input, missing, unknown)
}

func (s *Statement) boundNames() []string {
	names := make([]string, 0, len(s.bindings))
	for name := range s.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
