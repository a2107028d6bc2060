// Package format renders the format placeholders of a parsed template.
package format

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter applies printf-style verbs in format to args for the given locale.
type Formatter interface {
	Format(locale language.Tag, format string, args []any) string
}

// FormatterFunc adapts a function to the Formatter interface.
type FormatterFunc func(locale language.Tag, format string, args []any) string

func (f FormatterFunc) Format(locale language.Tag, format string, args []any) string {
	return f(locale, format, args)
}

// Plain formats with fmt.Sprintf and ignores the locale. Numbers are written
// without grouping and with a '.' decimal separator, which is what SQL text
// expects.
var Plain Formatter = FormatterFunc(func(_ language.Tag, format string, args []any) string {
	return fmt.Sprintf(format, args...)
})

// Localized formats like Plain, except that floating-point verbs (%e, %f, %g
// and their upper-case forms) use the locale's decimal separator. Digits are
// never grouped, so `${%d limit}` stays a valid SQL number in every locale.
type Localized struct {
	mu         sync.Mutex
	separators map[language.Tag]string
}

// NewLocalized returns a Localized formatter. The zero value is also usable.
func NewLocalized() *Localized {
	return &Localized{separators: make(map[language.Tag]string)}
}

func (l *Localized) Format(locale language.Tag, format string, args []any) string {
	sep := l.separator(locale)
	if sep == "." {
		return fmt.Sprintf(format, args...)
	}

	localized := make([]any, len(args))
	for i, arg := range args {
		switch arg.(type) {
		case float32, float64:
			localized[i] = localFloat{value: arg, sep: sep}
		default:
			localized[i] = arg
		}
	}
	return fmt.Sprintf(format, localized...)
}

// separator returns the decimal separator of locale, taken from what an
// x/text printer writes between the digits of 1.5.
func (l *Localized) separator(locale language.Tag) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if sep, ok := l.separators[locale]; ok {
		return sep
	}
	if l.separators == nil {
		l.separators = make(map[language.Tag]string)
	}

	sep := "."
	s := message.NewPrinter(locale).Sprintf("%.1f", 1.5)
	_, first := utf8.DecodeRuneInString(s)
	_, last := utf8.DecodeLastRuneInString(s)
	if len(s) > first+last {
		sep = s[first : len(s)-last]
	}
	l.separators[locale] = sep
	return sep
}

type localFloat struct {
	value any
	sep   string
}

func (f localFloat) Format(st fmt.State, verb rune) {
	s := fmt.Sprintf(fmt.FormatString(st, verb), f.value)
	switch verb {
	case 'e', 'E', 'f', 'F', 'g', 'G':
		s = strings.Replace(s, ".", f.sep, 1)
	}
	_, _ = io.WriteString(st, s)
}
