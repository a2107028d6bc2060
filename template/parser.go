// Package template scans SQL templates for named placeholders.
//
// Two placeholder families are recognised:
//
//	${name}          format placeholder, written as %s
//	${%.2f name}     format placeholder with an explicit modifier
//	?{name}          bind placeholder, written as ?
//
// Every occurrence gets an index among all placeholders of its family, which is
// the slot its value fills in the positional argument list.
package template

import "strings"

type placeholderKind uint8

const (
	kindNone placeholderKind = iota
	kindFormat
	kindBind
)

const defaultModifier = "%s"

// Parse scans input once. It fails with a *SyntaxError when placeholders are
// nested, have an empty name or are left open.
func Parse(input string) (*Parsed, error) {
	p := &Parsed{
		formatIndexes: make(map[string][]int, 3),
		bindIndexes:   make(map[string][]int, 3),
	}
	seen := make(map[string]struct{}, 3)

	out := make([]byte, 0, len(input))
	start := -1
	kind := kindNone

	for i := 0; i < len(input); i++ {
		c := input[i]

		switch {
		case c == '{':
			trigger := kindNone
			if i > 0 {
				switch input[i-1] {
				case '$':
					trigger = kindFormat
				case '?':
					trigger = kindBind
				}
			}
			if trigger == kindNone {
				if start == -1 {
					out = append(out, c)
				}
				continue
			}
			if start != -1 {
				return nil, newSyntaxError(NestedPlaceholder, input, i-1)
			}
			start = i - 1
			kind = trigger
			// the trigger byte was copied on the previous iteration
			out = out[:len(out)-1]

		case c == '}' && start != -1:
			body := input[start+2 : i]
			if body == "" {
				return nil, newSyntaxError(EmptyName, input, start)
			}

			var name string
			if kind == kindBind {
				name = body
				p.bindOffsets = append(p.bindOffsets, len(out))
				p.bindIndexes[name] = append(p.bindIndexes[name], p.bindCount)
				p.bindCount++
				out = append(out, '?')
			} else {
				modifier := defaultModifier
				name = body
				if sp := strings.IndexByte(body, ' '); sp >= 0 {
					if sp > 0 {
						modifier = body[:sp]
					}
					name = body[sp+1:]
				}
				if name == "" {
					return nil, newSyntaxError(EmptyName, input, start)
				}
				p.formatIndexes[name] = append(p.formatIndexes[name], p.formatCount)
				p.formatCount++
				out = append(out, modifier...)
			}

			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				p.names = append(p.names, name)
			}

			start = -1
			kind = kindNone

		case start == -1:
			out = append(out, c)
		}
	}

	if start != -1 {
		return nil, newSyntaxError(UnterminatedPlaceholder, input, start)
	}

	p.text = string(out)
	return p, nil
}
