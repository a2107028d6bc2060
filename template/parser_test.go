package template

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =========================================================================
// Literal input
// =========================================================================

func TestParse_NoPlaceholders(t *testing.T) {
	inputs := []string{
		"",
		"select * from my_table",
		"select * from {} {} {}",
		"select * from $$$$ ????",
		"$ {} ? {}",
		"{ leading brace",
		"closing only }",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			p, err := Parse(in)
			require.NoError(t, err)

			assert.Equal(t, in, p.Text())
			assert.Zero(t, p.NameCount())
			assert.Zero(t, p.FormatCount())
			assert.Zero(t, p.BindCount())
			assert.Empty(t, p.Names())
			assert.Empty(t, p.BindOffsets())

			assert.Empty(t, p.FormatIndexes("from"))
			assert.Empty(t, p.BindIndexes("select"))
		})
	}
}

// =========================================================================
// Syntax errors
// =========================================================================

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		kind   SyntaxErrorKind
		target error
		offset int
	}{
		{"unterminated format", "select * from ${", UnterminatedPlaceholder, ErrUnterminatedPlaceholder, 14},
		{"unterminated bind", "select * from ?{", UnterminatedPlaceholder, ErrUnterminatedPlaceholder, 14},
		{"unterminated format only", "${", UnterminatedPlaceholder, ErrUnterminatedPlaceholder, 0},
		{"unterminated bind only", "?{", UnterminatedPlaceholder, ErrUnterminatedPlaceholder, 0},
		{"unterminated with body", "select ${table", UnterminatedPlaceholder, ErrUnterminatedPlaceholder, 7},
		{"nested format", "select * from ${table ${another_one}}", NestedPlaceholder, ErrNestedPlaceholder, 22},
		{"nested bind", "select * from table where id = ?{name ?{}}", NestedPlaceholder, ErrNestedPlaceholder, 38},
		{"nested mixed", "select * from ${table ?{nested}}", NestedPlaceholder, ErrNestedPlaceholder, 22},
		{"nested at start", "${table ${another}}", NestedPlaceholder, ErrNestedPlaceholder, 8},
		{"empty format", "select * from ${}", EmptyName, ErrEmptyName, 14},
		{"empty bind", "select * from table where id = ?{}", EmptyName, ErrEmptyName, 31},
		{"empty mixed", "select * from ${} where id = ?{}", EmptyName, ErrEmptyName, 14},
		{"empty after modifier", "select ${%d }", EmptyName, ErrEmptyName, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.input)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.True(t, errors.Is(err, tt.target), "expected %v, got %v", tt.target, err)

			var se *SyntaxError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.kind, se.Kind)
			assert.Equal(t, tt.offset, se.Offset)
			assert.Equal(t, tt.input, se.Input)
			assert.Contains(t, err.Error(), tt.input)
		})
	}
}

// =========================================================================
// Format placeholders
// =========================================================================

func TestParse_FormatFirst(t *testing.T) {
	p, err := Parse("${table}")
	require.NoError(t, err)

	assert.Equal(t, "%s", p.Text())
	assert.Equal(t, 1, p.NameCount())
	assert.Equal(t, 1, p.FormatCount())
	assert.Equal(t, 0, p.BindCount())
	assert.Equal(t, []string{"table"}, p.Names())
	assert.Equal(t, []int{0}, p.FormatIndexes("table"))
	assert.Empty(t, p.BindIndexes("table"))
}

func TestParse_FormatMultiple(t *testing.T) {
	p, err := Parse("select ${id} from ${table}")
	require.NoError(t, err)

	assert.Equal(t, "select %s from %s", p.Text())
	assert.Equal(t, []string{"id", "table"}, p.Names())
	assert.Equal(t, 2, p.FormatCount())
	assert.Equal(t, 0, p.BindCount())
	assert.Equal(t, []int{0}, p.FormatIndexes("id"))
	assert.Equal(t, []int{1}, p.FormatIndexes("table"))
}

func TestParse_FormatRepeated(t *testing.T) {
	p, err := Parse("select ${id} from ${table} where ${table} = ${id}")
	require.NoError(t, err)

	assert.Equal(t, "select %s from %s where %s = %s", p.Text())
	assert.Equal(t, 2, p.NameCount())
	assert.Equal(t, 4, p.FormatCount())
	assert.Equal(t, 0, p.BindCount())
	assert.Equal(t, []int{0, 3}, p.FormatIndexes("id"))
	assert.Equal(t, []int{1, 2}, p.FormatIndexes("table"))
}

func TestParse_FormatModifiers(t *testing.T) {
	p, err := Parse("select ${%d id} from ${%.2f id} where ${%S id} = ${id}")
	require.NoError(t, err)

	assert.Equal(t, "select %d from %.2f where %S = %s", p.Text())
	assert.Equal(t, []string{"id"}, p.Names())
	assert.Equal(t, 4, p.FormatCount())
	assert.Equal(t, 0, p.BindCount())
	assert.Equal(t, []int{0, 1, 2, 3}, p.FormatIndexes("id"))
}

func TestParse_FormatModifierKeepsRemainderAsName(t *testing.T) {
	p, err := Parse("${%-10s first name} and ${ leading}")
	require.NoError(t, err)

	assert.Equal(t, "%-10s and %s", p.Text())
	assert.Equal(t, []string{"first name", "leading"}, p.Names())
}

// =========================================================================
// Bind placeholders
// =========================================================================

func TestParse_BindFirst(t *testing.T) {
	p, err := Parse("?{table}")
	require.NoError(t, err)

	assert.Equal(t, "?", p.Text())
	assert.Equal(t, 1, p.NameCount())
	assert.Equal(t, 0, p.FormatCount())
	assert.Equal(t, 1, p.BindCount())
	assert.Equal(t, []int{0}, p.BindIndexes("table"))
	assert.Equal(t, []int{0}, p.BindOffsets())
}

func TestParse_BindMultiple(t *testing.T) {
	p, err := Parse("select * from table where id = ?{id} and name = ?{name}")
	require.NoError(t, err)

	assert.Equal(t, "select * from table where id = ? and name = ?", p.Text())
	assert.Equal(t, 2, p.NameCount())
	assert.Equal(t, 2, p.BindCount())
	assert.Equal(t, 0, p.FormatCount())
	assert.Equal(t, []int{0}, p.BindIndexes("id"))
	assert.Equal(t, []int{1}, p.BindIndexes("name"))
}

func TestParse_BindRepeated(t *testing.T) {
	p, err := Parse("select * from table where id = ?{id} or id = ?{id} " +
		"and name = ?{name} or id = ?{id} or name = ?{name}")
	require.NoError(t, err)

	assert.Equal(t, "select * from table where id = ? or id = ? and name = ? or id = ? or name = ?", p.Text())
	assert.ElementsMatch(t, []string{"id", "name"}, p.Names())
	assert.Equal(t, 5, p.BindCount())
	assert.Equal(t, 0, p.FormatCount())
	assert.Equal(t, []int{0, 1, 3}, p.BindIndexes("id"))
	assert.Equal(t, []int{2, 4}, p.BindIndexes("name"))

	offsets := p.BindOffsets()
	require.Len(t, offsets, 5)
	for _, off := range offsets {
		assert.Equal(t, byte('?'), p.Text()[off])
	}
}

func TestParse_BindNameKeepsSpaces(t *testing.T) {
	p, err := Parse("where id = ?{%d id}")
	require.NoError(t, err)

	assert.Equal(t, "where id = ?", p.Text())
	assert.Equal(t, []int{0}, p.BindIndexes("%d id"))
}

// =========================================================================
// Mixed placeholders
// =========================================================================

func TestParse_MixedMultiple(t *testing.T) {
	p, err := Parse("select * from ${table} where id = ?{id}")
	require.NoError(t, err)

	assert.Equal(t, "select * from %s where id = ?", p.Text())
	assert.Equal(t, 2, p.NameCount())
	assert.Equal(t, 1, p.BindCount())
	assert.Equal(t, 1, p.FormatCount())
	assert.Equal(t, []int{0}, p.BindIndexes("id"))
	assert.Equal(t, []int{0}, p.FormatIndexes("table"))
	assert.Equal(t, []int{28}, p.BindOffsets())
}

func TestParse_MixedRepeated(t *testing.T) {
	p, err := Parse("select * from ${table} where id = ?{id} and ${%S table} = 'table' or id = ?{id}")
	require.NoError(t, err)

	assert.Equal(t, "select * from %s where id = ? and %S = 'table' or id = ?", p.Text())
	assert.Equal(t, 2, p.NameCount())
	assert.Equal(t, 2, p.FormatCount())
	assert.Equal(t, 2, p.BindCount())
	assert.Equal(t, []int{0, 1}, p.FormatIndexes("table"))
	assert.Equal(t, []int{0, 1}, p.BindIndexes("id"))
}

func TestParse_SharedName(t *testing.T) {
	p, err := Parse("select * from ${table} where table_name = ?{table}")
	require.NoError(t, err)

	assert.Equal(t, []string{"table"}, p.Names())
	assert.Equal(t, []int{0}, p.FormatIndexes("table"))
	assert.Equal(t, []int{0}, p.BindIndexes("table"))
}

func TestParse_SingleCharPlaceholder(t *testing.T) {
	p, err := Parse("select * from ${t} where id = ?{i}")
	require.NoError(t, err)

	assert.Equal(t, 2, p.NameCount())
	assert.Equal(t, 1, p.FormatCount())
	assert.Equal(t, 1, p.BindCount())
	assert.Equal(t, []int{0}, p.FormatIndexes("t"))
	assert.Equal(t, []int{0}, p.BindIndexes("i"))
}

func TestParse_TriggerRetracted(t *testing.T) {
	p, err := Parse("$${price} ??{id} {${x}}")
	require.NoError(t, err)

	assert.Equal(t, "$%s ?? {%s}", p.Text())
}

func TestParse_AccessorsReturnCopies(t *testing.T) {
	p, err := Parse("?{a} ${a}")
	require.NoError(t, err)

	idx := p.BindIndexes("a")
	idx[0] = 42
	names := p.Names()
	names[0] = "mutated"

	assert.Equal(t, []int{0}, p.BindIndexes("a"))
	assert.Equal(t, []string{"a"}, p.Names())
}

// =========================================================================
// Properties
// =========================================================================

func TestParse_Properties(t *testing.T) {
	inputs := []string{
		"select ${id} from ${table} where ${table} = ?{id} and x = ?{y}",
		"?{a}?{b}?{a}${c}${%05d c}",
		"update ${t} set a = ?{a}, b = ?{b} where c = ?{c} -- ${comment}",
		"select ${%.3f long name} as ratio, ${ spaced} from t where k = ?{the key}",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			p, err := Parse(in)
			require.NoError(t, err)

			assertContiguous := func(count int, lookup func(string) []int) {
				var all []int
				for _, name := range p.Names() {
					idx := lookup(name)
					for i := 1; i < len(idx); i++ {
						assert.Less(t, idx[i-1], idx[i])
					}
					all = append(all, idx...)
				}
				require.Len(t, all, count)
				seen := make(map[int]bool, count)
				for _, i := range all {
					assert.GreaterOrEqual(t, i, 0)
					assert.Less(t, i, count)
					seen[i] = true
				}
				assert.Len(t, seen, count)
			}

			assertContiguous(p.FormatCount(), p.FormatIndexes)
			assertContiguous(p.BindCount(), p.BindIndexes)

			assert.LessOrEqual(t, p.NameCount(), p.FormatCount()+p.BindCount())
			assert.NotContains(t, p.Text(), "${")
			assert.NotContains(t, p.Text(), "?{")
			assert.Equal(t, p.BindCount(), strings.Count(p.Text(), "?"))
			assert.Equal(t, expectedTextLen(in), len(p.Text()))
		})
	}
}

var placeholderSpan = regexp.MustCompile(`[$?]\{([^{}]*)\}`)

// expectedTextLen is the input length with every placeholder span replaced by
// its marker: `?` for binds, the modifier (or %s) for formats.
func expectedTextLen(input string) int {
	n := len(input)
	for _, m := range placeholderSpan.FindAllStringSubmatch(input, -1) {
		marker := "?"
		if m[0][0] == '$' {
			marker = "%s"
			if sp := strings.IndexByte(m[1], ' '); sp > 0 {
				marker = m[1][:sp]
			}
		}
		n += len(marker) - len(m[0])
	}
	return n
}
