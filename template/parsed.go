package template

import "slices"

// Parsed is the result of scanning a template once. It is immutable: every
// accessor returns a copy.
type Parsed struct {
	text string

	formatIndexes map[string][]int
	bindIndexes   map[string][]int

	formatCount int
	bindCount   int

	names       []string
	bindOffsets []int
}

// Text returns the template with every bind placeholder replaced by `?` and
// every format placeholder replaced by its modifier (`%s` by default).
func (p *Parsed) Text() string { return p.text }

// FormatIndexes returns the positions of name among all format placeholders,
// in appearance order. Unknown names yield an empty slice.
func (p *Parsed) FormatIndexes(name string) []int {
	return indexesOf(p.formatIndexes, name)
}

// BindIndexes returns the positions of name among all bind placeholders,
// in appearance order. Unknown names yield an empty slice.
func (p *Parsed) BindIndexes(name string) []int {
	return indexesOf(p.bindIndexes, name)
}

// FormatCount is the number of format placeholders.
func (p *Parsed) FormatCount() int { return p.formatCount }

// BindCount is the number of bind placeholders.
func (p *Parsed) BindCount() int { return p.bindCount }

// NameCount is the number of distinct placeholder names over both families.
func (p *Parsed) NameCount() int { return len(p.names) }

// Names returns the distinct placeholder names in order of first appearance.
func (p *Parsed) Names() []string { return slices.Clone(p.names) }

// BindOffsets returns the byte offset in Text of each `?` written for a bind
// placeholder, ordered by bind index.
func (p *Parsed) BindOffsets() []int { return slices.Clone(p.bindOffsets) }

func indexesOf(m map[string][]int, name string) []int {
	idx, ok := m[name]
	if !ok {
		return []int{}
	}
	return slices.Clone(idx)
}

// Has reports whether name appears in either placeholder family.
func (p *Parsed) Has(name string) bool {
	_, f := p.formatIndexes[name]
	_, b := p.bindIndexes[name]
	return f || b
}
