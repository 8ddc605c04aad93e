package result

import (
	"cmp"
	"strings"

	"github.com/bastiangx/rankserve/pkg/match"
)

// Comparator orders matches by demoted relevance for one page classification.
type Comparator struct {
	demotions map[match.Type]float64
}

// NewComparator builds a comparator from the demotions that apply on page.
func NewComparator(table DemotionTable, page match.PageClassification) Comparator {
	return Comparator{demotions: table.For(page)}
}

// DemotedRelevance is m's relevance after the page's type multiplier. It is
// used for ordering only and never stored on the match.
func (c Comparator) DemotedRelevance(m *match.Match) int {
	if mult, ok := c.demotions[m.Type]; ok {
		return int(float64(m.Relevance) * mult)
	}
	return m.Relevance
}

// Compare sorts higher demoted relevance first. Equal scores fall back to
// the stripped destination, then the raw one, so equal matches keep a
// stable order across passes.
func (c Comparator) Compare(a, b *match.Match) int {
	return cmp.Or(
		cmp.Compare(c.DemotedRelevance(b), c.DemotedRelevance(a)),
		strings.Compare(a.StrippedDestination, b.StrippedDestination),
		strings.Compare(a.Destination, b.Destination),
	)
}
