// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kinship

import (
	"fmt"

	"github.com/pdiddy/kinpath/pkg/types"
)

// Supported label locales.
const (
	LocaleEnglish    = "en"
	LocalePortuguese = "pt"
)

// Classify turns the two generation distances to the meeting point into a
// Degree. d1 counts steps from the start person up to the meeting point and
// d2 from the meeting point down to the end person. Rules are applied in
// order and the first match wins.
func Classify(d1, d2 int) types.Degree {
	deg := types.Degree{D1: d1, D2: d2}
	switch {
	case d1 == 0 && d2 == 0:
		deg.Kind = types.DegreeSelf
	case d1 == 0:
		deg.Kind, deg.Generations = types.DegreeAscendant, d2
	case d2 == 0:
		deg.Kind, deg.Generations = types.DegreeDescendant, d1
	case d1 == 1 && d2 == 1:
		deg.Kind = types.DegreeSiblings
	default:
		c := min(d1, d2) - 1
		r := abs(d1 - d2)
		deg.Removed = r
		switch {
		case c >= 1:
			deg.Kind, deg.Cousin = types.DegreeCousin, c
		case r == 1:
			deg.Kind = types.DegreeAuntUncle
		default:
			deg.Kind = types.DegreeCollateral
		}
	}
	return deg
}

// LabelPath classifies a path by the position of its meeting node.
func LabelPath(pathLen, meetingIndex int) types.Degree {
	return Classify(meetingIndex, pathLen-1-meetingIndex)
}

// Label renders a degree in the given locale. Unknown locales fall back to
// English.
func Label(d types.Degree, locale string) string {
	if locale == LocalePortuguese {
		return labelPT(d)
	}
	return labelEN(d)
}

// DegreeLabel is Label(Classify(d1, d2), locale).
func DegreeLabel(d1, d2 int, locale string) string {
	return Label(Classify(d1, d2), locale)
}

func labelEN(d types.Degree) string {
	switch d.Kind {
	case types.DegreeSelf:
		return "self"
	case types.DegreeAscendant:
		return fmt.Sprintf("direct ascendant (%d %s)", d.Generations, plural(d.Generations, "generation", "generations"))
	case types.DegreeDescendant:
		return fmt.Sprintf("direct descendant (%d %s)", d.Generations, plural(d.Generations, "generation", "generations"))
	case types.DegreeSiblings:
		return "siblings"
	case types.DegreeCousin:
		base := ordinalEN(d.Cousin) + " cousin"
		if d.Removed > 0 {
			return fmt.Sprintf("%s, %d× removed", base, d.Removed)
		}
		return base
	case types.DegreeAuntUncle:
		return "aunt/uncle ↔ niece/nephew"
	default:
		return fmt.Sprintf("collateral relatives (%d× removed)", d.Removed)
	}
}

func labelPT(d types.Degree) string {
	switch d.Kind {
	case types.DegreeSelf:
		return "A própria pessoa"
	case types.DegreeAscendant:
		return fmt.Sprintf("Ascendência direta (%d %s)", d.Generations, plural(d.Generations, "geração", "gerações"))
	case types.DegreeDescendant:
		return fmt.Sprintf("Descendência direta (%d %s)", d.Generations, plural(d.Generations, "geração", "gerações"))
	case types.DegreeSiblings:
		return "Irmãos(ãs)"
	case types.DegreeCousin:
		base := fmt.Sprintf("%dº primo", d.Cousin)
		if d.Removed > 0 {
			return fmt.Sprintf("%s, %dx removido", base, d.Removed)
		}
		return base
	case types.DegreeAuntUncle:
		return "Tio/Tia ↔ Sobrinho(a)"
	default:
		return fmt.Sprintf("Parentes colaterais (%dx removido)", d.Removed)
	}
}

func ordinalEN(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
