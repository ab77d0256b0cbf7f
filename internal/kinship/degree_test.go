// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kinship

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/kinpath/pkg/types"
)

func TestDegreeLabelEnglish(t *testing.T) {
	tests := []struct {
		d1, d2 int
		want   string
	}{
		{0, 0, "self"},
		{0, 1, "direct ascendant (1 generation)"},
		{0, 2, "direct ascendant (2 generations)"},
		{2, 0, "direct descendant (2 generations)"},
		{1, 0, "direct descendant (1 generation)"},
		{1, 1, "siblings"},
		{2, 2, "1st cousin"},
		{2, 3, "1st cousin, 1× removed"},
		{3, 2, "1st cousin, 1× removed"},
		{3, 3, "2nd cousin"},
		{4, 4, "3rd cousin"},
		{5, 7, "4th cousin, 2× removed"},
		{12, 12, "11th cousin"},
		{22, 22, "21st cousin"},
		{1, 2, "aunt/uncle ↔ niece/nephew"},
		{2, 1, "aunt/uncle ↔ niece/nephew"},
		{1, 3, "collateral relatives (2× removed)"},
		{4, 1, "collateral relatives (3× removed)"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%d", tt.d1, tt.d2), func(t *testing.T) {
			assert.Equal(t, tt.want, DegreeLabel(tt.d1, tt.d2, LocaleEnglish))
		})
	}
}

func TestDegreeLabelPortuguese(t *testing.T) {
	tests := []struct {
		d1, d2 int
		want   string
	}{
		{0, 0, "A própria pessoa"},
		{0, 1, "Ascendência direta (1 geração)"},
		{0, 3, "Ascendência direta (3 gerações)"},
		{2, 0, "Descendência direta (2 gerações)"},
		{1, 1, "Irmãos(ãs)"},
		{2, 2, "1º primo"},
		{2, 3, "1º primo, 1x removido"},
		{1, 2, "Tio/Tia ↔ Sobrinho(a)"},
		{1, 4, "Parentes colaterais (3x removido)"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%d", tt.d1, tt.d2), func(t *testing.T) {
			assert.Equal(t, tt.want, DegreeLabel(tt.d1, tt.d2, LocalePortuguese))
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, types.Degree{Kind: types.DegreeAscendant, D1: 0, D2: 2, Generations: 2}, Classify(0, 2))
	assert.Equal(t, types.Degree{Kind: types.DegreeCousin, D1: 2, D2: 3, Cousin: 1, Removed: 1}, Classify(2, 3))
	assert.Equal(t, types.Degree{Kind: types.DegreeAuntUncle, D1: 1, D2: 2, Removed: 1}, Classify(1, 2))
	assert.Equal(t, types.Degree{Kind: types.DegreeSelf}, Classify(0, 0))
}

func TestClassifyIsTotal(t *testing.T) {
	for d1 := 0; d1 <= 12; d1++ {
		for d2 := 0; d2 <= 12; d2++ {
			deg := Classify(d1, d2)
			assert.NotEmpty(t, deg.Kind)
			assert.NotEmpty(t, Label(deg, LocaleEnglish))
			assert.NotEmpty(t, Label(deg, LocalePortuguese))
		}
	}
}

func TestLabelPath(t *testing.T) {
	assert.Equal(t, Classify(2, 2), LabelPath(5, 2))
	assert.Equal(t, Classify(0, 0), LabelPath(1, 0))
	assert.Equal(t, Classify(1, 0), LabelPath(2, 1))
}

func TestLabelUnknownLocaleFallsBack(t *testing.T) {
	assert.Equal(t, "siblings", DegreeLabel(1, 1, "de"))
}
