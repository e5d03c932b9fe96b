package tender

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalUseCategory_MappedSubcategories(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"下水道施設", "施設"},
		{"上下水道", "施設"},
		{"福祉施設", "施設"},
		{"交通施設", "道路"},
		{"橋梁", "道路"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanonicalUseCategory(tc.in), "input %q", tc.in)
	}
}

func TestCanonicalUseCategory_UnknownPassesThrough(t *testing.T) {
	assert.Equal(t, "学校", CanonicalUseCategory("学校"))
	assert.Equal(t, "", CanonicalUseCategory(""))
}

func TestTender_Disqualifies(t *testing.T) {
	min := int64(450_000_000)
	withFloor := &Tender{EstimatedPrice: 500_000_000, MinimumPrice: &min}

	assert.True(t, withFloor.Disqualifies(400_000_000))
	assert.False(t, withFloor.Disqualifies(450_000_000), "bid equal to the floor is valid")
	assert.False(t, withFloor.Disqualifies(460_000_000))

	noFloor := &Tender{EstimatedPrice: 500_000_000}
	assert.False(t, noFloor.Disqualifies(1))
}

func TestTender_HasMinimumPrice(t *testing.T) {
	zero := int64(0)
	assert.False(t, (&Tender{}).HasMinimumPrice())
	assert.False(t, (&Tender{MinimumPrice: &zero}).HasMinimumPrice())

	min := int64(100)
	assert.True(t, (&Tender{MinimumPrice: &min}).HasMinimumPrice())
}

func TestAward_MatchesUseCategory_CanonicalComparison(t *testing.T) {
	a := &Award{UseType: "下水道施設"}
	assert.True(t, a.MatchesUseCategory("福祉施設"), "both map to 施設")
	assert.False(t, a.MatchesUseCategory("道路"))

	b := &Award{UseType: "橋梁"}
	assert.True(t, b.MatchesUseCategory("道路"))
	assert.True(t, b.MatchesUseCategory("交通施設"))
}
