// Package tender implements the procurement bounded context: open tenders,
// historical award records, and the value objects shared by the prediction
// services.  All business rules that concern tender attributes live here;
// persistence is handled by separate repository implementations.
package tender

import (
	"time"
)

// Procurement (bidding) methods as published by the procuring agencies.
const (
	// MethodOpenBid is the general competitive bid (price only).
	MethodOpenBid = "一般競争入札"

	// MethodComprehensiveEvaluation weighs technical merit together with
	// price.  Technical-score adjustments apply only to this method.
	MethodComprehensiveEvaluation = "総合評価方式"

	// MethodNegotiated is a negotiated contract.
	MethodNegotiated = "随意契約"
)

// canonicalUseCategories maps detailed use subcategories to the smaller
// canonical set used for comparable matching.  Categories without an entry
// map to themselves.
var canonicalUseCategories = map[string]string{
	"下水道施設": "施設",
	"上下水道":  "施設",
	"福祉施設":  "施設",
	"交通施設":  "道路",
	"橋梁":    "道路",
}

// CanonicalUseCategory reduces a detailed use subcategory to its canonical
// category for comparable matching.  Unknown categories are returned verbatim
// so new data never breaks retrieval.
func CanonicalUseCategory(useType string) string {
	if c, ok := canonicalUseCategories[useType]; ok {
		return c
	}
	return useType
}

// Tender is a published public-works procurement opportunity open for
// bidding.  Tenders are immutable reference data sourced externally; the
// service never mutates them.
type Tender struct {
	ID             string     `json:"tender_id"`
	Title          string     `json:"title"`
	Publisher      string     `json:"publisher"`
	Prefecture     string     `json:"prefecture"`
	Municipality   string     `json:"municipality"`
	Address        string     `json:"address,omitempty"`
	UseType        string     `json:"use_type"`
	BidMethod      string     `json:"bid_method"`
	FloorAreaM2    *float64   `json:"floor_area_m2,omitempty"`
	BidDate        time.Time  `json:"bid_date"`
	NoticeDate     *time.Time `json:"notice_date,omitempty"`
	EstimatedPrice int64      `json:"estimated_price"`

	// MinimumPrice is the procurement floor.  A bid below it is disqualified
	// outright, not merely penalised.  Nil when the tender has no floor.
	MinimumPrice *int64 `json:"minimum_price,omitempty"`

	JVAllowed bool   `json:"jv_allowed"`
	OriginURL string `json:"origin_url,omitempty"`
}

// HasMinimumPrice reports whether the tender enforces a price floor.
func (t *Tender) HasMinimumPrice() bool {
	return t.MinimumPrice != nil && *t.MinimumPrice > 0
}

// Disqualifies reports whether bidAmount falls below the tender's minimum
// allowable price.
func (t *Tender) Disqualifies(bidAmount int64) bool {
	return t.HasMinimumPrice() && bidAmount < *t.MinimumPrice
}

// Filter carries optional search criteria for open tenders.  Zero-value
// fields are ignored.
type Filter struct {
	Prefecture   string
	Municipality string
	UseType      string
	BidMethod    string
	MinFloorArea float64
	MaxFloorArea float64
	MinPrice     int64
	MaxPrice     int64
	Limit        int
}

// FilterOptions is the distinct attribute values available for building
// search filters in a client UI.
type FilterOptions struct {
	Prefectures              []string            `json:"prefectures"`
	Municipalities           []string            `json:"municipalities"`
	UseTypes                 []string            `json:"use_types"`
	PrefectureMunicipalities map[string][]string `json:"prefecture_municipalities"`
}
