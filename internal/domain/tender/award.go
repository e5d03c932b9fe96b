package tender

import "time"

// Award is a historical record of a tender won by a specific contractor at a
// specific price.  Awards are immutable historical facts; the service only
// reads them.
type Award struct {
	ID             int64     `json:"id"`
	TenderID       string    `json:"tender_id,omitempty"`
	ProjectName    string    `json:"project_name"`
	Publisher      string    `json:"publisher,omitempty"`
	Prefecture     string    `json:"prefecture"`
	Municipality   string    `json:"municipality,omitempty"`
	Address        string    `json:"address,omitempty"`
	UseType        string    `json:"use_type"`
	Method         string    `json:"bid_method"`
	FloorAreaM2    *float64  `json:"floor_area_m2,omitempty"`
	AwardDate      time.Time `json:"award_date"`
	Contractor     string    `json:"contractor"`
	ContractAmount int64     `json:"contract_amount"`

	// EstimatedPrice is the agency's pre-tender estimate, when published.
	EstimatedPrice *int64 `json:"estimated_price,omitempty"`

	// WinRate is contract amount divided by estimated price.
	WinRate *float64 `json:"win_rate,omitempty"`

	ParticipantsCount *int `json:"participants_count,omitempty"`

	// TechnicalScore is only meaningful for comprehensive-evaluation awards.
	TechnicalScore *float64 `json:"technical_score,omitempty"`
}

// MatchesRegion reports whether the award was won in the given prefecture.
func (a *Award) MatchesRegion(prefecture string) bool {
	return a.Prefecture == prefecture
}

// MatchesUseCategory reports whether the award's canonical use category
// matches the given use type's canonical category.
func (a *Award) MatchesUseCategory(useType string) bool {
	return CanonicalUseCategory(a.UseType) == CanonicalUseCategory(useType)
}
