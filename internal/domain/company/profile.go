// Package company implements the bidder's strength profile: a derived
// aggregation of historical award records.  Profiles are recomputed per
// query, never persisted; the same award set always yields the same profile.
package company

import (
	"sort"

	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/tender"
)

// Profile summarizes a contractor's historical performance.  A contractor
// with no history yields a profile with all-zero fields, which is a valid
// terminal state, not a failure.
type Profile struct {
	Contractor  string `json:"company_name"`
	TotalAwards int    `json:"total_awards"`
	TotalAmount int64  `json:"total_amount"`

	AvgAmount  float64 `json:"avg_amount"`
	AvgWinRate float64 `json:"avg_win_rate"`

	// Prefectures and UseTypes hold award counts keyed by raw attribute
	// value.  All keys are retained for scoring lookups; use
	// TopPrefectures for display.
	Prefectures map[string]int `json:"prefectures"`
	UseTypes    map[string]int `json:"use_types"`
	BidMethods  map[string]int `json:"bid_methods"`

	// AvgTechScore is the mean technical score over awards carrying one.
	// Zero when no award has a score; check TechScoreSamples to
	// distinguish "no data" from a genuine zero.
	AvgTechScore     float64 `json:"avg_tech_score"`
	TechScoreSamples int     `json:"tech_score_samples"`
}

// BuildProfile aggregates the contractor's award records into a Profile.
// It is a pure function: no I/O, deterministic for a given award slice.
func BuildProfile(contractor string, awards []tender.Award) Profile {
	p := Profile{
		Contractor:  contractor,
		Prefectures: make(map[string]int),
		UseTypes:    make(map[string]int),
		BidMethods:  make(map[string]int),
	}

	var (
		winRateSum   float64
		winRateCount int
		techSum      float64
	)

	for _, a := range awards {
		p.TotalAwards++
		p.TotalAmount += a.ContractAmount

		if a.Prefecture != "" {
			p.Prefectures[a.Prefecture]++
		}
		if a.UseType != "" {
			p.UseTypes[a.UseType]++
		}
		if a.Method != "" {
			p.BidMethods[a.Method]++
		}
		if a.WinRate != nil {
			winRateSum += *a.WinRate
			winRateCount++
		}
		if a.TechnicalScore != nil {
			techSum += *a.TechnicalScore
			p.TechScoreSamples++
		}
	}

	if p.TotalAwards > 0 {
		p.AvgAmount = float64(p.TotalAmount) / float64(p.TotalAwards)
	}
	if winRateCount > 0 {
		p.AvgWinRate = winRateSum / float64(winRateCount)
	}
	if p.TechScoreSamples > 0 {
		p.AvgTechScore = techSum / float64(p.TechScoreSamples)
	}

	return p
}

// RegionCount returns the contractor's award count in the given prefecture.
func (p *Profile) RegionCount(prefecture string) int {
	return p.Prefectures[prefecture]
}

// UseTypeCount returns the contractor's award count for the given use type.
func (p *Profile) UseTypeCount(useType string) int {
	return p.UseTypes[useType]
}

// RegionEntry is one prefecture's award count, used for ranked display.
type RegionEntry struct {
	Prefecture string `json:"prefecture"`
	Count      int    `json:"count"`
}

// TopPrefectures returns the n prefectures with the most awards, descending
// by count with prefecture name as the tiebreaker for stable output.
func (p *Profile) TopPrefectures(n int) []RegionEntry {
	entries := make([]RegionEntry, 0, len(p.Prefectures))
	for pref, count := range p.Prefectures {
		entries = append(entries, RegionEntry{Prefecture: pref, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Prefecture < entries[j].Prefecture
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
