// Package prediction implements the win-probability prediction engine:
// comparable-case retrieval with progressive relaxation, the multi-factor
// scoring model, deterministic narrative generation, and single and bulk
// evaluation orchestration.
package prediction

import (
	"context"
	"math"
	"sort"

	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/tender"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
)

// Retrieval tuning.  The bands and sample-size triggers reproduce the
// established behavior of the scoring model; they are fixed, not tunables.
const (
	// maxComparables caps the final comparable set.
	maxComparables = 100

	// exactContractorCap bounds one contractor's contribution in the exact
	// stage; relaxedContractorCap applies to the relaxed stages.
	exactContractorCap   = 3
	relaxedContractorCap = 2

	// exactStageTarget is the distinct-contractor count that lets the exact
	// stage stand.  relaxedStageTarget gates the priority-relaxed stage and
	// lastResortTrigger gates the final widening.
	exactStageTarget   = 5
	relaxedStageTarget = 10
	lastResortTrigger  = 5

	// Exact-stage bands.
	floorAreaBand  = 0.30
	exactPriceBand = 0.20

	// priceAnchorRatio is where award prices typically land relative to the
	// estimate; the relaxed stages rank by distance from this anchor.
	priceAnchorRatio = 0.9

	// Relaxed-stage bands around the anchor.
	priorityPriceBand   = 0.50
	proximityPriceBand  = 0.60
	lastResortPriceBand = 0.70
)

// Retrieval stages, reported through metrics as the deepest stage reached.
const (
	StageExact      = "exact"
	StagePriority   = "priority"
	StageProximity  = "proximity"
	StageLastResort = "last_resort"
)

// Comparable is one award selected as evidence for scoring, annotated with
// the contractor's recency rank within the selected set (1 = that
// contractor's most recent contract).
type Comparable struct {
	tender.Award
	ContractorRank int `json:"contractor_rank"`
}

// ComparableQuery carries the target tender's matching attributes.
// ExcludeContractor removes the bidder's own records from the market set; it
// is an explicit parameter rather than a baked-in company name.
type ComparableQuery struct {
	Prefecture        string
	UseType           string
	BidMethod         string
	FloorAreaM2       *float64
	EstimatedPrice    int64
	ExcludeContractor string
}

// Retriever selects comparable awards for a target tender, relaxing the
// match criteria in stages until the sample is statistically usable.
type Retriever struct {
	awards tender.AwardRepository
	log    logging.Logger
}

// NewRetriever builds a comparable-case retriever over the award store.
func NewRetriever(awards tender.AwardRepository, log logging.Logger) *Retriever {
	return &Retriever{awards: awards, log: log.Named("comparables")}
}

// FindComparables returns at most maxComparables awards comparable to the
// queried tender, together with the deepest relaxation stage reached.  Zero
// comparables is a valid outcome that callers must treat as low confidence;
// a data-access failure likewise yields an empty set, logged but never
// surfaced as an error.
func (r *Retriever) FindComparables(ctx context.Context, q ComparableQuery) ([]Comparable, string) {
	candidates, err := r.awards.FindCandidates(ctx, r.candidateQuery(q))
	if err != nil {
		r.log.Warn("Comparable candidate query failed, returning empty set",
			logging.Err(err),
			logging.String("prefecture", q.Prefecture),
			logging.String("use_type", q.UseType))
		return nil, StageExact
	}

	anchor := float64(q.EstimatedPrice) * priceAnchorRatio

	exact := capPerContractor(r.exactMatches(candidates, q), exactContractorCap)
	if distinctContractors(exact) >= exactStageTarget {
		return annotate(trim(exact)), StageExact
	}

	priority := capPerContractor(r.priorityMatches(candidates, q, anchor), relaxedContractorCap)
	if len(priority) >= relaxedStageTarget {
		return annotate(trim(priority)), StagePriority
	}

	proximity := capPerContractor(r.proximityMatches(candidates, anchor, proximityPriceBand), relaxedContractorCap)
	if len(proximity) >= lastResortTrigger {
		return annotate(trim(proximity)), StageProximity
	}

	lastResort := capPerContractor(r.lastResortMatches(candidates, q, anchor), relaxedContractorCap)
	return annotate(trim(lastResort)), StageLastResort
}

// candidateQuery derives the coarse SQL cut: the widest price band any stage
// can use, so every stage filters the same in-memory working set.
func (r *Retriever) candidateQuery(q ComparableQuery) tender.CandidateQuery {
	cq := tender.CandidateQuery{ExcludeContractor: q.ExcludeContractor}
	if q.EstimatedPrice > 0 {
		anchor := float64(q.EstimatedPrice) * priceAnchorRatio
		cq.MinAmount = int64(anchor * (1 - lastResortPriceBand))
		cq.MaxAmount = int64(anchor * (1 + lastResortPriceBand))
		// The exact stage bounds on the estimate itself, which can poke past
		// the anchor band's ceiling.
		if hi := int64(float64(q.EstimatedPrice) * (1 + exactPriceBand)); hi > cq.MaxAmount {
			cq.MaxAmount = hi
		}
	}
	return cq
}

// exactMatches keeps candidates matching region, canonical use category, and
// method exactly, with floor area within ±30% and price within ±20% of the
// estimate.  Candidates are already ordered most recent first.
func (r *Retriever) exactMatches(candidates []tender.Award, q ComparableQuery) []tender.Award {
	out := make([]tender.Award, 0, len(candidates))
	for _, a := range candidates {
		if !a.MatchesRegion(q.Prefecture) || !a.MatchesUseCategory(q.UseType) || a.Method != q.BidMethod {
			continue
		}
		if q.FloorAreaM2 != nil && *q.FloorAreaM2 > 0 {
			if a.FloorAreaM2 == nil || !withinBand(*a.FloorAreaM2, *q.FloorAreaM2, floorAreaBand) {
				continue
			}
		}
		if q.EstimatedPrice > 0 && !withinBand(float64(a.ContractAmount), float64(q.EstimatedPrice), exactPriceBand) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// priorityMatches drops the hard area/price filters and ranks by a match
// tier (region+category, region, category, neither) then by distance from
// the anchor, within ±50% of it.
func (r *Retriever) priorityMatches(candidates []tender.Award, q ComparableQuery, anchor float64) []tender.Award {
	banded := bandFilter(candidates, anchor, priorityPriceBand)
	sort.SliceStable(banded, func(i, j int) bool {
		ti, tj := matchTier(&banded[i], q), matchTier(&banded[j], q)
		if ti != tj {
			return ti < tj
		}
		return math.Abs(float64(banded[i].ContractAmount)-anchor) < math.Abs(float64(banded[j].ContractAmount)-anchor)
	})
	return banded
}

// proximityMatches ranks purely by distance from the anchor within the given
// band, ignoring region and category.
func (r *Retriever) proximityMatches(candidates []tender.Award, anchor, band float64) []tender.Award {
	banded := bandFilter(candidates, anchor, band)
	sort.SliceStable(banded, func(i, j int) bool {
		return math.Abs(float64(banded[i].ContractAmount)-anchor) < math.Abs(float64(banded[j].ContractAmount)-anchor)
	})
	return banded
}

// lastResortMatches widens to ±70% of the anchor, or, with no estimate to
// anchor on, takes the highest-value awards.
func (r *Retriever) lastResortMatches(candidates []tender.Award, q ComparableQuery, anchor float64) []tender.Award {
	if q.EstimatedPrice <= 0 {
		byValue := append([]tender.Award(nil), candidates...)
		sort.SliceStable(byValue, func(i, j int) bool {
			return byValue[i].ContractAmount > byValue[j].ContractAmount
		})
		return byValue
	}
	return r.proximityMatches(candidates, anchor, lastResortPriceBand)
}

// matchTier orders priority-stage candidates: 0 both region and category
// match, 1 region only, 2 category only, 3 neither.
func matchTier(a *tender.Award, q ComparableQuery) int {
	region := a.MatchesRegion(q.Prefecture)
	category := a.MatchesUseCategory(q.UseType)
	switch {
	case region && category:
		return 0
	case region:
		return 1
	case category:
		return 2
	default:
		return 3
	}
}

func withinBand(value, center, band float64) bool {
	if center <= 0 {
		return false
	}
	return value >= center*(1-band) && value <= center*(1+band)
}

func bandFilter(candidates []tender.Award, anchor, band float64) []tender.Award {
	if anchor <= 0 {
		return append([]tender.Award(nil), candidates...)
	}
	out := make([]tender.Award, 0, len(candidates))
	for _, a := range candidates {
		if withinBand(float64(a.ContractAmount), anchor, band) {
			out = append(out, a)
		}
	}
	return out
}

// capPerContractor enforces the diversity rule: one contractor may
// contribute at most limit records, and the kept records are always that
// contractor's most recent ones within the stage's band.  The slice's
// ordering is preserved for the survivors, so stage-specific ranking (tier,
// anchor distance) is untouched by the cap.
func capPerContractor(awards []tender.Award, limit int) []tender.Award {
	byContractor := make(map[string][]int, len(awards))
	for i, a := range awards {
		byContractor[a.Contractor] = append(byContractor[a.Contractor], i)
	}

	keep := make(map[int]struct{}, len(awards))
	for _, idxs := range byContractor {
		sort.SliceStable(idxs, func(i, j int) bool {
			return awards[idxs[i]].AwardDate.After(awards[idxs[j]].AwardDate)
		})
		n := limit
		if n > len(idxs) {
			n = len(idxs)
		}
		for _, idx := range idxs[:n] {
			keep[idx] = struct{}{}
		}
	}

	out := make([]tender.Award, 0, len(awards))
	for i, a := range awards {
		if _, ok := keep[i]; ok {
			out = append(out, a)
		}
	}
	return out
}

func distinctContractors(awards []tender.Award) int {
	seen := make(map[string]struct{}, len(awards))
	for _, a := range awards {
		seen[a.Contractor] = struct{}{}
	}
	return len(seen)
}

func trim(awards []tender.Award) []tender.Award {
	if len(awards) > maxComparables {
		return awards[:maxComparables]
	}
	return awards
}

// annotate assigns each selected award its contractor recency rank: 1 for
// that contractor's most recent contract within the set, counting up.
func annotate(awards []tender.Award) []Comparable {
	byDate := make([]int, len(awards))
	for i := range byDate {
		byDate[i] = i
	}
	sort.SliceStable(byDate, func(i, j int) bool {
		return awards[byDate[i]].AwardDate.After(awards[byDate[j]].AwardDate)
	})

	ranks := make([]int, len(awards))
	counts := make(map[string]int, len(awards))
	for _, idx := range byDate {
		counts[awards[idx].Contractor]++
		ranks[idx] = counts[awards[idx].Contractor]
	}

	out := make([]Comparable, len(awards))
	for i, a := range awards {
		out[i] = Comparable{Award: a, ContractorRank: ranks[i]}
	}
	return out
}
