package prediction

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/company"
	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/prediction"
	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/tender"
)

// maxSimilarCaseSummaries caps the comparable summaries in the response.
const maxSimilarCaseSummaries = 10

// buildBasis assembles the comparable-sample statistics and price ratios
// underlying a prediction.
func buildBasis(bidAmount int64, t *tender.Tender, comparables []Comparable) prediction.Basis {
	b := prediction.Basis{
		NSimilar:       len(comparables),
		EstimatedPrice: t.EstimatedPrice,
		MinimumPrice:   t.MinimumPrice,
	}
	if len(comparables) > 0 {
		b.SimilarMedian = int64(medianAmount(comparables))
		b.SimilarMin, b.SimilarMax = amountRange(comparables)
		b.PriceGap = bidAmount - b.SimilarMedian
	}
	if t.EstimatedPrice > 0 {
		b.BidVsEstimatedRatio = round1(float64(bidAmount) / float64(t.EstimatedPrice) * 100)
	}
	return b
}

// fallbackRiskNotes derives the minimal deterministic risk list used when no
// model analysis is available.
func fallbackRiskNotes(bidAmount int64, t *tender.Tender, comparables []Comparable) []string {
	var risks []string

	if t.Disqualifies(bidAmount) {
		risks = append(risks, "入札額が最低制限価格を下回っています（失格）")
	}

	if len(comparables) > 0 {
		if median := medianAmount(comparables); median > 0 {
			ratio := float64(bidAmount) / median
			if ratio > 1.2 {
				risks = append(risks, "価格競争力に課題がある可能性があります")
			} else if ratio < 0.8 {
				risks = append(risks, "採算性に注意が必要です")
			}
		}
	}

	if len(risks) == 0 {
		risks = append(risks, "詳細なリスク分析は利用できません")
	}
	return risks
}

// judgmentReason renders the deterministic rank-keyed rationale.  It is
// always generated from the heuristic values, regardless of annotator
// availability.
func judgmentReason(s Score, bidAmount int64, t *tender.Tender, comparables []Comparable, profile *company.Profile) string {
	ratioPct := round1(s.EstimatedRatio * 100)
	pct := int(s.WinProbability * 100)

	median := s.ReferencePrice
	var priceDiff float64
	if median > 0 {
		priceDiff = float64(bidAmount) - median
	}

	var reasons []string
	switch s.Rank {
	case prediction.RankA:
		reasons = append(reasons, fmt.Sprintf("非常に有望と判断しました（勝率%d%%）", pct))
		reasons = append(reasons, fmt.Sprintf("入札額は予定価格の%s%%で、価格競争力が非常に高いです", formatPct(ratioPct)))
		if len(comparables) > 0 {
			reasons = append(reasons, fmt.Sprintf("類似%d件の落札額中央値より%.1f百万円低く設定されています",
				len(comparables), abs(priceDiff)/1_000_000))
		}
		if count := profile.RegionCount(t.Prefecture); count > 5 {
			reasons = append(reasons, fmt.Sprintf("当地域での%d件の落札実績が信頼性を高めています", count))
		}

	case prediction.RankB:
		reasons = append(reasons, fmt.Sprintf("有望な案件と判断しました（勝率%d%%）", pct))
		reasons = append(reasons, fmt.Sprintf("入札額は予定価格の%s%%で、適切な価格競争力があります", formatPct(ratioPct)))
		if len(comparables) > 0 {
			if priceDiff < 0 {
				reasons = append(reasons, fmt.Sprintf("類似%d件の中央値より%.1f百万円低く、競争優位性があります",
					len(comparables), abs(priceDiff)/1_000_000))
			} else {
				reasons = append(reasons, fmt.Sprintf("類似%d件の中央値に近い適正価格帯です", len(comparables)))
			}
		}

	case prediction.RankC:
		reasons = append(reasons, fmt.Sprintf("標準的な勝率の案件です（勝率%d%%）", pct))
		reasons = append(reasons, fmt.Sprintf("入札額は予定価格の%s%%で、平均的な価格設定です", formatPct(ratioPct)))
		if priceDiff > 0 {
			reasons = append(reasons, fmt.Sprintf("類似案件より%.1f百万円高く、価格面での改善余地があります",
				priceDiff/1_000_000))
		} else {
			reasons = append(reasons, "価格設定は妥当ですが、技術評価等での差別化が重要です")
		}

	case prediction.RankD:
		reasons = append(reasons, fmt.Sprintf("やや厳しい予測となりました（勝率%d%%）", pct))
		reasons = append(reasons, fmt.Sprintf("入札額が予定価格の%s%%と高めの設定です", formatPct(ratioPct)))
		if priceDiff > 0 {
			reasons = append(reasons, fmt.Sprintf("類似案件より%.1f百万円高く、価格競争力に課題があります",
				priceDiff/1_000_000))
		}
		reasons = append(reasons, "価格戦略の見直しまたは技術提案での差別化が必要です")

	default: // RankE
		reasons = append(reasons, fmt.Sprintf("落札可能性が低いと判断しました（勝率%d%%）", pct))
		switch {
		case s.Disqualified:
			reasons = append(reasons, "最低制限価格を下回っており、失格となる可能性があります")
		case s.EstimatedRatio > 1.0:
			reasons = append(reasons, fmt.Sprintf("入札額が予定価格の%s%%と予定価格を超過しています", formatPct(ratioPct)))
		default:
			reasons = append(reasons, fmt.Sprintf("入札額が予定価格の%s%%と高く、競争力が不足しています", formatPct(ratioPct)))
		}
		reasons = append(reasons, "大幅な価格見直しが必要です")
	}

	if t.BidMethod == tender.MethodComprehensiveEvaluation {
		if profile.TechScoreSamples > 0 && profile.AvgTechScore > techScoreThreshold {
			reasons = append(reasons, "総合評価方式での高い技術評価実績が加点要因となります")
		} else {
			reasons = append(reasons, "総合評価方式のため、技術提案の充実が重要です")
		}
	}

	return strings.Join(reasons, " ")
}

// simpleRecommendation is the minimal recommendation used when no annotator
// is configured at all.
func simpleRecommendation(winProbability float64) string {
	pct := int(winProbability * 100)
	if winProbability >= 0.5 {
		return fmt.Sprintf("勝率%d%%の案件です。", pct)
	}
	return fmt.Sprintf("勝率%d%%の案件です。価格戦略の見直しを検討してください。", pct)
}

// similarCaseSummaries converts the top comparables into display summaries.
func similarCaseSummaries(comparables []Comparable) []prediction.ComparableCase {
	n := len(comparables)
	if n > maxSimilarCaseSummaries {
		n = maxSimilarCaseSummaries
	}
	cases := make([]prediction.ComparableCase, 0, n)
	for _, c := range comparables[:n] {
		contractor := c.Contractor
		if contractor == "" {
			contractor = "非公開"
		}
		awardDate := ""
		if !c.AwardDate.IsZero() {
			awardDate = c.AwardDate.Format("2006年01月")
		}
		cases = append(cases, prediction.ComparableCase{
			Contractor:            contractor,
			ContractAmount:        c.ContractAmount,
			ContractAmountDisplay: formatMillions(c.ContractAmount),
			Prefecture:            c.Prefecture,
			UseType:               c.UseType,
			BidMethod:             c.Method,
			AwardDate:             awardDate,
			ParticipantsCount:     c.ParticipantsCount,
		})
	}
	return cases
}

// topFactors lists the contributing factors with their direction and
// relative impact.
func topFactors(rank prediction.Rank, profile *company.Profile) []prediction.Factor {
	priceDirection := "-"
	if rank == prediction.RankA || rank == prediction.RankB {
		priceDirection = "+"
	}
	localDirection := "+"
	if len(profile.Prefectures) == 0 {
		localDirection = "-"
	}
	return []prediction.Factor{
		{Name: "price_competitiveness", Direction: priceDirection, Impact: 0.3},
		{Name: "company_strength", Direction: "+", Impact: 0.2},
		{Name: "local_presence", Direction: localDirection, Impact: 0.15},
	}
}

func amountRange(comparables []Comparable) (min, max int64) {
	min, max = comparables[0].ContractAmount, comparables[0].ContractAmount
	for _, c := range comparables[1:] {
		if c.ContractAmount < min {
			min = c.ContractAmount
		}
		if c.ContractAmount > max {
			max = c.ContractAmount
		}
	}
	return min, max
}

// formatMillions renders an amount as a comma-grouped count of millions of
// yen, e.g. 1234000000 -> "1,234百万円".
func formatMillions(amount int64) string {
	millions := amount / 1_000_000
	s := strconv.FormatInt(millions, 10)
	var sb strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 && s[i] != '-' {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	return sb.String() + "百万円"
}

// formatPct renders a one-decimal percentage value, e.g. 92 -> "92.0".
func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
