package annotator

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	riskSystemPrompt = "あなたは建設業界の入札分析専門家です。過去のデータと企業の実績から、入札のリスクと戦略を分析してください。"

	recommendationSystemPrompt = "建設業界の入札戦略アドバイザーとして、簡潔で実践的なアドバイスを提供してください。" +
		"必ず指定されたフォーマットに従い、各セクションを完結させてください。文字数制限を守り、途中で切れないようにしてください。"
)

// groupDigits renders n with thousands separators, e.g. 1234567 -> 1,234,567.
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var sb strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	if neg {
		return "-" + sb.String()
	}
	return sb.String()
}

// buildRiskPrompt renders the risk-analysis prompt for one tender and bid.
func buildRiskPrompt(in *AnalysisInput) string {
	t := in.Tender
	var minPrice int64
	if t.MinimumPrice != nil {
		minPrice = *t.MinimumPrice
	}
	var floorArea float64
	if t.FloorAreaM2 != nil {
		floorArea = *t.FloorAreaM2
	}
	var ratio float64
	if t.EstimatedPrice > 0 {
		ratio = float64(in.BidAmount) / float64(t.EstimatedPrice) * 100
	}

	var sb strings.Builder
	sb.WriteString("以下の入札案件について、詳細なリスク分析を行ってください。\n\n")

	sb.WriteString("## 案件情報\n")
	fmt.Fprintf(&sb, "- 案件名: %s\n", t.Title)
	fmt.Fprintf(&sb, "- 地域: %s %s\n", t.Prefecture, t.Municipality)
	fmt.Fprintf(&sb, "- 予定価格: %s円\n", groupDigits(t.EstimatedPrice))
	fmt.Fprintf(&sb, "- 最低制限価格: %s円\n", groupDigits(minPrice))
	fmt.Fprintf(&sb, "- 入札方式: %s\n", t.BidMethod)
	fmt.Fprintf(&sb, "- 用途: %s\n", t.UseType)
	fmt.Fprintf(&sb, "- 延床面積: %s㎡\n\n", groupDigits(int64(floorArea)))

	sb.WriteString("## 入札額\n")
	fmt.Fprintf(&sb, "- 提案入札額: %s円\n", groupDigits(in.BidAmount))
	fmt.Fprintf(&sb, "- 予定価格比: %.1f%%\n\n", ratio)

	sb.WriteString("## 類似案件の落札実績\n")
	fmt.Fprintf(&sb, "- 分析対象件数: %d件\n", in.Sample.Count)
	fmt.Fprintf(&sb, "- 落札額中央値: %s円\n", groupDigits(in.Sample.Median))
	fmt.Fprintf(&sb, "- 落札額最小値: %s円\n", groupDigits(in.Sample.Min))
	fmt.Fprintf(&sb, "- 落札額最大値: %s円\n", groupDigits(in.Sample.Max))
	fmt.Fprintf(&sb, "- 平均参加社数: %.1f社\n\n", in.Sample.AvgParticipants)

	sb.WriteString("## 自社の実績\n")
	fmt.Fprintf(&sb, "- 総落札件数: %d件\n", in.Profile.TotalAwards)
	fmt.Fprintf(&sb, "- 該当地域での実績: %d件\n", in.Profile.RegionCount(t.Prefecture))
	fmt.Fprintf(&sb, "- 該当用途での実績: %d件\n", in.Profile.UseTypeCount(t.UseType))
	fmt.Fprintf(&sb, "- 平均落札率: %.1f%%\n\n", in.Profile.AvgWinRate)

	sb.WriteString("以下の観点から分析し、**純粋なJSON形式のみで**回答してください。マークダウンのコードブロック（```）は使用しないでください：\n\n")
	sb.WriteString("1. risk_factors: リスク要因のリスト（最大5つ）\n")
	sb.WriteString("2. opportunities: 有利な点・チャンスのリスト（最大3つ）\n")
	sb.WriteString("3. strategic_advice: 具体的な戦略アドバイス（200文字以内）\n")
	sb.WriteString("4. confidence_adjustment: 信頼度の調整値（-0.2〜+0.2の範囲）\n\n")
	sb.WriteString("以下のようなJSON形式で回答してください（```は付けないこと）：\n")
	sb.WriteString(`{
    "risk_factors": [
        "地域での実績が少なく、地元企業が優位",
        "類似案件の平均参加社数が多く、競争激化の可能性"
    ],
    "opportunities": [
        "価格設定が類似案件の中央値に近く競争力あり",
        "該当用途での豊富な実績"
    ],
    "strategic_advice": "技術提案書で差別化を図り、過去の類似実績を強調することを推奨",
    "confidence_adjustment": 0.05
}`)

	return sb.String()
}

// buildRecommendationPrompt renders the detailed-recommendation prompt.
func buildRecommendationPrompt(in *RecommendationInput) string {
	t := in.Tender
	var sb strings.Builder
	sb.WriteString("入札案件の詳細データと分析結果に基づいて、詳細で実践的な推奨事項を生成してください。\n\n")

	sb.WriteString("## 案件情報\n")
	fmt.Fprintf(&sb, "- 案件名: %s\n", t.Title)
	fmt.Fprintf(&sb, "- 地域: %s %s\n", t.Prefecture, t.Municipality)
	fmt.Fprintf(&sb, "- 入札方式: %s\n", t.BidMethod)
	fmt.Fprintf(&sb, "- 用途: %s\n\n", t.UseType)

	sb.WriteString("## 予測結果\n")
	fmt.Fprintf(&sb, "- ランク: %s\n", in.Rank)
	fmt.Fprintf(&sb, "- 勝率: %.0f%%\n", in.WinProb*100)
	fmt.Fprintf(&sb, "- 予定価格比: %.1f%%\n\n", in.Basis.BidVsEstimatedRatio)

	sb.WriteString("## 類似案件データ\n")
	fmt.Fprintf(&sb, "- 分析件数: %d件\n", in.Basis.NSimilar)
	fmt.Fprintf(&sb, "- 落札額中央値: %s円\n", groupDigits(in.Basis.SimilarMedian))
	fmt.Fprintf(&sb, "- 価格差: %s円\n\n", groupDigits(in.Basis.PriceGap))

	sb.WriteString("## 自社実績\n")
	fmt.Fprintf(&sb, "- 総落札件数: %d件\n", in.Profile.TotalAwards)
	fmt.Fprintf(&sb, "- 該当地域実績: %d件\n", in.Profile.RegionCount(t.Prefecture))
	fmt.Fprintf(&sb, "- 該当用途実績: %d件\n\n", in.Profile.UseTypeCount(t.UseType))

	sb.WriteString("## AI分析結果\n")
	fmt.Fprintf(&sb, "- リスク要因: %s\n", strings.Join(in.Analysis.RiskFactors, "、"))
	fmt.Fprintf(&sb, "- 有利な点: %s\n", strings.Join(in.Analysis.Opportunities, "、"))
	fmt.Fprintf(&sb, "- 戦略アドバイス: %s\n\n", in.Analysis.StrategicAdvice)

	sb.WriteString("以下の5つのセクションで具体的な推奨事項を作成してください。各セクションは必ず含めてください：\n\n")
	sb.WriteString("### 推奨事項\n\n")
	sb.WriteString("#### 1. **価格戦略**\n類似案件の落札データを踏まえ、現在の入札額が適切か、調整が必要かを具体的に説明（100-150文字）\n\n")
	sb.WriteString("#### 2. **競争優位性の確立**\n自社の実績を踏まえ、他社との差別化を図る具体的な方法（100-150文字）\n\n")
	sb.WriteString("#### 3. **技術提案書のポイント**\n特に強調すべき技術面、実績面、地域貢献などを箇条書きで3-4項目（各項目50文字程度）\n\n")
	sb.WriteString("#### 4. **リスク対策**\n特定されたリスクへの具体的な対応方法を箇条書きで2-3項目（各項目50文字程度）\n\n")
	sb.WriteString("#### 5. **今後のアクション**\n入札までに行うべき具体的な準備や検討事項を箇条書きで2-3項目（各項目50文字程度）\n\n")
	sb.WriteString("文体は専門的でありながら分かりやすく、実務担当者がすぐに行動できるレベルで記述してください。\n")
	sb.WriteString("各セクションは完結させ、途中で切れないようにしてください。")

	return sb.String()
}
