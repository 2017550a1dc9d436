package service

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"quiz3d/internal/domain"
	"quiz3d/internal/llm"
)

const summarySystemPrompt = "あなたは日本語で短い診断結果を作るアシスタントです。" +
	"出力はテキストのみ（日本語のみ、英単語は使わない）。" +
	"同じ語の過剰な繰り返しや箇条書き・羅列は避け、自然な文にする。" +
	"2～3文で、以下の構造を守ってください：" +
	"1文目:「あなたは、◯◯な傾向があります。」（強く出ている性質だけ1～2個に要約）" +
	"2文目:「とてもいい点は、◯◯です。」" +
	"3文目:「しかし、気を付けるべきポイントは、◯◯です。」（必要なら2文目と連結可）"

var jaVibe = map[string]string{
	"cheerful":          "明るく社交的",
	"calm":              "落ち着いて思慮深い",
	"cool and sharp":    "論理的でキレがある",
	"cute and friendly": "親しみやすく思いやりがある",
	"balanced":          "バランスの取れた",
}

var jaTheme = map[string]string{
	"student uniform": "落ち着いた学生風の雰囲気",
	"fantasy mage":    "自由で創造的な雰囲気",
}

var jaColor = map[string]string{
	"pastel pink": "パステルピンク",
	"mint green":  "ミントグリーン",
	"navy blue":   "ネイビーブルー",
	"lavender":    "ラベンダー",
}

// SummaryService produce el párrafo corto en japonés del resultado.
// Sin credencial o ante cualquier fallo del LLM cae al texto determinístico.
type SummaryService struct {
	llmClient llm.Client
	logger    *zap.Logger
}

// NewSummaryService acepta llmClient nil (solo fallback local).
func NewSummaryService(llmClient llm.Client, logger *zap.Logger) *SummaryService {
	return &SummaryService{llmClient: llmClient, logger: logger}
}

// Summarize nunca falla: siempre devuelve un texto usable.
func (s *SummaryService) Summarize(ctx context.Context, profile domain.Profile) string {
	if s.llmClient == nil {
		return fallbackSummary(profile)
	}

	payload, err := json.Marshal(map[string]any{
		"instruction": "次のプロファイルから文章を生成してください。",
		"profile":     profile,
	})
	if err != nil {
		return fallbackSummary(profile)
	}

	text, err := s.llmClient.GenerateText(ctx, summarySystemPrompt, string(payload))
	if err != nil {
		s.logger.Warn("summary generation failed, using fallback", zap.Error(err))
		return fallbackSummary(profile)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fallbackSummary(profile)
	}
	if !strings.HasSuffix(text, "。") && !strings.HasSuffix(text, "！") &&
		!strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "？") &&
		!strings.HasSuffix(text, "?") {
		text += "。"
	}
	return text
}

// fallbackSummary arma el párrafo a partir del perfil: ejes dominantes,
// fortalezas y puntos de atención por umbral, más tono y color base.
func fallbackSummary(profile domain.Profile) string {
	norm := profile.Norm

	// やや◯◯ entre 0.20 y 0.45; ◯◯ a partir de 0.45.
	adj := func(v float64, left, right string) string {
		switch {
		case v >= 0.45:
			return right
		case v >= 0.20:
			return "やや" + right
		case v <= -0.45:
			return left
		case v <= -0.20:
			return "やや" + left
		}
		return ""
	}

	axes := []struct {
		key   string
		left  string
		right string
	}{
		{domain.TraitEnergy, "内向的", "外向的"},
		{domain.TraitImagination, "現実的", "直感的"},
		{domain.TraitDecision, "感情的", "論理的"},
		{domain.TraitOrder, "柔軟", "計画的"},
	}

	type scored struct {
		weight float64
		text   string
	}
	var pairs []scored
	for _, ax := range axes {
		if a := adj(norm[ax.key], ax.left, ax.right); a != "" {
			pairs = append(pairs, scored{math.Abs(norm[ax.key]), a})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].weight > pairs[j].weight })
	var descs []string
	for _, p := range pairs {
		if len(descs) == 2 {
			break
		}
		descs = append(descs, p.text)
	}

	var vibes []string
	for _, v := range profile.Vibe {
		if ja, ok := jaVibe[v]; ok {
			vibes = append(vibes, ja)
		} else {
			vibes = append(vibes, v)
		}
	}
	vibeJP := strings.Join(vibes, "、")
	theme := profile.Theme
	if ja, ok := jaTheme[theme]; ok {
		theme = ja
	}
	color := profile.Color
	if ja, ok := jaColor[color]; ok {
		color = ja
	}

	var strengths, cautions []string
	add := func(cond bool, good, care string) {
		if cond {
			strengths = append(strengths, good)
			cautions = append(cautions, care)
		}
	}
	vE, vI, vD, vO := norm[domain.TraitEnergy], norm[domain.TraitImagination], norm[domain.TraitDecision], norm[domain.TraitOrder]
	add(vE > 0.2, "人を巻き込んで行動できる", "一人の時間を軽視しすぎないこと")
	add(vE < -0.2, "集中力が高く深く考えられる", "考えを言語化して伝える意識を持つこと")
	add(vI > 0.2, "発想力と新しい切り口", "実現性や詰めの甘さに注意")
	add(vI < -0.2, "具体化と実行の強さ", "発想の幅をときどき広げる余白を作ること")
	add(vD > 0.2, "客観的な判断と説明の明快さ", "相手の感情面に配慮を忘れないこと")
	add(vD < -0.2, "共感力と関係調整のうまさ", "迷いすぎず結論まで進めること")
	add(vO > 0.2, "段取りと再現性の高さ", "予定変更に柔軟さを残すこと")
	add(vO < -0.2, "臨機応変で変化に強い", "締め切りや優先順位を明確にすること")

	s1 := "あなたは、各面でバランスが取れています。"
	if len(descs) > 0 {
		s1 = "あなたは、" + strings.Join(descs, "で") + "な傾向があります。"
	}
	if vibeJP != "" {
		s1 = strings.TrimSuffix(s1, "。")
		s1 += "。雰囲気は" + vibeJP + "です。"
	}

	goods := strengths
	if len(goods) > 2 {
		goods = goods[:2]
	}
	if len(goods) == 0 {
		goods = []string{"状況に応じて柔軟に動けること"}
	}
	s2 := "とてもいい点は、" + strings.Join(goods, "と") + "です。"

	cares := cautions
	if len(cares) > 2 {
		cares = cares[:2]
	}
	if len(cares) == 0 {
		cares = []string{"得意な型に寄りすぎないこと"}
	}
	var tone []string
	if theme != "" {
		tone = append(tone, "全体のトーンは"+theme)
	}
	if color != "" {
		tone = append(tone, "基調色は"+color)
	}
	tail := "。"
	if len(tone) > 0 {
		tail = strings.Join(tone, "。") + "。"
	}
	s3 := "しかし、気を付けるべきポイントは、" + strings.Join(cares, "、") + "です" + tail

	return strings.TrimSpace(s1 + " " + s2 + " " + s3)
}

// FallbackMBTISummary es el texto fijo del camino legacy {mbti}.
const FallbackMBTISummary = "あなたはバランスのとれた傾向があります。良い点は前向きさです。留意点は状況に応じて柔軟に。"
