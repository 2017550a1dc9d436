package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"quiz3d/internal/domain"
	"quiz3d/internal/llm"
)

// markerRe matchea etiquetas de calibración entre paréntesis o corchetes,
// tipo「（やや左）」, que el modelo no debería filtrar al usuario.
var markerRe = regexp.MustCompile(`[\(（\[]\s*(?:強く\s*左|やや\s*左|中立|やや\s*右|強く\s*右)\s*[\)）\]]`)

const questionSystemPrompt = `あなたは日本語でパーソナリティ診断の質問を作るアシスタントです。
出力は必ず JSON のみ。マークダウンや解説は不要。
各質問は次のいずれか1つの trait_id を測定します:
- energy (内向↔外向)
- imagination (現実↔直感)
- decision (感情↔論理)
- order (柔軟↔計画)

各質問は:
- "title": ユーザーに表示する質問文（短く自然な日本語）
- "trait_id": 上のいずれか1つ
- "options": 5つの選択肢テキスト（中立を含む5段階）
  ※ 重要: テキスト中に「強く左／やや左／中立／やや右／強く右」などのラベル語や括弧書きを入れないこと。
`

const questionUserTemplate = `次の形式で **ちょうど %d 問** 生成してください。JSONのみ:
{
  "version": "v1",
  "questions": [
    {
      "id": "q1",
      "title": "・・・",
      "trait_id": "energy",
      "options": ["自然文1","自然文2","自然文3","自然文4","自然文5"]
    }
  ]
}
`

const neutralOption = "どちらとも言えない"

// likert5 devuelve una copia fresca de las cinco opciones estándar.
func likert5() []string {
	return []string{
		"全くそう思わない",
		"どちらかといえばそう思わない",
		"どちらとも言えない",
		"どちらかといえばそう思う",
		"そう思う",
	}
}

// QuestionService genera las preguntas del quiz: Gemini cuando hay credencial,
// con normalización estricta y fallback determinístico al pool local.
type QuestionService struct {
	llmClient llm.Client
	logger    *zap.Logger
}

// NewQuestionService acepta llmClient nil (modo sin credencial: solo pool).
func NewQuestionService(llmClient llm.Client, logger *zap.Logger) *QuestionService {
	return &QuestionService{llmClient: llmClient, logger: logger}
}

// SupplyQuestions devuelve siempre exactamente desiredCount preguntas válidas.
// Ningún fallo del servicio de texto llega al caller: se completa desde el
// pool fijo y, de ser necesario, con preguntas sintéticas por eje.
func (s *QuestionService) SupplyQuestions(ctx context.Context, desiredCount int) domain.QuestionSet {
	count := desiredCount
	if count < 1 {
		count = 1
	}
	if count > 10 {
		count = 10
	}

	if s.llmClient == nil {
		return domain.QuestionSet{Version: "v1", Questions: fallbackPool()[:count]}
	}

	qs := normalizeQuestions(s.generate(ctx, count))
	if len(qs) < count {
		qs = topUpToCount(qs, count)
	}
	return domain.QuestionSet{Version: "v1", Questions: qs[:count]}
}

// generate llama al LLM y devuelve las preguntas crudas; cualquier fallo de
// request o de parseo se trata como cero resultados.
func (s *QuestionService) generate(ctx context.Context, count int) []domain.QuizQuestion {
	raw, err := s.llmClient.GenerateJSON(ctx, questionSystemPrompt, fmt.Sprintf(questionUserTemplate, count))
	if err != nil {
		s.logger.Warn("question generation failed, using fallback pool", zap.Error(err))
		return nil
	}

	cleaned := cleanJSONResponse(raw)
	if obj := extractFirstJSONObject(cleaned); obj != "" {
		cleaned = obj
	}

	var parsed struct {
		Version   string                `json:"version"`
		Questions []domain.QuizQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		s.logger.Warn("question response unparseable, using fallback pool", zap.Error(err))
		return nil
	}
	return parsed.Questions
}

// normalizeQuestions valida cada pregunta: strip de marcadores, descarte de
// ejes desconocidos, exactamente 5 opciones, id y título con defaults.
func normalizeQuestions(raw []domain.QuizQuestion) []domain.QuizQuestion {
	out := make([]domain.QuizQuestion, 0, len(raw))
	for i, q := range raw {
		n := i + 1
		trait := strings.TrimSpace(q.TraitID)
		if !domain.KnownTrait(trait) {
			continue
		}

		opts := q.Options
		if len(opts) > 5 {
			opts = opts[:5]
		}
		cleaned := make([]string, 0, 5)
		for _, o := range opts {
			cleaned = append(cleaned, stripMarkers(o))
		}
		for len(cleaned) < 5 {
			cleaned = append(cleaned, neutralOption)
		}

		id := q.ID
		if id == "" {
			id = fmt.Sprintf("q%d", n)
		}
		title := stripMarkers(q.Title)
		if title == "" {
			title = fmt.Sprintf("質問 %d", n)
		}

		out = append(out, domain.QuizQuestion{
			ID:      id,
			Title:   title,
			TraitID: trait,
			Options: cleaned,
		})
	}
	return out
}

// topUpToCount completa hasta count: primero con preguntas del pool que no
// repitan título, después con sintéticas por eje en round-robin.
func topUpToCount(qs []domain.QuizQuestion, count int) []domain.QuizQuestion {
	used := make(map[string]bool, len(qs))
	for _, q := range qs {
		used[q.Title] = true
	}

	for _, cand := range fallbackPool() {
		if len(qs) >= count {
			break
		}
		if used[cand.Title] {
			continue
		}
		qs = append(qs, cand)
		used[cand.Title] = true
	}

	skips := 0
	for i := 1; len(qs) < count && skips < len(domain.TraitIDs); i++ {
		trait := domain.TraitIDs[(len(qs)+i)%4]
		title := syntheticTitle(trait, i)
		if used[title] {
			skips++
			continue
		}
		skips = 0
		qs = append(qs, domain.QuizQuestion{
			ID:      fmt.Sprintf("g%d", len(qs)+1),
			Title:   title,
			TraitID: trait,
			Options: likert5(),
		})
		used[title] = true
	}
	return qs
}

func syntheticTitle(trait string, i int) string {
	switch trait {
	case domain.TraitEnergy:
		return "大人数の集まりに参加するとき、気持ちはどうですか？"
	case domain.TraitImagination:
		return "新しいことを始めるとき、発想はどちらに寄りますか？"
	case domain.TraitDecision:
		return "物事を決めるとき、何を優先しますか？"
	case domain.TraitOrder:
		return "予定やタスクの進め方はどちらに近いですか？"
	}
	return fmt.Sprintf("質問 %d", i)
}

func stripMarkers(text string) string {
	return strings.TrimSpace(markerRe.ReplaceAllString(text, ""))
}

// fallbackPool son las 12 preguntas fijas, 3 por eje, en orden de pool.
func fallbackPool() []domain.QuizQuestion {
	titles := []struct {
		title string
		trait string
	}{
		{"初対面が多いイベントに誘われたら、どう感じますか？", domain.TraitEnergy},
		{"雑談が続く集まりに参加するのは好きですか？", domain.TraitEnergy},
		{"休み時間や休憩中は、人と話すほうですか？", domain.TraitEnergy},

		{"新しいアイデアを考えるとき、現実性より発想の面白さを優先しますか？", domain.TraitImagination},
		{"企画のブレストでは、飛躍した案も歓迎しますか？", domain.TraitImagination},
		{"説明書よりも、直感的に触って覚えるほうですか？", domain.TraitImagination},

		{"人の相談に乗るとき、気持ちより解決策を重視しますか？", domain.TraitDecision},
		{"判断に迷ったら、データや客観性を優先しますか？", domain.TraitDecision},
		{"議論では、筋道が通っていることを最重視しますか？", domain.TraitDecision},

		{"旅行の計画は、綿密に立てるほうですか？", domain.TraitOrder},
		{"締め切りのあるタスク、早めに終わらせるほうですか？", domain.TraitOrder},
		{"予定変更より、事前の計画どおり進めるほうが安心ですか？", domain.TraitOrder},
	}

	pool := make([]domain.QuizQuestion, 0, len(titles))
	for i, t := range titles {
		pool = append(pool, domain.QuizQuestion{
			ID:      fmt.Sprintf("q%d", i+1),
			Title:   t.title,
			TraitID: t.trait,
			Options: likert5(),
		})
	}
	return pool
}
