package service

import (
	"fmt"
	"strings"

	"quiz3d/internal/domain"
)

// likertScores mapea el índice de opción 0..4 a su contribución base.
var likertScores = [5]int{-2, -1, 0, 1, 2}

// ScoreAnswers acumula los puntajes por eje. El índice de opción se clampa a
// [0,4] y los trait ids desconocidos se ignoran.
func ScoreAnswers(answers []domain.Answer) domain.TraitScores {
	scores := domain.TraitScores{}
	for _, t := range domain.TraitIDs {
		scores[t] = 0
	}
	for _, a := range answers {
		if !domain.KnownTrait(a.TraitID) {
			continue
		}
		idx := a.ChoiceIndex
		if idx < 0 {
			idx = 0
		}
		if idx > 4 {
			idx = 4
		}
		scores[a.TraitID] += likertScores[idx] * 2
	}
	return scores
}

// DeriveProfile convierte los puntajes acumulados en un perfil normalizado.
// Es una función pura: mismos puntajes, mismo perfil.
func DeriveProfile(scores domain.TraitScores) domain.Profile {
	norm := make(map[string]float64, len(domain.TraitIDs))
	for _, t := range domain.TraitIDs {
		norm[t] = clamp(float64(scores[t])/20.0, -1.0, 1.0)
	}

	var vibe []string
	if norm[domain.TraitEnergy] > 0.2 {
		vibe = append(vibe, "cheerful")
	} else if norm[domain.TraitEnergy] < -0.2 {
		vibe = append(vibe, "calm")
	}
	if norm[domain.TraitDecision] > 0.2 {
		vibe = append(vibe, "cool and sharp")
	} else if norm[domain.TraitDecision] < -0.2 {
		vibe = append(vibe, "cute and friendly")
	}
	if len(vibe) == 0 {
		vibe = []string{"balanced"}
	}

	theme := "student uniform"
	if norm[domain.TraitImagination] > 0 {
		theme = "fantasy mage"
	}

	details := "playful accessories"
	if norm[domain.TraitOrder] > 0 {
		details = "tidy and organized outfit"
	}

	// Cuadrantes de color sobre (energy, decision) con umbrales 0.3 y 0.
	e, d := norm[domain.TraitEnergy], norm[domain.TraitDecision]
	var color string
	switch {
	case e >= 0.3 && d <= 0:
		color = "pastel pink"
	case e >= 0.3 && d > 0:
		color = "mint green"
	case e < 0.3 && d > 0:
		color = "navy blue"
	default:
		color = "lavender"
	}

	return domain.Profile{
		Vibe:    vibe,
		Theme:   theme,
		Details: details,
		Color:   color,
		Norm:    norm,
	}
}

// ProfileToPrompt arma el par prompt/negative para la generación 3D.
// El orden de los fragmentos está afinado para modelos humanoides rig-friendly.
func ProfileToPrompt(p domain.Profile) (string, string) {
	tags := []string{
		"humanoid bipedal character, humanlike proportions",
		"clear limbs and joints, rig-friendly topology",
		"standing A or T-pose, facing front",
		strings.Join(p.Vibe, ", "),
		p.Color + " color scheme",
		p.Theme,
		p.Details,
		"anime or stylized, cel-shaded, clean topology",
		"single character, full-body",
	}
	prompt := strings.Join(tags, ", ")
	negative := "super-deformed, chibi, 2.5-heads, big head small body, low quality, low resolution, low poly, deformed hands, extra limbs, photorealistic"
	return prompt, negative
}

// SummaryLines devuelve las tres líneas localizadas del resumen por ejes.
func SummaryLines(p domain.Profile) []string {
	side := func(trait, left, right string) string {
		v := p.Norm[trait]
		if v > 0.3 {
			return right + "寄り"
		}
		if v < -0.3 {
			return left + "寄り"
		}
		return "バランス型"
	}

	return []string{
		fmt.Sprintf("エネルギー: %s / 発想: %s",
			side(domain.TraitEnergy, "内向", "外向"),
			side(domain.TraitImagination, "現実", "直感")),
		fmt.Sprintf("判断: %s / 進め方: %s",
			side(domain.TraitDecision, "感情", "論理"),
			side(domain.TraitOrder, "柔軟", "計画")),
		fmt.Sprintf("雰囲気は %s、テーマは %s、基調色は %s。",
			strings.Join(p.Vibe, ", "), p.Theme, p.Color),
	}
}

// MBTIScores mapea un tipo MBTI de 4 letras a puntajes ±1 por eje.
func MBTIScores(mbti string) domain.TraitScores {
	m := strings.ToUpper(mbti)
	pick := func(letter string) int {
		if strings.Contains(m, letter) {
			return 1
		}
		return -1
	}
	return domain.TraitScores{
		domain.TraitEnergy:      pick("E"),
		domain.TraitImagination: pick("N"),
		domain.TraitDecision:    pick("T"),
		domain.TraitOrder:       pick("J"),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
