package service

import (
	"reflect"
	"strings"
	"testing"

	"quiz3d/internal/domain"
)

func TestScoreAnswersAccumulates(t *testing.T) {
	answers := []domain.Answer{
		{TraitID: domain.TraitEnergy, ChoiceIndex: 4},
		{TraitID: domain.TraitEnergy, ChoiceIndex: 4},
		{TraitID: domain.TraitDecision, ChoiceIndex: 0},
	}
	scores := ScoreAnswers(answers)

	if scores[domain.TraitEnergy] != 8 {
		t.Fatalf("expected energy 8, got %d", scores[domain.TraitEnergy])
	}
	if scores[domain.TraitDecision] != -4 {
		t.Fatalf("expected decision -4, got %d", scores[domain.TraitDecision])
	}
	if scores[domain.TraitOrder] != 0 {
		t.Fatalf("expected order 0, got %d", scores[domain.TraitOrder])
	}
}

func TestScoreAnswersClampsChoiceIndex(t *testing.T) {
	scores := ScoreAnswers([]domain.Answer{
		{TraitID: domain.TraitEnergy, ChoiceIndex: 99},
		{TraitID: domain.TraitOrder, ChoiceIndex: -3},
	})
	if scores[domain.TraitEnergy] != 4 {
		t.Fatalf("expected clamp to index 4 (+4), got %d", scores[domain.TraitEnergy])
	}
	if scores[domain.TraitOrder] != -4 {
		t.Fatalf("expected clamp to index 0 (-4), got %d", scores[domain.TraitOrder])
	}
}

func TestScoreAnswersIgnoresUnknownTraits(t *testing.T) {
	scores := ScoreAnswers([]domain.Answer{
		{TraitID: "charisma", ChoiceIndex: 4},
	})
	for trait, v := range scores {
		if v != 0 {
			t.Fatalf("expected zero score for %s, got %d", trait, v)
		}
	}
	if _, ok := scores["charisma"]; ok {
		t.Fatalf("unknown trait must not be scored")
	}
}

func TestDeriveProfileExtremeScores(t *testing.T) {
	profile := DeriveProfile(domain.TraitScores{
		domain.TraitEnergy:      20,
		domain.TraitImagination: -20,
		domain.TraitDecision:    20,
		domain.TraitOrder:       -20,
	})

	wantNorm := map[string]float64{
		domain.TraitEnergy:      1.0,
		domain.TraitImagination: -1.0,
		domain.TraitDecision:    1.0,
		domain.TraitOrder:       -1.0,
	}
	if !reflect.DeepEqual(profile.Norm, wantNorm) {
		t.Fatalf("unexpected norm: %v", profile.Norm)
	}
	if !reflect.DeepEqual(profile.Vibe, []string{"cheerful", "cool and sharp"}) {
		t.Fatalf("unexpected vibe: %v", profile.Vibe)
	}
	if profile.Theme != "student uniform" {
		t.Fatalf("unexpected theme: %s", profile.Theme)
	}
	if profile.Details != "playful accessories" {
		t.Fatalf("unexpected details: %s", profile.Details)
	}
	if profile.Color != "mint green" {
		t.Fatalf("unexpected color: %s", profile.Color)
	}
}

func TestDeriveProfileAllZero(t *testing.T) {
	profile := DeriveProfile(domain.TraitScores{})

	if !reflect.DeepEqual(profile.Vibe, []string{"balanced"}) {
		t.Fatalf("expected balanced vibe, got %v", profile.Vibe)
	}
	if profile.Theme != "student uniform" {
		t.Fatalf("expected student uniform, got %s", profile.Theme)
	}
	if profile.Color != "lavender" {
		t.Fatalf("expected lavender, got %s", profile.Color)
	}
	for trait, v := range profile.Norm {
		if v != 0 {
			t.Fatalf("expected zero norm for %s, got %f", trait, v)
		}
	}
}

func TestDeriveProfileNormClamps(t *testing.T) {
	profile := DeriveProfile(domain.TraitScores{domain.TraitEnergy: 40, domain.TraitOrder: -40})
	if profile.Norm[domain.TraitEnergy] != 1.0 {
		t.Fatalf("expected clamp to 1.0, got %f", profile.Norm[domain.TraitEnergy])
	}
	if profile.Norm[domain.TraitOrder] != -1.0 {
		t.Fatalf("expected clamp to -1.0, got %f", profile.Norm[domain.TraitOrder])
	}
}

func TestDeriveProfileColorQuadrants(t *testing.T) {
	cases := []struct {
		energy   int
		decision int
		want     string
	}{
		{20, 0, "pastel pink"},   // e>=0.3, d<=0
		{20, 20, "mint green"},   // e>=0.3, d>0
		{0, 20, "navy blue"},     // e<0.3, d>0
		{0, 0, "lavender"},       // resto
		{6, -2, "pastel pink"},   // e=0.3 exacto cuenta como >=
		{4, -20, "lavender"},     // e<0.3, d<=0
	}
	for _, tc := range cases {
		p := DeriveProfile(domain.TraitScores{domain.TraitEnergy: tc.energy, domain.TraitDecision: tc.decision})
		if p.Color != tc.want {
			t.Fatalf("energy=%d decision=%d: expected %s, got %s", tc.energy, tc.decision, tc.want, p.Color)
		}
	}
}

func TestDeriveProfileOutputsStayInFixedSets(t *testing.T) {
	vibes := map[string]bool{"cheerful": true, "calm": true, "cool and sharp": true, "cute and friendly": true, "balanced": true}
	themes := map[string]bool{"fantasy mage": true, "student uniform": true}
	details := map[string]bool{"tidy and organized outfit": true, "playful accessories": true}
	colors := map[string]bool{"pastel pink": true, "mint green": true, "navy blue": true, "lavender": true}

	for e := -40; e <= 40; e += 8 {
		for i := -40; i <= 40; i += 8 {
			for d := -40; d <= 40; d += 8 {
				for o := -40; o <= 40; o += 8 {
					p := DeriveProfile(domain.TraitScores{
						domain.TraitEnergy:      e,
						domain.TraitImagination: i,
						domain.TraitDecision:    d,
						domain.TraitOrder:       o,
					})
					if len(p.Vibe) == 0 {
						t.Fatalf("vibe must never be empty (e=%d d=%d)", e, d)
					}
					for _, v := range p.Vibe {
						if !vibes[v] {
							t.Fatalf("unexpected vibe %q", v)
						}
					}
					if !themes[p.Theme] || !details[p.Details] || !colors[p.Color] {
						t.Fatalf("value outside fixed sets: %+v", p)
					}
					for _, n := range p.Norm {
						if n < -1.0 || n > 1.0 {
							t.Fatalf("norm out of range: %f", n)
						}
					}
				}
			}
		}
	}
}

func TestDeriveProfileIsPure(t *testing.T) {
	scores := domain.TraitScores{domain.TraitEnergy: 10, domain.TraitDecision: -6}
	first := DeriveProfile(scores)
	second := DeriveProfile(scores)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical profiles, got %+v vs %+v", first, second)
	}

	p1, n1 := ProfileToPrompt(first)
	p2, n2 := ProfileToPrompt(second)
	if p1 != p2 || n1 != n2 {
		t.Fatalf("expected identical prompts")
	}
}

func TestProfileToPromptFragmentOrder(t *testing.T) {
	profile := DeriveProfile(domain.TraitScores{domain.TraitEnergy: 20, domain.TraitDecision: 20})
	prompt, negative := ProfileToPrompt(profile)

	if !strings.HasPrefix(prompt, "humanoid bipedal character, humanlike proportions") {
		t.Fatalf("unexpected prompt prefix: %s", prompt)
	}
	if !strings.HasSuffix(prompt, "single character, full-body") {
		t.Fatalf("unexpected prompt suffix: %s", prompt)
	}
	colorIdx := strings.Index(prompt, "mint green color scheme")
	themeIdx := strings.Index(prompt, profile.Theme)
	if colorIdx == -1 || themeIdx == -1 || colorIdx > themeIdx {
		t.Fatalf("expected color scheme before theme: %s", prompt)
	}
	if !strings.Contains(negative, "photorealistic") {
		t.Fatalf("unexpected negative prompt: %s", negative)
	}
}

func TestSummaryLines(t *testing.T) {
	profile := DeriveProfile(domain.TraitScores{
		domain.TraitEnergy:      20,
		domain.TraitImagination: -20,
	})
	lines := SummaryLines(profile)

	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "外向寄り") || !strings.Contains(lines[0], "現実寄り") {
		t.Fatalf("unexpected first line: %s", lines[0])
	}
	if !strings.Contains(lines[1], "バランス型") {
		t.Fatalf("unexpected second line: %s", lines[1])
	}
	if !strings.Contains(lines[2], profile.Color) {
		t.Fatalf("expected color in closing line: %s", lines[2])
	}
}

func TestSummaryLinesThresholdIsStrict(t *testing.T) {
	// 0.3 exacto no cuenta como inclinación.
	profile := DeriveProfile(domain.TraitScores{domain.TraitEnergy: 6})
	lines := SummaryLines(profile)
	if !strings.Contains(lines[0], "エネルギー: バランス型") {
		t.Fatalf("expected balanced at exactly 0.3: %s", lines[0])
	}
}

func TestMBTIScores(t *testing.T) {
	scores := MBTIScores("enfp")
	want := domain.TraitScores{
		domain.TraitEnergy:      1,
		domain.TraitImagination: 1,
		domain.TraitDecision:    -1,
		domain.TraitOrder:       -1,
	}
	if !reflect.DeepEqual(scores, want) {
		t.Fatalf("unexpected scores: %v", scores)
	}
}
