package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"quiz3d/internal/catalog"
	"quiz3d/internal/domain"
	"quiz3d/internal/meshy"
)

// Asset fijo que sustituye a la generación real en modo demo.
const (
	SampleGLB   = "https://modelviewer.dev/shared-assets/models/Astronaut.glb"
	SampleThumb = "https://modelviewer.dev/shared-assets/thumbnails/Astronaut.webp"
	DemoTitle   = "デモモデル"
)

// Presupuesto del poll de la preview antes de responder el submit.
const (
	previewMaxWait  = 120 * time.Second
	previewInterval = 2 * time.Second
)

var artStyleFallbacks = map[string]string{
	"cartoon": "realistic",
	"lowpoly": "realistic",
	"anime":   "realistic",
	"toon":    "realistic",
}

// NormalizeArtStyle admite realistic/sculpture; el resto cae a realistic.
func NormalizeArtStyle(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "realistic" || s == "sculpture" {
		return s
	}
	if fb, ok := artStyleFallbacks[s]; ok {
		return fb
	}
	return "realistic"
}

// TaskLauncher es la porción del cliente 3D que usa el submit.
type TaskLauncher interface {
	CreatePreview(ctx context.Context, p meshy.PreviewParams) (string, error)
	AwaitSuccess(ctx context.Context, taskID string, maxWait, interval time.Duration) (domain.TaskSnapshot, error)
}

// ModelRegistrar es la porción del catálogo que usa el submit.
type ModelRegistrar interface {
	Register(ctx context.Context, assetURL string, meta catalog.Meta, ov catalog.Overrides) (domain.CatalogEntry, error)
}

// SubmitOptions son los flags de generación que acepta el submit.
type SubmitOptions struct {
	ArtStyle     string
	ShouldRemesh bool
	IsATPose     bool
}

// SubmitResult reúne todo lo que el handler puede necesitar serializar.
// Los campos opcionales quedan en cero cuando el camino no los produce.
type SubmitResult struct {
	Mode         string
	TaskID       string
	Status       string
	Progress     int
	Prompt       string
	SummaryLines []string
	SummaryText  string
	Profile      domain.Profile
	MBTI         string
	ModelURLs    map[string]string
	SavedModel   *domain.CatalogEntry
}

// QuizService orquesta el submit: puntaje, perfil, generación 3D y registro.
type QuizService struct {
	tasks     TaskLauncher
	registrar ModelRegistrar
	summaries *SummaryService
	logger    *zap.Logger
	demoMode  bool
}

func NewQuizService(tasks TaskLauncher, registrar ModelRegistrar, summaries *SummaryService, logger *zap.Logger, demoMode bool) *QuizService {
	return &QuizService{
		tasks:     tasks,
		registrar: registrar,
		summaries: summaries,
		logger:    logger,
		demoMode:  demoMode,
	}
}

// SubmitScores procesa el camino normal con respuestas Likert.
func (s *QuizService) SubmitScores(ctx context.Context, answers []domain.Answer, opts SubmitOptions) (SubmitResult, error) {
	scores := ScoreAnswers(answers)
	profile := DeriveProfile(scores)
	prompt, negative := ProfileToPrompt(profile)

	res := SubmitResult{
		Mode:         "scores",
		Prompt:       prompt,
		SummaryLines: SummaryLines(profile),
		SummaryText:  s.summaries.Summarize(ctx, profile),
		Profile:      profile,
	}

	if s.demoMode {
		saved, err := s.registrar.Register(ctx, SampleGLB, catalog.TitleOnly(DemoTitle), catalog.Overrides{
			User:         "anonymous",
			Profile:      &profile,
			ThumbnailURL: SampleThumb,
		})
		if err != nil {
			return SubmitResult{}, err
		}
		res.Status = domain.TaskSucceeded
		res.Progress = 100
		res.ModelURLs = map[string]string{"glb": SampleGLB}
		res.SavedModel = &saved
		return res, nil
	}

	taskID, err := s.tasks.CreatePreview(ctx, meshy.PreviewParams{
		Prompt:         prompt,
		NegativePrompt: negative,
		ArtStyle:       NormalizeArtStyle(opts.ArtStyle),
		ShouldRemesh:   opts.ShouldRemesh,
		IsATPose:       opts.IsATPose,
	})
	if err != nil {
		return SubmitResult{}, err
	}
	res.TaskID = taskID

	// Espera bloqueante de la preview; si llega a SUCCEEDED se registra el
	// GLB en el catálogo. Un fallo del registro no tumba la respuesta.
	snap, err := s.tasks.AwaitSuccess(ctx, taskID, previewMaxWait, previewInterval)
	if err != nil {
		s.logger.Warn("preview poll aborted", zap.String("task_id", taskID), zap.Error(err))
		return res, nil
	}
	if snap.Status == domain.TaskSucceeded {
		if meshURL := snap.ModelURLs["glb"]; meshURL != "" {
			if _, err := s.registrar.Register(ctx, meshURL, catalog.TitleOnly(prompt), catalog.Overrides{
				User:         "anonymous",
				Profile:      &profile,
				ThumbnailURL: snap.ThumbnailURL,
			}); err != nil {
				s.logger.Warn("auto register failed", zap.String("task_id", taskID), zap.Error(err))
			}
		}
	}
	return res, nil
}

// SubmitMBTI procesa el camino legacy {mbti} con puntajes ±1 por letra.
func (s *QuizService) SubmitMBTI(ctx context.Context, mbti string, opts SubmitOptions) (SubmitResult, error) {
	if strings.TrimSpace(mbti) == "" {
		mbti = "ENFP"
	}
	mbti = strings.ToUpper(mbti)
	profile := DeriveProfile(MBTIScores(mbti))
	prompt, negative := ProfileToPrompt(profile)

	res := SubmitResult{
		MBTI:        mbti,
		Prompt:      prompt,
		SummaryText: FallbackMBTISummary,
	}

	if s.demoMode {
		saved, err := s.registrar.Register(ctx, SampleGLB, catalog.TitleOnly(DemoTitle), catalog.Overrides{
			User:         "anonymous",
			ThumbnailURL: SampleThumb,
		})
		if err != nil {
			return SubmitResult{}, err
		}
		res.TaskID = "demo_preview_1"
		res.SavedModel = &saved
		return res, nil
	}

	taskID, err := s.tasks.CreatePreview(ctx, meshy.PreviewParams{
		Prompt:         prompt,
		NegativePrompt: negative,
		ArtStyle:       NormalizeArtStyle(opts.ArtStyle),
		ShouldRemesh:   opts.ShouldRemesh,
		IsATPose:       opts.IsATPose,
	})
	if err != nil {
		return SubmitResult{}, err
	}
	res.TaskID = taskID
	return res, nil
}
