package domain

// Identificadores fijos de los cuatro ejes de personalidad.
const (
	TraitEnergy      = "energy"
	TraitImagination = "imagination"
	TraitDecision    = "decision"
	TraitOrder       = "order"
)

// TraitIDs mantiene el orden canónico de los ejes.
var TraitIDs = []string{TraitEnergy, TraitImagination, TraitDecision, TraitOrder}

// KnownTrait indica si el identificador corresponde a un eje válido.
func KnownTrait(id string) bool {
	for _, t := range TraitIDs {
		if t == id {
			return true
		}
	}
	return false
}

// Answer es una respuesta individual del quiz (índice Likert 0..4).
type Answer struct {
	TraitID     string `json:"trait_id"`
	ChoiceIndex int    `json:"choice_index"`
}

// TraitScores acumula el puntaje entero por eje durante un submit.
type TraitScores map[string]int

// Profile es el snapshot derivado e inmutable de los puntajes normalizados.
// Todos los campos llevan omitempty para que un perfil vacío serialice como {}.
// Los tags de firestore mantienen las mismas claves en el documento persistido.
type Profile struct {
	Vibe    []string           `json:"vibe,omitempty" firestore:"vibe"`
	Theme   string             `json:"theme,omitempty" firestore:"theme"`
	Details string             `json:"details,omitempty" firestore:"details"`
	Color   string             `json:"color,omitempty" firestore:"color"`
	Norm    map[string]float64 `json:"norm,omitempty" firestore:"norm"`
}

// QuizQuestion es una pregunta efímera; se regenera en cada request.
type QuizQuestion struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	TraitID string   `json:"trait_id"`
	Options []string `json:"options"`
}

// QuestionSet es la respuesta versionada de GET /api/quiz/questions.
type QuestionSet struct {
	Version   string         `json:"version"`
	Questions []QuizQuestion `json:"questions"`
}

// Estados de una tarea asíncrona; los valores autoritativos vienen de la API externa.
const (
	TaskPending    = "PENDING"
	TaskInProgress = "IN_PROGRESS"
	TaskSucceeded  = "SUCCEEDED"
	TaskFailed     = "FAILED"
)

// TaskSnapshot es la vista local de una tarea de generación 3D.
// Solo se lee por polling; nunca se persiste directamente.
type TaskSnapshot struct {
	ID           string            `json:"id,omitempty"`
	Status       string            `json:"status"`
	Progress     int               `json:"progress"`
	ModelURLs    map[string]string `json:"model_urls,omitempty"`
	ThumbnailURL string            `json:"thumbnail_url,omitempty"`
	TextureURLs  []map[string]any  `json:"texture_urls,omitempty"`
	TaskError    *TaskError        `json:"task_error,omitempty"`
}

// TaskError transporta el mensaje de fallo que reporta la API externa.
type TaskError struct {
	Message string `json:"message,omitempty"`
}

// CatalogEntry es el registro persistido de un modelo generado.
// PublicURL y Path se asignan siempre juntos; ThumbnailURL puede faltar.
type CatalogEntry struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	PublicURL    string  `json:"public_url"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
	Path         string  `json:"path"`
	User         string  `json:"user"`
	Profile      Profile `json:"profile"`
	CreatedAt    string  `json:"created_at"`
}
