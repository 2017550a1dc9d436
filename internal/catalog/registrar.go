package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quiz3d/internal/domain"
)

// DefaultTitle es el título localizado cuando no se indica ninguno.
const DefaultTitle = "生成モデル"

// ObjectStore sube blobs y devuelve su URL pública.
type ObjectStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
}

// DocumentStore persiste y lista los documentos del catálogo.
type DocumentStore interface {
	Insert(ctx context.Context, doc ModelDoc) (string, error)
	ListRecent(ctx context.Context, limit int) ([]domain.CatalogEntry, error)
}

// ModelDoc es el documento que se inserta por cada modelo registrado.
// El timestamp de creación lo asigna el store, no el caller.
type ModelDoc struct {
	Title        string
	PublicURL    string
	ThumbnailURL string
	Path         string
	User         string
	Profile      domain.Profile
}

// FetchError indica que el asset remoto respondió un status no exitoso.
type FetchError struct {
	URL    string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch asset %s: status=%d", e.URL, e.Status)
}

// Meta es el registro unificado de metadatos de un registro.
// Reemplaza al patrón "string o dict" del que venía este flujo: se construye
// con TitleOnly o con un literal de Meta.
type Meta struct {
	Title   string
	User    string
	Profile domain.Profile
	Ext     string
	Slug    string
}

// TitleOnly construye un Meta que solo fija el título.
func TitleOnly(title string) Meta {
	return Meta{Title: title}
}

// Overrides pisa campos del Meta base; un campo vacío no pisa nada.
type Overrides struct {
	User         string
	Profile      *domain.Profile
	Ext          string
	Slug         string
	ThumbnailURL string
}

// Registrar descarga un asset y lo persiste en el catálogo.
type Registrar struct {
	objects ObjectStore
	docs    DocumentStore
	fetch   *http.Client
	logger  *zap.Logger
}

// NewRegistrar construye el registrar; fetch nil usa un cliente con timeout
// amplio para descargas grandes.
func NewRegistrar(objects ObjectStore, docs DocumentStore, fetch *http.Client, logger *zap.Logger) *Registrar {
	if fetch == nil {
		fetch = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Registrar{objects: objects, docs: docs, fetch: fetch, logger: logger}
}

// Register descarga assetURL, sube el blob a models/<filename> y crea el
// documento del catálogo. La secuencia no es transaccional: si el insert
// falla después del upload, el blob queda huérfano y solo se loguea.
func (r *Registrar) Register(ctx context.Context, assetURL string, meta Meta, ov Overrides) (domain.CatalogEntry, error) {
	data, err := r.fetchAsset(ctx, assetURL)
	if err != nil {
		return domain.CatalogEntry{}, err
	}

	merged := mergeMeta(meta, ov)
	filename := fmt.Sprintf("model_%d_%s.%s", time.Now().Unix(), uuid.NewString()[:8], merged.Ext)
	path := "models/" + filename

	publicURL, err := r.objects.Upload(ctx, path, data, "model/gltf-binary")
	if err != nil {
		return domain.CatalogEntry{}, fmt.Errorf("upload blob: %w", err)
	}

	doc := ModelDoc{
		Title:        merged.Title,
		PublicURL:    publicURL,
		ThumbnailURL: ov.ThumbnailURL,
		Path:         path,
		User:         merged.User,
		Profile:      merged.Profile,
	}
	id, err := r.docs.Insert(ctx, doc)
	if err != nil {
		r.logger.Error("catalog insert failed, blob orphaned",
			zap.String("path", path), zap.Error(err))
		return domain.CatalogEntry{}, fmt.Errorf("insert document: %w", err)
	}

	return domain.CatalogEntry{
		ID:           id,
		Title:        doc.Title,
		PublicURL:    doc.PublicURL,
		ThumbnailURL: doc.ThumbnailURL,
		Path:         doc.Path,
		User:         doc.User,
		Profile:      doc.Profile,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// List devuelve las entradas más recientes, orden descendente por creación.
func (r *Registrar) List(ctx context.Context, limit int) ([]domain.CatalogEntry, error) {
	return r.docs.ListRecent(ctx, limit)
}

func (r *Registrar) fetchAsset(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := r.fetch.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &FetchError{URL: url, Status: resp.StatusCode}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read asset: %w", err)
	}
	return data, nil
}

// mergeMeta aplica los overrides sobre el meta base y completa defaults.
func mergeMeta(meta Meta, ov Overrides) Meta {
	out := meta
	if ov.User != "" {
		out.User = ov.User
	}
	if ov.Profile != nil {
		out.Profile = *ov.Profile
	}
	if ov.Ext != "" {
		out.Ext = ov.Ext
	}
	if ov.Slug != "" {
		out.Slug = ov.Slug
	}

	if out.Slug == "" {
		out.Slug = "model"
	}
	if out.Title == "" {
		out.Title = DefaultTitle
	}
	if out.User == "" {
		out.User = "anonymous"
	}
	if out.Ext == "" {
		out.Ext = "glb"
	}
	return out
}
