package catalog

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"quiz3d/internal/domain"
)

const modelsCollection = "models"

// FirestoreStore implementa DocumentStore sobre la colección "models".
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore abre el cliente de Firestore para el proyecto indicado.
func NewFirestoreStore(ctx context.Context, projectID string, opts ...option.ClientOption) (*FirestoreStore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firestore project id is required")
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

// Insert crea el documento con created_at asignado por el servidor.
func (s *FirestoreStore) Insert(ctx context.Context, doc ModelDoc) (string, error) {
	ref := s.client.Collection(modelsCollection).NewDoc()
	_, err := ref.Set(ctx, map[string]any{
		"title":         doc.Title,
		"public_url":    doc.PublicURL,
		"thumbnail_url": doc.ThumbnailURL,
		"path":          doc.Path,
		"user":          doc.User,
		"profile":       doc.Profile,
		"created_at":    firestore.ServerTimestamp,
	})
	if err != nil {
		return "", fmt.Errorf("set document: %w", err)
	}
	return ref.ID, nil
}

// ListRecent devuelve hasta limit documentos, más nuevos primero.
func (s *FirestoreStore) ListRecent(ctx context.Context, limit int) ([]domain.CatalogEntry, error) {
	iter := s.client.Collection(modelsCollection).
		OrderBy("created_at", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var entries []domain.CatalogEntry
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate documents: %w", err)
		}
		entries = append(entries, entryFromDoc(snap.Ref.ID, snap.Data()))
	}
	return entries, nil
}

// Close cierra el cliente subyacente.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

// entryFromDoc normaliza el documento con los mismos defaults defensivos que
// se aplican al registrar (título localizado, user anonymous, perfil vacío).
func entryFromDoc(id string, data map[string]any) domain.CatalogEntry {
	entry := domain.CatalogEntry{
		ID:           id,
		Title:        stringField(data, "title"),
		PublicURL:    stringField(data, "public_url"),
		ThumbnailURL: stringField(data, "thumbnail_url"),
		Path:         stringField(data, "path"),
		User:         stringField(data, "user"),
	}
	if entry.Title == "" {
		entry.Title = DefaultTitle
	}
	if entry.User == "" {
		entry.User = "anonymous"
	}
	if created, ok := data["created_at"].(time.Time); ok {
		entry.CreatedAt = created.UTC().Format(time.RFC3339)
	}
	if profile, ok := data["profile"].(map[string]any); ok {
		entry.Profile = profileFromDoc(profile)
	}
	return entry
}

func profileFromDoc(data map[string]any) domain.Profile {
	var p domain.Profile
	if vibe, ok := data["vibe"].([]any); ok {
		for _, v := range vibe {
			if s, ok := v.(string); ok {
				p.Vibe = append(p.Vibe, s)
			}
		}
	}
	p.Theme = stringField(data, "theme")
	p.Details = stringField(data, "details")
	p.Color = stringField(data, "color")
	if norm, ok := data["norm"].(map[string]any); ok {
		p.Norm = make(map[string]float64, len(norm))
		for k, v := range norm {
			if f, ok := v.(float64); ok {
				p.Norm[k] = f
			}
		}
	}
	return p
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}
