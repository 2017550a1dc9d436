package meshy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestCreatePreviewSendsDefaults(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"result": "task-123"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", zap.NewNop())
	id, err := client.CreatePreview(context.Background(), PreviewParams{
		Prompt:         "a humanoid character",
		NegativePrompt: "low quality",
		ArtStyle:       "realistic",
		ShouldRemesh:   true,
		IsATPose:       true,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if id != "task-123" {
		t.Fatalf("expected task-123, got %s", id)
	}

	if gotPath != "/openapi/v2/text-to-3d" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header: %s", gotAuth)
	}
	for key, want := range map[string]any{
		"mode":          "preview",
		"ai_model":      "latest",
		"topology":      "quad",
		"symmetry_mode": "on",
		"is_a_t_pose":   true,
		"should_remesh": true,
		"art_style":     "realistic",
	} {
		if gotBody[key] != want {
			t.Fatalf("body[%s] = %v, want %v", key, gotBody[key], want)
		}
	}
}

func TestCreateRefineBody(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{"result": "refine-1"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", zap.NewNop())
	id, err := client.CreateRefine(context.Background(), RefineParams{
		PreviewTaskID: "task-123",
		EnablePBR:     true,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if id != "refine-1" {
		t.Fatalf("expected refine-1, got %s", id)
	}
	if gotBody["mode"] != "refine" || gotBody["preview_task_id"] != "task-123" {
		t.Fatalf("unexpected body: %v", gotBody)
	}
	if _, ok := gotBody["texture_prompt"]; ok {
		t.Fatalf("empty texture prompt must be omitted")
	}
}

func TestAPIErrorCarriesUpstreamMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]string{"message": "insufficient credits"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", zap.NewNop())
	_, err := client.CreatePreview(context.Background(), PreviewParams{Prompt: "x"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusPaymentRequired || apiErr.Message != "insufficient credits" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestGetTextTo3DDecodesSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openapi/v2/text-to-3d/task-123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status":        "SUCCEEDED",
			"progress":      100,
			"model_urls":    map[string]string{"glb": "https://assets.example/m.glb"},
			"thumbnail_url": "https://assets.example/t.webp",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", zap.NewNop())
	snap, err := client.GetTextTo3D(context.Background(), "task-123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if snap.Status != "SUCCEEDED" || snap.Progress != 100 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.ModelURLs["glb"] != "https://assets.example/m.glb" {
		t.Fatalf("unexpected model urls: %v", snap.ModelURLs)
	}
}

func TestCreateRiggingRequiresInput(t *testing.T) {
	client := NewClient("http://unused.invalid", "secret", zap.NewNop())
	if _, err := client.CreateRigging(context.Background(), RiggingParams{}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestCreateRiggingDefaultsHeight(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openapi/v1/rigging" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{"result": "rig-1"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", zap.NewNop())
	id, err := client.CreateRigging(context.Background(), RiggingParams{InputTaskID: "task-123"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if id != "rig-1" {
		t.Fatalf("expected rig-1, got %s", id)
	}
	if gotBody["height_meters"] != 1.7 {
		t.Fatalf("expected default height 1.7, got %v", gotBody["height_meters"])
	}
}

func TestCreateAnimationRequiresRigTask(t *testing.T) {
	client := NewClient("http://unused.invalid", "secret", zap.NewNop())
	if _, err := client.CreateAnimation(context.Background(), AnimationParams{}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestDownloadWritesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("GLB-DATA"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "model.glb")
	client := NewClient(srv.URL, "secret", zap.NewNop())

	path, err := client.Download(context.Background(), srv.URL+"/asset.glb", dest)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(data) != "GLB-DATA" {
		t.Fatalf("unexpected file content: %q", data)
	}
}

func TestDownloadPropagatesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", zap.NewNop())
	_, err := client.Download(context.Background(), srv.URL+"/asset.glb", filepath.Join(t.TempDir(), "m.glb"))

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusGone {
		t.Fatalf("expected 410 APIError, got %v", err)
	}
}
