package meshy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"quiz3d/internal/domain"
)

// APIError representa un status no exitoso de la API de Meshy.
// El HTTP layer lo mapea a 400 con el mensaje upstream.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("meshy api error: status=%d %s", e.Status, e.Message)
}

// Client habla con la API de Meshy (text-to-3d, rigging, animaciones).
type Client struct {
	baseURL  string
	apiKey   string
	client   *http.Client
	download *http.Client
	logger   *zap.Logger
}

// NewClient construye el cliente. Las llamadas de metadatos usan un timeout
// de 60s; las descargas de assets grandes, 120s.
func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.meshy.ai"
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 60 * time.Second},
		download: &http.Client{Timeout: 120 * time.Second},
		logger:   logger,
	}
}

// PreviewParams son los parámetros variables del create preview; el resto de
// los campos del body usan los defaults documentados de Meshy.
type PreviewParams struct {
	Prompt         string
	NegativePrompt string
	ArtStyle       string
	ShouldRemesh   bool
	IsATPose       bool
}

// CreatePreview lanza una tarea text-to-3d en modo preview y devuelve el task id.
func (c *Client) CreatePreview(ctx context.Context, p PreviewParams) (string, error) {
	body := map[string]any{
		"mode":            "preview",
		"ai_model":        "latest",
		"topology":        "quad",
		"symmetry_mode":   "on",
		"is_a_t_pose":     p.IsATPose,
		"should_remesh":   p.ShouldRemesh,
		"prompt":          p.Prompt,
		"negative_prompt": p.NegativePrompt,
	}
	if p.ArtStyle != "" {
		body["art_style"] = p.ArtStyle
	}
	return c.createTask(ctx, "/openapi/v2/text-to-3d", body)
}

// RefineParams configura el refine sobre una preview existente.
type RefineParams struct {
	PreviewTaskID string
	EnablePBR     bool
	TexturePrompt string
}

// CreateRefine lanza el refine y devuelve el task id.
func (c *Client) CreateRefine(ctx context.Context, p RefineParams) (string, error) {
	body := map[string]any{
		"mode":            "refine",
		"preview_task_id": p.PreviewTaskID,
		"enable_pbr":      p.EnablePBR,
	}
	if p.TexturePrompt != "" {
		body["texture_prompt"] = p.TexturePrompt
	}
	return c.createTask(ctx, "/openapi/v2/text-to-3d", body)
}

// GetTextTo3D consulta el estado de una tarea text-to-3d.
func (c *Client) GetTextTo3D(ctx context.Context, taskID string) (domain.TaskSnapshot, error) {
	var snap domain.TaskSnapshot
	if err := c.getJSON(ctx, "/openapi/v2/text-to-3d/"+taskID, &snap); err != nil {
		return domain.TaskSnapshot{}, err
	}
	return snap, nil
}

// RiggingParams requiere input_task_id o model_url.
type RiggingParams struct {
	InputTaskID     string
	ModelURL        string
	HeightMeters    float64
	TextureImageURL string
}

// CreateRigging lanza una tarea de rigging (API v1) y devuelve el task id.
func (c *Client) CreateRigging(ctx context.Context, p RiggingParams) (string, error) {
	if p.InputTaskID == "" && p.ModelURL == "" {
		return "", fmt.Errorf("either input_task_id or model_url is required for rigging")
	}
	height := p.HeightMeters
	if height <= 0 {
		height = 1.7
	}
	body := map[string]any{"height_meters": height}
	if p.InputTaskID != "" {
		body["input_task_id"] = p.InputTaskID
	}
	if p.ModelURL != "" {
		body["model_url"] = p.ModelURL
	}
	if p.TextureImageURL != "" {
		body["texture_image_url"] = p.TextureImageURL
	}
	return c.createTask(ctx, "/openapi/v1/rigging", body)
}

// GetRigging devuelve el documento de la tarea de rigging tal cual lo entrega la API.
func (c *Client) GetRigging(ctx context.Context, taskID string) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, "/openapi/v1/rigging/"+taskID, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AnimationParams configura una tarea de animación sobre un rig existente.
type AnimationParams struct {
	RigTaskID   string
	ActionID    int
	PostProcess map[string]any
}

// CreateAnimation lanza una tarea de animación (API v1) y devuelve el task id.
func (c *Client) CreateAnimation(ctx context.Context, p AnimationParams) (string, error) {
	if p.RigTaskID == "" {
		return "", fmt.Errorf("rig_task_id is required")
	}
	body := map[string]any{
		"rig_task_id": p.RigTaskID,
		"action_id":   p.ActionID,
	}
	if len(p.PostProcess) > 0 {
		body["post_process"] = p.PostProcess
	}
	return c.createTask(ctx, "/openapi/v1/animations", body)
}

// GetAnimation devuelve el documento de la tarea de animación sin transformar.
func (c *Client) GetAnimation(ctx context.Context, taskID string) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, "/openapi/v1/animations/"+taskID, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Download guarda el asset de url en destPath, en streaming.
func (c *Client) Download(ctx context.Context, url, destPath string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.download.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	f, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return destPath, nil
}

func (c *Client) createTask(ctx context.Context, path string, body map[string]any) (string, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var out struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if out.Result == "" {
		return "", fmt.Errorf("meshy empty task id")
	}
	return out.Result, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// checkStatus convierte un status >= 400 en *APIError con el mensaje upstream.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	raw, _ := io.ReadAll(resp.Body)
	msg := strings.TrimSpace(string(raw))
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Message != "" {
		msg = parsed.Message
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
