package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/marbeau17/cms-app/internal/logging"
	"github.com/marbeau17/cms-app/internal/metrics"
)

// aiTimeout bounds one upstream generation call end to end. Image
// generation is slow; the frontend shows progress in the meantime.
const aiTimeout = 120 * time.Second

var errUnknownMode = errors.New("unknown mode")

// UpstreamError is a non-200 answer from the image API.
type UpstreamError struct {
	Status int
	Body   []byte
}

func (e *UpstreamError) Error() string {
	body := string(e.Body)
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("ai api returned %d: %s", e.Status, body)
}

// GenerateRequest is an inbound generation request. Mode selects the
// upstream endpoint; the remaining fields are mode-specific and
// ignored by modes that do not use them.
type GenerateRequest struct {
	Mode       string   `json:"mode"` // t2i | i2i | m2i
	Prompt     string   `json:"prompt"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	InitImage  *string  `json:"init_image"`
	Strength   float64  `json:"strength"`
	Images     []string `json:"images"`
	StyleImage *string  `json:"style_image"`
}

type textToImagePayload struct {
	Prompt string `json:"prompt"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type imageToImagePayload struct {
	Prompt    string  `json:"prompt"`
	InitImage *string `json:"init_image"`
	Strength  float64 `json:"strength"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
}

type multiImagePayload struct {
	Prompt     string   `json:"prompt"`
	Images     []string `json:"images"`
	StyleImage *string  `json:"style_image"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
}

// buildPayload maps a request to its upstream endpoint and payload,
// filling mode defaults: 512x512 output, image-to-image strength 0.3,
// an empty image list rather than none.
func buildPayload(req GenerateRequest) (string, any, error) {
	width, height := req.Width, req.Height
	if width == 0 {
		width = 512
	}
	if height == 0 {
		height = 512
	}

	switch req.Mode {
	case "t2i":
		return "/text-to-image", textToImagePayload{
			Prompt: req.Prompt,
			Width:  width,
			Height: height,
		}, nil
	case "i2i":
		strength := req.Strength
		if strength == 0 {
			strength = 0.3
		}
		return "/image-to-image", imageToImagePayload{
			Prompt:    req.Prompt,
			InitImage: req.InitImage,
			Strength:  strength,
			Width:     width,
			Height:    height,
		}, nil
	case "m2i":
		images := req.Images
		if images == nil {
			images = []string{}
		}
		return "/multi-image", multiImagePayload{
			Prompt:     req.Prompt,
			Images:     images,
			StyleImage: req.StyleImage,
			Width:      width,
			Height:     height,
		}, nil
	}
	return "", nil, fmt.Errorf("%w: %s", errUnknownMode, req.Mode)
}

// ImageClient forwards generation requests to the external image API.
type ImageClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewImageClient creates a client for the image API at baseURL.
func NewImageClient(baseURL, apiKey string) *ImageClient {
	return &ImageClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: aiTimeout},
	}
}

// Generate forwards one request to the endpoint its mode selects and
// returns the upstream JSON verbatim.
func (c *ImageClient) Generate(ctx context.Context, req GenerateRequest) ([]byte, error) {
	endpoint, payload, err := buildPayload(req)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ai api call: %w", err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read ai api response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: out}
	}
	return out, nil
}

// handleGenerateImage proxies one generation request. Unknown modes
// are the caller's fault; anything upstream surfaces as bad gateway.
func (s *Server) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	if s.config.BananaAPIKey == "" {
		s.sendError(w, http.StatusInternalServerError, "BANANA_API_KEY not configured")
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start := time.Now()
	out, err := s.images.Generate(r.Context(), req)
	duration := time.Since(start)
	if err != nil {
		metrics.RecordAIRequest(req.Mode, duration, false)
		var upstream *UpstreamError
		switch {
		case errors.Is(err, errUnknownMode):
			s.sendError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &upstream):
			s.sendError(w, http.StatusBadGateway, err.Error())
		default:
			s.sendError(w, http.StatusBadGateway, "ai api call failed: "+err.Error())
		}
		return
	}
	metrics.RecordAIRequest(req.Mode, duration, true)

	logging.Info("image generated",
		zap.String("mode", req.Mode),
		zap.Duration("duration", duration))

	w.Header().Set("Content-Type", "application/json")
	w.Write(out)
}
