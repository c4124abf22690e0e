package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"

	"github.com/shouni/product-scene-studio/pkg/domain"
	"github.com/shouni/product-scene-studio/pkg/encoder"
	"github.com/shouni/product-scene-studio/pkg/imgutil"
	"github.com/shouni/product-scene-studio/pkg/state"
)

const uploadField = "file"

type studioService interface {
	Store() *state.Store
	Presets() []domain.Preset
	Upload(ctx context.Context, fileName string, r io.Reader, declaredType string) error
	SetPrompt(prompt string)
	SelectPreset(index int) error
	StartGenerate(ctx context.Context) bool
	StartGenerateBatch(ctx context.Context) bool
}

// PromptRequest は PUT /api/prompt のリクエストボディです。
// PresetIndex が指定された場合は Prompt より優先されます。
type PromptRequest struct {
	Prompt      string `json:"prompt"`
	PresetIndex *int   `json:"presetIndex,omitempty"`
}

type StudioHandler struct {
	service        studioService
	maxUploadBytes int64
}

func NewStudioHandler(service studioService, maxUploadBytes int64) *StudioHandler {
	return &StudioHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes は /api 配下のルーティングを返します。
func (h *StudioHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/state", h.State)
	r.Get("/events", h.Events)
	r.Get("/presets", h.Presets)
	r.Post("/image", h.Upload)
	r.Put("/prompt", h.SetPrompt)
	r.Post("/generate", h.Generate)
	r.Post("/generate/batch", h.GenerateBatch)
	r.Get("/images/{index}/download", h.Download)
	return r
}

func (h *StudioHandler) State(w http.ResponseWriter, r *http.Request) {
	h.writeView(w, http.StatusOK)
}

func (h *StudioHandler) Presets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Presets())
}

func (h *StudioHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("file exceeds %d bytes", h.maxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, fmt.Sprintf("invalid upload: %s", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	err = h.service.Upload(r.Context(), header.Filename, file, header.Header.Get("Content-Type"))
	switch {
	case errors.Is(err, encoder.ErrNotImage):
		http.Error(w, "only image/* files are accepted", http.StatusUnsupportedMediaType)
	case err != nil:
		h.writeView(w, http.StatusUnprocessableEntity)
	default:
		h.writeView(w, http.StatusOK)
	}
}

func (h *StudioHandler) SetPrompt(w http.ResponseWriter, r *http.Request) {
	var req PromptRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid JSON: %s", err), http.StatusBadRequest)
		return
	}

	if req.PresetIndex != nil {
		if err := h.service.SelectPreset(*req.PresetIndex); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
	} else {
		h.service.SetPrompt(req.Prompt)
	}
	h.writeView(w, http.StatusOK)
}

func (h *StudioHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if !h.service.StartGenerate(context.WithoutCancel(r.Context())) {
		h.writeView(w, http.StatusConflict)
		return
	}
	h.writeView(w, http.StatusAccepted)
}

func (h *StudioHandler) GenerateBatch(w http.ResponseWriter, r *http.Request) {
	if !h.service.StartGenerateBatch(context.WithoutCancel(r.Context())) {
		h.writeView(w, http.StatusConflict)
		return
	}
	h.writeView(w, http.StatusAccepted)
}

func (h *StudioHandler) Download(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}

	img, ok := h.service.Store().Snapshot().GeneratedImage(index)
	if !ok {
		http.NotFound(w, r)
		return
	}

	data, contentType := img.Image.Payload, img.Image.MediaType
	if converted, err := imgutil.ToPNG(data, contentType); err == nil {
		data, contentType = converted, imgutil.PNGMimeType
	} else {
		slog.WarnContext(r.Context(), "PNGへの変換に失敗したため元の形式で返します", "name", img.Name, "type", contentType, "error", err)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": img.FileName()}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *StudioHandler) writeView(w http.ResponseWriter, status int) {
	writeJSON(w, status, state.Project(h.service.Store().Snapshot()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to encode: %s", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
