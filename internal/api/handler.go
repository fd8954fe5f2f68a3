// Package api exposes prompt assembly and generation over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/nidhogg/concerto-copilot/internal/llm"
	"github.com/nidhogg/concerto-copilot/internal/llmerr"
	"github.com/nidhogg/concerto-copilot/internal/prompt"
	"github.com/nidhogg/concerto-copilot/internal/provider"
	"go.uber.org/zap"
)

// Assembler renders prompts for a request.
type Assembler interface {
	Assemble(ctx context.Context, docs prompt.Documents, pc prompt.PromptConfig, mc llm.ModelConfig) ([]provider.Message, error)
}

// Generator sends rendered prompts to a provider.
type Generator interface {
	GenerateContent(ctx context.Context, cfg llm.ModelConfig, messages []provider.Message) (string, error)
}

// Resolver fills server-side defaults into a request's model config.
type Resolver func(llm.ModelConfig) llm.ModelConfig

// CorpusStats reports the size of the loaded corpus for the health check.
type CorpusStats struct {
	Models    int `json:"models"`
	Templates int `json:"templates"`
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	assembler Assembler
	generator Generator
	resolve   Resolver
	stats     CorpusStats
	logger    *zap.Logger
}

// NewHandler creates a new API handler. resolve may be nil.
func NewHandler(assembler Assembler, generator Generator, resolve Resolver, stats CorpusStats, logger *zap.Logger) *Handler {
	if resolve == nil {
		resolve = func(mc llm.ModelConfig) llm.ModelConfig { return mc }
	}
	return &Handler{
		assembler: assembler,
		generator: generator,
		resolve:   resolve,
		stats:     stats,
		logger:    logger,
	}
}

// Router builds the chi router with all routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.healthCheck)
		r.Post("/prompt", h.buildPrompt)
		r.Post("/generate", h.generate)
	})

	return r
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "corpus": h.stats})
}

type promptRequest struct {
	Documents    prompt.Documents    `json:"documents"`
	PromptConfig prompt.PromptConfig `json:"prompt_config"`
	ModelConfig  llm.ModelConfig     `json:"model_config"`
}

type promptResponse struct {
	ID       string             `json:"id"`
	Messages []provider.Message `json:"messages"`
}

type generateResponse struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// decode parses the body and validates what can be checked before any
// provider call.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, needsModel bool) (*promptRequest, bool) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return nil, false
	}
	if _, err := prompt.ParseRequestType(string(req.PromptConfig.RequestType)); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return nil, false
	}
	req.PromptConfig.Language = prompt.ParseLanguage(string(req.PromptConfig.Language))
	req.ModelConfig = h.resolve(req.ModelConfig)

	rt := req.PromptConfig.RequestType
	if needsModel || rt == prompt.Model || rt == prompt.Grammar {
		if err := req.ModelConfig.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return nil, false
		}
	}
	return &req, true
}

func (h *Handler) buildPrompt(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r, false)
	if !ok {
		return
	}
	msgs, err := h.assembler.Assemble(r.Context(), req.Documents, req.PromptConfig, req.ModelConfig)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, promptResponse{ID: uuid.New().String(), Messages: msgs})
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r, true)
	if !ok {
		return
	}
	msgs, err := h.assembler.Assemble(r.Context(), req.Documents, req.PromptConfig, req.ModelConfig)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	text, err := h.generator.GenerateContent(r.Context(), req.ModelConfig, msgs)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{ID: uuid.New().String(), Text: text})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	h.logger.Warn("request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Int("status", status),
		zap.Error(err))
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, prompt.ErrUnsupportedRequestType):
		return http.StatusBadRequest
	case errors.Is(err, prompt.ErrMissingDocument):
		return http.StatusUnprocessableEntity
	}
	if d, ok := llmerr.DetailOf(err); ok && (d.Cause == llmerr.CauseStatus || d.Cause == llmerr.CauseTransport) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
