package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/mux"

	"github.com/zbiljic/blueprint/internal/web"
	"github.com/zbiljic/blueprint/pkg/artifact"
)

const maxBodyBytes = 64 << 10

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (artifact.Request, bool) {
	var req artifact.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.metrics.IncError("server", "decode")
		writeJSON(w, http.StatusBadRequest, apiError{
			Error: fmt.Sprintf("bad request body: %v", err),
			Kind:  "bad_request",
		})
		return req, false
	}
	return req, true
}

// GET /
func (s *Server) handleIndex() http.Handler {
	return web.Handler(s.gen.Kinds())
}

// POST /
func (s *Server) handleIndexForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.renderPage(w, r, http.StatusBadRequest, web.NewPage(s.gen.Kinds()).WithError("", err))
		return
	}

	req := artifact.NewRequest(r.PostFormValue(artifact.DescriptionField))
	page := web.NewPage(s.gen.Kinds())

	batch, err := s.gen.GenerateAll(r.Context(), req)
	if err != nil {
		s.renderPage(w, r, statusFor(err), page.WithError(req.ApplicationDescription, err))
		return
	}

	s.renderPage(w, r, http.StatusOK, page.WithBatch(batch))
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, code int, page web.Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := page.Component().Render(r.Context(), w); err != nil {
		s.logger.Error("render page failed", "err", err)
		s.metrics.IncError("server", "render")
	}
}

// POST /api/v1/generate
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	batch, err := s.gen.GenerateAll(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	code := http.StatusOK
	if batch.Failed() {
		s.logger.Warn("every artifact failed", "batch_id", batch.ID)
		code = http.StatusBadGateway
	}
	writeJSON(w, code, artifact.NewDocument(batch))
}

// POST /api/v1/artifacts/{kind}
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	kind, err := artifact.ParseKind(mux.Vars(r)["kind"])
	if err != nil || !slices.Contains(s.gen.Kinds(), kind) {
		writeJSON(w, http.StatusNotFound, apiError{
			Error: fmt.Sprintf("unknown artifact %q", mux.Vars(r)["kind"]),
			Kind:  "not_found",
		})
		return
	}

	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	res, err := s.gen.Generate(r.Context(), kind, req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// GET /api/v1/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"ok": true,
		"ts": time.Now().UTC(),
	}
	writeJSON(w, http.StatusOK, status)
}

// GET /api/v1/version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.version.Normalized())
}
