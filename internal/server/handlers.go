package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/koustreak/sqlbridge/internal/errs"
	"github.com/koustreak/sqlbridge/internal/value"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		requestLogger(r).WarnWith("health check failed", err, nil)
		writeErrorStatus(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCapabilities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":         s.router.Name(),
		"instructions": s.router.Instructions(),
		"capabilities": s.router.Capabilities(),
	})
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.router.ListTools()})
}

func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	args, err := decodeArguments(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	content, err := s.router.CallTool(r.Context(), name, args)
	if err != nil {
		requestLogger(r).WarnWith("tool call failed", err, map[string]interface{}{
			"tool": name,
			"kind": errs.KindOf(err).String(),
		})
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"content": content})
}

// decodeArguments reads the tool argument object. An empty body is an empty
// object; anything else must be a single JSON object.
func decodeArguments(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	v, err := value.Decode(body)
	if errors.Is(err, io.EOF) {
		return map[string]any{}, nil
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errs.Newf(errs.ErrKindInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "request body is not valid JSON", err)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errs.New(errs.ErrKindInvalidInput, "request body must be a JSON object")
	}
	return obj, nil
}

func (s *Server) handleListResources(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"resources": s.router.ListResources()})
}

func (s *Server) handleReadResource(w http.ResponseWriter, r *http.Request) {
	text, err := s.router.ReadResource(r.Context(), chi.URLParam(r, "*"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contents": text})
}

func (s *Server) handleListPrompts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"prompts": s.router.ListPrompts()})
}

func (s *Server) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	text, err := s.router.GetPrompt(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"prompt": text})
}
