package server

import (
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"strings"

	"github.com/lewisedginton/local_places/internal/tools"
	"github.com/lewisedginton/local_places/pkg/logger"
)

//go:embed web
var webFS embed.FS

// Error categories surfaced to API clients.
const (
	errConfigurationMissing = "configuration_missing"
	errValidation           = "validation_error"
	errStoreFailure         = "store_failure"
	errOracleFailure        = "oracle_failure"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"sessionId"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": ServiceName,
	})
}

func (s *Server) handleAPIInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":     "Local Places MCP Server",
		"version":     "1.0.0",
		"description": "MCP server for local places database with AI chatbot",
		"endpoints": map[string]string{
			"GET /health":          "Health check",
			"GET /api":             "API information",
			"GET /api/places":      "Get all places (for map display)",
			"POST /api/chat":       "Chat with AI about places (body: { message, sessionId? })",
			"POST /api/chat/reset": "Reset conversation (body: { sessionId })",
			"GET /":                "Web interface",
		},
		"mcp_tools": tools.Names(),
		"example_questions": []string{
			"Find me a good coffee shop",
			"Show me all parks",
			"What are the best rated restaurants?",
			"Add a new cafe called The Bean Counter",
			"What are the statistics for gyms?",
			"Find bookstores with WiFi",
		},
	})
}

func (s *Server) handleListPlaces(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusInternalServerError, errConfigurationMissing, "Database not configured")
		return
	}

	all, err := s.store.GetAll(r.Context())
	if err != nil {
		s.log.Error("failed to list places", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, errStoreFailure, "Failed to fetch places")
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusInternalServerError, errConfigurationMissing, "Database not configured")
		return
	}
	if s.bridge == nil {
		writeError(w, http.StatusInternalServerError, errConfigurationMissing, "API key not configured")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errValidation, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, errValidation, "Message is required")
		return
	}

	sess := s.sessions.GetOrCreate(req.SessionID)
	answer, err := s.bridge.Converse(r.Context(), sess, req.Message)
	if err != nil {
		s.log.Error("chat turn failed",
			logger.SessionIDField(sess.Token),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, errOracleFailure, "Failed to process chat message")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:  answer,
		SessionID: sess.Token,
	})
}

func (s *Server) handleChatReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errValidation, "Invalid request body")
		return
	}

	s.sessions.Reset(req.SessionID)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Conversation reset",
	})
}

// staticHandler serves the embedded web UI. Unknown paths get a plain 404.
func (s *Server) staticHandler() http.Handler {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}
	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		if path == "" {
			path = "index.html"
		}
		if _, err := fs.Stat(sub, path); err != nil {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, category, details string) {
	writeJSON(w, status, errorResponse{Error: category, Details: details})
}
