// Package api provides HTTP handlers for Formi endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ku28/formi/internal/catalog"
	"github.com/ku28/formi/internal/models"
)

// chatHandler advances a booking conversation by one turn (POST /chat).
func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.chatHandler: processing chat request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.chatHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.chatHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	response, err := s.driver.HandleMessage(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrEmptyMessage), errors.Is(err, models.ErrMessageTooLong):
			slog.Warn("Server.chatHandler: validation failed", "error", err)
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		case errors.Is(err, catalog.ErrTemplateNotFound):
			slog.Error("Server.chatHandler: session references unknown template", "error", err)
			writeJSONResponse(w, http.StatusConflict, models.Error("Conversation is in an unknown state"))
		default:
			slog.Error("Server.chatHandler: failed to handle message", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to process message"))
		}
		return
	}

	slog.Info("Server.chatHandler: turn processed", "conversationID", response.ConversationID, "state", response.CurrentState)
	writeJSONResponse(w, http.StatusOK, models.Success(response))
}

// citiesHandler lists the cities with outlets (GET /cities).
func (s *Server) citiesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(s.base.Cities()))
}

// outletsHandler lists or resolves outlets in a city
// (GET /cities/{city}/outlets and GET /cities/{city}/outlets/{location}).
func (s *Server) outletsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/cities/")
	segments := strings.SplitN(path, "/", 3)
	if len(segments) < 2 || segments[1] != "outlets" {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Not found"))
		return
	}
	city := segments[0]
	if !s.base.IsValidCity(city) {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown city"))
		return
	}

	if len(segments) == 3 && segments[2] != "" {
		outlet, err := s.base.OutletDetails(city, segments[2])
		if err != nil {
			writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown outlet"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(outlet))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(s.base.LocationsForCity(city)))
}

// menuHandler returns the menu, optionally restricted to vegetarian
// categories (GET /menu?veg=true).
func (s *Server) menuHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	vegOnly := strings.EqualFold(r.URL.Query().Get("veg"), "true")
	writeJSONResponse(w, http.StatusOK, models.Success(s.base.Menu(vegOnly)))
}

// faqHandler serves FAQ search and lookup
// (GET /faq/search?q=...&category=... and GET /faq/{id}).
func (s *Server) faqHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/faq/")
	if path == "search" {
		query := r.URL.Query().Get("q")
		category := r.URL.Query().Get("category")
		results := s.base.SearchFAQs(query, category)
		if len(results) == 0 {
			writeJSONResponse(w, http.StatusNotFound, models.Error("No FAQs found matching the query"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(results))
		return
	}

	faq, ok := s.base.FAQByID(path)
	if !ok {
		writeJSONResponse(w, http.StatusNotFound, models.Error("FAQ not found"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(faq))
}

// sessionHandler returns one conversation session for inspection
// (GET /sessions/{id}).
func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	conversationID := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if conversationID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing conversation ID"))
		return
	}
	session, err := s.sessions.GetSession(conversationID)
	if err != nil {
		slog.Error("Server.sessionHandler: session lookup failed", "error", err, "conversationID", conversationID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch session"))
		return
	}
	if session == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(session))
}

// healthHandler reports liveness (GET /health).
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("ok", nil))
}
