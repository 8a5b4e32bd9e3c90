package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	apierrors "github.com/diogo/tobchat/internal/errors"
	"github.com/diogo/tobchat/internal/models"
	"github.com/diogo/tobchat/internal/sse"
)

// maxBodyBytes bounds the request body of POST /api/chat
const maxBodyBytes = 1 << 20

type healthResponse struct {
	Status   string `json:"status"`
	Name     string `json:"name"`
	Version  string `json:"version"`
	Provider string `json:"provider,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Name:     models.ChatbotName,
		Version:  models.ChatbotVersion,
		Provider: s.opts.Provider,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	log := s.logger.With().
		Str("requestID", middleware.GetReqID(r.Context())).
		Str("session", r.Header.Get(models.SessionHeader)).
		Logger()

	var req models.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		status := http.StatusBadRequest
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, apierrors.NewChatbotError("Invalid request payload", apierrors.CodeInvalidBody, status, nil))
		return
	}
	if err := validateMessages(req.Messages); err != nil {
		log.Debug().Err(err).Msg("rejected chat request")
		writeError(w, err)
		return
	}

	stream, err := sse.NewWriter(w)
	if err != nil {
		writeError(w, apierrors.HandleChatbotError(err, models.ErrMsgGeneral))
		return
	}
	w.WriteHeader(http.StatusOK)

	deltas := 0
	err = s.agent.Stream(r.Context(), req.Messages, func(delta string) error {
		deltas++
		return stream.WriteText(delta)
	})

	switch {
	case err == nil:
		log.Debug().Int("deltas", deltas).Msg("chat stream finished")
	case r.Context().Err() != nil:
		log.Info().Int("deltas", deltas).Msg("client disconnected")
		return
	default:
		log.Error().Err(err).Int("deltas", deltas).Str("agent", s.agent.Name()).Msg("agent failed")
		if werr := stream.WriteError(models.ErrMsgGeneral); werr != nil {
			return
		}
	}

	if err := stream.WriteDone(); err != nil {
		log.Debug().Err(err).Msg("failed to write done frame")
	}
}

// validateMessages checks roles and that the latest user message is a valid query
func validateMessages(messages []models.Message) *apierrors.ChatbotError {
	if len(messages) == 0 {
		return apierrors.NewChatbotError("messages must not be empty", apierrors.CodeInvalidBody, http.StatusBadRequest, nil)
	}

	last := -1
	for i, m := range messages {
		if !m.Role.Valid() {
			return apierrors.NewChatbotError("unknown message role", apierrors.CodeInvalidBody, http.StatusBadRequest,
				map[string]any{"index": i, "role": string(m.Role)})
		}
		if m.Role == models.RoleUser {
			last = i
		}
	}

	if last < 0 || !models.IsValidQuery(messages[last].Content) {
		return apierrors.NewChatbotError(models.ErrMsgInvalidQuery, apierrors.CodeInvalidQuery, http.StatusBadRequest, nil)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, err *apierrors.ChatbotError) {
	status := err.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, errorResponse{Error: err.Message, Code: err.Code})
}
