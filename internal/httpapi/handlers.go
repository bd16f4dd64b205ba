package httpapi

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AskRequest is the request body for POST /api/ask.
type AskRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleUpload accepts multipart markdown uploads, spools them to the
// upload directory and ingests them under the caller's session.
func (s *Server) handleUpload(c echo.Context) error {
	sessionID := c.FormValue("session_id")
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	form, err := c.MultipartForm()
	if err != nil {
		s.logger.Warn("invalid upload request", zap.Error(err))
		return respond(c, http.StatusBadRequest, false, "multipart form required", nil)
	}
	files := form.File["files"]
	if len(files) == 0 {
		return respond(c, http.StatusBadRequest, false, "no files provided", nil)
	}

	spoolDir := filepath.Join(s.config.UploadDir, sessionID)
	if err := os.MkdirAll(spoolDir, 0o755); err != nil {
		s.logger.Error("failed to create upload directory", zap.Error(err))
		return respond(c, http.StatusInternalServerError, false, "upload storage unavailable", nil)
	}

	paths := make([]string, 0, len(files))
	for _, fh := range files {
		dst := filepath.Join(spoolDir, filepath.Base(fh.Filename))
		if err := spoolFile(fh, dst); err != nil {
			s.logger.Warn("failed to spool uploaded file",
				zap.String("filename", fh.Filename),
				zap.Error(err),
			)
			continue
		}
		paths = append(paths, dst)
	}

	results := s.ingestor.IngestFiles(c.Request().Context(), paths, sessionID)

	succeeded := 0
	for _, r := range results {
		if r.Error == "" {
			succeeded++
		}
	}

	return respond(c, http.StatusOK, succeeded > 0,
		uploadMessage(succeeded, len(results)),
		map[string]interface{}{
			"session_id": sessionID,
			"files":      results,
		})
}

func uploadMessage(succeeded, total int) string {
	if succeeded == total {
		return "all files ingested"
	}
	return strconv.Itoa(succeeded) + " of " + strconv.Itoa(total) + " files ingested"
}

// handleAsk answers a question for a session.
func (s *Server) handleAsk(c echo.Context) error {
	var req AskRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid ask request", zap.Error(err))
		return respond(c, http.StatusBadRequest, false, "invalid request body", nil)
	}

	if strings.TrimSpace(req.Question) == "" {
		return respond(c, http.StatusBadRequest, false, "question field is required", nil)
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	answer := s.orchestrator.Answer(c.Request().Context(), req.Question, req.SessionID)
	return respond(c, http.StatusOK, true, "", answer)
}

// handleSearch performs an unscoped similarity search for diagnostics.
func (s *Server) handleSearch(c echo.Context) error {
	query := c.QueryParam("q")
	if strings.TrimSpace(query) == "" {
		return respond(c, http.StatusBadRequest, false, "q parameter is required", nil)
	}

	k := 0
	if raw := c.QueryParam("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return respond(c, http.StatusBadRequest, false, "k must be a positive integer", nil)
		}
		k = parsed
	}

	results, err := s.orchestrator.Search(c.Request().Context(), query, k)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		return respond(c, http.StatusInternalServerError, false, "search failed", nil)
	}

	return respond(c, http.StatusOK, true, "", map[string]interface{}{
		"query":   query,
		"results": results,
	})
}

// handleHistory returns the session's conversation history.
func (s *Server) handleHistory(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return respond(c, http.StatusBadRequest, false, "session_id parameter is required", nil)
	}

	history := s.orchestrator.History(sessionID)
	return respond(c, http.StatusOK, true, "", map[string]interface{}{
		"session_id": sessionID,
		"history":    history,
	})
}

// handleClearConversation clears the session's conversation history. The
// session's indexed passages are untouched.
func (s *Server) handleClearConversation(c echo.Context) error {
	sessionID := c.FormValue("session_id")
	if sessionID == "" {
		var req AskRequest
		if err := c.Bind(&req); err == nil {
			sessionID = req.SessionID
		}
	}
	if sessionID == "" {
		return respond(c, http.StatusBadRequest, false, "session_id is required", nil)
	}

	s.orchestrator.ClearConversation(sessionID)
	return respond(c, http.StatusOK, true, "conversation cleared", map[string]interface{}{
		"session_id": sessionID,
	})
}

// handleStats returns the system status snapshot.
func (s *Server) handleStats(c echo.Context) error {
	stats, err := s.orchestrator.Stats(c.Request().Context())
	if err != nil {
		s.logger.Error("stats failed", zap.Error(err))
		return respond(c, http.StatusInternalServerError, false, "stats unavailable", nil)
	}
	return respond(c, http.StatusOK, true, "", stats)
}

// handleReset deletes every stored passage across all sessions.
func (s *Server) handleReset(c echo.Context) error {
	if err := s.orchestrator.ResetCollection(c.Request().Context()); err != nil {
		s.logger.Error("collection reset failed", zap.Error(err))
		return respond(c, http.StatusInternalServerError, false, "reset failed", nil)
	}
	return respond(c, http.StatusOK, true, "collection reset", nil)
}

// spoolFile copies an uploaded file to dst.
func spoolFile(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}
