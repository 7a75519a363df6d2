package server

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bastiangx/contactserve/internal/logger"
	"github.com/bastiangx/contactserve/internal/utils"
	"github.com/bastiangx/contactserve/pkg/config"
	"github.com/bastiangx/contactserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the IPC for contact suggestions.
type Server struct {
	engine  suggest.ISuggester
	cfg     *config.Config
	decoder *msgpack.Decoder
	encoder *msgpack.Encoder
	logger  *log.Logger
}

// NewServer creates a suggestion server using stdin/stdout for IPC.
func NewServer(engine suggest.ISuggester, cfg *config.Config) *Server {
	return newServerWithIO(engine, cfg, os.Stdin, os.Stdout)
}

// newServerWithIO wires explicit streams; tests use buffers here.
func newServerWithIO(engine suggest.ISuggester, cfg *config.Config, r io.Reader, w io.Writer) *Server {
	return &Server{
		engine:  engine,
		cfg:     cfg,
		decoder: msgpack.NewDecoder(r),
		encoder: msgpack.NewEncoder(w),
		logger:  logger.New("ipc"),
	}
}

// Start begins listening for IPC requests. It returns nil on clean EOF.
func (s *Server) Start() error {
	s.logger.Debug("Starting server")
	s.sendResponse(StatusResponse{Status: "ready"})

	for {
		var request SearchRequest
		if err := s.decoder.Decode(&request); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			s.logger.Errorf("Decoding request: %v", err)
			return err
		}
		s.handleRequest(request)
	}
}

// handleRequest dispatches one decoded request by action.
func (s *Server) handleRequest(request SearchRequest) {
	switch request.Action {
	case "", "search":
		s.handleSearch(request)
	case "record_usage":
		s.handleRecordUsage(request)
	case "refresh":
		s.handleRefresh(request)
	case "stats":
		s.sendResponse(StatsResponse{ID: request.ID, Stats: s.engine.Stats()})
	case "health":
		s.sendResponse(StatusResponse{ID: request.ID, Status: "ok"})
	default:
		s.sendError(request.ID, fmt.Sprintf("Unknown action: %s", request.Action), 400)
	}
}

// handleSearch validates the query, ranks suggestions and sends the
// response with timing information.
func (s *Server) handleSearch(request SearchRequest) {
	query := strings.TrimSpace(request.Query)

	if query == "" {
		s.sendError(request.ID, "Missing 'q' parameter", 400)
		s.logger.Debug("Query is empty in request")
		return
	}
	if len(query) < s.cfg.Server.MinQuery {
		s.sendError(request.ID, fmt.Sprintf("Query must be at least %d characters", s.cfg.Server.MinQuery), 400)
		return
	}
	if len(query) > s.cfg.Server.MaxQuery {
		s.sendError(request.ID, fmt.Sprintf("Query exceeds maximum length of %d characters", s.cfg.Server.MaxQuery), 400)
		return
	}
	if s.cfg.Server.EnableFilter && !utils.IsValidQuery(query) {
		s.sendError(request.ID, "Query contains unsupported characters", 400)
		return
	}

	limit := request.Limit
	if limit < 1 {
		limit = s.cfg.Cache.DefaultLimit
	}
	if limit > s.cfg.Server.MaxLimit {
		limit = s.cfg.Server.MaxLimit
	}

	start := time.Now()
	suggestions := s.engine.Search(query)
	if limit < len(suggestions) {
		suggestions = suggestions[:limit]
	}
	elapsed := time.Since(start)

	ranks := utils.CreateRankList(len(suggestions))
	wire := make([]WireSuggestion, len(suggestions))
	for i := range suggestions {
		sg := &suggestions[i]
		wire[i] = WireSuggestion{
			Email:       sg.Email,
			DisplayName: sg.DisplayName(),
			Domain:      sg.Domain(),
			Initials:    sg.Initials(),
			Rank:        ranks[i],
			Frequency:   sg.Frequency,
			Source:      sg.Source.String(),
		}
	}

	s.sendResponse(SearchResponse{
		ID:          request.ID,
		Suggestions: wire,
		Count:       len(wire),
		TimeTaken:   elapsed.Microseconds(),
	})
}

// handleRecordUsage forwards one usage event to the engine.
func (s *Server) handleRecordUsage(request SearchRequest) {
	if strings.TrimSpace(request.Address) == "" {
		s.sendError(request.ID, "Missing 'addr' parameter", 400)
		return
	}
	s.engine.RecordUsage(request.Address, request.Name)
	s.sendResponse(StatusResponse{ID: request.ID, Status: "recorded"})
}

// handleRefresh rebuilds the cache regardless of staleness.
func (s *Server) handleRefresh(request SearchRequest) {
	if err := s.engine.ForceRefresh(); err != nil {
		s.logger.Errorf("Refresh failed: %v", err)
		s.sendError(request.ID, "Refresh failed", 500)
		return
	}
	s.sendResponse(StatusResponse{ID: request.ID, Status: "refreshed"})
}

// sendResponse encodes the given response as msgpack onto the wire.
func (s *Server) sendResponse(response interface{}) {
	if err := s.encoder.Encode(response); err != nil {
		s.logger.Errorf("Encoding response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(ErrorResponse{
		ID:     id,
		Error:  message,
		Status: code,
	})
}
