// Package cli handles cmd line input and suggestions for DBG and testing various features
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bastiangx/contactserve/internal/utils"
	"github.com/bastiangx/contactserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

// InputHandler processes user queries from stdin, printing ranked
// suggestions. Commands starting with ':' exercise the non-query surface:
// :use records a usage event, :refresh rebuilds, :stats dumps counters.
type InputHandler struct {
	engine         suggest.ISuggester
	minQueryLength int
	maxQueryLength int
	noFilter       bool
	requestCount   int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(engine suggest.ISuggester, minLength, maxLength int, noFilter bool) *InputHandler {
	return &InputHandler{
		engine:         engine,
		minQueryLength: minLength,
		maxQueryLength: maxLength,
		noFilter:       noFilter,
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin,
// and passes the trimmed input to handleInput() for processing.
// Loop terminates if an error occurs while reading from stdin
func (h *InputHandler) Start() error {
	log.Print("ContactServe CLI")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type a query and press Enter to see suggestions (Ctrl+C to exit):")
	log.Print("commands: :use <addr>  :refresh  :stats")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ":") {
			h.handleCommand(line)
			continue
		}
		h.handleQuery(line)
	}
}

// handleCommand dispatches a ':' command.
func (h *InputHandler) handleCommand(line string) {
	cmd, rest, _ := strings.Cut(line, " ")
	switch cmd {
	case ":use":
		if strings.TrimSpace(rest) == "" {
			log.Error("usage: :use <address>")
			return
		}
		h.engine.RecordUsage(rest, "")
		log.Printf("recorded usage for %s", rest)
	case ":refresh":
		start := time.Now()
		if err := h.engine.ForceRefresh(); err != nil {
			log.Errorf("Refresh failed: %v", err)
			return
		}
		log.Printf("refreshed in %v", time.Since(start))
	case ":stats":
		for k, v := range h.engine.Stats() {
			log.Printf("%s: %s", k, utils.FormatWithCommas(v))
		}
	default:
		log.Errorf("Unknown command: %s", cmd)
	}
}

// handleQuery processes a single query and displays ranked suggestions.
func (h *InputHandler) handleQuery(query string) {
	h.requestCount++

	if len(query) < h.minQueryLength {
		log.Errorf("Query too short: %s", query)
		return
	}
	if len(query) > h.maxQueryLength {
		log.Errorf("Query too long: %s", query)
		return
	}

	// input filtering by default (unless --no-filter flag is used)
	if !h.noFilter {
		if !utils.IsValidQuery(query) {
			log.Warnf("No suggestions found for query: '%s' (filtered out)", query)
			return
		}
	} else {
		log.Debug("Input filtering disabled - allowing all inputs")
	}

	start := time.Now()
	log.Debug("Processing request for", "query", query)
	suggestions := h.engine.Search(query)
	elapsed := time.Since(start)

	log.Debugf("Took [ %v ] for query '%s'", elapsed, query)

	if len(suggestions) == 0 {
		log.Warnf("No suggestions found for query: '%s'", query)
		return
	}

	log.Printf("Found %d suggestions for query '%s':", len(suggestions), query)
	for i, s := range suggestions {
		fmtFreq := utils.FormatWithCommas(s.Frequency)
		clName := fmt.Sprintf("\033[38;5;75m%s\033[0m", s.DisplayName())
		log.Printf("%2d. %-50s (freq: %6s, src: %s)", i+1, clName, fmtFreq, s.Source)
	}
}
