package terminal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mikey/phishdash/internal/core"
	"github.com/mikey/phishdash/internal/utils"
	"go.uber.org/zap"
)

// Frontend runs a single scan and prints the outcome
type Frontend struct {
	controller *core.ScanController
	logger     *zap.Logger
	out        io.Writer
	renderer   *Renderer
	expandAll  bool
	jsonOutput bool
}

// NewFrontend creates a new terminal front end writing to out
func NewFrontend(
	controller *core.ScanController,
	text *utils.TextProcessor,
	logger *zap.Logger,
	out io.Writer,
	expandAll bool,
	jsonOutput bool,
) *Frontend {
	return &Frontend{
		controller: controller,
		logger:     logger,
		out:        out,
		renderer:   NewRenderer(out, text),
		expandAll:  expandAll,
		jsonOutput: jsonOutput,
	}
}

// Start scans the inbox once and writes the dashboard to the output
func (f *Frontend) Start() error {
	f.controller.ScanInbox(context.Background())
	snap := f.controller.Snapshot()

	if f.jsonOutput {
		enc := json.NewEncoder(f.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("failed to encode state: %w", err)
		}
		return nil
	}

	cards := core.NewResultCards(snap.Emails, f.logger)
	if f.expandAll {
		for _, card := range cards {
			card.Toggle()
		}
	}

	f.logger.Debug("Rendering results", zap.Int("cards", len(cards)))
	if _, err := io.WriteString(f.out, f.renderer.Page(snap, cards)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Stop aborts a scan still in flight
func (f *Frontend) Stop() error {
	f.controller.Close()
	return nil
}
