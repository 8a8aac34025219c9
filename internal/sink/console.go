package sink

import (
	"context"
	"fmt"
	"io"
	"os"

	"platwatch/internal/domain"
)

// ConsoleSink writes one line per alert to a writer, stdout by default.
type ConsoleSink struct {
	out io.Writer
}

// NewConsoleSink creates a sink writing to stdout.
func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{out: os.Stdout}
}

// NewConsoleSinkWriter creates a sink writing to w.
func NewConsoleSinkWriter(w io.Writer) *ConsoleSink {
	return &ConsoleSink{out: w}
}

// Deliver writes the alert as a single human-readable line.
func (s *ConsoleSink) Deliver(_ context.Context, alert domain.Alert) error {
	verb := "selling"
	if alert.Order.Type == domain.OrderTypeBuy {
		verb = "buying"
	}
	_, err := fmt.Fprintf(s.out, "[DEAL] %s: %s %s %dx for %dp each (%s)\n",
		alert.ItemName,
		alert.Order.Trader,
		verb,
		alert.Order.Quantity,
		alert.Order.Platinum,
		alert.Order.Platform,
	)
	return err
}
