package notifyio

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gnames/dwcagent/internal/ent/notify"
	"github.com/gnames/dwcagent/pkg/config"
	"github.com/gnames/gnfmt"
)

type notifyio struct {
	cfg    config.Config
	client *http.Client
	enc    gnfmt.Encoder
}

// New returns a webhook Notifier. An empty webhook URL turns it into a
// no-op.
func New(cfg config.Config) notify.Notifier {
	return &notifyio{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		enc:    gnfmt.GNjson{},
	}
}

type payload struct {
	DatasetID uint   `json:"datasetId"`
	Event     string `json:"event"`
	Detail    string `json:"detail,omitempty"`
}

func (n *notifyio) Notify(
	ctx context.Context, datasetID uint, event, detail string,
) {
	if n.cfg.WebhookURL == "" {
		return
	}
	body, err := n.enc.Encode(payload{
		DatasetID: datasetID, Event: event, Detail: detail,
	})
	if err != nil {
		slog.Warn("Cannot encode notification", "error", err)
		return
	}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body),
	)
	if err != nil {
		slog.Warn("Cannot create notification request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		slog.Warn("Cannot deliver notification",
			"error", err, "event", event)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		slog.Warn("Notification rejected",
			"status", resp.StatusCode, "event", event)
	}
}
