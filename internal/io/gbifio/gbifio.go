package gbifio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/gnames/dwcagent/internal/ent/gbif"
	"github.com/gnames/dwcagent/pkg/config"
	"github.com/gnames/gnfmt"
)

var enc = gnfmt.GNjson{}

// gbifio talks to the GBIF registry, validator and species-match APIs
// over plain HTTP.
type gbifio struct {
	cfg    config.Config
	client *http.Client
}

// New returns a client implementing gbif.Matcher, gbif.Registry and
// gbif.Validator.
func New(cfg config.Config) *gbifio {
	return &gbifio{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// MatchName queries the species-match endpoint for one name.
func (g *gbifio) MatchName(
	ctx context.Context, name string,
) (gbif.NameMatch, error) {
	var res gbif.NameMatch
	u := fmt.Sprintf(
		"%s/species/match?name=%s",
		g.cfg.MatcherAPIURL, url.QueryEscape(name),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return res, err
	}
	body, err := g.do(req, http.StatusOK)
	if err != nil {
		return res, err
	}
	err = enc.Decode(body, &res)
	return res, err
}

// RegisterDataset creates a dataset record at the registry.
func (g *gbifio) RegisterDataset(
	ctx context.Context, title, description string,
) (string, error) {
	payload := map[string]any{
		"title":                     title,
		"description":               description,
		"publishingOrganizationKey": g.cfg.GbifOrgKey,
		"installationKey":           g.cfg.GbifInstallationKey,
		"language":                  "en",
		"type":                      "OCCURRENCE",
	}
	body, err := g.postJSON(ctx, g.cfg.GbifAPIURL+"/dataset", payload)
	if err != nil {
		return "", err
	}
	var key string
	if err = enc.Decode(body, &key); err != nil {
		return "", err
	}
	return key, nil
}

// RegisterEndpoint attaches the archive URL to a registered dataset.
func (g *gbifio) RegisterEndpoint(
	ctx context.Context, datasetKey, archiveURL string,
) (string, error) {
	payload := map[string]any{
		"type":        "DWC_ARCHIVE",
		"url":         archiveURL,
		"machineTags": []any{},
	}
	u := fmt.Sprintf("%s/dataset/%s/endpoint", g.cfg.GbifAPIURL, datasetKey)
	if _, err := g.postJSON(ctx, u, payload); err != nil {
		return "", err
	}
	return fmt.Sprintf("https://gbif-uat.org/dataset/%s", datasetKey), nil
}

// SubmitValidation posts the archive URL to the validator as a form
// field named fileUrl.
func (g *gbifio) SubmitValidation(
	ctx context.Context, archiveURL string,
) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("fileUrl", archiveURL); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	u := g.cfg.GbifAPIURL + "/validation/url"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(g.cfg.GbifUser, g.cfg.GbifPass)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
	default:
		return "", fmt.Errorf(
			"validator submission failed, status %d: %s",
			resp.StatusCode, body,
		)
	}

	var job gbif.ValidationJob
	if err = enc.Decode(body, &job); err != nil {
		return "", err
	}
	if job.Key == "" {
		return "", fmt.Errorf("validator response has no key: %s", body)
	}
	return job.Key, nil
}

// ValidationJob fetches a validation job by key.
func (g *gbifio) ValidationJob(
	ctx context.Context, key string,
) (gbif.ValidationJob, error) {
	var job gbif.ValidationJob
	u := fmt.Sprintf("%s/validation/%s", g.cfg.GbifAPIURL, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return job, err
	}
	req.SetBasicAuth(g.cfg.GbifUser, g.cfg.GbifPass)
	body, err := g.do(req, http.StatusOK)
	if err != nil {
		return job, err
	}
	if err = enc.Decode(body, &job); err != nil {
		return job, err
	}
	job.Raw = string(body)
	return job, nil
}

func (g *gbifio) postJSON(
	ctx context.Context, u string, payload any,
) ([]byte, error) {
	data, err := enc.Encode(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, u, bytes.NewReader(data),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.cfg.GbifUser, g.cfg.GbifPass)
	return g.do(req, http.StatusCreated)
}

func (g *gbifio) do(req *http.Request, wantStatus int) ([]byte, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != wantStatus {
		slog.Error("Request to GBIF failed",
			"url", req.URL.String(), "status", resp.StatusCode)
		return nil, fmt.Errorf(
			"%s returned status %d: %s", req.URL.Path, resp.StatusCode, body,
		)
	}
	return body, nil
}
