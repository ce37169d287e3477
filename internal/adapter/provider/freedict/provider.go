// Package freedict fetches word records from the Free Dictionary API
// (dictionaryapi.dev).
package freedict

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/myenglish-lookup/internal/config"
	"github.com/heartmarshall/myenglish-lookup/internal/domain"
	"github.com/heartmarshall/myenglish-lookup/internal/observe"
)

// maxBodySize caps the response body; real entries are a few KiB.
const maxBodySize = 4 << 20

// Provider fetches dictionary records over HTTP. Concurrent requests for the
// same word share one round trip.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	group      singleflight.Group
	metrics    *observe.Metrics
	log        *slog.Logger
}

// NewProvider creates a Provider for cfg.BaseURL.
func NewProvider(cfg config.DictionaryConfig, metrics *observe.Metrics, logger *slog.Logger) *Provider {
	return &Provider{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		metrics:    metrics,
		log:        logger.With("adapter", "freedict"),
	}
}

// Fetch returns every record the service has for word, homographs included,
// in response order.
//
// Errors match domain.ErrNetworkUnavailable (transport failure or timeout) or
// domain.ErrServiceError (non-2xx status, malformed body). A 404 matches
// domain.ErrWordNotFound as well. Requests are never retried.
func (p *Provider) Fetch(ctx context.Context, word string) ([]domain.WordRecord, error) {
	ch := p.group.DoChan(word, func() (any, error) {
		// The shared call must not die with whichever caller started it.
		return p.fetch(context.WithoutCancel(ctx), word)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("freedict: fetch %q: %w: %w", word, domain.ErrNetworkUnavailable, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			p.log.DebugContext(ctx, "freedict request shared", slog.String("word", word))
		}
		return cloneRecords(res.Val.([]domain.WordRecord)), nil
	}
}

func (p *Provider) fetch(ctx context.Context, word string) (records []domain.WordRecord, err error) {
	ctx, span := observe.StartSpan(ctx, "freedict.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("word", word)),
	)
	start := time.Now()
	defer func() {
		p.metrics.RecordFetch(ctx, time.Since(start), outcome(err))
		observe.EndSpan(span, err)
	}()

	reqURL := p.baseURL + "/" + url.PathEscape(word)
	p.log.DebugContext(ctx, "freedict request", slog.String("word", word))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("freedict: create request: %w: %w", domain.ErrServiceError, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.WarnContext(ctx, "freedict request failed", slog.String("word", word), slog.String("error", err.Error()))
		return nil, fmt.Errorf("freedict: request %q: %w: %w", word, domain.ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("freedict: %q: %w", word, domain.ErrWordNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("freedict: %q: unexpected status %d: %w", word, resp.StatusCode, domain.ErrServiceError)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("freedict: read body: %w: %w", domain.ErrNetworkUnavailable, err)
	}

	var entries []apiEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("freedict: decode json: %w: %w", domain.ErrServiceError, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("freedict: %q: empty response: %w", word, domain.ErrWordNotFound)
	}

	records = mapAPIResponse(entries)

	p.log.DebugContext(ctx, "freedict response",
		slog.String("word", word),
		slog.Int("status", resp.StatusCode),
		slog.Int("records", len(records)),
	)

	return records, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrWordNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrNetworkUnavailable):
		return "network"
	default:
		return "service"
	}
}

// cloneRecords copies the slices a shared result exposes, so callers of one
// singleflight round trip cannot see each other's writes.
func cloneRecords(in []domain.WordRecord) []domain.WordRecord {
	out := make([]domain.WordRecord, len(in))
	for i, r := range in {
		out[i] = domain.WordRecord{Word: r.Word, Phonetic: r.Phonetic, Meanings: make([]domain.Meaning, len(r.Meanings))}
		for j, m := range r.Meanings {
			out[i].Meanings[j] = domain.Meaning{
				PartOfSpeech: m.PartOfSpeech,
				Definitions:  append([]domain.Definition(nil), m.Definitions...),
			}
			if out[i].Meanings[j].Definitions == nil {
				out[i].Meanings[j].Definitions = []domain.Definition{}
			}
		}
	}
	return out
}
