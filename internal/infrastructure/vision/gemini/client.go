// Package gemini calls the Gemini generateContent API with one rendered roll
// page per request and parses the structured payload it returns.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/amoghv/rollscan/internal/core/domain"
	"github.com/amoghv/rollscan/internal/infrastructure/resilience"
)

type Config struct {
	BaseURL        string
	APIKey         string
	Model          string
	RequestTimeout time.Duration
	// RequestsPerSecond throttles outbound calls across all concurrent
	// pages; 0 disables the limiter.
	RequestsPerSecond float64
	Resilience        resilience.Config
}

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	exec       *resilience.Executor
}

func NewClient(cfg Config) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		exec:       resilience.New(cfg.Resilience, classifyGeminiError),
	}
}

// ExtractPage performs one page-level extraction call. Transient failures are
// retried with backoff inside the client; a payload that comes back but does
// not parse gets exactly one fresh attempt before the page is surfaced as a
// typed failure. The returned error carries the page index.
func (c *Client) ExtractPage(ctx context.Context, page domain.PageImage) (domain.PageExtraction, error) {
	prompt := promptFor(page.Kind)

	raw, err := c.generate(ctx, prompt, page.PNG)
	if err != nil {
		return domain.PageExtraction{}, &domain.PageError{Page: page.Index, Err: wrapTemporaryIfNeeded("generate", err)}
	}

	extraction, parseErr := parsePage(page.Kind, raw)
	if parseErr == nil {
		return extraction, nil
	}

	// one fresh attempt for an answer that arrived but did not parse
	raw, err = c.generate(ctx, prompt, page.PNG)
	if err != nil {
		return domain.PageExtraction{}, &domain.PageError{Page: page.Index, Err: wrapTemporaryIfNeeded("generate", err)}
	}
	extraction, parseErr = parsePage(page.Kind, raw)
	if parseErr != nil {
		return domain.PageExtraction{}, &domain.PageError{
			Page: page.Index,
			Err:  domain.WrapError(domain.ErrUnparseable, "parse extraction", parseErr),
		}
	}
	return extraction, nil
}

func (c *Client) generate(ctx context.Context, prompt string, png []byte) (string, error) {
	var text string
	err := c.exec.Do(ctx, "gemini.generate", func(ctx context.Context) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		out, err := c.generateContent(ctx, prompt, png)
		if err != nil {
			return err
		}
		if strings.TrimSpace(out) == "" {
			return fmt.Errorf("gemini generate: %w", errEmptyResponse)
		}
		text = out
		return nil
	})
	return text, err
}

var errEmptyResponse = fmt.Errorf("empty model response")
