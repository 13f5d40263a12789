package gaa

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// Probe checks that the listing origin answers. Any status below 500 counts
// as reachable.
type Probe struct {
	client  *fasthttp.Client
	url     string
	timeout time.Duration
}

func NewProbe(url string, timeout time.Duration) *Probe {
	url = strings.TrimSpace(url)
	if url == "" {
		url = DefaultSourceURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Probe{
		client: &fasthttp.Client{
			Name:                "gaa-fixtures-probe",
			MaxIdleConnDuration: time.Minute,
		},
		url:     url,
		timeout: timeout,
	}
}

func (p *Probe) Probe(ctx context.Context) error {
	deadline := time.Now().Add(p.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(p.url)
	req.Header.SetMethod(fasthttp.MethodHead)

	if err := p.client.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("probe %s: %w", p.url, err)
	}
	if status := resp.StatusCode(); status >= fasthttp.StatusInternalServerError {
		return fmt.Errorf("probe %s: status %d", p.url, status)
	}
	return nil
}
