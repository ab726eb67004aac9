package audit

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/seoscope/seo-audit/internal/model"
)

const (
	// maxProbes caps the deduplicated candidate set to bound probe fan-out.
	maxProbes = 40

	probeTimeout = 8 * time.Second
)

// Prober resolves a page's outbound references and checks each for
// reachability with lightweight HEAD requests.
type Prober struct {
	client      *http.Client
	concurrency int
	userAgent   string
}

// NewProber returns a Prober with an 8s per-probe timeout that does not
// follow redirects and blocks connections to private/reserved IP ranges.
// The concurrency parameter controls the worker pool size.
func NewProber(concurrency int, userAgent string) *Prober {
	return newProber(concurrency, userAgent, &http.Transport{
		DialContext:         safeDialer().DialContext,
		MaxConnsPerHost:     concurrency,
		MaxIdleConnsPerHost: concurrency,
		IdleConnTimeout:     90 * time.Second,
	})
}

func newProber(concurrency int, userAgent string, transport http.RoundTripper) *Prober {
	return &Prober{
		concurrency: concurrency,
		userAgent:   userAgent,
		client: &http.Client{
			Timeout:   probeTimeout,
			Transport: transport,
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// ProbePage discovers the document's references, resolves them against the
// page URL, deduplicates by resolved URL, and probes up to maxProbes of them
// concurrently. One probe's failure never aborts the others; a failed probe
// simply yields a broken record.
func (p *Prober) ProbePage(ctx context.Context, doc *Document) model.LinkReport {
	records := p.collect(doc)
	report := model.LinkReport{Total: len(records), Records: records}

	jobs := make(chan *model.LinkRecord, len(records))

	numWorkers := min(len(records), p.concurrency)
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				p.probe(ctx, rec)
			}
		}()
	}

	for i := range records {
		jobs <- &records[i]
	}
	close(jobs)
	wg.Wait()

	for _, rec := range records {
		if rec.Internal {
			report.Internal++
		} else {
			report.External++
		}
		if rec.State == model.LinkBroken {
			report.Broken++
		}
	}
	return report
}

// collect resolves and deduplicates the document's references. Unresolvable
// references are dropped silently, never reported as broken.
func (p *Prober) collect(doc *Document) []model.LinkRecord {
	seen := map[string]bool{}
	var records []model.LinkRecord

	for _, ref := range doc.References() {
		resolved, ok := Resolve(ref.Raw, doc.Base())
		if !ok || seen[resolved] {
			continue
		}
		seen[resolved] = true

		records = append(records, model.LinkRecord{
			Raw:      ref.Raw,
			URL:      resolved,
			Internal: Internal(resolved, doc.Base()),
			State:    model.LinkUnknown,
		})
		if len(records) == maxProbes {
			break
		}
	}
	return records
}

// probe performs one HEAD request and records the outcome on rec. Each probe
// carries its own timeout so a stalled target cannot hold up the pool's
// remaining work beyond its slot.
func (p *Prober) probe(ctx context.Context, rec *model.LinkRecord) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, rec.URL, nil)
	if err != nil {
		rec.State = model.LinkBroken
		rec.Reason = "timeout"
		return
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			// The audit itself was cancelled; this link was never judged.
			rec.State = model.LinkUnknown
			return
		}
		rec.State = model.LinkBroken
		rec.Reason = "timeout"
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		rec.State = model.LinkBroken
		rec.StatusCode = resp.StatusCode
		return
	}
	rec.State = model.LinkOK
}
