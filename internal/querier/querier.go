// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package querier orchestrates one backend's query cycle: build the
// request, fetch through the shared session, parse the payload, and
// optionally enrich each article with citation-export data.
package querier

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/scholar-overlap/internal/scholar"
	"github.com/pdiddy/scholar-overlap/internal/session"
	"github.com/pdiddy/scholar-overlap/pkg/types"
)

// Querier runs queries against a single backend and accumulates the
// resulting articles. A fetch or parse failure yields an empty result set
// rather than an error, so one failed backend never stops a batch; only an
// under-constrained spec aborts, since that is caller misuse.
type Querier struct {
	backend scholar.Backend
	session *session.Session
	cfg     types.QuerierConfig
	out     io.Writer

	articles []*types.Article
	meta     scholar.Metadata
}

// New wires a Querier for one backend over the shared session.
func New(backend scholar.Backend, sess *session.Session, cfg types.QuerierConfig, out io.Writer) *Querier {
	return &Querier{backend: backend, session: sess, cfg: cfg, out: out}
}

// Backend returns the wrapped backend strategy.
func (q *Querier) Backend() scholar.Backend { return q.backend }

// Run executes one query cycle. Previously accumulated articles are
// cleared first, so re-running with the same spec against an unchanged
// remote yields the same records.
func (q *Querier) Run(ctx context.Context, spec scholar.Spec) ([]*types.Article, error) {
	q.articles = nil
	q.meta = scholar.Metadata{}

	if q.cfg.MaxPageResults > 0 && spec.NumResults > q.cfg.MaxPageResults {
		spec.NumResults = q.cfg.MaxPageResults
	}

	req, err := q.backend.BuildRequest(spec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", q.backend.Name(), err)
	}

	payload, err := q.session.Fetch(ctx, req.URL, req.Header)
	if err != nil {
		fmt.Fprintf(q.out, "warning: backend %s failed: %v\n", q.backend.Name(), err)
		return nil, nil
	}

	meta, err := q.backend.Parse(payload, func(a *types.Article) {
		q.enrich(ctx, a)
		q.articles = append(q.articles, a)
	})
	if err != nil {
		fmt.Fprintf(q.out, "warning: backend %s returned an unparseable payload: %v\n", q.backend.Name(), err)
		return nil, nil
	}
	q.meta = meta

	return q.articles, nil
}

// enrich follows the article's citation-export link when configured.
// Articles without a link, or with export data already attached, are left
// alone; an export fetch failure only costs that one attachment.
func (q *Querier) enrich(ctx context.Context, a *types.Article) {
	if !q.cfg.FetchCitationExport {
		return
	}
	exportURL := a.GetString(types.AttrURLCitation)
	if exportURL == "" || a.HasCitationData() {
		return
	}

	fmt.Fprintln(q.out, "retrieving citation export data")
	data, err := q.session.Fetch(ctx, exportURL, nil)
	if err != nil {
		fmt.Fprintf(q.out, "warning: citation export fetch failed: %v\n", err)
		return
	}
	a.SetCitationData(data)
}

// Articles returns the records accumulated by the last Run.
func (q *Querier) Articles() []*types.Article { return q.articles }

// Metadata returns the page-level metadata from the last Run.
func (q *Querier) Metadata() scholar.Metadata { return q.meta }

// Titles extracts the article titles in result order.
func Titles(articles []*types.Article) []string {
	titles := make([]string, 0, len(articles))
	for _, a := range articles {
		titles = append(titles, a.Title())
	}
	return titles
}
