package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/abelbrown/clubnews/internal/news"
	"github.com/abelbrown/clubnews/internal/normalize"
	"github.com/abelbrown/clubnews/internal/otel"
)

// Tier names the source that served a resolve.
type Tier string

const (
	TierRemote  Tier = "remote"
	TierCache   Tier = "cache"
	TierDefault Tier = "default"
)

// Source loads a raw document from a URL. *Fetcher is the production Source.
type Source interface {
	Fetch(ctx context.Context, url string) (any, error)
}

// Result is the outcome of a resolve. Document is always valid.
type Result struct {
	Document news.Document
	Tier     Tier
	Report   normalize.Report
	Errors   []error // failures of the tiers that were tried and skipped
	Dur      time.Duration
}

// Err joins every recorded tier failure, or returns nil.
func (r Result) Err() error {
	return errors.Join(r.Errors...)
}

// Resolver walks the remote, cache and default tiers in order.
type Resolver struct {
	Source     Source
	Cache      *Cache
	URL        string
	Normalizer normalize.Normalizer
	Events     *otel.Logger // optional
}

var errNoURL = errors.New("no feed url configured")

// Resolve returns the best document available. It never fails: when the
// remote feed and cache are both unusable the embedded default is served.
//
// A successful remote document is normalized and written to the cache;
// a failed cache write is recorded in Result.Errors and otherwise ignored.
func (r *Resolver) Resolve(ctx context.Context) Result {
	start := time.Now()

	var res Result
	if raw, err := r.remote(ctx); err == nil {
		res = r.finish(TierRemote, raw, res.Errors)
		if err := r.Cache.Save(res.Document); err != nil {
			res.Errors = append(res.Errors, err)
			r.emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindCacheWriteError, Source: r.cachePath(), Err: err.Error()})
		}
	} else {
		res.Errors = append(res.Errors, err)
		r.emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindFeedRemoteError, Source: r.URL, Err: err.Error(), Extra: kindExtra(err)})

		if raw, err := r.Cache.Load(); err == nil {
			res = r.finish(TierCache, raw, res.Errors)
		} else {
			res.Errors = append(res.Errors, err)
			r.emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindFeedCacheError, Source: r.cachePath(), Err: err.Error()})
			res = r.finish(TierDefault, news.DefaultWire(), res.Errors)
		}
	}

	res.Dur = time.Since(start)
	r.emit(otel.Event{
		Level:  otel.LevelInfo,
		Kind:   tierKind(res.Tier),
		Tier:   string(res.Tier),
		Source: r.tierSource(res.Tier),
		Count:  res.Document.Len(),
		Dur:    res.Dur,
		Extra:  map[string]any{"errors": len(res.Errors)},
	})
	return res
}

func (r *Resolver) remote(ctx context.Context) (any, error) {
	if r.URL == "" || r.Source == nil {
		return nil, newError(KindNetwork, "fetch", errNoURL)
	}
	return r.Source.Fetch(ctx, r.URL)
}

func (r *Resolver) finish(tier Tier, raw any, errs []error) Result {
	doc, rep := r.Normalizer.Normalize(raw)
	if rep.Dropped > 0 {
		r.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindNormalizeDrop, Tier: string(tier), Count: rep.Dropped})
	}
	if rep.Coerced > 0 {
		r.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindNormalizeCoerce, Tier: string(tier), Count: rep.Coerced})
	}
	return Result{Document: doc, Tier: tier, Report: rep, Errors: errs}
}

func (r *Resolver) emit(ev otel.Event) {
	if r.Events == nil {
		return
	}
	ev.Comp = "fetch"
	r.Events.Emit(ev)
}

func (r *Resolver) cachePath() string {
	if r.Cache == nil {
		return ""
	}
	return r.Cache.Path
}

func (r *Resolver) tierSource(t Tier) string {
	switch t {
	case TierRemote:
		return r.URL
	case TierCache:
		return r.cachePath()
	}
	return ""
}

func tierKind(t Tier) otel.EventKind {
	switch t {
	case TierRemote:
		return otel.KindFeedRemote
	case TierCache:
		return otel.KindFeedCache
	}
	return otel.KindFeedDefault
}

func kindExtra(err error) map[string]any {
	if k := KindOf(err); k != "" {
		return map[string]any{"kind": string(k)}
	}
	return nil
}
