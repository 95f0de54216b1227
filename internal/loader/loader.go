package loader

import (
	"context"
	"errors"

	"github.com/alphadose/haxmap"
	log "github.com/sirupsen/logrus"

	"github.com/san-kum/quakeview/internal/quake"
)

type cached struct {
	data   quake.Dataset
	report Report
}

// Loader fetches and decodes year resources, caching successful loads per path.
type Loader struct {
	source    Source
	firstYear int
	lastYear  int
	cache     *haxmap.Map[string, cached]
	log       log.FieldLogger
}

type Option func(*Loader)

func WithYears(first, last int) Option {
	return func(l *Loader) {
		l.firstYear, l.lastYear = first, last
	}
}

func WithLogger(logger log.FieldLogger) Option {
	return func(l *Loader) {
		l.log = logger
	}
}

func New(src Source, opts ...Option) *Loader {
	l := &Loader{
		source:    src,
		firstYear: DefaultFirstYear,
		lastYear:  DefaultLastYear,
		cache:     haxmap.New[string, cached](),
		log:       log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) Years() (first, last int) { return l.firstYear, l.lastYear }

// Load returns the dataset for sel. The returned Dataset is shared with the
// cache and must not be mutated.
func (l *Loader) Load(ctx context.Context, sel Selector) (quake.Dataset, Report, error) {
	path := sel.Path(l.firstYear, l.lastYear)
	logger := l.log.WithFields(log.Fields{"selector": sel.String(), "path": path})

	if c, ok := l.cache.Get(path); ok {
		logger.Debug("dataset served from cache")
		return c.data, c.report, nil
	}

	rc, err := l.source.Open(ctx, path)
	if err != nil {
		logger.WithError(err).Warn("dataset fetch failed")
		return nil, Report{Path: path}, &quake.FetchError{Selector: sel.String(), Path: path, Kind: quake.ErrFetch, Err: err}
	}
	defer rc.Close()

	ds, report, err := Decode(rc)
	report.Path = path
	if err != nil {
		kind := quake.ErrParse
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			kind = quake.ErrFetch
		}
		logger.WithError(err).Warn("dataset decode failed")
		return nil, report, &quake.FetchError{Selector: sel.String(), Path: path, Kind: kind, Err: err}
	}

	for _, msg := range report.Errors {
		logger.Warn("skipped record: " + msg)
	}
	logger.WithFields(log.Fields{"records": report.Loaded, "skipped": report.Skipped}).Info("dataset loaded")

	l.cache.Set(path, cached{data: ds, report: report})
	return ds, report, nil
}

// Forget drops the cached dataset for sel.
func (l *Loader) Forget(sel Selector) {
	l.cache.Del(sel.Path(l.firstYear, l.lastYear))
}
