package grape

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Observer is notified once per finished pass.
type Observer interface {
	ObservePass(r *Result, elapsed time.Duration)
}

// Option configures one validation pass.
type Option func(*options)

type options struct {
	logger   zerolog.Logger
	resource any
	bools    *BoolSet
	observer Observer
}

func newOptions(opts []Option) options {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.bools == nil {
		o.bools = DefaultBools()
	}
	return o
}

// WithLogger attaches a logger; failures and pass summaries are logged at
// debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithResource hands an opaque, caller-owned handle (for example a *sql.DB)
// to rules that need external state. The engine never opens or closes it.
func WithResource(r any) Option {
	return func(o *options) { o.resource = r }
}

// WithBools replaces the truthy/falsy lists used by non-strict booleans.
func WithBools(b *BoolSet) Option {
	return func(o *options) { o.bools = b }
}

// WithObserver registers an Observer for the pass.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// pass is the environment shared by every context of one validation pass.
type pass struct {
	ctx      context.Context
	logger   zerolog.Logger
	resource any
	bools    *BoolSet
	err      error
}

func newPass(ctx context.Context, o options) *pass {
	if ctx == nil {
		ctx = context.Background()
	}
	return &pass{ctx: ctx, logger: o.logger, resource: o.resource, bools: o.bools}
}

func (p *pass) abort(path Path, err error) {
	if p.err != nil || err == nil {
		return
	}
	p.err = fmt.Errorf("grape: validation aborted at %q: %w", path.String(), err)
}

func (p *pass) aborted() bool { return p.err != nil }
