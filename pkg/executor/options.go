package executor

import (
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// Options configures a run. The zero value is invalid; New starts from
// defaults for every field (see buildOptions), so omit the functional
// options you don't need.
type Options struct {
	ChannelBufferSize int
	CommitSize        int64
	CommitInterval    time.Duration
	MaxMapSize        int
	Clock             clock.Clock
	Logger            *zap.Logger
}

// Option configures an Options value.
type Option func(*Options)

// WithChannelBufferSize overrides the default per-edge queue capacity
// (spec §4.3's 20000).
func WithChannelBufferSize(n int) Option {
	return func(o *Options) { o.ChannelBufferSize = n }
}

// WithCommitSize overrides the message-count epoch trigger. Zero
// disables the count-based trigger, leaving only the interval.
func WithCommitSize(n int64) Option {
	return func(o *Options) { o.CommitSize = n }
}

// WithCommitInterval overrides the wall-clock epoch trigger.
func WithCommitInterval(d time.Duration) Option {
	return func(o *Options) { o.CommitInterval = d }
}

// WithMaxMapSize overrides the advisory bound on a stateful operator's
// state store.
func WithMaxMapSize(n int) Option {
	return func(o *Options) { o.MaxMapSize = n }
}

// WithClock injects a clock.Clock, letting tests drive the epoch
// coordinator's timer deterministically with a *clock.Mock instead of
// waiting on wall time.
func WithClock(c clock.Clock) Option {
	return func(o *Options) { o.Clock = c }
}

// WithLogger overrides the structured logger every worker reports
// through.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

const (
	defaultChannelBufferSize = 20000
	defaultCommitInterval    = 30 * time.Second
	defaultMaxMapSize        = 1 << 16
)

func buildOptions(opts []Option) Options {
	o := Options{
		ChannelBufferSize: defaultChannelBufferSize,
		CommitInterval:    defaultCommitInterval,
		MaxMapSize:        defaultMaxMapSize,
		Clock:             clock.New(),
		Logger:            zap.NewNop(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
