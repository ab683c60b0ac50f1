package auth

import (
	"time"

	"go.uber.org/zap"
)

type managerOptions struct {
	log         *zap.Logger
	now         func() time.Time
	timeout     time.Duration
	verifierDir string
}

type Option func(*managerOptions)

func newManagerOptions(opts ...Option) managerOptions {
	o := managerOptions{
		log:     zap.NewNop(),
		now:     time.Now,
		timeout: defaultHTTPTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func WithLogger(log *zap.Logger) Option {
	return func(o *managerOptions) {
		if log != nil {
			o.log = log
		}
	}
}

// WithClock overrides the time source, used by tests to pin expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *managerOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *managerOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithVerifierDir overrides where pending PKCE code verifiers are kept
// between the authorize and exchange invocations.
func WithVerifierDir(dir string) Option {
	return func(o *managerOptions) {
		if dir != "" {
			o.verifierDir = dir
		}
	}
}

const defaultHTTPTimeout = 10 * time.Second
