package userdesk

import (
	"context"
	"time"

	"github.com/dmitrymomot/userdesk/internal"
	"github.com/dmitrymomot/userdesk/pkg/logger"
)

const (
	limiterSweepInterval = time.Minute
	sentryFlushTimeout   = 2 * time.Second
)

// Run serves on cfg.Addr until ctx is cancelled or the process receives
// SIGINT/SIGTERM. Jobs start before the listener opens. On shutdown the
// server drains, then jobs stop, then backends close.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer logger.Flush(sentryFlushTimeout)

	go s.limiter.Run(ctx, limiterSweepInterval)

	opts := []internal.RunOption{
		internal.WithContext(ctx),
		internal.Logger(s.logger),
		internal.ShutdownTimeout(s.cfg.ShutdownTimeout),
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		opts = append(opts, internal.ShutdownHook(s.closers[i]))
	}
	s.closers = nil

	return s.app.Run(s.cfg.Addr, opts...)
}
