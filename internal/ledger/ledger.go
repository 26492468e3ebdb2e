// Package ledger provides the alert sinks the alert recorder commits to.
package ledger

import (
	"fmt"
	"time"

	"SignalSentinel/internal/alert"
)

// Options selects and configures a ledger backend.
type Options struct {
	Backend string // file, redis or remote
	Path    string
	Redis   RedisConfig
	URL     string
	Token   string
	Timeout time.Duration
}

// New returns the ledger for opts.Backend.
func New(opts Options) (alert.Ledger, error) {
	switch opts.Backend {
	case "file", "":
		return NewFileLedger(opts.Path), nil
	case "redis":
		return NewRedisLedger(opts.Redis), nil
	case "remote":
		if opts.URL == "" {
			return nil, fmt.Errorf("remote ledger requires a url")
		}
		return NewRemoteLedger(opts.URL, opts.Token, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", opts.Backend)
	}
}
