package dbcopilot

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one builder is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("report builder pool is closed")

var _ Reporter = (*ReportBuilderPool)(nil)

// ReportBuilderPool bounds the number of headless browsers rendering
// reports at the same time. Each builder owns one browser; builders are
// created lazily on first acquire.
type ReportBuilderPool struct {
	size     int
	newFn    func() (*ReportBuilder, error)
	builders []*ReportBuilder
	sem      chan *ReportBuilder
	mu       sync.Mutex
	created  int
	closed   bool
}

// NewReportBuilderPool creates a pool with capacity for n builders, each
// made by newFn.
func NewReportBuilderPool(n int, newFn func() (*ReportBuilder, error)) *ReportBuilderPool {
	if n < 1 {
		n = 1
	}

	return &ReportBuilderPool{
		size:     n,
		newFn:    newFn,
		builders: make([]*ReportBuilder, 0, n),
		sem:      make(chan *ReportBuilder, n),
	}
}

// Acquire gets a builder, creating one if capacity allows, otherwise
// blocking until one is released or ctx is done.
func (p *ReportBuilderPool) Acquire(ctx context.Context) (*ReportBuilder, error) {
	select {
	case b, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return b, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		b, err := p.newFn()
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}

		p.mu.Lock()
		p.builders = append(p.builders, b)
		p.mu.Unlock()
		return b, nil
	}
	p.mu.Unlock()

	select {
	case b, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return b, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a builder to the pool.
// The lock is held while sending so Close cannot close the channel
// underneath; the channel has room for every builder, so the send never
// blocks.
func (p *ReportBuilderPool) Release(b *ReportBuilder) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.sem <- b
}

// RenderFile renders doc with a pooled builder.
func (p *ReportBuilderPool) RenderFile(ctx context.Context, doc Document, path string) error {
	b, err := p.Acquire(ctx)
	if err != nil {
		return renderError(err)
	}
	defer p.Release(b)
	return b.RenderFile(ctx, doc, path)
}

// Close releases all browser resources.
// Returns an aggregated error if several builders fail to close.
func (p *ReportBuilderPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	builders := p.builders
	p.mu.Unlock()

	var errs []error
	for _, b := range builders {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *ReportBuilderPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers
	available := runtime.GOMAXPROCS(0)
	n := available / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
