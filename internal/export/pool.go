package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// ErrDuplicateFile is recorded for a preset whose file name is already
// claimed by an earlier preset in the same export.
var ErrDuplicateFile = errors.New("file name already used by another preset")

// Pool renders many presets concurrently with rate limiting and
// per-preset error collection
type Pool struct {
	presets     []string
	semaphore   chan struct{}
	rateLimiter *rate.Limiter
	errors      map[string]error
	written     map[string]string
	mu          sync.Mutex
}

// NewPool creates a new Pool with the specified limits
//
// Parameters:
//   - presets: names of the presets to export
//   - rps: renders per second
//   - maxConcurrent: maximum number of renders in flight
//
// The rate limiter uses a burst size of rps*2, at least 1.
func NewPool(presets []string, rps float64, maxConcurrent int) *Pool {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	burst := int(rps * 2)
	if burst < 1 {
		burst = 1
	}
	return &Pool{
		presets:     presets,
		semaphore:   make(chan struct{}, maxConcurrent),
		rateLimiter: rate.NewLimiter(rate.Limit(rps), burst),
		errors:      make(map[string]error),
		written:     make(map[string]string),
	}
}

// ExportAll exports every preset, one goroutine each. A failing preset does
// not stop the others; an error is returned if any of them failed.
func (p *Pool) ExportAll(ctx context.Context, exporter *Exporter) error {
	var wg sync.WaitGroup

	for _, name := range p.claimFiles() {
		wg.Add(1)

		go func(name string) {
			defer wg.Done()

			p.semaphore <- struct{}{}
			defer func() { <-p.semaphore }()

			if err := p.rateLimiter.Wait(ctx); err != nil {
				p.fail(name, fmt.Errorf("rate limiter error: %w", err))
				return
			}

			path, err := exporter.ExportPreset(ctx, name)
			if err != nil {
				p.fail(name, err)
				return
			}

			p.mu.Lock()
			p.written[name] = path
			p.mu.Unlock()
		}(name)
	}

	wg.Wait()

	if n := len(p.Errors()); n > 0 {
		return fmt.Errorf("failed to export %d presets", n)
	}
	return nil
}

// claimFiles returns the presets to render, in order. A preset mapping to a
// file an earlier one already claimed fails instead of overwriting it.
// Names are compared case-insensitively for case-insensitive filesystems.
func (p *Pool) claimFiles() []string {
	claimed := make(map[string]string, len(p.presets))
	names := make([]string, 0, len(p.presets))
	for _, name := range p.presets {
		file := strings.ToLower(fileName(name))
		if first, ok := claimed[file]; ok {
			if first != name {
				p.fail(name, fmt.Errorf("%w: %s is written by %q", ErrDuplicateFile, fileName(name), first))
			}
			continue
		}
		claimed[file] = name
		names = append(names, name)
	}
	return names
}

func (p *Pool) fail(name string, err error) {
	p.mu.Lock()
	p.errors[name] = err
	p.mu.Unlock()
	log.Printf("Failed to export preset %s: %v", name, err)
}

// Errors returns a copy of the errors map for inspection
func (p *Pool) Errors() map[string]error {
	p.mu.Lock()
	defer p.mu.Unlock()

	errorsCopy := make(map[string]error, len(p.errors))
	for k, v := range p.errors {
		errorsCopy[k] = v
	}
	return errorsCopy
}

// Written returns a copy of the preset name to file path map
func (p *Pool) Written() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]string, len(p.written))
	for k, v := range p.written {
		out[k] = v
	}
	return out
}
