package coupon

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"biju-kart/internal/model"

	"github.com/rs/zerolog"
)

// ErrClosed is returned by Validate after Close.
var ErrClosed = errors.New("coupon service closed")

// ServiceConfig holds configuration for the coupon service.
type ServiceConfig struct {
	// FilePaths lists optional policy files. Later files override earlier
	// codes. Files cannot redefine the built-in codes.
	FilePaths []string

	// Latency simulates the round trip to a remote coupon backend.
	Latency time.Duration
}

// DefaultServiceConfig returns the default service configuration.
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		Latency: time.Second,
	}
}

// service implements Service on an immutable policy table.
type service struct {
	mu       sync.RWMutex
	policies PolicySet
	latency  time.Duration
	logger   zerolog.Logger
}

// NewService creates the coupon service, loading all policy files concurrently.
// A nil loader is allowed when no files are configured.
func NewService(ctx context.Context, cfg *ServiceConfig, loader Loader, logger zerolog.Logger) (Service, error) {
	if cfg == nil {
		cfg = DefaultServiceConfig()
	}

	logger = logger.With().Str("component", "coupon-service").Logger()

	logger.Info().
		Int("file_count", len(cfg.FilePaths)).
		Dur("latency", cfg.Latency).
		Msg("initialising coupon service")

	sets, err := loadAll(ctx, cfg.FilePaths, loader, logger)
	if err != nil {
		return nil, err
	}

	defaults := DefaultPolicies()
	policies := NewMapPolicySet(8)
	for _, set := range sets {
		policies.Merge(set)
	}
	for _, code := range defaults.Codes() {
		if _, ok := policies.Lookup(code); ok {
			logger.Warn().Str("code", code).Msg("ignoring file policy for built-in coupon")
		}
	}
	policies.Merge(defaults)

	logger.Info().
		Int("total_policies", policies.Size()).
		Strs("codes", policies.Codes()).
		Msg("coupon service initialised successfully")

	return &service{
		policies: policies,
		latency:  cfg.Latency,
		logger:   logger,
	}, nil
}

// loadAll loads every file concurrently and returns the sets in input order.
func loadAll(ctx context.Context, paths []string, loader Loader, logger zerolog.Logger) ([]PolicySet, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if loader == nil {
		return nil, fmt.Errorf("policy files configured without a loader")
	}

	type loadResult struct {
		index int
		set   PolicySet
		err   error
	}

	resultChan := make(chan loadResult, len(paths))
	var wg sync.WaitGroup

	for i, filePath := range paths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			set, err := loader.Load(ctx, path)
			resultChan <- loadResult{
				index: index,
				set:   set,
				err:   err,
			}
		}(i, filePath)
	}

	wg.Wait()
	close(resultChan)

	results := make([]loadResult, len(paths))
	for result := range resultChan {
		results[result.index] = result
	}

	sets := make([]PolicySet, 0, len(paths))
	for i, result := range results {
		if result.err != nil {
			logger.Error().
				Err(result.err).
				Str("file", paths[i]).
				Msg("failed to load policy file")
			return nil, fmt.Errorf("failed to load policy file %s: %w", paths[i], result.err)
		}
		sets = append(sets, result.set)
	}

	return sets, nil
}

// Validate waits for the simulated latency, then looks code up exactly.
func (s *service) Validate(ctx context.Context, code string) (Effect, error) {
	if err := s.wait(ctx); err != nil {
		s.logger.Debug().Err(err).Str("code", code).Msg("coupon validation cancelled")
		return Effect{}, err
	}

	s.mu.RLock()
	policies := s.policies
	s.mu.RUnlock()

	if policies == nil {
		return Effect{}, ErrClosed
	}

	effect, ok := policies.Lookup(code)
	if !ok {
		s.logger.Debug().Str("code", code).Msg("coupon code not recognised")
		return Effect{}, model.ErrInvalidCoupon
	}

	s.logger.Debug().
		Str("code", code).
		Str("effect", string(effect.Type)).
		Str("rate", effect.Rate.String()).
		Msg("coupon code validated successfully")

	return effect, nil
}

func (s *service) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Close releases the policy table.
func (s *service) Close() error {
	s.mu.Lock()
	s.policies = nil
	s.mu.Unlock()

	s.logger.Info().Msg("coupon service closed")

	return nil
}
