package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/MikeSquared-Agency/Underwriter/internal/hermes"
	"github.com/MikeSquared-Agency/Underwriter/internal/simulation"
	"github.com/MikeSquared-Agency/Underwriter/internal/store"
)

// EngineSource holds the engine for the active policy. Swapping it never
// affects evaluations already in flight.
type EngineSource struct {
	current atomic.Pointer[simulation.Engine]
}

func NewEngineSource(e *simulation.Engine) *EngineSource {
	s := &EngineSource{}
	s.current.Store(e)
	return s
}

func (s *EngineSource) Get() *simulation.Engine { return s.current.Load() }

func (s *EngineSource) Set(e *simulation.Engine) { s.current.Store(e) }

// WatchPolicy reloads the engine whenever a policy activation is announced.
// A version that fails to load or validate leaves the current engine in place.
func WatchPolicy(h hermes.Client, ps store.PolicyStore, src *EngineSource, logger *slog.Logger) error {
	return h.Subscribe(hermes.SubjectPolicyActivated, func(_ string, data []byte) {
		var evt hermes.PolicyActivatedEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			logger.Warn("malformed policy activation", "error", err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := reloadPolicy(ctx, ps, src, evt.Version); err != nil {
			logger.Error("policy reload failed", "version", evt.Version, "error", err)
			return
		}
		logger.Info("policy reloaded", "version", src.Get().Policy().Version)
	})
}

func reloadPolicy(ctx context.Context, ps store.PolicyStore, src *EngineSource, version string) error {
	p, err := store.Resolve(ctx, ps, version)
	if err != nil {
		return err
	}
	e, err := simulation.NewEngine(p)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	src.Set(e)
	return nil
}
