package provisioning

import (
	"fmt"
	"time"

	"github.com/imamik/kbstack/internal/metrics"
)

// RunPhases executes all provisioning phases sequentially, in the given order.
// A phase runs only if every key it requires is set, and must set every key
// it provides.
func RunPhases(ctx *Context, phases []Phase) error {
	start := time.Now()
	ctx.Observer.Printf("Starting provisioning with %d phases...", len(phases))

	for i, phase := range phases {
		phaseStart := time.Now()
		name := fmt.Sprintf("%s (%d/%d)", phase.Name(), i+1, len(phases))

		if missing := ctx.State.Missing(phase.Requires()...); len(missing) > 0 {
			err := &MissingInputError{Phase: phase.Name(), Keys: missing}
			LogPhaseFailed(ctx.Observer, name, err)
			metrics.RecordPhase(phase.Name(), string(KindMissingInput), 0)
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		LogPhaseStart(ctx.Observer, name)

		if err := phase.Provision(ctx); err != nil {
			LogPhaseFailed(ctx.Observer, name, err)
			metrics.RecordPhase(phase.Name(), string(Classify(err)), time.Since(phaseStart).Seconds())
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		if missing := ctx.State.Missing(phase.Provides()...); len(missing) > 0 {
			err := &MissingOutputError{Phase: phase.Name(), Keys: missing}
			LogPhaseFailed(ctx.Observer, name, err)
			metrics.RecordPhase(phase.Name(), string(KindMissingInput), time.Since(phaseStart).Seconds())
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		metrics.RecordPhase(phase.Name(), "success", time.Since(phaseStart).Seconds())
		LogPhaseComplete(ctx.Observer, name, time.Since(phaseStart))
	}

	ctx.Observer.Printf("Provisioning completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}
