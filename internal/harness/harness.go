package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/pseo/internal/factory"
	"github.com/roach88/pseo/internal/ir"
)

// Run assembles the scenario's pages from lib and evaluates its assertions.
// Assembly failures are recorded on the result, not returned; the error
// return is reserved for problems with the scenario itself.
func Run(lib *ir.Library, scenario *Scenario) (*Result, error) {
	return RunWithLogger(lib, scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with the factory logging to logger.
func RunWithLogger(lib *ir.Library, scenario *Scenario, logger *slog.Logger) (*Result, error) {
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %q: %w", scenario.Name, err)
	}

	f := factory.New(lib, factory.WithLogger(logger), factory.WithLenient(scenario.Lenient))
	result := NewResult(scenario.Name)
	result.Pages = make([]*ir.Page, len(scenario.Keys))

	for i, k := range scenario.Keys {
		page, err := f.Assemble(k.PageKey())
		if err != nil {
			result.AddError(fmt.Sprintf("keys[%d]: %v", i, err))
			continue
		}
		result.Pages[i] = page
	}

	for _, msg := range EvaluateAssertions(result.Pages, scenario.Assertions) {
		result.AddError(msg)
	}

	logger.Debug("scenario finished", "scenario", scenario.Name, "pass", result.Pass, "errors", len(result.Errors))
	return result, nil
}
