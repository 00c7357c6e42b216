package commands

import (
	"fmt"

	"github.com/fatih/color"

	"testr/internal/config"
	"testr/internal/domain"
	"testr/internal/storage"
)

// resolveSpec builds the run's filter spec from paths, flags and the
// saved record, applying the forget/use-last/save-last protocol.
func resolveSpec(cfg *config.Config, st storage.Storage, paths []string) (domain.FilterSpec, error) {
	if len(paths) == 0 {
		paths = []string{cfg.TestRoot}
	}
	spec := domain.FilterSpec{
		Paths:   paths,
		Keyword: cfg.Flags.Keyword,
		Markers: cfg.Flags.Markers,
		Extra:   cfg.Flags.Extra,
	}

	save := cfg.Flags.SaveLast
	if cfg.Flags.ForgetLast {
		if err := st.Forget(); err != nil {
			return domain.FilterSpec{}, fmt.Errorf("forget saved filters: %w", err)
		}
		save = false
	}

	if cfg.Flags.UseLast {
		saved, ok, err := st.Load()
		if err != nil {
			return domain.FilterSpec{}, err
		}
		if ok {
			spec = saved
			color.White("Reusing saved filters/paths from the last run.")
		} else {
			color.Yellow("No saved filters found; running with provided/default values.")
		}
	}

	if save {
		if err := st.Save(spec); err != nil {
			// persistence faults never block the run
			color.Yellow("Warning: failed to save last run filters: %v", err)
		}
	}
	return spec, nil
}
