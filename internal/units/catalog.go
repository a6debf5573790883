// Package units assembles the built-in unit catalog.
package units

import (
	"regexp"

	"github.com/spyglass-sec/spyglass/internal/unit"
	"github.com/spyglass-sec/spyglass/internal/units/raw"
)

// Catalog builds the default registry: the flag scanner for the given
// pattern plus every built-in decoder, in a fixed registration order
// that matching preserves.
func Catalog(flagPattern *regexp.Regexp) *unit.Registry {
	r := unit.NewRegistry()
	r.MustRegister(raw.NewFlagScan(flagPattern))
	r.MustRegister(raw.Hex{})
	r.MustRegister(raw.ROT13{})
	r.MustRegister(raw.Base64{})
	r.MustRegister(raw.Base85{})
	return r
}
