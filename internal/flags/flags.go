// Package flags holds the feature flags read from the flags config key.
// A Registry is read-only once built; unset and unknown flags are off.
package flags

import (
	"maps"
	"slices"
	"strings"

	"github.com/zjrosen/texdup/internal/log"
)

const (
	// FlagAlwaysFullRecheck disables incremental invalidation; every pass
	// re-runs detectors over all paragraphs.
	FlagAlwaysFullRecheck = "always-full-recheck"

	// FlagPublishUnchanged publishes analysis events even for passes that
	// found nothing new.
	FlagPublishUnchanged = "publish-unchanged"
)

// Known lists every flag the analyzer reads, with a one-line description.
var Known = map[string]string{
	FlagAlwaysFullRecheck: "re-check every paragraph on every pass",
	FlagPublishUnchanged:  "publish events for passes that changed nothing",
}

// Registry is a set of flag values.
type Registry struct {
	flags   map[string]bool
	unknown []string
}

// New builds a Registry from config values. Names are matched case
// insensitively; names not in Known are kept but logged.
func New(values map[string]bool) *Registry {
	r := &Registry{flags: make(map[string]bool, len(values))}
	for name, on := range values {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, ok := Known[name]; !ok {
			r.unknown = append(r.unknown, name)
		}
		r.flags[name] = on
	}
	slices.Sort(r.unknown)
	if len(r.unknown) > 0 {
		log.Warn(log.CatConfig, "unknown feature flags", "flags", strings.Join(r.unknown, ","))
	}
	log.Debug(log.CatConfig, "feature flags loaded", "enabled", strings.Join(r.EnabledNames(), ","))
	return r
}

// Enabled reports whether name is on. A nil Registry has every flag off.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	return r.flags[name]
}

// EnabledNames returns the sorted names of flags that are on.
func (r *Registry) EnabledNames() []string {
	if r == nil {
		return nil
	}
	var names []string
	for name, on := range r.flags {
		if on {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Unknown returns the configured names that no code reads.
func (r *Registry) Unknown() []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.unknown)
}

// All returns a copy of every configured value.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return map[string]bool{}
	}
	return maps.Clone(r.flags)
}
