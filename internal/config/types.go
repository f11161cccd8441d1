package config

import "fmt"

// Kind classifies a desired-state entry by the backend capable of servicing it.
type Kind string

const (
	// KindCaskApp is a GUI application installed as a Homebrew cask.
	KindCaskApp Kind = "cask"
	// KindCliPackage is a command-line tool installed as a Homebrew formula.
	KindCliPackage Kind = "cli"
	// KindFont is a font, either a cask from the fonts tap or a downloadable archive.
	KindFont Kind = "font"
	// KindPlugin is an asdf plugin, optionally registered from an explicit repo URL.
	KindPlugin Kind = "plugin"
	// KindStandaloneTool is a single-binary tool with a dedicated bootstrap action
	// (Homebrew itself, oh-my-zsh, starship, asdf).
	KindStandaloneTool Kind = "standalone"
	// KindVersionSet is the bulk install of every runtime version declared
	// in the user's tool-versions file.
	KindVersionSet Kind = "versions"
)

// knownKinds is the set of kinds an adapter binding exists for.
var knownKinds = map[Kind]bool{
	KindCaskApp:        true,
	KindCliPackage:     true,
	KindFont:           true,
	KindPlugin:         true,
	KindStandaloneTool: true,
	KindVersionSet:     true,
}

// Entry is one declared desired-state item: a package, app, font, plugin,
// standalone tool, or version set the workstation must end up with.
//
//   - ID: the name the backend knows the item by (formula name, cask token,
//     plugin name, ...).
//   - Args: extra arguments forwarded to the install invocation.
//   - SourceRef: optional explicit source. For plugins this is the repo URL
//     passed to `asdf plugin add`; for fonts it is an archive URL or a
//     GitHub `owner/repo@tag` release reference.
//   - Requires: keys (see Entry.Key) of entries that must be satisfied first.
//     A failed or skipped prerequisite makes this entry Skipped, never attempted.
//   - Critical: a failure of this entry marks the whole run fatal
//     (non-zero exit), on top of skipping its dependents.
type Entry struct {
	Kind      Kind     `yaml:"kind" json:"kind"`
	ID        string   `yaml:"id" json:"id"`
	Args      []string `yaml:"args,omitempty" json:"args,omitempty"`
	SourceRef string   `yaml:"source,omitempty" json:"source,omitempty"`
	Requires  []string `yaml:"requires,omitempty" json:"requires,omitempty"`
	Critical  bool     `yaml:"critical,omitempty" json:"critical,omitempty"`
}

// Key uniquely identifies an entry within a spec, e.g. "cli/ripgrep".
// Requires edges reference entries by this key.
func (e Entry) Key() string {
	return string(e.Kind) + "/" + e.ID
}

// Spec is the ordered list of desired-state entries for one run.
// Declared order is execution order.
type Spec struct {
	Entries []Entry `yaml:"entries"`
}

// Validate checks the structural invariants of the spec before any entry is
// attempted:
//
//   - every entry has a known kind and a non-empty id
//   - ids are unique within a kind
//   - every requires edge references an entry declared earlier in the list,
//     so dependency order is simply declaration order
func (s *Spec) Validate() error {
	seen := make(map[string]bool, len(s.Entries))
	for i, e := range s.Entries {
		if !knownKinds[e.Kind] {
			return fmt.Errorf("entry %d: unknown kind %q", i, e.Kind)
		}
		if e.ID == "" {
			return fmt.Errorf("entry %d: empty id", i)
		}
		key := e.Key()
		if seen[key] {
			return fmt.Errorf("duplicate entry %q: id must be unique within a kind", key)
		}
		for _, req := range e.Requires {
			if req == key {
				return fmt.Errorf("entry %q requires itself", key)
			}
			if !seen[req] {
				return fmt.Errorf("entry %q requires %q, which is not declared before it", key, req)
			}
		}
		seen[key] = true
	}
	return nil
}
