package schemafile

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/reoring/grape"
	"github.com/reoring/grape/probe"
	"github.com/reoring/grape/rules"
	"github.com/reoring/grape/store"
)

// RuleFactory builds a rule from its document argument.
type RuleFactory func(a Args) (grape.Rule, error)

// Registry maps rule names to factories. Names not known to a field's type
// are looked up here, so any validator type can use them.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]RuleFactory
	store     []store.Option
	probe     []probe.Option
}

// RegistryOption configures the built-in rules of a Registry.
type RegistryOption func(*Registry)

// StoreDefaults prepends opts to the options of every unique and exists
// rule, for example store.Dollar() for PostgreSQL.
func StoreDefaults(opts ...store.Option) RegistryOption {
	return func(r *Registry) { r.store = append(r.store, opts...) }
}

// ProbeDefaults prepends opts to the options of every active_url rule.
func ProbeDefaults(opts ...probe.Option) RegistryOption {
	return func(r *Registry) { r.probe = append(r.probe, opts...) }
}

// NewRegistry returns a registry holding the rules of the satellite
// packages: unique, exists, active_url, same, different and expr.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{factories: map[string]RuleFactory{}}
	for _, opt := range opts {
		opt(r)
	}
	r.factories["unique"] = r.lookupFactory(store.Unique)
	r.factories["exists"] = r.lookupFactory(store.Exists)
	r.factories["active_url"] = r.activeURL
	r.factories["same"] = pathFactory(rules.Same)
	r.factories["different"] = pathFactory(rules.Different)
	r.factories["expr"] = exprFactory
	return r
}

// Register adds or replaces a named rule.
func (r *Registry) Register(name string, f RuleFactory) error {
	if name == "" || f == nil {
		return errors.New("schemafile: rule needs a name and a factory")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
	return nil
}

func (r *Registry) lookup(name string) (RuleFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

type lookupArgs struct {
	Table  string         `yaml:"table"`
	Column string         `yaml:"column"`
	Dollar bool           `yaml:"dollar"`
	Where  map[string]any `yaml:"where"`
	Ignore *struct {
		Column string `yaml:"column"`
		Value  any    `yaml:"value"`
	} `yaml:"ignore"`
}

func (r *Registry) lookupFactory(build func(table, column string, opts ...store.Option) grape.Rule) RuleFactory {
	return func(a Args) (grape.Rule, error) {
		var la lookupArgs
		if err := a.Decode(&la); err != nil {
			return nil, err
		}
		if la.Table == "" || la.Column == "" {
			return nil, errors.New("table and column are required")
		}
		opts := append([]store.Option(nil), r.store...)
		if la.Dollar {
			opts = append(opts, store.Dollar())
		}
		if len(la.Where) > 0 {
			opts = append(opts, store.Where(la.Where))
		}
		if la.Ignore != nil {
			opts = append(opts, store.Ignore(la.Ignore.Column, la.Ignore.Value))
		}
		return build(la.Table, la.Column, opts...), nil
	}
}

func (r *Registry) activeURL(a Args) (grape.Rule, error) {
	opts := append([]probe.Option(nil), r.probe...)
	if !a.Present() {
		return probe.ActiveURL(opts...), nil
	}
	var opt struct {
		Timeout string `yaml:"timeout"`
	}
	if err := a.Decode(&opt); err != nil {
		return nil, err
	}
	d, err := time.ParseDuration(opt.Timeout)
	if err != nil {
		return nil, fmt.Errorf("timeout: %w", err)
	}
	return probe.ActiveURL(append(opts, probe.WithTimeout(d))...), nil
}

func pathFactory(build func(path string) grape.Rule) RuleFactory {
	return func(a Args) (grape.Rule, error) {
		p, err := a.String()
		if err != nil {
			return nil, err
		}
		return build(p), nil
	}
}

func exprFactory(a Args) (grape.Rule, error) {
	var e struct {
		Expression string `yaml:"expression"`
		Message    string `yaml:"message"`
	}
	if a.Present() && a.node.Kind == yaml.ScalarNode {
		s, err := a.String()
		if err != nil {
			return nil, err
		}
		e.Expression = s
	} else if err := a.Decode(&e); err != nil {
		return nil, err
	}
	return rules.Expr(e.Expression, e.Message)
}
