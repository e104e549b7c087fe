// Package config loads snapshot policies: which files belong to a
// snapshot and how the tree is walked.
//
// Layers are applied lowest first: built-in defaults, the per-user file
// under $XDG_CONFIG_HOME/snaptree, the project policy file, and finally
// SNAPTREE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"github.com/chronos-tachyon/go-snaptree/internal/fileselect"
	"github.com/chronos-tachyon/go-snaptree/internal/logging"
)

const (
	AppName   = "snaptree"
	EnvPrefix = "SNAPTREE_"
)

var (
	ErrUnknownFormat = errors.New("unknown config file format")
	ErrInvalidRule   = errors.New("invalid rule")
)

// userConfigNames are tried in order inside the per-user config directory.
var userConfigNames = []string{"config.yaml", "config.yml", "config.toml"}

// Rule is one entry of a policy's rules list. Exactly one of Include and
// Exclude must be given; a single string counts as a one-element list.
type Rule struct {
	Include    []string `koanf:"include"`
	Exclude    []string `koanf:"exclude"`
	Type       string   `koanf:"type"`
	Regex      bool     `koanf:"regex"`
	Sentinel   string   `koanf:"sentinel"`
	SizeGT     *int64   `koanf:"size-gt"`
	SizeLT     *int64   `koanf:"size-lt"`
	MaxMatches *int     `koanf:"max-matches"`
}

// Policy is a decoded policy file. Ignore entries are path globs matched
// against whole relative paths: '*' stays within one directory, "**"
// crosses directories and {a,b} alternates.
type Policy struct {
	Root           string   `koanf:"root"`
	FollowLinks    bool     `koanf:"follow-links"`
	PreserveXattrs bool     `koanf:"preserve-xattrs"`
	RunsDir        string   `koanf:"runs-dir"`
	Ignore         []string `koanf:"ignore"`
	Rules          []Rule   `koanf:"rules"`
}

func defaults() map[string]any {
	return map[string]any{
		"follow-links":    true,
		"preserve-xattrs": false,
		"runs-dir":        "runs",
	}
}

// Spec translates r into the form fileselect compiles.
func (r Rule) Spec() (fileselect.Spec, error) {
	var spec fileselect.Spec
	switch {
	case len(r.Include) > 0 && len(r.Exclude) > 0:
		return spec, fmt.Errorf("%w: both include and exclude given", ErrInvalidRule)
	case len(r.Include) > 0:
		spec.Result = true
		spec.Patterns = r.Include
	case len(r.Exclude) > 0:
		spec.Patterns = r.Exclude
	default:
		return spec, fmt.Errorf("%w: one of include or exclude is required", ErrInvalidRule)
	}

	typ, err := fileselect.ParseType(r.Type)
	if err != nil {
		return spec, err
	}
	spec.Type = typ
	spec.Regex = r.Regex
	spec.Sentinel = r.Sentinel
	spec.SizeGT = r.SizeGT
	spec.SizeLT = r.SizeLT
	spec.MaxMatches = r.MaxMatches
	return spec, nil
}

// Specs translates every rule, reporting the first bad one by index.
func (p *Policy) Specs() ([]fileselect.Spec, error) {
	specs := make([]fileselect.Spec, 0, len(p.Rules))
	for i, r := range p.Rules {
		spec, err := r.Spec()
		if err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", i, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (p *Policy) RuleSet(opts ...fileselect.Option) (*fileselect.RuleSet, error) {
	specs, err := p.Specs()
	if err != nil {
		return nil, err
	}
	rs, err := fileselect.New(p.Root, specs, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to compile rules: %w", err)
	}
	return rs, nil
}

// CopyOptions returns the walk options the policy implies.
func (p *Policy) CopyOptions() []fileselect.CopyOption {
	return []fileselect.CopyOption{
		fileselect.WithFollowLinks(p.FollowLinks),
		fileselect.WithIgnore(p.Ignore...),
	}
}

type Loader struct {
	// UserConfigDir is searched for config.{yaml,yml,toml}. Empty skips
	// the per-user layer.
	UserConfigDir string

	// EnvPrefix selects the environment variables that override policy
	// keys, e.g. SNAPTREE_FOLLOW_LINKS=false. Empty skips the layer.
	EnvPrefix string

	Logger zerolog.Logger
}

func NewLoader() *Loader {
	return &Loader{
		UserConfigDir: filepath.Join(xdg.ConfigHome, AppName),
		EnvPrefix:     EnvPrefix,
		Logger:        logging.Component("config"),
	}
}

// Load reads the policy at path, which may be empty to use only the lower
// and upper layers.
func Load(path string) (*Policy, error) {
	return NewLoader().Load(path)
}

func (l *Loader) Load(path string) (*Policy, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if userPath := l.userConfigPath(); userPath != "" {
		if err := loadFile(k, userPath); err != nil {
			return nil, err
		}
		l.Logger.Debug().
			Str("path", userPath).
			Msg("loaded user config")
	}

	if path != "" {
		if err := loadFile(k, path); err != nil {
			return nil, err
		}
		l.Logger.Debug().
			Str("path", path).
			Msg("loaded policy")
	}

	if l.EnvPrefix != "" {
		prefix := l.EnvPrefix
		err := k.Load(env.Provider(prefix, ".", func(s string) string {
			return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, prefix)), "_", "-")
		}), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load env vars: %w", err)
		}
	}

	var p Policy
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &p,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				stringToListHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &p, unmarshalConf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal policy: %w", err)
	}

	if _, err := p.Specs(); err != nil {
		return nil, err
	}
	if err := fileselect.ValidateIgnore(p.Ignore); err != nil {
		return nil, fmt.Errorf("ignore: %w", err)
	}
	return &p, nil
}

func (l *Loader) userConfigPath() string {
	if l.UserConfigDir == "" {
		return ""
	}
	for _, name := range userConfigNames {
		path := filepath.Join(l.UserConfigDir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	default:
		return nil, fmt.Errorf("%q: %w", path, ErrUnknownFormat)
	}
}

func loadFile(k *koanf.Koanf, path string) error {
	parser, err := parserFor(path)
	if err != nil {
		return err
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return nil
}

// stringToListHookFunc lets a lone pattern stand in for a list. Patterns
// may contain commas, so the string is never split.
func stringToListHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() == reflect.String && t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.String {
			return []string{reflect.ValueOf(data).String()}, nil
		}
		return data, nil
	}
}
