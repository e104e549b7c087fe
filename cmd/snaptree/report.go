package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/chronos-tachyon/go-snaptree/internal/fileselect"
)

const (
	actionCopy   = "copy"
	actionIgnore = "ignore"
	actionPrune  = "prune"
)

type reportEntry struct {
	Path   string `json:"path" yaml:"path"`
	Action string `json:"action" yaml:"action"`
	Rule   string `json:"rule,omitempty" yaml:"rule,omitempty"`
}

// recorder is a Handler that logs every decision and forwards it to an
// optional inner Handler.
type recorder struct {
	next    fileselect.Handler
	entries []reportEntry
	copied  []string
}

// wrap returns a factory producing r around whatever factory builds. A nil
// factory records without side effects.
func (r *recorder) wrap(factory fileselect.HandlerFactory) fileselect.HandlerFactory {
	return func(cfg fileselect.HandlerConfig) (fileselect.Handler, error) {
		if factory != nil {
			h, err := factory(cfg)
			if err != nil {
				return nil, err
			}
			r.next = h
		}
		return r, nil
	}
}

func (r *recorder) Copy(relPath string, results []fileselect.RuleResult) error {
	if r.next != nil {
		if err := r.next.Copy(relPath, results); err != nil {
			return err
		}
	}
	r.entries = append(r.entries, reportEntry{
		Path:   filepath.ToSlash(relPath),
		Action: actionCopy,
		Rule:   decidingRule(results),
	})
	r.copied = append(r.copied, relPath)
	return nil
}

func (r *recorder) Ignore(relPath string, results []fileselect.RuleResult) error {
	if r.next != nil {
		if err := r.next.Ignore(relPath, results); err != nil {
			return err
		}
	}
	action := actionIgnore
	if results == nil {
		action = actionPrune
	}
	r.entries = append(r.entries, reportEntry{
		Path:   filepath.ToSlash(relPath),
		Action: action,
		Rule:   decidingRule(results),
	})
	return nil
}

func (r *recorder) Close() error {
	if r.next != nil {
		return r.next.Close()
	}
	return nil
}

func decidingRule(results []fileselect.RuleResult) string {
	last, ok := fileselect.Decisive(results)
	if !ok {
		return ""
	}
	return last.Rule.String()
}

func writeReport(w io.Writer, format string, v any) error {
	switch format {
	case "json", "":
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(v)
	case "yaml":
		e := yaml.NewEncoder(w)
		e.SetIndent(2)
		if err := e.Encode(v); err != nil {
			return err
		}
		return e.Close()
	default:
		return fmt.Errorf("unknown output format %q: expected json or yaml", format)
	}
}

var _ fileselect.Handler = (*recorder)(nil)
