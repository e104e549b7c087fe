package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chronos-tachyon/go-snaptree/internal/config"
	"github.com/chronos-tachyon/go-snaptree/internal/fileselect"
	"github.com/chronos-tachyon/go-snaptree/internal/fileutil"
)

var policyNames = []string{".snaptree.yaml", ".snaptree.yml", ".snaptree.toml"}

// workspace is a loaded policy together with the directory its root is
// resolved against.
type workspace struct {
	policy    *config.Policy
	rules     *fileselect.RuleSet
	rootStart string
}

// findPolicy searches upward from the working directory, stopping at the
// home directory.
func findPolicy() string {
	for _, name := range policyNames {
		if path, ok := fileutil.FindUp(name, "", ""); ok {
			return path
		}
	}
	return ""
}

func addRootStartFlag(cmd *cobra.Command) {
	cmd.Flags().String("root-start", "", "Directory the policy root is relative to (default: the policy file's directory)")
}

func loadWorkspace(cmd *cobra.Command) (*workspace, error) {
	path, _ := cmd.Flags().GetString("policy")
	if path == "" {
		path = findPolicy()
	} else {
		path = fileutil.ExpandPath(path)
	}

	p, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	rs, err := p.RuleSet()
	if err != nil {
		return nil, err
	}

	rootStart, _ := cmd.Flags().GetString("root-start")
	switch {
	case rootStart != "":
		rootStart = fileutil.ExpandPath(rootStart)
	case path != "":
		rootStart = filepath.Dir(path)
	default:
		rootStart = "."
	}

	return &workspace{policy: p, rules: rs, rootStart: rootStart}, nil
}

func (ws *workspace) copyOptions(factory fileselect.HandlerFactory) []fileselect.CopyOption {
	opts := []fileselect.CopyOption{
		fileselect.WithRootStart(ws.rootStart),
		fileselect.WithHandler(factory),
	}
	return append(opts, ws.policy.CopyOptions()...)
}

func copyHandler(preserveXattrs bool) fileselect.HandlerFactory {
	return func(cfg fileselect.HandlerConfig) (fileselect.Handler, error) {
		h := fileselect.NewCopyHandler(cfg.SrcRoot, cfg.DstRoot, cfg.Logger)
		h.PreserveXattrs = preserveXattrs
		return h, nil
	}
}

// pruneOutput keeps a walk out of dir when dir lies inside the source tree,
// so output written during the walk is never read back.
func (ws *workspace) pruneOutput(dir string) []fileselect.CopyOption {
	rel, ok := within(fileselect.SourceRoot(ws.rootStart, ws.rules), dir)
	if !ok {
		return nil
	}
	return []fileselect.CopyOption{fileselect.WithPrune(rel)}
}

// within returns dir relative to root when dir is strictly below root.
func within(root, dir string) (string, bool) {
	root, err := resolve(root)
	if err != nil {
		return "", false
	}
	dir, err = resolve(dir)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

func resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
