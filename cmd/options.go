package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/KaramelBytes/listsum/internal/bundle"
	cfgpkg "github.com/KaramelBytes/listsum/internal/config"
	"github.com/KaramelBytes/listsum/internal/ingest"
	"github.com/KaramelBytes/listsum/internal/summary"
	"github.com/KaramelBytes/listsum/internal/utils"
)

// settings returns the loaded configuration, or built-in defaults when none loaded.
func settings() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	home, _ := os.UserHomeDir()
	return &cfgpkg.Global{
		NExamples:  summary.DefaultNExamples,
		LabelLimit: summary.DefaultLabelLimit,
		NullTokens: append([]string(nil), ingest.DefaultNullTokens...),
		BundlesDir: filepath.Join(home, ".listsum", "bundles"),
		CacheSize:  16,
		Workers:    4,
		LogLevel:   "info",
	}
}

var (
	loaderOnce sync.Once
	loader     *ingest.Loader
	loaderErr  error
)

// datasetLoader returns the process-wide cached loader.
func datasetLoader() (*ingest.Loader, error) {
	loaderOnce.Do(func() {
		loader, loaderErr = ingest.NewLoader(settings().CacheSize)
	})
	return loader, loaderErr
}

// readFlags are the dataset reading flags shared by several commands.
type readFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	listSep    string
	sheetName  string
	sheetIndex int
	maxRows    int
}

// options converts the flags into ingest options on top of configured defaults.
func (rf readFlags) options(listSepChanged bool) (ingest.Options, error) {
	s := settings()
	opt := ingest.DefaultOptions()
	if s.NullTokens != nil {
		opt.NullTokens = append([]string(nil), s.NullTokens...)
	}
	opt.ListSeparator = s.ListSeparator
	if listSepChanged {
		opt.ListSeparator = rf.listSep
	}
	if rf.maxRows > 0 {
		opt.MaxRows = rf.maxRows
	}
	if rf.sheetIndex > 0 {
		opt.SheetIndex = rf.sheetIndex
	}
	opt.SheetName = strings.TrimSpace(rf.sheetName)
	if rf.delimiter != "" {
		switch rf.delimiter {
		case ",":
			opt.Delimiter = ','
		case "\t", "tab":
			opt.Delimiter = '\t'
		case ";":
			opt.Delimiter = ';'
		case "|", "pipe":
			opt.Delimiter = '|'
		default:
			return opt, fmt.Errorf("unsupported --delimiter: %s", rf.delimiter)
		}
	}
	// Locale separators
	switch strings.ToLower(strings.TrimSpace(rf.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", rf.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(rf.thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", rf.thousands)
	}
	return opt, nil
}

// columnResult is one summarized column of one dataset.
type columnResult struct {
	Source   string           `json:"source"`
	Path     string           `json:"path"`
	Field    string           `json:"field,omitempty"`
	Query    string           `json:"query,omitempty"`
	Summary  *summary.Summary `json:"summary"`
	Text     string           `json:"text"`
	Warnings []string         `json:"warnings,omitempty"`
}

// label names the summarized column for headers and bundle sections.
func (r *columnResult) label() string {
	if r.Field != "" {
		return r.Field
	}
	return r.Query
}

// summarizeColumn loads path through the cache and summarizes field or query.
// With neither given, a dataset with a single field uses that field.
func summarizeColumn(path, field, query string, opt ingest.Options, n int) (*columnResult, error) {
	l, err := datasetLoader()
	if err != nil {
		return nil, err
	}
	ds, err := l.Load(path, opt)
	if err != nil {
		return nil, err
	}
	if field == "" && query == "" {
		if len(ds.Fields) != 1 {
			return nil, fmt.Errorf("--column or --query is required for %s (fields: %s)", ds.Name, strings.Join(ds.Fields, ", "))
		}
		field = ds.Fields[0]
	}
	var items []summary.Item
	if query != "" {
		items, err = ds.Query(query)
	} else {
		items, err = ds.Column(field)
	}
	if err != nil {
		return nil, err
	}
	s, err := summary.Analyze(items, summary.Options{NExamples: n})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ds.Name, err)
	}
	return &columnResult{
		Source:   ds.Name,
		Path:     absPath(path),
		Field:    field,
		Query:    query,
		Summary:  s,
		Text:     s.Text(),
		Warnings: ds.Warnings,
	}, nil
}

// expandInputs resolves globs and literal paths, deduplicated and sorted.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

// bundlesDir resolves the configured bundles directory, expanding a leading ~.
func bundlesDir() (string, error) {
	dir := settings().BundlesDir
	if strings.HasPrefix(dir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = strings.TrimPrefix(dir, "~")
		dir = strings.TrimPrefix(dir, string(os.PathSeparator))
		dir = strings.TrimPrefix(dir, "/")
		dir = filepath.Join(home, dir)
	}
	dir = filepath.Clean(dir)
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

func resolveBundleDir(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("bundle name is required")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid bundle name: %q", name)
	}
	root, err := bundlesDir()
	if err != nil {
		return "", err
	}
	return bundle.Dir(root, name), nil
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := utils.EnsureDir(dir); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func isUnknownField(err error) bool {
	return errors.Is(err, ingest.ErrUnknownField)
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
