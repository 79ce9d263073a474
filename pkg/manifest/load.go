// Package manifest loads and statically validates build manifests.
//
// Two on-disk formats decode into the same model: HCL (primary) and YAML.
// The format is chosen by file extension. All relative paths inside a
// manifest are resolved against the manifest's own directory, so a build
// behaves the same no matter where it is invoked from.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	yaml "gopkg.in/yaml.v2"

	"github.com/mrhapile/launchpack/pkg/types"
)

// hclRoot mirrors the top-level manifest schema for gohcl decoding.
// Boolean attributes are pointers so absence can fall back to defaults.
type hclRoot struct {
	Entrypoint    string    `hcl:"entrypoint"`
	Name          string    `hcl:"name,optional"`
	SearchPaths   []string  `hcl:"search_paths,optional"`
	HiddenImports []string  `hcl:"hidden_imports,optional"`
	Excludes      []string  `hcl:"excludes,optional"`
	Console       *bool     `hcl:"console,optional"`
	Debug         *bool     `hcl:"debug,optional"`
	Compress      *bool     `hcl:"compress,optional"`
	Strip         *bool     `hcl:"strip,optional"`
	Datas         []hclPair `hcl:"data,block"`
	Binaries      []hclPair `hcl:"binary,block"`
}

type hclPair struct {
	Src  string `hcl:"src"`
	Dest string `hcl:"dest,optional"`
}

// yamlRoot is the YAML twin of hclRoot.
type yamlRoot struct {
	Entrypoint    string           `yaml:"entrypoint"`
	Name          string           `yaml:"name"`
	SearchPaths   []string         `yaml:"search_paths"`
	HiddenImports []string         `yaml:"hidden_imports"`
	Excludes      []string         `yaml:"excludes"`
	Datas         []types.FilePair `yaml:"datas"`
	Binaries      []types.FilePair `yaml:"binaries"`
	Options       yamlOptions      `yaml:"options"`
}

type yamlOptions struct {
	Console  *bool `yaml:"console"`
	Debug    *bool `yaml:"debug"`
	Compress *bool `yaml:"compress"`
	Strip    *bool `yaml:"strip"`
}

// Load reads a build manifest from path, decodes it according to its
// extension, applies defaults, and resolves relative paths against the
// manifest directory.
func Load(path string) (*types.BuildManifest, error) {
	var (
		m   *types.BuildManifest
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		m, err = loadHCL(path)
	case ".yaml", ".yml":
		m, err = loadYAML(path)
	default:
		return nil, fmt.Errorf("unsupported manifest format %q (want .hcl, .yaml or .yml)", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest directory: %w", err)
	}
	rebaseManifest(m, dir)
	applyDefaults(m)
	return m, nil
}

func loadHCL(path string) (*types.BuildManifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, diags)
	}

	var root hclRoot
	diags = gohcl.DecodeBody(file.Body, envContext(), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, diags)
	}

	m := &types.BuildManifest{
		Entrypoint:    root.Entrypoint,
		Name:          root.Name,
		SearchPaths:   root.SearchPaths,
		HiddenImports: root.HiddenImports,
		Excludes:      root.Excludes,
		Options:       resolveOptions(root.Console, root.Debug, root.Compress, root.Strip),
	}
	for _, p := range root.Datas {
		m.Datas = append(m.Datas, types.FilePair{Src: p.Src, Dest: p.Dest})
	}
	for _, p := range root.Binaries {
		m.Binaries = append(m.Binaries, types.FilePair{Src: p.Src, Dest: p.Dest})
	}
	return m, nil
}

func loadYAML(path string) (*types.BuildManifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var root yamlRoot
	if err := yaml.UnmarshalStrict(raw, &root); err != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, err)
	}

	return &types.BuildManifest{
		Entrypoint:    root.Entrypoint,
		Name:          root.Name,
		SearchPaths:   root.SearchPaths,
		Datas:         root.Datas,
		Binaries:      root.Binaries,
		HiddenImports: root.HiddenImports,
		Excludes:      root.Excludes,
		Options:       resolveOptions(root.Options.Console, root.Options.Debug, root.Options.Compress, root.Options.Strip),
	}, nil
}

// envContext exposes the process environment to HCL expressions as an `env`
// object, so manifests can write paths like "${env.HOME}/certs/cacert.pem".
func envContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = cty.StringVal(v)
	}

	env := cty.EmptyObjectVal
	if len(vars) > 0 {
		env = cty.ObjectVal(vars)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}
}

// resolveOptions turns the optional decoded booleans into concrete options.
// Compression defaults on; everything else defaults off except the console,
// which stays attached unless the manifest hides it.
func resolveOptions(console, debug, compress, strip *bool) types.BuildOptions {
	opts := types.BuildOptions{Console: true, Compress: true}
	if console != nil {
		opts.Console = *console
	}
	if debug != nil {
		opts.Debug = *debug
	}
	if compress != nil {
		opts.Compress = *compress
	}
	if strip != nil {
		opts.Strip = *strip
	}
	return opts
}

func rebaseManifest(m *types.BuildManifest, dir string) {
	m.Entrypoint = rebase(dir, m.Entrypoint)
	for i := range m.SearchPaths {
		m.SearchPaths[i] = rebase(dir, m.SearchPaths[i])
	}
	for i := range m.Datas {
		m.Datas[i].Src = rebase(dir, m.Datas[i].Src)
	}
	for i := range m.Binaries {
		m.Binaries[i].Src = rebase(dir, m.Binaries[i].Src)
	}
}

func rebase(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func applyDefaults(m *types.BuildManifest) {
	if m.Name == "" && m.Entrypoint != "" {
		base := filepath.Base(m.Entrypoint)
		m.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if len(m.SearchPaths) == 0 && m.Entrypoint != "" {
		m.SearchPaths = []string{filepath.Dir(m.Entrypoint)}
	}
	for i := range m.Datas {
		if m.Datas[i].Dest == "" {
			m.Datas[i].Dest = "."
		}
	}
	for i := range m.Binaries {
		if m.Binaries[i].Dest == "" {
			m.Binaries[i].Dest = "."
		}
	}
}
