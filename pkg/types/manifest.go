package types

// FilePair maps one source file on disk to a destination folder inside the
// collected bundle. The source is copied verbatim; the destination is a
// folder path relative to the bundle root.
type FilePair struct {
	Src  string `yaml:"src" json:"src"`
	Dest string `yaml:"dest" json:"dest"`
}

// BuildOptions are the pass-through boolean switches of a build.
type BuildOptions struct {
	// Console controls whether the generated launcher keeps the parent
	// console. When false, launcher output is redirected to a log file
	// next to the bundle.
	Console bool `yaml:"console" json:"console"`

	// Debug emits the full analysis report into the collected output.
	Debug bool `yaml:"debug" json:"debug"`

	// Compress gzips the code archive.
	Compress bool `yaml:"compress" json:"compress"`

	// Strip drops debug-symbol artifacts from the code closure.
	Strip bool `yaml:"strip" json:"strip"`
}

// BuildManifest is the authored description of one bundle: which entry point
// to package, which extra files and forced modules to include, which names
// must never ship, and how to name the output.
//
// A manifest is read once per build invocation and holds no state across
// invocations.
type BuildManifest struct {
	// Entrypoint is the script that becomes the process main when the
	// bundle runs. Its directory is the primary source root for analysis.
	Entrypoint string `yaml:"entrypoint" json:"entrypoint"`

	// Name is the single string shared by the produced launcher executable
	// and the collected output folder.
	Name string `yaml:"name" json:"name"`

	// SearchPaths are the roots against which hidden imports are resolved.
	SearchPaths []string `yaml:"search_paths" json:"searchPaths"`

	// Datas are non-code resources copied verbatim into the bundle.
	Datas []FilePair `yaml:"datas" json:"datas"`

	// Binaries are native libraries copied verbatim into the bundle.
	Binaries []FilePair `yaml:"binaries" json:"binaries"`

	// HiddenImports name modules the packaged application needs at runtime
	// but which discovery cannot see from the entry point alone.
	HiddenImports []string `yaml:"hidden_imports" json:"hiddenImports"`

	// Excludes name packages or folders omitted from the closure even if
	// discovered. Excludes must stay disjoint from Datas destinations and
	// HiddenImports; overlap is rejected at validation time.
	Excludes []string `yaml:"excludes" json:"excludes"`

	Options BuildOptions `yaml:"options" json:"options"`
}
