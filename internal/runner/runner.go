package runner

// Layout is the fixed set of well-known paths inside a repository working
// tree, all relative to the repository root.
type Layout struct {
	Manifest        string   // dependency manifest, e.g. requirements.txt
	DataDir         string   // conventional data directory
	EnvDir          string   // isolated environment location
	EntryPoints     []string // candidate entry points, highest priority first
	DefaultPackages []string // written into a synthesized manifest
}

// DefaultLayout returns the conventional Python project layout.
func DefaultLayout() Layout {
	return Layout{
		Manifest:        "requirements.txt",
		DataDir:         "data",
		EnvDir:          "venv",
		EntryPoints:     []string{"main.py", "app.py", "run.py", "model.py"},
		DefaultPackages: []string{"numpy", "pandas", "scikit-learn"},
	}
}

// WithDefaults fills empty fields from DefaultLayout.
func (l Layout) WithDefaults() Layout {
	d := DefaultLayout()
	if l.Manifest == "" {
		l.Manifest = d.Manifest
	}
	if l.DataDir == "" {
		l.DataDir = d.DataDir
	}
	if l.EnvDir == "" {
		l.EnvDir = d.EnvDir
	}
	if len(l.EntryPoints) == 0 {
		l.EntryPoints = d.EntryPoints
	}
	if len(l.DefaultPackages) == 0 {
		l.DefaultPackages = d.DefaultPackages
	}
	return l
}
