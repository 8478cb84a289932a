package runner

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Reconciled records which conventional files Reconcile had to create.
type Reconciled struct {
	ManifestCreated bool
	DataDirCreated  bool
}

// Reconcile makes sure the manifest and data directory named in layout
// exist under repoDir. Existing files are never touched. Failures are
// logged and otherwise ignored.
func Reconcile(repoDir string, layout Layout) Reconciled {
	var r Reconciled

	manifest := filepath.Join(repoDir, layout.Manifest)
	if _, err := os.Stat(manifest); errors.Is(err, os.ErrNotExist) {
		content := strings.Join(layout.DefaultPackages, "\n") + "\n"
		if err := os.WriteFile(manifest, []byte(content), 0o644); err != nil {
			slog.Warn("could not create manifest", "path", manifest, "error", err)
		} else {
			slog.Info("created default manifest", "path", manifest)
			r.ManifestCreated = true
		}
	}

	data := filepath.Join(repoDir, layout.DataDir)
	if _, err := os.Stat(data); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(data, 0o755); err != nil {
			slog.Warn("could not create data directory", "path", data, "error", err)
		} else {
			slog.Info("created data directory", "path", data)
			r.DataDirCreated = true
		}
	}

	return r
}
