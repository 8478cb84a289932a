// Package testhelpers provides stand-in git and python executables so the
// evaluation stages can be exercised without network access or a real
// interpreter.
package testhelpers

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// gitStub "clones" by copying @FIXTURES@/<basename of url without .git>.
const gitStub = `#!/bin/sh
[ "$1" = "clone" ] || { echo "unsupported git command: $1" >&2; exit 2; }
url="$4"
dest="$5"
name=$(basename "$url" .git)
src="@FIXTURES@/$name"
if [ ! -d "$src" ]; then
  echo "remote: Repository not found." >&2
  echo "fatal: repository '$url' not found" >&2
  exit 128
fi
cp -R "$src" "$dest"
`

// pythonStub implements "python -m venv --clear <dir>". The environment's
// interpreter runs entry points with /bin/sh and its pip records arguments
// in <dir>/pip.log. A venv-fail file next to <dir> makes creation fail and a
// pip-fail file makes installation fail.
const pythonStub = `#!/bin/sh
[ "$1" = "-m" ] && [ "$2" = "venv" ] || { echo "unsupported python invocation" >&2; exit 2; }
dir="$4"
if [ -f "$(dirname "$dir")/venv-fail" ]; then
  echo "Error: Command '[python, -m, ensurepip]' returned non-zero exit status 1." >&2
  exit 1
fi
rm -rf "$dir"
mkdir -p "$dir/bin"
printf '#!/bin/sh\nexec /bin/sh "$@"\n' > "$dir/bin/python"
cat > "$dir/bin/pip" <<'PIP'
#!/bin/sh
here=$(dirname "$0")
echo "$@" >> "$here/../pip.log"
if [ -f "$here/../../pip-fail" ]; then
  echo "ERROR: No matching distribution found for tensorflow==0.1" >&2
  exit 1
fi
PIP
chmod +x "$dir/bin/python" "$dir/bin/pip"
`

// Toolchain is a pair of stub executables plus the fixture directory the
// git stub clones from.
type Toolchain struct {
	Git      string
	Python   string
	Fixtures string
}

// NewToolchain writes the stubs into a temporary directory. Tests using it
// are skipped on Windows.
func NewToolchain(t testing.TB) *Toolchain {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub toolchain requires a POSIX shell")
	}

	root := t.TempDir()
	tc := &Toolchain{
		Git:      filepath.Join(root, "bin", "git"),
		Python:   filepath.Join(root, "bin", "python3"),
		Fixtures: filepath.Join(root, "fixtures"),
	}
	mustMkdir(t, filepath.Join(root, "bin"))
	mustMkdir(t, tc.Fixtures)
	writeExec(t, tc.Git, strings.ReplaceAll(gitStub, "@FIXTURES@", tc.Fixtures))
	writeExec(t, tc.Python, pythonStub)
	return tc
}

// AddRepo creates a fixture repository that clones of any URL ending in
// name (with or without .git) will copy. Files are written relative to the
// repository root. It returns a URL for the repository.
func (tc *Toolchain) AddRepo(t testing.TB, name string, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(tc.Fixtures, name)
	mustMkdir(t, dir)
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		mustMkdir(t, filepath.Dir(path))
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write fixture %s: %v", path, err)
		}
	}
	return "https://git.example.com/bench/" + name + ".git"
}

func mustMkdir(t testing.TB, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
}

func writeExec(t testing.TB, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
