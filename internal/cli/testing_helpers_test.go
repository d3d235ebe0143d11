package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const pythonFixture = `def create_user(name, email):
    """Create a new user account."""
    return {"name": name, "email": email}


class Account:
    """Customer account model."""

    def close(self):
        """Close the account."""
        self.active = False
`

const sqlFixture = `-- Customer orders.
CREATE TABLE orders (
    id INT PRIMARY KEY,
    total DECIMAL(10, 2) NOT NULL
);
`

// resetFlags restores package-level command state between tests.
func resetFlags() {
	cfgFile = ""
	verbose = false
	scanQuiet = false
	searchRoot, searchLimit, searchKind, searchLanguage = ".", 0, "", ""
	searchExact, searchJSON, searchThreshold = false, false, 0
	exportRoot, exportFormat, exportOut, exportTitle = ".", "markdown", "", ""
	diagramRoot, diagramOut, diagramLabel = ".", "", ""
	mcpRoot = "."
}

func writeSource(t *testing.T, dir, name, text string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(text), 0644))
}

// scanFixture scans a small Python+SQL tree into a temp directory and
// returns its root. The default config applies, so the mock embedding
// provider supplies real vectors.
func scanFixture(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	writeSource(t, dir, "users.py", pythonFixture)
	writeSource(t, dir, "schema.sql", sqlFixture)

	resetFlags()
	scanQuiet = true
	require.NoError(t, runScan(scanCmd, []string{dir}))
	return dir
}

// captureStdout runs fn while collecting everything it writes to stdout.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	// Read from pipe in goroutine
	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		buf.ReadFrom(r)
		close(done)
	}()

	fnErr := fn()

	w.Close()
	<-done
	os.Stdout = oldStdout

	return buf.String(), fnErr
}
