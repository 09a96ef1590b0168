package templates

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalTemplate = `id: %s
name: Minimal
typeTag: MIN
fields:
  - id: note
    label: Note
    type: text
document:
  title: "{{note}}"
  bodyMd: "{{note}}"
`

func writeTemplate(t *testing.T, dir, id string) {
	t.Helper()
	body := []byte(fmt.Sprintf(minimalTemplate, id))
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".yaml"), body, 0o644))
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "alpha")

	reg, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, reg.List(), 1)

	w, err := Watch(context.Background(), dir, reg, 20*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	writeTemplate(t, dir, "beta")
	require.Eventually(t, func() bool {
		_, err := reg.Get("beta")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.Remove(filepath.Join(dir, "alpha.yaml")))
	require.Eventually(t, func() bool {
		_, err := reg.Get("alpha")
		return err != nil
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcherKeepsSetOnBadFile(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "alpha")
	reg, err := LoadDir(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("id: [unterminated"), 0o644))
	assert.Error(t, reg.Reload(dir))

	_, err = reg.Get("alpha")
	assert.NoError(t, err)
}

func TestWatchMissingDir(t *testing.T) {
	_, err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope"), NewRegistry(), 0)
	assert.Error(t, err)
}
