package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddExclusions_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".texdup", "config.yaml")

	added, err := AddExclusions(path, "Results", "model", "results")
	require.NoError(t, err)
	require.Equal(t, []string{"results", "model"}, added)

	tier, err := LoadTier(path)
	require.NoError(t, err)
	require.Equal(t, []string{"results", "model"}, tier.Exclusions)
}

func TestAddExclusions_PreservesOtherSectionsAndComments(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `# my settings
scope: line # per line please

# words to ignore
exclusions:
  - results

flags:
  always-full-recheck: true
`)

	added, err := AddExclusions(path, "model", "results")
	require.NoError(t, err)
	require.Equal(t, []string{"model"}, added)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "# my settings")
	require.Contains(t, content, "scope: line # per line please")
	require.Contains(t, content, "always-full-recheck: true")
	require.Contains(t, content, "- model")

	tier, err := LoadTier(path)
	require.NoError(t, err)
	require.Equal(t, []string{"results", "model"}, tier.Exclusions)
}

func TestAddExclusions_AppendsKeyToTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	_, err := AddExclusions(path, "lemma")
	require.NoError(t, err)

	require.NoError(t, ValidateFile(path))
	tier, err := LoadTier(path)
	require.NoError(t, err)
	require.Equal(t, []string{"lemma"}, tier.Exclusions)
}

func TestRemoveExclusions(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "exclusions: [results, model, data]\n")

	removed, err := RemoveExclusions(path, "MODEL", "missing")
	require.NoError(t, err)
	require.Equal(t, []string{"model"}, removed)

	tier, err := LoadTier(path)
	require.NoError(t, err)
	require.Equal(t, []string{"results", "data"}, tier.Exclusions)
}

func TestRemoveExclusions_MissingFileCreatesEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	removed, err := RemoveExclusions(path, "model")
	require.NoError(t, err)
	require.Empty(t, removed)

	tier, err := LoadTier(path)
	require.NoError(t, err)
	require.True(t, tier.Present)
	require.Empty(t, tier.Exclusions)
}

func TestUpdateExclusions_RejectsNonMapping(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "- just\n- a list\n")

	_, err := AddExclusions(path, "model")
	require.ErrorContains(t, err, "not a mapping")
}

func TestUpdateExclusions_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "scope: paragraph\n")

	_, err := AddExclusions(path, "model")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
