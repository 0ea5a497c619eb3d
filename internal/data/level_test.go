package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestLoadLevels(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"levels.yaml": `levels:
  - id: 2
    name: Second
    file: b.txt
  - id: 1
    name: First
    file: a.txt
    actions: [cave_in]
`,
		"a.txt": "XXX\r\nXSX\r\nXXXXX\r\n\r\n\n",
		"b.txt": "S.E\n",
	})

	table, err := LoadLevels(filepath.Join(dir, "levels.yaml"), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Count())
	assert.Equal(t, []int{1, 2}, table.IDs())

	lvl, ok := table.Get(1)
	require.True(t, ok)
	assert.Equal(t, "First", lvl.Info.Name)
	assert.Equal(t, []string{"cave_in"}, lvl.Info.Actions)
	assert.Equal(t, []string{"XXX", "XSX", "XXXXX"}, lvl.Rows)
	assert.Equal(t, 5, lvl.Width)
	assert.Equal(t, 3, lvl.Height)

	assert.Equal(t, byte(TilePlayer), lvl.Tile(1, 1))
	assert.Equal(t, byte(TileWall), lvl.Tile(4, 2))
	assert.Equal(t, byte(0), lvl.Tile(4, 0), "short rows end early")
	assert.Equal(t, byte(0), lvl.Tile(-1, 0))
	assert.Equal(t, byte(0), lvl.Tile(0, 3))

	_, ok = table.Get(9)
	assert.False(t, ok)
}

func TestLoadLevelsErrors(t *testing.T) {
	t.Run("duplicate id", func(t *testing.T) {
		dir := writeFiles(t, map[string]string{
			"levels.yaml": "levels:\n  - {id: 1, file: a.txt}\n  - {id: 1, file: a.txt}\n",
			"a.txt":       "S\n",
		})
		_, err := LoadLevels(filepath.Join(dir, "levels.yaml"), dir)
		assert.ErrorContains(t, err, "duplicate id 1")
	})

	t.Run("missing tile file", func(t *testing.T) {
		dir := writeFiles(t, map[string]string{
			"levels.yaml": "levels:\n  - {id: 3, file: nope.txt}\n",
		})
		_, err := LoadLevels(filepath.Join(dir, "levels.yaml"), dir)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("missing list", func(t *testing.T) {
		_, err := LoadLevels(filepath.Join(t.TempDir(), "levels.yaml"), "")
		assert.Error(t, err)
	})
}
