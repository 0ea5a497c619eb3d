package data

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// TileSize is the edge of one level tile in world pixels.
const TileSize = 16

// Tile characters understood by the level loader.
const (
	TilePlayer      = 'S'
	TileEnemy       = 'E'
	TileFloor       = '.'
	TileWall        = 'X'
	TileLight       = 'l' // physical light on a floor tile
	TileBrokenLight = 'b' // flickering physical light on a floor tile
)

// LevelInfo holds metadata for a single level, loaded from the level list.
type LevelInfo struct {
	ID      int      `yaml:"id"`
	Name    string   `yaml:"name"`
	File    string   `yaml:"file"`
	Actions []string `yaml:"actions"` // scripts started when the level loads
}

// Level is a loaded level: metadata plus its tile rows.
type Level struct {
	Info   LevelInfo
	Rows   []string
	Width  int // tiles, longest row
	Height int // tiles
}

// Tile returns the tile at (x, y), or 0 outside the grid.
func (l *Level) Tile(x, y int) byte {
	if y < 0 || y >= len(l.Rows) || x < 0 || x >= len(l.Rows[y]) {
		return 0
	}
	return l.Rows[y][x]
}

// LevelTable provides level lookups by id.
type LevelTable struct {
	levels map[int]*Level
}

type levelListFile struct {
	Levels []LevelInfo `yaml:"levels"`
}

// LoadLevels loads level metadata from YAML and tile rows from text files.
// yamlPath: path to levels.yaml
// tileDir: directory containing the level files named in the list
func LoadLevels(yamlPath, tileDir string) (*LevelTable, error) {
	raw, err := os.ReadFile(yamlPath)
	if err != nil {
		return nil, fmt.Errorf("read level list %s: %w", yamlPath, err)
	}
	var file levelListFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse level list: %w", err)
	}

	table := &LevelTable{
		levels: make(map[int]*Level, len(file.Levels)),
	}
	for _, info := range file.Levels {
		if _, dup := table.levels[info.ID]; dup {
			return nil, fmt.Errorf("level list: duplicate id %d", info.ID)
		}
		rows, err := loadTileFile(filepath.Join(tileDir, info.File))
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", info.ID, err)
		}
		lvl := &Level{Info: info, Rows: rows, Height: len(rows)}
		for _, r := range rows {
			if len(r) > lvl.Width {
				lvl.Width = len(r)
			}
		}
		table.levels[info.ID] = lvl
	}
	return table, nil
}

// loadTileFile reads one row per line. Trailing carriage returns are
// dropped; blank trailing lines end the grid.
func loadTileFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		rows = append(rows, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	for len(rows) > 0 && strings.TrimSpace(rows[len(rows)-1]) == "" {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

// Get returns the level with the given id.
func (t *LevelTable) Get(id int) (*Level, bool) {
	l, ok := t.levels[id]
	return l, ok
}

// Count returns the number of levels.
func (t *LevelTable) Count() int {
	return len(t.levels)
}

// IDs returns level ids in ascending order.
func (t *LevelTable) IDs() []int {
	ids := make([]int, 0, len(t.levels))
	for id := range t.levels {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
