package annotation

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
)

// Stamp identifies one version of a source file by size and mtime.
type Stamp struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mtime"`
}

func (s Stamp) same(o Stamp) bool {
	return s.Path == o.Path && s.Size == o.Size && s.ModTime.Equal(o.ModTime)
}

// Stamps holds the stamp of each cached source, keyed by role.
type Stamps map[string]Stamp

// StampSources stats each source file. paths maps a role ("symbols",
// "tss") to its file.
func StampSources(paths map[string]string) (Stamps, error) {
	stamps := make(Stamps, len(paths))
	for role, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		stamps[role] = Stamp{Path: path, Size: info.Size(), ModTime: info.ModTime()}
	}
	return stamps, nil
}

// cacheMeta is written next to the gob file.
type cacheMeta struct {
	Sources   Stamps    `json:"sources"`
	CreatedAt time.Time `json:"created_at"`
}

// DiskCache stores decoded annotation tables as gob files:
//
//	{dir}/annotations.gob        (serialized tables)
//	{dir}/annotations.meta.json  (stamps of the source files)
type DiskCache struct {
	dir string
}

// NewDiskCache creates a cache rooted at dir.
func NewDiskCache(dir string) *DiskCache {
	return &DiskCache{dir: dir}
}

func (c *DiskCache) gobPath() string {
	return filepath.Join(c.dir, "annotations.gob")
}

func (c *DiskCache) metaPath() string {
	return filepath.Join(c.dir, "annotations.meta.json")
}

// Valid reports whether the cached tables were built from exactly these
// sources.
func (c *DiskCache) Valid(sources Stamps) bool {
	meta, err := c.readMeta()
	if err != nil || len(meta.Sources) != len(sources) {
		return false
	}
	for role, s := range sources {
		if cached, ok := meta.Sources[role]; !ok || !cached.same(s) {
			return false
		}
	}
	_, err = os.Stat(c.gobPath())
	return err == nil
}

// Load reads the cached tables.
func (c *DiskCache) Load() (*Tables, error) {
	f, err := os.Open(c.gobPath())
	if err != nil {
		return nil, fmt.Errorf("open annotation cache: %w", err)
	}
	defer f.Close()

	var t Tables
	if err := gob.NewDecoder(f).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode annotation cache: %w", err)
	}
	return &t, nil
}

// Write serializes the tables and records the source stamps.
func (c *DiskCache) Write(t *Tables, sources Stamps) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	f, err := os.Create(c.gobPath())
	if err != nil {
		return fmt.Errorf("create annotation cache: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(t); err != nil {
		f.Close()
		os.Remove(c.gobPath())
		return fmt.Errorf("encode annotation cache: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close annotation cache: %w", err)
	}

	data, err := json.Marshal(cacheMeta{Sources: sources, CreatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode cache metadata: %w", err)
	}
	return os.WriteFile(c.metaPath(), data, 0644)
}

// Clear removes the cached files.
func (c *DiskCache) Clear() {
	os.Remove(c.gobPath())
	os.Remove(c.metaPath())
}

func (c *DiskCache) readMeta() (*cacheMeta, error) {
	data, err := os.ReadFile(c.metaPath())
	if err != nil {
		return nil, err
	}
	var meta cacheMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
