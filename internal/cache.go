package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const cacheVersion = "1.0"

// CacheManager keeps the latest merged snapshot of each replayed stream
type CacheManager struct {
	cacheDir  string
	engineKey string
}

// CacheMetadata ties a cache to the chunk store it was built from
type CacheMetadata struct {
	DatabasePath    string    `json:"database_path" yaml:"database_path"`
	DatabaseModTime time.Time `json:"database_mod_time" yaml:"database_mod_time"`
	CacheVersion    string    `json:"cache_version" yaml:"cache_version"`
	EngineKey       string    `json:"engine_key" yaml:"engine_key"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" yaml:"updated_at"`
}

// SnapshotIndexEntry is one stream in the index
type SnapshotIndexEntry struct {
	Stream string `yaml:"stream"`
	File   string `yaml:"file"`
	Chunks int    `yaml:"chunks"`
	Nodes  int    `yaml:"nodes"`
}

// SnapshotIndex is the YAML index of cached snapshots
type SnapshotIndex struct {
	Snapshots []SnapshotIndexEntry `yaml:"snapshots"`
	Metadata  CacheMetadata        `yaml:"metadata"`
}

// NewCacheManager creates a cache manager rooted at cacheDir
func NewCacheManager(cacheDir string) *CacheManager {
	return &CacheManager{
		cacheDir: cacheDir,
	}
}

// SetEngineKey records the engine settings the snapshots are merged with;
// a cache built under other settings is invalid
func (cm *CacheManager) SetEngineKey(key string) {
	cm.engineKey = key
}

// DefaultCacheDir returns ~/.vis-merge/cache, or a relative fallback when
// the home directory is unknown
func DefaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".vis-merge", "cache")
	}
	return filepath.Join(home, ".vis-merge", "cache")
}

// EnsureCacheDir ensures the cache directory exists
func (cm *CacheManager) EnsureCacheDir() error {
	if err := os.MkdirAll(cm.cacheDir, 0755); err != nil {
		return &CacheError{Op: "save", Path: cm.cacheDir, Err: err}
	}
	return nil
}

// GetCacheDir returns the cache directory path
func (cm *CacheManager) GetCacheDir() string {
	return cm.cacheDir
}

// GetIndexPath returns the path to the snapshot index
func (cm *CacheManager) GetIndexPath() string {
	return filepath.Join(cm.cacheDir, "snapshots.yaml")
}

// GetSnapshotPath returns the path to a stream's snapshot file
func (cm *CacheManager) GetSnapshotPath(stream string) string {
	return filepath.Join(cm.cacheDir, fmt.Sprintf("snapshot_%s.json", sanitizeStream(stream)))
}

// stream names come from storage keys and may hold path separators
func sanitizeStream(stream string) string {
	if stream == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, stream)
}

// IsCacheValid reports whether the cache was built from dbPath as it is now.
// A missing or unreadable index is an invalid cache, not an error.
func (cm *CacheManager) IsCacheValid(dbPath string) (bool, error) {
	if _, err := os.Stat(cm.GetIndexPath()); os.IsNotExist(err) {
		return false, nil
	}

	index, err := cm.LoadIndex()
	if err != nil {
		LogDebug("Ignoring unreadable cache index: %v", err)
		return false, nil
	}

	if index.Metadata.DatabasePath != dbPath || index.Metadata.CacheVersion != cacheVersion {
		return false, nil
	}
	if index.Metadata.EngineKey != cm.engineKey {
		LogDebug("Cache built with engine settings %q, now %q", index.Metadata.EngineKey, cm.engineKey)
		return false, nil
	}

	dbInfo, err := os.Stat(dbPath)
	if err != nil {
		return false, nil
	}

	return index.Metadata.DatabaseModTime.Equal(dbInfo.ModTime()), nil
}

// LoadIndex loads the snapshot index
func (cm *CacheManager) LoadIndex() (*SnapshotIndex, error) {
	indexPath := cm.GetIndexPath()
	data, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, &CacheError{Op: "load", Path: indexPath, Err: err}
	}

	var index SnapshotIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, &CacheError{Op: "load", Path: indexPath, Err: fmt.Errorf("failed to unmarshal index: %w", err)}
	}

	return &index, nil
}

// SaveIndex writes the snapshot index
func (cm *CacheManager) SaveIndex(index *SnapshotIndex) error {
	if err := cm.EnsureCacheDir(); err != nil {
		return err
	}

	indexPath := cm.GetIndexPath()
	data, err := yaml.Marshal(index)
	if err != nil {
		return &CacheError{Op: "save", Path: indexPath, Err: fmt.Errorf("failed to marshal index: %w", err)}
	}

	if err := os.WriteFile(indexPath, data, 0644); err != nil {
		return &CacheError{Op: "save", Path: indexPath, Err: err}
	}
	return nil
}

// SaveSnapshot writes a single snapshot file
func (cm *CacheManager) SaveSnapshot(snap *Snapshot) error {
	if err := cm.EnsureCacheDir(); err != nil {
		return err
	}

	path := cm.GetSnapshotPath(snap.Stream)
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return &CacheError{Op: "save", Path: path, Err: fmt.Errorf("failed to marshal snapshot: %w", err)}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return &CacheError{Op: "save", Path: path, Err: err}
	}
	return nil
}

// LoadSnapshot loads the cached snapshot of one stream
func (cm *CacheManager) LoadSnapshot(stream string) (*Snapshot, error) {
	path := cm.GetSnapshotPath(stream)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CacheError{Op: "load", Path: path, Err: err}
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &CacheError{Op: "load", Path: path, Err: fmt.Errorf("failed to unmarshal snapshot: %w", err)}
	}

	return &snap, nil
}

// LoadAllSnapshots loads every snapshot listed in the index, in index order
func (cm *CacheManager) LoadAllSnapshots() ([]*Snapshot, error) {
	index, err := cm.LoadIndex()
	if err != nil {
		return nil, err
	}

	snaps := make([]*Snapshot, 0, len(index.Snapshots))
	for _, entry := range index.Snapshots {
		snap, err := cm.LoadSnapshot(entry.Stream)
		if err != nil {
			LogWarn("Failed to load cached snapshot %s: %v", entry.Stream, err)
			continue
		}
		snaps = append(snaps, snap)
	}

	return snaps, nil
}

// SaveSnapshots replaces the cache with snaps, built from the chunk store at dbPath
func (cm *CacheManager) SaveSnapshots(snaps []*Snapshot, dbPath string) error {
	if err := cm.EnsureCacheDir(); err != nil {
		return err
	}

	dbInfo, err := os.Stat(dbPath)
	if err != nil {
		return &CacheError{Op: "save", Path: dbPath, Err: err}
	}

	now := time.Now()
	index := SnapshotIndex{
		Snapshots: make([]SnapshotIndexEntry, 0, len(snaps)),
		Metadata: CacheMetadata{
			DatabasePath:    dbPath,
			DatabaseModTime: dbInfo.ModTime(),
			CacheVersion:    cacheVersion,
			EngineKey:       cm.engineKey,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
	}

	for _, snap := range snaps {
		if err := cm.SaveSnapshot(snap); err != nil {
			LogWarn("Failed to save snapshot %s: %v", snap.Stream, err)
			continue
		}

		index.Snapshots = append(index.Snapshots, SnapshotIndexEntry{
			Stream: snap.Stream,
			File:   filepath.Base(cm.GetSnapshotPath(snap.Stream)),
			Chunks: snap.Chunks,
			Nodes:  len(snap.Nodes),
		})
	}

	return cm.SaveIndex(&index)
}

// ClearCache removes every snapshot listed in the index and the index itself
func (cm *CacheManager) ClearCache() error {
	indexPath := cm.GetIndexPath()

	index, err := cm.LoadIndex()
	if err == nil {
		for _, entry := range index.Snapshots {
			_ = os.Remove(cm.GetSnapshotPath(entry.Stream))
		}
	}

	if err := os.Remove(indexPath); err != nil && !os.IsNotExist(err) {
		return &CacheError{Op: "clear", Path: indexPath, Err: err}
	}

	return nil
}
