package platform

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/smartnet-labs/netscope/internal/logger"
	"github.com/smartnet-labs/netscope/internal/models"
)

// CatalogFile is the JSON structure of the app catalog on disk. Keys of Apps
// are decimal UIDs; shared UIDs list several packages.
type CatalogFile struct {
	Version int                             `json:"version,omitempty"`
	Apps    map[string][]models.PackageInfo `json:"apps"`
}

// CatalogEvent reports a catalog lifecycle change.
type CatalogEvent struct {
	Type  CatalogEventType
	Error error
}

// CatalogEventType defines the type of catalog event.
type CatalogEventType int

const (
	CatalogLoaded CatalogEventType = iota
	CatalogChanged
	CatalogError
)

// Catalog maps UIDs to installed packages, hot-reloading its backing JSON
// file on external change.
type Catalog struct {
	mu            sync.RWMutex
	apps          map[int][]models.PackageInfo
	filePath      string
	watcher       *fsnotify.Watcher
	eventChan     chan CatalogEvent
	stopChan      chan struct{}
	debounceTimer *time.Timer
}

// NewCatalog loads the catalog at filePath and starts watching it. A missing
// file is created empty.
func NewCatalog(filePath string) (*Catalog, error) {
	c := &Catalog{
		apps:      make(map[int][]models.PackageInfo),
		filePath:  filePath,
		eventChan: make(chan CatalogEvent, 100),
		stopChan:  make(chan struct{}),
	}

	// Ensure directory exists
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}

	if err := c.load(); err != nil {
		// If file doesn't exist, create an empty catalog file
		if os.IsNotExist(err) {
			if err := c.save(); err != nil {
				return nil, fmt.Errorf("failed to create catalog file: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
	}

	if err := c.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	c.sendEvent(CatalogEvent{Type: CatalogLoaded})

	return c, nil
}

// Events returns the event channel for subscribing to catalog changes.
func (c *Catalog) Events() <-chan CatalogEvent {
	return c.eventChan
}

// Resolve returns the packages installed under uid. Unknown UIDs resolve to
// an empty slice, not an error.
func (c *Catalog) Resolve(uid int) ([]models.PackageInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pkgs := c.apps[uid]
	out := make([]models.PackageInfo, len(pkgs))
	copy(out, pkgs)
	return out, nil
}

// UserApps returns every installed user application in the catalog, for the
// app picker. System packages are excluded.
func (c *Catalog) UserApps() []models.PackageInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []models.PackageInfo
	for _, pkgs := range c.apps {
		for _, p := range pkgs {
			if IsInstalledUserApp(p) {
				out = append(out, p)
			}
		}
	}
	return out
}

// UIDForPackage returns the UID a package is installed under, or false.
func (c *Catalog) UIDForPackage(packageID string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for uid, pkgs := range c.apps {
		for _, p := range pkgs {
			if p.PackageID == packageID {
				return uid, true
			}
		}
	}
	return 0, false
}

// Count returns the number of catalogued UIDs.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.apps)
}

// parseCatalog parses catalog data handling both the versioned object and
// the bare UID map format.
func parseCatalog(data []byte) (map[int][]models.PackageInfo, error) {
	byUID := func(raw map[string][]models.PackageInfo) (map[int][]models.PackageInfo, error) {
		apps := make(map[int][]models.PackageInfo, len(raw))
		for key, pkgs := range raw {
			uid, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("invalid UID key %q: %w", key, err)
			}
			apps[uid] = pkgs
		}
		return apps, nil
	}

	// 1. Versioned catalog object
	var file CatalogFile
	if err := json.Unmarshal(data, &file); err == nil && file.Apps != nil {
		return byUID(file.Apps)
	}

	// 2. Bare UID -> packages map
	var raw map[string][]models.PackageInfo
	if err := json.Unmarshal(data, &raw); err == nil {
		return byUID(raw)
	}

	return nil, fmt.Errorf("failed to parse catalog file: invalid format")
}

// load reads the catalog from the JSON file.
func (c *Catalog) load() error {
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		return err
	}

	apps, err := parseCatalog(data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.apps = apps
	c.mu.Unlock()
	return nil
}

// save writes the catalog to the JSON file atomically.
func (c *Catalog) save() error {
	c.mu.RLock()
	file := CatalogFile{
		Version: 1,
		Apps:    make(map[string][]models.PackageInfo, len(c.apps)),
	}
	for uid, pkgs := range c.apps {
		file.Apps[strconv.Itoa(uid)] = pkgs
	}
	c.mu.RUnlock()

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	// Write to temp file first, then rename
	tmpFile := c.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, c.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// startWatcher starts the file system watcher.
func (c *Catalog) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	c.watcher = watcher

	// Watch the directory (to catch file creation/deletion)
	dir := filepath.Dir(c.filePath)
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go c.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (c *Catalog) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}

			// Only care about our catalog file
			if filepath.Base(event.Name) != filepath.Base(c.filePath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				// Debounce rapid changes
				if c.debounceTimer != nil {
					c.debounceTimer.Stop()
				}
				c.debounceTimer = time.AfterFunc(debounceInterval, func() {
					c.handleFileChange()
				})
			}

		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.sendEvent(CatalogEvent{Type: CatalogError, Error: err})

		case <-c.stopChan:
			return
		}
	}
}

// handleFileChange reloads the catalog after an external change.
func (c *Catalog) handleFileChange() {
	if err := c.load(); err != nil {
		c.sendEvent(CatalogEvent{Type: CatalogError, Error: err})
		return
	}

	c.sendEvent(CatalogEvent{Type: CatalogChanged})
}

// sendEvent sends an event to the event channel non-blocking.
func (c *Catalog) sendEvent(event CatalogEvent) {
	select {
	case c.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-c.eventChan:
		default:
		}
		select {
		case c.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (c *Catalog) Close() error {
	close(c.stopChan)

	if c.debounceTimer != nil {
		c.debounceTimer.Stop()
	}

	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}
