package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/repplus/paramscope/internal/snapshot"
)

const (
	StoreFileName = "store.json"
	LiveFileName  = "live.json" // Latest snapshot, shared with the native host
)

// ErrScanNotFound is returned when a scan reference matches nothing.
var ErrScanNotFound = errors.New("scan not found")

// GetStorePath returns the path to the store directory following XDG spec
// Uses ~/.local/share/paramscope/
func GetStorePath() (string, error) {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "paramscope"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "paramscope"), nil
}

var (
	instance *Store
	once     sync.Once
	mu       sync.RWMutex
)

// GetLiveFilePath returns the path of the live snapshot file.
// PARAMSCOPE_LIVE_PATH overrides the default XDG location.
func GetLiveFilePath() (string, error) {
	if override := os.Getenv("PARAMSCOPE_LIVE_PATH"); override != "" {
		return expandHomePath(override)
	}
	storePath, err := GetStorePath()
	if err != nil {
		return "", err
	}
	return filepath.Join(storePath, LiveFileName), nil
}

func expandHomePath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// GetStoreFilePath returns the full path to the store file
func GetStoreFilePath() (string, error) {
	storePath, err := GetStorePath()
	if err != nil {
		return "", err
	}
	return filepath.Join(storePath, StoreFileName), nil
}

// writeFileAtomic writes data next to path and renames it into place so
// readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// WriteLive replaces the live snapshot file with doc.
func WriteLive(doc *snapshot.Document) (string, error) {
	livePath, err := GetLiveFilePath()
	if err != nil {
		return "", err
	}
	data, err := snapshot.Encode(doc)
	if err != nil {
		return "", err
	}
	if err := writeFileAtomic(livePath, data); err != nil {
		return "", fmt.Errorf("failed to write live snapshot: %w", err)
	}
	return livePath, nil
}

// ReadLive loads the live snapshot file.
func ReadLive() (*snapshot.Document, error) {
	livePath, err := GetLiveFilePath()
	if err != nil {
		return nil, err
	}
	return ReadSnapshotFile(livePath)
}

// ReadSnapshotFile loads an exported snapshot from path.
func ReadSnapshotFile(path string) (*snapshot.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := snapshot.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// ClearLive removes the live snapshot file. A missing file is not an error.
func ClearLive() error {
	livePath, err := GetLiveFilePath()
	if err != nil {
		return err
	}
	if err := os.Remove(livePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove live snapshot: %w", err)
	}
	return nil
}

// NewStore creates a new store
func NewStore() *Store {
	return &Store{
		Scans:         []Scan{},
		IgnoredParams: make(map[string]bool),
	}
}

// Get returns the singleton store instance
func Get() (*Store, error) {
	var loadErr error
	once.Do(func() {
		instance, loadErr = Load()
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return instance, nil
}

// Load loads the store from its default location
func Load() (*Store, error) {
	filePath, err := GetStoreFilePath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filePath)
}

// LoadFrom loads the store from filePath. A missing file yields an empty
// store that saves to filePath.
func LoadFrom(filePath string) (*Store, error) {
	store := NewStore()
	store.path = filePath

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("failed to read store: %w", err)
	}

	if err := sonic.Unmarshal(data, store); err != nil {
		return nil, fmt.Errorf("failed to parse store: %w", err)
	}
	if store.Scans == nil {
		store.Scans = []Scan{}
	}
	if store.IgnoredParams == nil {
		store.IgnoredParams = make(map[string]bool)
	}
	for i := range store.Scans {
		sc := &store.Scans[i]
		if sc.Snapshot == nil {
			sc.Snapshot = &snapshot.Document{}
		}
		sc.Snapshot.Normalize()
		if sc.Fingerprint == "" {
			sc.Fingerprint = Fingerprint(sc.Snapshot)
		}
	}
	return store, nil
}

// Path returns the file the store saves to.
func (s *Store) Path() string {
	return s.path
}

// Save saves the store to disk
func (s *Store) Save() error {
	mu.Lock()
	defer mu.Unlock()

	filePath := s.path
	if filePath == "" {
		var err error
		if filePath, err = GetStoreFilePath(); err != nil {
			return err
		}
		s.path = filePath
	}

	data, err := sonic.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}
	if err := writeFileAtomic(filePath, data); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	return nil
}

// ClearAll clears scans and the ignore list
func (s *Store) ClearAll() (scans, ignored int) {
	mu.Lock()
	defer mu.Unlock()
	scans, ignored = len(s.Scans), len(s.IgnoredParams)
	s.Scans = []Scan{}
	s.IgnoredParams = make(map[string]bool)
	return scans, ignored
}

// GenerateScanID creates a sortable scan ID
func GenerateScanID(note string) string {
	return generateScanID(time.Now(), note)
}

func generateScanID(now time.Time, note string) string {
	base := now.Format("20060102-150405")
	if note == "" {
		return base
	}
	// Sanitize note: lowercase, replace spaces with hyphens, max 30 chars
	sanitized := strings.ToLower(note)
	sanitized = strings.ReplaceAll(sanitized, " ", "-")
	var result strings.Builder
	for _, r := range sanitized {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}
	sanitized = result.String()
	if len(sanitized) > 30 {
		sanitized = sanitized[:30]
	}
	sanitized = strings.TrimRight(sanitized, "-")
	if sanitized == "" {
		return base
	}
	return base + "-" + sanitized
}

// AddScan archives doc under id. A snapshot whose fingerprint is already
// stored is not added again; the existing scan is returned with added=false.
func (s *Store) AddScan(id, note string, doc *snapshot.Document) (scan *Scan, added bool) {
	mu.Lock()
	defer mu.Unlock()

	doc.Normalize()
	fp := Fingerprint(doc)
	if existing := s.findFingerprint(fp); existing != nil {
		return existing, false
	}

	// Same-second saves would collide on the generated ID.
	uniqueID := id
	for n := 2; s.hasID(uniqueID); n++ {
		uniqueID = fmt.Sprintf("%s-%d", id, n)
	}

	s.Scans = append(s.Scans, Scan{
		ID:          uniqueID,
		Timestamp:   time.Now().UnixMilli(),
		Note:        note,
		Fingerprint: fp,
		Snapshot:    doc,
	})
	return &s.Scans[len(s.Scans)-1], true
}

func (s *Store) hasID(id string) bool {
	for i := range s.Scans {
		if s.Scans[i].ID == id {
			return true
		}
	}
	return false
}

// GetScan returns a scan by reference: "latest" or "last", an exact ID, or
// an ID prefix (the newest match wins).
func (s *Store) GetScan(ref string) (*Scan, error) {
	mu.RLock()
	defer mu.RUnlock()

	ref = strings.TrimSpace(ref)
	if len(s.Scans) == 0 || ref == "" {
		return nil, fmt.Errorf("%w: %q", ErrScanNotFound, ref)
	}
	if ref == "latest" || ref == "last" {
		return &s.Scans[len(s.Scans)-1], nil
	}
	for i := range s.Scans {
		if s.Scans[i].ID == ref {
			return &s.Scans[i], nil
		}
	}
	for i := len(s.Scans) - 1; i >= 0; i-- {
		if strings.HasPrefix(s.Scans[i].ID, ref) {
			return &s.Scans[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrScanNotFound, ref)
}

// ListScans returns all scans (newest first)
func (s *Store) ListScans() []Scan {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Scan, len(s.Scans))
	copy(result, s.Scans)
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result
}

// Count returns the number of saved scans
func (s *Store) Count() int {
	mu.RLock()
	defer mu.RUnlock()
	return len(s.Scans)
}

// IgnoreParams adds parameter names to the ignore list
func (s *Store) IgnoreParams(names ...string) int {
	mu.Lock()
	defer mu.Unlock()
	count := 0
	for _, name := range names {
		if name != "" && !s.IgnoredParams[name] {
			s.IgnoredParams[name] = true
			count++
		}
	}
	return count
}

// UnignoreParams removes parameter names from the ignore list
func (s *Store) UnignoreParams(names ...string) int {
	mu.Lock()
	defer mu.Unlock()
	count := 0
	for _, name := range names {
		if s.IgnoredParams[name] {
			delete(s.IgnoredParams, name)
			count++
		}
	}
	return count
}

// ClearIgnoreList clears the ignore list
func (s *Store) ClearIgnoreList() int {
	mu.Lock()
	defer mu.Unlock()
	n := len(s.IgnoredParams)
	s.IgnoredParams = make(map[string]bool)
	return n
}

// IsIgnoredParam checks if a parameter name is in the ignore list
func (s *Store) IsIgnoredParam(name string) bool {
	mu.RLock()
	defer mu.RUnlock()
	return s.IgnoredParams[name]
}

// GetIgnoredParams returns all ignored parameter names, sorted
func (s *Store) GetIgnoredParams() []string {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]string, 0, len(s.IgnoredParams))
	for name := range s.IgnoredParams {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}
