package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/specwatch/specwatch/pkg/types"
)

// LocalStore implements Store on the local filesystem, one pretty-printed
// JSON file per record.
type LocalStore struct {
	baseDir  string
	specs    string
	versions string
	repos    string
	usages   string
	impacts  string
	alerts   string

	versionLocks   map[string]*sync.Mutex // per-spec, serializes version writes
	versionLocksMu sync.Mutex
}

// NewLocalStore creates a local store rooted at config.BaseDir, defaulting
// to ~/.specwatch.
func NewLocalStore(config Config) (*LocalStore, error) {
	if config.BaseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		config.BaseDir = filepath.Join(homeDir, ".specwatch")
	}

	store := &LocalStore{
		baseDir:      config.BaseDir,
		specs:        filepath.Join(config.BaseDir, "specs"),
		versions:     filepath.Join(config.BaseDir, "versions"),
		repos:        filepath.Join(config.BaseDir, "repositories"),
		usages:       filepath.Join(config.BaseDir, "usages"),
		impacts:      filepath.Join(config.BaseDir, "impacts"),
		alerts:       filepath.Join(config.BaseDir, "alerts"),
		versionLocks: make(map[string]*sync.Mutex),
	}

	dirs := []string{
		store.baseDir,
		store.specs,
		store.versions,
		store.repos,
		store.usages,
		store.impacts,
		store.alerts,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return store, nil
}

// SaveWatchedSpec writes the watched spec and its poll state.
func (s *LocalStore) SaveWatchedSpec(spec *types.WatchedSpec) error {
	if strings.TrimSpace(spec.ID) == "" {
		return fmt.Errorf("watched spec ID is required")
	}
	return saveJSON(filepath.Join(s.specs, sanitizeFilename(spec.ID)+".json"), spec)
}

// LoadWatchedSpec loads one watched spec by ID.
func (s *LocalStore) LoadWatchedSpec(id string) (*types.WatchedSpec, error) {
	var spec types.WatchedSpec
	path := filepath.Join(s.specs, sanitizeFilename(id)+".json")
	if err := loadJSON(path, &spec); err != nil {
		return nil, fmt.Errorf("watched spec not found: %s: %w", id, err)
	}
	return &spec, nil
}

// ListWatchedSpecs returns every watched spec, sorted by ID.
func (s *LocalStore) ListWatchedSpecs() ([]types.WatchedSpec, error) {
	var specs []types.WatchedSpec
	err := eachJSON(s.specs, func(path string) error {
		var spec types.WatchedSpec
		if err := loadJSON(path, &spec); err != nil {
			return nil
		}
		specs = append(specs, spec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].ID < specs[j].ID })
	return specs, nil
}

// DeleteWatchedSpec removes the watched spec record.
func (s *LocalStore) DeleteWatchedSpec(id string) error {
	path := filepath.Join(s.specs, sanitizeFilename(id)+".json")
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete watched spec %s: %w", id, err)
	}
	return nil
}

// SaveVersion writes one version record. Writing a version that already
// exists is an error: version history is append-only.
func (s *LocalStore) SaveVersion(record *types.VersionRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid version record: %w", err)
	}

	lock := s.versionLock(record.SpecID)
	lock.Lock()
	defer lock.Unlock()

	dir := filepath.Join(s.versions, sanitizeFilename(record.SpecID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create version directory: %w", err)
	}

	path := filepath.Join(dir, versionFilename(record.Version))
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("version %d already exists for spec %s", record.Version, record.SpecID)
	}
	return saveJSON(path, record)
}

// LoadVersion loads one version of a spec.
func (s *LocalStore) LoadVersion(specID string, version int) (*types.VersionRecord, error) {
	var record types.VersionRecord
	path := filepath.Join(s.versions, sanitizeFilename(specID), versionFilename(version))
	if err := loadJSON(path, &record); err != nil {
		return nil, fmt.Errorf("version %d not found for spec %s: %w", version, specID, err)
	}
	return &record, nil
}

// LatestVersion returns the highest-numbered version of a spec, or nil
// when no version exists yet.
func (s *LocalStore) LatestVersion(specID string) (*types.VersionRecord, error) {
	versions, err := s.ListVersions(specID)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, nil
	}
	return &versions[len(versions)-1], nil
}

// ListVersions returns all versions of a spec in ascending version order.
func (s *LocalStore) ListVersions(specID string) ([]types.VersionRecord, error) {
	dir := filepath.Join(s.versions, sanitizeFilename(specID))
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var records []types.VersionRecord
	err := eachJSON(dir, func(path string) error {
		var record types.VersionRecord
		if err := loadJSON(path, &record); err != nil {
			return nil
		}
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Version < records[j].Version })
	return records, nil
}

// AttachDiff adds a computed diff to a stored version record.
func (s *LocalStore) AttachDiff(specID string, version int, diff types.DiffResult) error {
	lock := s.versionLock(specID)
	lock.Lock()
	defer lock.Unlock()

	record, err := s.LoadVersion(specID, version)
	if err != nil {
		return err
	}
	record.Diff = &diff
	path := filepath.Join(s.versions, sanitizeFilename(specID), versionFilename(version))
	return saveJSON(path, record)
}

// AttachSummary adds a generated summary to a stored version record.
func (s *LocalStore) AttachSummary(specID string, version int, summary string) error {
	lock := s.versionLock(specID)
	lock.Lock()
	defer lock.Unlock()

	record, err := s.LoadVersion(specID, version)
	if err != nil {
		return err
	}
	record.Summary = summary
	path := filepath.Join(s.versions, sanitizeFilename(specID), versionFilename(version))
	return saveJSON(path, record)
}

// SaveRepository writes the repository and its scan state.
func (s *LocalStore) SaveRepository(repo *types.Repository) error {
	if strings.TrimSpace(repo.ID) == "" {
		return fmt.Errorf("repository ID is required")
	}
	return saveJSON(filepath.Join(s.repos, sanitizeFilename(repo.ID)+".json"), repo)
}

// LoadRepository loads one repository by ID.
func (s *LocalStore) LoadRepository(id string) (*types.Repository, error) {
	var repo types.Repository
	path := filepath.Join(s.repos, sanitizeFilename(id)+".json")
	if err := loadJSON(path, &repo); err != nil {
		return nil, fmt.Errorf("repository not found: %s: %w", id, err)
	}
	return &repo, nil
}

// ListRepositories returns every repository, sorted by ID.
func (s *LocalStore) ListRepositories() ([]types.Repository, error) {
	var repos []types.Repository
	err := eachJSON(s.repos, func(path string) error {
		var repo types.Repository
		if err := loadJSON(path, &repo); err != nil {
			return nil
		}
		repos = append(repos, repo)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(repos, func(i, j int) bool { return repos[i].ID < repos[j].ID })
	return repos, nil
}

// DeleteRepository removes the repository record and its usage generation.
func (s *LocalStore) DeleteRepository(id string) error {
	path := filepath.Join(s.repos, sanitizeFilename(id)+".json")
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete repository %s: %w", id, err)
	}
	usagePath := filepath.Join(s.usages, sanitizeFilename(id)+".json")
	if err := os.Remove(usagePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete usages for repository %s: %w", id, err)
	}
	return nil
}

// ReplaceUsages atomically swaps in the new usage generation for a
// repository. Stale matches from the previous scan never survive.
func (s *LocalStore) ReplaceUsages(repositoryID string, usages []types.EndpointUsage) error {
	if strings.TrimSpace(repositoryID) == "" {
		return fmt.Errorf("repository ID is required")
	}
	if usages == nil {
		usages = []types.EndpointUsage{}
	}

	path := filepath.Join(s.usages, sanitizeFilename(repositoryID)+".json")
	tmp := path + ".tmp"
	if err := saveJSON(tmp, usages); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace usages for %s: %w", repositoryID, err)
	}
	return nil
}

// ListUsages returns the current usage generation for one repository.
func (s *LocalStore) ListUsages(repositoryID string) ([]types.EndpointUsage, error) {
	path := filepath.Join(s.usages, sanitizeFilename(repositoryID)+".json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	var usages []types.EndpointUsage
	if err := loadJSON(path, &usages); err != nil {
		return nil, fmt.Errorf("failed to load usages for %s: %w", repositoryID, err)
	}
	return usages, nil
}

// ListAllUsages returns the usage corpus across every repository.
func (s *LocalStore) ListAllUsages() ([]types.EndpointUsage, error) {
	var all []types.EndpointUsage
	err := eachJSON(s.usages, func(path string) error {
		var usages []types.EndpointUsage
		if err := loadJSON(path, &usages); err != nil {
			return nil
		}
		all = append(all, usages...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// SaveImpact writes one impact result.
func (s *LocalStore) SaveImpact(result *types.ImpactResult) error {
	if strings.TrimSpace(result.ID) == "" {
		return fmt.Errorf("impact result ID is required")
	}
	return saveJSON(filepath.Join(s.impacts, sanitizeFilename(result.ID)+".json"), result)
}

// LoadImpact loads one impact result by ID.
func (s *LocalStore) LoadImpact(id string) (*types.ImpactResult, error) {
	var result types.ImpactResult
	path := filepath.Join(s.impacts, sanitizeFilename(id)+".json")
	if err := loadJSON(path, &result); err != nil {
		return nil, fmt.Errorf("impact result not found: %s: %w", id, err)
	}
	return &result, nil
}

// ListImpacts returns the impact history for one spec, oldest first.
func (s *LocalStore) ListImpacts(specID string) ([]types.ImpactResult, error) {
	var results []types.ImpactResult
	err := eachJSON(s.impacts, func(path string) error {
		var result types.ImpactResult
		if err := loadJSON(path, &result); err != nil {
			return nil
		}
		if result.SpecID == specID {
			results = append(results, result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].AnalyzedAt.Before(results[j].AnalyzedAt)
	})
	return results, nil
}

// SaveAlert appends one alert record to history.
func (s *LocalStore) SaveAlert(record *types.AlertRecord) error {
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("alert ID is required")
	}
	return saveJSON(filepath.Join(s.alerts, sanitizeFilename(record.ID)+".json"), record)
}

// ListAlerts returns alert history for one spec, oldest first.
func (s *LocalStore) ListAlerts(specID string) ([]types.AlertRecord, error) {
	var records []types.AlertRecord
	err := eachJSON(s.alerts, func(path string) error {
		var record types.AlertRecord
		if err := loadJSON(path, &record); err != nil {
			return nil
		}
		if record.SpecID == specID {
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].SentAt.Before(records[j].SentAt)
	})
	return records, nil
}

func (s *LocalStore) versionLock(specID string) *sync.Mutex {
	s.versionLocksMu.Lock()
	defer s.versionLocksMu.Unlock()
	if lock, ok := s.versionLocks[specID]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	s.versionLocks[specID] = lock
	return lock
}

func versionFilename(version int) string {
	return fmt.Sprintf("v%06d.json", version)
}

func saveJSON(path string, data interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func loadJSON(path string, target interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(target); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
	return nil
}

// eachJSON calls fn for every .json file directly under dir.
func eachJSON(dir string, fn func(path string) error) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		if err := fn(filepath.Join(dir, file.Name())); err != nil {
			return err
		}
	}
	return nil
}

// sanitizeFilename replaces characters that are unsafe in filenames.
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", " "}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "-")
	}
	return result
}
