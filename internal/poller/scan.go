package poller

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/specwatch/specwatch/internal/logger"
	"github.com/specwatch/specwatch/internal/metrics"
	"github.com/specwatch/specwatch/internal/scanner"
	"github.com/specwatch/specwatch/internal/storage"
	"github.com/specwatch/specwatch/pkg/types"
)

// scanHardThreshold is the failure count from which backoff gives up and
// the nominal scan interval applies again.
const scanHardThreshold = 5

// Cloner materializes a repository working tree for scanning.
type Cloner interface {
	// Clone returns the tree root, the commit it is at, and a cleanup
	// function. Local directory URLs are used in place without cloning.
	Clone(ctx context.Context, url string) (dir, commit string, cleanup func(), err error)
}

// GitCloner shallow-clones over the git CLI.
type GitCloner struct{}

// Clone materializes the repository at url.
func (GitCloner) Clone(ctx context.Context, url string) (string, string, func(), error) {
	if info, err := os.Stat(url); err == nil && info.IsDir() {
		return url, headCommit(ctx, url), func() {}, nil
	}

	dir, err := os.MkdirTemp("", "specwatch-scan-*")
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to create scan directory: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", url, dir)
	if out, err := cmd.CombinedOutput(); err != nil {
		cleanup()
		return "", "", nil, fmt.Errorf("git clone %s failed: %w: %s", url, err, strings.TrimSpace(string(out)))
	}

	return dir, headCommit(ctx, dir), cleanup, nil
}

func headCommit(ctx context.Context, dir string) string {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// ScanService schedules and runs repository scans. Scan state carries the
// schedule; a failure streak backs retries off exponentially until the
// hard threshold, after which the nominal interval applies again.
type ScanService struct {
	repos   storage.RepositoryStore
	usages  storage.UsageStore
	walker  *scanner.Walker
	cloner  Cloner
	metrics *metrics.Metrics
	log     logger.Logger

	// defaultIntervalHours applies to repositories without an interval.
	defaultIntervalHours int

	now func() time.Time
}

// NewScanService creates the scan scheduler.
func NewScanService(
	repos storage.RepositoryStore,
	usages storage.UsageStore,
	walker *scanner.Walker,
	cloner Cloner,
	defaultIntervalHours int,
	m *metrics.Metrics,
	log logger.Logger,
) *ScanService {
	if cloner == nil {
		cloner = GitCloner{}
	}
	if defaultIntervalHours <= 0 {
		defaultIntervalHours = 24
	}
	return &ScanService{
		repos:                repos,
		usages:               usages,
		walker:               walker,
		cloner:               cloner,
		metrics:              m,
		log:                  log,
		defaultIntervalHours: defaultIntervalHours,
		now:                  time.Now,
	}
}

// ScanDue scans every repository whose next scan time has arrived.
// Repositories mid-scan are never picked up again until they finish.
func (s *ScanService) ScanDue(ctx context.Context) error {
	repos, err := s.repos.ListRepositories()
	if err != nil {
		return fmt.Errorf("failed to list repositories: %w", err)
	}

	now := s.now().UTC()
	for i := range repos {
		repo := &repos[i]
		if repo.State.Status == types.ScanStatusScanning {
			continue
		}
		if !repo.State.NextScanAt.IsZero() && repo.State.NextScanAt.After(now) {
			continue
		}
		if err := s.ScanRepository(ctx, repo); err != nil {
			s.log.WithField("repository", repo.Name).Error("repository scan failed", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// ScanRepository runs one scan: clone, walk, replace the usage generation,
// and reschedule. The scanning status is persisted before work starts so a
// concurrent scheduler pass skips this repository.
func (s *ScanService) ScanRepository(ctx context.Context, repo *types.Repository) error {
	if repo.State.Status == types.ScanStatusScanning {
		return fmt.Errorf("repository %s is already being scanned", repo.ID)
	}

	repo.State.Status = types.ScanStatusScanning
	if err := s.repos.SaveRepository(repo); err != nil {
		return fmt.Errorf("failed to mark repository scanning: %w", err)
	}

	result, err := s.runScan(ctx, repo)
	if err != nil {
		s.recordScanFailure(repo, err)
		return err
	}

	if err := s.usages.ReplaceUsages(repo.ID, result.Usages); err != nil {
		s.recordScanFailure(repo, fmt.Errorf("failed to store usages: %w", err))
		return err
	}

	now := s.now().UTC()
	repo.State.Status = types.ScanStatusCompleted
	repo.State.LastScannedAt = now
	repo.State.NextScanAt = now.Add(s.nominalInterval(repo))
	repo.State.ConsecutiveScanFailures = 0
	repo.State.LastScanError = ""
	repo.State.LastScanCommit = result.Commit
	repo.State.TotalFilesScanned = result.FilesScanned
	repo.State.TotalEndpointsFound = result.EndpointsFound
	if err := s.repos.SaveRepository(repo); err != nil {
		return fmt.Errorf("failed to persist scan state: %w", err)
	}

	s.metrics.RecordScan("completed", result.EndpointsFound)
	s.log.WithFields(map[string]interface{}{
		"repository": repo.Name,
		"files":      result.FilesScanned,
		"endpoints":  result.EndpointsFound,
		"commit":     result.Commit,
	}).Info("repository scan complete")
	return nil
}

func (s *ScanService) runScan(ctx context.Context, repo *types.Repository) (*types.ScanResult, error) {
	dir, commit, cleanup, err := s.cloner.Clone(ctx, repo.URL)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	result, err := s.walker.ScanTree(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("scan of %s failed: %w", repo.Name, err)
	}

	result.RepositoryID = repo.ID
	result.Commit = commit
	for i := range result.Usages {
		result.Usages[i].RepositoryName = repo.Name
		result.Usages[i].RepositoryURL = repo.URL
		result.Usages[i].Commit = commit
	}
	return result, nil
}

// recordScanFailure advances the failure streak and schedules the retry:
// 1h, 2h, 4h, 8h for the first four failures, then the nominal interval.
func (s *ScanService) recordScanFailure(repo *types.Repository, cause error) {
	now := s.now().UTC()
	repo.State.Status = types.ScanStatusFailed
	repo.State.ConsecutiveScanFailures++
	repo.State.LastScanError = cause.Error()
	repo.State.LastScannedAt = now
	repo.State.NextScanAt = now.Add(s.retryDelay(repo))

	if err := s.repos.SaveRepository(repo); err != nil {
		s.log.WithField("repository", repo.Name).Error("failed to persist scan state", err)
	}
	s.metrics.RecordScan("failed", 0)
}

func (s *ScanService) retryDelay(repo *types.Repository) time.Duration {
	failures := repo.State.ConsecutiveScanFailures
	if failures >= scanHardThreshold {
		return s.nominalInterval(repo)
	}
	return time.Duration(1<<(failures-1)) * time.Hour
}

func (s *ScanService) nominalInterval(repo *types.Repository) time.Duration {
	hours := repo.State.ScanIntervalHours
	if hours <= 0 {
		hours = s.defaultIntervalHours
	}
	return time.Duration(hours) * time.Hour
}
