package job

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// UploadCleanupJob removes leftover temp upload directories. Uploads are
// deleted at the end of the request; this only catches what a crash left
// behind.
type UploadCleanupJob struct {
	tempDir string
	maxAge  time.Duration
}

func NewUploadCleanupJob(tempDir string, maxAge time.Duration) *UploadCleanupJob {
	return &UploadCleanupJob{tempDir: tempDir, maxAge: maxAge}
}

func (j *UploadCleanupJob) Name() string {
	return "upload_cleanup"
}

func (j *UploadCleanupJob) Run(ctx context.Context) error {
	maxAge := j.maxAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	cutoff := time.Now().Add(-maxAge)
	entries, err := os.ReadDir(j.tempDir)
	if err != nil {
		return err
	}
	logger := logutil.GetLogger(ctx)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "sara-upload-") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(j.tempDir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			logger.Warn("failed to remove stale upload dir", zap.String("path", path), zap.Error(err))
			continue
		}
		logger.Info("removed stale upload dir", zap.String("path", path))
	}
	return nil
}
