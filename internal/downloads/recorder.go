// Package downloads records catalog downloads in the ledger, maintains the
// per-automation counter and hands the file to the user.
package downloads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agenthands/automationvault/internal/core/common"
	"github.com/agenthands/automationvault/internal/core/model"
	"github.com/agenthands/automationvault/internal/metrics"
	"github.com/agenthands/automationvault/internal/store"
)

const SuccessNotice = "Automation downloaded successfully."

var (
	ErrUnauthenticated   = fmt.Errorf("sign in to download automations: %w", errors.Join(common.ErrUnauthenticated, common.ErrPrecondition))
	ErrAlreadyDownloaded = fmt.Errorf("you have already downloaded this automation: %w", common.ErrConflict)
	ErrNotFound          = fmt.Errorf("automation %w", common.ErrNotFound)
)

type Result struct {
	Download   *model.Download   `json:"download"`
	Automation *model.Automation `json:"-"`
	File       *File             `json:"file,omitempty"`
	FileError  string            `json:"file_error,omitempty"`
	Notice     string            `json:"notice"`
}

type Recorder struct {
	catalog store.CatalogStore
	ledger  store.DownloadLedger
	files   FileMaterializer
	history *History
	log     *zap.Logger
	now     func() time.Time
}

func NewRecorder(catalog store.CatalogStore, ledger store.DownloadLedger, files FileMaterializer, history *History, log *zap.Logger) *Recorder {
	return &Recorder{
		catalog: catalog,
		ledger:  ledger,
		files:   files,
		history: history,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Record writes one ledger row for (userID, automationID), bumps the
// counter and materializes the file. Counter and file failures are logged
// and do not undo the ledger row.
func (r *Recorder) Record(ctx context.Context, userID, automationID string) (*Result, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	a, err := r.catalog.GetAutomation(ctx, automationID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		metrics.DownloadsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to load automation: %w", err)
	}

	d := &model.Download{
		ID:           uuid.NewString(),
		UserID:       userID,
		AutomationID: automationID,
		DownloadDate: r.now(),
	}
	if err := r.ledger.InsertDownload(ctx, d); err != nil {
		if store.IsDuplicate(err) {
			metrics.DownloadsTotal.WithLabelValues("duplicate").Inc()
			return nil, ErrAlreadyDownloaded
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		metrics.DownloadsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to record download: %w", err)
	}
	metrics.DownloadsTotal.WithLabelValues("recorded").Inc()

	if err := r.catalog.IncrementDownloads(ctx, automationID); err != nil {
		r.log.Error("failed to increment download counter",
			zap.String("automation_id", automationID),
			zap.Error(err),
		)
	} else {
		a.Downloads++
	}

	res := &Result{Download: d, Automation: a, Notice: SuccessNotice}

	file, err := r.files.Materialize(ctx, a)
	if err != nil {
		r.log.Error("failed to materialize download file",
			zap.String("automation_id", automationID),
			zap.Error(err),
		)
		res.FileError = "The download was recorded but the file could not be prepared."
	} else {
		res.File = file
	}

	if r.history != nil {
		r.history.Invalidate(ctx, userID)
	}
	return res, nil
}
