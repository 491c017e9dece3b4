package backup

import (
	"context"
	"fmt"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"daylog/internal/storage"
)

// Worker periodically uploads a snapshot of the database file to object
// storage and prunes snapshots beyond the retention count.
type Worker interface {
	Start(ctx context.Context)
	Shutdown()
}

type Config struct {
	DatabasePath string
	Bucket       string
	KeyPrefix    string
	Interval     time.Duration
	Keep         int
	Logger       *logrus.Logger
}

type worker struct {
	cfg     Config
	storage storage.Service

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewWorker(cfg Config, store storage.Service) Worker {
	if cfg.Keep <= 0 {
		cfg.Keep = 14
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &worker{
		cfg:     cfg,
		storage: store,
	}
}

func (w *worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(w.cfg.Interval)
		defer ticker.Stop()

		w.cfg.Logger.Infof("backup worker started, interval %s, bucket %s", w.cfg.Interval, w.cfg.Bucket)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := w.runOnce(ctx); err != nil && ctx.Err() == nil {
					w.cfg.Logger.WithError(err).Warn("backup snapshot failed")
				}
			}
		}
	}()
}

func (w *worker) Shutdown() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.cfg.Logger.Info("backup worker stopped")
}

func (w *worker) runOnce(ctx context.Context) error {
	key := path.Join(w.cfg.KeyPrefix, fmt.Sprintf("daylog-%s.db", time.Now().UTC().Format("20060102T150405")))

	location, err := w.storage.UploadFile(ctx, w.cfg.DatabasePath, w.cfg.Bucket, key)
	if err != nil {
		return fmt.Errorf("upload snapshot: %w", err)
	}
	w.cfg.Logger.Infof("uploaded snapshot to %s", location)

	return w.prune(ctx)
}

// prune deletes the oldest snapshots beyond the retention count. Keys
// embed a sortable timestamp, so lexical order is chronological.
func (w *worker) prune(ctx context.Context) error {
	objects, err := w.storage.ListObjects(ctx, w.cfg.Bucket, w.cfg.KeyPrefix)
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	if len(objects) <= w.cfg.Keep {
		return nil
	}

	keys := make([]string, len(objects))
	for i := range objects {
		keys[i] = objects[i].Key
	}
	sort.Strings(keys)

	stale := keys[:len(keys)-w.cfg.Keep]
	if err := w.storage.DeleteObjects(ctx, w.cfg.Bucket, stale); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	w.cfg.Logger.Infof("pruned %d stale snapshots", len(stale))
	return nil
}
