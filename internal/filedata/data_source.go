// Package filedata implements the offline data source: a local JSON file in the same
// shape as a download_config_specs response, watched for changes, whose contents feed
// the spec cache instead of the control service.
package filedata

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/gatesync/gatesync/internal/store"
)

const defaultRetryInterval = time.Second

func errCannotOpenDataFile(path string, err error) error {
	return fmt.Errorf("unable to read data file %q: %w", path, err)
}

func errBadDataFile(path string, err error) error {
	return fmt.Errorf("data file %q is not a valid spec document: %w", path, err)
}

// UpdateHandler receives the raw document bytes whenever the data file is loaded. The
// coordinator implements this interface.
type UpdateHandler interface {
	ApplySpecData(data []byte)
}

// DataSource watches a local spec document file and pushes its contents to the handler
// on every change.
//
// The initial load happens synchronously in NewDataSource and is fatal on failure, the
// same contract as the initial network fetch. Later reload failures are retried on a
// short timer; the last successfully loaded data stays in effect until a reload
// succeeds.
type DataSource struct {
	filePath      string
	handler       UpdateHandler
	retryInterval time.Duration
	watcher       *fsnotify.Watcher
	loggers       ldlog.Loggers
	closeCh       chan struct{}
	closeOnce     sync.Once
}

// NewDataSource creates the DataSource, performs the initial load, and starts watching
// the file.
func NewDataSource(
	filePath string,
	handler UpdateHandler,
	retryInterval time.Duration,
	loggers ldlog.Loggers,
) (*DataSource, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, errCannotOpenDataFile(filePath, err)
	}

	ds := &DataSource{
		filePath:      filePath,
		handler:       handler,
		retryInterval: retryInterval,
		loggers:       loggers,
		closeCh:       make(chan struct{}),
	}
	if ds.retryInterval == 0 {
		ds.retryInterval = defaultRetryInterval
	}
	ds.loggers.SetPrefix("FileDataSource:")

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errCannotOpenDataFile(filePath, err)
	}
	if _, err := store.ParseSpecDocument(data); err != nil {
		return nil, errBadDataFile(filePath, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errCannotOpenDataFile(filePath, err) // COVERAGE: can't cause this condition in unit tests
	}
	if err := watcher.Add(filePath); err != nil {
		_ = watcher.Close()
		return nil, errCannotOpenDataFile(filePath, err) // COVERAGE: can't cause this condition in unit tests
	}
	ds.watcher = watcher

	ds.handler.ApplySpecData(data)
	go ds.run(fileInfo)

	return ds, nil
}

// Close shuts down the DataSource.
func (ds *DataSource) Close() {
	ds.closeOnce.Do(func() {
		close(ds.closeCh)
		_ = ds.watcher.Close()
	})
}

func (ds *DataSource) run(originalFileInfo os.FileInfo) {
	lastFileInfo := originalFileInfo
	retryCh := make(chan struct{}, 1)

	scheduleRetry := func() {
		time.AfterFunc(ds.retryInterval, func() {
			// Non-blocking write because we never need to queue more than one retry
			select {
			case retryCh <- struct{}{}:
			default:
			}
		})
	}

	maybeReload := func() {
		curFileInfo, err := os.Stat(ds.filePath)
		if err != nil {
			ds.loggers.Warnf("Unable to stat data file (%s); will retry", err)
			scheduleRetry()
			return
		}
		if !fileMayHaveChanged(curFileInfo, lastFileInfo) {
			return
		}
		data, err := os.ReadFile(ds.filePath)
		if err != nil {
			// Some editors replace the file non-atomically, so a read can catch it
			// mid-write; keep the previous data and retry shortly.
			ds.loggers.Warnf("Unable to reread data file (%s); will retry", err)
			scheduleRetry()
			return
		}
		lastFileInfo = curFileInfo
		ds.loggers.Infof("Reloaded data file %q", ds.filePath)
		ds.handler.ApplySpecData(data)
	}

	for {
		select {
		case event, ok := <-ds.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				// A rename/remove usually means an atomic replace; re-add the watch so
				// we keep following the path rather than the old inode.
				if event.Op&(fsnotify.Rename|fsnotify.Remove) != 0 {
					_ = ds.watcher.Add(ds.filePath)
				}
				maybeReload()
			}
		case err, ok := <-ds.watcher.Errors:
			if !ok {
				return
			}
			ds.loggers.Warnf("File watcher error: %s", err) // COVERAGE: can't cause this condition in unit tests
		case <-retryCh:
			maybeReload()
		case <-ds.closeCh:
			return
		}
	}
}

func fileMayHaveChanged(newFileInfo, oldFileInfo os.FileInfo) bool {
	return !newFileInfo.ModTime().Equal(oldFileInfo.ModTime()) || newFileInfo.Size() != oldFileInfo.Size()
}
