package filedata

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

type capturingHandler struct {
	mu      sync.Mutex
	applied [][]byte
	updated chan struct{}
}

func newCapturingHandler() *capturingHandler {
	return &capturingHandler{updated: make(chan struct{}, 10)}
}

func (h *capturingHandler) ApplySpecData(data []byte) {
	h.mu.Lock()
	h.applied = append(h.applied, append([]byte(nil), data...))
	h.mu.Unlock()
	h.updated <- struct{}{}
}

func (h *capturingHandler) latest() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.applied) == 0 {
		return nil
	}
	return h.applied[len(h.applied)-1]
}

func awaitUpdate(t *testing.T, h *capturingHandler) {
	t.Helper()
	select {
	case <-h.updated:
	case <-time.After(time.Second * 5):
		require.FailNow(t, "timed out waiting for file data update")
	}
}

func writeTempFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "specs.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestDataSourceAppliesInitialData(t *testing.T) {
	path := writeTempFile(t, `{"feature_gates": [{"name": "g1"}], "time": 1}`)
	handler := newCapturingHandler()

	ds, err := NewDataSource(path, handler, time.Millisecond*10, ldlog.NewDisabledLoggers())
	require.NoError(t, err)
	defer ds.Close()

	awaitUpdate(t, handler)
	assert.JSONEq(t, `{"feature_gates": [{"name": "g1"}], "time": 1}`, string(handler.latest()))
}

func TestDataSourceFailsIfFileMissing(t *testing.T) {
	handler := newCapturingHandler()
	_, err := NewDataSource(filepath.Join(t.TempDir(), "nope.json"), handler, 0, ldlog.NewDisabledLoggers())
	assert.Error(t, err)
}

func TestDataSourceFailsIfInitialDataMalformed(t *testing.T) {
	path := writeTempFile(t, `{"feature_gates":`)
	handler := newCapturingHandler()
	_, err := NewDataSource(path, handler, 0, ldlog.NewDisabledLoggers())
	assert.Error(t, err)
}

func TestDataSourceReappliesDataWhenFileChanges(t *testing.T) {
	path := writeTempFile(t, `{"time": 1}`)
	handler := newCapturingHandler()

	ds, err := NewDataSource(path, handler, time.Millisecond*10, ldlog.NewDisabledLoggers())
	require.NoError(t, err)
	defer ds.Close()

	awaitUpdate(t, handler)

	// Wait out the mod-time granularity so the change is detectable
	time.Sleep(time.Millisecond * 50)
	require.NoError(t, os.WriteFile(path, []byte(`{"time": 2, "feature_gates": [{"name": "g2"}]}`), 0600))

	awaitUpdate(t, handler)
	assert.JSONEq(t, `{"time": 2, "feature_gates": [{"name": "g2"}]}`, string(handler.latest()))
}
