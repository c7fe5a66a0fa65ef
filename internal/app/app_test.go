package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"max.ks1230/expense-tracker/internal/clients/cache"
	"max.ks1230/expense-tracker/internal/config"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/model/storage"
)

func parseConfig(t *testing.T, raw string) *config.Service {
	t.Helper()
	conf, err := config.Parse([]byte(raw))
	require.NoError(t, err)
	return conf
}

func Test_NewStorage_ShouldDefaultToMemory(t *testing.T) {
	s, closer, err := NewStorage(parseConfig(t, "app: {}"))
	require.NoError(t, err)
	defer closer.Close()

	assert.IsType(t, &storage.InMemStorage{}, s)
}

func Test_NewStorage_ShouldOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "expenses.db")
	conf := parseConfig(t, fmt.Sprintf("app:\n  storage: sqlite\nsqlite:\n  path: %q\n", path))

	s, closer, err := NewStorage(conf)
	require.NoError(t, err)
	defer closer.Close()

	assert.IsType(t, &storage.SQLiteStorage{}, s)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func Test_NewCache_ShouldReturnMemoryWithJanitor(t *testing.T) {
	c, janitor, err := NewCache(parseConfig(t, "app: {}"))
	require.NoError(t, err)

	assert.IsType(t, &cache.Memory{}, c)
	require.NotNil(t, janitor)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		janitor(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func Test_NewExporter_ShouldWriteToExportDir(t *testing.T) {
	dir := t.TempDir()
	conf := parseConfig(t, fmt.Sprintf("app:\n  export-dir: %q\n  export-format: csv\n", dir))
	store := storage.NewInMemStorage()
	f, err := expense.Payload{Amount: "10", Category: "food", Date: "2024-01-01"}.Parse()
	require.NoError(t, err)
	_, err = store.CreateExpense(context.Background(), 5, f)
	require.NoError(t, err)

	exporter, err := NewExporter(context.Background(), conf, store)
	require.NoError(t, err)
	doc, err := exporter.Export(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "expenses_5.csv"), doc.Location)
}

func Test_ServeMetrics_ShouldExposeAndStop(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- ServeMetrics(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("metrics server did not stop")
	}
}
