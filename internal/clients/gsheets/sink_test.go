package gsheets

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	"max.ks1230/expense-tracker/internal/model/export"
)

type fakeSheets struct {
	mu       sync.Mutex
	tabs     []string
	calls    []string
	written  [][]interface{}
	writeRng string
	input    string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/sheet-id")
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && path == "":
		f.calls = append(f.calls, "get")
		sheets := make([]map[string]interface{}, 0, len(f.tabs))
		for _, tab := range f.tabs {
			sheets = append(sheets, map[string]interface{}{"properties": map[string]string{"title": tab}})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"spreadsheetId": "sheet-id", "sheets": sheets})
	case r.Method == http.MethodPost && path == ":batchUpdate":
		f.calls = append(f.calls, "addSheet")
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.calls = append(f.calls, "clear")
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPut && strings.HasPrefix(path, "/values/"):
		f.calls = append(f.calls, "update")
		f.writeRng = strings.TrimPrefix(path, "/values/")
		f.input = r.URL.Query().Get("valueInputOption")
		var vr struct {
			Values [][]interface{} `json:"values"`
		}
		_ = json.Unmarshal(body, &vr)
		f.written = vr.Values
		_, _ = w.Write([]byte(`{}`))
	default:
		http.Error(w, "unexpected "+r.Method+" "+path, http.StatusNotFound)
	}
}

func newTestSink(t *testing.T, fake *fakeSheets) *Sink {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := newSink(context.Background(), "sheet-id",
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return s
}

func testTable() *export.Table {
	return &export.Table{
		Header: export.Columns,
		Rows: [][]string{
			{"", "20", "taxi", "2024-01-15", ""},
		},
	}
}

func Test_OnSave_ShouldCreateTabAndWriteRows(t *testing.T) {
	fake := &fakeSheets{tabs: []string{"Sheet1"}}
	s := newTestSink(t, fake)

	loc, err := s.Save(context.Background(), 7, &export.Document{}, testTable())

	require.NoError(t, err)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/sheet-id", loc)
	assert.Equal(t, []string{"get", "addSheet", "clear", "update"}, fake.calls)
	assert.Equal(t, "expenses_7!A1", fake.writeRng)
	require.Len(t, fake.written, 2)
	assert.Equal(t, "icon", fake.written[0][0])
	assert.Equal(t, "taxi", fake.written[1][2])
}

func Test_OnSaveExistingTab_ShouldNotAddSheet(t *testing.T) {
	fake := &fakeSheets{tabs: []string{"Sheet1", "expenses_7"}}
	s := newTestSink(t, fake)

	_, err := s.Save(context.Background(), 7, &export.Document{}, testTable())

	require.NoError(t, err)
	assert.Equal(t, []string{"get", "clear", "update"}, fake.calls)
}

func Test_OnApiFailure_ShouldReturnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"forbidden"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	s, err := newSink(context.Background(), "sheet-id",
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = s.Save(context.Background(), 1, &export.Document{}, testTable())
	assert.Error(t, err)
}

func Test_OnSave_ShouldWriteCellsVerbatim(t *testing.T) {
	fake := &fakeSheets{tabs: []string{"expenses_7"}}
	s := newTestSink(t, fake)
	table := &export.Table{
		Header: export.Columns,
		Rows:   [][]string{{"", "0.10", "misc", "2024-01-15", "=1+1"}},
	}

	_, err := s.Save(context.Background(), 7, &export.Document{}, table)

	require.NoError(t, err)
	assert.Equal(t, "RAW", fake.input)
	require.Len(t, fake.written, 2)
	assert.Equal(t, "0.10", fake.written[1][1])
	assert.Equal(t, "2024-01-15", fake.written[1][3])
	assert.Equal(t, "=1+1", fake.written[1][4])
}
