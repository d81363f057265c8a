package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kantoor/internal/api/apitest"
	"github.com/Veraticus/kantoor/internal/model"
)

// run executes the root command against srv and returns stdout.
func run(t *testing.T, srv *apitest.Server, stdin string, args ...string) (string, error) {
	t.Helper()

	t.Setenv("KANTOOR_CONFIG_DIR", t.TempDir())
	t.Setenv("KANTOOR_CACHE_BACKEND", "none")
	if srv != nil {
		t.Setenv("KANTOOR_API_BASE_URL", srv.URL)
		t.Setenv("KANTOOR_API_TOKEN", apitest.Token)
	}
	viper.Reset()
	t.Cleanup(viper.Reset)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(append(args, "--log-level", "error"))
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))

	err := root.Execute()
	return out.String(), err
}

func fixedNow(t *testing.T, ts time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = prev })
}

func TestVersion(t *testing.T) {
	out, err := run(t, nil, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "kantoor dev\n", out)
}

func TestMissingBackendConfig(t *testing.T) {
	t.Setenv("KANTOOR_API_BASE_URL", "")
	_, err := run(t, nil, "", "documents", "list")
	require.Error(t, err)
	assert.Contains(t, errorText(err), "api.base_url")
}

func TestDocumentsListJSON(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.AddDocument(model.Document{Title: "Vrachtbrief 12", Status: model.DocumentPending, PageCount: 2})

	out, err := run(t, srv, "", "documents", "list", "-o", "json")
	require.NoError(t, err)

	var page model.Page[model.Document]
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Vrachtbrief 12", page.Results[0].Title)
}

func TestDocumentsDelete(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		args    []string
		deleted bool
	}{
		{name: "declined", stdin: "n\n", args: []string{"documents", "delete", "#1"}},
		{name: "confirmed", stdin: "j\n", args: []string{"documents", "delete", "1"}, deleted: true},
		{name: "assume yes", args: []string{"documents", "delete", "1", "--yes"}, deleted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apitest.NewServer(t)
			id := srv.AddDocument(model.Document{Title: "CMR"})
			require.Equal(t, 1, id)

			out, err := run(t, srv, tt.stdin, tt.args...)
			require.NoError(t, err)

			srv.Lock()
			_, exists := srv.Documents[id]
			srv.Unlock()
			assert.Equal(t, !tt.deleted, exists)
			if tt.deleted {
				assert.Contains(t, out, "Document #1 verwijderd")
			}
		})
	}
}

func TestBackendErrorMessage(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.AddDocument(model.Document{Title: "CMR"})
	srv.Fail(http.MethodDelete, "/api/documents/1/", http.StatusBadRequest, gin.H{"detail": "Ondertekende documenten kunnen niet worden verwijderd."})

	_, err := run(t, srv, "", "documents", "delete", "1", "-y")
	require.Error(t, err)
	assert.Equal(t, "Ondertekende documenten kunnen niet worden verwijderd.", errorText(err))
}

func TestTimeAddAndSubmit(t *testing.T) {
	srv := apitest.NewServer(t)
	fixedNow(t, time.Date(2025, 8, 27, 12, 0, 0, 0, time.Local))

	out, err := run(t, srv, "", "time", "add",
		"--date", "2025-08-25", "--start", "06:00", "--end", "15:30", "--break", "0:30",
		"--km-start", "120400", "--km-end", "120712")
	require.NoError(t, err)
	assert.Contains(t, out, "week 35")

	created := srv.RequestsTo(http.MethodPost, "/api/time-entries/")
	require.Len(t, created, 1)
	var sent model.TimeEntry
	require.NoError(t, json.Unmarshal(created[0].Body, &sent))
	assert.Equal(t, 30, sent.BreakMinutes)
	assert.Equal(t, 35, sent.WeekNumber)

	out, err = run(t, srv, "", "time", "submit", "-y")
	require.NoError(t, err)
	assert.Contains(t, out, "1 registratie(s) ingediend")

	srv.Lock()
	for _, e := range srv.TimeEntries {
		assert.Equal(t, model.EntrySubmitted, e.Status)
	}
	srv.Unlock()
}

func TestTimeSubmitJSONCount(t *testing.T) {
	srv := apitest.NewServer(t)
	fixedNow(t, time.Date(2025, 8, 27, 12, 0, 0, 0, time.Local))
	srv.AddTimeEntry(model.TimeEntry{Date: "2025-08-25", StartTime: "07:00", EndTime: "16:00"})
	srv.AddTimeEntry(model.TimeEntry{Date: "2025-08-26", StartTime: "07:00", EndTime: "16:00"})
	srv.AddTimeEntry(model.TimeEntry{Date: "2025-09-01", StartTime: "07:00", EndTime: "16:00"})

	out, err := run(t, srv, "", "time", "submit", "--week", "35", "--year", "2025", "-y", "-o", "json")
	require.NoError(t, err)

	var count model.CountResponse
	require.NoError(t, json.Unmarshal([]byte(out), &count))
	assert.Equal(t, 2, count.Count)
}

func TestExpensesAdd(t *testing.T) {
	srv := apitest.NewServer(t)
	category := srv.AddCategory(model.ExpenseCategory{Name: "Brandstof"})
	fixedNow(t, time.Date(2025, 3, 14, 9, 0, 0, 0, time.Local))

	_, err := run(t, srv, "", "expenses", "add",
		"--description", "Diesel", "--amount", "1.234,56", "--btw", "214,27", "--category", "1")
	require.NoError(t, err)
	require.Equal(t, 1, category)

	srv.Lock()
	defer srv.Unlock()
	require.Len(t, srv.Expenses, 1)
	for _, e := range srv.Expenses {
		assert.Equal(t, "2025-03-14", e.Date)
		assert.Equal(t, "1234.56", e.Amount.StringFixed(2))
		assert.Equal(t, "214.27", e.BTWAmount.StringFixed(2))
	}
}

func TestPushGroupCreate(t *testing.T) {
	srv := apitest.NewServer(t)

	out, err := run(t, srv, "", "push", "groups", "create", "--name", "Chauffeurs", "--member", "3", "--member", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Chauffeurs")

	srv.Lock()
	defer srv.Unlock()
	require.Len(t, srv.Groups, 1)
	for _, g := range srv.Groups {
		assert.ElementsMatch(t, []int{3, 5}, g.MemberIDs)
	}
}

func TestParseBreak(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "0", want: 0},
		{in: "30m", want: 30},
		{in: "0:45", want: 45},
		{in: "0,5", want: 30},
		{in: "lang", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseBreak(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"#4", "7,9"})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 7, 9}, ids)

	_, err = parseIDs([]string{"vier"})
	assert.Error(t, err)
}
