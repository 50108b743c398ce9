package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandArgs_StripsConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"skudadmin", "-a", "https://skud.local", "whoami", "-c", "cfg.json", "-l=debug"}

	assert.Equal(t, []string{"whoami"}, CommandArgs())
}

func runRoot(t *testing.T, dbPath, baseURL string, args ...string) string {
	t.Helper()
	cmd := NewRootCmd(testConfig(t, baseURL, dbPath))
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestRootCmd_SessionSubcommands(t *testing.T) {
	srv := newFakeServer()
	ts := httptest.NewServer(srv.handler())
	t.Cleanup(ts.Close)
	dbPath := filepath.Join(t.TempDir(), "skud.db")

	assert.Contains(t, runRoot(t, dbPath, ts.URL, "whoami"), "Not logged in.")

	ta := openTestApp(t, srv, ts.URL, dbPath)
	ta.login(t)
	ta.Close()

	assert.Contains(t, runRoot(t, dbPath, ts.URL, "whoami"), "root (admin)")
	assert.Contains(t, runRoot(t, dbPath, ts.URL, "logout"), "Logged out.")
	assert.Contains(t, runRoot(t, dbPath, ts.URL, "whoami"), "Not logged in.")
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	cmd := NewRootCmd(testConfig(t, "http://127.0.0.1:1", filepath.Join(t.TempDir(), "skud.db")))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"whoami", "extra"})
	require.Error(t, cmd.Execute())
}
