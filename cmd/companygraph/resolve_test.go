package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func TestResolveCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		byID := strings.HasSuffix(r.URL.Path, "/5F64D864-61CB-4D0D-8AD9-492047CC1EA6")
		switch {
		case byID && r.URL.Query().Get("$filter") == "Business_Accounting_NO eq 12345678":
			_, _ = io.WriteString(w, `[{"Business_Accounting_NO":"12345678","Company_Name":"ACME","Capital_Stock_Amount":100}]`)
		default:
			_, _ = io.WriteString(w, `[]`)
		}
	}))
	t.Cleanup(srv.Close)
	t.Setenv("REGISTRY_BASE_URL", srv.URL)
	t.Setenv("REGISTRY_MAX_RETRIES", "0")
	t.Setenv("REDIS_URL", "")
	t.Setenv("LOG_LEVEL", "error")

	t.Run("prints the resolved graph", func(t *testing.T) {
		out, err := runCLI(t, "resolve", "12345678", "--by", "id")
		require.NoError(t, err)

		var body struct {
			MainCompany struct {
				Name string `json:"Company_Name"`
			} `json:"mainCompany"`
			Companies []json.RawMessage `json:"companies"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &body))
		assert.Equal(t, "ACME", body.MainCompany.Name)
		assert.Len(t, body.Companies, 1)
	})

	t.Run("reports not found", func(t *testing.T) {
		_, err := runCLI(t, "resolve", "99999999")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "No company found")
	})

	t.Run("rejects unknown modes", func(t *testing.T) {
		_, err := runCLI(t, "resolve", "ACME", "--by", "owner")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid --by")
	})
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "companygraph version dev\n", out)
}
