package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dueline/internal/domain"
	"dueline/internal/engine"
)

func run(t *testing.T, workspace string, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	out = &buf
	t.Cleanup(func() { out = os.Stdout })
	root := newRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append([]string{"--workspace", workspace, "--now", "2025-01-24T12:00:00Z", "--log-level", "error"}, args...))
	err := root.Execute()
	return buf.String(), err
}

func TestDashboardJSON(t *testing.T) {
	output, err := run(t, t.TempDir(), "--json", "dashboard")
	require.NoError(t, err)
	var d engine.Dashboard
	require.NoError(t, json.Unmarshal([]byte(output), &d), output)
	assert.Equal(t, 4, d.Metrics.Total)
	assert.Equal(t, 25, d.Metrics.Completion)
	assert.Len(t, d.Priorities.Items, 4)
}

func TestInstrumentListTable(t *testing.T) {
	output, err := run(t, t.TempDir(), "instrument", "list", "--status", "expired")
	require.NoError(t, err)
	assert.Contains(t, output, "Instrumento de Licenciamento")
	assert.Contains(t, output, "Vencido")
	assert.NotContains(t, output, "Acordo de Parceria Comercial")

	_, err = run(t, t.TempDir(), "instrument", "list", "--status", "archived")
	assert.ErrorContains(t, err, "unknown status")
}

func TestInstrumentCreateJSON(t *testing.T) {
	output, err := run(t, t.TempDir(), "--json", "instrument", "create",
		"--title", "Aditivo Contratual", "--due", "2025-01-28", "--type", "1", "--responsible", "1,2", "--value", "990.9")
	require.NoError(t, err)
	var in domain.Instrument
	require.NoError(t, json.Unmarshal([]byte(output), &in), output)
	assert.Equal(t, domain.StatusPending, in.Status)
	assert.Len(t, in.Responsibles, 2)
	require.NotNil(t, in.Value)
	assert.InDelta(t, 990.9, *in.Value, 0.001)
}

func TestHorizonFlag(t *testing.T) {
	output, err := run(t, t.TempDir(), "--json", "--horizon", "2", "dashboard")
	require.NoError(t, err)
	var d engine.Dashboard
	require.NoError(t, json.Unmarshal([]byte(output), &d))
	assert.Equal(t, 2, d.HorizonDays)
	// the instrument due in six and a half days drops out
	assert.Equal(t, 1, d.Metrics.ExpiringSoon)
}

func TestExportToStdout(t *testing.T) {
	output, err := run(t, t.TempDir(), "export", "--format", "csv", "--output", "-", "--search", "licen")
	require.NoError(t, err)
	assert.Contains(t, output, "Título")
	assert.Contains(t, output, "Instrumento de Licenciamento")
}

func TestExportWritesFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "detalhe.pdf")
	_, err := run(t, dir, "export", "--instrument", "1", "--output", target)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestConfigInitAndValidate(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "config", "validate")
	require.Error(t, err)

	_, err = run(t, dir, "config", "init")
	require.NoError(t, err)
	_, err = run(t, dir, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	output, err := run(t, dir, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, output, "config OK")
}

func TestFileStorePersistsBetweenRuns(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "--file-store", "instrument", "delete", "2")
	require.NoError(t, err)
	output, err := run(t, dir, "--file-store", "--json", "instrument", "list")
	require.NoError(t, err)
	var items []domain.Instrument
	require.NoError(t, json.Unmarshal([]byte(output), &items))
	assert.Len(t, items, 3)
}

func TestFilterFlags(t *testing.T) {
	loc := time.UTC
	f := filterFlags{status: []string{"pending"}, dueFrom: "2025-01-01", dueTo: "2025-01-31"}
	tf, err := f.filter(loc)
	require.NoError(t, err)
	assert.Equal(t, []domain.InstrumentStatus{domain.StatusPending}, tf.Status)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, loc), tf.DueFrom)
	assert.Equal(t, time.Date(2025, 1, 31, 23, 59, 59, 0, loc), tf.DueTo)

	_, err = filterFlags{dueTo: "amanhã"}.filter(loc)
	assert.Error(t, err)
}
