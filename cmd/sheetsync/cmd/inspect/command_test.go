package inspect

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	appmock "github.com/agentstation/sheetsync/internal/cmd/application"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/sync"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	require.NoError(t, f.SetSheetName("Sheet1", "Q1 Plan"))
	rows := [][]any{
		{"Species", "Tier level", "Prce"},
		{"Monstera", "Hero", 1200},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Q1 Plan", cell, &row))
	}
	_, err := f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Notes", "A1", "free text"))

	path := filepath.Join(t.TempDir(), "plan.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func execute(t *testing.T, mock *appmock.Mock, args ...string) error {
	t.Helper()
	cmd := NewCommand(mock)
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.ExecuteContext(context.Background())
}

func TestInspectCommandJSON(t *testing.T) {
	path := writeWorkbook(t)
	var stdout bytes.Buffer
	mock := &appmock.Mock{
		Out:              &stdout,
		OutputFormatFunc: func() string { return "json" },
	}

	require.NoError(t, execute(t, mock, path))

	var got struct {
		Source string `json:"source"`
		Sheets []struct {
			Name    string `json:"name"`
			Kind    string `json:"kind"`
			Records int    `json:"records"`
		} `json:"sheets"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, path, got.Source)
	require.Len(t, got.Sheets, 2)
	assert.Equal(t, "Q1 Plan", got.Sheets[0].Name)
	assert.Equal(t, "table", got.Sheets[0].Kind)
	assert.Equal(t, 1, got.Sheets[0].Records)
	assert.Equal(t, "reference", got.Sheets[1].Kind)
}

func TestInspectCommandDefaultsToConfiguredSource(t *testing.T) {
	path := writeWorkbook(t)
	var stdout bytes.Buffer
	mock := &appmock.Mock{
		Out:               &stdout,
		ImportOptionsFunc: func() []sync.Option { return []sync.Option{sync.WithSource(path)} },
	}

	require.NoError(t, execute(t, mock, "--sheet", "Q1*"))
	out := stdout.String()
	assert.Contains(t, out, "Q1 Plan")
	assert.NotContains(t, out, "Notes")
}

func TestInspectCommandWide(t *testing.T) {
	path := writeWorkbook(t)
	var stdout bytes.Buffer
	mock := &appmock.Mock{
		Out:              &stdout,
		OutputFormatFunc: func() string { return "wide" },
	}

	require.NoError(t, execute(t, mock, path))
	out := stdout.String()
	assert.Contains(t, out, "Species (col 1)")
	assert.Contains(t, out, "Tier level (col 2)")
}

func TestInspectCommandMissingWorkbook(t *testing.T) {
	err := execute(t, &appmock.Mock{}, filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)
	assert.True(t, errors.IsSourceMissing(err))
}
