package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appmock "github.com/agentstation/sheetsync/internal/cmd/application"
	"github.com/agentstation/sheetsync/pkg/errors"
	pkgmanifest "github.com/agentstation/sheetsync/pkg/manifest"
	"github.com/agentstation/sheetsync/pkg/sync"
	"github.com/agentstation/sheetsync/pkg/tags"
)

func execute(mock *appmock.Mock, args ...string) error {
	cmd := NewCommand(mock)
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.ExecuteContext(context.Background())
}

func TestManifestCommandJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	m := pkgmanifest.New([]tags.Tag{
		tags.New("NanaGarden", 2),
		tags.New("NanaGarden", 3),
		tags.New("Q1 Plan", 5),
	}, "doc-1")
	require.NoError(t, m.Save(path))

	var stdout bytes.Buffer
	mock := &appmock.Mock{
		Out:              &stdout,
		OutputFormatFunc: func() string { return "json" },
	}
	require.NoError(t, execute(mock, path))

	var view struct {
		Path         string `json:"path"`
		ControlDocID string `json:"control_doc_id"`
		TagCount     int    `json:"tag_count"`
		Sheets       []struct {
			Sheet string `json:"sheet"`
			Rows  []int  `json:"rows"`
		} `json:"sheets"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &view))
	assert.Equal(t, path, view.Path)
	assert.Equal(t, "doc-1", view.ControlDocID)
	assert.Equal(t, 3, view.TagCount)
	require.Len(t, view.Sheets, 2)
	assert.Equal(t, []int{2, 3}, view.Sheets[0].Rows)
	assert.Equal(t, "Q1_Plan", view.Sheets[1].Sheet)
}

func TestManifestCommandMissingIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.json")
	var stdout bytes.Buffer
	mock := &appmock.Mock{
		Out:               &stdout,
		ImportOptionsFunc: func() []sync.Option { return []sync.Option{sync.WithManifestPath(path)} },
	}

	require.NoError(t, execute(mock))
	assert.Contains(t, stdout.String(), "0 tags")
}

func TestManifestCommandCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	err := execute(&appmock.Mock{}, path)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrManifestCorrupt)
}
