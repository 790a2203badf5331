package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/manifest"
	"github.com/agentstation/sheetsync/pkg/tags"
)

func TestLoadMissingIsEmpty(t *testing.T) {
	m, err := manifest.Load(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Empty(t, m.SourceTags)
	assert.Equal(t, "", m.ControlDoc())
}

func TestLoadCorruptIsSoft(t *testing.T) {
	tests := map[string]string{
		"truncated":  `{"src_tags": ["src:xl:A:r1"`,
		"wrong type": `{"src_tags": "src:xl:A:r1"}`,
		"bad tag":    `{"src_tags": ["hello"]}`,
		"not json":   `<xml/>`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "m.json")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

			m, err := manifest.Load(path)
			require.Error(t, err)
			assert.True(t, errors.IsSoft(err))
			assert.True(t, errors.Is(err, errors.ErrManifestCorrupt))
			require.NotNil(t, m)
			assert.Empty(t, m.SourceTags)
			assert.Nil(t, m.ControlDocID)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "manifest.json")
	want := manifest.New([]tags.Tag{"src:xl:A:r2", "src:xl:A:r3"}, "doc-1")
	require.NoError(t, want.Save(path))

	got, err := manifest.Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "doc-1", got.ControlDoc())
	assert.True(t, got.Tags().Has("src:xl:A:r3"))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestEncodeShape(t *testing.T) {
	data, err := manifest.Empty().Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"src_tags": [], "control_doc_id": null}`, string(data))

	data, err = manifest.New([]tags.Tag{"src:xl:B:r9"}, "c").Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"src_tags": ["src:xl:B:r9"], "control_doc_id": "c"}`, string(data))
}

func TestDecodeEmptyControlDoc(t *testing.T) {
	m, err := manifest.Decode([]byte(`{"src_tags": null, "control_doc_id": ""}`), "m.json")
	require.NoError(t, err)
	assert.Nil(t, m.ControlDocID)
	assert.NotNil(t, m.SourceTags)
}

func TestNilManifestAccessors(t *testing.T) {
	var m *manifest.Manifest
	assert.Equal(t, "", m.ControlDoc())
	assert.Equal(t, 0, m.Tags().Len())
}
