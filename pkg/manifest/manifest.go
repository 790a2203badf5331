// Package manifest persists the state one import run hands to the next:
// the source tags it saw and the control document it addressed.
package manifest

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/agentstation/sheetsync/internal/utils/ptr"
	"github.com/agentstation/sheetsync/pkg/constants"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/tags"
)

// Manifest is the persisted run state. A new manifest always supersedes the
// previous one; nothing is merged.
type Manifest struct {
	SourceTags   []tags.Tag `json:"src_tags" yaml:"src_tags"`
	ControlDocID *string    `json:"control_doc_id" yaml:"control_doc_id"`
}

// New builds a manifest from the tags of a run and the control document ref.
func New(seen []tags.Tag, controlDocID string) *Manifest {
	if seen == nil {
		seen = []tags.Tag{}
	}
	m := &Manifest{SourceTags: seen}
	if controlDocID != "" {
		m.ControlDocID = ptr.To(controlDocID)
	}
	return m
}

// Empty returns a manifest with no tags and no control document.
func Empty() *Manifest {
	return New(nil, "")
}

// ControlDoc returns the control document ref, "" when unset.
func (m *Manifest) ControlDoc() string {
	if m == nil {
		return ""
	}
	return ptr.Deref(m.ControlDocID)
}

// Tags returns the known tags as a set.
func (m *Manifest) Tags() *tags.Set {
	if m == nil {
		return tags.NewSet()
	}
	return tags.NewSet(m.SourceTags...)
}

// Load reads the manifest at path. A missing file yields an empty manifest
// and no error. An unreadable or malformed file yields an empty manifest and
// a soft *errors.ManifestError the caller should log and move past.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Empty(), nil
		}
		return Empty(), errors.NewManifestError(path, err)
	}
	return Decode(data, path)
}

// Decode parses manifest JSON. Malformed input and malformed tags are
// reported as a soft error alongside an empty manifest.
func Decode(data []byte, path string) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Empty(), errors.NewManifestError(path, errors.WrapParse("json", path, err))
	}
	for _, t := range m.SourceTags {
		if !t.Valid() {
			return Empty(), errors.NewManifestError(path, errors.NewValidationError("src_tags", string(t), "malformed tag"))
		}
	}
	if m.SourceTags == nil {
		m.SourceTags = []tags.Tag{}
	}
	if m.ControlDocID != nil && *m.ControlDocID == "" {
		m.ControlDocID = nil
	}
	return &m, nil
}

// Encode renders the manifest as indented JSON.
func (m *Manifest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	return buf.Bytes(), nil
}

// Save writes the manifest atomically through a temp file in the same directory.
func (m *Manifest) Save(path string) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to a temp file next to path and renames it into place.
func WriteFileAtomic(path string, data []byte) error {
	tmp, err := StageFile(path, data)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.WrapIO("rename", path, err)
	}
	return nil
}

// StageFile writes data to a temp file beside path and returns the temp path.
// The caller renames or removes it.
func StageFile(path string, data []byte) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", dir, err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", errors.WrapIO("create", path, err)
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", errors.WrapIO("write", tmp, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", errors.WrapIO("close", tmp, err)
	}
	if err := os.Chmod(tmp, constants.FilePermissions); err != nil {
		_ = os.Remove(tmp)
		return "", errors.WrapIO("chmod", tmp, err)
	}
	return tmp, nil
}
