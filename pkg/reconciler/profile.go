package reconciler

import (
	"strings"

	"github.com/agentstation/sheetsync/pkg/errors"
)

// WorkspaceRule routes tasks from sheets whose lowercased name contains
// Contains into Workspace.
type WorkspaceRule struct {
	Contains  string `json:"contains" yaml:"contains" mapstructure:"contains"`
	Workspace string `json:"workspace" yaml:"workspace" mapstructure:"workspace"`
}

// Profile holds the project-specific strings an import writes into the store.
type Profile struct {
	// ProjectMarker is embedded in every task and reference document.
	ProjectMarker string `json:"project_marker" yaml:"project_marker" mapstructure:"project_marker"`
	// ControlMarker identifies the control document.
	ControlMarker string `json:"control_marker" yaml:"control_marker" mapstructure:"control_marker"`
	ControlTitle  string `json:"control_title" yaml:"control_title" mapstructure:"control_title"`
	// ReferenceSuffix is appended to reference document titles.
	ReferenceSuffix  string          `json:"reference_suffix" yaml:"reference_suffix" mapstructure:"reference_suffix"`
	Instructions     string          `json:"instructions" yaml:"instructions" mapstructure:"instructions"`
	WorkspaceRules   []WorkspaceRule `json:"workspace_rules" yaml:"workspace_rules" mapstructure:"workspace_rules"`
	DefaultWorkspace string          `json:"default_workspace" yaml:"default_workspace" mapstructure:"default_workspace"`
}

// DefaultProfile returns the profile of the Q1 import.
func DefaultProfile() Profile {
	return Profile{
		ProjectMarker:   "project:avaone-q1",
		ControlMarker:   "project:avaone-q1 control-doc",
		ControlTitle:    "AVAONE Q1 — Control Panel",
		ReferenceSuffix: "AVAONE Q1",
		Instructions:    "To re-run sync, place the updated workbook at the project root and run `sheetsync import sync`.",
		WorkspaceRules: []WorkspaceRule{
			{Contains: "ops", Workspace: "ops"},
			{Contains: "avacrm", Workspace: "avacrm"},
		},
		DefaultWorkspace: "content",
	}
}

// Workspace returns the workspace for tasks from sheet. The first matching
// rule wins.
func (p Profile) Workspace(sheet string) string {
	name := strings.ToLower(sheet)
	for _, rule := range p.WorkspaceRules {
		if rule.Contains != "" && strings.Contains(name, strings.ToLower(rule.Contains)) {
			return rule.Workspace
		}
	}
	return p.DefaultWorkspace
}

// Validate checks the fields reconciliation depends on.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.ProjectMarker) == "" {
		return errors.NewValidationError("project_marker", p.ProjectMarker, "cannot be empty")
	}
	if strings.TrimSpace(p.ControlMarker) == "" {
		return errors.NewValidationError("control_marker", p.ControlMarker, "cannot be empty")
	}
	if p.ControlMarker == p.ProjectMarker {
		return errors.NewValidationError("control_marker", p.ControlMarker, "must differ from project_marker")
	}
	if p.DefaultWorkspace == "" {
		return errors.NewValidationError("default_workspace", p.DefaultWorkspace, "cannot be empty")
	}
	return nil
}
