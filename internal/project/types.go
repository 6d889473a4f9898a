package project

import (
	"time"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
)

// ListRequest filters a project listing.
type ListRequest struct {
	State string // wellFormed, createPending, deleting, new, all
	Top   int
}

// GetRequest identifies a project.
type GetRequest struct {
	Project             string
	IncludeCapabilities bool
}

// ProjectInfo is a JSON-friendly projection of a team project.
type ProjectInfo struct {
	ID             string                       `json:"id"`
	Name           string                       `json:"name"`
	Description    string                       `json:"description,omitempty"`
	State          string                       `json:"state,omitempty"`
	Visibility     string                       `json:"visibility,omitempty"`
	Revision       uint64                       `json:"revision,omitempty"`
	LastUpdateTime string                       `json:"last_update_time,omitempty"`
	URL            string                       `json:"url,omitempty"`
	DefaultTeam    string                       `json:"default_team,omitempty"`
	Capabilities   map[string]map[string]string `json:"capabilities,omitempty"`
}

func summarizeReference(p core.TeamProjectReference) ProjectInfo {
	info := ProjectInfo{
		Name:        deref(p.Name),
		Description: deref(p.Description),
		URL:         deref(p.Url),
	}
	if p.Id != nil {
		info.ID = p.Id.String()
	}
	if p.State != nil {
		info.State = string(*p.State)
	}
	if p.Visibility != nil {
		info.Visibility = string(*p.Visibility)
	}
	if p.Revision != nil {
		info.Revision = *p.Revision
	}
	if p.LastUpdateTime != nil {
		info.LastUpdateTime = p.LastUpdateTime.Time.UTC().Format(time.RFC3339)
	}
	return info
}

func summarizeProject(p core.TeamProject) ProjectInfo {
	info := summarizeReference(core.TeamProjectReference{
		Id:             p.Id,
		Name:           p.Name,
		Description:    p.Description,
		State:          p.State,
		Visibility:     p.Visibility,
		Revision:       p.Revision,
		LastUpdateTime: p.LastUpdateTime,
		Url:            p.Url,
	})
	if p.DefaultTeam != nil {
		info.DefaultTeam = deref(p.DefaultTeam.Name)
	}
	if p.Capabilities != nil {
		info.Capabilities = *p.Capabilities
	}
	return info
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
