package workitem

import "github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"

// GetRequest describes a batch fetch by ID.
type GetRequest struct {
	IDs         []int
	Project     string   // empty means the default project
	Fields      []string // mutually exclusive with Expand
	AsOf        string   // RFC 3339
	Expand      string   // none, relations, fields, links, all
	ErrorPolicy string   // fail, omit
}

// ListRequest describes a WIQL query.
type ListRequest struct {
	Query   string
	Project string
	Top     int // defaults to and is capped at MaxBatchSize
	Fields  []string
}

// ListResult is the outcome of ListWorkItems. WorkItems is never nil.
type ListResult struct {
	Count     int
	WorkItems []workitemtracking.WorkItem
}

// WorkItemInfo is a JSON-friendly projection of a work item.
type WorkItemInfo struct {
	ID        int            `json:"id"`
	Rev       int            `json:"rev,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
	Relations []RelationInfo `json:"relations,omitempty"`
	URL       string         `json:"url,omitempty"`
}

// RelationInfo is a link from a work item to another resource.
type RelationInfo struct {
	Rel        string         `json:"rel"`
	URL        string         `json:"url"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

func summarize(w workitemtracking.WorkItem) WorkItemInfo {
	info := WorkItemInfo{URL: deref(w.Url)}
	if w.Id != nil {
		info.ID = *w.Id
	}
	if w.Rev != nil {
		info.Rev = *w.Rev
	}
	if w.Fields != nil {
		info.Fields = *w.Fields
	}
	if w.Relations != nil {
		for _, r := range *w.Relations {
			rel := RelationInfo{Rel: deref(r.Rel), URL: deref(r.Url)}
			if r.Attributes != nil {
				rel.Attributes = *r.Attributes
			}
			info.Relations = append(info.Relations, rel)
		}
	}
	return info
}

// summarizeAll projects items, dropping the empty slots an omit error policy leaves behind.
func summarizeAll(items []workitemtracking.WorkItem) []WorkItemInfo {
	out := make([]WorkItemInfo, 0, len(items))
	for _, w := range items {
		if w.Id == nil {
			continue
		}
		out = append(out, summarize(w))
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
