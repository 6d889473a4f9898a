package workitem

import (
	"strconv"
	"strings"
	"time"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"

	apperrors "github.com/olgasafonova/azure-devops-mcp-server/internal/errors"
)

// MaxBatchSize is the most IDs a single work item fetch accepts
const MaxBatchSize = 200

// ValidateIDs checks a work item ID list for a batch fetch.
func ValidateIDs(ids []int) error {
	if len(ids) == 0 {
		return apperrors.NewValidationError("ids", "", "at least one work item ID is required")
	}
	if len(ids) > MaxBatchSize {
		return apperrors.NewValidationError("ids", strconv.Itoa(len(ids)),
			"at most 200 work item IDs can be fetched at once")
	}
	for _, id := range ids {
		if id <= 0 {
			return apperrors.NewValidationError("ids", strconv.Itoa(id), "work item IDs must be positive")
		}
	}
	return nil
}

// ParseExpand maps an expand option name to the SDK value. Empty means not set.
func ParseExpand(s string) (*workitemtracking.WorkItemExpand, error) {
	var v workitemtracking.WorkItemExpand
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return nil, nil
	case "none":
		v = workitemtracking.WorkItemExpandValues.None
	case "relations":
		v = workitemtracking.WorkItemExpandValues.Relations
	case "fields":
		v = workitemtracking.WorkItemExpandValues.Fields
	case "links":
		v = workitemtracking.WorkItemExpandValues.Links
	case "all":
		v = workitemtracking.WorkItemExpandValues.All
	default:
		return nil, apperrors.NewValidationError("expand", s, "must be one of none, relations, fields, links, all")
	}
	return &v, nil
}

// ParseErrorPolicy maps fail or omit to the SDK value. Empty means not set.
func ParseErrorPolicy(s string) (*workitemtracking.WorkItemErrorPolicy, error) {
	var v workitemtracking.WorkItemErrorPolicy
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return nil, nil
	case "fail":
		v = workitemtracking.WorkItemErrorPolicyValues.Fail
	case "omit":
		v = workitemtracking.WorkItemErrorPolicyValues.Omit
	default:
		return nil, apperrors.NewValidationError("error_policy", s, "must be fail or omit")
	}
	return &v, nil
}

// ParseAsOf parses an RFC 3339 timestamp. Empty means not set.
func ParseAsOf(s string) (*azuredevops.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, apperrors.NewValidationError("as_of", s, "must be an RFC 3339 timestamp")
	}
	return &azuredevops.Time{Time: t}, nil
}

// clampTop applies the default and upper bound to a query result limit.
func clampTop(top int) (int, error) {
	switch {
	case top < 0:
		return 0, apperrors.NewValidationError("top", strconv.Itoa(top), "must not be negative")
	case top == 0 || top > MaxBatchSize:
		return MaxBatchSize, nil
	}
	return top, nil
}
