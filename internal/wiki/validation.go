package wiki

import (
	"strings"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"

	apperrors "github.com/olgasafonova/azure-devops-mcp-server/internal/errors"
)

// maxWikiNameLength is the longest wiki name Azure DevOps accepts
const maxWikiNameLength = 255

// ValidateWikiIdentifier checks that a wiki name or ID was given.
func ValidateWikiIdentifier(id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.NewValidationError("wiki_identifier", "", "wiki identifier is required")
	}
	return nil
}

// ValidateWikiName checks a name for a new wiki.
func ValidateWikiName(name string) error {
	if name == "" {
		return apperrors.NewValidationError("name", "", "wiki name is required")
	}
	if len(name) > maxWikiNameLength {
		return apperrors.NewValidationError("name", "", "wiki name cannot exceed 255 characters")
	}
	return nil
}

// NormalizePath trims p and makes it absolute.
func NormalizePath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", apperrors.NewValidationError("path", "", "page path is required")
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p, nil
}

// ParseRecursionLevel maps a recursion level name to the SDK value. Empty means none.
func ParseRecursionLevel(level string) (git.VersionControlRecursionType, error) {
	switch strings.ToLower(level) {
	case "", "none":
		return git.VersionControlRecursionTypeValues.None, nil
	case "onelevel":
		return git.VersionControlRecursionTypeValues.OneLevel, nil
	case "onelevelplusnestedemptyfolders":
		return git.VersionControlRecursionTypeValues.OneLevelPlusNestedEmptyFolders, nil
	case "full":
		return git.VersionControlRecursionTypeValues.Full, nil
	}
	return "", apperrors.NewValidationError("recursion_level", level,
		"must be one of none, oneLevel, oneLevelPlusNestedEmptyFolders, full")
}
