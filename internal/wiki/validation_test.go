package wiki

import (
	"strings"
	"testing"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/olgasafonova/azure-devops-mcp-server/internal/errors"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"/Home", "/Home", false},
		{"Home", "/Home", false},
		{"  Guides/Setup ", "/Guides/Setup", false},
		{"/", "/", false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizePath(tt.in)
		if tt.wantErr {
			assert.True(t, apperrors.IsValidation(err), "NormalizePath(%q)", tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseRecursionLevel(t *testing.T) {
	tests := map[string]git.VersionControlRecursionType{
		"":                               git.VersionControlRecursionTypeValues.None,
		"none":                           git.VersionControlRecursionTypeValues.None,
		"oneLevel":                       git.VersionControlRecursionTypeValues.OneLevel,
		"OneLevelPlusNestedEmptyFolders": git.VersionControlRecursionTypeValues.OneLevelPlusNestedEmptyFolders,
		"full":                           git.VersionControlRecursionTypeValues.Full,
	}
	for in, want := range tests {
		got, err := ParseRecursionLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseRecursionLevel("2")
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "recursion_level", ve.Field)
}

func TestValidateWikiName(t *testing.T) {
	assert.NoError(t, ValidateWikiName("Team Handbook"))
	assert.Error(t, ValidateWikiName(""))
	assert.Error(t, ValidateWikiName(strings.Repeat("w", maxWikiNameLength+1)))
}

func TestValidateWikiIdentifier(t *testing.T) {
	assert.NoError(t, ValidateWikiIdentifier("Fabrikam.wiki"))
	assert.True(t, apperrors.IsValidation(ValidateWikiIdentifier(" ")))
}
