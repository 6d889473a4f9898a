package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/build"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/olgasafonova/azure-devops-mcp-server/internal/errors"
)

type fakeConnector struct {
	api         build.Client
	connectErr  error
	calls       int
	invalidated int
}

func (f *fakeConnector) BuildClient(context.Context) (build.Client, error) {
	f.calls++
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	return f.api, nil
}

func (f *fakeConnector) DefaultProject() string { return "Fabrikam" }
func (f *fakeConnector) Invalidate()            { f.invalidated++ }

type fakeBuild struct {
	build.Client

	defs []build.BuildDefinitionReference
	err  error
	args []build.GetDefinitionsArgs
}

func (f *fakeBuild) GetDefinitions(_ context.Context, args build.GetDefinitionsArgs) (*build.GetDefinitionsResponseValue, error) {
	f.args = append(f.args, args)
	if f.err != nil {
		return nil, f.err
	}
	return &build.GetDefinitionsResponseValue{Value: f.defs}, nil
}

func definition(id int, name string) build.BuildDefinitionReference {
	path := `\`
	return build.BuildDefinitionReference{Id: &id, Name: &name, Path: &path}
}

func TestListDefinitions(t *testing.T) {
	api := &fakeBuild{defs: []build.BuildDefinitionReference{definition(1, "CI"), definition(2, "Release")}}
	client := NewClient(&fakeConnector{api: api}, nil)

	defs, err := client.ListDefinitions(context.Background(), ListRequest{Name: "C*", Top: 5, LatestBuilds: true})
	require.NoError(t, err)
	assert.Len(t, defs, 2)

	args := api.args[0]
	assert.Equal(t, "Fabrikam", *args.Project)
	assert.Equal(t, "C*", *args.Name)
	assert.Equal(t, 5, *args.Top)
	assert.True(t, *args.IncludeLatestBuilds)
	assert.Nil(t, args.Path)
}

func TestListDefinitions_EmptyIsNonNil(t *testing.T) {
	client := NewClient(&fakeConnector{api: &fakeBuild{}}, nil)

	defs, err := client.ListDefinitions(context.Background(), ListRequest{Project: "Other"})
	require.NoError(t, err)
	assert.NotNil(t, defs)
	assert.Empty(t, defs)
}

func TestListDefinitions_Validation(t *testing.T) {
	conn := &fakeConnector{api: &fakeBuild{}}
	client := NewClient(conn, nil)

	_, err := client.ListDefinitions(context.Background(), ListRequest{Top: -3})
	assert.True(t, apperrors.IsValidation(err))
	assert.Zero(t, conn.calls)
}

func TestListDefinitions_Errors(t *testing.T) {
	status, msg := 403, "access denied"
	api := &fakeBuild{err: &azuredevops.WrappedError{StatusCode: &status, Message: &msg}}
	conn := &fakeConnector{api: api}
	client := NewClient(conn, nil)

	_, err := client.ListDefinitions(context.Background(), ListRequest{})
	var apiErr *apperrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "access denied")
	assert.Zero(t, conn.invalidated)

	authErr := apperrors.NewAuthenticationError("", errors.New("bad token"))
	client = NewClient(&fakeConnector{connectErr: authErr}, nil)
	_, err = client.ListDefinitions(context.Background(), ListRequest{})
	assert.Same(t, authErr, err)
}

func TestListDefinitionsMCP(t *testing.T) {
	def := definition(9, "Nightly")
	rev := 4
	queue := build.DefinitionQueueStatusValues.Enabled
	buildID, number := 120, "20240301.1"
	status := build.BuildStatusValues.Completed
	result := build.BuildResultValues.Succeeded
	finished := azuredevops.Time{Time: time.Date(2024, 3, 1, 2, 30, 0, 0, time.UTC)}
	def.Revision = &rev
	def.QueueStatus = &queue
	def.LatestBuild = &build.Build{Id: &buildID, BuildNumber: &number, Status: &status, Result: &result, FinishTime: &finished}

	client := NewClient(&fakeConnector{api: &fakeBuild{defs: []build.BuildDefinitionReference{def}}}, nil)

	res, err := client.ListDefinitionsMCP(context.Background(), ListDefinitionsArgs{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Count)

	got := res.Definitions[0]
	assert.Equal(t, 9, got.ID)
	assert.Equal(t, "Nightly", got.Name)
	assert.Equal(t, "enabled", got.QueueStatus)
	require.NotNil(t, got.LatestBuild)
	assert.Equal(t, "20240301.1", got.LatestBuild.BuildNumber)
	assert.Equal(t, "completed", got.LatestBuild.Status)
	assert.Equal(t, "succeeded", got.LatestBuild.Result)
	assert.Equal(t, "2024-03-01T02:30:00Z", got.LatestBuild.FinishTime)
}
