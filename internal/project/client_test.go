package project

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/olgasafonova/azure-devops-mcp-server/internal/errors"
)

type fakeConnector struct {
	api         core.Client
	connectErr  error
	calls       int
	invalidated int
}

func (f *fakeConnector) CoreClient(context.Context) (core.Client, error) {
	f.calls++
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	return f.api, nil
}

func (f *fakeConnector) DefaultProject() string { return "Fabrikam" }
func (f *fakeConnector) Invalidate()            { f.invalidated++ }

type fakeCore struct {
	core.Client

	projects []core.TeamProject
	err      error
	listArgs []core.GetProjectsArgs
	getArgs  []core.GetProjectArgs
}

func newFakeCore(names ...string) *fakeCore {
	f := &fakeCore{}
	for _, n := range names {
		name := n
		id := uuid.New()
		state := core.ProjectStateValues.WellFormed
		f.projects = append(f.projects, core.TeamProject{Id: &id, Name: &name, State: &state})
	}
	return f
}

func (f *fakeCore) GetProjects(_ context.Context, args core.GetProjectsArgs) (*core.GetProjectsResponseValue, error) {
	f.listArgs = append(f.listArgs, args)
	if f.err != nil {
		return nil, f.err
	}
	resp := &core.GetProjectsResponseValue{}
	for _, p := range f.projects {
		resp.Value = append(resp.Value, core.TeamProjectReference{Id: p.Id, Name: p.Name, State: p.State})
	}
	return resp, nil
}

func (f *fakeCore) GetProject(_ context.Context, args core.GetProjectArgs) (*core.TeamProject, error) {
	f.getArgs = append(f.getArgs, args)
	if f.err != nil {
		return nil, f.err
	}
	for i, p := range f.projects {
		if *p.Name == *args.ProjectId || p.Id.String() == *args.ProjectId {
			return &f.projects[i], nil
		}
	}
	status, msg := 404, "TF200016: The following project does not exist"
	return nil, azuredevops.WrappedError{StatusCode: &status, Message: &msg}
}

func statusError(code int) error {
	msg := "failed"
	return azuredevops.WrappedError{StatusCode: &code, Message: &msg}
}

func TestListProjects(t *testing.T) {
	api := newFakeCore("Fabrikam", "Contoso")
	client := NewClient(&fakeConnector{api: api}, nil)

	projects, err := client.ListProjects(context.Background(), ListRequest{State: "wellFormed", Top: 10})
	require.NoError(t, err)
	assert.Len(t, projects, 2)

	args := api.listArgs[0]
	assert.Equal(t, core.ProjectStateValues.WellFormed, *args.StateFilter)
	assert.Equal(t, 10, *args.Top)
}

func TestListProjects_EmptyIsNonNil(t *testing.T) {
	client := NewClient(&fakeConnector{api: newFakeCore()}, nil)

	projects, err := client.ListProjects(context.Background(), ListRequest{})
	require.NoError(t, err)
	assert.NotNil(t, projects)
	assert.Empty(t, projects)
}

func TestListProjects_Validation(t *testing.T) {
	conn := &fakeConnector{api: newFakeCore()}
	client := NewClient(conn, nil)

	_, err := client.ListProjects(context.Background(), ListRequest{State: "archived"})
	assert.True(t, apperrors.IsValidation(err))
	_, err = client.ListProjects(context.Background(), ListRequest{Top: -1})
	assert.True(t, apperrors.IsValidation(err))
	assert.Zero(t, conn.calls)
}

func TestGetProject(t *testing.T) {
	api := newFakeCore("Fabrikam")
	client := NewClient(&fakeConnector{api: api}, nil)

	p, err := client.GetProject(context.Background(), GetRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Fabrikam", *p.Name)
	assert.Equal(t, "Fabrikam", *api.getArgs[0].ProjectId, "empty name resolves to the default project")
	assert.False(t, *api.getArgs[0].IncludeCapabilities)
}

func TestGetProject_NotFound(t *testing.T) {
	client := NewClient(&fakeConnector{api: newFakeCore("Fabrikam")}, nil)

	_, err := client.GetProject(context.Background(), GetRequest{Project: "Nope"})

	var nf *apperrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "project", nf.EntityType)
	assert.Equal(t, "Nope", nf.Identifier)
}

func TestOperations_Errors(t *testing.T) {
	api := newFakeCore()
	api.err = statusError(500)
	conn := &fakeConnector{api: api}
	client := NewClient(conn, nil)

	_, err := client.ListProjects(context.Background(), ListRequest{})
	var apiErr *apperrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.StatusCode)

	api.err = statusError(401)
	_, err = client.GetProject(context.Background(), GetRequest{Project: "Fabrikam"})
	assert.True(t, apperrors.IsAuthentication(err))
	assert.Equal(t, 1, conn.invalidated)
}

func TestOperations_AuthenticationErrorPassesThrough(t *testing.T) {
	authErr := apperrors.NewAuthenticationError("https://dev.azure.com/fabrikam", errors.New("bad token"))
	client := NewClient(&fakeConnector{connectErr: authErr}, nil)

	_, err := client.ListProjects(context.Background(), ListRequest{})
	assert.Same(t, authErr, err)
	_, err = client.GetProject(context.Background(), GetRequest{})
	assert.Same(t, authErr, err)
}

func TestGetProjectMCP(t *testing.T) {
	api := newFakeCore("Fabrikam")
	team, desc := "Fabrikam Team", "Main product"
	updated := azuredevops.Time{Time: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)}
	api.projects[0].DefaultTeam = &core.WebApiTeamRef{Name: &team}
	api.projects[0].Description = &desc
	api.projects[0].LastUpdateTime = &updated
	client := NewClient(&fakeConnector{api: api}, nil)

	res, err := client.GetProjectMCP(context.Background(), GetProjectArgs{Project: "Fabrikam"})
	require.NoError(t, err)
	assert.Equal(t, "Fabrikam", res.Project.Name)
	assert.Equal(t, "Fabrikam Team", res.Project.DefaultTeam)
	assert.Equal(t, "wellFormed", res.Project.State)
	assert.Equal(t, "2024-03-01T08:00:00Z", res.Project.LastUpdateTime)
	assert.Equal(t, api.projects[0].Id.String(), res.Project.ID)
}

func TestListProjectsMCP(t *testing.T) {
	client := NewClient(&fakeConnector{api: newFakeCore("A", "B", "C")}, nil)

	res, err := client.ListProjectsMCP(context.Background(), ListProjectsArgs{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, "B", res.Projects[1].Name)
}

func TestParseState(t *testing.T) {
	s, err := ParseState("ALL")
	require.NoError(t, err)
	assert.Equal(t, core.ProjectStateValues.All, *s)

	s, err = ParseState("")
	require.NoError(t, err)
	assert.Nil(t, s)
}
