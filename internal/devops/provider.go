// Package devops owns the authenticated connection to Azure DevOps.
//
// A Provider performs the connection handshake, keeps the resulting Session
// for the configured TTL and hands out capability-scoped SDK clients (wiki,
// work item tracking, core, build, git) created lazily from that session.
package devops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/build"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/wiki"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"

	"github.com/olgasafonova/azure-devops-mcp-server/internal/base"
	"github.com/olgasafonova/azure-devops-mcp-server/internal/config"
	apperrors "github.com/olgasafonova/azure-devops-mcp-server/internal/errors"
	"github.com/olgasafonova/azure-devops-mcp-server/internal/infra"
	"github.com/olgasafonova/azure-devops-mcp-server/metrics"
)

// Sub-area names, used as metric and span labels
const (
	AreaWiki     = "wiki"
	AreaWorkItem = "workitemtracking"
	AreaCore     = "core"
	AreaBuild    = "build"
	AreaGit      = "git"
)

const sessionKey = "session"

// Prober verifies an organization URL and credential pair.
type Prober interface {
	Probe(ctx context.Context, orgURL, authorization string) (*base.ConnectionData, error)
}

// ClientFactories builds SDK sub-area clients from a connection.
type ClientFactories struct {
	Wiki             func(context.Context, *azuredevops.Connection) (wiki.Client, error)
	WorkItemTracking func(context.Context, *azuredevops.Connection) (workitemtracking.Client, error)
	Core             func(context.Context, *azuredevops.Connection) (core.Client, error)
	Build            func(context.Context, *azuredevops.Connection) (build.Client, error)
	Git              func(context.Context, *azuredevops.Connection) (git.Client, error)
}

// DefaultClientFactories returns the SDK constructors.
func DefaultClientFactories() ClientFactories {
	return ClientFactories{
		Wiki:             wiki.NewClient,
		WorkItemTracking: workitemtracking.NewClient,
		Core:             core.NewClient,
		Build:            build.NewClient,
		Git:              git.NewClient,
	}
}

// Session is an authenticated connection plus the identity the handshake
// returned. Sub-area clients are created on first use and then shared.
type Session struct {
	OrgURL    string
	Identity  base.Identity
	CreatedAt time.Time

	conn    *azuredevops.Connection
	mu      sync.Mutex
	clients map[string]any
}

// Connection returns the underlying SDK connection.
func (s *Session) Connection() *azuredevops.Connection {
	return s.conn
}

// Provider hands out sessions and sub-area clients.
type Provider struct {
	cfg       *config.Config
	prober    Prober
	factories ClientFactories
	logger    *slog.Logger

	sessions *infra.Cache[*Session]
	projects *infra.Cache[uuid.UUID]
	dedup    *infra.Deduplicator[*Session]

	// generation is bumped by Invalidate and Close. A handshake that started
	// under an older generation does not cache its session.
	genMu      sync.Mutex
	generation uint64
}

// Option configures the Provider
type Option func(*Provider)

// WithProber replaces the handshake prober
func WithProber(p Prober) Option {
	return func(pr *Provider) {
		pr.prober = p
	}
}

// WithClientFactories replaces the SDK client constructors
func WithClientFactories(f ClientFactories) Option {
	return func(pr *Provider) {
		pr.factories = f
	}
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) Option {
	return func(pr *Provider) {
		pr.logger = l
	}
}

// NewProvider creates a Provider for cfg. No network call is made until the
// first operation needs a session.
func NewProvider(cfg *config.Config, opts ...Option) *Provider {
	p := &Provider{
		cfg:       cfg,
		factories: DefaultClientFactories(),
		logger:    slog.Default(),
		sessions:  infra.NewCache[*Session](1),
		projects:  infra.NewCache[uuid.UUID](infra.DefaultMaxCacheEntries),
		dedup:     infra.NewDeduplicator[*Session](),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.prober == nil {
		p.prober = base.NewClient(
			base.WithTimeout(cfg.Timeout),
			base.WithUserAgent(cfg.UserAgent),
			base.WithLogger(p.logger),
		)
	}
	return p
}

// OrgURL returns the configured organization URL.
func (p *Provider) OrgURL() string {
	return p.cfg.OrgURL
}

// DefaultProject returns the project used when a call names none.
func (p *Provider) DefaultProject() string {
	return p.cfg.Project
}

// Session returns a live session, performing a handshake when none is cached.
// Concurrent callers that all miss the cache share a single handshake, which
// runs detached from any one caller's cancellation; each caller still stops
// waiting when its own ctx is done.
func (p *Provider) Session(ctx context.Context) (*Session, error) {
	if s, ok := p.sessions.Get(sessionKey); ok {
		metrics.RecordCacheAccess("session", true)
		return s, nil
	}
	metrics.RecordCacheAccess("session", false)

	s, shared, err := p.dedup.Do(ctx, sessionKey, func() (*Session, error) {
		return p.connect(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	if shared {
		p.logger.Debug("Shared in-flight handshake", "org", p.cfg.OrgURL)
	}
	return s, nil
}

// Connect always performs a fresh handshake, replacing any cached session.
func (p *Provider) Connect(ctx context.Context) (*Session, error) {
	p.sessions.Delete(sessionKey)
	return p.Session(ctx)
}

func (p *Provider) connect(ctx context.Context) (*Session, error) {
	p.genMu.Lock()
	gen := p.generation
	p.genMu.Unlock()
	conn := azuredevops.NewPatConnection(p.cfg.OrgURL, p.cfg.PAT)

	start := time.Now()
	data, err := p.prober.Probe(ctx, p.cfg.OrgURL, conn.AuthorizationString)
	metrics.RecordHandshake(time.Since(start).Seconds(), err == nil)
	if err != nil {
		metrics.AuthFailures.WithLabelValues(failureReason(err)).Inc()
		p.logger.Warn("Azure DevOps handshake failed", "org", p.cfg.OrgURL, "error", err)
		return nil, apperrors.NewAuthenticationError(p.cfg.OrgURL, err)
	}

	s := &Session{
		OrgURL:    p.cfg.OrgURL,
		Identity:  data.AuthenticatedUser,
		CreatedAt: time.Now(),
		conn:      conn,
		clients:   make(map[string]any),
	}
	p.genMu.Lock()
	current := p.generation == gen
	if current {
		p.sessions.Set(sessionKey, s, p.cfg.SessionTTL)
	}
	p.genMu.Unlock()
	if !current {
		p.logger.Debug("Session invalidated during handshake, not caching", "org", p.cfg.OrgURL)
		return s, nil
	}

	p.logger.Info("Connected to Azure DevOps",
		"org", p.cfg.OrgURL,
		"user", data.AuthenticatedUser.ProviderDisplayName,
		"session_ttl", p.cfg.SessionTTL)
	return s, nil
}

// Invalidate drops the cached session and resolved project IDs so the next
// call performs a handshake.
func (p *Provider) Invalidate() {
	p.bumpGeneration()
	p.projects.DeletePrefix("project:")
	metrics.SessionInvalidations.WithLabelValues("unauthorized").Inc()
	p.logger.Info("Azure DevOps session invalidated", "org", p.cfg.OrgURL)
}

// bumpGeneration drops the cached session so no in-flight handshake can
// store one afterwards.
func (p *Provider) bumpGeneration() {
	p.genMu.Lock()
	defer p.genMu.Unlock()
	p.generation++
	p.sessions.Delete(sessionKey)
}

// Close releases the cached session and stops cache sweepers.
func (p *Provider) Close() {
	p.bumpGeneration()
	p.sessions.Close()
	p.projects.Close()
}

// WikiClient returns the wiki sub-area client.
func (p *Provider) WikiClient(ctx context.Context) (wiki.Client, error) {
	s, err := p.Session(ctx)
	if err != nil {
		return nil, err
	}
	return subClient(ctx, s, AreaWiki, p.factories.Wiki)
}

// WorkItemTrackingClient returns the work item tracking sub-area client.
func (p *Provider) WorkItemTrackingClient(ctx context.Context) (workitemtracking.Client, error) {
	s, err := p.Session(ctx)
	if err != nil {
		return nil, err
	}
	return subClient(ctx, s, AreaWorkItem, p.factories.WorkItemTracking)
}

// CoreClient returns the core (projects) sub-area client.
func (p *Provider) CoreClient(ctx context.Context) (core.Client, error) {
	s, err := p.Session(ctx)
	if err != nil {
		return nil, err
	}
	return subClient(ctx, s, AreaCore, p.factories.Core)
}

// BuildClient returns the build sub-area client.
func (p *Provider) BuildClient(ctx context.Context) (build.Client, error) {
	s, err := p.Session(ctx)
	if err != nil {
		return nil, err
	}
	return subClient(ctx, s, AreaBuild, p.factories.Build)
}

// GitClient returns the git sub-area client.
func (p *Provider) GitClient(ctx context.Context) (git.Client, error) {
	s, err := p.Session(ctx)
	if err != nil {
		return nil, err
	}
	return subClient(ctx, s, AreaGit, p.factories.Git)
}

// subClient returns the session's client for area, creating it on first use.
// The SDK resolves the area's location during construction, which is an
// authenticated call, so construction failures are authentication failures.
func subClient[T any](ctx context.Context, s *Session, area string, newFn func(context.Context, *azuredevops.Connection) (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.clients[area]; ok {
		return c.(T), nil
	}

	c, err := newFn(ctx, s.conn)
	if err != nil {
		var zero T
		return zero, apperrors.NewAuthenticationError(s.OrgURL, fmt.Errorf("failed to create %s client: %w", area, err))
	}
	s.clients[area] = c
	return c, nil
}

// ProjectID resolves a project name or ID to its UUID. An empty argument
// means the default project. Names are resolved once per session TTL.
func (p *Provider) ProjectID(ctx context.Context, nameOrID string) (uuid.UUID, error) {
	if nameOrID == "" {
		nameOrID = p.cfg.Project
	}
	if id, err := uuid.Parse(nameOrID); err == nil {
		return id, nil
	}

	key := "project:" + strings.ToLower(nameOrID)
	if id, ok := p.projects.Get(key); ok {
		metrics.RecordCacheAccess("project", true)
		return id, nil
	}
	metrics.RecordCacheAccess("project", false)

	client, err := p.CoreClient(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	ctx, done := Track(ctx, AreaCore, "get_project", nameOrID)
	project, err := client.GetProject(ctx, core.GetProjectArgs{ProjectId: &nameOrID})
	if err != nil {
		if StatusCode(err) == 404 {
			err = apperrors.NewNotFoundError("project", nameOrID)
		} else {
			err = WrapAPIError(p, "get project", err)
		}
		done(err)
		return uuid.Nil, err
	}
	if project == nil || project.Id == nil {
		err = apperrors.NewAPIError("failed to get project: response has no id", 0, nil)
		done(err)
		return uuid.Nil, err
	}
	done(nil)

	p.projects.Set(key, *project.Id, p.cfg.SessionTTL)
	return *project.Id, nil
}

func failureReason(err error) string {
	var open *infra.ErrCircuitOpen
	var he *base.HandshakeError
	switch {
	case errors.As(err, &open):
		return "circuit_open"
	case errors.As(err, &he):
		return fmt.Sprintf("status_%d", he.StatusCode)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "transport"
	}
}
