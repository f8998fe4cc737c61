// Package handlers implements the JSON API of the builder: accounts,
// projects and their element and schema trees, code generation, previews,
// share links, deploys and the live channel.
package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"pagecraft/internal/assistant"
	"pagecraft/internal/engine"
	"pagecraft/internal/library"
	"pagecraft/internal/live"
	"pagecraft/internal/models"
	"pagecraft/internal/session"
	"pagecraft/internal/share"
	"pagecraft/internal/storage"
	"pagecraft/internal/store"
)

// ProjectStore is the project persistence used by the API. store.ProjectStore
// implements it.
type ProjectStore interface {
	FindByID(id uuid.UUID) (*models.Project, error)
	FindBySlug(slug string) (*models.Project, error)
	SlugExists(slug string) (bool, error)
	ListByOwner(ownerID uuid.UUID) ([]models.Project, error)
	ListAll() ([]models.Project, error)
	Create(p *models.Project) (*models.Project, error)
	Save(p *models.Project, note string) (*models.Project, error)
	SetGeneratedCode(id uuid.UUID, version int, code models.Artifacts) error
	Rename(id uuid.UUID, name, description string) (*models.Project, error)
	Delete(id uuid.UUID) error
}

// RevisionStore is implemented by store.RevisionStore.
type RevisionStore interface {
	ListByProject(projectID uuid.UUID) ([]models.Revision, error)
	FindByID(id uuid.UUID) (*models.Revision, error)
	Restore(revisionID uuid.UUID) (*models.Project, error)
}

// UserStore is implemented by store.UserStore.
type UserStore interface {
	FindByEmail(email string) (*models.User, error)
	FindByID(id uuid.UUID) (*models.User, error)
	Create(email, password, displayName string, role models.Role) (*models.User, error)
	SetTOTPSecret(userID uuid.UUID, secret string) error
	EnableTOTP(userID uuid.UUID) error
	CheckPassword(user *models.User, password string) bool
}

// SessionStore is implemented by session.Store.
type SessionStore interface {
	Replace(ctx context.Context, w http.ResponseWriter, r *http.Request, data *session.Data) (string, error)
	Update(ctx context.Context, r *http.Request, data *session.Data) error
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// InvalidationLog is implemented by store.CacheLogStore.
type InvalidationLog interface {
	Log(entityType string, entityID uuid.UUID, action string)
}

// Compile-time checks that the concrete stores fit.
var (
	_ ProjectStore    = (*store.ProjectStore)(nil)
	_ RevisionStore   = (*store.RevisionStore)(nil)
	_ UserStore       = (*store.UserStore)(nil)
	_ SessionStore    = (*session.Store)(nil)
	_ InvalidationLog = (*store.CacheLogStore)(nil)
)

// Deps are the collaborators of the builder API. Storage may be nil when
// object storage is not configured; CacheLog may be nil.
type Deps struct {
	Projects  ProjectStore
	Revisions RevisionStore
	CacheLog  InvalidationLog
	Engine    *engine.Engine
	Library   *library.Library
	Assistant *assistant.Assistant
	Hub       *live.Hub
	Share     *share.Signer
	Storage   storage.Bucket
	// Origins are the browser origins allowed to open the live channel.
	Origins []string
}

// API groups the builder endpoints.
type API struct {
	projects  ProjectStore
	revisions RevisionStore
	cacheLog  InvalidationLog
	engine    *engine.Engine
	library   *library.Library
	assistant *assistant.Assistant
	hub       *live.Hub
	share     *share.Signer
	storage   storage.Bucket
	// liveOrigins are host patterns for the websocket origin check.
	liveOrigins []string
}

// NewAPI creates the builder handler group.
func NewAPI(d Deps) *API {
	lib := d.Library
	if lib == nil {
		lib = library.Default()
	}
	asst := d.Assistant
	if asst == nil {
		asst = assistant.New(nil)
	}
	hub := d.Hub
	if hub == nil {
		hub = live.NewHub()
	}
	return &API{
		projects:    d.Projects,
		revisions:   d.Revisions,
		cacheLog:    d.CacheLog,
		engine:      d.Engine,
		library:     lib,
		assistant:   asst,
		hub:         hub,
		share:       d.Share,
		storage:     d.Storage,
		liveOrigins: originHosts(d.Origins),
	}
}

// originHosts turns origins such as http://localhost:5173 into the host
// patterns the websocket upgrader matches against.
func originHosts(origins []string) []string {
	var hosts []string
	for _, o := range origins {
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			continue
		}
		hosts = append(hosts, u.Host)
	}
	return hosts
}

// Health reports that the process is serving.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Library returns the component palette grouped by category.
func (a *API) Library(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": a.library.ByCategory()})
}

// publish sends a project event to live subscribers.
func (a *API) publish(evtType string, p *models.Project, data any) {
	a.hub.Publish(p.ID.String(), live.Event{
		Type:      evtType,
		ProjectID: p.ID.String(),
		Version:   p.Version,
		Data:      data,
	})
}
