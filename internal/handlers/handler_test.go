// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure: in-memory stores
// standing in for PostgreSQL and Valkey, and a chi router mounting the
// handlers under their production paths.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pagecraft/internal/engine"
	"pagecraft/internal/live"
	"pagecraft/internal/middleware"
	"pagecraft/internal/models"
	"pagecraft/internal/session"
	"pagecraft/internal/share"
	"pagecraft/internal/store"
)

// ---------- projects and revisions ----------

type memProjects struct {
	mu         sync.Mutex
	projects   map[uuid.UUID]*models.Project
	revisions  []models.Revision
	// conflicts makes the next n saves fail with ErrVersionConflict.
	conflicts  int
	// onConflict, when set, runs on the stored project for each forced
	// conflict, standing in for the concurrent writer.
	onConflict func(p *models.Project)
}

func newMemProjects() *memProjects {
	return &memProjects{projects: make(map[uuid.UUID]*models.Project)}
}

func cloneProject(p *models.Project) *models.Project {
	out := *p
	out.Elements, out.Tables = p.Snapshot()
	if out.Elements == nil {
		out.Elements = []models.Element{}
	}
	if out.Tables == nil {
		out.Tables = []models.Table{}
	}
	return &out
}

func (m *memProjects) FindByID(id uuid.UUID) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.projects[id]; ok {
		return cloneProject(p), nil
	}
	return nil, nil
}

func (m *memProjects) FindBySlug(s string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.projects {
		if p.Slug == s {
			return cloneProject(p), nil
		}
	}
	return nil, nil
}

func (m *memProjects) SlugExists(s string) (bool, error) {
	p, err := m.FindBySlug(s)
	return p != nil, err
}

func (m *memProjects) ListByOwner(owner uuid.UUID) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Project{}
	for _, p := range m.projects {
		if p.OwnerID == owner {
			out = append(out, *cloneProject(p))
		}
	}
	return out, nil
}

func (m *memProjects) ListAll() ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Project{}
	for _, p := range m.projects {
		out = append(out, *cloneProject(p))
	}
	return out, nil
}

func (m *memProjects) revise(p *models.Project, note string) {
	m.revisions = append(m.revisions, models.Revision{
		ID: uuid.New(), ProjectID: p.ID, Version: p.Version,
		Elements: models.CloneForest(p.Elements), Tables: models.CloneTables(p.Tables),
		Note: note, CreatedAt: time.Now(),
	})
}

func (m *memProjects) Create(p *models.Project) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := cloneProject(p)
	c.ID = uuid.New()
	c.Version = 1
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.projects[c.ID] = c
	m.revise(c, "Created")
	return cloneProject(c), nil
}

func (m *memProjects) Save(p *models.Project, note string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.projects[p.ID]
	if m.conflicts > 0 {
		m.conflicts--
		cur.Version++
		if m.onConflict != nil {
			m.onConflict(cur)
		}
		return nil, store.ErrVersionConflict
	}
	if !ok || cur.Version != p.Version {
		return nil, store.ErrVersionConflict
	}
	c := cloneProject(p)
	c.Version = cur.Version + 1
	c.Code = models.Artifacts{}
	c.UpdatedAt = time.Now()
	m.projects[c.ID] = c
	m.revise(c, note)
	return cloneProject(c), nil
}

func (m *memProjects) SetGeneratedCode(id uuid.UUID, version int, code models.Artifacts) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.projects[id]; ok && p.Version == version {
		p.Code = code
	}
	return nil
}

func (m *memProjects) Rename(id uuid.UUID, name, description string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, nil
	}
	p.Name, p.Description = name, description
	p.Version++
	return cloneProject(p), nil
}

func (m *memProjects) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.projects, id)
	return nil
}

func (m *memProjects) ListByProject(id uuid.UUID) ([]models.Revision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Revision{}
	for i := len(m.revisions) - 1; i >= 0; i-- {
		if m.revisions[i].ProjectID == id {
			out = append(out, m.revisions[i])
		}
	}
	return out, nil
}

func (m *memProjects) FindRevision(id uuid.UUID) *models.Revision {
	for i := range m.revisions {
		if m.revisions[i].ID == id {
			r := m.revisions[i]
			return &r
		}
	}
	return nil
}

// memRevisions adapts memProjects to RevisionStore.
type memRevisions struct{ m *memProjects }

func (r memRevisions) ListByProject(id uuid.UUID) ([]models.Revision, error) {
	return r.m.ListByProject(id)
}

func (r memRevisions) FindByID(id uuid.UUID) (*models.Revision, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.FindRevision(id), nil
}

func (r memRevisions) Restore(id uuid.UUID) (*models.Project, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	rev := r.m.FindRevision(id)
	if rev == nil {
		return nil, nil
	}
	p, ok := r.m.projects[rev.ProjectID]
	if !ok {
		return nil, nil
	}
	p.Elements = models.CloneForest(rev.Elements)
	p.Tables = models.CloneTables(rev.Tables)
	p.Code = models.Artifacts{}
	p.Version++
	r.m.revise(p, fmt.Sprintf("Restored from version %d", rev.Version))
	return cloneProject(p), nil
}

// ---------- users and sessions ----------

type memUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
	pass  map[uuid.UUID]string
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[uuid.UUID]*models.User), pass: make(map[uuid.UUID]string)}
}

func (m *memUsers) FindByEmail(email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindByID(id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (m *memUsers) Create(email, password, displayName string, role models.Role) (*models.User, error) {
	if u, _ := m.FindByEmail(email); u != nil {
		return nil, store.ErrEmailTaken
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{ID: uuid.New(), Email: strings.ToLower(email), DisplayName: displayName, Role: role}
	m.users[u.ID] = u
	m.pass[u.ID] = password
	c := *u
	return &c, nil
}

func (m *memUsers) SetTOTPSecret(id uuid.UUID, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id].TOTPSecret = &secret
	return nil
}

func (m *memUsers) EnableTOTP(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id].TOTPEnabled = true
	return nil
}

func (m *memUsers) CheckPassword(u *models.User, password string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pass[u.ID] == password
}

// memSessions keeps one session per cookie value.
type memSessions struct {
	mu       sync.Mutex
	sessions map[string]*session.Data
	seq      int
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: make(map[string]*session.Data)}
}

func (m *memSessions) Replace(_ context.Context, w http.ResponseWriter, r *http.Request, data *session.Data) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, err := r.Cookie(session.CookieName); err == nil {
		delete(m.sessions, c.Value)
	}
	m.seq++
	id := fmt.Sprintf("sess-%d", m.seq)
	c := *data
	m.sessions[id] = &c
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: id, Path: "/"})
	return id, nil
}

func (m *memSessions) Get(_ context.Context, r *http.Request) (*session.Data, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := r.Cookie(session.CookieName)
	if err != nil {
		return nil, nil
	}
	if d, ok := m.sessions[c.Value]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, nil
}

func (m *memSessions) Update(_ context.Context, r *http.Request, data *session.Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := r.Cookie(session.CookieName)
	if err != nil {
		return session.ErrNoSession
	}
	cp := *data
	m.sessions[c.Value] = &cp
	return nil
}

func (m *memSessions) Destroy(_ context.Context, w http.ResponseWriter, r *http.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, err := r.Cookie(session.CookieName); err == nil {
		delete(m.sessions, c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "", Path: "/", MaxAge: -1})
	return nil
}

// ---------- cache log and bucket ----------

type memLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *memLog) Log(entityType string, id uuid.UUID, action string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entityType+":"+id.String()+":"+action)
}

type memBucket struct {
	mu      sync.Mutex
	objects map[string]string
}

func (b *memBucket) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = string(data)
	return nil
}

func (b *memBucket) FileURL(key string) string { return "https://sites.test/" + key }

func (b *memBucket) DeletePrefix(_ context.Context, prefix string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for k := range b.objects {
		if strings.HasPrefix(k, prefix) {
			delete(b.objects, k)
			n++
		}
	}
	return n, nil
}

// ---------- environment ----------

type testEnv struct {
	projects *memProjects
	users    *memUsers
	sessions *memSessions
	loader   middleware.SessionLoader
	log      *memLog
	bucket   *memBucket
	hub      *live.Hub
	engine   *engine.Engine
	api      *API
	auth     *Auth
	router   chi.Router
}

type envOption func(*Deps)

func withoutStorage() envOption { return func(d *Deps) { d.Storage = nil } }

func withEngine(e *engine.Engine) envOption { return func(d *Deps) { d.Engine = e } }

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	signer, err := share.NewSigner("handlers-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	env := &testEnv{
		projects: newMemProjects(),
		users:    newMemUsers(),
		sessions: newMemSessions(),
		log:      &memLog{},
		bucket:   &memBucket{objects: make(map[string]string)},
		hub:      live.NewHub(),
		engine:   engine.New(0),
	}
	deps := Deps{
		Projects:  env.projects,
		Revisions: memRevisions{env.projects},
		CacheLog:  env.log,
		Engine:    env.engine,
		Hub:       env.hub,
		Share:     signer,
		Storage:   env.bucket,
	}
	for _, o := range opts {
		o(&deps)
	}
	env.engine = deps.Engine
	env.loader = env.sessions
	env.api = NewAPI(deps)
	env.auth = NewAuth(env.sessions, env.users)
	env.router = env.routes()
	return env
}

// routes mounts the handlers like the production router does, minus CSRF
// and rate limiting which have their own tests.
func (e *testEnv) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.LoadSession(e.loader))

	r.Get("/health", e.api.Health)
	r.Get("/share/{token}", e.api.SharedPreview)

	r.Post("/api/auth/register", e.auth.Register)
	r.Post("/api/auth/login", e.auth.Login)
	r.Post("/api/auth/logout", e.auth.Logout)
	r.With(middleware.RequireSession).Get("/api/auth/me", e.auth.Me)
	r.With(middleware.RequireSession).Post("/api/auth/2fa/verify", e.auth.TwoFAVerify)
	r.With(middleware.RequireAuth).Get("/api/auth/2fa/setup", e.auth.TwoFASetup)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/api/library", e.api.Library)
		r.Post("/api/generate", e.api.Generate)
		r.Post("/api/generate/backend", e.api.GenerateBackend)
		r.Get("/api/assistant/suggestions", e.api.Suggestions)
		r.Post("/api/assistant/messages", e.api.AssistantMessage)
		r.Get("/api/projects", e.api.ListProjects)
		r.Post("/api/projects", e.api.CreateProject)
		r.Route("/api/projects/{id}", func(r chi.Router) {
			r.Get("/", e.api.GetProject)
			r.Put("/", e.api.UpdateProject)
			r.Delete("/", e.api.DeleteProject)
			r.Post("/elements", e.api.AddElement)
			r.Patch("/elements/{elementID}", e.api.UpdateElement)
			r.Delete("/elements/{elementID}", e.api.DeleteElement)
			r.Put("/snapshot", e.api.ReplaceSnapshot)
			r.Post("/tables", e.api.AddTable)
			r.Patch("/tables/{tableID}", e.api.RenameTable)
			r.Delete("/tables/{tableID}", e.api.DeleteTable)
			r.Post("/tables/{tableID}/fields", e.api.AddField)
			r.Patch("/tables/{tableID}/fields/{fieldID}", e.api.UpdateField)
			r.Delete("/tables/{tableID}/fields/{fieldID}", e.api.DeleteField)
			r.Post("/generate", e.api.GenerateProject)
			r.Post("/generate/backend", e.api.GenerateProjectBackend)
			r.Get("/code", e.api.ExportCode)
			r.Get("/preview", e.api.Preview)
			r.Post("/share", e.api.Share)
			r.Post("/deploy", e.api.Deploy)
			r.Get("/revisions", e.api.ListRevisions)
			r.Post("/revisions/{revID}/restore", e.api.RestoreRevision)
			r.Get("/live", e.api.Live)
		})
	})
	return r
}

// login creates a member account with a session and returns its cookie.
func (e *testEnv) login(t *testing.T, role models.Role) (*models.User, *http.Cookie) {
	t.Helper()
	u, err := e.users.Create(uuid.NewString()[:8]+"@pagecraft.local", "password123", "Tester", role)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	rr := httptest.NewRecorder()
	id, _ := e.sessions.Replace(context.Background(), rr, httptest.NewRequest(http.MethodGet, "/", nil), &session.Data{
		UserID: u.ID, Email: u.Email, Role: string(u.Role),
	})
	return u, &http.Cookie{Name: session.CookieName, Value: id}
}

// do sends a request through the test router. body may be nil, a string
// or any value encoded as JSON.
func (e *testEnv) do(t *testing.T, method, path string, cookie *http.Cookie, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rdr)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// createProject creates a project through the API.
func (e *testEnv) createProject(t *testing.T, cookie *http.Cookie, name string) *models.Project {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/projects", cookie, map[string]string{"name": name})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create project: %d %s", rr.Code, rr.Body.String())
	}
	var p models.Project
	decode(t, rr, &p)
	return &p
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decode(t, rr, &body)
	return body.Error
}

func projectPath(p *models.Project, suffix string) string {
	return "/api/projects/" + p.ID.String() + suffix
}
