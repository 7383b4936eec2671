package testutil

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	fakeSigningKey = "fake-api-signing-key"
	fakeTokenTTL   = time.Hour

	roleCtxKey   = "role"
	userIDCtxKey = "user_id"
)

// Light parameters; the defaults allocate 64 MiB per hash.
var fakeHashParams = &argon2id.Params{
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

type fakeUser struct {
	id   int64
	hash string
	role string
}

type fakeTask struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Completed   bool    `json:"completed"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   *string `json:"updated_at"`
	UserID      int64   `json:"user_id"`
}

// FakeAPI is an in-process implementation of the remote task API.
// It issues real HS256 tokens and enforces ownership the way the
// production server does.
type FakeAPI struct {
	Server *httptest.Server

	mu         sync.Mutex
	users      map[string]*fakeUser
	tasks      map[int64]*fakeTask
	nextUserID int64
	nextTaskID int64
	requests   atomic.Int64
	listBody   string

	// Now is the clock used for token issue and timestamps.
	Now func() time.Time
}

// NewFakeAPI starts a FakeAPI and stops it when the test ends.
func NewFakeAPI(t testing.TB) *FakeAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := &FakeAPI{
		users:      make(map[string]*fakeUser),
		tasks:      make(map[int64]*fakeTask),
		nextUserID: 1,
		nextTaskID: 1,
		Now:        time.Now,
	}
	api.Server = httptest.NewServer(api.routes())
	t.Cleanup(api.Server.Close)
	return api
}

// URL returns the base URL of the server.
func (a *FakeAPI) URL() string { return a.Server.URL }

// Requests returns how many HTTP requests the server has received.
func (a *FakeAPI) Requests() int64 { return a.requests.Load() }

// SetListBody makes every successful list response return body verbatim.
// An empty body restores normal responses.
func (a *FakeAPI) SetListBody(body string) {
	a.mu.Lock()
	a.listBody = body
	a.mu.Unlock()
}

// AddUser registers a user directly, bypassing HTTP.
func (a *FakeAPI) AddUser(t testing.TB, username, password, role string) {
	t.Helper()
	if _, err := a.createUser(username, password, role); err != nil {
		t.Fatalf("add user %s: %v", username, err)
	}
}

// IssueToken signs a token for an existing user, optionally already expired.
func (a *FakeAPI) IssueToken(t testing.TB, username string, ttl time.Duration) string {
	t.Helper()
	a.mu.Lock()
	u, ok := a.users[username]
	a.mu.Unlock()
	if !ok {
		t.Fatalf("no such user: %s", username)
	}
	tok, err := a.sign(u, ttl)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func (a *FakeAPI) routes() *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		a.requests.Add(1)
		c.Next()
	})

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "Task Manager API running"})
	})

	auth := r.Group("/auth")
	auth.POST("/register", a.handleRegister)
	auth.POST("/login", a.handleLogin)

	tasks := r.Group("/tasks", a.requireToken)
	tasks.GET("", a.handleListTasks)
	tasks.POST("", a.handleCreateTask)
	tasks.GET("/:id", a.handleGetTask)
	tasks.PUT("/:id", a.handleUpdateTask)
	tasks.DELETE("/:id", a.handleDeleteTask)

	return r
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

var errUsernameTaken = errors.New("username already taken")

func (a *FakeAPI) createUser(username, password, role string) (*fakeUser, error) {
	hash, err := argon2id.CreateHash(password, fakeHashParams)
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = "user"
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.users[username]; ok {
		return nil, errUsernameTaken
	}
	u := &fakeUser{id: a.nextUserID, hash: hash, role: role}
	a.nextUserID++
	a.users[username] = u
	return u, nil
}

func (a *FakeAPI) handleRegister(c *gin.Context) {
	var req credentialsRequest
	_ = c.ShouldBindJSON(&req)
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "username and password required"})
		return
	}

	u, err := a.createUser(req.Username, req.Password, req.Role)
	if errors.Is(err, errUsernameTaken) {
		c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"msg": "user created", "id": u.id})
}

func (a *FakeAPI) handleLogin(c *gin.Context) {
	var req credentialsRequest
	_ = c.ShouldBindJSON(&req)
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "username and password required"})
		return
	}

	a.mu.Lock()
	u, ok := a.users[req.Username]
	a.mu.Unlock()
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "bad username or password"})
		return
	}
	match, err := argon2id.ComparePasswordAndHash(req.Password, u.hash)
	if err != nil || !match {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "bad username or password"})
		return
	}

	tok, err := a.sign(u, fakeTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": tok})
}

func (a *FakeAPI) sign(u *fakeUser, ttl time.Duration) (string, error) {
	now := a.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(u.id, 10),
		"role": u.role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(fakeSigningKey))
}

// requireToken mirrors the production JWT layer: 401 for a missing or
// expired token, 422 for one that does not parse.
func (a *FakeAPI) requireToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Missing Authorization Header"})
		return
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"msg": "Bad Authorization header"})
		return
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(parts[1], claims, func(*jwt.Token) (any, error) {
		return []byte(fakeSigningKey), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(a.Now))
	if errors.Is(err, jwt.ErrTokenExpired) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Token has expired"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"msg": err.Error()})
		return
	}

	sub, _ := claims.GetSubject()
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"msg": "invalid subject"})
		return
	}
	role, _ := claims["role"].(string)
	c.Set(userIDCtxKey, userID)
	c.Set(roleCtxKey, role)
	c.Next()
}

func (a *FakeAPI) handleListTasks(c *gin.Context) {
	userID := c.GetInt64(userIDCtxKey)
	admin := c.GetString(roleCtxKey) == "admin"

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	var want *bool
	switch strings.ToLower(c.Query("completed")) {
	case "true", "1":
		v := true
		want = &v
	case "false", "0":
		v := false
		want = &v
	}

	a.mu.Lock()
	var matched []fakeTask
	for id := a.nextTaskID - 1; id >= 1; id-- {
		t, ok := a.tasks[id]
		if !ok || (!admin && t.UserID != userID) {
			continue
		}
		if want != nil && t.Completed != *want {
			continue
		}
		matched = append(matched, *t)
	}
	override := a.listBody
	a.mu.Unlock()

	if override != "" {
		c.Data(http.StatusOK, "application/json", []byte(override))
		return
	}

	items := []fakeTask{}
	start := (page - 1) * perPage
	if start < len(matched) {
		items = matched[start:min(start+perPage, len(matched))]
	}
	c.JSON(http.StatusOK, gin.H{
		"tasks":    items,
		"page":     page,
		"per_page": perPage,
		"total":    len(matched),
		"pages":    int(math.Ceil(float64(len(matched)) / float64(perPage))),
	})
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

func (a *FakeAPI) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	_ = c.ShouldBindJSON(&req)
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "title is required"})
		return
	}

	now := a.Now()
	a.mu.Lock()
	t := &fakeTask{
		ID:          a.nextTaskID,
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		CreatedAt:   now.UTC().Format(time.RFC3339Nano),
		UserID:      c.GetInt64(userIDCtxKey),
	}
	a.nextTaskID++
	a.tasks[t.ID] = t
	out := *t
	a.mu.Unlock()

	c.JSON(http.StatusCreated, out)
}

// lookup resolves :id and checks ownership. It writes the error response
// itself and returns nil when the handler should stop.
func (a *FakeAPI) lookup(c *gin.Context) *fakeTask {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusNotFound, notFoundPage)
		return nil
	}
	t, ok := a.tasks[id]
	if !ok {
		c.String(http.StatusNotFound, notFoundPage)
		return nil
	}
	if c.GetString(roleCtxKey) != "admin" && t.UserID != c.GetInt64(userIDCtxKey) {
		c.JSON(http.StatusForbidden, gin.H{"msg": "forbidden"})
		return nil
	}
	return t
}

// The production server answers unknown ids with an HTML page, not JSON.
const notFoundPage = "<!doctype html>\n<title>404 Not Found</title>\n<h1>Not Found</h1>\n"

func (a *FakeAPI) handleGetTask(c *gin.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	t := a.lookup(c)
	if t == nil {
		return
	}
	c.JSON(http.StatusOK, t)
}

func (a *FakeAPI) handleUpdateTask(c *gin.Context) {
	var req map[string]any
	_ = c.ShouldBindJSON(&req)

	a.mu.Lock()
	defer a.mu.Unlock()
	t := a.lookup(c)
	if t == nil {
		return
	}
	if v, ok := req["title"].(string); ok {
		t.Title = v
	}
	if v, ok := req["description"].(string); ok {
		t.Description = v
	}
	if v, ok := req["completed"]; ok {
		b, _ := v.(bool)
		t.Completed = b
	}
	ts := a.Now().UTC().Format(time.RFC3339Nano)
	t.UpdatedAt = &ts
	c.JSON(http.StatusOK, t)
}

func (a *FakeAPI) handleDeleteTask(c *gin.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	t := a.lookup(c)
	if t == nil {
		return
	}
	delete(a.tasks, t.ID)
	c.JSON(http.StatusOK, gin.H{"msg": fmt.Sprintf("deleted %d", t.ID)})
}
