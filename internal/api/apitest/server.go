// Package apitest runs an in-memory back-office backend for tests.
//
// The server speaks the same routes and JSON shapes as the real backend, keeps its state in
// maps guarded by one mutex and records every request so tests can assert on exact payloads.
package apitest

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/kantoor/internal/api"
	"github.com/Veraticus/kantoor/internal/model"
)

// Token is the API token the server accepts.
const Token = "test-token"

// Request is one recorded call.
type Request struct {
	Method    string
	Path      string
	Query     string
	RequestID string
	Body      []byte
}

type failure struct {
	body   any
	status int
}

// Server is the fake backend.
type Server struct {
	*httptest.Server

	Documents    map[int]*model.Document
	Signatures   map[int]*model.SavedSignature
	Imports      map[int]*model.InvoiceImport
	Patterns     map[int]*model.ExtractionPattern
	Mailboxes    map[int]*model.MailboxConfig
	EmailImports map[int]*model.EmailImport
	TimeEntries  map[int]*model.TimeEntry
	Groups       map[int]*model.NotificationGroup
	Schedules    map[int]*model.NotificationSchedule
	Sent         map[int]*model.SentNotification
	Expenses     map[int]*model.Expense
	Categories   map[int]*model.ExpenseCategory
	PushSettings model.PushSettings
	Leave        []model.LeaveRequest
	Revenue      map[string][]model.RevenuePoint
	Corrections  map[int][]model.Corrections
	Conversions  map[int][]model.ConvertToInvoiceData
	Signed       map[int][]model.SignRequest
	PageImage    []byte
	PageSize     int

	// RegionText answers extract_region; the default echoes the requested field.
	RegionText func(importID int, req model.RegionRequest) (string, error)

	engine   *gin.Engine
	failures map[string][]failure
	requests []Request
	nextID   int
	mu       sync.Mutex
}

// NewServer starts a fake backend that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		Documents:    make(map[int]*model.Document),
		Signatures:   make(map[int]*model.SavedSignature),
		Imports:      make(map[int]*model.InvoiceImport),
		Patterns:     make(map[int]*model.ExtractionPattern),
		Mailboxes:    make(map[int]*model.MailboxConfig),
		EmailImports: make(map[int]*model.EmailImport),
		TimeEntries:  make(map[int]*model.TimeEntry),
		Groups:       make(map[int]*model.NotificationGroup),
		Schedules:    make(map[int]*model.NotificationSchedule),
		Sent:         make(map[int]*model.SentNotification),
		Expenses:     make(map[int]*model.Expense),
		Categories:   make(map[int]*model.ExpenseCategory),
		Revenue:      make(map[string][]model.RevenuePoint),
		Corrections:  make(map[int][]model.Corrections),
		Conversions:  make(map[int][]model.ConvertToInvoiceData),
		Signed:       make(map[int][]model.SignRequest),
		PageImage:    blankPNG(200, 300),
		PageSize:     50,
		failures:     make(map[string][]failure),
		nextID:       1,
	}
	s.PushSettings = model.PushSettings{ID: 1, Provider: "vapid", VAPIDSubject: "mailto:kantoor@example.nl"}
	s.RegionText = func(_ int, req model.RegionRequest) (string, error) {
		return "region:" + req.Field, nil
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.record(), s.authenticate(), s.injectFailures())
	s.routes()

	s.Server = httptest.NewServer(s.engine)
	t.Cleanup(s.Close)
	return s
}

// Client returns an API client pointed at the server.
func (s *Server) Client(t testing.TB, opts ...api.Option) *api.Client {
	t.Helper()
	client, err := api.New(api.Config{BaseURL: s.URL, Token: Token}, opts...)
	if err != nil {
		t.Fatalf("api client: %v", err)
	}
	return client
}

// Fail makes the next request to method+path answer with status and body.
func (s *Server) Fail(method, path string, status int, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.failures[key] = append(s.failures[key], failure{status: status, body: body})
}

// Requests returns a copy of every recorded request.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo returns the recorded requests for method+path.
func (s *Server) RequestsTo(method, path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Lock guards direct access to the state maps while the server runs.
func (s *Server) Lock() { s.mu.Lock() }

// Unlock releases Lock.
func (s *Server) Unlock() { s.mu.Unlock() }

func (s *Server) id() int {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Query:     c.Request.URL.RawQuery,
			RequestID: c.GetHeader("X-Request-ID"),
			Body:      body,
		})
		s.mu.Unlock()

		c.Next()
	}
}

func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Token "+Token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Authenticatiegegevens zijn niet opgegeven.",
			})
			return
		}
		c.Next()
	}
}

func (s *Server) injectFailures() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Request.Method + " " + c.Request.URL.Path

		s.mu.Lock()
		queue := s.failures[key]
		var f *failure
		if len(queue) > 0 {
			f = &queue[0]
			s.failures[key] = queue[1:]
		}
		s.mu.Unlock()

		if f != nil {
			if f.body == nil {
				c.AbortWithStatus(f.status)
			} else {
				c.AbortWithStatusJSON(f.status, f.body)
			}
			return
		}
		c.Next()
	}
}

func idParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		notFound(c)
		return 0, false
	}
	return id, true
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": "Niet gevonden."})
}

func badRequest(c *gin.Context, field, message string) {
	c.JSON(http.StatusBadRequest, gin.H{field: []string{message}})
}

func sorted[T any](m map[int]*T) []T {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, *m[k])
	}
	return out
}

// paginate wraps results in the page envelope, honoring ?page=.
func paginate[T any](c *gin.Context, results []T, size int) model.Page[T] {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	start := (page - 1) * size
	if start > len(results) {
		start = len(results)
	}
	end := start + size
	if end > len(results) {
		end = len(results)
	}

	out := model.Page[T]{Count: len(results), Results: results[start:end]}
	if out.Results == nil {
		out.Results = []T{}
	}
	base := fmt.Sprintf("http://%s%s", c.Request.Host, c.Request.URL.Path)
	if end < len(results) {
		next := fmt.Sprintf("%s?page=%d", base, page+1)
		out.Next = &next
	}
	if page > 1 {
		prev := fmt.Sprintf("%s?page=%d", base, page-1)
		out.Previous = &prev
	}
	return out
}

func blankPNG(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func (s *Server) routes() {
	a := s.engine.Group("/api")
	s.documentRoutes(a)
	s.importRoutes(a)
	s.emailRoutes(a)
	s.timeEntryRoutes(a)
	s.pushRoutes(a)
	s.expenseRoutes(a)

	a.GET("/leave/requests/", s.listLeave)
}
