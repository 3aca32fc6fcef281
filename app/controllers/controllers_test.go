package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wanpass/wanpass/app/models"
	"github.com/wanpass/wanpass/app/repository"
	"github.com/wanpass/wanpass/internal/pkg/auth"
	"github.com/wanpass/wanpass/internal/pkg/certificate"
	"github.com/wanpass/wanpass/internal/pkg/classify"
	"github.com/wanpass/wanpass/internal/pkg/middleware"
	"github.com/wanpass/wanpass/internal/pkg/profile"
	"github.com/wanpass/wanpass/internal/pkg/storage"
)

// stubBlob records puts and deletes in memory. failAfter > 0 makes every
// put from that count on fail, to exercise compensating deletes.
type stubBlob struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	putCount  int
	failAfter int
}

func newStubBlob() *stubBlob {
	return &stubBlob{objects: map[string][]byte{}}
}

func (b *stubBlob) Put(_ context.Context, data []byte, key, _ string) (*storage.UploadResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.putCount++
	if b.failAfter > 0 && b.putCount > b.failAfter {
		return nil, fmt.Errorf("stub put failure")
	}
	b.objects[key] = data
	return &storage.UploadResult{Key: key, URL: "http://blobs.test/" + key}, nil
}

func (b *stubBlob) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	b.deleted = append(b.deleted, key)
	return nil
}

type stubClassifier struct {
	analysis *classify.Analysis
	err      error
}

func (s *stubClassifier) Identify(context.Context, []byte) (*classify.Analysis, error) {
	return s.analysis, s.err
}

type stubNarrator struct {
	profile *profile.Profile
	err     error
}

func (s *stubNarrator) Generate(context.Context, profile.Request) (*profile.Profile, error) {
	return s.profile, s.err
}

type testEnv struct {
	app   *fiber.App
	repos *repository.Repositories
	blob  *stubBlob
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, &stubClassifier{analysis: dogAnalysis()}, &stubNarrator{err: fmt.Errorf("no narrator")})
}

func newTestEnvWith(t *testing.T, classifier classify.Classifier, narrator profile.Generator) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Admin{}, &models.Event{}, &models.License{}))

	repos := repository.NewRepositories(db)
	blob := newStubBlob()

	authController := NewAuthController(repos.Admin)
	eventController := NewEventController(repos.Event)
	adminEvents := NewAdminEventController(repos.Event, repos.License, blob)
	licenseController := NewLicenseController(repos.Event, repos.License, blob)
	petController := NewPetController(classifier, profile.NewService(narrator), certificate.NewGenerator("", ""), blob)

	app := fiber.New()
	api := app.Group("/api")
	api.Get("/events/:code", eventController.HandleGetEventByCode)

	licenses := api.Group("/licenses")
	licenses.Get("/by-event-id/:id", licenseController.HandleListLicensesByEventID)
	licenses.Get("/by-event-id/:id/paginated", licenseController.HandleListLicensesPaginatedByEventID)
	licenses.Get("/by-event-id/:id/new", licenseController.HandleListNewLicensesByEventID)
	licenses.Post("/:code/save", licenseController.HandleSaveLicense)
	licenses.Get("/:code", licenseController.HandleListLicensesByCode)
	licenses.Get("/:code/paginated", licenseController.HandleListLicensesPaginatedByCode)
	licenses.Get("/:code/new", licenseController.HandleListNewLicensesByCode)

	api.Post("/analyze-pet", petController.HandleAnalyzePet)
	api.Post("/generate-license", petController.HandleGenerateLicense)
	api.Post("/generate-profile", petController.HandleGenerateProfile)

	admin := api.Group("/admin")
	admin.Post("/login", authController.HandleLogin)
	admin.Use(middleware.RequireAdmin(repos.Admin))
	admin.Get("/me", authController.HandleMe)
	admin.Get("/events", adminEvents.HandleListEvents)
	admin.Post("/events", adminEvents.HandleCreateEvent)
	admin.Get("/events/:id", adminEvents.HandleGetEvent)
	admin.Put("/events/:id", adminEvents.HandleUpdateEvent)
	admin.Delete("/events/:id", adminEvents.HandleDeleteEvent)
	admin.Delete("/licenses/:id", licenseController.HandleDeleteLicense)

	return &testEnv{app: app, repos: repos, blob: blob}
}

func dogAnalysis() *classify.Analysis {
	return &classify.Analysis{
		AnimalType: "犬",
		Breed:      "柴犬",
		Color:      "茶色",
		Confidence: 0.97,
	}
}

func (e *testEnv) createEvent(t *testing.T, name string, active bool) *models.Event {
	t.Helper()
	event := &models.Event{Name: name, IssueLocation: "渋谷", IsActive: active}
	require.NoError(t, e.repos.Event.Create(event))
	if !active {
		event.IsActive = false
		require.NoError(t, e.repos.Event.Update(event))
	}
	return event
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	admin := &models.Admin{Username: "staff"}
	require.NoError(t, admin.SetPassword("hunter2!"))
	require.NoError(t, e.repos.Admin.Create(admin))
	token, err := auth.CreateAccessToken(admin.Username)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	if len(body) > 0 && body[0] == '{' {
		require.NoError(t, json.Unmarshal(body, &decoded))
	}
	return resp, decoded
}

func (e *testEnv) doList(t *testing.T, req *http.Request) (*http.Response, []map[string]interface{}) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	return resp, decoded
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()
	var body bytes.Buffer
	require.NoError(t, json.NewEncoder(&body).Encode(payload))
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withToken(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// pngBytes encodes a small solid PNG usable as an upload payload.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{200, 120, 40, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// multipartRequest builds a multipart POST with text fields and PNG files.
func multipartRequest(t *testing.T, target string, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	for name, data := range files {
		part, err := writer.CreateFormFile(name, name+".png")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
