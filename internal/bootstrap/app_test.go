package bootstrap_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-scanner/internal/bootstrap"
	"resume-scanner/internal/llm"
	"resume-scanner/internal/shared/config"
)

type capturedReset struct {
	to, token string
}

type fakeSender struct {
	sent []capturedReset
}

func (f *fakeSender) SendPasswordReset(ctx context.Context, to, token, name string) error {
	f.sent = append(f.sent, capturedReset{to: to, token: token})
	return nil
}

type apiClient struct {
	t      *testing.T
	router http.Handler
	token  string
}

func newClient(t *testing.T, scans int, opts ...bootstrap.Option) (*apiClient, *bootstrap.App) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:              "0",
		CORSAllowOrigin:   []string{"http://localhost:5173"},
		LocalStoreDir:     t.TempDir(),
		Env:               "dev",
		ObjectStoreType:   "local",
		SecretKey:         "test-secret",
		SessionCookieName: "session",
		MaxMonthlyScans:   scans,
	}
	app, err := bootstrap.Build(cfg, append([]bootstrap.Option{bootstrap.WithLLM(llm.Unavailable{})}, opts...)...)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return &apiClient{t: t, router: app.Router}, app
}

func (c *apiClient) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp := httptest.NewRecorder()
	c.router.ServeHTTP(resp, req)
	return resp
}

func (c *apiClient) json(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *apiClient) upload(name, content string) *httptest.ResponseRecorder {
	c.t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fw, err := writer.CreateFormFile("file", name)
	if err != nil {
		c.t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		c.t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		c.t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.do(req)
}

func (c *apiClient) register(email string) {
	c.t.Helper()
	resp := c.json(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": email, "password": "secret1", "first_name": "Jane", "last_name": "Doe",
	})
	if resp.Code != http.StatusOK {
		c.t.Fatalf("register: status %d body %s", resp.Code, resp.Body.String())
	}
	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decode(c.t, resp, &out)
	if out.AccessToken == "" || out.TokenType != "bearer" {
		c.t.Fatalf("unexpected register response: %s", resp.Body.String())
	}
	c.token = out.AccessToken
}

func decode(t *testing.T, resp *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (%s)", err, resp.Body.String())
	}
}

func expectStatus(t *testing.T, resp *httptest.ResponseRecorder, want int) {
	t.Helper()
	if resp.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, resp.Code, resp.Body.String())
	}
}

func TestPublicRoutes(t *testing.T) {
	c, _ := newClient(t, 10)

	resp := c.json(http.MethodGet, "/api/v1/health", nil)
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(resp.Body.String(), `"database":"memory"`) {
		t.Fatalf("unexpected health body: %s", resp.Body.String())
	}

	expectStatus(t, c.json(http.MethodGet, "/metrics", nil), http.StatusOK)
	expectStatus(t, c.json(http.MethodGet, "/api/v1/resumes", nil), http.StatusUnauthorized)
	expectStatus(t, c.json(http.MethodGet, "/api/v1/auth/google/start", nil), http.StatusInternalServerError)
	expectStatus(t, c.json(http.MethodGet, "/api/v1/auth/verify-reset?token=nope", nil), http.StatusBadRequest)
	expectStatus(t, c.json(http.MethodGet, "/profile-photo/unknown", nil), http.StatusOK)
}

func TestResumeWorkflowWithQuota(t *testing.T) {
	c, _ := newClient(t, 3)
	c.register("jane@example.com")

	resp := c.upload("cv.txt", "plain text")
	expectStatus(t, resp, http.StatusBadRequest)

	resp = c.upload("cv.pdf", "%PDF-1.4 fake")
	expectStatus(t, resp, http.StatusOK)
	var uploaded struct {
		ResumeID string `json:"resume_id"`
		Mock     bool   `json:"mock"`
	}
	decode(t, resp, &uploaded)
	if uploaded.ResumeID == "" || !uploaded.Mock {
		t.Fatalf("unexpected upload response: %+v", uploaded)
	}

	resp = c.json(http.MethodPost, "/api/v1/job-descriptions", map[string]string{
		"title":   "Backend Engineer",
		"company": "Acme",
		"content": "We need a Go engineer comfortable with Postgres, queues and observability tooling.",
	})
	expectStatus(t, resp, http.StatusOK)
	var created struct {
		JobDescription struct {
			ID string `json:"id"`
		} `json:"job_description"`
	}
	decode(t, resp, &created)

	resp = c.json(http.MethodPost, "/api/v1/compare", map[string]string{
		"resume_id": uploaded.ResumeID,
		"jd_id":     created.JobDescription.ID,
	})
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(resp.Body.String(), `"jd_title":"Backend Engineer at Acme"`) {
		t.Fatalf("unexpected compare body: %s", resp.Body.String())
	}

	resp = c.json(http.MethodPost, "/api/v1/cover-letter", map[string]any{
		"resume_id":         uploaded.ResumeID,
		"jd_id":             created.JobDescription.ID,
		"professional_tone": true,
	})
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(resp.Body.String(), `"your_email":"jane@example.com"`) {
		t.Fatalf("expected profile email in cover letter: %s", resp.Body.String())
	}

	// regenerate is free even with the quota spent
	expectStatus(t, c.json(http.MethodPost, "/api/v1/cover-letter/regenerate", map[string]any{
		"resume_id": uploaded.ResumeID,
		"jd_id":     created.JobDescription.ID,
	}), http.StatusOK)

	resp = c.json(http.MethodPost, "/api/v1/improve", map[string]string{
		"resume_id":        uploaded.ResumeID,
		"improvement_type": "keywords",
	})
	expectStatus(t, resp, http.StatusTooManyRequests)

	resp = c.json(http.MethodGet, "/api/v1/usage", nil)
	expectStatus(t, resp, http.StatusOK)
	var u struct {
		Used      int `json:"used"`
		Remaining int `json:"remaining"`
	}
	decode(t, resp, &u)
	if u.Used != 3 || u.Remaining != 0 {
		t.Fatalf("unexpected usage: %+v", u)
	}

	expectStatus(t, c.json(http.MethodPost, "/api/v1/dev/usage/reset", nil), http.StatusOK)
	expectStatus(t, c.json(http.MethodPost, "/api/v1/improve", map[string]string{
		"resume_id": uploaded.ResumeID,
	}), http.StatusOK)

	expectStatus(t, c.json(http.MethodGet, "/api/v1/cover-letter/download/docx", nil), http.StatusNotImplemented)
	expectStatus(t, c.json(http.MethodGet, "/api/v1/cover-letter/download/txt", nil), http.StatusBadRequest)

	expectStatus(t, c.json(http.MethodDelete, "/api/v1/resumes/"+uploaded.ResumeID, nil), http.StatusOK)
	expectStatus(t, c.json(http.MethodGet, "/api/v1/resumes/"+uploaded.ResumeID, nil), http.StatusNotFound)
}

func TestResumesAreScopedToOwner(t *testing.T) {
	c, app := newClient(t, 10)
	c.register("owner@example.com")
	resp := c.upload("cv.pdf", "%PDF-1.4 fake")
	expectStatus(t, resp, http.StatusOK)
	var uploaded struct {
		ResumeID string `json:"resume_id"`
	}
	decode(t, resp, &uploaded)

	other := &apiClient{t: t, router: app.Router}
	other.register("other@example.com")
	expectStatus(t, other.json(http.MethodGet, "/api/v1/resumes/"+uploaded.ResumeID, nil), http.StatusNotFound)
	expectStatus(t, other.json(http.MethodPost, "/api/v1/compare", map[string]string{
		"resume_id":  uploaded.ResumeID,
		"jd_title":   "SRE",
		"jd_company": "Globex",
		"jd_content": "Operate things",
	}), http.StatusNotFound)
}

func TestPasswordResetFlow(t *testing.T) {
	sender := &fakeSender{}
	c, _ := newClient(t, 10, bootstrap.WithResetSender(sender))
	c.register("reset@example.com")
	c.token = ""

	expectStatus(t, c.json(http.MethodPost, "/api/v1/auth/forgot-password", map[string]string{"email": "nobody@example.com"}), http.StatusOK)
	if len(sender.sent) != 0 {
		t.Fatalf("expected no email for unknown address")
	}

	expectStatus(t, c.json(http.MethodPost, "/api/v1/auth/forgot-password", map[string]string{"email": "Reset@Example.com"}), http.StatusOK)
	if len(sender.sent) != 1 || sender.sent[0].to != "reset@example.com" {
		t.Fatalf("unexpected sends: %+v", sender.sent)
	}
	token := sender.sent[0].token

	expectStatus(t, c.json(http.MethodGet, "/api/v1/auth/verify-reset?token="+token, nil), http.StatusOK)
	expectStatus(t, c.json(http.MethodPost, "/api/v1/auth/reset-password", map[string]string{
		"token": token, "new_password": "newpass1", "confirm_password": "newpass2",
	}), http.StatusBadRequest)
	expectStatus(t, c.json(http.MethodPost, "/api/v1/auth/reset-password", map[string]string{
		"token": token, "new_password": "newpass1", "confirm_password": "newpass1",
	}), http.StatusOK)
	expectStatus(t, c.json(http.MethodGet, "/api/v1/auth/verify-reset?token="+token, nil), http.StatusBadRequest)

	expectStatus(t, c.json(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "reset@example.com", "password": "newpass1",
	}), http.StatusOK)
	expectStatus(t, c.json(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "reset@example.com", "password": "secret1",
	}), http.StatusUnauthorized)
}
