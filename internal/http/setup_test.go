package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"phonestore/internal/config"
	"phonestore/internal/http/handlers"
	"phonestore/internal/repos"
)

type testApp struct {
	app   *fiber.App
	db    *sqlx.DB
	store repos.KV
}

// newStoreApp wires the real routes over an in-memory SQLite catalog. A nil
// store gets a fresh MemoryKV; limits holds per-route limiter maxima.
func newStoreApp(t *testing.T, store repos.KV, limits int) *testApp {
	t.Helper()
	cfg := config.Config{DBDSN: ":memory:", CartKey: "inditex_cart"}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if store == nil {
		store = repos.NewMemoryKV()
	}
	if limits <= 0 {
		limits = 100
	}

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Server().MaxRequestBodySize = 1 << 20
	app.Use(requestid.New())
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		ContextKey:     "csrf",
		Next:           func(c *fiber.Ctx) bool { return strings.HasPrefix(c.Path(), "/api/") },
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	deps := handlers.NewDeps(repos.NewPhoneRepo(db), store, cfg)
	app.Get("/phones", limiter.New(limiter.Config{Max: limits, Expiration: time.Second}), deps.PhoneHandler.List)
	app.Get("/phones/:id", deps.PhoneHandler.Detail)
	app.Get("/cart", deps.CartHandler.View)
	app.Post("/cart", deps.CartHandler.Add)
	app.Post("/cart/remove", deps.CartHandler.Remove)
	app.Post("/cart/clear", deps.CartHandler.Clear)

	api := app.Group("/api/v1")
	cartLimiter := limiter.New(limiter.Config{Max: limits, Expiration: time.Second})
	api.Get("/phones", deps.APIHandler.Phones)
	api.Get("/phones/:id", deps.APIHandler.Phone)
	api.Get("/cart", deps.APIHandler.Cart)
	api.Post("/cart/items", cartLimiter, deps.APIHandler.AddItem)
	api.Delete("/cart/items", cartLimiter, deps.APIHandler.RemoveItem)
	api.Delete("/cart", cartLimiter, deps.APIHandler.ClearCart)

	return &testApp{app: app, db: db, store: store}
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// csrfToken fetches a page so the CSRF middleware issues its cookie.
func (a *testApp) csrfToken(t *testing.T) string {
	t.Helper()
	resp, err := a.app.Test(httptest.NewRequest("GET", "/phones", nil))
	if err != nil {
		t.Fatal(err)
	}
	tok := extractCookie(resp, "csrf_")
	if tok == "" {
		t.Fatal("csrf token missing")
	}
	return tok
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values, csrfTok, sid string) *http.Response {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf", csrfTok)
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := a.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func (a *testApp) sendJSON(t *testing.T, method, path string, body any, sid string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := a.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func (a *testApp) get(t *testing.T, path, sid string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := a.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func lineForm(phoneID, color, storage string) url.Values {
	return url.Values{"phoneId": {phoneID}, "color": {color}, "storage": {storage}}
}
