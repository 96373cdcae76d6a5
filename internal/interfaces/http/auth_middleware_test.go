package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/Kenshin-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Kenshin-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testReaderID  = "00000000-0000-0000-0000-000000000001"
	testName      = "Juan Pérez"
	testIssuer    = "kenshin-test"
	testExpMin    = 60
)

// protectedApp expone GET /protected detrás de AuthMiddleware y RequireRole(roles...).
func protectedApp(roles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(roles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"reader_id": apphttp.GetReaderID(c),
				"name":      apphttp.GetReaderName(c),
				"role":      apphttp.GetRole(c),
			})
		},
	)
	return app
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testReaderID, testName, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func getProtected(t *testing.T, app *fiber.App, authHeader string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name    string
		allowed []string
		auth    func(t *testing.T) string
		status  int
		code    string
	}{
		{"admin en ruta admin", []string{"admin"}, func(t *testing.T) string { return bearer(t, "admin") }, http.StatusOK, ""},
		{"lector en ruta admin o lector", []string{"admin", "reader"}, func(t *testing.T) string { return bearer(t, "reader") }, http.StatusOK, ""},
		{"lector en ruta admin", []string{"admin"}, func(t *testing.T) string { return bearer(t, "reader") }, http.StatusForbidden, "FORBIDDEN"},
		{"token sin rol", []string{"admin"}, func(t *testing.T) string { return bearer(t, "") }, http.StatusUnauthorized, "MISSING_ROLE"},
		{"sin header", []string{"admin"}, func(*testing.T) string { return "" }, http.StatusUnauthorized, "MISSING_TOKEN"},
		{"esquema distinto de Bearer", []string{"admin"}, func(*testing.T) string { return "Basic abc" }, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token malformado", []string{"admin"}, func(*testing.T) string { return "Bearer token.invalido.aqui" }, http.StatusUnauthorized, "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := getProtected(t, protectedApp(tc.allowed...), tc.auth(t))
			assert.Equal(t, tc.status, status)
			if tc.code != "" {
				assert.Contains(t, body, tc.code)
			}
		})
	}
}

func TestAuthMiddleware_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testReaderID, testName, "admin", testIssuer, -1)
	require.NoError(t, err)

	status, body := getProtected(t, protectedApp("admin"), "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "INVALID_TOKEN")
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware: claims en Locals
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_CargaDatosDelLector(t *testing.T) {
	status, body := getProtected(t, protectedApp("reader"), bearer(t, "reader"))
	require.Equal(t, http.StatusOK, status)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, testReaderID, got["reader_id"])
	assert.Equal(t, testName, got["name"])
	assert.Equal(t, "reader", got["role"])
}
