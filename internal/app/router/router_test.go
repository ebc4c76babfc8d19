package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	authadapters "passvault/internal/feature/auth/adapters"
	authhandler "passvault/internal/feature/auth/transport/handler"
	authusecase "passvault/internal/feature/auth/usecase"
	vaultadapters "passvault/internal/feature/vault/adapters"
	vaulthandler "passvault/internal/feature/vault/transport/handler"
	vaultusecase "passvault/internal/feature/vault/usecase"
	"passvault/internal/platform/db/dbtest"
	"passvault/internal/platform/hasher"
	jwtmw "passvault/internal/platform/jwt"
	"passvault/internal/platform/mail"
	"passvault/internal/platform/metrics"
	"passvault/internal/platform/storage"
	"passvault/internal/shared/ratelimiter"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// outbox records mail instead of sending it.
type outbox struct {
	mu   sync.Mutex
	msgs []mail.Message
}

func (o *outbox) Send(_ context.Context, msg mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, msg)
	return nil
}

func (o *outbox) last(t *testing.T) mail.Message {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.msgs, "no mail sent")
	return o.msgs[len(o.msgs)-1]
}

func (o *outbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.msgs)
}

type testApp struct {
	router *gin.Engine
	db     *gorm.DB
	outbox *outbox
}

func newTestApp(t *testing.T, limiter ratelimiter.Limiter) *testApp {
	t.Helper()

	gdb := dbtest.NewSQLite(t)
	users := authadapters.NewUserGorm(gdb)
	creds := vaultadapters.NewCredentialGorm(gdb)
	h := hasher.NewBcryptHasher(bcrypt.MinCost)
	ob := &outbox{}

	authUC := authusecase.NewAuthUsecase(users, h, jwtmw.NewGenerator("test-secret", time.Hour))
	profileUC := authusecase.NewProfileUsecase(users, h, storage.InlineStore{}, 1<<20)
	resetUC := authusecase.NewResetUsecase(users, h, mail.NewService(ob), "http://front.test", time.Hour)
	vaultUC := vaultusecase.NewVaultUsecase(creds)

	r := NewRouter(Deps{
		Auth:    authhandler.NewAuthHandler(authUC, resetUC),
		Profile: authhandler.NewProfileHandler(profileUC, 1<<20),
		Vault:   vaulthandler.NewVaultHandler(vaultUC),
		Gate:    jwtmw.AuthRequired(jwtmw.NewVerifier("test-secret"), authUC),
		Limiter: limiter,
		Metrics: metrics.New(),
	})
	return &testApp{router: r, db: gdb, outbox: ob}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) (int, map[string]any, string) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out, w.Body.String()
}

func (a *testApp) register(t *testing.T, name, email, password string) string {
	t.Helper()
	code, body, raw := a.do(t, http.MethodPost, "/register", "", gin.H{"name": name, "email": email, "password": password})
	require.Equal(t, http.StatusCreated, code, raw)
	return body["token"].(string)
}

func TestRegisterLoginMe(t *testing.T) {
	app := newTestApp(t, nil)

	token := app.register(t, "A", "a@x.com", "secret1")
	assert.NotEmpty(t, token)

	code, body, _ := app.do(t, http.MethodPost, "/login", "", gin.H{"email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, code)
	loginToken := body["token"].(string)

	code, me, raw := app.do(t, http.MethodGet, "/me", loginToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "A", me["name"])
	assert.Equal(t, "a@x.com", me["email"])
	assert.NotContains(t, me, "password")
	assert.NotContains(t, raw, "$2a$")

	t.Run("duplicate email differing in case", func(t *testing.T) {
		code, _, _ := app.do(t, http.MethodPost, "/register", "", gin.H{"name": "A2", "email": "A@X.COM", "password": "secret2"})
		assert.Equal(t, http.StatusConflict, code)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		code1, body1, _ := app.do(t, http.MethodPost, "/login", "", gin.H{"email": "a@x.com", "password": "nope"})
		code2, body2, _ := app.do(t, http.MethodPost, "/login", "", gin.H{"email": "ghost@x.com", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, code1)
		assert.Equal(t, code1, code2)
		assert.Equal(t, body1, body2)
	})
}

func TestPasswordLengthLimit(t *testing.T) {
	app := newTestApp(t, nil)

	code, body, _ := app.do(t, http.MethodPost, "/register", "", gin.H{"name": "A", "email": "long@x.com", "password": strings.Repeat("q", 73)})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, authusecase.ErrPasswordTooLong.Error(), body["error"])

	app.register(t, "B", "b@x.com", strings.Repeat("q", 72))
	code, _, _ = app.do(t, http.MethodPost, "/login", "", gin.H{"email": "b@x.com", "password": strings.Repeat("q", 72) + "DIFFERENT"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _, _ = app.do(t, http.MethodPost, "/login", "", gin.H{"email": "b@x.com", "password": strings.Repeat("q", 72)})
	assert.Equal(t, http.StatusOK, code)
}

func TestAuthGate(t *testing.T) {
	app := newTestApp(t, nil)
	token := app.register(t, "A", "a@x.com", "secret1")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + token, http.StatusUnauthorized},
		{"three parts", "Bearer " + token + " extra", http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			app.router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	t.Run("token of a deleted account", func(t *testing.T) {
		require.NoError(t, app.db.Exec("DELETE FROM users WHERE email = ?", "a@x.com").Error)

		code, _, _ := app.do(t, http.MethodGet, "/me", token, nil)
		assert.Equal(t, http.StatusUnauthorized, code)
	})
}

func TestCredentialOwnership(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.register(t, "Alice", "alice@x.com", "secret1")
	bob := app.register(t, "Bob", "bob@x.com", "secret1")

	code, body, raw := app.do(t, http.MethodPost, "/passwords", bob, gin.H{
		"service": "Mail", "username": "bob", "password": "bob-pw", "category": "personal",
	})
	require.Equal(t, http.StatusCreated, code, raw)
	bobsID := body["password"].(map[string]any)["id"].(string)

	code, body, _ = app.do(t, http.MethodPut, "/passwords/"+bobsID, alice, gin.H{"password": "stolen"})
	assert.Equal(t, http.StatusNotFound, code)
	notOwned := body

	code, body, _ = app.do(t, http.MethodPut, "/passwords/does-not-exist", alice, gin.H{"password": "x"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, notOwned, body, "missing and not owned must be indistinguishable")

	code, _, _ = app.do(t, http.MethodDelete, "/passwords/"+bobsID, alice, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _, raw = app.do(t, http.MethodGet, "/passwords", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, raw)

	var list []map[string]any
	req := httptest.NewRequest(http.MethodGet, "/passwords?category=personal", nil)
	req.Header.Set("Authorization", "Bearer "+bob)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "bob-pw", list[0]["password"], "record must be unchanged")

	code, body, _ = app.do(t, http.MethodPut, "/passwords/"+bobsID, bob, gin.H{"password": "new-pw"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "new-pw", body["password"].(map[string]any)["password"])

	code, _, _ = app.do(t, http.MethodDelete, "/passwords/"+bobsID, bob, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestPasswordResetIsSingleUse(t *testing.T) {
	app := newTestApp(t, nil)
	app.register(t, "A", "a@x.com", "secret1")

	code, known, _ := app.do(t, http.MethodPost, "/forgot-password", "", gin.H{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, code)

	msg := app.outbox.last(t)
	assert.Equal(t, "a@x.com", msg.To)
	i := strings.Index(msg.Body, "http://front.test/reset-password/")
	require.NotEqual(t, -1, i)
	token := strings.Fields(msg.Body[i+len("http://front.test/reset-password/"):])[0]

	t.Run("unknown email gets the same answer and no mail", func(t *testing.T) {
		before := app.outbox.count()
		code, unknown, _ := app.do(t, http.MethodPost, "/forgot-password", "", gin.H{"email": "ghost@x.com"})
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, known, unknown)
		assert.Equal(t, before, app.outbox.count())
	})

	code, _, _ = app.do(t, http.MethodPost, "/reset-password/"+token, "", gin.H{"password": "newpass1"})
	require.Equal(t, http.StatusOK, code)

	code, _, _ = app.do(t, http.MethodPost, "/reset-password/"+token, "", gin.H{"password": "another1"})
	assert.Equal(t, http.StatusBadRequest, code, "replay must fail")

	code, _, _ = app.do(t, http.MethodPost, "/login", "", gin.H{"email": "a@x.com", "password": "newpass1"})
	assert.Equal(t, http.StatusOK, code)

	code, _, _ = app.do(t, http.MethodPost, "/login", "", gin.H{"email": "a@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestProfileAndSettings(t *testing.T) {
	app := newTestApp(t, nil)
	token := app.register(t, "A", "a@x.com", "secret1")
	app.register(t, "B", "b@x.com", "secret1")

	code, body, _ := app.do(t, http.MethodPut, "/me", token, gin.H{"name": "Renamed"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Renamed", body["name"])

	code, _, _ = app.do(t, http.MethodPut, "/me", token, gin.H{"email": "b@x.com"})
	assert.Equal(t, http.StatusConflict, code)

	code, _, _ = app.do(t, http.MethodPut, "/change-password", token, gin.H{"currentPassword": "wrong", "newPassword": "newpass1"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _, _ = app.do(t, http.MethodPost, "/update-settings", token, gin.H{"currentPassword": "secret1", "newPassword": "123"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _, _ = app.do(t, http.MethodPost, "/update-settings", token, gin.H{"darkMode": true, "language": "pt-BR"})
	require.Equal(t, http.StatusOK, code)

	code, body, _ = app.do(t, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	settings := body["settings"].(map[string]any)
	assert.Equal(t, true, settings["darkMode"])
	assert.Equal(t, "pt-BR", settings["language"])
}

func TestRateLimitOnPublicRoutes(t *testing.T) {
	app := newTestApp(t, ratelimiter.NewMemoryLimiter(2, time.Minute))

	for i := 0; i < 2; i++ {
		code, _, _ := app.do(t, http.MethodPost, "/login", "", gin.H{"email": "a@x.com", "password": "x"})
		assert.Equal(t, http.StatusUnauthorized, code)
	}
	code, body, _ := app.do(t, http.MethodPost, "/login", "", gin.H{"email": "a@x.com", "password": "x"})
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "too many requests", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, nil)
	app.do(t, http.MethodGet, "/healthz", "", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "passvault_http_requests_total")
}
