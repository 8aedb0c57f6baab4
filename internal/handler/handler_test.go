package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"nfc-redirect-platform/internal/analytics"
	"nfc-redirect-platform/internal/batch"
	"nfc-redirect-platform/internal/batchid"
	"nfc-redirect-platform/internal/config"
	"nfc-redirect-platform/internal/handler"
	"nfc-redirect-platform/internal/middleware"
	"nfc-redirect-platform/internal/model"
	"nfc-redirect-platform/internal/resolver"
	"nfc-redirect-platform/internal/store"
	"nfc-redirect-platform/internal/testutil"
	auth "nfc-redirect-platform/pkg/jwt"
	"nfc-redirect-platform/web"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// captureRecorder 同步记录成功的跳转
type captureRecorder struct {
	mu      sync.Mutex
	entries []model.RedirectLogEntry
}

func (r *captureRecorder) Record(e model.RedirectLogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *captureRecorder) all() []model.RedirectLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.RedirectLogEntry(nil), r.entries...)
}

type failingSink struct{}

func (failingSink) Name() string { return "failing" }

func (failingSink) Append(context.Context, model.RedirectLogEntry) error {
	return errors.New("sink unavailable")
}

func (failingSink) Close() error { return nil }

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	tokens *auth.TokenManager
}

type envOptions struct {
	strict   bool
	recorder resolver.Recorder
	limit    *config.Limit
}

func setupEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	s := store.New(db)
	logger := zap.NewNop().Sugar()

	templates, err := web.Templates()
	require.NoError(t, err)

	limit := opts.limit
	if limit == nil {
		limit = &config.Limit{Enabled: false}
	}

	tokens := auth.NewManager("test-secret", "nfc-test", 1)
	allocator := batch.NewAllocator(s, batchid.NewGenerator(s, logger), logger)

	router := handler.NewRouter(handler.RouterDeps{
		Logger:    zap.NewNop(),
		Templates: templates,
		Tokens:    tokens,
		RateLimit: limit,
		Redirect:  handler.NewRedirectHandler(resolver.New(s, opts.recorder, logger), s, opts.strict, logger),
		Batch:     handler.NewBatchHandler(allocator, "https://nfc.example", logger),
		Auth:      handler.NewAuthHandler(s, tokens, false, logger),
		Manage:    handler.NewManageHandler(s, logger),
	})
	return &testEnv{router: router, db: db, tokens: tokens}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return e.do(req)
}

func (e *testEnv) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return e.do(req)
}

func (e *testEnv) postJSON(path string, body any, token string) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.do(req)
}

func (e *testEnv) token(t *testing.T, accountID uint, username string) string {
	t.Helper()
	token, err := e.tokens.GenerateToken(accountID, username)
	require.NoError(t, err)
	return token
}

// login 通过表单登录并返回会话 cookie
func (e *testEnv) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	w := e.postForm("/login", url.Values{"username": {username}, "password": {password}})
	require.Equal(t, http.StatusFound, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	t.Fatal("登录后没有返回会话 cookie")
	return nil
}

func TestRedirect_Resolved(t *testing.T) {
	rec := &captureRecorder{}
	env := setupEnv(t, envOptions{recorder: rec})
	testutil.Chain(t, env.db, nil, "T1", "C1", "L1", "https://example.com/a")

	for _, path := range []string{"/redirect/T1", "/api/redirect/T1"} {
		w := env.get(path)
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "https://example.com/a", w.Header().Get("Location"), path)
	}

	entries := rec.all()
	require.Len(t, entries, 2)
	assert.Equal(t, "T1", entries[0].TagID)
	assert.Equal(t, "C1", entries[0].CampaignID)
	assert.Equal(t, "L1", entries[0].LinkID)
	assert.Equal(t, "https://example.com/a", entries[0].LinkURL)
	assert.Equal(t, "http://example.com/", entries[0].Domain)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
}

func TestRedirect_Misses(t *testing.T) {
	rec := &captureRecorder{}
	env := setupEnv(t, envOptions{recorder: rec})
	require.NoError(t, env.db.Create(&model.Tag{TagID: "T2", CampaignID: "C404"}).Error)
	require.NoError(t, env.db.Create(&model.Tag{TagID: "T3", CampaignID: "C3"}).Error)
	require.NoError(t, env.db.Create(&model.CampaignLink{CampaignID: "C3", LinkID: "L404"}).Error)

	cases := map[string]string{
		"/redirect/NOPE": "NFC tag not found.",
		"/redirect/T2":   "Campaign link not found.",
		"/redirect/T3":   "Link URL not found.",
	}
	for path, message := range cases {
		w := env.get(path)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, message, w.Body.String(), path)
		assert.Empty(t, w.Header().Get("Location"), path)
	}
	assert.Empty(t, rec.all(), "未命中不应写跳转日志")
}

func TestRedirect_StrictNotFound(t *testing.T) {
	env := setupEnv(t, envOptions{strict: true})

	w := env.get("/redirect/NOPE")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NFC tag not found.", w.Body.String())
}

func TestRedirect_FailingSinkStillRedirects(t *testing.T) {
	dispatcher := analytics.NewDispatcher(failingSink{}, analytics.DispatcherOptions{
		QueueSize: 4,
		Workers:   1,
		Timeout:   50 * time.Millisecond,
	}, zap.NewNop().Sugar())
	t.Cleanup(func() { _ = dispatcher.Stop(context.Background()) })

	env := setupEnv(t, envOptions{recorder: dispatcher})
	testutil.Chain(t, env.db, nil, "T1", "C1", "L1", "https://example.com/a")

	for i := 0; i < 10; i++ {
		w := env.get("/redirect/T1")
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://example.com/a", w.Header().Get("Location"))
	}
}

func TestRedirect_NotThrottledByDefaultRateLimit(t *testing.T) {
	limit := config.Default().RateLimit
	env := setupEnv(t, envOptions{limit: &limit})
	testutil.Chain(t, env.db, nil, "T1", "C1", "L1", "https://example.com/a")

	for i := 0; i < int(limit.Burst)*2; i++ {
		w := env.get("/api/redirect/T1")
		require.Equal(t, http.StatusFound, w.Code, "第 %d 次扫码", i+1)
	}

	// 其他 /api 接口仍然受限
	throttled := false
	for i := 0; i < int(limit.Burst)+10; i++ {
		w := env.postJSON("/api/create_batch", gin.H{"num_tags": 11, "camp_id": "C1"}, "")
		if w.Code == http.StatusTooManyRequests {
			throttled = true
			break
		}
	}
	assert.True(t, throttled)
}

func TestIndex(t *testing.T) {
	env := setupEnv(t, envOptions{})

	w := env.get("/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="nfc_id"`)

	w = env.postForm("/", url.Values{"nfc_id": {" T 1 "}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/redirect/T%201", w.Header().Get("Location"))

	w = env.postForm("/", url.Values{"nfc_id": {"  "}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBatch(t *testing.T) {
	env := setupEnv(t, envOptions{})

	w := env.postJSON("/api/create_batch", gin.H{"num_tags": 3, "camp_id": "C1", "batch_label": "L"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp handler.CreateBatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.NumTags)
	assert.Equal(t, []string{resp.BatchID + "-0", resp.BatchID + "-1", resp.BatchID + "-2"}, resp.TagIDs)
	assert.Equal(t, "Batch "+resp.BatchID+" created with 3 tags.", resp.Message)

	var n int64
	require.NoError(t, env.db.Model(&model.Tag{}).Where("tag_camp_id = ?", "C1").Count(&n).Error)
	assert.Equal(t, int64(3), n)
}

func TestCreateBatch_Rejected(t *testing.T) {
	env := setupEnv(t, envOptions{})

	cases := []struct {
		name string
		body gin.H
	}{
		{"over limit", gin.H{"num_tags": 11, "camp_id": "C1", "batch_label": "L"}},
		{"zero", gin.H{"num_tags": 0, "camp_id": "C1", "batch_label": "L"}},
		{"missing campaign", gin.H{"num_tags": 2, "batch_label": "L"}},
		{"bad campaign id", gin.H{"num_tags": 2, "camp_id": "no spaces", "batch_label": "L"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.postJSON("/api/create_batch", tc.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/create_batch", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, env.do(req).Code)

	var n int64
	require.NoError(t, env.db.Model(&model.Tag{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, env.db.Model(&model.Batch{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateBatch_MethodNotAllowed(t *testing.T) {
	env := setupEnv(t, envOptions{})

	w := env.get("/api/create_batch")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCreateBatch_OwnedWhenLoggedIn(t *testing.T) {
	env := setupEnv(t, envOptions{})
	owner := testutil.Account(t, env.db, "acme", "secret1")
	token := env.token(t, owner, "acme")

	w := env.postJSON("/api/create_batch", gin.H{"num_tags": 2, "camp_id": "C1", "batch_label": "Owned"}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp handler.CreateBatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	var tag model.Tag
	require.NoError(t, env.db.First(&tag, "tag_id = ?", resp.TagIDs[0]).Error)
	require.NotNil(t, tag.AccountID)
	assert.Equal(t, owner, *tag.AccountID)

	req := httptest.NewRequest(http.MethodGet, "/api/batches/"+resp.BatchID+"/export", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = env.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), resp.BatchID)
	assert.NotZero(t, w.Body.Len())

	other := testutil.Account(t, env.db, "other", "secret2")
	req = httptest.NewRequest(http.MethodGet, "/api/batches/"+resp.BatchID+"/export", nil)
	req.Header.Set("Authorization", "Bearer "+env.token(t, other, "other"))
	assert.Equal(t, http.StatusNotFound, env.do(req).Code)
}

func TestExport_RequiresLogin(t *testing.T) {
	env := setupEnv(t, envOptions{})

	w := env.get("/api/batches/abc/export")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin(t *testing.T) {
	env := setupEnv(t, envOptions{})
	testutil.Account(t, env.db, "acme", "secret1")

	t.Run("wrong password", func(t *testing.T) {
		w := env.postForm("/login", url.Values{"username": {"acme"}, "password": {"nope"}})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid username or password.")
	})

	t.Run("form redirects to next", func(t *testing.T) {
		w := env.postForm("/login", url.Values{"username": {"acme"}, "password": {"secret1"}, "next": {"/my_tags"}})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/my_tags", w.Header().Get("Location"))
	})

	t.Run("external next ignored", func(t *testing.T) {
		w := env.postForm("/login", url.Values{"username": {"acme"}, "password": {"secret1"}, "next": {"//evil.example"}})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})

	t.Run("json returns token", func(t *testing.T) {
		w := env.postJSON("/login", gin.H{"username": "acme", "password": "secret1"}, "")
		require.Equal(t, http.StatusOK, w.Code)
		var resp handler.AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		claims, err := env.tokens.ValidateToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "acme", claims.Username)
	})

	t.Run("json wrong password", func(t *testing.T) {
		w := env.postJSON("/login", gin.H{"username": "acme", "password": "nope"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	var account model.Account
	require.NoError(t, env.db.First(&account, "username = ?", "acme").Error)
	assert.NotNil(t, account.LastLogin)
}

func TestRegister(t *testing.T) {
	env := setupEnv(t, envOptions{})

	form := url.Values{"company_name": {"Acme"}, "username": {"acme"}, "password": {"secret1"}}
	w := env.postForm("/register", form)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = env.postForm("/register", form)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Please use a different username.")

	w = env.postForm("/register", url.Values{"username": {"short"}, "password": {"1"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var n int64
	require.NoError(t, env.db.Model(&model.Account{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	env.login(t, "acme", "secret1")
}

func TestManagementRequiresLogin(t *testing.T) {
	env := setupEnv(t, envOptions{})

	for _, path := range []string{"/my_tags", "/my_campaigns", "/my_links"} {
		w := env.get(path)
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/login?next="+url.QueryEscape(path), w.Header().Get("Location"), path)
	}
}

func TestManagement_EditChangesDestination(t *testing.T) {
	env := setupEnv(t, envOptions{})
	owner := testutil.Account(t, env.db, "acme", "secret1")
	testutil.Chain(t, env.db, &owner, "T1", "C1", "L1", "https://example.com/old")
	cookie := env.login(t, "acme", "secret1")

	w := env.get("/my_links", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://example.com/old")
	assert.Contains(t, w.Body.String(), "Logout (acme)")

	w = env.postForm("/my_links", url.Values{"link_url_L1": {"https://example.com/new"}, "link_label_L1": {""}}, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/my_links", w.Header().Get("Location"))

	w = env.get("/redirect/T1")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.com/new", w.Header().Get("Location"))

	var link model.LinkURL
	require.NoError(t, env.db.First(&link, "link_id = ?", "L1").Error)
	assert.Equal(t, "L1", link.Label, "空字段不应覆盖原值")
}

func TestManagement_RejectsBadURL(t *testing.T) {
	env := setupEnv(t, envOptions{})
	owner := testutil.Account(t, env.db, "acme", "secret1")
	testutil.Chain(t, env.db, &owner, "T1", "C1", "L1", "https://example.com/old")
	cookie := env.login(t, "acme", "secret1")

	w := env.postForm("/my_links", url.Values{"link_url_L1": {"javascript:alert(1)"}}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.get("/redirect/T1")
	assert.Equal(t, "https://example.com/old", w.Header().Get("Location"))
}

func TestManagement_OtherAccountsRowsUntouched(t *testing.T) {
	env := setupEnv(t, envOptions{})
	owner := testutil.Account(t, env.db, "acme", "secret1")
	other := testutil.Account(t, env.db, "other", "secret2")
	testutil.Chain(t, env.db, &owner, "T1", "C1", "L1", "https://example.com/a")
	testutil.Chain(t, env.db, &other, "T2", "C2", "L2", "https://example.com/b")
	cookie := env.login(t, "acme", "secret1")

	w := env.get("/my_tags", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "T1")
	assert.NotContains(t, w.Body.String(), "T2")

	w = env.postForm("/my_tags", url.Values{"campaign_id_T1": {"C2"}, "campaign_id_T2": {"C1"}}, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	var t1, t2 model.Tag
	require.NoError(t, env.db.First(&t1, "tag_id = ?", "T1").Error)
	require.NoError(t, env.db.First(&t2, "tag_id = ?", "T2").Error)
	assert.Equal(t, "C2", t1.CampaignID)
	assert.Equal(t, "C2", t2.CampaignID)

	w = env.postForm("/my_campaigns", url.Values{"link_id_C1": {"L2"}}, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestManagement_RejectsInvalidIdentifiers(t *testing.T) {
	env := setupEnv(t, envOptions{})
	owner := testutil.Account(t, env.db, "acme", "secret1")
	testutil.Chain(t, env.db, &owner, "T1", "C1", "L1", "https://example.com/a")
	cookie := env.login(t, "acme", "secret1")

	bad := map[string]string{
		"oversized":   strings.Repeat("x", 51),
		"bad charset": "bad id!",
	}
	for name, value := range bad {
		t.Run(name, func(t *testing.T) {
			w := env.postForm("/my_tags", url.Values{"campaign_id_T1": {value}}, cookie)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "Tag T1:")

			w = env.postForm("/my_campaigns", url.Values{"link_id_C1": {value}}, cookie)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "Campaign C1:")
		})
	}

	var tag model.Tag
	require.NoError(t, env.db.First(&tag, "tag_id = ?", "T1").Error)
	assert.Equal(t, "C1", tag.CampaignID)
	var campaign model.CampaignLink
	require.NoError(t, env.db.First(&campaign, "camp_id = ?", "C1").Error)
	assert.Equal(t, "L1", campaign.LinkID)

	// 一个非法值让整个提交被拒绝
	w := env.postForm("/my_tags", url.Values{"campaign_id_T1": {"C9"}, "campaign_id_T2": {"bad id!"}}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, env.db.First(&tag, "tag_id = ?", "T1").Error)
	assert.Equal(t, "C1", tag.CampaignID)

	w = env.get("/redirect/T1")
	assert.Equal(t, "https://example.com/a", w.Header().Get("Location"))
}

func TestCreateRecords(t *testing.T) {
	env := setupEnv(t, envOptions{})
	owner := testutil.Account(t, env.db, "acme", "secret1")
	token := env.token(t, owner, "acme")

	w := env.postJSON("/api/links", gin.H{"link_id": "L1", "link_label": "Landing", "link_url": "https://example.com/x"}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = env.postJSON("/api/campaigns", gin.H{"camp_id": "C1", "link_id": "L1"}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = env.postJSON("/api/tags", gin.H{"tag_id": "T1", "camp_id": "C1"}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.postJSON("/api/tags", gin.H{"tag_id": "T1", "camp_id": "C1"}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.postJSON("/api/links", gin.H{"link_id": "L2", "link_url": "ftp://example.com/x"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.postJSON("/api/tags", gin.H{"tag_id": "T9", "camp_id": "C1"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.get("/redirect/T1")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.com/x", w.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	env := setupEnv(t, envOptions{})
	testutil.Account(t, env.db, "acme", "secret1")
	env.login(t, "acme", "secret1")

	w := env.get("/logout")
	assert.Equal(t, http.StatusFound, w.Code)
	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestHealthCheck(t *testing.T) {
	env := setupEnv(t, envOptions{})

	w := env.get("/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
