// Common test helpers
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/anveshk/osintdex/config"
	"github.com/anveshk/osintdex/db/kvdb"
	"github.com/anveshk/osintdex/db/searchdb"
	"github.com/anveshk/osintdex/db/userdb"
	"github.com/anveshk/osintdex/logger"
	"github.com/anveshk/osintdex/services/ingest"
	"github.com/anveshk/osintdex/services/quota"
	"github.com/anveshk/osintdex/services/search"
	"github.com/anveshk/osintdex/validation"
)

const (
	testKeyAdmin      = "test-key-admin"
	testKeyMember     = "test-key-member"
	testKeyUnverified = "test-key-unverified"
	testKeyExhausted  = "test-key-exhausted"
)

type testServer struct {
	router   *gin.Engine
	searchDB searchdb.DB
	userDB   userdb.DB
}

func newTestLogger() logger.Logger {

	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

// testAuthMiddleware mirrors the server's API key middleware so handlers
// can be exercised without importing the server package.
func testAuthMiddleware(users userdb.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.UserByAPIKey(c.GetHeader("X-API-Key"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"errors": []string{"a valid API key is required"}})
			return
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

func testAdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"errors": []string{"admin access required"}})
			return
		}
		c.Next()
	}
}

func setupTestServer(t *testing.T, assert *require.Assertions) *testServer {
	t.Helper()

	t.Setenv("ENV", "test")
	t.Setenv("STORAGE_PATH", t.TempDir())

	cfg, err := config.Load()
	assert.NoError(err, "could not load config")

	testLogger := newTestLogger()

	searchDB, err := searchdb.New(testLogger, cfg)
	assert.NoError(err, "could not create search database")

	userDB, err := userdb.New(testLogger, cfg)
	assert.NoError(err, "could not create user database")

	historyDB, err := kvdb.New(testLogger, cfg)
	assert.NoError(err, "could not create kv database")

	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")

	ingestService := ingest.New(context.Background(), testLogger, searchDB, historyDB, 2, 8)
	searchService := search.New(testLogger, searchDB)
	gate := quota.New(testLogger, userDB)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	authed := router.Group("", testAuthMiddleware(userDB))
	SetupSearch(authed, testLogger, searchService, gate, validator)
	SetupStats(authed, testLogger, searchDB)

	admin := authed.Group("/admin", testAdminOnlyMiddleware())
	SetupUpload(admin, testLogger, ingestService, historyDB)
	SetupAdmin(admin, testLogger, userDB, validator)

	t.Cleanup(func() {
		assert.NoError(searchDB.Close(), "could not close search database")
		assert.NoError(userDB.Close(), "could not close user database")
		assert.NoError(historyDB.Close(), "could not close kv database")
	})

	seedTestUsers(assert, userDB)

	return &testServer{router: router, searchDB: searchDB, userDB: userDB}
}

func seedTestUsers(assert *require.Assertions, users userdb.DB) {

	for _, user := range []*userdb.User{
		{Email: "admin@example.com", IsVerified: true, IsActive: true, IsAdmin: true, SearchesRemaining: 100, APIKey: testKeyAdmin},
		{Email: "member@example.com", IsVerified: true, IsActive: true, SearchesRemaining: 10, APIKey: testKeyMember},
		{Email: "unverified@example.com", IsVerified: false, IsActive: true, SearchesRemaining: 10, APIKey: testKeyUnverified},
		{Email: "exhausted@example.com", IsVerified: true, IsActive: true, SearchesRemaining: 0, APIKey: testKeyExhausted},
	} {
		assert.NoError(users.CreateUser(user), "could not seed test user")
	}
}

func makeTestHTTPRequest(router *gin.Engine, assert *require.Assertions, method string, endpoint string, apiKey string, requestBodyMap map[string]any, queryParams map[string]string) *httptest.ResponseRecorder {

	var err error
	w := httptest.NewRecorder()

	if len(queryParams) > 0 {
		endpoint = endpoint + "?"
		for key, value := range queryParams {
			if endpoint[len(endpoint)-1] != '?' {
				endpoint = endpoint + "&"
			}
			endpoint = endpoint + key + "=" + value
		}
	}

	var req *http.Request
	if requestBodyMap != nil {
		jsonBody, marshalErr := json.Marshal(requestBodyMap)
		assert.NoError(marshalErr)
		req, err = http.NewRequest(method, endpoint, bytes.NewBuffer(jsonBody))
		assert.NoError(err)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, err = http.NewRequest(method, endpoint, nil)
		assert.NoError(err)
	}

	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	router.ServeHTTP(w, req)

	return w
}

func makeTestUploadRequest(router *gin.Engine, assert *require.Assertions, apiKey string, filename string, content []byte) *httptest.ResponseRecorder {

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		assert.NoError(err)
		_, err = part.Write(content)
		assert.NoError(err)
	}
	assert.NoError(writer.Close())

	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodPost, "/admin/upload-data", body)
	assert.NoError(err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	router.ServeHTTP(w, req)

	return w
}

func decodeResponse(assert *require.Assertions, w *httptest.ResponseRecorder) map[string]any {
	var responseMap map[string]any
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &responseMap), "response was not valid JSON: %s", w.Body.String())
	return responseMap
}

// waitForJob polls the status endpoint until the job leaves the running
// state, the way a client would.
func waitForJob(assert *require.Assertions, router *gin.Engine, jobID string) map[string]any {

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		w := makeTestHTTPRequest(router, assert, http.MethodGet, "/admin/upload-status/"+jobID, testKeyAdmin, nil, nil)
		assert.Equal(http.StatusOK, w.Code, "status polling failed: %s", w.Body.String())

		job := decodeResponse(assert, w)["data"].(map[string]any)
		if job["status"] != "running" {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}

	assert.FailNow("job " + jobID + " did not reach a terminal state")
	return nil
}
