// Package helpers provides the integration test harness: a real HTTP
// server over a real postgres database. Tests skip when DATABASE_URL is
// not set.
package helpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/centuriocontact-dev/matching-interim-api/database"
	"github.com/centuriocontact-dev/matching-interim-api/internal/app"
	"github.com/centuriocontact-dev/matching-interim-api/internal/config"
)

type TestServer struct {
	Server *httptest.Server
	DB     *gorm.DB
}

func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	config.LoadConfig()
	cfg := config.GetConfig()

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	router := app.SetupRouter(cfg, db)
	server := httptest.NewServer(router)

	ts := &TestServer{Server: server, DB: db}
	t.Cleanup(func() {
		ts.Truncate(t)
		server.Close()
	})
	return ts
}

// Truncate empties the domain tables so tests start from a clean slate.
func (ts *TestServer) Truncate(t *testing.T) {
	t.Helper()
	if err := ts.DB.Exec("TRUNCATE matchings, besoins, candidats CASCADE").Error; err != nil {
		t.Fatalf("failed to truncate test tables: %v", err)
	}
}

// DoJSON performs an authenticated JSON request against the test server
// and returns the status code and raw body.
func (ts *TestServer) DoJSON(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return resp.StatusCode, raw
}
