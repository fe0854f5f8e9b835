package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"account-hub/internal/audit"
	"account-hub/internal/auth"
	"account-hub/internal/config"
	"account-hub/internal/service"
	"account-hub/internal/session"
	"account-hub/internal/store"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	dir := t.TempDir()
	fs, err := store.OpenFileStore(filepath.Join(dir, "accounts.json"))
	if err != nil {
		t.Fatalf("OpenFileStore: %v", err)
	}
	trail, err := audit.Open(filepath.Join(dir, "audit.jsonl"))
	if err != nil {
		t.Fatalf("audit.Open: %v", err)
	}

	issuer := session.NewIssuer("test-secret", "account-hub", time.Hour)
	hasher := auth.NewHasher(4)
	svc := service.NewAccountService(fs, issuer, hasher, []string{"admin"})

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode},
		Security: config.SecurityConfig{
			EncryptionKey:   "test-backup-key",
			PrivilegedNames: []string{"admin"},
		},
		Backup: config.BackupConfig{Dir: filepath.Join(dir, "backups")},
	}

	return Setup(Deps{
		Config:  cfg,
		Store:   fs,
		Service: svc,
		Trail:   trail,
	})
}

type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if ct := w.Header().Get("Content-Type"); strings.Contains(ct, "application/json") {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func register(t *testing.T, r *gin.Engine, name, email, password, role string) (accountID, token string) {
	t.Helper()

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"fullName": name, "email": email, "password": password, "role": role,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register %s: status %d body %s", email, w.Code, w.Body.String())
	}
	var data struct {
		Account struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"account"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return data.Account.ID, data.Token
}

func TestRegisterLoginFlow(t *testing.T) {
	r := newTestRouter(t)

	_, token := register(t, r, "Alice Smith", "alice@example.com", "pw123456", "")
	if token == "" {
		t.Fatal("no token from register")
	}

	// duplicate registration conflicts
	w, env := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"fullName": "Other", "email": "ALICE@example.com", "password": "x",
	})
	if w.Code != http.StatusConflict || env.Code != service.KindDuplicateEmail {
		t.Errorf("duplicate register: status %d code %q", w.Code, env.Code)
	}

	// missing fields
	w, env = doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{"email": "x@y.z"})
	if w.Code != http.StatusBadRequest || env.Code != service.KindMissingField {
		t.Errorf("missing field register: status %d code %q", w.Code, env.Code)
	}

	// login, case-insensitive
	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"identifier": "Alice@Example.Com", "password": "pw123456",
	})
	if w.Code != http.StatusOK {
		t.Errorf("login: status %d body %s", w.Code, w.Body.String())
	}

	// wrong password and unknown identifier both 401 invalid_credentials
	for _, body := range []gin.H{
		{"identifier": "alice@example.com", "password": "nope"},
		{"identifier": "ghost@example.com", "password": "nope"},
	} {
		w, env = doJSON(t, r, http.MethodPost, "/api/auth/login", "", body)
		if w.Code != http.StatusUnauthorized || env.Code != service.KindInvalidCredentials {
			t.Errorf("login failure: status %d code %q", w.Code, env.Code)
		}
	}
}

func TestPublicDirectory(t *testing.T) {
	r := newTestRouter(t)
	register(t, r, "Alice", "alice@example.com", "pw123456", "")
	register(t, r, "Bob", "bob@example.com", "pw123456", "")

	w, _ := doJSON(t, r, http.MethodGet, "/api/accounts", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("directory: status %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "alice@example.com") || !strings.Contains(body, "bob@example.com") {
		t.Errorf("directory missing accounts: %s", body)
	}
	for _, forbidden := range []string{"passwordHash", "$2a$", "phone", "role"} {
		if strings.Contains(body, forbidden) {
			t.Errorf("directory leaks %q", forbidden)
		}
	}
}

func TestProtectedRoutes(t *testing.T) {
	r := newTestRouter(t)
	_, token := register(t, r, "bob", "bob@example.com", "pw123456", "")

	// no token
	w, env := doJSON(t, r, http.MethodGet, "/api/me", "", nil)
	if w.Code != http.StatusUnauthorized || env.Code != service.KindUnauthorized {
		t.Errorf("anonymous /me: status %d code %q", w.Code, env.Code)
	}

	// tampered token
	w, _ = doJSON(t, r, http.MethodGet, "/api/me", token[:len(token)-2]+"xx", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("tampered token: status %d", w.Code)
	}

	// valid token
	w, _ = doJSON(t, r, http.MethodGet, "/api/me", token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("/me: status %d body %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "passwordHash") {
		t.Error("/me leaks the password hash")
	}

	// profile edit with an escalation attempt: role must stay member
	w, env = doJSON(t, r, http.MethodPost, "/api/profile", token, gin.H{
		"fullName": "bob", "email": "bob@example.com", "role": "Administrator",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("profile edit: status %d body %s", w.Code, w.Body.String())
	}
	var data struct {
		Account struct {
			Role string `json:"role"`
		} `json:"account"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Account.Role != "member" {
		t.Errorf("escalated to %q via profile edit", data.Account.Role)
	}
}

func TestAdminSurface(t *testing.T) {
	r := newTestRouter(t)

	_, adminToken := register(t, r, "admin", "admin@example.com", "pw123456", "admin")
	memberID, memberToken := register(t, r, "Carol", "carol@example.com", "pw123456", "")

	// member is rejected by the admin gate
	w, _ := doJSON(t, r, http.MethodGet, "/api/admin/audit", memberToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("member reached admin surface: status %d", w.Code)
	}

	// admin grants a role
	w, env := doJSON(t, r, http.MethodPost, "/api/admin/accounts/"+memberID+"/role", adminToken, gin.H{"role": "admin"})
	if w.Code != http.StatusOK {
		t.Fatalf("set role: status %d body %s", w.Code, w.Body.String())
	}
	var data struct {
		Account struct {
			Role string `json:"role"`
		} `json:"account"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Account.Role != "admin" {
		t.Errorf("granted role = %q", data.Account.Role)
	}

	// unknown target
	w, _ = doJSON(t, r, http.MethodPost, "/api/admin/accounts/missing/role", adminToken, gin.H{"role": "admin"})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown target: status %d", w.Code)
	}

	// audit trail recorded the authenticated admin calls
	w, env = doJSON(t, r, http.MethodGet, "/api/admin/audit", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("audit list: status %d", w.Code)
	}
	if !strings.Contains(string(env.Data), "/api/admin/accounts/") {
		t.Errorf("audit trail missing events: %s", env.Data)
	}

	// CSV export carries rows but no hashes
	w, _ = doJSON(t, r, http.MethodGet, "/api/admin/export/csv", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("csv export: status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "carol@example.com") {
		t.Error("csv export missing account row")
	}
	if strings.Contains(w.Body.String(), "$2a$") {
		t.Error("csv export leaks password hashes")
	}
}

func TestBackupRoundtrip(t *testing.T) {
	r := newTestRouter(t)

	_, adminToken := register(t, r, "admin", "admin@example.com", "pw123456", "admin")
	register(t, r, "Alice", "alice@example.com", "pw123456", "")

	// snapshot the current two accounts
	w, env := doJSON(t, r, http.MethodPost, "/api/admin/backups", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("create backup: status %d body %s", w.Code, w.Body.String())
	}
	var created struct {
		Backup struct {
			Name string `json:"name"`
		} `json:"backup"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// change state after the snapshot
	register(t, r, "Bob", "bob@example.com", "pw123456", "")

	// restore rolls back to two accounts
	w, _ = doJSON(t, r, http.MethodPost, "/api/admin/backups/"+created.Backup.Name+"/restore", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("restore: status %d body %s", w.Code, w.Body.String())
	}

	w, _ = doJSON(t, r, http.MethodGet, "/api/accounts", "", nil)
	body := w.Body.String()
	if strings.Contains(body, "bob@example.com") {
		t.Error("restore did not roll back the post-snapshot account")
	}
	if !strings.Contains(body, "alice@example.com") {
		t.Error("restore lost a snapshotted account")
	}

	// path traversal in the name param is rejected
	w, _ = doJSON(t, r, http.MethodPost, "/api/admin/backups/..%2Faccounts.json/restore", adminToken, nil)
	if w.Code == http.StatusOK {
		t.Error("traversal name accepted")
	}
}
