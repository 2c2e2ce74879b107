package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/cache"
	"github.com/trezcool/darasa/core/selection"
	restsvc "github.com/trezcool/darasa/services/rest"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type nopLogger struct{}

func (nopLogger) Enable(bool)                        {}
func (nopLogger) Debug(string, ...interface{})       {}
func (nopLogger) Info(string, ...interface{})        {}
func (nopLogger) Warn(string, ...interface{})        {}
func (nopLogger) Error(string, ...interface{})       {}
func (nopLogger) Fatal(msg string, _ ...interface{}) { panic(msg) }

// upstreamStub stands in for the backend services: canned responses by path,
// every call recorded.
type upstreamStub struct {
	srv *httptest.Server

	mu        sync.Mutex
	responses map[string]stubResponse
	calls     []stubCall
}

type stubResponse struct {
	code int
	body string
}

type stubCall struct {
	path  string
	query url.Values
	auth  string
}

func newUpstreamStub(t *testing.T) *upstreamStub {
	t.Helper()
	stub := &upstreamStub{responses: make(map[string]stubResponse)}
	stub.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		stub.calls = append(stub.calls, stubCall{path: r.URL.Path, query: r.URL.Query(), auth: r.Header.Get("Authorization")})
		resp, ok := stub.responses[r.URL.Path]
		stub.mu.Unlock()

		if !ok {
			resp = stubResponse{code: http.StatusNotFound, body: `{"message":"no stub for path"}`}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.code)
		_, _ = w.Write([]byte(resp.body))
	}))
	t.Cleanup(stub.srv.Close)
	return stub
}

func (stub *upstreamStub) respond(path string, code int, body string) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.responses[path] = stubResponse{code: code, body: body}
}

func (stub *upstreamStub) callCount(path string) int {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	var n int
	for _, call := range stub.calls {
		if call.path == path {
			n++
		}
	}
	return n
}

func (stub *upstreamStub) lastCall(t *testing.T) stubCall {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	if len(stub.calls) == 0 {
		t.Fatal("no upstream calls recorded")
	}
	return stub.calls[len(stub.calls)-1]
}

type testEnv struct {
	app      Server
	upstream *upstreamStub
	cacheSvc *cache.Service
	selSvc   *selection.Service
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	upstream := newUpstreamStub(t)
	conf := &core.Config{
		TestMode:  true,
		SecretKey: "s3cr3t-t3st-k3y",
		Upstream: core.UpstreamConfig{
			AcademicsURL:    upstream.srv.URL,
			OrganizationURL: upstream.srv.URL,
			PaymentsURL:     upstream.srv.URL,
			Timeout:         2 * time.Second,
		},
		Cache: core.CacheConfig{
			DefaultTTL: time.Minute,
			StaleTTL:   5 * time.Minute,
		},
	}

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	selection.InitValidators(validate, translator)

	logger := nopLogger{}
	cacheSvc := cache.NewService(cache.NewStore(), restsvc.NewClient(conf.Upstream), logger, conf.Cache)
	selSvc := selection.NewService(inmemdb.NewSelectionRepository(), cacheSvc)

	app := NewServer(
		ServerDeps{
			Conf:           conf,
			Logger:         logger,
			Validate:       validate,
			Translator:     translator,
			CacheSvc:       cacheSvc,
			SelectionSvc:   selSvc,
			DisableReqLogs: true,
		},
	)

	return &testEnv{
		app:      app,
		upstream: upstream,
		cacheSvc: cacheSvc,
		selSvc:   selSvc,
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, userID, role string) string {
	t.Helper()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
		Username: userID,
		Role:     role,
	}
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
