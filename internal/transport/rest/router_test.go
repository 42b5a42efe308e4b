package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"rtiassist/internal/cache"
	"rtiassist/internal/llm"
	"rtiassist/internal/model"
	"rtiassist/internal/service"
	"rtiassist/internal/transport/rest/handler"
	"rtiassist/internal/transport/rest/middleware"
	"rtiassist/internal/web"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLetter = "To,\nThe Public Information Officer\nTaluk Office\n\nSubject: Request under RTI Act, 2005\n"

// fakeBackend records the calls made to the classifier backend
type fakeBackend struct {
	mu          sync.Mutex
	predicts    int
	letters     []model.LetterRequest
	predictFail bool
}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.predicts++
		fail := b.predictFail
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"detail":"Model not loaded"}`)
			return
		}
		io.WriteString(w, `{
			"predicted_department": "Food & Civil Supplies",
			"confidence": 0.82,
			"pios": [
				{"Department": "Food", "PIO_Authority": "Dist Supply Office", "Authority_Name": "R. Kumar", "State": "KA"},
				{"Department": "Food", "PIO_Authority": "Taluk Office", "Authority_Name": "S. Rao", "State": "KA"}
			]
		}`)
	})
	mux.HandleFunc("/generate-letter", func(w http.ResponseWriter, r *http.Request) {
		var req model.LetterRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		b.mu.Lock()
		b.letters = append(b.letters, req)
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(model.LetterResponse{Letter: testLetter})
	})
	return mux
}

func (b *fakeBackend) predictCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.predicts
}

func (b *fakeBackend) letterRequests() []model.LetterRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.LetterRequest(nil), b.letters...)
}

func (b *fakeBackend) failPredictions() {
	b.mu.Lock()
	b.predictFail = true
	b.mu.Unlock()
}

type testApp struct {
	server  *httptest.Server
	backend *fakeBackend
	client  *http.Client
}

func newTestApp(t *testing.T, completer llm.Completer) *testApp {
	t.Helper()

	backend := &fakeBackend{}
	backendSrv := httptest.NewServer(backend.handler(t))
	t.Cleanup(backendSrv.Close)

	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	client := service.NewBackendClient(backendSrv.URL, 5*time.Second, nil)
	wizard := service.NewWizardService(cache.NewMemorySessionCache(64, time.Hour), client, client, nil)
	tokens := service.NewSessionTokenService("test-secret", time.Hour)

	router := NewRouter(&Container{
		Wizard:     handler.NewWizardHandler(wizard, renderer, nil),
		LetterBody: handler.NewLetterBodyHandler(service.NewLetterBodyService(completer, nil), nil),
		Sessions:   middleware.NewSessionMiddleware(tokens, false, nil),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testApp{
		server:  srv,
		backend: backend,
		client:  &http.Client{Jar: jar},
	}
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (a *testApp) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.PostForm(a.server.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestWizardEndToEnd(t *testing.T) {
	app := newTestApp(t, &staticCompleter{})

	resp, page := app.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, page, "Find Department")

	// blank complaint never reaches the backend
	_, page = app.post(t, "/wizard/complaint", url.Values{"complaint": {"   "}})
	assert.Contains(t, page, service.MsgComplaintRequired)
	assert.Equal(t, 0, app.backend.predictCalls())

	resp, page = app.post(t, "/wizard/complaint", url.Values{"complaint": {"My ration card is not updated"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, page, "Food &amp; Civil Supplies")
	assert.Contains(t, page, "82.0%")
	assert.Contains(t, page, "Dist Supply Office - R. Kumar (KA)")
	assert.Equal(t, 1, app.backend.predictCalls())

	_, page = app.post(t, "/wizard/officer", url.Values{"pio_index": {"1"}})
	assert.Contains(t, page, "Authority: <strong>Taluk Office</strong>")

	_, page = app.post(t, "/wizard/letter", url.Values{"user_name": {""}, "user_address": {"12 MG Road"}, "pio_index": {"1"}})
	assert.Contains(t, page, service.MsgDetailsRequired)
	assert.Empty(t, app.backend.letterRequests())

	_, page = app.post(t, "/wizard/letter", url.Values{"user_name": {"Asha Devi"}, "user_address": {"12 MG Road, Bengaluru"}, "pio_index": {"1"}})
	assert.Contains(t, page, "Your RTI Letter")
	assert.Contains(t, page, "Subject: Request under RTI Act, 2005")

	letters := app.backend.letterRequests()
	require.Len(t, letters, 1)
	assert.Equal(t, model.LetterRequest{
		UserIssue:     "My ration card is not updated",
		UserName:      "Asha Devi",
		UserAddress:   "12 MG Road, Bengaluru",
		Department:    "Food",
		PIOAuthority:  "Taluk Office",
		AuthorityName: "S. Rao",
		State:         "KA",
	}, letters[0])

	resp, body := app.get(t, "/wizard/download")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Regexp(t, regexp.MustCompile(`^attachment; filename="RTI_Letter_\d{4}-\d{2}-\d{2}\.txt"$`), resp.Header.Get("Content-Disposition"))
	assert.Equal(t, testLetter, body)

	_, page = app.post(t, "/wizard/back", nil)
	assert.Contains(t, page, "Find Department")
	assert.NotContains(t, page, "Food &amp; Civil Supplies")

	resp, _ = app.get(t, "/wizard/download")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWizardOfficerChangeKeepsTypedDetails(t *testing.T) {
	app := newTestApp(t, &staticCompleter{})
	app.post(t, "/wizard/complaint", url.Values{"complaint": {"ration card"}})

	resp, page := app.post(t, "/wizard/officer", url.Values{
		"pio_index":    {"1"},
		"user_name":    {"R. Kumar"},
		"user_address": {"4 Temple Street, Mysuru"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, page, `<option value="1" selected>`)
	assert.Contains(t, page, "Authority: <strong>Taluk Office</strong>")
	assert.Contains(t, page, `value="R. Kumar"`)
	assert.Contains(t, page, "4 Temple Street, Mysuru</textarea>")
	assert.Empty(t, app.backend.letterRequests())
}

func TestWizardPredictFailureShowsDetail(t *testing.T) {
	app := newTestApp(t, &staticCompleter{})
	app.backend.failPredictions()

	_, page := app.post(t, "/wizard/complaint", url.Values{"complaint": {"water supply"}})
	assert.Contains(t, page, "Model not loaded")
	assert.Contains(t, page, "water supply")
}

func TestWizardSessionsAreIsolated(t *testing.T) {
	app := newTestApp(t, &staticCompleter{})
	_, page := app.post(t, "/wizard/complaint", url.Values{"complaint": {"pension delayed"}})
	assert.Contains(t, page, "82.0%")

	other := &http.Client{}
	resp, err := other.Get(app.server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Find Department")
	assert.NotEmpty(t, resp.Cookies())
}

func TestWizardStaleSubmissionRedirects(t *testing.T) {
	app := newTestApp(t, &staticCompleter{})

	// officer selection while still on home
	resp, page := app.post(t, "/wizard/officer", url.Values{"pio_index": {"0"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, page, "Find Department")
}

func TestWizardInvalidOfficerIndex(t *testing.T) {
	app := newTestApp(t, &staticCompleter{})
	app.post(t, "/wizard/complaint", url.Values{"complaint": {"roads"}})

	resp, _ := app.post(t, "/wizard/officer", url.Values{"pio_index": {"7"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = app.post(t, "/wizard/officer", url.Values{"pio_index": {"x"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, &staticCompleter{})
	resp, body := app.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
	assert.Empty(t, resp.Cookies())
}

func TestLetterBodyRoute(t *testing.T) {
	app := newTestApp(t, &staticCompleter{out: "  Kindly furnish the records.  "})

	resp, err := app.client.Post(app.server.URL+"/v1/letters", "application/json",
		strings.NewReader(`{"subject":"Road repair","keyPoints":["pothole"]}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out model.LetterBodyResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Kindly furnish the records.", out.Body)
}

func TestCORSPreflight(t *testing.T) {
	app := newTestApp(t, &staticCompleter{})
	req, err := http.NewRequest(http.MethodOptions, app.server.URL+"/v1/letters", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

type staticCompleter struct {
	out string
}

func (s *staticCompleter) Complete(context.Context, llm.Prompt) (string, error) {
	return s.out, nil
}
