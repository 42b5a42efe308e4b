package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"rtiassist/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, seen *model.LetterRequest) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"message":"RTI Assistant API","version":"1.0.0","endpoints":["/predict","/generate-letter","/pios"]}`)
	})
	mux.HandleFunc("/pios", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"departments": ["Revenue", "Transport"],
			"department_pios": {
				"Revenue": [{"PIO_Authority": "Tahsildar", "Authority_Name": "K. Iyer", "State": "TN"}],
				"Transport": [{"PIO_Authority": "RTO", "Authority_Name": "M. Shah", "State": "GJ"}]
			}
		}`)
	})
	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"predicted_department":"Transport","confidence":0.9,"pios":[
			{"Department":"Transport","PIO_Authority":"RTO","Authority_Name":"M. Shah","State":"GJ"},
			{"Department":"Transport","PIO_Authority":"Deputy RTO","Authority_Name":"P. Nair","State":"GJ"}
		]}`)
	})
	mux.HandleFunc("/generate-letter", func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"letter":"To,\nThe PIO\n"}`)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHealthCmd(t *testing.T) {
	ts := newBackend(t, nil)
	out, err := run(t, "--api-url", ts.URL, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "RTI Assistant API (version 1.0.0)")
	assert.Contains(t, out, "/generate-letter")
}

func TestHealthCmd_Unreachable(t *testing.T) {
	ts := newBackend(t, nil)
	url := ts.URL
	ts.Close()

	_, err := run(t, "--api-url", url, "health")
	assert.Error(t, err)
}

func TestPiosCmd(t *testing.T) {
	ts := newBackend(t, nil)

	out, err := run(t, "--api-url", ts.URL, "pios")
	require.NoError(t, err)
	assert.Contains(t, out, "Revenue\n  Tahsildar - K. Iyer (TN)\n")
	assert.Contains(t, out, "Transport\n  RTO - M. Shah (GJ)\n")

	out, err = run(t, "--api-url", ts.URL, "pios", "--department", "transport")
	require.NoError(t, err)
	assert.NotContains(t, out, "Revenue")

	_, err = run(t, "--api-url", ts.URL, "pios", "--department", "Health")
	assert.ErrorContains(t, err, `department "Health" not found`)
}

func TestPredictCmd(t *testing.T) {
	ts := newBackend(t, nil)

	out, err := run(t, "--api-url", ts.URL, "predict", "driving", "licence", "delayed")
	require.NoError(t, err)
	assert.Contains(t, out, "Department: Transport\n")
	assert.Contains(t, out, "Confidence: 90.0%\n")
	assert.Contains(t, out, "[1] Deputy RTO - P. Nair (GJ)")

	out, err = run(t, "--api-url", ts.URL, "predict", "--json", "licence")
	require.NoError(t, err)
	var result model.PredictionResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Len(t, result.Pios, 2)

	_, err = run(t, "--api-url", ts.URL, "predict", "  ")
	assert.ErrorContains(t, err, "Please enter your complaint or issue")
}

func TestLetterCmd(t *testing.T) {
	var seen model.LetterRequest
	ts := newBackend(t, &seen)

	out, err := run(t, "--api-url", ts.URL, "letter",
		"--complaint", "licence not issued", "--name", "Ravi", "--address", "Ahmedabad", "--pio", "1")
	require.NoError(t, err)
	assert.Equal(t, "To,\nThe PIO\n", out)
	assert.Equal(t, model.LetterRequest{
		UserIssue:     "licence not issued",
		UserName:      "Ravi",
		UserAddress:   "Ahmedabad",
		Department:    "Transport",
		PIOAuthority:  "Deputy RTO",
		AuthorityName: "P. Nair",
		State:         "GJ",
	}, seen)
}

func TestLetterCmd_Output(t *testing.T) {
	ts := newBackend(t, nil)
	path := filepath.Join(t.TempDir(), "letter.txt")

	out, err := run(t, "--api-url", ts.URL, "letter",
		"--complaint", "licence", "--name", "Ravi", "--address", "Ahmedabad", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "To,\nThe PIO\n", string(data))
}

func TestLetterCmd_Validation(t *testing.T) {
	ts := newBackend(t, nil)

	_, err := run(t, "--api-url", ts.URL, "letter", "--complaint", "x", "--name", " ", "--address", "y")
	assert.ErrorContains(t, err, "Please fill in all required fields")

	_, err = run(t, "--api-url", ts.URL, "letter", "--complaint", "x", "--name", "a", "--address", "y", "--pio", "5")
	assert.ErrorContains(t, err, "invalid officer selection")
}

func TestBodyCmd_NotConfigured(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := run(t, "body", "--subject", "Road repair", "--point", "pothole")
	assert.ErrorContains(t, err, "OPENAI_API_KEY")
}

func TestBodyCmd(t *testing.T) {
	var prompt struct {
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
	}
	llmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&prompt))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  Please repair the road.  "}}]}`)
	}))
	t.Cleanup(llmSrv.Close)

	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("LLM_BASE_URL", llmSrv.URL+"/v1/")

	out, err := run(t, "body", "--subject", "Road repair", "--point", "pothole", "--point", "no lights", "--tone", "neutral")
	require.NoError(t, err)
	assert.Equal(t, "Please repair the road.\n", out)
	require.Len(t, prompt.Messages, 2)
	assert.Contains(t, prompt.Messages[0].Content, "neutral letters in English")
	assert.Contains(t, prompt.Messages[1].Content, "1. pothole\n2. no lights")
}
