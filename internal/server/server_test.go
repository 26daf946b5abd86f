package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/abhisek/questgen/internal/curriculum"
	"github.com/abhisek/questgen/internal/llm"
	"github.com/abhisek/questgen/internal/pipeline"
	"github.com/abhisek/questgen/internal/problemgen"
	"github.com/abhisek/questgen/internal/questiontype"
)

const mcResponse = `{
	"type": "multiple_choice",
	"question": "Which number is the largest?",
	"topic": "comparing positive and negative numbers",
	"options": ["-7", "3", "-1", "0"],
	"correct_answer": 1
}`

func newTestRouter(responses ...llm.MockResponse) http.Handler {
	cfg := problemgen.DefaultConfig()
	cfg.Backoff = llm.Backoff{}
	orch := problemgen.NewOrchestrator(llm.NewMockProvider(responses...), cfg)
	return NewRouter(&Container{
		Pipeline:   pipeline.NewCoordinator(orch),
		Classifier: questiontype.NewClassifier(nil),
		Skills:     curriculum.SeedCatalog(),
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPipeline_Success(t *testing.T) {
	h := newTestRouter(llm.MockResponse{Content: json.RawMessage(mcResponse)})
	body := `{
		"selection": {"grade_level": "5", "career": "Engineer"},
		"skill": {"subject": "Math", "skill_name": "Comparing positive and negative numbers", "skill_id": "MATH.5.NBT.3"},
		"answer": 1
	}`

	rec := do(t, h, http.MethodPost, "/v1/pipeline", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.True(t, res.Stages.Feedback)
	require.NotNil(t, res.Validation)
	assert.True(t, res.Validation.IsCorrect)
	assert.Contains(t, res.Feedback, "Perfect calculation!")
	require.NotNil(t, res.RenderData)
	assert.Equal(t, pipeline.InputChoice, res.RenderData.Input)
}

func TestPipeline_InvalidSelection(t *testing.T) {
	body := `{"selection": {"grade_level": "", "career": "Engineer"}, "skill": {"subject": "Math", "skill_name": "x"}}`
	rec := do(t, newTestRouter(), http.MethodPost, "/v1/pipeline", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var res pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Invalid user selection", res.Error)
	assert.Equal(t, pipeline.Stages{}, res.Stages)
}

func TestPipeline_BadJSON(t *testing.T) {
	rec := do(t, newTestRouter(), http.MethodPost, "/v1/pipeline", `{"selection": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request body")

	rec = do(t, newTestRouter(), http.MethodPost, "/v1/pipeline", `{"selecton": {}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPipelineStatus(t *testing.T) {
	tests := []struct {
		name string
		res  pipeline.Result
		want int
	}{
		{"success", pipeline.Result{Success: true}, http.StatusOK},
		{"input", pipeline.Result{Stages: pipeline.Stages{UserSelection: true}}, http.StatusBadRequest},
		{"generation", pipeline.Result{Stages: pipeline.Stages{UserSelection: true, SkillContext: true}}, http.StatusBadGateway},
		{"conversion", pipeline.Result{Stages: pipeline.Stages{UserSelection: true, SkillContext: true, AIGeneration: true}}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		if got := pipelineStatus(&tt.res); got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		body string
		want questiontype.Tag
	}{
		{`{"grade": "1", "subject": "Math", "skill_name": "Count to 20"}`, questiontype.Counting},
		{`{"grade": "7", "subject": "ELA", "skill_name": "Write an argument"}`, questiontype.LongAnswer},
		{`{"grade": "5", "subject": "Math", "skill_name": "Solve fraction addition"}`, questiontype.Numeric},
	}
	h := newTestRouter()
	for _, tt := range tests {
		rec := do(t, h, http.MethodPost, "/v1/classify", tt.body)
		require.Equal(t, http.StatusOK, rec.Code)
		var got classifyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, string(tt.want), got.Type, tt.body)
		assert.NotEmpty(t, got.DisplayName)
	}
}

func TestListSkills(t *testing.T) {
	h := newTestRouter()

	rec := do(t, h, http.MethodGet, "/v1/skills?grade=5&subject=Math", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Skills []curriculum.Skill `json:"skills"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Skills, 2)
	assert.Equal(t, "MATH.5.NBT.3", body.Skills[0].ID)

	rec = do(t, h, http.MethodGet, "/v1/skills?grade=12&subject=Math", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"skills": []}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/v1/skills?subject=Math", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSkill(t *testing.T) {
	h := newTestRouter()

	rec := do(t, h, http.MethodGet, "/v1/skills/SCI.5.LS.1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Photosynthesis basics")

	rec = do(t, h, http.MethodGet, "/v1/skills/NOPE", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestRouter()

	rec := do(t, h, http.MethodGet, "/v1/pipeline", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"method not allowed"}`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/v1/skills/SCI.5.LS.1", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(t, h, http.MethodGet, "/v2/pipeline", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, ln, newTestRouter(), Options{ReadTimeout: time.Second}, zap.NewNop())
	}()

	client := &http.Client{Timeout: time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	client.CloseIdleConnections()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
