package web_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dukex/swimlane/pkg/builder"
	"github.com/dukex/swimlane/pkg/log"
	"github.com/dukex/swimlane/pkg/mocks"
	"github.com/dukex/swimlane/pkg/models"
	"github.com/dukex/swimlane/pkg/persistence/file"
	"github.com/dukex/swimlane/pkg/services"
	"github.com/dukex/swimlane/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const brokenGraph = `{
	"name": "Сломанный процесс",
	"roles": [{"id": "r1", "name": "Менеджер"}],
	"stages": [{"id": "s1", "name": "Этап", "order": 1}],
	"blocks": [{"id": "b1", "name": "Старт", "type": "start", "role": "r1", "stage": "s1", "connections": ["ghost"]}]
}`

func answers() models.Answers {
	return models.Answers{
		"process_name": "Продажа услуг",
		"roles":        "Менеджер, Юрист",
	}
}

func setupTestApp(t *testing.T, logs *log.RingBuffer) (*fiber.App, *services.Process) {
	t.Helper()

	service := services.NewProcess(file.NewPersistence(t.TempDir()))
	handlers := web.NewAPIHandlers(service, validator.New(validator.WithRequiredStructEnabled()), logs)

	return newApp(handlers), service
}

func newApp(handlers *web.APIHandlers) *fiber.App {
	app := fiber.New()

	app.Get("/health", handlers.HealthCheck)
	app.Get("/logs", handlers.GetLogs)
	app.Post("/build", handlers.Build)
	app.Post("/validate", handlers.Validate)
	app.Post("/passport", handlers.Passport)

	p := app.Group("/processes")
	p.Get("/", handlers.GetProcesses)
	p.Post("/generate", handlers.GenerateProcess)
	p.Post("/import", handlers.ImportProcess)
	p.Get("/:id", handlers.GetProcess)
	p.Delete("/:id", handlers.DeleteProcess)
	p.Get("/:id/quality", handlers.GetProcessQuality)
	p.Get("/:id/passport", handlers.GetProcessPassport)
	p.Get("/:id/snapshots", handlers.GetProcessSnapshots)
	p.Post("/:id/snapshots/:snapshotId/rollback", handlers.RollbackProcess)

	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader

	switch value := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(value)
	default:
		encoded, err := json.Marshal(value)
		require.NoError(t, err)

		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, payload
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t, nil)

	resp, body := doRequest(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"healthy"`)

	p := mocks.NewMockPersistence()
	p.On("HealthCheck", mock.Anything).Return(errors.New("disk gone"))

	unhealthy := newApp(web.NewAPIHandlers(services.NewProcess(p), validator.New(), nil))

	resp, body = doRequest(t, unhealthy, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(body), "disk gone")
	p.AssertExpectations(t)
}

func TestAPIHandlers_Build(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t, nil)

	resp, body := doRequest(t, app, http.MethodPost, "/build", web.BuildRequest{
		CompanyName: "Ромашка",
		Answers:     answers(),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data models.ProcessData
	require.NoError(t, json.Unmarshal(body, &data))
	assert.Equal(t, builder.Build(answers(), "Ромашка"), &data)

	resp, _ = doRequest(t, app, http.MethodPost, "/build", "{not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIHandlers_Validate(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t, nil)

	tests := []struct {
		name           string
		body           any
		expectedStatus int
		check          func(t *testing.T, body []byte)
	}{
		{
			name:           "builder graph has no errors",
			body:           builder.Build(answers(), ""),
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var result models.QualityCheckResult
				require.NoError(t, json.Unmarshal(body, &result))
				assert.False(t, result.HasErrors())
				assert.NotEmpty(t, result.Items)
			},
		},
		{
			name:           "broken graph is scored, not refused",
			body:           brokenGraph,
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var result models.QualityCheckResult
				require.NoError(t, json.Unmarshal(body, &result))
				assert.True(t, result.HasErrors())
			},
		},
		{
			name:           "nil block violates the contract",
			body:           `{"name": "x", "roles": [], "stages": [], "blocks": [null]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid json",
			body:           "[",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp, body := doRequest(t, app, http.MethodPost, "/validate", tt.body)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func TestAPIHandlers_Passport(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t, nil)
	graph := builder.Build(answers(), "")

	resp, body := doRequest(t, app, http.MethodPost, "/passport", graph)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pass models.ProcessPassport
	require.NoError(t, json.Unmarshal(body, &pass))
	assert.Equal(t, graph.Name, pass.Name)
	assert.NotEmpty(t, pass.MainFlow)

	resp, body = doRequest(t, app, http.MethodPost, "/passport?format=yaml", graph)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "yaml")

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(body, &decoded))
	assert.Equal(t, graph.Name, decoded["name"])

	resp, body = doRequest(t, app, http.MethodPost, "/passport?format=markdown", graph)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "markdown")
	assert.Contains(t, string(body), "# Паспорт процесса «"+graph.Name+"»")

	resp, _ = doRequest(t, app, http.MethodPost, "/passport?format=xml", graph)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIHandlers_GenerateProcess(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t, nil)

	resp, _ := doRequest(t, app, http.MethodPost, "/processes/generate", web.GenerateProcessRequest{Answers: answers()})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := doRequest(t, app, http.MethodPost, "/processes/generate", web.GenerateProcessRequest{
		Owner:   "owner-1",
		Answers: answers(),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created services.ProcessResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, 1, created.Process.Version)
	assert.Equal(t, models.SourceBuilder, created.Process.Source)

	resp, body = doRequest(t, app, http.MethodPost, "/processes/generate", web.GenerateProcessRequest{
		ProcessID: created.Process.ID,
		Owner:     "owner-1",
		Answers:   answers(),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var regenerated services.ProcessResponse
	require.NoError(t, json.Unmarshal(body, &regenerated))
	assert.Equal(t, 2, regenerated.Process.Version)

	resp, _ = doRequest(t, app, http.MethodPost, "/processes/generate", web.GenerateProcessRequest{
		ProcessID: created.Process.ID,
		Owner:     "intruder",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodPost, "/processes/generate", web.GenerateProcessRequest{
		ProcessID: "missing",
		Owner:     "owner-1",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_ImportProcess(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t, nil)

	graph, err := json.Marshal(builder.Build(answers(), ""))
	require.NoError(t, err)

	fenced, err := json.Marshal("```json\n" + string(graph) + "\n```")
	require.NoError(t, err)

	tests := []struct {
		name           string
		body           any
		expectedStatus int
		check          func(t *testing.T, body []byte)
	}{
		{
			name:           "graph object",
			body:           web.ImportProcessRequest{Owner: "owner-1", Graph: graph},
			expectedStatus: http.StatusCreated,
			check: func(t *testing.T, body []byte) {
				var created services.ProcessResponse
				require.NoError(t, json.Unmarshal(body, &created))
				assert.Equal(t, models.SourceExternal, created.Process.Source)
			},
		},
		{
			name:           "fenced text output",
			body:           web.ImportProcessRequest{Owner: "owner-1", Graph: fenced},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing graph",
			body:           web.ImportProcessRequest{Owner: "owner-1"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown label",
			body:           web.ImportProcessRequest{Owner: "owner-1", Graph: graph, Label: "whatever"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed graph",
			body:           web.ImportProcessRequest{Owner: "owner-1", Graph: json.RawMessage(`{"blocks": "nope"}`)},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "rejected graph",
			body:           web.ImportProcessRequest{Owner: "owner-1", Graph: json.RawMessage(brokenGraph)},
			expectedStatus: http.StatusUnprocessableEntity,
			check: func(t *testing.T, body []byte) {
				var problem struct {
					Type    string                     `json:"type"`
					Status  int                        `json:"status"`
					Quality *models.QualityCheckResult `json:"quality"`
				}
				require.NoError(t, json.Unmarshal(body, &problem))
				assert.Equal(t, "process_rejected", problem.Type)
				assert.Equal(t, http.StatusUnprocessableEntity, problem.Status)
				require.NotNil(t, problem.Quality)
				assert.True(t, problem.Quality.HasErrors())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp, body := doRequest(t, app, http.MethodPost, "/processes/import", tt.body)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode, string(body))

			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func TestAPIHandlers_ProcessLifecycle(t *testing.T) {
	t.Parallel()

	app, service := setupTestApp(t, nil)

	created, err := service.Generate(t.Context(), services.GenerateRequest{Owner: "owner-1", Answers: answers()})
	require.NoError(t, err)

	_, err = service.Generate(t.Context(), services.GenerateRequest{
		ProcessID: created.Process.ID,
		Owner:     "owner-1",
		Answers:   models.Answers{"process_name": "Новый процесс"},
	})
	require.NoError(t, err)

	base := "/processes/" + created.Process.ID

	resp, body := doRequest(t, app, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var current models.Process
	require.NoError(t, json.Unmarshal(body, &current))
	assert.Equal(t, "Новый процесс", current.Data.Name)

	resp, _ = doRequest(t, app, http.MethodGet, base+"/quality", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doRequest(t, app, http.MethodGet, base+"/passport?format=yaml", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Новый процесс")

	resp, body = doRequest(t, app, http.MethodGet, base+"/snapshots", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var history struct {
		Snapshots  []*models.Snapshot `json:"snapshots"`
		TotalCount int                `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(body, &history))
	require.Equal(t, 1, history.TotalCount)

	resp, body = doRequest(t, app, http.MethodPost, base+"/snapshots/"+history.Snapshots[0].ID+"/rollback", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rolledBack services.ProcessResponse
	require.NoError(t, json.Unmarshal(body, &rolledBack))
	assert.Equal(t, 3, rolledBack.Process.Version)
	assert.Equal(t, "Продажа услуг", rolledBack.Process.Data.Name)

	resp, _ = doRequest(t, app, http.MethodPost, base+"/snapshots/missing/rollback", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	for _, target := range []string{base, base + "/quality", base + "/passport", base + "/snapshots"} {
		resp, _ = doRequest(t, app, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, target)
	}

	resp, _ = doRequest(t, app, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_GetProcesses(t *testing.T) {
	t.Parallel()

	app, service := setupTestApp(t, nil)

	for _, owner := range []string{"owner-1", "owner-1", "owner-2"} {
		_, err := service.Generate(t.Context(), services.GenerateRequest{Owner: owner, Answers: answers()})
		require.NoError(t, err)
	}

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedCount  int
		expectedTotal  int64
		expectedNext   bool
	}{
		{name: "all", query: "", expectedStatus: http.StatusOK, expectedCount: 3, expectedTotal: 3},
		{name: "owner filter", query: "?owner_id=owner-1", expectedStatus: http.StatusOK, expectedCount: 2, expectedTotal: 2},
		{name: "paged", query: "?limit=1&offset=1", expectedStatus: http.StatusOK, expectedCount: 1, expectedTotal: 3, expectedNext: true},
		{name: "sort by name", query: "?sort_by=name&sort_order=asc", expectedStatus: http.StatusOK, expectedCount: 3, expectedTotal: 3},
		{name: "bad limit", query: "?limit=abc", expectedStatus: http.StatusBadRequest},
		{name: "bad sort field", query: "?sort_by=score", expectedStatus: http.StatusBadRequest},
		{name: "bad sort order", query: "?sort_order=sideways", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp, body := doRequest(t, app, http.MethodGet, "/processes"+tt.query, nil)
			require.Equal(t, tt.expectedStatus, resp.StatusCode, string(body))

			if tt.expectedStatus != http.StatusOK {
				return
			}

			var page struct {
				Processes   []*models.Process `json:"processes"`
				TotalCount  int64             `json:"total_count"`
				HasNextPage bool              `json:"has_next_page"`
			}
			require.NoError(t, json.Unmarshal(body, &page))
			assert.Len(t, page.Processes, tt.expectedCount)
			assert.Equal(t, tt.expectedTotal, page.TotalCount)
			assert.Equal(t, tt.expectedNext, page.HasNextPage)
		})
	}
}

func TestAPIHandlers_GetLogs(t *testing.T) {
	t.Parallel()

	buffer := log.NewRingBuffer(2)
	buffer.Push(log.Entry{Time: time.Unix(1, 0), Level: "INFO", Message: "first"})
	buffer.Push(log.Entry{Time: time.Unix(2, 0), Level: "WARN", Message: "second", Attrs: map[string]any{"module": "api"}})
	buffer.Push(log.Entry{Time: time.Unix(3, 0), Level: "ERROR", Message: "third"})

	app, _ := setupTestApp(t, buffer)

	resp, body := doRequest(t, app, http.MethodGet, "/logs", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var logs web.LogsResponse
	require.NoError(t, json.Unmarshal(body, &logs))
	assert.Equal(t, 2, logs.Count)
	assert.Equal(t, 2, logs.Capacity)
	require.Len(t, logs.Entries, 2)
	assert.Equal(t, "second", logs.Entries[0].Message)
	assert.Equal(t, "api", logs.Entries[0].Attrs["module"])
	assert.Equal(t, "third", logs.Entries[1].Message)

	withoutBuffer, _ := setupTestApp(t, nil)

	resp, _ = doRequest(t, withoutBuffer, http.MethodGet, "/logs", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
