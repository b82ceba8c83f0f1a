package importing

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"formulary-manager/feature/ingredient"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupApp(t *testing.T) (*fiber.App, *ingredient.ReconcileStore) {
	t.Helper()

	store := testReconcileStore()
	h := NewHandler(NewService(store, zap.NewNop()))

	app := fiber.New()
	h.RegisterRoutes(app)

	return app, store
}

func TestHandleAnalyze(t *testing.T) {
	app, store := setupApp(t)
	seedRecord(t, store, "ANION_GAP", "Anion Gap", "electrolytes", "na - (cl + hco3)")

	body, err := json.Marshal(AnalyzeRequest{
		Ingredients: []map[string]any{
			rawEntry("ANION_GAP", "Anion Gap", "electrolytes", "na - (cl + hco3)"),
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/import/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result ImportAnalysisResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 1, result.Summary.ExactMatches)
}

func TestHandleAnalyze_BadBody(t *testing.T) {
	app, _ := setupApp(t)

	req := httptest.NewRequest("POST", "/import/analyze", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandleExecute(t *testing.T) {
	app, store := setupApp(t)

	body, err := json.Marshal(ExecuteRequest{
		Ingredients: []map[string]any{
			rawEntry("ANION_GAP", "Anion Gap", "electrolytes", "na - (cl + hco3)"),
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/import/execute", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result ImportResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Created)

	_, err = store.Get(context.Background(), "anion-gap")
	assert.NoError(t, err)
}

func TestHandleExecute_PartialFailureStillReturns200(t *testing.T) {
	app, _ := setupApp(t)

	body, err := json.Marshal(ExecuteRequest{
		Ingredients: []map[string]any{
			rawEntry("ANION_GAP", "Anion Gap", "electrolytes", "na - (cl + hco3)"),
			{"displayName": "no name"},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/import/execute", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result ImportResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Created)
	assert.Len(t, result.Errors, 1)
}
