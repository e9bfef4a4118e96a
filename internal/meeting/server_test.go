package meeting_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bueroportal/bueroportal/internal/eventbus"
	"github.com/bueroportal/bueroportal/internal/meeting"
	"github.com/bueroportal/bueroportal/internal/meeting/repositoryimpl"
	"github.com/bueroportal/bueroportal/pkg/cerr"
	"github.com/bueroportal/bueroportal/pkg/storage"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	local, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	srv := meeting.NewServer(repositoryimpl.NewYAMLRepository(local), eventbus.New())

	r := chi.NewRouter()
	r.Use(cerr.NewJSONResponseChiMiddleware())
	srv.RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestMeetingCRUD(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/meetings", map[string]any{
		"title":        "Jour fixe KW 12",
		"date":         "2025-03-17",
		"participants": []string{"Anna", "Max"},
		"agenda": []map[string]any{
			{"topic": "Kampagnenstatus", "responsible": "Anna"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created meeting.Meeting
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	require.Len(t, created.Agenda, 1)
	assert.Equal(t, "Kampagnenstatus", created.Agenda[0].Topic)

	rec = doJSON(t, r, http.MethodPatch, "/meetings/"+created.ID, map[string]any{
		"minutes": "Plakatmotive freigegeben",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var patched meeting.Meeting
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &patched))
	assert.Equal(t, "Plakatmotive freigegeben", patched.Minutes)
	assert.Equal(t, "Jour fixe KW 12", patched.Title)

	rec = doJSON(t, r, http.MethodGet, "/meetings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []*meeting.Meeting
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 1)

	rec = doJSON(t, r, http.MethodDelete, "/meetings/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, r, http.MethodGet, "/meetings/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMeetingCreateValidation(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/meetings", map[string]any{"date": "2025-03-17"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "title is required")

	rec = doJSON(t, r, http.MethodPost, "/meetings", map[string]any{
		"title": "Jour fixe", "date": "17.03.2025",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "YYYY-MM-DD")
}
