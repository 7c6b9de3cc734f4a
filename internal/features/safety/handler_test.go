package safety

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xyz-asif/partsflip/internal/features/moderation"
	"github.com/xyz-asif/partsflip/internal/middleware"
	"github.com/xyz-asif/partsflip/internal/pkg/jwt"
	apperrors "github.com/xyz-asif/partsflip/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "safety-secret"

// memReports aggregates like Repository.File
type memReports struct {
	reports []*moderation.Report
}

func (m *memReports) File(_ context.Context, report *moderation.Report) (bool, error) {
	for _, r := range m.reports {
		if r.ReportedItemType != report.ReportedItemType || r.ReportedItemID != report.ReportedItemID || r.Status.IsTerminal() {
			continue
		}
		for _, id := range r.ReporterIDs {
			if id == report.ReporterID {
				return false, apperrors.Conflict("you have already reported this %s", report.ReportedItemType)
			}
		}
		r.ReportCount++
		r.ReporterIDs = append(r.ReporterIDs, report.ReporterID)
		*report = *r
		return true, nil
	}
	report.ID = primitive.NewObjectID()
	report.ReporterIDs = []primitive.ObjectID{report.ReporterID}
	report.Status = moderation.StatusOpen
	report.ReportCount = 1
	stored := *report
	m.reports = append(m.reports, &stored)
	return false, nil
}

type memContent map[primitive.ObjectID]*moderation.Item

func (m memContent) Get(_ context.Context, itemType moderation.ItemType, id primitive.ObjectID) (*moderation.Item, error) {
	it, ok := m[id]
	if !ok || it.Type != itemType {
		return nil, apperrors.NotFound("%s not found", itemType)
	}
	return it, nil
}

func (m memContent) Delete(context.Context, moderation.ItemType, primitive.ObjectID) error {
	return nil
}

func setup(content memContent) (*gin.Engine, *memReports) {
	gin.SetMode(gin.TestMode)
	reports := &memReports{}
	h := NewHandler(reports, content)
	r := gin.New()
	r.POST("/api/v1/reports", middleware.Auth(testSecret), h.CreateReport)
	return r, reports
}

func post(t *testing.T, r *gin.Engine, userID primitive.ObjectID, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	tok, err := jwt.GenerateToken(userID.Hex(), "u@partsflip.test", jwt.RoleUser, nil, jwt.DefaultConfig(testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/reports", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w, out
}

func TestCreateReport_SnapshotAndAggregation(t *testing.T) {
	seller := primitive.NewObjectID()
	listing := &moderation.Item{
		ID:         primitive.NewObjectID(),
		Type:       moderation.ItemListing,
		Title:      "Turbo kit",
		Price:      899,
		AuthorID:   seller,
		AuthorName: "seller",
		Tags:       []string{"Engine", "engine", " Turbo "},
	}
	r, reports := setup(memContent{listing.ID: listing})
	body := `{"itemType":"listing","itemId":"` + listing.ID.Hex() + `","reason":"  asks for wire transfer  "}`

	first := primitive.NewObjectID()
	w, out := post(t, r, first, body)
	require.Equal(t, http.StatusCreated, w.Code)
	data := out["data"].(map[string]any)
	assert.Equal(t, false, data["aggregated"])
	assert.Equal(t, float64(1), data["reportCount"])

	require.Len(t, reports.reports, 1)
	stored := reports.reports[0]
	assert.Equal(t, "asks for wire transfer", stored.Reason)
	assert.Equal(t, []string{"engine", "turbo"}, stored.AssociatedTags)
	assert.Equal(t, "Turbo kit", stored.ReportedItemSnapshot.Title)
	assert.Equal(t, float64(899), stored.ReportedItemSnapshot.Price)
	assert.Equal(t, seller, stored.ReportedItemSnapshot.AuthorID)

	w, out = post(t, r, primitive.NewObjectID(), body)
	require.Equal(t, http.StatusCreated, w.Code)
	data = out["data"].(map[string]any)
	assert.Equal(t, true, data["aggregated"])
	assert.Equal(t, float64(2), data["reportCount"])
	assert.Len(t, reports.reports, 1)

	w, out = post(t, r, first, body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", out["code"])
}

func TestCreateReport_Rejects(t *testing.T) {
	owner := primitive.NewObjectID()
	comment := &moderation.Item{ID: primitive.NewObjectID(), Type: moderation.ItemComment, AuthorID: owner}
	r, reports := setup(memContent{comment.ID: comment})
	id := comment.ID.Hex()

	tests := []struct {
		name   string
		user   primitive.ObjectID
		body   string
		status int
		code   string
	}{
		{"short reason", primitive.NewObjectID(), `{"itemType":"comment","itemId":"` + id + `","reason":" bad "}`, 422, "VALIDATION_FAILED"},
		{"unknown type", primitive.NewObjectID(), `{"itemType":"blogpost","itemId":"` + id + `","reason":"offensive"}`, 422, "VALIDATION_FAILED"},
		{"bad id", primitive.NewObjectID(), `{"itemType":"comment","itemId":"xyz","reason":"offensive"}`, 422, "VALIDATION_FAILED"},
		{"own content", owner, `{"itemType":"comment","itemId":"` + id + `","reason":"offensive"}`, 422, "VALIDATION_FAILED"},
		{"missing item", primitive.NewObjectID(), `{"itemType":"comment","itemId":"` + primitive.NewObjectID().Hex() + `","reason":"offensive"}`, 404, "NOT_FOUND"},
		{"missing field", primitive.NewObjectID(), `{"itemType":"comment"}`, 400, "INVALID_JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, out := post(t, r, tt.user, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, out["code"])
		})
	}
	assert.Empty(t, reports.reports)
}
