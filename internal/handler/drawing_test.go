package handler

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whiteboard-backend/internal/model"
	"whiteboard-backend/internal/realtime"
)

func newDrawingApp(t *testing.T) (*fiber.App, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := newMockDB(t)
	h := NewDrawingHandler(db, nil, realtime.NewHub())

	app := fiber.New()
	app.Post("/api/boards/:boardId/drawing/strokes", authAs("alice"), h.SaveStroke)
	return app, mock
}

func TestSaveStrokeEraserForcesFullOpacity(t *testing.T) {
	app, mock := newDrawingApp(t)

	mock.ExpectQuery(`INSERT INTO "drawing_strokes"`).
		WithArgs("s1", "b-123", nil, "alice", model.EraseColor, 4.0, 1.0,
			`[{"x":1,"y":2,"timestamp":3}]`, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	body := `{"strokeId":"s1","color":"erase","brushSize":4,"opacity":0.5,` +
		`"points":[{"x":1,"y":2,"timestamp":3}]}`
	req := httptest.NewRequest(fiber.MethodPost, "/api/boards/b-123/drawing/strokes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveStrokeRejectsEmptyStroke(t *testing.T) {
	app, mock := newDrawingApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/api/boards/b-123/drawing/strokes", strings.NewReader(`{"color":"#fff"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
