package handler

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB opens gorm over a scripted sql connection
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

// authAs stands in for the auth middleware
func authAs(uid string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("uid", uid)
		return c.Next()
	}
}

func newBoardApp(t *testing.T) (*fiber.App, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := newMockDB(t)
	h := NewBoardHandler(db)

	app := fiber.New()
	app.Get("/api/boards/:boardId", authAs("alice"), h.GetBoard)
	app.Put("/api/boards/:boardId", authAs("alice"), h.UpdateBoard)
	app.Delete("/api/boards/:boardId", authAs("alice"), h.DeleteBoard)
	return app, mock
}

func TestGetBoardResolvesRouteParam(t *testing.T) {
	app, mock := newBoardApp(t)

	mock.ExpectQuery(`SELECT \* FROM "boards" WHERE id = \$1`).
		WithArgs("b-123", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_uid", "title", "created_at", "updated_at"}).
			AddRow("b-123", "alice", "Roadmap", time.Now(), time.Now()))
	mock.ExpectQuery(`SELECT \* FROM "containers"`).
		WithArgs("b-123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "board_id", "type", "x", "y", "width", "height", "z_index"}))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/boards/b-123", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBoardNotFound(t *testing.T) {
	app, mock := newBoardApp(t)

	mock.ExpectQuery(`SELECT \* FROM "boards" WHERE id = \$1`).
		WithArgs("missing", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/boards/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBoardScopedToOwner(t *testing.T) {
	app, mock := newBoardApp(t)

	mock.ExpectExec(`UPDATE "boards" SET`).
		WithArgs("New title", sqlmock.AnyArg(), "b-123", "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(fiber.MethodPut, "/api/boards/b-123", strings.NewReader(`{"title":"New title"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBoardNotOwned(t *testing.T) {
	app, mock := newBoardApp(t)

	mock.ExpectExec(`UPDATE "boards" SET`).
		WithArgs("New title", sqlmock.AnyArg(), "b-123", "alice").
		WillReturnResult(sqlmock.NewResult(0, 0))

	req := httptest.NewRequest(fiber.MethodPut, "/api/boards/b-123", strings.NewReader(`{"title":"New title"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBoardCascades(t *testing.T) {
	app, mock := newBoardApp(t)

	mock.ExpectQuery(`SELECT \* FROM "boards" WHERE id = \$1 AND owner_uid = \$2`).
		WithArgs("b-123", "alice", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_uid", "title"}).
			AddRow("b-123", "alice", "Roadmap"))

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "container_items"`).
		WithArgs("b-123").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "containers"`).
		WithArgs("b-123").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "drawing_strokes"`).
		WithArgs("b-123").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(`DELETE FROM "boards"`).
		WithArgs("b-123").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/api/boards/b-123", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBoardNotOwned(t *testing.T) {
	app, mock := newBoardApp(t)

	mock.ExpectQuery(`SELECT \* FROM "boards" WHERE id = \$1 AND owner_uid = \$2`).
		WithArgs("b-123", "alice", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/api/boards/b-123", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
