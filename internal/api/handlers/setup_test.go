package handlers_test

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/solenhq/teamgate/internal/api"
	"github.com/solenhq/teamgate/internal/auth"
	"github.com/solenhq/teamgate/internal/testutil"
	"gorm.io/gorm"
)

type testServer struct {
	router http.Handler
	db     *gorm.DB
	jwt    *auth.JWTService
	sender *testutil.RecordingSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	jwtService := testutil.CreateTestJWTService()
	sender := testutil.NewRecordingSender()
	authService := auth.NewService(db, jwtService, sender, testutil.TestLoginConfig())

	router := api.NewRouter(api.RouterConfig{
		DB:          db,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		JWTService:  jwtService,
		AuthService: authService,
		Sender:      sender,
	})

	return &testServer{router: router, db: db, jwt: jwtService, sender: sender}
}
