package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/solenhq/teamgate/internal/auth"
	"github.com/solenhq/teamgate/internal/database/models"
	"github.com/solenhq/teamgate/pkg/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Owner{},
		&models.Member{},
		&models.Admin{},
		&models.Team{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// CleanupTestDB closes the test database connection
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("warning: failed to get sql.DB: %v", err)
		return
	}
	sqlDB.Close()
}

// TestLoginConfig matches the production defaults: 5 attempts, 15-minute
// lockout, 10-minute OTP lifetime.
func TestLoginConfig() config.LoginConfig {
	return config.LoginConfig{
		MaxAttempts:    5,
		LockoutMinutes: 15,
		OTPTTLMinutes:  10,
	}
}

// RecordingSender implements auth.Sender and captures delivered codes so
// tests can complete verification and OTP flows without SMTP.
type RecordingSender struct {
	mu                sync.Mutex
	VerificationCodes map[string]string
	LoginOTPs         map[string]string
}

func NewRecordingSender() *RecordingSender {
	return &RecordingSender{
		VerificationCodes: make(map[string]string),
		LoginOTPs:         make(map[string]string),
	}
}

func (s *RecordingSender) SendVerificationCode(ctx context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.VerificationCodes[email] = code
	return nil
}

func (s *RecordingSender) SendLoginOTP(ctx context.Context, email, otp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LoginOTPs[email] = otp
	return nil
}

func (s *RecordingSender) LastVerificationCode(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.VerificationCodes[email]
}

func (s *RecordingSender) LastLoginOTP(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LoginOTPs[email]
}

// CreateTestOwner creates a verified, active owner in its own tenant
func CreateTestOwner(t *testing.T, db *gorm.DB) *models.Owner {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	owner := &models.Owner{
		Base: models.Base{
			ID: uuid.New(),
		},
		Name:          "Test Owner",
		OrgName:       "Test Org",
		Email:         "owner-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash:  hash,
		TenantID:      uuid.New(),
		Role:          "super_admin",
		Status:        models.StatusActive,
		EmailVerified: true,
	}

	if err := db.Create(owner).Error; err != nil {
		t.Fatalf("failed to create test owner: %v", err)
	}

	return owner
}

// CreateTestMember creates an active member in the owner's tenant
func CreateTestMember(t *testing.T, db *gorm.DB, owner *models.Owner) *models.Member {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	member := &models.Member{
		Base: models.Base{
			ID: uuid.New(),
		},
		Name:          "Test Member",
		Email:         "member-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash:  hash,
		TenantID:      owner.TenantID,
		Status:        models.StatusActive,
		EmailVerified: true,
		Roles:         models.StringArray{"user"},
	}

	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create test member: %v", err)
	}

	return member
}

// CreateTestTeam creates a team owned by the given owner
func CreateTestTeam(t *testing.T, db *gorm.DB, owner *models.Owner) *models.Team {
	t.Helper()

	team := &models.Team{
		Base: models.Base{
			ID: uuid.New(),
		},
		Name:     "Test Team",
		TenantID: owner.TenantID,
		OwnerID:  owner.ID,
		Status:   models.StatusActive,
	}

	if err := db.Create(team).Error; err != nil {
		t.Fatalf("failed to create test team: %v", err)
	}

	owner.TeamIDs = append(owner.TeamIDs, team.ID)
	if err := db.Save(owner).Error; err != nil {
		t.Fatalf("failed to update owner team list: %v", err)
	}

	return team
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService(
		"test-access-secret", "test-refresh-secret",
		15*time.Minute, 7*24*time.Hour,
	)
}

// OwnerToken generates a valid access token for the given owner
func OwnerToken(t *testing.T, jwtService *auth.JWTService, owner *models.Owner) string {
	t.Helper()

	token, err := jwtService.GenerateAccessToken(owner.ID, owner.TenantID, owner.Email, owner.Role)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// MemberToken generates a valid access token for the given member
func MemberToken(t *testing.T, jwtService *auth.JWTService, member *models.Member) string {
	t.Helper()

	role := "user"
	if len(member.Roles) > 0 {
		role = member.Roles[0]
	}
	token, err := jwtService.GenerateAccessToken(member.ID, member.TenantID, member.Email, role)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}
