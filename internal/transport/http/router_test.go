package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/ricknaldos/buzentry-main-sub001/internal/config"
	"github.com/ricknaldos/buzentry-main-sub001/internal/domain"
	jwtinfra "github.com/ricknaldos/buzentry-main-sub001/internal/infrastructure/jwt"
	redisinfra "github.com/ricknaldos/buzentry-main-sub001/internal/infrastructure/redis"
	"github.com/ricknaldos/buzentry-main-sub001/internal/infrastructure/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:            "test",
		JWTSecret:         "test-secret",
		JWTExpiry:         time.Hour,
		AllowedOrigins:    []string{"*"},
		EventRetention:    30 * 24 * time.Hour,
		VerifyMaxAttempts: 5,
		VerifyWindow:      15 * time.Minute,
	}
}

func newTestRouter(t *testing.T, webhookURL string) (http.Handler, *jwtinfra.Provider) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := testConfig()
	provider, err := jwtinfra.NewProvider(cfg)
	require.NoError(t, err)

	deps := &Deps{
		ProfileRepo:   redisinfra.NewProfileRepo(client),
		PhoneRepo:     redisinfra.NewPhoneRepo(client),
		EventRepo:     redisinfra.NewEventRepo(client, cfg.EventRetention),
		RateLimitRepo: redisinfra.NewRateLimitRepo(client, cfg.VerifyMaxAttempts, cfg.VerifyWindow),
		Forwarder:     webhook.NewForwarder(webhookURL),
		JWTProvider:   provider,
	}
	return NewRouter(cfg, deps), provider
}

func doJSON(t *testing.T, router http.Handler, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	} else {
		buf = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rr.Body).Decode(v))
}

func TestRouter_UnauthenticatedProfileRejected(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rr := doJSON(t, router, http.MethodGet, "/v1/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouter_HealthCheck(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rr := doJSON(t, router, http.MethodGet, "/v1/health-check/ping", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

// Full visitor journey: the resident sets up their profile and a single-use
// passcode, the door station verifies it once, and the second attempt is
// denied with everything visible in the ledger.
func TestRouter_VisitorJourney(t *testing.T) {
	var forwarded int32
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&forwarded, 1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer hook.Close()

	router, provider := newTestRouter(t, hook.URL)
	token, err := provider.Sign("alice@example.com")
	require.NoError(t, err)

	// Create the profile.
	rr := doJSON(t, router, http.MethodPost, "/v1/profile", token, map[string]string{"door_code": "9"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var profile domain.UserProfile
	decode(t, rr, &profile)
	assert.Equal(t, "alice@example.com", profile.UserID)

	// Bind the entry phone number.
	rr = doJSON(t, router, http.MethodPost, "/v1/phone-number", token, map[string]string{"phone_number": "+15551234567"})
	require.Equal(t, http.StatusOK, rr.Code)

	// Mint a single-use guest passcode.
	rr = doJSON(t, router, http.MethodPost, "/v1/passcodes", token, map[string]interface{}{
		"label": "guest", "max_usages": 1,
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	var pc domain.Passcode
	decode(t, rr, &pc)
	require.Len(t, pc.Code, 4)

	// The door station verifies the code.
	verifyBody := map[string]string{"phone_number": "+15551234567", "code": pc.Code, "call_sid": "CA1"}
	rr = doJSON(t, router, http.MethodPost, "/v1/telephony/verify", "", verifyBody)
	require.Equal(t, http.StatusOK, rr.Code)
	var verify struct {
		Granted bool   `json:"granted"`
		Method  string `json:"method"`
	}
	decode(t, rr, &verify)
	assert.True(t, verify.Granted)
	assert.Equal(t, "passcode", verify.Method)

	// Single use: the second attempt is denied.
	verifyBody["call_sid"] = "CA2"
	rr = doJSON(t, router, http.MethodPost, "/v1/telephony/verify", "", verifyBody)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &verify)
	assert.False(t, verify.Granted)

	// Both outcomes landed in the ledger.
	rr = doJSON(t, router, http.MethodGet, "/v1/events", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Events []domain.AccessEvent `json:"events"`
	}
	decode(t, rr, &list)
	require.Len(t, list.Events, 2)
	assert.Equal(t, domain.EventAccessGranted, list.Events[0].EventType)
	assert.Equal(t, domain.EventAccessDenied, list.Events[1].EventType)

	// And were fanned out to the webhook.
	assert.Equal(t, int32(2), atomic.LoadInt32(&forwarded))

	// Analytics reflect the journey.
	rr = doJSON(t, router, http.MethodGet, "/v1/analytics", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var stats domain.EventStats
	decode(t, rr, &stats)
	assert.Equal(t, 2, stats.TotalEvents)
	assert.Equal(t, 1, stats.AccessGranted)
	assert.Equal(t, 1, stats.AccessDenied)
}

func TestRouter_VerifyUnknownNumber(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rr := doJSON(t, router, http.MethodPost, "/v1/telephony/verify", "", map[string]string{
		"phone_number": "+15550000000", "code": "1234", "call_sid": "CA9",
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_VerifyAttemptsAreRateLimited(t *testing.T) {
	router, provider := newTestRouter(t, "")
	token, err := provider.Sign("alice@example.com")
	require.NoError(t, err)

	rr := doJSON(t, router, http.MethodPost, "/v1/profile", token, map[string]string{"door_code": "9"})
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = doJSON(t, router, http.MethodPost, "/v1/phone-number", token, map[string]string{"phone_number": "+15551234567"})
	require.Equal(t, http.StatusOK, rr.Code)

	body := map[string]string{"phone_number": "+15551234567", "code": "0000", "call_sid": "CA1"}
	for i := 0; i < 5; i++ {
		rr = doJSON(t, router, http.MethodPost, "/v1/telephony/verify", "", body)
		require.Equal(t, http.StatusOK, rr.Code, "attempt %d", i+1)
	}
	rr = doJSON(t, router, http.MethodPost, "/v1/telephony/verify", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestRouter_AccessCodeUpdateAndVerify(t *testing.T) {
	router, provider := newTestRouter(t, "")
	token, err := provider.Sign("alice@example.com")
	require.NoError(t, err)

	rr := doJSON(t, router, http.MethodPost, "/v1/profile", token, map[string]string{})
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = doJSON(t, router, http.MethodPost, "/v1/phone-number", token, map[string]string{"phone_number": "+15551234567"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodPost, "/v1/profile/access-code", token, map[string]string{"access_code": "4321"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodPost, "/v1/telephony/verify", "", map[string]string{
		"phone_number": "+15551234567", "code": "4321", "call_sid": "CA1",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	var verify struct {
		Granted bool   `json:"granted"`
		Method  string `json:"method"`
	}
	decode(t, rr, &verify)
	assert.True(t, verify.Granted)
	assert.Equal(t, "access_code", verify.Method)
}

func TestRouter_UpdateValidationMapsTo400(t *testing.T) {
	router, provider := newTestRouter(t, "")
	token, err := provider.Sign("alice@example.com")
	require.NoError(t, err)

	rr := doJSON(t, router, http.MethodPost, "/v1/profile", token, map[string]string{})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, router, http.MethodPost, "/v1/profile/access-code", token, map[string]string{"access_code": "12"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRouter_PhoneConflictMapsTo409(t *testing.T) {
	router, provider := newTestRouter(t, "")
	aliceToken, err := provider.Sign("alice@example.com")
	require.NoError(t, err)
	bobToken, err := provider.Sign("bob@example.com")
	require.NoError(t, err)

	rr := doJSON(t, router, http.MethodPost, "/v1/profile", aliceToken, map[string]string{})
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = doJSON(t, router, http.MethodPost, "/v1/profile", bobToken, map[string]string{})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, router, http.MethodPost, "/v1/phone-number", aliceToken, map[string]string{"phone_number": "+15551234567"})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = doJSON(t, router, http.MethodPost, "/v1/phone-number", bobToken, map[string]string{"phone_number": "+15551234567"})
	assert.Equal(t, http.StatusConflict, rr.Code)
}
