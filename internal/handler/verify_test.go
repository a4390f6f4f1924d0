package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"unlock/internal/service"
	"unlock/internal/signature"
	"unlock/internal/tests"
)

func newVerifyRouter(secret string) (*gin.Engine, *tests.MockEntitlementStore) {
	gin.SetMode(gin.TestMode)

	entitlements := tests.NewMockEntitlementStore()
	records := tests.NewMockPaymentRecordRepository()
	reconciler := service.NewReconciliationService(tests.NewMockReconciliationRepository())
	grants := service.NewGrantManager(entitlements, records, reconciler)
	verifyService := service.NewVerifyService(signature.NewVerifier(secret), grants)

	router := gin.New()
	router.POST("/v1/verify", NewVerifyHandler(verifyService).Verify)
	return router, entitlements
}

func postVerify(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/verify", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestVerifyEndpoint_ValidSignature(t *testing.T) {
	router, entitlements := newVerifyRouter("test_secret")
	sig := signature.NewVerifier("test_secret").Sign("order_abc", "pay_xyz")

	body := fmt.Sprintf(`{"order_id":"order_abc","payment_id":"pay_xyz","signature":"%s","user_id":"u1","target_id":"g42"}`, sig)
	w := postVerify(router, body)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp VerifyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !resp.Verified {
		t.Error("expected verified true")
	}
	if resp.Error != "" {
		t.Errorf("expected no error field, got %q", resp.Error)
	}
	if !entitlements.HasTarget("u1", "g42") {
		t.Error("expected entitlement granted")
	}
}

func TestVerifyEndpoint_SignatureMismatch(t *testing.T) {
	router, entitlements := newVerifyRouter("test_secret")
	forged := signature.NewVerifier("wrong_secret").Sign("order_abc", "pay_xyz")

	body := fmt.Sprintf(`{"order_id":"order_abc","payment_id":"pay_xyz","signature":"%s","user_id":"u1","target_id":"g42"}`, forged)
	w := postVerify(router, body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var resp VerifyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Verified {
		t.Error("expected verified false")
	}
	if resp.Error == "" {
		t.Error("expected an error message")
	}
	if entitlements.HasTarget("u1", "g42") {
		t.Error("expected no entitlement for forged signature")
	}
}

func TestVerifyEndpoint_GrantFailureCarriesOrderID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	entitlements := tests.NewMockEntitlementStore()
	entitlements.GrantError = fmt.Errorf("redis write refused")
	reconciler := service.NewReconciliationService(tests.NewMockReconciliationRepository())
	grants := service.NewGrantManager(entitlements, tests.NewMockPaymentRecordRepository(), reconciler)
	verifyService := service.NewVerifyService(signature.NewVerifier("test_secret"), grants)

	router := gin.New()
	router.POST("/v1/verify", NewVerifyHandler(verifyService).Verify)

	sig := signature.NewVerifier("test_secret").Sign("order_abc", "pay_xyz")
	body := fmt.Sprintf(`{"order_id":"order_abc","payment_id":"pay_xyz","signature":"%s","user_id":"u1","target_id":"g42"}`, sig)
	w := postVerify(router, body)

	// Payment captured and verified, so 200 even though the grant failed.
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp VerifyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !resp.Verified {
		t.Error("expected verified true for a captured payment")
	}
	if resp.OrderID != "order_abc" {
		t.Errorf("expected order id for support followup, got %q", resp.OrderID)
	}
	if resp.Error == "" {
		t.Error("expected an error message telling the user to contact support")
	}
}

func TestVerifyEndpoint_MissingFieldIsBadRequest(t *testing.T) {
	router, _ := newVerifyRouter("test_secret")

	body := `{"order_id":"order_abc","payment_id":"pay_xyz","user_id":"u1","target_id":"g42"}`
	w := postVerify(router, body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Error == "" {
		t.Error("expected an error message")
	}
}

func TestVerifyEndpoint_MalformedBody(t *testing.T) {
	router, _ := newVerifyRouter("test_secret")

	w := postVerify(router, `{"order_id":`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
