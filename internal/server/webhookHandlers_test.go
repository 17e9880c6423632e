package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signWebhookBody(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestWebhookRejectsBadHmac(t *testing.T) {
	s := testServer()
	s.WebhookSecret = "shhh"

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/webhooks", strings.NewReader(`{}`))
	r.Header.Set("X-Shopify-Hmac-Sha256", "bogus")
	s.webhook()(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookRejectsMissingHmac(t *testing.T) {
	s := testServer()
	s.WebhookSecret = "shhh"

	w := httptest.NewRecorder()
	s.webhook()(w, httptest.NewRequest(http.MethodPost, "/api/webhooks", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookAcceptsUnhandledTopic(t *testing.T) {
	s := testServer()
	s.WebhookSecret = "shhh"

	body := `{"id":1}`
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/webhooks", strings.NewReader(body))
	r.Header.Set("X-Shopify-Hmac-Sha256", signWebhookBody("shhh", body))
	r.Header.Set("X-Shopify-Topic", "shop/update")
	r.Header.Set("X-Shopify-Shop-Domain", "s1.myshopify.com")
	s.webhook()(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
}
