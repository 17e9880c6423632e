package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"
)

// webhook handles platform webhooks. The payload is authenticated with an
// HMAC-SHA256 digest of the raw body, keyed with the app secret.
func (s Server) webhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		body, err := io.ReadAll(r.Body)
		if err != nil {
			s.Logger.Debugf("webhook: Error reading body, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		mac := hmac.New(sha256.New, []byte(s.WebhookSecret))
		mac.Write(body)
		expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
		got := r.Header.Get("X-Shopify-Hmac-Sha256")
		if !hmac.Equal([]byte(expected), []byte(got)) {
			s.Logger.Debugf("webhook: HMAC verification failed, TraceID: %s", tid)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		topic := r.Header.Get("X-Shopify-Topic")
		shop := r.Header.Get("X-Shopify-Shop-Domain")
		s.Logger.Infof("webhook: Received topic: %s for shop: %s, TraceID: %s", topic, shop, tid)

		switch topic {
		case "app/uninstalled":
			n, err := s.DB.TimersDeleteByShop(r.Context(), shop)
			if err != nil {
				s.Logger.Errorf("webhook: Error deleting Timers for shop: %s, err: %v, TraceID: %s", shop, err, tid)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if err = s.DB.StoreDeleteByShop(r.Context(), shop); err != nil {
				s.Logger.Errorf("webhook: Error deleting Store for shop: %s, err: %v, TraceID: %s", shop, err, tid)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			s.Logger.Infof("webhook: App uninstalled from shop: %s, deleted %d Timer(s), TraceID: %s", shop, n, tid)
		default:
			s.Logger.Debugf("webhook: Unhandled topic: %s, TraceID: %s", topic, tid)
		}
		w.WriteHeader(http.StatusOK)
	}
}
