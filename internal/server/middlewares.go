package server

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/pkg/errors"

	"countdowntimer/internal/model"
)

type shopContextKey struct{}
type shopContext struct {
	shop  string
	store model.Store
}

type traceContextKey struct{}
type traceContext struct {
	traceID string
}

func setShopContext(ctx context.Context, sc shopContext) context.Context {
	return context.WithValue(ctx, shopContextKey{}, sc)
}
func getShopContext(ctx context.Context) (shopContext, error) {
	sc, ok := ctx.Value(shopContextKey{}).(shopContext)
	if !ok {
		return sc, errors.New("failed to get ShopContext")
	}
	return sc, nil
}

func setTraceContext(ctx context.Context, tc traceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, tc)
}
func getTraceContext(ctx context.Context) traceContext {
	tc, _ := ctx.Value(traceContextKey{}).(traceContext)
	return tc
}

func (s Server) maxBytesMw(next http.Handler) http.Handler {
	return http.MaxBytesHandler(next, 64*1024)
}

func (s Server) loggingMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		traceID := uuid.NewString()
		s.Logger.Debugf("loggingMw: New incoming request %s %s from %s, UA: %s, Host: %#v, TraceID: %s",
			r.Method, r.URL.Path, r.RemoteAddr, r.UserAgent(), r.Host, traceID)

		defer func() {
			if re := recover(); re != nil {
				s.Logger.Errorf("loggingMw: Handler crashed, err: %v, TraceID: %s, stack trace:\n%s", re, traceID, debug.Stack())
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()

		tc := traceContext{traceID: traceID}
		next.ServeHTTP(w, r.WithContext(setTraceContext(r.Context(), tc)))

		s.Logger.Debugf("loggingMw: Incoming request %s %s took %dms, TraceID: %s",
			r.Method, r.URL.Path, time.Since(start).Milliseconds(), traceID)
	})
}

// corsMw opens the public widget endpoints to storefront origins. The widget
// runs on arbitrary shop domains, so the origin cannot be pinned.
func (s Server) corsMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authMw validates the embedded-admin session token and scopes the request to
// the shop it was issued for. The token is an HS256 JWT signed with the app
// secret; the dest claim carries the shop domain.
func (s Server) authMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		st := r.Header.Get("Authorization")
		if strings.HasPrefix(st, "Bearer ") {
			st = strings.TrimPrefix(st, "Bearer ")
			token, err := jwt.Parse([]byte(st),
				jwt.WithKey(jwa.HS256, s.SessionTokenKey),
				jwt.WithValidate(true),
				jwt.WithAcceptableSkew(5*time.Second),
			)
			if err != nil {
				s.Logger.Debugf("authMw: Failed to validate session token, err: %v, TraceID: %s", err, tid)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			shop, err := shopFromSessionToken(token)
			if err != nil {
				s.Logger.Errorf("authMw: Valid token contains no usable dest claim, err: %v, TraceID: %s", err, tid)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			store, err := s.DB.StoreFindByShop(r.Context(), shop)
			if err != nil {
				s.Logger.Debugf("authMw: Error finding Store for shop: %s, err: %v, TraceID: %s", shop, err, tid)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			s.Logger.Debugf("authMw: Shop: %s, TraceID: %s", shop, tid)

			sc := shopContext{
				shop:  shop,
				store: store,
			}
			next.ServeHTTP(w, r.WithContext(setShopContext(r.Context(), sc)))
			return
		}
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	})
}

func shopFromSessionToken(token jwt.Token) (string, error) {
	dest, _ := token.Get("dest")
	destStr, ok := dest.(string)
	if !ok || destStr == "" {
		return "", errors.New("dest claim missing or not a string")
	}
	shop := strings.TrimPrefix(destStr, "https://")
	shop = strings.TrimSuffix(shop, "/")
	if shop == "" {
		return "", errors.Errorf("dest claim contains no shop domain: %s", destStr)
	}
	return shop, nil
}
