package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"blockflow/accounts"
	"blockflow/metrics"
	"blockflow/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	claims *accounts.Claims
	err    error
	token  string
}

func (s *stubAuth) Authenticate(_ context.Context, token string) (*accounts.Claims, error) {
	s.token = token
	return s.claims, s.err
}

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newEngine := func(auth Authenticator) *gin.Engine {
		r := gin.New()
		r.GET("/me", AuthMiddleware(auth), func(c *gin.Context) {
			claims, _ := Claims(c)
			c.JSON(http.StatusOK, gin.H{"username": claims.Username, "token": c.GetString(TokenKey)})
		})
		r.GET("/admin", AuthMiddleware(auth), AdminMiddleware(), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
		return r
	}

	t.Run("AuthMiddleware_MissingToken", func(t *testing.T) {
		rec := serve(newEngine(&stubAuth{}), http.MethodGet, "/me", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("AuthMiddleware_StoresClaims", func(t *testing.T) {
		auth := &stubAuth{claims: &accounts.Claims{UserID: 2, Username: "testuser2", Role: models.RoleUser}}
		rec := serve(newEngine(auth), http.MethodGet, "/me", bearer("abc"))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "abc", auth.token)
		require.JSONEq(t, `{"username":"testuser2","token":"abc"}`, rec.Body.String())
	})

	t.Run("AuthMiddleware_MapsErrors", func(t *testing.T) {
		rec := serve(newEngine(&stubAuth{err: models.ErrUnauthorized}), http.MethodGet, "/me", bearer("abc"))
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = serve(newEngine(&stubAuth{err: models.ErrForbidden}), http.MethodGet, "/me", bearer("abc"))
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("AdminMiddleware_ChecksRole", func(t *testing.T) {
		user := &stubAuth{claims: &accounts.Claims{UserID: 2, Role: models.RoleUser}}
		rec := serve(newEngine(user), http.MethodGet, "/admin", bearer("abc"))
		require.Equal(t, http.StatusForbidden, rec.Code)

		admin := &stubAuth{claims: &accounts.Claims{UserID: 1, Role: models.RoleAdmin}}
		rec = serve(newEngine(admin), http.MethodGet, "/admin", bearer("abc"))
		require.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestObservabilityMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("RequestID_EchoesOrGenerates", func(t *testing.T) {
		r := gin.New()
		r.Use(RequestID())
		r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		rec := serve(r, http.MethodGet, "/ping", http.Header{RequestIDHeader: []string{"req-1"}})
		require.Equal(t, "req-1", rec.Header().Get(RequestIDHeader))

		rec = serve(r, http.MethodGet, "/ping", nil)
		require.Len(t, rec.Header().Get(RequestIDHeader), 36)
	})

	t.Run("Recovery_ReturnsInternalError", func(t *testing.T) {
		r := gin.New()
		r.Use(RequestID(), Logging(), Recovery())
		r.GET("/boom", func(*gin.Context) { panic("boom") })

		rec := serve(r, http.MethodGet, "/boom", nil)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Contains(t, rec.Body.String(), "Internal server error")
	})

	t.Run("Metrics_LabelsByRoute", func(t *testing.T) {
		m := metrics.New()
		r := gin.New()
		r.Use(Metrics(m))
		r.GET("/api/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

		serve(r, http.MethodGet, "/api/products/1", nil)
		serve(r, http.MethodGet, "/api/products/2", nil)
		serve(r, http.MethodGet, "/nowhere", nil)

		require.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/products/:id", "200")))
		require.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	})
}
