package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"weighbridge_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func authTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	chain := append([]gin.HandlerFunc{}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"operator_id": c.GetString("operatorID")})
	})
	engine.GET("/protected", chain...)
	return engine
}

func doAuthRequest(engine *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	token, err := utils.GenerateOperatorToken("op-7", "Dana Weigher", "operator")
	require.NoError(t, err)

	engine := authTestRouter(AuthMiddleware())
	rec := doAuthRequest(engine, "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "op-7")
}

func TestAuthMiddlewareRejectsMissingOrMalformedHeader(t *testing.T) {
	engine := authTestRouter(AuthMiddleware())

	rec := doAuthRequest(engine, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doAuthRequest(engine, "Basic abc123")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doAuthRequest(engine, "Bearer not-a-token")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleAuthMiddleware(t *testing.T) {
	operatorToken, err := utils.GenerateOperatorToken("op-7", "Dana Weigher", "operator")
	require.NoError(t, err)
	supervisorToken, err := utils.GenerateOperatorToken("op-9", "Sam Super", "supervisor")
	require.NoError(t, err)

	engine := authTestRouter(AuthMiddleware(), RoleAuthMiddleware("admin", "supervisor"))

	rec := doAuthRequest(engine, "Bearer "+operatorToken)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doAuthRequest(engine, "Bearer "+supervisorToken)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAllowAllPassesWithoutToken(t *testing.T) {
	engine := authTestRouter(AllowAll())
	rec := doAuthRequest(engine, "")
	require.Equal(t, http.StatusOK, rec.Code)
}
