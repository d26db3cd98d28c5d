package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/franchise-menu-sync/utils"
)

func setupRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":     c.GetUint("user_id"),
			"role":        c.GetString("role"),
			"location_id": c.GetUint("location_id"),
		})
	})
	return r
}

func get(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := setupRouter(AuthMiddleware())

	admin, err := utils.GenerateToken(1, utils.RoleFranchiseAdmin, 0)
	require.NoError(t, err)
	managerWithoutLocation, err := utils.GenerateToken(2, utils.RoleBranchManager, 0)
	require.NoError(t, err)
	manager, err := utils.GenerateToken(3, utils.RoleBranchManager, 5)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Token " + admin, http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"branch manager without location", "Bearer " + managerWithoutLocation, http.StatusUnauthorized},
		{"franchise admin", "Bearer " + admin, http.StatusOK},
		{"branch manager", "Bearer " + manager, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, get(r, tt.header).Code)
		})
	}

	w := get(r, "Bearer "+manager)
	assert.JSONEq(t, `{"user_id":3,"role":"branch_manager","location_id":5}`, w.Body.String())
}

func TestRequireRoles(t *testing.T) {
	r := setupRouter(AuthMiddleware(), RequireRoles(utils.RoleFranchiseAdmin))

	admin, _ := utils.GenerateToken(1, utils.RoleFranchiseAdmin, 0)
	manager, _ := utils.GenerateToken(3, utils.RoleBranchManager, 5)

	assert.Equal(t, http.StatusOK, get(r, "Bearer "+admin).Code)
	assert.Equal(t, http.StatusForbidden, get(r, "Bearer "+manager).Code)

	noAuth := setupRouter(RequireRoles(utils.RoleFranchiseAdmin))
	assert.Equal(t, http.StatusUnauthorized, get(noAuth, "").Code)
}

func TestRateLimiter(t *testing.T) {
	r := setupRouter(NewRateLimiter(0.001, 2).RateLimit())

	assert.Equal(t, http.StatusOK, get(r, "").Code)
	assert.Equal(t, http.StatusOK, get(r, "").Code)
	w := get(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"status":false`)
}

func TestSecurityHeadersAndCORS(t *testing.T) {
	r := setupRouter(SecurityHeaders(), CORSMiddlewares("https://admin.example.com"))

	w := get(r, "")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodOptions, "/whoami", nil)
	pre := httptest.NewRecorder()
	r.ServeHTTP(pre, req)
	assert.Equal(t, http.StatusNoContent, pre.Code)
}
