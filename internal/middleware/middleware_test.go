package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ecommerce-backend/internal/auth"
	"ecommerce-backend/internal/models"
)

func testRouter(tokens *auth.TokenManager, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", Auth(tokens, role), func(c *gin.Context) {
		userID, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID.Hex()})
	})
	return router
}

func issueToken(t *testing.T, tokens *auth.TokenManager, roles ...string) (string, primitive.ObjectID) {
	t.Helper()
	user := &models.User{ID: primitive.NewObjectID(), Username: "shopper", Roles: roles}
	token, _, err := tokens.Issue(user)
	require.NoError(t, err)
	return token, user.ID
}

func TestAuthAcceptsValidToken(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", "ecommerce-backend", time.Hour)
	router := testRouter(tokens, "")
	token, userID := issueToken(t, tokens, models.RoleUser)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.Hex())
}

func TestAuthRejectsMissingToken(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", "ecommerce-backend", time.Hour)
	router := testRouter(tokens, "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsForgedToken(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", "ecommerce-backend", time.Hour)
	forger := auth.NewTokenManager("other-secret", "ecommerce-backend", time.Hour)
	router := testRouter(tokens, "")
	token, _ := issueToken(t, forger, models.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthEnforcesRole(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", "ecommerce-backend", time.Hour)
	router := testRouter(tokens, models.RoleAdmin)
	token, _ := issueToken(t, tokens, models.RoleUser)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOptionalAuthPassesGuests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := auth.NewTokenManager("test-secret", "ecommerce-backend", time.Hour)

	router := gin.New()
	router.GET("/open", OptionalAuth(tokens), func(c *gin.Context) {
		_, authed := UserID(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": authed})
	})

	// No token at all is fine.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "false")

	// A valid token is picked up.
	token, _ := issueToken(t, tokens, models.RoleUser)
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "true")
}
