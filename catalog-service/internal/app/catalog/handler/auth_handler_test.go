package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"texnomart/catalog-service/internal/app/catalog/entity"
	"texnomart/catalog-service/internal/app/catalog/repository"
	"texnomart/catalog-service/internal/app/catalog/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) withPassword(t *testing.T, id uint, username, password string) *entity.User {
	t.Helper()
	hash, err := util.HashPassword(password)
	require.NoError(t, err)

	user := &entity.User{ID: id, Username: username, PasswordHash: hash, IsActive: true}
	e.users.On("GetByUsername", mock.Anything, username).Return(user, nil)
	e.users.On("GetByID", mock.Anything, id).Return(user, nil)
	return user
}

func TestAuthHandler_Register_Success(t *testing.T) {
	// Arrange
	env := setupTestEnv(t, nil)

	env.users.On("ExistsByUsername", mock.Anything, "alice").Return(false, nil)
	env.users.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).
		Run(func(args mock.Arguments) { args.Get(1).(*entity.User).ID = 1 }).
		Return(nil)

	// Act
	w := env.do(http.MethodPost, "/register/", "", entity.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})

	// Assert
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":1,"username":"alice","email":"alice@example.com"}`, w.Body.String())
}

func TestAuthHandler_Register_InvalidUsername(t *testing.T) {
	// Arrange
	env := setupTestEnv(t, nil)

	// Act
	w := env.do(http.MethodPost, "/register/", "", entity.RegisterRequest{
		Username: "bad name",
		Email:    "alice@example.com",
		Password: "password123",
	})

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Contains(t, resp.Fields, "username")
	env.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthHandler_Register_DuplicateUsername(t *testing.T) {
	// Arrange
	env := setupTestEnv(t, nil)
	env.users.On("ExistsByUsername", mock.Anything, "alice").Return(true, nil)

	// Act
	w := env.do(http.MethodPost, "/register/", "", entity.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Fields, "username")
}

func TestAuthHandler_Login_SameErrorForUnknownUserAndWrongPassword(t *testing.T) {
	// Arrange
	env := setupTestEnv(t, nil)
	env.withPassword(t, 1, "alice", "password123")
	env.users.On("GetByUsername", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

	// Act
	wrongPassword := env.do(http.MethodPost, "/login/", "", entity.LoginRequest{Username: "alice", Password: "nope-nope"})
	unknownUser := env.do(http.MethodPost, "/login/", "", entity.LoginRequest{Username: "ghost", Password: "nope-nope"})

	// Assert
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())
	assert.JSONEq(t, `{"error":"authentication_failed","message":"Invalid credentials"}`, unknownUser.Body.String())
}

func TestAuthHandler_Login_ReturnsSameTokenTwice(t *testing.T) {
	// Arrange
	env := setupTestEnv(t, nil)
	env.withPassword(t, 1, "alice", "password123")
	creds := entity.LoginRequest{Username: "alice", Password: "password123"}

	// Act
	first := env.do(http.MethodPost, "/login/", "", creds)
	second := env.do(http.MethodPost, "/api-token-auth/", "", creds)

	// Assert
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)

	var a, b entity.TokenResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.Len(t, a.Token, 40)
	assert.Equal(t, a.Token, b.Token)
}

func TestAuthHandler_Logout_InvalidatesToken(t *testing.T) {
	// Arrange
	env := setupTestEnv(t, nil)
	env.withPassword(t, 1, "alice", "password123")

	login := env.do(http.MethodPost, "/login/", "", entity.LoginRequest{Username: "alice", Password: "password123"})
	require.Equal(t, http.StatusOK, login.Code)
	var token entity.TokenResponse
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &token))
	auth := "Token " + token.Token

	// Act
	logout := env.do(http.MethodPost, "/logout/", auth, nil)
	reuse := env.do(http.MethodPost, "/logout/", auth, nil)

	// Assert
	assert.Equal(t, http.StatusOK, logout.Code)
	assert.Equal(t, http.StatusUnauthorized, reuse.Code)
	assert.Equal(t, "authentication_failed", decodeError(t, reuse).Error)
}

func TestAuthHandler_Logout_RequiresToken(t *testing.T) {
	// Arrange
	env := setupTestEnv(t, nil)

	// Act
	w := env.do(http.MethodPost, "/logout/", "", nil)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_TokenPairAndRefresh(t *testing.T) {
	// Arrange
	env := setupTestEnv(t, nil)
	env.withPassword(t, 1, "alice", "password123")

	obtain := env.do(http.MethodPost, "/api/token/", "", entity.LoginRequest{Username: "alice", Password: "password123"})
	require.Equal(t, http.StatusOK, obtain.Code)
	var pair entity.TokenPair
	require.NoError(t, json.Unmarshal(obtain.Body.Bytes(), &pair))
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	// Act
	refreshed := env.do(http.MethodPost, "/api/token/refresh/", "", entity.RefreshRequest{Refresh: pair.Refresh})
	withAccess := env.do(http.MethodPost, "/api/token/refresh/", "", entity.RefreshRequest{Refresh: pair.Access})

	// Assert
	require.Equal(t, http.StatusOK, refreshed.Code)
	var access entity.AccessResponse
	require.NoError(t, json.Unmarshal(refreshed.Body.Bytes(), &access))
	_, err := env.jwt.ValidateAccessToken(access.Access)
	assert.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, withAccess.Code)
}

func TestAuthHandler_Refresh_MissingField(t *testing.T) {
	// Arrange
	env := setupTestEnv(t, nil)

	// Act
	w := env.do(http.MethodPost, "/api/token/refresh/", "", map[string]string{})

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Fields, "refresh")
}
