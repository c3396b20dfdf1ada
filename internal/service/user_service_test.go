package service

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"backoffice/internal/gateway"
	"backoffice/internal/model"
	"backoffice/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("test-secret")

// loginGateway scripts the login action's outcome.
type loginGateway struct {
	result gateway.WriteResult
	err    error
}

func (g *loginGateway) Fetch(ctx context.Context, action string, params url.Values) ([]gateway.Row, error) {
	return nil, nil
}

func (g *loginGateway) Do(ctx context.Context, action string, params url.Values, body any) (gateway.WriteResult, error) {
	return g.result, g.err
}

// memCreds is an in-memory credential cache.
type memCreds struct {
	hashes map[string]string
	users  map[string]model.User
}

func newMemCreds() *memCreds {
	return &memCreds{hashes: make(map[string]string), users: make(map[string]model.User)}
}

func (m *memCreds) SaveCredential(username, passwordHash string, user model.User) error {
	m.hashes[username] = passwordHash
	m.users[username] = user
	return nil
}

func (m *memCreds) LookupCredential(username string) (string, model.User, error) {
	hash, ok := m.hashes[username]
	if !ok {
		return "", model.User{}, errors.New("not found")
	}
	return hash, m.users[username], nil
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return testSecret, nil })
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func TestLoginSuccessIssuesTokenAndCachesHash(t *testing.T) {
	gw := &loginGateway{result: gateway.WriteResult{
		Success: true,
		Fields: map[string]any{
			"user": map[string]any{
				"id":               "USR-1",
				"name":             "عمر",
				"username":         "omar",
				"role":             model.RoleManager,
				"assignedBranchId": "BR-1",
			},
		},
	}}
	creds := newMemCreds()
	svc := NewUserService(store.New(gw, nil, nil), gw, creds, testSecret)

	res, err := svc.Login(context.Background(), LoginRequest{Username: "omar", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, "USR-1", res.User.ID)
	require.Equal(t, model.RoleManager, res.User.Role)

	claims := parseClaims(t, res.Token)
	require.Equal(t, "USR-1", claims["sub"])
	require.Equal(t, model.RoleManager, claims["role"])
	require.Equal(t, "BR-1", claims["branchId"])

	// The verified password's hash is cached for offline logins.
	hash, _, err := creds.LookupCredential("omar")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret")))
}

func TestLoginInlineUserFields(t *testing.T) {
	gw := &loginGateway{result: gateway.WriteResult{
		Success: true,
		Fields: map[string]any{
			"id":       "USR-2",
			"name":     "سارة",
			"username": "sara",
			"role":     model.RoleEmployee,
		},
	}}
	svc := NewUserService(store.New(gw, nil, nil), gw, nil, testSecret)

	res, err := svc.Login(context.Background(), LoginRequest{Username: "sara", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, "USR-2", res.User.ID)
}

func TestLoginRejectionNeverFallsBack(t *testing.T) {
	creds := newMemCreds()
	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, creds.SaveCredential("omar", string(hash), model.User{ID: "USR-1", Username: "omar"}))

	gw := &loginGateway{result: gateway.WriteResult{Success: false, Message: "كلمة المرور غير صحيحة"}}
	svc := NewUserService(store.New(gw, nil, nil), gw, creds, testSecret)

	_, err := svc.Login(context.Background(), LoginRequest{Username: "omar", Password: "pw"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "كلمة المرور غير صحيحة")
}

func TestOfflineLoginUsesCachedHash(t *testing.T) {
	creds := newMemCreds()
	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	user := model.User{ID: "USR-1", Name: "عمر", Username: "omar", Role: model.RoleEmployee}
	require.NoError(t, creds.SaveCredential("omar", string(hash), user))

	gw := &loginGateway{err: errors.New("retries exhausted")}
	svc := NewUserService(store.New(gw, nil, nil), gw, creds, testSecret)

	res, err := svc.Login(context.Background(), LoginRequest{Username: "omar", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, "USR-1", res.User.ID)

	_, err = svc.Login(context.Background(), LoginRequest{Username: "omar", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginRequest{Username: "nobody", Password: "pw"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "connection failed")
}

func TestManageUserValidation(t *testing.T) {
	gw := &loginGateway{result: gateway.WriteResult{Success: true}}
	svc := NewUserService(store.New(gw, nil, nil), gw, nil, testSecret)

	err := svc.ManageUser(context.Background(), store.OpAdd, ManageUserRequest{Name: "عمر", Username: "omar", Role: "superuser"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid role")

	err = svc.ManageUser(context.Background(), store.OpAdd, ManageUserRequest{Role: model.RoleEmployee})
	require.Error(t, err)

	err = svc.ManageUser(context.Background(), store.OpDelete, ManageUserRequest{})
	require.Error(t, err)
}
