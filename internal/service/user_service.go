package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"backoffice/internal/gateway"
	"backoffice/internal/mapper"
	"backoffice/internal/model"
	"backoffice/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// DTOs

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Username         string `json:"username"`
	Role             string `json:"role"`
	AssignedBranchID string `json:"assignedBranchId,omitempty"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ManageUserRequest carries user fields for add/update/delete ops. Deletes
// only need the ID, so field presence is validated per op, not by binding.
type ManageUserRequest struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Username         string `json:"username"`
	Password         string `json:"password"`
	Role             string `json:"role"`
	AssignedBranchID string `json:"assignedBranchId"`
}

var ErrInvalidCredentials = errors.New("invalid username or password")

// CredentialCache persists verified logins (hash only) for offline fallback.
type CredentialCache interface {
	SaveCredential(username, passwordHash string, user model.User) error
	LookupCredential(username string) (string, model.User, error)
}

type UserService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	ListUsers() []UserResponse
	ManageUser(ctx context.Context, op string, req ManageUserRequest) error
	UserLogs(ctx context.Context, userID string) ([]gateway.Row, error)
}

type userService struct {
	st     *store.Store
	gw     store.Gateway
	creds  CredentialCache
	secret []byte
}

func NewUserService(st *store.Store, gw store.Gateway, creds CredentialCache, secret []byte) UserService {
	return &userService{st: st, gw: gw, creds: creds, secret: secret}
}

func mapUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Name:             u.Name,
		Username:         u.Username,
		Role:             u.Role,
		AssignedBranchID: u.AssignedBranchID,
	}
}

// Login authenticates against the backend's login action. When the backend is
// unreachable the cached bcrypt hash of the last successful login lets the
// branch keep working offline; a backend rejection is final and never falls
// back.
func (s *userService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	res, err := s.gw.Do(ctx, gateway.ActionLogin, nil, map[string]string{
		"username": req.Username,
		"password": req.Password,
	})
	if err != nil {
		return s.offlineLogin(req)
	}
	if !res.Success {
		if res.Message != "" {
			return nil, errors.New(res.Message)
		}
		return nil, ErrInvalidCredentials
	}

	user := decodeLoginUser(res.Fields)
	if user.ID == "" {
		return nil, fmt.Errorf("login response missing user record")
	}

	if s.creds != nil {
		if hash, hashErr := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost); hashErr == nil {
			if saveErr := s.creds.SaveCredential(user.Username, string(hash), user); saveErr != nil {
				log.Printf("service: credential cache save failed: %v", saveErr)
			}
		}
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: token, User: mapUserResponse(user)}, nil
}

func (s *userService) offlineLogin(req LoginRequest) (*LoginResponse, error) {
	if s.creds == nil {
		return nil, errors.New("connection failed")
	}
	hash, user, err := s.creds.LookupCredential(req.Username)
	if err != nil {
		return nil, errors.New("connection failed")
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: token, User: mapUserResponse(user)}, nil
}

// decodeLoginUser accepts both response layouts the backend has used: a nested
// "user" object or the user columns inlined next to the status fields.
func decodeLoginUser(fields map[string]any) model.User {
	if nested, ok := fields["user"].(map[string]any); ok {
		return mapper.MapUser(gateway.Row(nested))
	}
	return mapper.MapUser(gateway.Row(fields))
}

func (s *userService) issueToken(user model.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"name":     user.Name,
		"username": user.Username,
		"role":     user.Role,
		"branchId": user.AssignedBranchID,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *userService) ListUsers() []UserResponse {
	users := s.st.Users()
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, mapUserResponse(u))
	}
	return out
}

func (s *userService) ManageUser(ctx context.Context, op string, req ManageUserRequest) error {
	if op == store.OpDelete {
		if req.ID == "" {
			return fmt.Errorf("user id is required for delete")
		}
		return s.st.ManageUser(ctx, op, model.User{ID: req.ID})
	}
	if req.Name == "" || req.Username == "" {
		return fmt.Errorf("name and username are required")
	}
	if !model.ValidRole(req.Role) {
		return fmt.Errorf("invalid role: must be %s, %s, or %s", model.RoleAdmin, model.RoleManager, model.RoleEmployee)
	}
	user := model.User{
		ID:               req.ID,
		Name:             req.Name,
		Username:         req.Username,
		Password:         req.Password,
		Role:             req.Role,
		AssignedBranchID: req.AssignedBranchID,
	}
	if op == store.OpAdd && user.ID == "" {
		user.ID = "USR-" + model.NewEntryID()
	}
	return s.st.ManageUser(ctx, op, user)
}

// UserLogs returns the backend's activity rows for one user, untyped: the sheet
// decides the columns and the UI renders them as-is.
func (s *userService) UserLogs(ctx context.Context, userID string) ([]gateway.Row, error) {
	return s.gw.Fetch(ctx, gateway.ActionGetUserLogs, url.Values{"userId": {userID}})
}
