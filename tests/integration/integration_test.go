package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"property-hierarchy/internal/api"
	"property-hierarchy/internal/auth"
	"property-hierarchy/internal/registry"
	nodesvc "property-hierarchy/internal/services/nodes"
	"property-hierarchy/internal/storage/block"
	"property-hierarchy/internal/store"
)

// APITestSuite exercises the full stack: router, middleware, service,
// engine, store, and snapshot persistence on a temp directory.
type APITestSuite struct {
	suite.Suite
	server     *httptest.Server
	adminToken string
	userToken  string
}

func (s *APITestSuite) SetupSuite() {
	tempDir := s.T().TempDir()

	storage, err := block.NewLocalFS(block.Config{Type: "local", BaseDir: tempDir})
	require.NoError(s.T(), err)

	nodeStore := store.NewMemoryStore(store.NewJSONSnapshots(storage, "nodes.json"))
	require.NoError(s.T(), nodeStore.Load(context.Background()))

	users := registry.NewUserRegistry(filepath.Join(tempDir, "users.json"), 4)
	require.NoError(s.T(), users.Load())

	tokens := auth.NewTokenManager([]byte("integration-secret"), "property-hierarchy", time.Hour)

	router := api.NewRouter(api.Dependencies{
		Tokens: tokens,
		Users:  users,
		Nodes:  nodesvc.NewService(nodeStore),
	})
	s.server = httptest.NewServer(router)

	s.adminToken = s.register("Admin", "admin@example.com", true)
	s.userToken = s.register("User", "user@example.com", false)
}

func (s *APITestSuite) TearDownSuite() {
	s.server.Close()
}

func (s *APITestSuite) register(name, email string, isAdmin bool) string {
	status, body := s.request(http.MethodPost, "/api/register", "", map[string]any{
		"name":     name,
		"email":    email,
		"password": "password123",
		"is_admin": isAdmin,
	})
	require.Equal(s.T(), http.StatusCreated, status)

	data := body["data"].(map[string]any)
	return data["token"].(string)
}

func (s *APITestSuite) request(method, path, token string, payload any) (int, map[string]any) {
	var reqBody *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(s.T(), err)
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reqBody)
	require.NoError(s.T(), err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func (s *APITestSuite) createNode(token string, payload map[string]any) (int, map[string]any) {
	return s.request(http.MethodPost, "/api/nodes", token, payload)
}

func (s *APITestSuite) mustCreate(payload map[string]any) map[string]any {
	status, body := s.createNode(s.adminToken, payload)
	require.Equal(s.T(), http.StatusCreated, status, "payload: %v body: %v", payload, body)
	return body["data"].(map[string]any)
}

func (s *APITestSuite) TestHierarchyLifecycle() {
	corp := s.mustCreate(map[string]any{"name": "Corporation C", "type": "Corporation"})
	s.Equal(float64(0), corp["height"])

	building := s.mustCreate(map[string]any{
		"name": "Building B", "type": "Building",
		"parent_id": corp["id"], "zip_code": "12345",
	})
	s.Equal(float64(1), building["height"])

	property := s.mustCreate(map[string]any{
		"name": "Property P", "type": "Property",
		"parent_id": building["id"], "monthly_rent": 1200.00,
	})
	s.Equal(float64(2), property["height"])

	period := s.mustCreate(map[string]any{
		"name": "Period T1", "type": "Tenancy Period",
		"parent_id": property["id"], "tenancy_active": true,
	})
	s.Equal(float64(3), period["height"])

	// Second active period under the same property is rejected.
	status, body := s.createNode(s.adminToken, map[string]any{
		"name": "Period T2", "type": "Tenancy Period",
		"parent_id": property["id"], "tenancy_active": true,
	})
	s.Equal(http.StatusUnprocessableEntity, status)
	s.Equal("Tenancy rules violation", body["status"])

	// Four tenants fit, the fifth does not.
	for i := 1; i <= 4; i++ {
		tenant := s.mustCreate(map[string]any{
			"name": fmt.Sprintf("Tenant %d", i), "type": "Tenant",
			"parent_id": period["id"], "move_in_date": "2025-01-01",
		})
		s.Equal(float64(4), tenant["height"])
	}
	status, body = s.createNode(s.adminToken, map[string]any{
		"name": "Tenant 5", "type": "Tenant",
		"parent_id": period["id"], "move_in_date": "2025-01-01",
	})
	s.Equal(http.StatusUnprocessableEntity, status)
	s.Equal("Maximum of 4 tenants allowed per tenancy period", body["message"])

	// Children listing is readable for non-admins.
	status, body = s.request(http.MethodGet,
		fmt.Sprintf("/api/nodes/%v/children", period["id"]), s.userToken, nil)
	s.Equal(http.StatusOK, status)
	s.Len(body["data"], 4)
}

func (s *APITestSuite) TestReparent() {
	corp := s.mustCreate(map[string]any{"name": "Reparent Corp", "type": "Corporation"})
	b1 := s.mustCreate(map[string]any{
		"name": "RB1", "type": "Building", "parent_id": corp["id"], "zip_code": "11111",
	})
	b2 := s.mustCreate(map[string]any{
		"name": "RB2", "type": "Building", "parent_id": corp["id"], "zip_code": "22222",
	})
	property := s.mustCreate(map[string]any{
		"name": "RP", "type": "Property", "parent_id": b1["id"], "monthly_rent": 800.00,
	})

	// Skipping the Building level fails.
	status, body := s.request(http.MethodPut,
		fmt.Sprintf("/api/nodes/%v/change-parent", property["id"]),
		s.adminToken, map[string]any{"parent_id": corp["id"]})
	s.Equal(http.StatusUnprocessableEntity, status)
	s.Equal("Invalid parent-child relationship", body["error"])

	// Moving to the sibling building succeeds with the height recomputed.
	status, body = s.request(http.MethodPut,
		fmt.Sprintf("/api/nodes/%v/change-parent", property["id"]),
		s.adminToken, map[string]any{"parent_id": b2["id"]})
	s.Equal(http.StatusOK, status)
	data := body["data"].(map[string]any)
	s.Equal(b2["id"], data["parent_id"])
	s.Equal(float64(2), data["height"])
}

func (s *APITestSuite) TestAuthorization() {
	// Mutations require a token.
	status, _ := s.createNode("", map[string]any{"name": "C", "type": "Corporation"})
	s.Equal(http.StatusUnauthorized, status)

	// Non-admins cannot create.
	status, body := s.createNode(s.userToken, map[string]any{"name": "C", "type": "Corporation"})
	s.Equal(http.StatusForbidden, status)
	s.Equal("Only admins can create nodes.", body["message"])

	// Unknown node yields 404 on reads.
	status, _ = s.request(http.MethodGet, "/api/nodes/missing/children", s.userToken, nil)
	s.Equal(http.StatusNotFound, status)
}

func (s *APITestSuite) TestParentNotFound() {
	status, _ := s.createNode(s.adminToken, map[string]any{
		"name": "Orphan", "type": "Building", "parent_id": "no-such-node", "zip_code": "00000",
	})
	s.Equal(http.StatusUnprocessableEntity, status)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
