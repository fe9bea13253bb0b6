package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vet-practice-api/internal/domain/vets"
	"vet-practice-api/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerID  = "owner-1"
	memberID = "vet-2"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(router.NewRouter(router.Options{
		Vets: vets.Options{AutoApprove: true},
	}))
	t.Cleanup(ts.Close)
	return ts
}

type errorResp struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type deleteResp struct {
	Message             string `json:"message"`
	DeletedOrRestoredID string `json:"deletedOrRestoredId"`
	CascadedCounts      *struct {
		Animals    *int `json:"animals"`
		Treatments *int `json:"treatments"`
	} `json:"cascadedCounts"`
}

func TestHTTP_ClientCascadeDeleteAndRestore(t *testing.T) {
	ts := newServer(t)
	orgID := createOrg(t, ts.URL, ownerID, "Clínica Sur")

	clientID := createID(t, ts.URL, ownerID, "/orgs/"+orgID+"/clients", map[string]any{
		"firstName": "Ana",
		"lastName":  "Pérez",
		"email":     "ana@example.com",
	})
	firulais := createID(t, ts.URL, ownerID, "/orgs/"+orgID+"/animals", map[string]any{
		"clientId":    clientID,
		"name":        "Firulais",
		"species":     "dog",
		"sex":         "MALE",
		"dateOfBirth": "2019-05-02",
	})
	michi := createID(t, ts.URL, ownerID, "/orgs/"+orgID+"/animals", map[string]any{
		"clientId": clientID,
		"name":     "Michi",
		"species":  "cat",
	})
	for _, animalID := range []string{firulais, michi} {
		createID(t, ts.URL, ownerID, "/orgs/"+orgID+"/treatments", map[string]any{
			"animalId":  animalID,
			"visitDate": time.Now().UTC().Format(time.RFC3339),
			"diagnosis": "routine check",
			"amount":    "150.00",
		})
	}

	// Motivo corto => 400 antes de tocar el store.
	st, body := doReq(t, ts.URL, http.MethodDelete, "/orgs/"+orgID+"/clients/"+clientID, ownerID, map[string]any{"reason": "short"})
	require.Equal(t, http.StatusBadRequest, st, string(body))
	assert.Equal(t, "VALIDATION_FAILED", decodeError(t, body).Error.Code)

	st, body = doReq(t, ts.URL, http.MethodDelete, "/orgs/"+orgID+"/clients/"+clientID, ownerID, map[string]any{"reason": "client moved to another city"})
	require.Equal(t, http.StatusOK, st, string(body))

	var del deleteResp
	require.NoError(t, json.Unmarshal(body, &del))
	assert.Equal(t, "Client deleted", del.Message)
	assert.Equal(t, clientID, del.DeletedOrRestoredID)
	require.NotNil(t, del.CascadedCounts)
	require.NotNil(t, del.CascadedCounts.Animals)
	require.NotNil(t, del.CascadedCounts.Treatments)
	assert.Equal(t, 2, *del.CascadedCounts.Animals)
	assert.Equal(t, 2, *del.CascadedCounts.Treatments)

	// Los descendientes guardan el motivo con prefijo de cascada.
	st, body = doReq(t, ts.URL, http.MethodGet, "/orgs/"+orgID+"/animals/"+michi, ownerID, nil)
	require.Equal(t, http.StatusOK, st, string(body))
	var animal map[string]any
	require.NoError(t, json.Unmarshal(body, &animal))
	assert.Equal(t, true, animal["isDeleted"])
	assert.Equal(t, "Cascade delete from client: client moved to another city", animal["deletionReason"])

	st, body = doReq(t, ts.URL, http.MethodDelete, "/orgs/"+orgID+"/clients/"+clientID, ownerID, map[string]any{"reason": "client moved to another city"})
	require.Equal(t, http.StatusConflict, st, string(body))
	assert.Equal(t, "ALREADY_DELETED", decodeError(t, body).Error.Code)

	// Restore sólo devuelve la raíz.
	st, body = doReq(t, ts.URL, http.MethodPost, "/orgs/"+orgID+"/clients/"+clientID+"/restore", ownerID, nil)
	require.Equal(t, http.StatusOK, st, string(body))
	var restored deleteResp
	require.NoError(t, json.Unmarshal(body, &restored))
	assert.Equal(t, clientID, restored.DeletedOrRestoredID)
	assert.Nil(t, restored.CascadedCounts)

	st, body = doReq(t, ts.URL, http.MethodGet, "/orgs/"+orgID+"/animals?clientId="+clientID, ownerID, nil)
	require.Equal(t, http.StatusOK, st, string(body))
	var live []map[string]any
	require.NoError(t, json.Unmarshal(body, &live))
	assert.Empty(t, live)

	st, body = doReq(t, ts.URL, http.MethodGet, "/orgs/"+orgID+"/animals?clientId="+clientID+"&includeDeleted=true", ownerID, nil)
	require.Equal(t, http.StatusOK, st, string(body))
	require.NoError(t, json.Unmarshal(body, &live))
	assert.Len(t, live, 2)

	st, body = doReq(t, ts.URL, http.MethodGet, "/orgs/"+orgID+"/activity", ownerID, nil)
	require.Equal(t, http.StatusOK, st, string(body))
	var acts []struct {
		Action string `json:"action"`
	}
	require.NoError(t, json.Unmarshal(body, &acts))
	require.NotEmpty(t, acts)
	assert.Equal(t, "CLIENT_RESTORED", acts[0].Action)
	assert.Equal(t, "CLIENT_DELETED", acts[1].Action)
}

func TestHTTP_MemberNeedsDeletePermission(t *testing.T) {
	ts := newServer(t)
	orgID := createOrg(t, ts.URL, ownerID, "Veterinaria Norte")

	clientID := createID(t, ts.URL, ownerID, "/orgs/"+orgID+"/clients", map[string]any{"firstName": "Luis", "lastName": "Gómez"})
	animalID := createID(t, ts.URL, ownerID, "/orgs/"+orgID+"/animals", map[string]any{"clientId": clientID, "name": "Toby", "species": "dog"})
	createID(t, ts.URL, ownerID, "/orgs/"+orgID+"/treatments", map[string]any{
		"animalId":  animalID,
		"visitDate": time.Now().UTC().Format(time.RFC3339),
	})

	// Sin membresía no ve nada.
	st, body := doReq(t, ts.URL, http.MethodGet, "/orgs/"+orgID+"/clients", memberID, nil)
	require.Equal(t, http.StatusForbidden, st, string(body))
	assert.Equal(t, "NOT_ORG_MEMBER", decodeError(t, body).Error.Code)

	invitationID := createID(t, ts.URL, ownerID, "/orgs/"+orgID+"/invitations", map[string]any{
		"email": emailOf(memberID),
		"role":  "MEMBER",
	})
	st, body = doReq(t, ts.URL, http.MethodPost, "/invitations/"+invitationID+"/accept", memberID, nil)
	require.Equal(t, http.StatusOK, st, string(body))
	var membership struct {
		ID          string          `json:"id"`
		Role        string          `json:"role"`
		Permissions map[string]bool `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(body, &membership))
	assert.Equal(t, "MEMBER", membership.Role)
	assert.False(t, membership.Permissions["canDeleteAnimals"])

	reason := map[string]any{"reason": "registered twice by mistake"}
	st, body = doReq(t, ts.URL, http.MethodDelete, "/orgs/"+orgID+"/animals/"+animalID, memberID, reason)
	require.Equal(t, http.StatusForbidden, st, string(body))
	assert.Equal(t, "DELETE_PERMISSION_DENIED", decodeError(t, body).Error.Code)

	// Un MEMBER no administra permisos.
	st, _ = doReq(t, ts.URL, http.MethodPatch, "/orgs/"+orgID+"/members/"+membership.ID+"/permissions", memberID, map[string]any{"canDeleteAnimals": true})
	require.Equal(t, http.StatusForbidden, st)

	st, body = doReq(t, ts.URL, http.MethodPatch, "/orgs/"+orgID+"/members/"+membership.ID+"/permissions", ownerID, map[string]any{"canDeleteAnimals": true})
	require.Equal(t, http.StatusOK, st, string(body))

	st, body = doReq(t, ts.URL, http.MethodDelete, "/orgs/"+orgID+"/animals/"+animalID, memberID, reason)
	require.Equal(t, http.StatusOK, st, string(body))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	assert.Equal(t, "Animal deleted", raw["message"])
	assert.Equal(t, map[string]any{"treatments": float64(1)}, raw["cascadedCounts"])

	// Restaurar pide el mismo permiso que borrar.
	st, body = doReq(t, ts.URL, http.MethodPost, "/orgs/"+orgID+"/animals/"+animalID+"/restore", memberID, nil)
	require.Equal(t, http.StatusOK, st, string(body))
}

func TestHTTP_TreatmentAmendChain(t *testing.T) {
	ts := newServer(t)
	orgID := createOrg(t, ts.URL, ownerID, "Clínica Centro")
	clientID := createID(t, ts.URL, ownerID, "/orgs/"+orgID+"/clients", map[string]any{"firstName": "Eva", "lastName": "Ruiz"})
	animalID := createID(t, ts.URL, ownerID, "/orgs/"+orgID+"/animals", map[string]any{"clientId": clientID, "name": "Nala", "species": "cat"})
	v1 := createID(t, ts.URL, ownerID, "/orgs/"+orgID+"/treatments", map[string]any{
		"animalId":  animalID,
		"visitDate": time.Now().UTC().Format(time.RFC3339),
		"diagnosis": "otitis",
	})

	st, body := doReq(t, ts.URL, http.MethodPost, "/orgs/"+orgID+"/treatments/"+v1+"/amend", ownerID, map[string]any{})
	require.Equal(t, http.StatusBadRequest, st, string(body))
	assert.Equal(t, "NO_CHANGES", decodeError(t, body).Error.Code)

	st, body = doReq(t, ts.URL, http.MethodPost, "/orgs/"+orgID+"/treatments/"+v1+"/amend", ownerID, map[string]any{
		"diagnosis":       "otitis externa",
		"expectedVersion": 1,
	})
	require.Equal(t, http.StatusCreated, st, string(body))
	var v2 struct {
		ID              string `json:"id"`
		Version         int    `json:"version"`
		ParentRecordID  string `json:"parentRecordId"`
		IsLatestVersion bool   `json:"isLatestVersion"`
		Diagnosis       string `json:"diagnosis"`
	}
	require.NoError(t, json.Unmarshal(body, &v2))
	assert.Equal(t, 2, v2.Version)
	assert.Equal(t, v1, v2.ParentRecordID)
	assert.True(t, v2.IsLatestVersion)
	assert.Equal(t, "otitis externa", v2.Diagnosis)

	st, body = doReq(t, ts.URL, http.MethodPost, "/orgs/"+orgID+"/treatments/"+v1+"/amend", ownerID, map[string]any{"notes": "late edit"})
	require.Equal(t, http.StatusConflict, st, string(body))
	assert.Equal(t, "NOT_LATEST_VERSION", decodeError(t, body).Error.Code)

	st, body = doReq(t, ts.URL, http.MethodGet, "/orgs/"+orgID+"/treatments/"+v2.ID+"/history", ownerID, nil)
	require.Equal(t, http.StatusOK, st, string(body))
	var history []struct {
		Version int `json:"version"`
	}
	require.NoError(t, json.Unmarshal(body, &history))
	require.Len(t, history, 2)

	st, body = doReq(t, ts.URL, http.MethodGet, "/orgs/"+orgID+"/treatments?animalId="+animalID, ownerID, nil)
	require.Equal(t, http.StatusOK, st, string(body))
	var latest []map[string]any
	require.NoError(t, json.Unmarshal(body, &latest))
	require.Len(t, latest, 1)
	assert.Equal(t, v2.ID, latest[0]["id"])
}

func TestHTTP_PlatformEndpoints(t *testing.T) {
	ts := newServer(t)

	st, body := doReq(t, ts.URL, http.MethodGet, "/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, st, string(body))
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, body).Error.Code)

	st, body = doReq(t, ts.URL, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, st)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	st, body = doReq(t, ts.URL, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, st)
	assert.True(t, strings.Contains(string(body), "vet_practice_http_requests_total"))

	st, body = doReq(t, ts.URL, http.MethodPost, "/orgs", ownerID, nil)
	require.Equal(t, http.StatusBadRequest, st, string(body))
	assert.Equal(t, "INVALID_JSON", decodeError(t, body).Error.Code)

	st, body = doReq(t, ts.URL, http.MethodGet, "/admin/vets", ownerID, nil)
	require.Equal(t, http.StatusForbidden, st, string(body))
	assert.Equal(t, "MASTER_ADMIN_REQUIRED", decodeError(t, body).Error.Code)
}

func emailOf(userID string) string {
	return userID + "@clinic.test"
}

func createOrg(t *testing.T, baseURL, userID, name string) string {
	t.Helper()

	st, body := doReq(t, baseURL, http.MethodPost, "/orgs", userID, map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, st, string(body))

	var resp struct {
		Organization struct {
			ID string `json:"id"`
		} `json:"organization"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotEmpty(t, resp.Organization.ID)
	return resp.Organization.ID
}

func createID(t *testing.T, baseURL, userID, path string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, http.MethodPost, path, userID, payload)
	require.Equal(t, http.StatusCreated, st, "POST %s: %s", path, string(body))

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotEmpty(t, resp.ID, "POST %s: missing id", path)
	return resp.ID
}

func decodeError(t *testing.T, body []byte) errorResp {
	t.Helper()
	var e errorResp
	require.NoError(t, json.Unmarshal(body, &e), string(body))
	return e
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
		req.Header.Set("X-Debug-User-Email", emailOf(debugUserID))
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	respBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, respBody
}
