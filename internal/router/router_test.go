package router_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/HanjuJo/nexo-v1/internal/apierror"
	"github.com/HanjuJo/nexo-v1/internal/config"
	"github.com/HanjuJo/nexo-v1/internal/dto"
	"github.com/HanjuJo/nexo-v1/internal/identity"
	"github.com/HanjuJo/nexo-v1/internal/middleware"
	"github.com/HanjuJo/nexo-v1/internal/model"
	"github.com/HanjuJo/nexo-v1/internal/router"
	"github.com/HanjuJo/nexo-v1/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

func init() { gin.SetMode(gin.TestMode) }

// ── Helpers ───────────────────────────────────────────────────────────────────

type api struct {
	t  *testing.T
	db *gorm.DB
	r  *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &config.Config{
		Env:             "test",
		JWTSecret:       testSecret,
		UploadDir:       t.TempDir(),
		UploadURLPrefix: "/uploads",
		MaxUploadSize:   1 << 20,
		RateLimit:       "1000-M",
		CatalogCacheTTL: time.Minute,
	}
	r, err := router.New(cfg, db, nil)
	require.NoError(t, err)
	return &api{t: t, db: db, r: r}
}

func signToken(t *testing.T, u *model.User, secret string) string {
	t.Helper()
	claims := middleware.Claims{
		UserID:       u.ID.String(),
		Role:         u.Role,
		IsAdmin:      u.IsAdmin,
		IsSuperAdmin: u.IsSuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func (a *api) token(role identity.Role) (*model.User, string) {
	u := testutil.SeedUser(a.t, a.db, role)
	return u, signToken(a.t, u, testSecret)
}

func (a *api) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestHealth_RedisDisabled(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]any](t, w)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "disabled", body["redis"])
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestAuth_RejectsMissingAndForeignTokens(t *testing.T) {
	a := newAPI(t)
	u := testutil.SeedUser(t, a.db, identity.RoleSales)

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/v1/clients", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized,
		a.do(http.MethodGet, "/v1/clients", signToken(t, u, "another_secret_that_is_long_enough"), nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/v1/clients", signToken(t, u, testSecret), nil).Code)
}

func TestAccounts_AdminOnlyExceptMe(t *testing.T) {
	a := newAPI(t)
	sales, salesTok := a.token(identity.RoleSales)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/v1/accounts", salesTok, nil).Code)

	w := a.do(http.MethodGet, "/v1/accounts/me", salesTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[dto.AccountResponse](t, w)
	assert.Equal(t, sales.ID.String(), me.ID)
}

func TestQuotation_TotalsAndScopeOverHTTP(t *testing.T) {
	a := newAPI(t)
	_, adminTok := a.token(identity.RoleAdmin)
	_, ownerTok := a.token(identity.RoleSales)
	_, otherTok := a.token(identity.RoleSales)
	_, techTok := a.token(identity.RoleTechnician)

	w := a.do(http.MethodPost, "/v1/items", adminTok, dto.CreateItemRequest{
		Code: "PANEL-1", Name: "Panel", UnitPrice: dec("100.00"),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := decode[dto.ItemResponse](t, w)

	w = a.do(http.MethodPost, "/v1/clients", ownerTok, map[string]any{
		"name": "ACME", "client_type": "company",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	client := decode[dto.ClientResponse](t, w)

	w = a.do(http.MethodPost, "/v1/quotations", ownerTok, map[string]any{
		"quotation_number": "Q-HTTP-1",
		"client_id":        client.ID,
		"items": []map[string]any{
			{"item_id": item.ID, "quantity": 3, "unit_price": "100.00"},
			{"item_id": item.ID, "quantity": 1, "unit_price": "50.00"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	q := decode[dto.QuotationResponse](t, w)
	assert.True(t, q.TotalAmount.Equal(dec("350")), q.TotalAmount.String())
	require.Len(t, q.Items, 2)

	path := "/v1/quotations/" + q.ID
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, path, ownerTok, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, path, adminTok, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, path, otherTok, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, path, techTok, nil).Code)

	list := decode[dto.ListResponse[dto.QuotationResponse]](t, a.do(http.MethodGet, "/v1/quotations", otherTok, nil))
	assert.Zero(t, list.Total)

	w = a.do(http.MethodGet, path+"/pdf", ownerTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestQuotation_ValidationEnvelope(t *testing.T) {
	a := newAPI(t)
	_, tok := a.token(identity.RoleSales)

	w := a.do(http.MethodPost, "/v1/quotations", tok, map[string]any{
		"quotation_number": "Q-BAD",
		"client_id":        "not-a-uuid",
		"items":            []map[string]any{{"item_id": "also-bad", "quantity": 0, "unit_price": "1"}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decode[apierror.APIError](t, w)
	assert.Equal(t, apierror.KindValidation, env.Category)
	assert.Contains(t, env.Fields, "client_id")
	assert.Contains(t, env.Fields, "items[0].item_id")
	assert.Contains(t, env.Fields, "items[0].quantity")

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/v1/quotations/xyz", tok, nil).Code)
}

func TestInstallation_CompleteMultipart(t *testing.T) {
	a := newAPI(t)
	admin, adminTok := a.token(identity.RoleAdmin)
	tech, techTok := a.token(identity.RoleTechnician)

	client := testutil.SeedClient(t, a.db, "Site")
	contract := &model.Contract{
		ContractNumber: "C-HTTP-1",
		ClientID:       client.ID,
		SalespersonID:  admin.ID,
		Status:         "signed",
	}
	require.NoError(t, a.db.Create(contract).Error)

	w := a.do(http.MethodPost, "/v1/installations", adminTok, map[string]any{
		"contract_id":       contract.ID.String(),
		"client_id":         client.ID.String(),
		"technician_id":     tech.ID.String(),
		"installation_type": "installation",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inst := decode[dto.InstallationResponse](t, w)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("result_text", "mounted and tested"))
	part, err := mw.CreateFormFile("attachment1", "photo.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/v1/installations/"+inst.ID+"/complete", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+techTok)
	rec := httptest.NewRecorder()
	a.r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	done := decode[dto.InstallationResponse](t, rec)
	assert.Equal(t, "completed", done.Status)
	require.NotNil(t, done.Attachment1URL)
	assert.Equal(t, "/uploads/installation_"+inst.ID+"_1.png", *done.Attachment1URL)
	assert.Nil(t, done.Attachment2URL)

	// the stored file is served back under the public prefix
	get := a.do(http.MethodGet, *done.Attachment1URL, "", nil)
	assert.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, pngBytes, get.Body.Bytes())
}

func TestInventory_AlertsRouteIsNotAnID(t *testing.T) {
	a := newAPI(t)
	_, tok := a.token(identity.RoleSales)
	w := a.do(http.MethodGet, "/v1/inventory/alerts", tok, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
