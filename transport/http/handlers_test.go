package http

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/bazaar-labs/gatehouse/adapters/registry"
	"github.com/bazaar-labs/gatehouse/adapters/store"
	"github.com/bazaar-labs/gatehouse/adapters/tokenizer"
	"github.com/bazaar-labs/gatehouse/service"
)

type testWallet struct {
	address   string
	publicKey string
	sign      func(t *testing.T, nonce string) string
}

func newTestWallet(t *testing.T) testWallet {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	return testWallet{
		address:   crypto.PubkeyToAddress(key.PublicKey).Hex(),
		publicKey: hexutil.Encode(crypto.FromECDSAPub(&key.PublicKey)),
		sign: func(t *testing.T, nonce string) string {
			t.Helper()
			sig, err := crypto.Sign(accounts.TextHash([]byte(nonce)), key)
			require.NoError(t, err)
			return hexutil.Encode(sig)
		},
	}
}

type testEnv struct {
	router *gin.Engine
	admin  testWallet
}

func newTestEnv(t *testing.T, extraAdmins ...string) testEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	admin := newTestWallet(t)

	entities := store.NewMemoryEntityStore()
	authService := service.NewAuthService(
		store.NewMemoryChallengeStore(),
		store.NewMemorySessionStore(),
		tokenizer.NewJWTTokenizer(signKey),
		registry.NewStaticRegistry(append([]string{admin.address}, extraAdmins...)),
		nil,
	)
	moderationService := service.NewModerationService(entities, entities, nil)
	orderService := service.NewOrderService(entities, entities, nil)

	return testEnv{
		router: SetupRouter(authService, moderationService, orderService),
		admin:  admin,
	}
}

func (e testEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e testEnv) getNonce(t *testing.T) string {
	t.Helper()

	w := e.do(t, http.MethodGet, "/admin/nonce", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Nonce string `json:"nonce"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Nonce)
	return resp.Nonce
}

func (e testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()

	nonce := e.getNonce(t)
	w := e.do(t, http.MethodPost, "/admin/login", gin.H{
		"wallet":    e.admin.address,
		"signature": e.admin.sign(t, nonce),
		"publicKey": e.admin.publicKey,
		"nonce":     nonce,
	})
	require.Equal(t, http.StatusOK, w.Code)

	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestLoginSuccess(t *testing.T) {
	env := newTestEnv(t)

	cookie := env.login(t)
	require.NotEmpty(t, cookie.Value)
	require.True(t, cookie.HttpOnly)

	w := env.do(t, http.MethodGet, "/admin/me", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "wallet")
}

func TestLoginMissingFields(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/admin/login", gin.H{"wallet": env.admin.address})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginInvalidSignature(t *testing.T) {
	env := newTestEnv(t)
	stranger := newTestWallet(t)

	nonce := env.getNonce(t)
	w := env.do(t, http.MethodPost, "/admin/login", gin.H{
		"wallet":    env.admin.address,
		"signature": stranger.sign(t, nonce),
		"publicKey": env.admin.publicKey,
		"nonce":     nonce,
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginNotWhitelisted(t *testing.T) {
	env := newTestEnv(t)
	stranger := newTestWallet(t)

	nonce := env.getNonce(t)
	sig := stranger.sign(t, nonce)

	w := env.do(t, http.MethodPost, "/admin/login", gin.H{
		"wallet":    stranger.address,
		"signature": sig,
		"publicKey": stranger.publicKey,
		"nonce":     nonce,
	})
	require.Equal(t, http.StatusForbidden, w.Code)
	for _, c := range w.Result().Cookies() {
		require.NotEqual(t, SessionCookieName, c.Name, "no session cookie on 403")
	}

	// The unauthorized attempt consumed the nonce
	w = env.do(t, http.MethodPost, "/admin/login", gin.H{
		"wallet":    stranger.address,
		"signature": sig,
		"publicKey": stranger.publicKey,
		"nonce":     nonce,
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesRequireSession(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/admin/shops", "/admin/shops/abc", "/admin/me"} {
		w := env.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := env.do(t, http.MethodGet, "/admin/shops", nil, &http.Cookie{Name: SessionCookieName, Value: "forged"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutIdempotent(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	w := env.do(t, http.MethodPost, "/admin/logout", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	// Session is gone
	w = env.do(t, http.MethodGet, "/admin/me", nil, cookie)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Second logout with the same cookie still succeeds
	w = env.do(t, http.MethodPost, "/admin/logout", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	// And logout without any cookie succeeds too
	w = env.do(t, http.MethodPost, "/admin/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func (e testEnv) createShop(t *testing.T) string {
	t.Helper()

	w := e.do(t, http.MethodPost, "/shops", gin.H{
		"ownerWallet": "0x2222222222222222222222222222222222222222",
		"name":        "Rugs & More",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var shop struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &shop))
	require.NotEmpty(t, shop.ID)
	return shop.ID
}

func TestShopModerationFlow(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)
	shopID := env.createShop(t)

	// Approve from PENDING
	w := env.do(t, http.MethodPost, "/admin/shops/"+shopID+"/approve", gin.H{
		"note":          "docs verified",
		"currentStatus": "PENDING",
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	// A stale view now conflicts
	w = env.do(t, http.MethodPost, "/admin/shops/"+shopID+"/suspend", gin.H{
		"reason":        "spam",
		"currentStatus": "PENDING",
	}, cookie)
	require.Equal(t, http.StatusConflict, w.Code)

	// Suspend with fresh state
	w = env.do(t, http.MethodPost, "/admin/shops/"+shopID+"/suspend", gin.H{
		"reason":        "policy violation",
		"currentStatus": "ACTIVE",
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	// Unsuspend lands back on ACTIVE
	w = env.do(t, http.MethodPost, "/admin/shops/"+shopID+"/unsuspend", gin.H{
		"currentStatus": "SUSPENDED",
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	// Three transitions, three audit entries
	w = env.do(t, http.MethodGet, "/admin/shops/"+shopID+"/audit", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var audit struct {
		Entries []json.RawMessage `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &audit))
	require.Len(t, audit.Entries, 3)
}

func TestSuspendRequiresReason(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)
	shopID := env.createShop(t)

	w := env.do(t, http.MethodPost, "/admin/shops/"+shopID+"/suspend", gin.H{
		"currentStatus": "PENDING",
	}, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShopListAndDetail(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)
	shopID := env.createShop(t)

	w := env.do(t, http.MethodGet, "/admin/shops?page=1&status=PENDING", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), shopID)

	w = env.do(t, http.MethodGet, "/admin/shops/"+shopID, nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/admin/shops/unknown-id", nil, cookie)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/admin/shops?status=BOGUS", nil, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderEndpoints(t *testing.T) {
	env := newTestEnv(t)
	seller := "0x3333333333333333333333333333333333333333"

	w := env.do(t, http.MethodPost, "/orders", gin.H{
		"buyerWallet":  "0x4444444444444444444444444444444444444444",
		"sellerWallet": seller,
		"amount":       "19.99",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var order struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))

	// Listing requires a valid role
	w = env.do(t, http.MethodGet, "/orders?role=admin&wallet="+seller, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/orders?role=seller&wallet="+seller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), order.ID)

	// Only the seller may advance the order
	w = env.do(t, http.MethodPut, "/orders/status", gin.H{
		"orderId":      order.ID,
		"status":       "PAID",
		"sellerWallet": "0x5555555555555555555555555555555555555555",
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPut, "/orders/status", gin.H{
		"orderId":      order.ID,
		"status":       "PAID",
		"sellerWallet": seller,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"success":true`)

	// Skipping states is rejected
	w = env.do(t, http.MethodPut, "/orders/status", gin.H{
		"orderId":      order.ID,
		"status":       "COMPLETED",
		"sellerWallet": seller,
	})
	require.Equal(t, http.StatusConflict, w.Code)

	// Missing fields
	w = env.do(t, http.MethodPut, "/orders/status", gin.H{"orderId": order.ID})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/orders", gin.H{
		"buyerWallet":  "0x4444444444444444444444444444444444444444",
		"sellerWallet": seller,
		"amount":       "-5",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
