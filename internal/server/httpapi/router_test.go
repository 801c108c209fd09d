package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/okarpov/articles-api/internal/model"
	"github.com/okarpov/articles-api/internal/service"
	"github.com/okarpov/articles-api/internal/token"
)

var testSecret = []byte("router-test-secret")

func testIssuer() *token.Issuer {
	return token.NewIssuer(testSecret, time.Minute, time.Hour)
}

// fakeAuthService routes each call to a function field; unset fields mean the
// test does not expect that call.
type fakeAuthService struct {
	registerFn func(ctx context.Context, in service.RegisterInput) (model.Tokens, error)
	loginFn    func(ctx context.Context, login, password, ip string) (model.Tokens, error)
	refreshFn  func(ctx context.Context, userID uuid.UUID, refreshToken string) (model.Tokens, error)
	logoutFn   func(ctx context.Context, userID uuid.UUID) error
}

func (f *fakeAuthService) Register(ctx context.Context, in service.RegisterInput) (model.Tokens, error) {
	return f.registerFn(ctx, in)
}

func (f *fakeAuthService) Login(ctx context.Context, login, password, ip string) (model.Tokens, error) {
	return f.loginFn(ctx, login, password, ip)
}

func (f *fakeAuthService) RefreshTokens(ctx context.Context, userID uuid.UUID, refreshToken string) (model.Tokens, error) {
	return f.refreshFn(ctx, userID, refreshToken)
}

func (f *fakeAuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return f.logoutFn(ctx, userID)
}

type fakeArticleService struct {
	getByIDFn func(ctx context.Context, id uuid.UUID) (*model.ArticleWithAuthor, error)
	listFn    func(ctx context.Context, q model.ListQuery) (*model.ArticleList, error)
	createFn  func(ctx context.Context, data model.CreateArticle, authorID uuid.UUID) (*model.ArticleWithAuthor, error)
	updateFn  func(ctx context.Context, id uuid.UUID, data model.UpdateArticle, authorID uuid.UUID) (*model.ArticleWithAuthor, error)
	deleteFn  func(ctx context.Context, id, authorID uuid.UUID) error
}

func (f *fakeArticleService) GetByID(ctx context.Context, id uuid.UUID) (*model.ArticleWithAuthor, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeArticleService) List(ctx context.Context, q model.ListQuery) (*model.ArticleList, error) {
	return f.listFn(ctx, q)
}

func (f *fakeArticleService) Create(ctx context.Context, data model.CreateArticle, authorID uuid.UUID) (*model.ArticleWithAuthor, error) {
	return f.createFn(ctx, data, authorID)
}

func (f *fakeArticleService) Update(ctx context.Context, id uuid.UUID, data model.UpdateArticle, authorID uuid.UUID) (*model.ArticleWithAuthor, error) {
	return f.updateFn(ctx, id, data, authorID)
}

func (f *fakeArticleService) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	return f.deleteFn(ctx, id, authorID)
}

func newTestRouter(auth *fakeAuthService, articles *fakeArticleService) http.Handler {
	issuer := testIssuer()
	return NewRouter(
		NewAuthHandler(auth, issuer),
		NewArticleHandler(articles),
		issuer,
		zap.NewNop(),
	)
}

type header struct {
	key   string
	value string
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any, headers ...header) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for _, hd := range headers {
		req.Header.Set(hd.key, hd.value)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func accessToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	pair, err := testIssuer().Pair(userID, "user")
	require.NoError(t, err)
	return pair.AccessToken
}

func TestRouterHealth(t *testing.T) {
	h := newTestRouter(&fakeAuthService{}, &fakeArticleService{})
	rec := doRequest(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestBearerAuthRejectsMissingAndBadTokens(t *testing.T) {
	h := newTestRouter(&fakeAuthService{}, &fakeArticleService{})

	rec := doRequest(t, h, http.MethodPost, "/articles", map[string]string{})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/articles", map[string]string{},
		header{"Authorization", "Bearer not-a-jwt"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Token signed with a different secret.
	other := token.NewIssuer([]byte("other-secret"), time.Minute, time.Hour)
	pair, err := other.Pair(uuid.Must(uuid.NewV4()), "mallory")
	require.NoError(t, err)
	rec = doRequest(t, h, http.MethodPost, "/articles", map[string]string{},
		header{"Authorization", "Bearer " + pair.AccessToken})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerTokenStripsOptionalScheme(t *testing.T) {
	require.Equal(t, "abc", bearerToken("Bearer abc"))
	require.Equal(t, "abc", bearerToken("abc"))
	require.Equal(t, "abc", bearerToken("  Bearer   abc "))
	require.Equal(t, "", bearerToken(""))
	require.Equal(t, "", bearerToken("Bearer "))
}

func TestRecoverTurnsPanicInto500(t *testing.T) {
	h := Recover(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := doRequest(t, h, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Internal server error", decodeError(t, rec).Message)
}
