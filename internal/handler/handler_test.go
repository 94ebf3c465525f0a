package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"car-rental-service/internal/auth"
	"car-rental-service/internal/middleware"
	"car-rental-service/internal/model"
	"car-rental-service/internal/repository"
	"car-rental-service/internal/service"
	"car-rental-service/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeObjects struct {
	contentTypes []string
	failAt       int
}

func (f *fakeObjects) Put(_ context.Context, key, contentType string, body io.Reader, _ int64) (string, error) {
	if f.failAt > 0 && len(f.contentTypes)+1 == f.failAt {
		return "", errors.New("bucket unavailable")
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	f.contentTypes = append(f.contentTypes, contentType)
	return "https://cdn.test/" + key, nil
}

type fakePhotos map[string]string

func (f fakePhotos) Open(_ context.Context, id string) (io.ReadCloser, string, error) {
	body, ok := f[id]
	if !ok {
		return nil, "", storage.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(body)), "image/png", nil
}

type testServer struct {
	router  *gin.Engine
	objects *fakeObjects
}

func newTestServer(t *testing.T, enforceOwnership bool) *testServer {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, repository.MigrateSQL(context.Background(), db))
	stores := repository.NewSQLStores(db)

	objects := &fakeObjects{}
	services := Services{
		Auth:     service.NewAuthService(stores.Users, auth.NewTokens("test-secret", 0)),
		Listings: service.NewListingService(stores.Listings, enforceOwnership),
		Bookings: service.NewBookingService(stores.Bookings),
		Uploads:  service.NewUploadService(objects),
	}
	router := NewRouter(services, RouterConfig{
		CORSOrigins:    []string{"http://localhost:5173"},
		UploadMaxFiles: 3,
		Photos:         fakePhotos{"p1": "png-bytes"},
		Ping:           db.PingContext,
	}, zap.NewNop())
	return &testServer{router: router, objects: objects}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: token})
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func tokenCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			return c
		}
	}
	return nil
}

// registerAndLogin returns the user and the token cookie value.
func (s *testServer) registerAndLogin(t *testing.T, name, email, password string) (model.User, string) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/register", gin.H{"name": name, "email": email, "password": password}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")

	w = s.do(t, http.MethodPost, "/api/login", gin.H{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	c := tokenCookie(w)
	require.NotNil(t, c)
	return decode[model.User](t, w), c.Value
}

func listingIDs(list []model.Listing) []string {
	ids := make([]string, 0, len(list))
	for _, l := range list {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestRegisterLoginCreateListDelete(t *testing.T) {
	s := newTestServer(t, true)
	user, token := s.registerAndLogin(t, "A", "a@x.com", "p")

	w := s.do(t, http.MethodPost, "/api/create", gin.H{
		"title": "Car", "price": 50, "photos": []string{}, "description": "d", "features": []string{},
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Listing](t, w)
	assert.Equal(t, user.ID, created.OwnerID)

	w = s.do(t, http.MethodGet, "/api/posts", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, listingIDs(decode[[]model.Listing](t, w)), created.ID)

	w = s.do(t, http.MethodGet, "/api/user-posts/"+user.ID, nil, "")
	assert.Equal(t, []string{created.ID}, listingIDs(decode[[]model.Listing](t, w)))

	w = s.do(t, http.MethodGet, "/api/post/"+created.ID, nil, "")
	assert.Equal(t, created, decode[model.Listing](t, w))

	w = s.do(t, http.MethodDelete, "/api/delete/"+created.ID, nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, created, decode[model.Listing](t, w))

	w = s.do(t, http.MethodGet, "/api/posts", nil, "")
	assert.JSONEq(t, `[]`, w.Body.String())
	w = s.do(t, http.MethodGet, "/api/user-posts/"+user.ID, nil, "")
	assert.JSONEq(t, `[]`, w.Body.String())
	w = s.do(t, http.MethodGet, "/api/post/"+created.ID, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())

	w = s.do(t, http.MethodDelete, "/api/delete/"+created.ID, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoginFailures(t *testing.T) {
	s := newTestServer(t, true)
	s.registerAndLogin(t, "A", "a@x.com", "p")

	w := s.do(t, http.MethodPost, "/api/login", gin.H{"email": "a@x.com", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"wrong password"}`, w.Body.String())
	assert.Nil(t, tokenCookie(w))

	w = s.do(t, http.MethodPost, "/api/login", gin.H{"email": "b@x.com", "password": "p"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"user not found"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/login", gin.H{"email": "a@x.com"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(t, http.MethodPost, "/api/register", gin.H{"name": "A", "email": "a@x.com", "password": strings.Repeat("p", 80)}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"password must be at most 72 bytes"}`, w.Body.String())
}

func TestLoginCookieAttributes(t *testing.T) {
	s := newTestServer(t, true)
	s.registerAndLogin(t, "A", "a@x.com", "p")

	w := s.do(t, http.MethodPost, "/api/login", gin.H{"email": "a@x.com", "password": "p"}, "")
	c := tokenCookie(w)
	require.NotNil(t, c)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
	assert.Equal(t, "/", c.Path)
}

func TestProfile(t *testing.T) {
	s := newTestServer(t, true)
	user, token := s.registerAndLogin(t, "A", "a@x.com", "p")

	w := s.do(t, http.MethodGet, "/api/profile", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `""`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/profile", nil, "forged")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"token invalid"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/profile", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user, decode[model.User](t, w))
	assert.NotContains(t, w.Body.String(), "password")

	ghost, err := auth.NewTokens("test-secret", 0).Sign("no-such-user")
	require.NoError(t, err)
	w = s.do(t, http.MethodGet, "/api/profile", nil, ghost)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(t, http.MethodGet, "/api/logout", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Body.String())
	c := tokenCookie(w)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)
}

func TestCreateListingValidation(t *testing.T) {
	s := newTestServer(t, true)
	_, token := s.registerAndLogin(t, "A", "a@x.com", "p")

	w := s.do(t, http.MethodPost, "/api/create", gin.H{"title": "Car", "description": "d", "price": 50}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/create", gin.H{"description": "d", "price": 50}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/create", gin.H{"title": "Car", "description": "d"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListingPricedZeroIsAccepted(t *testing.T) {
	s := newTestServer(t, true)
	_, token := s.registerAndLogin(t, "A", "a@x.com", "p")

	w := s.do(t, http.MethodPost, "/api/create", gin.H{"title": "Free", "price": 0, "description": "d"}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Listing](t, w)
	assert.Zero(t, created.Price)

	w = s.do(t, http.MethodPut, "/api/update", gin.H{"id": created.ID, "title": "Still free", "price": 0, "description": "d"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Zero(t, decode[model.Listing](t, w).Price)
}

func TestUpdateReplacesEveryField(t *testing.T) {
	s := newTestServer(t, true)
	user, token := s.registerAndLogin(t, "A", "a@x.com", "p")

	w := s.do(t, http.MethodPost, "/api/create", gin.H{
		"title": "Car", "price": 50, "photos": []string{"old.jpg"}, "description": "d", "features": []string{"gps"},
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[model.Listing](t, w)

	w = s.do(t, http.MethodPut, "/api/update", gin.H{
		"id": created.ID, "title": "Van", "price": 75.5, "photos": []string{"a.jpg", "b.jpg"}, "description": "roomy", "features": []string{"ac", "tow"},
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	want := model.Listing{
		ID: created.ID, OwnerID: user.ID, Title: "Van", Price: 75.5,
		Photos: model.StringList{"a.jpg", "b.jpg"}, Description: "roomy", Features: model.StringList{"ac", "tow"},
	}
	assert.Equal(t, want, decode[model.Listing](t, w))

	w = s.do(t, http.MethodGet, "/api/post/"+created.ID, nil, "")
	assert.Equal(t, want, decode[model.Listing](t, w))

	w = s.do(t, http.MethodPut, "/api/update", gin.H{"id": "missing", "title": "x", "description": "y", "price": 1}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOwnershipIsEnforced(t *testing.T) {
	s := newTestServer(t, true)
	_, ownerToken := s.registerAndLogin(t, "A", "a@x.com", "p")
	_, otherToken := s.registerAndLogin(t, "B", "b@x.com", "p")

	w := s.do(t, http.MethodPost, "/api/create", gin.H{"title": "Car", "price": 50, "description": "d"}, ownerToken)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[model.Listing](t, w).ID
	update := gin.H{"id": id, "title": "Mine now", "price": 1, "description": "d"}

	w = s.do(t, http.MethodPut, "/api/update", update, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(t, http.MethodPut, "/api/update", update, otherToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodDelete, "/api/delete/"+id, nil, otherToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/post/"+id, nil, "")
	assert.Equal(t, "Car", decode[model.Listing](t, w).Title)
}

func TestWithoutOwnershipCheckAnyoneMayEdit(t *testing.T) {
	s := newTestServer(t, false)
	_, token := s.registerAndLogin(t, "A", "a@x.com", "p")

	w := s.do(t, http.MethodPost, "/api/create", gin.H{"title": "Car", "price": 50, "description": "d"}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[model.Listing](t, w).ID

	w = s.do(t, http.MethodPut, "/api/update", gin.H{"id": id, "title": "Changed", "price": 1, "description": "d"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Changed", decode[model.Listing](t, w).Title)

	w = s.do(t, http.MethodDelete, "/api/delete/"+id, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBookingIsListedWithExpandedReferences(t *testing.T) {
	s := newTestServer(t, true)
	renter, token := s.registerAndLogin(t, "U", "u@x.com", "p")

	w := s.do(t, http.MethodPost, "/api/create", gin.H{"title": "Car", "price": 50, "description": "d"}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	listing := decode[model.Listing](t, w)

	w = s.do(t, http.MethodPost, "/api/booking", gin.H{
		"name": "U", "phone": 5551234,
		"pickUp": "2024-05-01T10:00:00Z", "dropOff": "2024-05-03T10:00:00Z",
		"total": 100, "post": listing.ID, "bookerId": renter.ID,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	booking := decode[model.Booking](t, w)
	assert.Equal(t, model.PhoneNumber("5551234"), booking.Phone)

	w = s.do(t, http.MethodGet, "/api/bookings/"+renter.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	details := decode[[]model.BookingDetail](t, w)
	require.Len(t, details, 1)

	d := details[0]
	assert.Equal(t, booking.ID, d.ID)
	require.NotNil(t, d.Listing)
	assert.Equal(t, listing, *d.Listing)
	require.NotNil(t, d.Booker)
	assert.Equal(t, renter, *d.Booker)
	assert.True(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC).Equal(d.PickUp))
	assert.Equal(t, 100.0, d.Total)

	w = s.do(t, http.MethodGet, "/api/bookings/nobody", nil, "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestBookingValidation(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(t, http.MethodPost, "/api/booking", gin.H{"name": "U", "pickUp": "2024-05-01T10:00:00Z", "dropOff": "2024-05-03T10:00:00Z"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type upload struct {
	filename, contentType string
	// field overrides the form field passed to testServer.upload.
	field string
}

func (s *testServer) upload(t *testing.T, field string, files ...upload) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		name := field
		if f.field != "" {
			name = f.field
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+name+`"; filename="`+f.filename+`"`)
		h.Set("Content-Type", f.contentType)
		pw, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write([]byte("bytes of " + f.filename))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestUploadReturnsURLsInOrder(t *testing.T) {
	s := newTestServer(t, true)

	w := s.upload(t, "photos", upload{filename: "front.jpg", contentType: "image/jpeg"}, upload{filename: "back.png", contentType: "image/png"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	urls := decode[[]string](t, w)
	require.Len(t, urls, 2)
	assert.True(t, strings.HasSuffix(urls[0], ".jpg"), urls[0])
	assert.True(t, strings.HasSuffix(urls[1], ".png"), urls[1])
	assert.Equal(t, []string{"image/jpeg", "image/png"}, s.objects.contentTypes)
}

func TestUploadAcceptsBracketField(t *testing.T) {
	s := newTestServer(t, true)

	w := s.upload(t, "photos[]", upload{filename: "a.gif", contentType: "image/gif"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[[]string](t, w), 1)
}

func TestUploadRejectsMixedFieldNames(t *testing.T) {
	s := newTestServer(t, true)

	w := s.upload(t, "photos", upload{filename: "a.jpg", contentType: "image/jpeg"}, upload{filename: "b.jpg", contentType: "image/jpeg", field: "photos[]"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, s.objects.contentTypes)
}

func TestUploadLimitsAndFailures(t *testing.T) {
	s := newTestServer(t, true)

	w := s.upload(t, "photos", upload{filename: "1.jpg", contentType: "image/jpeg"}, upload{filename: "2.jpg", contentType: "image/jpeg"}, upload{filename: "3.jpg", contentType: "image/jpeg"}, upload{filename: "4.jpg", contentType: "image/jpeg"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, s.objects.contentTypes)

	s.objects.failAt = 2
	w = s.upload(t, "photos", upload{filename: "1.jpg", contentType: "image/jpeg"}, upload{filename: "2.jpg", contentType: "image/jpeg"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	body := decode[struct {
		Error    string   `json:"error"`
		Uploaded []string `json:"uploaded"`
	}](t, w)
	assert.Len(t, body.Uploaded, 1)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadPhoto(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(t, http.MethodGet, "/api/photos/p1", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", w.Body.String())

	w = s.do(t, http.MethodGet, "/api/photos/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndCORS(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
