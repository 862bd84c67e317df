package spa

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":       {Data: []byte("<html>app</html>")},
		"assets/app-1.js":  {Data: []byte("console.log(1)")},
		"favicon.ico":      {Data: []byte("icon")},
		"assets/nested/.k": {Data: []byte("")},
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandlerServesFiles(t *testing.T) {
	h, err := Handler(testFS())
	require.NoError(t, err)

	rec := get(t, h, "/assets/app-1.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")

	rec = get(t, h, "/favicon.ico")
	assert.Equal(t, "icon", rec.Body.String())
}

func TestHandlerFallsBackToIndex(t *testing.T) {
	h, err := Handler(testFS())
	require.NoError(t, err)

	for _, p := range []string{"/", "/index.html", "/transactions/42", "/assets/nested", "/../../etc/passwd"} {
		rec := get(t, h, p)
		assert.Equal(t, http.StatusOK, rec.Code, p)
		assert.Equal(t, "<html>app</html>", rec.Body.String(), p)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"), p)
	}
}

func TestHandlerRequiresIndex(t *testing.T) {
	_, err := Handler(fstest.MapFS{"a.js": {Data: []byte("x")}})
	assert.ErrorIs(t, err, ErrNoIndex)
}

func TestDevProxyForwards(t *testing.T) {
	dev := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "dev:"+r.URL.Path)
	}))
	defer dev.Close()

	h, err := DevProxy(dev.URL)
	require.NoError(t, err)

	rec := get(t, h, "/src/main.tsx")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev:/src/main.tsx", rec.Body.String())
}

func TestDevProxyUnreachable(t *testing.T) {
	dev := httptest.NewServer(http.NotFoundHandler())
	target := dev.URL
	dev.Close()

	h, err := DevProxy(target)
	require.NoError(t, err)
	rec := get(t, h, "/")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestDevProxyRejectsRelativeURL(t *testing.T) {
	_, err := DevProxy("localhost:5173")
	assert.Error(t, err)
}
