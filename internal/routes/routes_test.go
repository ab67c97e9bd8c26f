package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/fliptrack/internal/app"
	"github.com/templui/fliptrack/internal/config"
	"github.com/templui/fliptrack/internal/device"
)

const appURL = "http://localhost:8090"

type client struct {
	t     *testing.T
	srv   *httptest.Server
	http  *http.Client
	token string
}

func newTestApp(t *testing.T) (*app.App, *client) {
	t.Helper()

	cfg := &config.Config{
		AppName:         "FlipTrack",
		AppEnv:          "development",
		AppURL:          appURL,
		Timezone:        "UTC",
		DBDriver:        "sqlite",
		DBConnection:    filepath.Join(t.TempDir(), "fliptrack.db"),
		ImageMaxWidth:   1200,
		ImageMaxHeight:  1200,
		ImageQuality:    0.8,
		UploadMaxSize:   10 << 20,
		CameraDriver:    "virtual",
		StorageDriver:   "memory",
		ShareSecret:     "test-secret",
		ShareLinkExpiry: time.Hour,
	}

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	srv := httptest.NewServer(SetupRoutes(a))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	c := &client{t: t, srv: srv, http: &http.Client{Jar: jar}}

	res := c.do(http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	c.token = res.Header.Get("X-CSRF-Token")
	require.NotEmpty(t, c.token)

	return a, c
}

func (c *client) do(method, path, contentType string, body io.Reader) *http.Response {
	c.t.Helper()

	req, err := http.NewRequest(method, c.srv.URL+path, body)
	require.NoError(c.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("X-CSRF-Token", c.token)
	}

	res, err := c.http.Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { res.Body.Close() })
	return res
}

func (c *client) json(method, path string, in any, out any) int {
	c.t.Helper()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		require.NoError(c.t, err)
		body = bytes.NewReader(data)
	}

	res := c.do(method, path, "application/json", body)
	if out != nil {
		require.NoError(c.t, json.NewDecoder(res.Body).Decode(out), "%s %s", method, path)
	}
	return res.StatusCode
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 120, 90))
	for x := 0; x < 120; x++ {
		for y := 0; y < 90; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 2), G: uint8(y * 2), B: 60, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartFiles(t *testing.T, files map[string][]byte, types map[string]string) (string, io.Reader) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, data := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
		h.Set("Content-Type", types[name])
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return mw.FormDataContentType(), &buf
}

type session struct {
	ID          string `json:"id"`
	State       string `json:"state"`
	Attachments []struct {
		ID      string `json:"id"`
		URL     string `json:"url"`
		Caption string `json:"caption"`
	} `json:"attachments"`
	PermissionMessage string `json:"permissionMessage"`
	Notices           []struct {
		Level   string `json:"level"`
		Message string `json:"message"`
	} `json:"notices"`
}

func TestCaptureToReport(t *testing.T) {
	_, c := newTestApp(t)

	var s session
	require.Equal(t, http.StatusCreated, c.json(http.MethodPost, "/app/capture", nil, &s))
	base := "/app/capture/" + s.ID

	// camera
	var opened struct {
		PermissionHelp bool    `json:"permissionHelp"`
		Session        session `json:"session"`
	}
	require.Equal(t, http.StatusOK, c.json(http.MethodPost, base+"/camera", nil, &opened))
	assert.False(t, opened.PermissionHelp)
	assert.Equal(t, "camera_open", opened.Session.State)

	var shot struct {
		Attachment struct {
			URL string `json:"url"`
		} `json:"attachment"`
	}
	require.Equal(t, http.StatusCreated, c.json(http.MethodPost, base+"/camera/shot", nil, &shot))
	require.True(t, strings.HasPrefix(shot.Attachment.URL, "/blobs/"+s.ID+"/"))

	blob := c.do(http.MethodGet, shot.Attachment.URL, "", nil)
	assert.Equal(t, http.StatusOK, blob.StatusCode)
	assert.Equal(t, "image/jpeg", blob.Header.Get("Content-Type"))

	var closed struct {
		Captured int     `json:"captured"`
		Session  session `json:"session"`
	}
	require.Equal(t, http.StatusOK, c.json(http.MethodDelete, base+"/camera", nil, &closed))
	assert.Equal(t, 1, closed.Captured)
	assert.Equal(t, "idle", closed.Session.State)

	// files: one valid, one rejected
	ct, body := multipartFiles(t,
		map[string][]byte{"porch.png": pngBytes(t), "notes.txt": []byte("hello")},
		map[string]string{"porch.png": "image/png", "notes.txt": "text/plain"},
	)
	res := c.do(http.MethodPost, base+"/files", ct, body)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var selected struct {
		Added    []json.RawMessage `json:"added"`
		Rejected []struct {
			Name string `json:"name"`
		} `json:"rejected"`
		Session session `json:"session"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&selected))
	assert.Len(t, selected.Added, 1)
	require.Len(t, selected.Rejected, 1)
	assert.Equal(t, "notes.txt", selected.Rejected[0].Name)
	require.Len(t, selected.Session.Attachments, 2)

	// caption the uploaded photo
	pid := selected.Session.Attachments[1].ID
	require.Equal(t, http.StatusOK, c.json(http.MethodPatch, base+"/photos/"+pid, map[string]string{"caption": "Front porch"}, &s))
	assert.Equal(t, "Front porch", s.Attachments[1].Caption)

	// submit
	var update struct {
		ID        int `json:"id"`
		ProjectID int `json:"projectId"`
		Photos    []struct {
			URL     string `json:"url"`
			Caption string `json:"caption"`
		} `json:"photos"`
	}
	require.Equal(t, http.StatusCreated, c.json(http.MethodPost, base+"/submit",
		map[string]any{"projectId": 1, "title": "Porch rebuilt", "category": "Milestone"}, &update))
	require.Len(t, update.Photos, 2)
	assert.Equal(t, "Front porch", update.Photos[1].Caption)

	// staged blobs are released after submit
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, shot.Attachment.URL, "", nil).StatusCode)

	stored := c.do(http.MethodGet, strings.TrimPrefix(update.Photos[0].URL, appURL), "", nil)
	assert.Equal(t, http.StatusOK, stored.StatusCode)

	var sel struct {
		ProjectID int  `json:"projectId"`
		Selected  bool `json:"selected"`
	}
	require.Equal(t, http.StatusOK, c.json(http.MethodGet, "/app/projects/selected", nil, &sel))
	assert.True(t, sel.Selected)
	assert.Equal(t, 1, sel.ProjectID)

	// reports
	txt := c.do(http.MethodGet, "/app/projects/1/report.txt", "", nil)
	require.Equal(t, http.StatusOK, txt.StatusCode)
	assert.Contains(t, txt.Header.Get("Content-Disposition"), "_Report.txt")
	text, err := io.ReadAll(txt.Body)
	require.NoError(t, err)
	assert.Contains(t, string(text), "Porch rebuilt")

	html := c.do(http.MethodGet, "/app/projects/1/report.html", "", nil)
	require.Equal(t, http.StatusOK, html.StatusCode)
	assert.Contains(t, html.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, html.Header.Get("Content-Security-Policy"), "'nonce-")

	// share without recipient falls back to the clipboard and carries a link
	var shared struct {
		Method string `json:"method"`
		Link   string `json:"link"`
		Text   string `json:"text"`
	}
	require.Equal(t, http.StatusOK, c.json(http.MethodPost, "/app/projects/1/report/share", map[string]any{}, &shared))
	assert.Equal(t, "clipboard", shared.Method)
	assert.Contains(t, shared.Text, "Porch rebuilt")

	link := c.do(http.MethodGet, strings.TrimPrefix(shared.Link, appURL), "", nil)
	assert.Equal(t, http.StatusOK, link.StatusCode)
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodGet, "/share/not-a-token", "", nil).StatusCode)
}

func TestCameraPermissionDenied(t *testing.T) {
	a, c := newTestApp(t)

	cam, ok := a.Devices.(*device.Virtual)
	require.True(t, ok)
	cam.Fail(device.Camera, device.NameNotAllowed)

	var s session
	require.Equal(t, http.StatusCreated, c.json(http.MethodPost, "/app/capture", nil, &s))

	var opened struct {
		PermissionHelp bool    `json:"permissionHelp"`
		Session        session `json:"session"`
	}
	require.Equal(t, http.StatusOK, c.json(http.MethodPost, "/app/capture/"+s.ID+"/camera", nil, &opened))
	assert.True(t, opened.PermissionHelp)
	assert.Equal(t, "permission_help", opened.Session.State)
	assert.Contains(t, opened.Session.PermissionMessage, "Camera permission denied")

	var grants map[string]string
	require.Equal(t, http.StatusOK, c.json(http.MethodGet, "/app/permissions", nil, &grants))
	assert.Equal(t, "denied", grants["camera"])

	var errBody map[string]any
	assert.Equal(t, http.StatusConflict, c.json(http.MethodPost, "/app/capture/"+s.ID+"/camera/shot", nil, &errBody))
}

func TestProjectsAPI(t *testing.T) {
	_, c := newTestApp(t)

	var cards []map[string]any
	require.Equal(t, http.StatusOK, c.json(http.MethodGet, "/app/projects", nil, &cards))
	assert.NotEmpty(t, cards)

	var created map[string]any
	require.Equal(t, http.StatusCreated, c.json(http.MethodPost, "/app/projects", map[string]any{"address": "5 Cedar Lane"}, &created))
	id := int(created["id"].(float64))
	assert.Equal(t, "Planning & Permits", created["status"])

	var errBody map[string]any
	assert.Equal(t, http.StatusUnprocessableEntity, c.json(http.MethodPost, "/app/projects", map[string]any{"address": ""}, &errBody))
	assert.Equal(t, "address", errBody["field"])

	path := "/app/projects/" + strconv.Itoa(id)
	require.Equal(t, http.StatusOK, c.json(http.MethodDelete, path, nil, &created))

	assert.Equal(t, http.StatusNotFound, c.json(http.MethodGet, path, nil, &errBody))
	assert.Equal(t, true, errBody["retry"])

	var timeline []map[string]any
	require.Equal(t, http.StatusOK, c.json(http.MethodGet, "/app/updates?category=all", nil, &timeline))
	assert.NotEmpty(t, timeline)
	assert.Equal(t, http.StatusBadRequest, c.json(http.MethodGet, "/app/updates?category=rumour", nil, &errBody))
}

func TestCSRFRequired(t *testing.T) {
	_, c := newTestApp(t)
	c.token = ""

	res := c.do(http.MethodPost, "/app/capture", "application/json", nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestNotFoundFallback(t *testing.T) {
	_, c := newTestApp(t)

	var body map[string]string
	assert.Equal(t, http.StatusNotFound, c.json(http.MethodGet, "/nope", nil, &body))
	assert.Equal(t, "not found", body["error"])
}
