package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/droply/droply/internal/controllers"
	"github.com/droply/droply/internal/managers"
	"github.com/droply/droply/internal/storage/storagetest"
	"github.com/droply/droply/pkg/imagekit"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticVerifier struct{}

func (staticVerifier) VerifyToken(token string) (string, error) {
	if token == "" {
		return "", errors.New("no token")
	}
	// Token value doubles as the principal id so tests can act as any user.
	// Clone so the id outlives fasthttp's reused request buffer, matching the
	// fresh strings a real verifier returns.
	return strings.Clone(token), nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"url":      "https://ik.example.com/file",
			"filePath": "/droply/file",
		})
	}))
	t.Cleanup(upstream.Close)

	repo := storagetest.NewRepository()

	mediaClient := imagekit.NewClient(
		imagekit.WithKeys("public", "private"),
		imagekit.WithUploadBaseURL(upstream.URL),
	)

	driveService := managers.NewDriveService(managers.DriveServiceDependencies{
		FileRepository: repo,
	})
	uploadService := managers.NewUploadService(managers.UploadServiceDependencies{
		FileRepository: repo,
		MediaClient:    mediaClient,
		UploadFolder:   "/droply",
	})

	return NewHTTPServer(HTTPServerDependencies{
		SessionVerifier: staticVerifier{},
		FileController: controllers.NewFileController(controllers.FileControllerDependencies{
			DriveService:  driveService,
			UploadService: uploadService,
		}),
		FolderController: controllers.NewFolderController(controllers.FolderControllerDependencies{
			DriveService: driveService,
		}),
		MediaController: controllers.NewMediaController(controllers.MediaControllerDependencies{
			UploadService: uploadService,
			MediaClient:   mediaClient,
		}),
	})
}

func doJSON(t *testing.T, app *fiber.App, method, path, asUser string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if asUser != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+asUser)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	decoded := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}

	return resp, decoded
}

func TestHealthIsPublic(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "droply", body["service"])
}

func TestAPIRequiresSession(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/api/files?userId=u1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized", body["error"])
}

func TestListFiles_OwnerGuard(t *testing.T) {
	app := newTestApp(t)

	// Declared owner differs from the session principal.
	resp, body := doJSON(t, app, http.MethodGet, "/api/files?userId=u2", "u1", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized", body["error"])

	// Missing declared owner is also rejected.
	resp, _ = doJSON(t, app, http.MethodGet, "/api/files", "u1", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateFolderAndList(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/folders/create", "u1", map[string]any{
		"name":   "Reports",
		"userId": "u1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Folder created successfully", body["message"])

	folder, ok := body["folder"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, folder["isFolder"])
	assert.Equal(t, "u1", folder["userId"])
	assert.Nil(t, folder["parentId"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/files?userId=u1", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	entries, ok := body["userFiles"].([]any)
	require.True(t, ok)
	require.Len(t, entries, 1)

	// Other users never see the entry.
	resp, body = doJSON(t, app, http.MethodGet, "/api/files?userId=u2", "u2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries, ok = body["userFiles"].([]any)
	require.True(t, ok)
	assert.Empty(t, entries)
}

func TestCreateFolder_ValidationAndParent(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/folders/create", "u1", map[string]any{
		"name":   "   ",
		"userId": "u1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "folder name is required")

	resp, _ = doJSON(t, app, http.MethodPost, "/api/folders/create", "u1", map[string]any{
		"name":     "Nested",
		"userId":   "u1",
		"parentId": "23c1a6ab-31ff-4f17-9f6e-000000000000",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestToggleStarRoute(t *testing.T) {
	app := newTestApp(t)

	_, body := doJSON(t, app, http.MethodPost, "/api/folders/create", "u1", map[string]any{
		"name":   "Docs",
		"userId": "u1",
	})
	folder := body["folder"].(map[string]any)
	folderID := folder["id"].(string)

	resp, body := doJSON(t, app, http.MethodPatch, "/api/files/"+folderID+"/star", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["isStared"])

	resp, body = doJSON(t, app, http.MethodPatch, "/api/files/"+folderID+"/star", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["isStared"])

	// Foreign rows surface as not found, not as unauthorized.
	resp, _ = doJSON(t, app, http.MethodPatch, "/api/files/"+folderID+"/star", "u2", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUploadFileRoute(t *testing.T) {
	app := newTestApp(t)

	_, body := doJSON(t, app, http.MethodPost, "/api/folders/create", "u1", map[string]any{
		"name":   "Scans",
		"userId": "u1",
	})
	folder := body["folder"].(map[string]any)
	parentID := folder["id"].(string)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="file"; filename="cat.png"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, form.WriteField("userId", "u1"))
	require.NoError(t, form.WriteField("parentId", parentID))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &buf)
	req.Header.Set(fiber.HeaderContentType, form.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer u1")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	uploaded := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&uploaded))
	assert.Equal(t, "cat.png", uploaded["name"])
	assert.Equal(t, "image/png", uploaded["type"])
	assert.Equal(t, parentID, uploaded["parentId"])
	assert.Equal(t, "https://ik.example.com/file", uploaded["fileUrl"])
}

func TestUploadAuthRoute(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/api/imagekit-auth", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])
	assert.NotEmpty(t, body["signature"])
	assert.NotZero(t, body["expire"])
}

func TestSaveUploadedMediaRoute(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/upload", "u1", map[string]any{
		"userId": "u1",
		"imagekit": map[string]any{
			"name":     "pic.png",
			"url":      "https://ik.example.com/pic.png",
			"filePath": "/droply/u1/pic.png",
			"size":     10,
			"fileType": "image/png",
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pic.png", body["name"])
	assert.Nil(t, body["parentId"])

	resp, _ = doJSON(t, app, http.MethodPost, "/api/upload", "u1", map[string]any{
		"userId":   "u2",
		"imagekit": map[string]any{"url": "https://ik.example.com/pic.png"},
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
