package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"roadmaptracker/backend/catalog"
	"roadmaptracker/backend/config"
	"roadmaptracker/backend/metrics"
	"roadmaptracker/backend/models"
	"roadmaptracker/backend/store"
	"roadmaptracker/backend/utils"
)

const frontendTemplate = `{
  "role": "Frontend",
  "modules": [
    {"title": "HTML", "steps": [
      {"id": "html-1", "title": "Semantic markup", "duration_days": 2},
      {"id": "html-2", "title": "Forms"}
    ]},
    {"title": "CSS", "steps": [
      {"id": "css-1", "title": "Flexbox", "duration_days": 3}
    ]}
  ],
  "projects": [{"title": "Portfolio", "description": "Personal site"}]
}`

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	store store.ProgressStore
	cfg   *config.Config
	now   time.Time
}

func (e *testEnv) clock() time.Time {
	return e.now
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	templates := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(templates, "frontend.json"), []byte(frontendTemplate), 0o644))

	cfg := &config.Config{
		DBDriver:       "sqlite",
		DBPath:         fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		JWTSecret:      "testsecret",
		TokenTTLHours:  1,
		RoadmapsDir:    templates,
		UploadDir:      filepath.Join(t.TempDir(), "profile_images"),
		MaxUploadBytes: 2 * 1024 * 1024,
		Timezone:       "UTC",
	}

	db, err := utils.InitDB(cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	st, err := store.OpenBadgerStore("", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	env := &testEnv{
		db:    db,
		store: st,
		cfg:   cfg,
		now:   time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC),
	}
	env.app = NewApp(Dependencies{
		DB:      db,
		Cfg:     cfg,
		Store:   st,
		Logger:  zap.NewNop(),
		Catalog: catalog.New(templates),
		Now:     env.clock,
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.send(t, req)
}

func (e *testEnv) send(t *testing.T, req *http.Request) (int, map[string]interface{}) {
	t.Helper()

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &result))
	}
	return resp.StatusCode, result
}

// signup registers and logs in a user, returning the token.
func (e *testEnv) signup(t *testing.T, username string) string {
	t.Helper()

	status, _ := e.do(t, "POST", "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password",
	})
	require.Equal(t, fiber.StatusCreated, status)

	status, result := e.do(t, "POST", "/api/auth/login", "", map[string]string{
		"username": username,
		"password": "password",
	})
	require.Equal(t, fiber.StatusOK, status)
	return data(result)["token"].(string)
}

func (e *testEnv) generate(t *testing.T, token, start, end string) uint {
	t.Helper()

	status, result := e.do(t, "POST", "/api/roadmaps/generate", token, map[string]string{
		"role":  "frontend",
		"start": start,
		"end":   end,
	})
	require.Equal(t, fiber.StatusCreated, status)
	return uint(data(result)["roadmap_id"].(float64))
}

func (e *testEnv) toggle(t *testing.T, token string, roadmapID uint, stepCode string, checked bool) (int, map[string]interface{}) {
	t.Helper()
	return e.do(t, "POST", "/api/progress/steps", token, map[string]interface{}{
		"roadmap_id": roadmapID,
		"step_code":  stepCode,
		"checked":    checked,
	})
}

func data(result map[string]interface{}) map[string]interface{} {
	return result["data"].(map[string]interface{})
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	t.Run("Register", func(t *testing.T) {
		status, result := env.do(t, "POST", "/api/auth/register", "", map[string]string{
			"username": "testuser",
			"email":    "test@example.com",
			"password": "password",
		})
		assert.Equal(t, fiber.StatusCreated, status)
		assert.Equal(t, true, result["success"])
		assert.Equal(t, "testuser", data(result)["username"])
		assert.Nil(t, data(result)["token"])
	})

	t.Run("RegisterDuplicate", func(t *testing.T) {
		status, result := env.do(t, "POST", "/api/auth/register", "", map[string]string{
			"username": "testuser",
			"email":    "other@example.com",
			"password": "password",
		})
		assert.Equal(t, fiber.StatusConflict, status)
		assert.Equal(t, false, result["success"])
	})

	t.Run("RegisterInvalid", func(t *testing.T) {
		status, result := env.do(t, "POST", "/api/auth/register", "", map[string]string{
			"username": "ab",
			"email":    "not-an-email",
			"password": "123",
		})
		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		details := result["details"].(map[string]interface{})
		assert.Equal(t, "min", details["username"])
		assert.Equal(t, "email", details["email"])
		assert.Equal(t, "min", details["password"])
	})

	t.Run("LoginWrongPassword", func(t *testing.T) {
		status, _ := env.do(t, "POST", "/api/auth/login", "", map[string]string{
			"username": "testuser",
			"password": "wrong",
		})
		assert.Equal(t, fiber.StatusUnauthorized, status)
	})

	var token string
	t.Run("Login", func(t *testing.T) {
		status, result := env.do(t, "POST", "/api/auth/login", "", map[string]string{
			"username": "testuser",
			"password": "password",
		})
		require.Equal(t, fiber.StatusOK, status)
		token = data(result)["token"].(string)
		assert.NotEmpty(t, token)
		user := data(result)["user"].(map[string]interface{})
		assert.Equal(t, float64(1), user["login_count"])
	})

	t.Run("GetProfile", func(t *testing.T) {
		status, result := env.do(t, "GET", "/api/user/profile", token, nil)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "testuser", data(result)["username"])
		assert.Equal(t, "test@example.com", data(result)["email"])
		assert.Equal(t, true, data(result)["notifications"])
	})

	t.Run("MissingToken", func(t *testing.T) {
		status, _ := env.do(t, "GET", "/api/user/profile", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, status)
	})

	t.Run("Logout", func(t *testing.T) {
		status, _ := env.do(t, "POST", "/api/auth/logout", token, nil)
		require.Equal(t, fiber.StatusOK, status)

		status, result := env.do(t, "GET", "/api/user/profile", token, nil)
		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.Equal(t, "Session expired", result["message"])

		var session models.Session
		require.NoError(t, env.db.First(&session).Error)
		assert.False(t, session.IsOpen())
	})
}

func TestUserProfile(t *testing.T) {
	env := newTestEnv(t)
	token := env.signup(t, "alice")
	env.signup(t, "bob")

	t.Run("Update", func(t *testing.T) {
		status, result := env.do(t, "PUT", "/api/user/profile", token, map[string]interface{}{
			"phone_number":  "+15551234567",
			"notifications": false,
		})
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "+15551234567", data(result)["phone_number"])
		assert.Equal(t, false, data(result)["notifications"])
	})

	t.Run("UsernameTaken", func(t *testing.T) {
		status, _ := env.do(t, "PUT", "/api/user/profile", token, map[string]string{"username": "bob"})
		assert.Equal(t, fiber.StatusConflict, status)
	})

	t.Run("ChangePassword", func(t *testing.T) {
		status, result := env.do(t, "PUT", "/api/user/password", token, map[string]string{
			"old_password": "wrong",
			"new_password": "secret123",
		})
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "Old password incorrect", result["message"])

		status, _ = env.do(t, "PUT", "/api/user/password", token, map[string]string{
			"old_password": "password",
			"new_password": "short",
		})
		assert.Equal(t, fiber.StatusUnprocessableEntity, status)

		status, _ = env.do(t, "PUT", "/api/user/password", token, map[string]string{
			"old_password": "password",
			"new_password": "secret123",
		})
		require.Equal(t, fiber.StatusOK, status)

		status, _ = env.do(t, "POST", "/api/auth/login", "", map[string]string{
			"username": "alice",
			"password": "secret123",
		})
		assert.Equal(t, fiber.StatusOK, status)
	})

	upload := func(t *testing.T, filename string, content []byte) (int, map[string]interface{}) {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		part, err := w.CreateFormFile("profile_image", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest("POST", "/api/user/profile/image", &body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		return env.send(t, req)
	}

	t.Run("UploadImage", func(t *testing.T) {
		status, result := upload(t, "avatar.PNG", []byte("\x89PNG fake image"))
		require.Equal(t, fiber.StatusOK, status)

		path := data(result)["profile_image"].(string)
		assert.True(t, strings.HasPrefix(path, "profile_images/"))
		assert.True(t, strings.HasSuffix(path, ".png"))
		_, err := os.Stat(filepath.Join(env.cfg.UploadDir, strings.TrimPrefix(path, "profile_images/")))
		assert.NoError(t, err)
	})

	t.Run("UploadRejectsExtension", func(t *testing.T) {
		status, _ := upload(t, "notes.txt", []byte("hello"))
		assert.Equal(t, fiber.StatusBadRequest, status)
	})
}

func TestRoadmaps(t *testing.T) {
	env := newTestEnv(t)
	token := env.signup(t, "alice")

	t.Run("GenerateValidation", func(t *testing.T) {
		tests := []struct {
			name   string
			body   map[string]string
			status int
		}{
			{"bad start", map[string]string{"role": "Frontend", "start": "2024-13-01", "end": "2024-07-01"}, fiber.StatusBadRequest},
			{"end before start", map[string]string{"role": "Frontend", "start": "2024-07-01", "end": "2024-06-01"}, fiber.StatusBadRequest},
			{"no template", map[string]string{"role": "Backend", "start": "2024-06-01", "end": "2024-07-01"}, fiber.StatusNotFound},
			{"missing role", map[string]string{"start": "2024-06-01", "end": "2024-07-01"}, fiber.StatusUnprocessableEntity},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				status, _ := env.do(t, "POST", "/api/roadmaps/generate", token, tt.body)
				assert.Equal(t, tt.status, status)
			})
		}
	})

	before := testutil.ToFloat64(metrics.RoadmapsGeneratedTotal.WithLabelValues("Frontend"))
	first := env.generate(t, token, "2024-06-01", "2024-06-29")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RoadmapsGeneratedTotal.WithLabelValues("Frontend")))

	t.Run("Generated", func(t *testing.T) {
		var roadmap models.Roadmap
		require.NoError(t, env.db.Preload("Items").First(&roadmap, first).Error)
		assert.Equal(t, "Frontend", roadmap.Role)
		assert.Equal(t, 4, roadmap.TargetDurationWeeks)
		require.Len(t, roadmap.Items, 3)

		var items []models.RoadmapItem
		require.NoError(t, env.db.Where("roadmap_id = ?", first).Order("sequence_order").Find(&items).Error)
		assert.Equal(t, []string{"html-1", "html-2", "css-1"},
			[]string{items[0].StepCode, items[1].StepCode, items[2].StepCode})
		assert.Equal(t, []int{1, 2, 3},
			[]int{items[0].SequenceOrder, items[1].SequenceOrder, items[2].SequenceOrder})
		assert.Equal(t, "HTML", items[0].Description)
		assert.Equal(t, 1, items[1].DurationDays)
	})

	t.Run("GetRoadmap", func(t *testing.T) {
		status, result := env.do(t, "GET", "/api/roadmaps/role/frontend", token, nil)
		require.Equal(t, fiber.StatusOK, status)

		body := data(result)
		assert.Equal(t, float64(first), body["roadmap_id"])
		assert.Equal(t, "Frontend", body["display_role"])
		assert.Equal(t, float64(0), body["progress"])
		assert.Equal(t, float64(14), body["days_remaining"])

		modules := body["modules"].([]interface{})
		require.Len(t, modules, 2)
		html := modules[0].(map[string]interface{})
		assert.Equal(t, "HTML", html["title"])
		steps := html["steps"].([]interface{})
		require.Len(t, steps, 2)
		second := steps[1].(map[string]interface{})
		assert.Equal(t, "2024-06-03", second["planned_start"])
		assert.Equal(t, "2024-06-03", second["planned_end"])

		assert.Len(t, body["step_id_map"].(map[string]interface{}), 3)
		assert.Len(t, body["projects"].([]interface{}), 1)
	})

	t.Run("NewestIsActive", func(t *testing.T) {
		second := env.generate(t, token, "2024-06-10", "2024-07-10")

		status, result := env.do(t, "GET", "/api/roadmaps/role/Frontend", token, nil)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, float64(second), data(result)["roadmap_id"])

		status, result = env.do(t, "GET", "/api/roadmaps", token, nil)
		require.Equal(t, fiber.StatusOK, status)
		courses := result["data"].([]interface{})
		require.Len(t, courses, 1)
		course := courses[0].(map[string]interface{})
		assert.Equal(t, float64(second), course["roadmap_id"])
		assert.Equal(t, float64(3), course["chapters"])
		assert.Equal(t, "2024-06-10", course["enrolled_date"])
	})

	t.Run("ListRoles", func(t *testing.T) {
		status, result := env.do(t, "GET", "/api/roadmaps/roles", token, nil)
		require.Equal(t, fiber.StatusOK, status)

		roles := result["data"].([]interface{})
		require.Len(t, roles, len(catalog.Roles))
		byRole := map[string]map[string]interface{}{}
		for _, r := range roles {
			entry := r.(map[string]interface{})
			byRole[entry["role"].(string)] = entry
		}
		assert.Equal(t, true, byRole["Frontend"]["available"])
		assert.NotNil(t, byRole["Frontend"]["roadmap"])
		assert.Equal(t, false, byRole["Backend"]["available"])
		assert.Nil(t, byRole["Backend"]["roadmap"])
		assert.Equal(t, "gitandgithub", byRole["Git&Github"]["slug"])
	})

	t.Run("TemplateOutsideDirectory", func(t *testing.T) {
		outside := filepath.Join(filepath.Dir(env.cfg.RoadmapsDir), "secret.json")
		require.NoError(t, os.WriteFile(outside,
			[]byte(`{"role": "Leaked", "modules": [{"title": "x", "steps": [{"title": "outside file content"}]}]}`), 0o644))

		status, _ := env.do(t, "POST", "/api/roadmaps/generate", token, map[string]string{
			"role":  "../secret",
			"start": "2024-06-01",
			"end":   "2024-07-01",
		})
		assert.Equal(t, fiber.StatusNotFound, status)

		status, _ = env.do(t, "GET", "/api/roadmaps/role/Leaked", token, nil)
		assert.Equal(t, fiber.StatusNotFound, status)
	})

	t.Run("UnknownRole", func(t *testing.T) {
		status, _ := env.do(t, "GET", "/api/roadmaps/role/backend", token, nil)
		assert.Equal(t, fiber.StatusNotFound, status)
	})
}

func TestToggleStep(t *testing.T) {
	env := newTestEnv(t)
	token := env.signup(t, "alice")
	roadmapID := env.generate(t, token, "2024-06-01", "2024-06-29")

	env.now = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	status, result := env.toggle(t, token, roadmapID, "html-1", true)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), data(result)["streak"])
	assert.Equal(t, float64(33), data(result)["progress"])

	// same day
	status, result = env.toggle(t, token, roadmapID, "html-2", true)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), data(result)["streak"])
	assert.Equal(t, float64(66), data(result)["progress"])

	env.now = time.Date(2024, 6, 11, 20, 0, 0, 0, time.UTC)
	status, result = env.toggle(t, token, roadmapID, "css-1", true)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(2), data(result)["streak"])
	assert.Equal(t, float64(100), data(result)["progress"])

	t.Run("UncheckKeepsStreak", func(t *testing.T) {
		status, result := env.toggle(t, token, roadmapID, "html-1", false)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, float64(2), data(result)["streak"])
		assert.Equal(t, float64(66), data(result)["progress"])
		assert.Equal(t, false, data(result)["checked"])
	})

	t.Run("DatabaseIsUpdated", func(t *testing.T) {
		var item models.RoadmapItem
		require.NoError(t, env.db.Where("roadmap_id = ? AND step_code = ?", roadmapID, "css-1").First(&item).Error)
		assert.True(t, item.IsCompleted)
		require.NotNil(t, item.CompletedDate)
		assert.Equal(t, "2024-06-11", item.CompletedDate.UTC().Format(models.DateLayout))

		var roadmap models.Roadmap
		require.NoError(t, env.db.First(&roadmap, roadmapID).Error)
		require.NotNil(t, roadmap.LastActivityDate)
		assert.Equal(t, "2024-06-11", roadmap.LastActivityDate.UTC().Format(models.DateLayout))
	})

	t.Run("Document", func(t *testing.T) {
		status, result := env.do(t, "GET", "/api/progress", token, nil)
		require.Equal(t, fiber.StatusOK, status)

		body := data(result)
		assert.Equal(t, float64(2), body["streak"])
		assert.Equal(t, "2024-06-11", body["last_streak_date"])
		steps := body["steps"].(map[string]interface{})
		require.Len(t, steps, 3)
		unchecked := steps[fmt.Sprintf("%d:html-1", roadmapID)].(map[string]interface{})
		assert.Equal(t, false, unchecked["checked"])
		assert.Nil(t, unchecked["date"])
		checked := steps[fmt.Sprintf("%d:css-1", roadmapID)].(map[string]interface{})
		assert.Equal(t, "2024-06-11", checked["date"])
	})

	t.Run("GetStep", func(t *testing.T) {
		status, result := env.do(t, "GET", fmt.Sprintf("/api/progress/steps?roadmap_id=%d&step_code=html-2", roadmapID), token, nil)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, true, data(result)["checked"])

		status, _ = env.do(t, "GET", "/api/progress/steps?roadmap_id=abc&step_code=html-2", token, nil)
		assert.Equal(t, fiber.StatusBadRequest, status)
	})

	t.Run("GapResetsStreak", func(t *testing.T) {
		env.now = time.Date(2024, 6, 14, 8, 0, 0, 0, time.UTC)
		status, result := env.toggle(t, token, roadmapID, "html-1", true)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, float64(1), data(result)["streak"])
	})

	t.Run("UnknownStep", func(t *testing.T) {
		status, _ := env.toggle(t, token, roadmapID, "nope", true)
		assert.Equal(t, fiber.StatusNotFound, status)
	})

	t.Run("OtherUsersRoadmap", func(t *testing.T) {
		other := env.signup(t, "mallory")
		status, _ := env.toggle(t, other, roadmapID, "html-1", false)
		assert.Equal(t, fiber.StatusNotFound, status)

		status, _ = env.do(t, "GET", fmt.Sprintf("/api/progress/steps?roadmap_id=%d&step_code=html-1", roadmapID), other, nil)
		assert.Equal(t, fiber.StatusNotFound, status)
	})

	t.Run("MissingChecked", func(t *testing.T) {
		status, _ := env.do(t, "POST", "/api/progress/steps", token, map[string]interface{}{
			"roadmap_id": roadmapID,
			"step_code":  "html-1",
		})
		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	})
}

func TestActivity(t *testing.T) {
	env := newTestEnv(t)
	token := env.signup(t, "alice")

	var user models.User
	require.NoError(t, env.db.Where("username = ?", "alice").First(&user).Error)
	end := time.Date(2024, 6, 10, 10, 30, 0, 0, time.UTC)
	require.NoError(t, env.db.Create(&models.Session{
		UserID:    user.ID,
		StartTime: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
		EndTime:   &end,
	}).Error)
	// outside every window
	oldEnd := time.Date(2023, 1, 5, 11, 0, 0, 0, time.UTC)
	require.NoError(t, env.db.Create(&models.Session{
		UserID:    user.ID,
		StartTime: time.Date(2023, 1, 5, 10, 0, 0, 0, time.UTC),
		EndTime:   &oldEnd,
	}).Error)

	last := "2024-06-14"
	require.NoError(t, env.store.Save(context.Background(), fmt.Sprint(user.ID), &models.ProgressDocument{
		Steps:          map[string]models.StepMark{},
		Streak:         2,
		LastStreakDate: &last,
	}))

	roadmapID := env.generate(t, token, "2024-06-01", "2024-06-29")
	env.now = time.Date(2024, 6, 15, 10, 45, 0, 0, time.UTC)

	t.Run("BeforeToggle", func(t *testing.T) {
		status, result := env.do(t, "GET", "/api/activity", token, nil)
		require.Equal(t, fiber.StatusOK, status)

		body := data(result)
		assert.Equal(t, "2024-06-15", body["today"])
		assert.Equal(t, float64(3), body["streak"])
		assert.Equal(t, float64(0), body["overall_progress"])

		activity := body["activity"].(map[string]interface{})
		day := activity["day"].(map[string]interface{})
		assert.Equal(t, []interface{}{"09", "10", "11", "12", "13", "14", "15"}, day["labels"])
		// login session at 10:00 is still open
		assert.Equal(t, []interface{}{0.0, 90.0, 0.0, 0.0, 0.0, 0.0, 45.0}, day["values"])

		week := activity["week"].(map[string]interface{})
		assert.Equal(t, "Jun 10", week["labels"].([]interface{})[6])
		assert.Equal(t, 135.0, week["values"].([]interface{})[6])

		month := activity["month"].(map[string]interface{})
		assert.Equal(t, []interface{}{"Dec", "Jan", "Feb", "Mar", "Apr", "May", "Jun"}, month["labels"])
		assert.Equal(t, []interface{}{0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 135.0}, month["values"])

		assert.Equal(t, float64(0), body["last_week_share"])
	})

	t.Run("AfterToggle", func(t *testing.T) {
		status, result := env.toggle(t, token, roadmapID, "html-1", true)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, float64(3), data(result)["streak"])

		status, result = env.do(t, "GET", "/api/activity", token, nil)
		require.Equal(t, fiber.StatusOK, status)

		body := data(result)
		assert.Equal(t, float64(3), body["streak"])
		assert.Equal(t, float64(33), body["overall_progress"])
		courses := body["courses"].([]interface{})
		require.Len(t, courses, 1)
		assert.Equal(t, "Frontend", courses[0].(map[string]interface{})["name"])

		split := body["course_split"].(map[string]interface{})
		assert.Equal(t, float64(0), split["completed_courses"])
		assert.Equal(t, float64(1), split["in_progress_courses"])
		assert.Equal(t, float64(100), split["in_progress_percent"])
	})
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	before := testutil.ToFloat64(metrics.LoginsTotal.WithLabelValues("rejected"))
	requestsBefore := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("POST", "/api/auth/login", "401"))
	status, _ := env.do(t, "POST", "/api/auth/login", "", map[string]string{
		"username": "ghost",
		"password": "password",
	})
	require.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.LoginsTotal.WithLabelValues("rejected")))

	// a later request must not rewrite the recorded labels
	status, _ = env.do(t, "GET", "/api/activity", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, requestsBefore+1,
		testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("POST", "/api/auth/login", "401")))

	resp, err := env.app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "roadmap_http_requests_total")
	assert.Contains(t, string(body), "roadmap_logins_total")
}
