package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/team-management-service/internal/domain"
)

// Тестовые структуры данных соответствующие API
type registerRequest struct {
	ExternalID string `json:"external_id"`
	Username   string `json:"username"`
}

type registerResponse struct {
	User *domain.User `json:"user"`
}

type loginRequest struct {
	ExternalID string `json:"external_id"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type teamRequest struct {
	Name     string    `json:"name"`
	LeaderID uuid.UUID `json:"leader_id"`
}

type teamResponse struct {
	Team *domain.Team `json:"team"`
}

type memberRequest struct {
	TeamID uuid.UUID `json:"team_id"`
	UserID uuid.UUID `json:"user_id"`
}

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type projectResponse struct {
	Project *domain.Project `json:"project"`
}

type assignRequest struct {
	ProjectID uuid.UUID       `json:"project_id"`
	Assignee  domain.Assignee `json:"assignee"`
}

type assignResponse struct {
	Assignment *domain.Assignment `json:"assignment"`
}

type taskRequest struct {
	ProjectID   uuid.UUID `json:"project_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

type taskResponse struct {
	Task *domain.Task `json:"task"`
}

type taskStatusRequest struct {
	TaskID uuid.UUID         `json:"task_id"`
	Status domain.TaskStatus `json:"status"`
}

type taskUpdateRequest struct {
	TaskID      uuid.UUID `json:"task_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

type taskListResponse struct {
	Tasks      []*domain.Task `json:"tasks"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// decodeJSON декодирует тело ответа и закрывает его
func decodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

// requireErrorCode проверяет HTTP статус и машинный код ошибки
func requireErrorCode(t *testing.T, resp *http.Response, status int, code string) {
	t.Helper()
	require.Equal(t, status, resp.StatusCode)
	var errResp errorResponse
	decodeJSON(t, resp, &errResp)
	assert.Equal(t, code, errResp.Error.Code)
}

// TestE2E_CompleteWorkflow тестирует полный workflow сервиса:
// регистрация, команды, проекты, задачи и каскадное удаление.
func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Настраиваем тестовое окружение
	env := SetupTestEnvironment(t)
	defer env.Cleanup(t)

	// Ждем пока приложение будет готово
	env.WaitForHealthCheck(t)

	users := map[string]*domain.User{}
	tokens := map[string]string{}

	t.Run("Register Users", func(t *testing.T) {
		for _, name := range []string{"admin", "leader", "member", "outsider"} {
			body, _ := json.Marshal(registerRequest{
				ExternalID: "ext-" + name,
				Username:   name,
			})
			resp := env.MakeRequest(t, http.MethodPost, "/auth/register", bytes.NewReader(body), "")
			require.Equal(t, http.StatusCreated, resp.StatusCode, "Registration should succeed for %s", name)

			var regResp registerResponse
			decodeJSON(t, resp, &regResp)
			require.NotNil(t, regResp.User)
			assert.Equal(t, domain.RoleMember, regResp.User.Role)
			users[name] = regResp.User
		}

		// Повторная регистрация той же внешней личности отклоняется
		body, _ := json.Marshal(registerRequest{ExternalID: "ext-admin", Username: "imposter"})
		resp := env.MakeRequest(t, http.MethodPost, "/auth/register", bytes.NewReader(body), "")
		requireErrorCode(t, resp, http.StatusConflict, "USER_EXISTS")
	})

	// Первого администратора назначаем напрямую в БД: эндпоинт setRole
	// сам требует admin-прав
	t.Run("Promote First Admin", func(t *testing.T) {
		_, err := env.DB.Exec(env.ctx,
			"UPDATE users SET role = 'admin' WHERE external_id = 'ext-admin'")
		require.NoError(t, err)
	})

	t.Run("Login", func(t *testing.T) {
		for name := range users {
			body, _ := json.Marshal(loginRequest{ExternalID: "ext-" + name})
			resp := env.MakeRequest(t, http.MethodPost, "/auth/login", bytes.NewReader(body), "")
			require.Equal(t, http.StatusOK, resp.StatusCode, "Login should succeed for %s", name)

			var loginResp loginResponse
			decodeJSON(t, resp, &loginResp)
			require.NotEmpty(t, loginResp.Token)
			tokens[name] = loginResp.Token
		}

		// Несвязанная личность получает 401
		body, _ := json.Marshal(loginRequest{ExternalID: "ext-nobody"})
		resp := env.MakeRequest(t, http.MethodPost, "/auth/login", bytes.NewReader(body), "")
		requireErrorCode(t, resp, http.StatusUnauthorized, "NOT_AUTHENTICATED")
	})

	t.Run("Requests Without Token Rejected", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodGet, "/team/list", nil, "")
		requireErrorCode(t, resp, http.StatusUnauthorized, "NOT_AUTHENTICATED")
	})

	var team *domain.Team
	t.Run("Create Team", func(t *testing.T) {
		body, _ := json.Marshal(teamRequest{Name: "mechanics", LeaderID: users["leader"].ID})

		// Рядовой пользователь не создает команды
		resp := env.MakeRequest(t, http.MethodPost, "/team/add", bytes.NewReader(body), tokens["member"])
		requireErrorCode(t, resp, http.StatusForbidden, "NOT_AUTHORIZED")

		resp = env.MakeRequest(t, http.MethodPost, "/team/add", bytes.NewReader(body), tokens["admin"])
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var teamResp teamResponse
		decodeJSON(t, resp, &teamResp)
		require.NotNil(t, teamResp.Team)
		assert.Equal(t, users["leader"].ID, teamResp.Team.LeaderID)
		team = teamResp.Team
	})

	t.Run("Add Member", func(t *testing.T) {
		body, _ := json.Marshal(memberRequest{TeamID: team.ID, UserID: users["member"].ID})
		resp := env.MakeRequest(t, http.MethodPost, "/team/addMember", bytes.NewReader(body), tokens["leader"])
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp.Body.Close()

		// Дубликат членства — конфликт
		resp = env.MakeRequest(t, http.MethodPost, "/team/addMember", bytes.NewReader(body), tokens["leader"])
		requireErrorCode(t, resp, http.StatusConflict, "DUPLICATE_MEMBER")
	})

	t.Run("Leader Cannot Be Removed", func(t *testing.T) {
		body, _ := json.Marshal(memberRequest{TeamID: team.ID, UserID: users["leader"].ID})
		resp := env.MakeRequest(t, http.MethodPost, "/team/removeMember", bytes.NewReader(body), tokens["admin"])
		requireErrorCode(t, resp, http.StatusConflict, "INVARIANT_VIOLATION")
	})

	var project *domain.Project
	t.Run("Create Project", func(t *testing.T) {
		body, _ := json.Marshal(projectRequest{Name: "drivetrain", Description: "swerve drive"})

		// Участник без лидерства не создает проекты
		resp := env.MakeRequest(t, http.MethodPost, "/project/create", bytes.NewReader(body), tokens["member"])
		requireErrorCode(t, resp, http.StatusForbidden, "NOT_AUTHORIZED")

		// Лидер хотя бы одной команды — создает
		resp = env.MakeRequest(t, http.MethodPost, "/project/create", bytes.NewReader(body), tokens["leader"])
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var projResp projectResponse
		decodeJSON(t, resp, &projResp)
		require.NotNil(t, projResp.Project)
		project = projResp.Project
	})

	t.Run("Assign Team to Project", func(t *testing.T) {
		body, _ := json.Marshal(assignRequest{
			ProjectID: project.ID,
			Assignee:  domain.Assignee{Type: domain.AssigneeTeam, ID: team.ID},
		})
		resp := env.MakeRequest(t, http.MethodPost, "/project/assign", bytes.NewReader(body), tokens["leader"])
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var asgResp assignResponse
		decodeJSON(t, resp, &asgResp)
		require.NotNil(t, asgResp.Assignment)

		// Повторное назначение той же пары — конфликт
		body, _ = json.Marshal(assignRequest{
			ProjectID: project.ID,
			Assignee:  domain.Assignee{Type: domain.AssigneeTeam, ID: team.ID},
		})
		resp = env.MakeRequest(t, http.MethodPost, "/project/assign", bytes.NewReader(body), tokens["leader"])
		requireErrorCode(t, resp, http.StatusConflict, "DUPLICATE_ASSIGNMENT")
	})

	t.Run("Project Visibility", func(t *testing.T) {
		// Участник команды видит проект
		resp := env.MakeRequest(t, http.MethodGet, "/project/get?project_id="+project.ID.String(), nil, tokens["member"])
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		// Посторонний получает отказ в доступе, а не 404
		resp = env.MakeRequest(t, http.MethodGet, "/project/get?project_id="+project.ID.String(), nil, tokens["outsider"])
		requireErrorCode(t, resp, http.StatusForbidden, "NOT_AUTHORIZED")

		// Списки фильтруются молча
		resp = env.MakeRequest(t, http.MethodGet, "/project/list", nil, tokens["outsider"])
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var projects []*domain.Project
		decodeJSON(t, resp, &projects)
		assert.Empty(t, projects)
	})

	var task *domain.Task
	t.Run("Create and Update Task", func(t *testing.T) {
		body, _ := json.Marshal(taskRequest{ProjectID: project.ID, Name: "build chassis"})
		resp := env.MakeRequest(t, http.MethodPost, "/task/create", bytes.NewReader(body), tokens["member"])
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var tResp taskResponse
		decodeJSON(t, resp, &tResp)
		require.NotNil(t, tResp.Task)
		assert.Equal(t, domain.TaskBacklog, tResp.Task.Status)
		task = tResp.Task

		// Участник двигает статус
		body, _ = json.Marshal(taskStatusRequest{TaskID: task.ID, Status: domain.TaskInProgress})
		resp = env.MakeRequest(t, http.MethodPost, "/task/updateStatus", bytes.NewReader(body), tokens["member"])
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		// Но не переименовывает задачу
		body, _ = json.Marshal(taskUpdateRequest{TaskID: task.ID, Name: "renamed"})
		resp = env.MakeRequest(t, http.MethodPost, "/task/update", bytes.NewReader(body), tokens["member"])
		requireErrorCode(t, resp, http.StatusForbidden, "NOT_AUTHORIZED")

		// Лидеру можно
		body, _ = json.Marshal(taskUpdateRequest{TaskID: task.ID, Name: "build chassis v2"})
		resp = env.MakeRequest(t, http.MethodPost, "/task/update", bytes.NewReader(body), tokens["leader"])
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("Task Pagination", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			body, _ := json.Marshal(taskRequest{ProjectID: project.ID, Name: fmt.Sprintf("task-%d", i)})
			resp := env.MakeRequest(t, http.MethodPost, "/task/create", bytes.NewReader(body), tokens["member"])
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			resp.Body.Close()
		}

		seen := map[uuid.UUID]bool{}
		cursor := ""
		pages := 0
		for {
			path := fmt.Sprintf("/task/listByProject?project_id=%s&limit=2", project.ID)
			if cursor != "" {
				path += "&cursor=" + cursor
			}
			resp := env.MakeRequest(t, http.MethodGet, path, nil, tokens["member"])
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var listResp taskListResponse
			decodeJSON(t, resp, &listResp)
			for _, item := range listResp.Tasks {
				assert.False(t, seen[item.ID], "Task should not repeat across pages")
				seen[item.ID] = true
			}

			pages++
			require.Less(t, pages, 10, "Pagination should terminate")
			if listResp.NextCursor == "" {
				break
			}
			cursor = listResp.NextCursor
		}

		// Всего 6 задач: одна из предыдущего шага и пять новых
		assert.Len(t, seen, 6)
		assert.GreaterOrEqual(t, pages, 3)

		// Посторонний видит пустую страницу
		path := fmt.Sprintf("/task/listByProject?project_id=%s", project.ID)
		resp := env.MakeRequest(t, http.MethodGet, path, nil, tokens["outsider"])
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var listResp taskListResponse
		decodeJSON(t, resp, &listResp)
		assert.Empty(t, listResp.Tasks)
	})

	t.Run("Stats", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodGet, "/stats", nil, tokens["member"])
		requireErrorCode(t, resp, http.StatusForbidden, "NOT_AUTHORIZED")

		resp = env.MakeRequest(t, http.MethodGet, "/stats", nil, tokens["admin"])
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		path := "/stats/project?project_id=" + project.ID.String()
		resp = env.MakeRequest(t, http.MethodGet, path, nil, tokens["member"])
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("Delete Team Revokes Access", func(t *testing.T) {
		body, _ := json.Marshal(struct {
			TeamID uuid.UUID `json:"team_id"`
		}{TeamID: team.ID})
		resp := env.MakeRequest(t, http.MethodPost, "/team/delete", bytes.NewReader(body), tokens["admin"])
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp.Body.Close()

		// Доступ, который шел только через команду, пропадает сразу
		resp = env.MakeRequest(t, http.MethodGet, "/project/get?project_id="+project.ID.String(), nil, tokens["member"])
		requireErrorCode(t, resp, http.StatusForbidden, "NOT_AUTHORIZED")

		// Сам проект при этом жив
		resp = env.MakeRequest(t, http.MethodGet, "/project/get?project_id="+project.ID.String(), nil, tokens["admin"])
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("Delete Project Cascades to Tasks", func(t *testing.T) {
		body, _ := json.Marshal(struct {
			ProjectID uuid.UUID `json:"project_id"`
		}{ProjectID: project.ID})
		resp := env.MakeRequest(t, http.MethodPost, "/project/delete", bytes.NewReader(body), tokens["admin"])
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp.Body.Close()

		resp = env.MakeRequest(t, http.MethodGet, "/task/get?task_id="+task.ID.String(), nil, tokens["admin"])
		requireErrorCode(t, resp, http.StatusNotFound, "NOT_FOUND")
	})
}
