package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/team-management-service/internal/domain"
	"github.com/aidar/team-management-service/internal/service"
)

func newTestTaskService(f *fixture) *service.TaskService {
	return service.NewTaskService(f.store, newTestActivity(f))
}

// seedProjectTeam creates leader+member in a team assigned to a fresh project
func seedProjectTeam(f *fixture) (leader, member *domain.User, project *domain.Project) {
	leader = f.user("leader", domain.RoleMember)
	member = f.user("member", domain.RoleMember)
	team := f.team("mechanics", leader)
	f.addMember(team, member)
	project = f.project("drivetrain", leader)
	f.assign(domain.ResourceProject, project.ID, teamAssignee(team))
	return leader, member, project
}

func TestCreateTask(t *testing.T) {
	f := newFixture(t)
	svc := newTestTaskService(f)

	leader, member, project := seedProjectTeam(f)
	outsider := f.user("outsider", domain.RoleMember)

	// Достаточно member-доступа к проекту: задачи создают и рядовые участники.
	task, err := svc.CreateTask(f.ctx, member, project.ID, "build chassis", "")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskBacklog, task.Status)
	assert.Equal(t, project.ID, task.ProjectID)

	_, err = svc.CreateTask(f.ctx, leader, project.ID, "order parts", "")
	require.NoError(t, err)

	_, err = svc.CreateTask(f.ctx, outsider, project.ID, "sabotage", "")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	_, err = svc.CreateTask(f.ctx, leader, uuid.New(), "orphan", "")
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestUpdateTask_MemberOnlyStatus(t *testing.T) {
	f := newFixture(t)
	svc := newTestTaskService(f)

	leader, member, project := seedProjectTeam(f)
	task := f.task(project, "build chassis", leader)

	// Участник двигает статус, но не трогает имя и описание.
	updated, err := svc.UpdateTaskStatus(f.ctx, member, task.ID, domain.TaskInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskInProgress, updated.Status)

	_, err = svc.UpdateTask(f.ctx, member, task.ID, "renamed", "")
	require.ErrorIs(t, err, domain.ErrNotAuthorized)
	assert.Contains(t, err.Error(), "status")

	updated, err = svc.UpdateTask(f.ctx, leader, task.ID, "build chassis v2", "aluminium")
	require.NoError(t, err)
	assert.Equal(t, "build chassis v2", updated.Name)
}

func TestDeleteTask_TaskMemberInsufficient(t *testing.T) {
	f := newFixture(t)
	svc := newTestTaskService(f)

	creator := f.user("creator", domain.RoleAdmin)
	assignee := f.user("assignee", domain.RoleMember)
	project := f.project("media", creator)
	task := f.task(project, "edit video", creator)
	f.assign(domain.ResourceTask, task.ID, userAssignee(assignee))

	// Прямое назначение на задачу даёт member, но удаление требует
	// team_leader на уровне проекта.
	err := svc.DeleteTask(f.ctx, assignee, task.ID)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	require.NoError(t, svc.DeleteTask(f.ctx, creator, task.ID))

	_, err = f.r.Tasks.GetByID(f.ctx, task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestListTasksByProject_NoAccessEmptyPage(t *testing.T) {
	f := newFixture(t)
	svc := newTestTaskService(f)

	leader, member, project := seedProjectTeam(f)
	outsider := f.user("outsider", domain.RoleMember)
	f.task(project, "a", leader)
	f.task(project, "b", leader)

	tasks, err := svc.ListTasksByProject(f.ctx, member, project.ID, nil, 10)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	// Без доступа — пустая страница, а не ошибка: списки фильтруют молча.
	tasks, err = svc.ListTasksByProject(f.ctx, outsider, project.ID, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestAssignTask(t *testing.T) {
	f := newFixture(t)
	svc := newTestTaskService(f)

	leader, member, project := seedProjectTeam(f)
	helper := f.user("helper", domain.RoleMember)
	task := f.task(project, "build chassis", leader)

	assignment, err := svc.Assign(f.ctx, leader, task.ID, userAssignee(helper))
	require.NoError(t, err)

	_, err = svc.Assign(f.ctx, leader, task.ID, userAssignee(helper))
	assert.ErrorIs(t, err, domain.ErrDuplicateAssignment)

	// member-доступа к проекту недостаточно для управления назначениями.
	_, err = svc.Assign(f.ctx, member, task.ID, userAssignee(member))
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	require.NoError(t, svc.Unassign(f.ctx, leader, task.ID, assignment.ID))

	err = svc.Unassign(f.ctx, leader, task.ID, assignment.ID)
	assert.ErrorIs(t, err, domain.ErrAssignmentNotFound)
}
