package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProject(t *testing.T) {
	t.Parallel()

	p, err := NewProject("a.elmurzaev95", "  Google  ", "search things")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, "Google", p.Title)
	assert.True(t, p.IsOwnedBy("a.elmurzaev95"))
	assert.False(t, p.IsOwnedBy("intruder"))
	assert.False(t, p.IsOwnedBy(""))

	_, err = NewProject("a.elmurzaev95", "   ", "")
	assert.ErrorIs(t, err, ErrEmptyProjectTitle)

	_, err = NewProject("", "Google", "")
	assert.ErrorIs(t, err, ErrEmptyProjectOwner)

	_, err = NewProject("owner", strings.Repeat("t", 256), "")
	assert.ErrorIs(t, err, ErrProjectTitleLong)
}

func TestProjectRename(t *testing.T) {
	t.Parallel()

	p, err := NewProject("owner", "Old", "")
	require.NoError(t, err)
	id := p.ID

	require.NoError(t, p.Rename("New", "desc"))
	assert.Equal(t, "New", p.Title)
	assert.Equal(t, "desc", p.Description)
	assert.Equal(t, id, p.ID, "rename must not change the project ID")

	assert.ErrorIs(t, p.Rename("", "desc"), ErrEmptyProjectTitle)
}

func TestNewTask(t *testing.T) {
	t.Parallel()

	projectID := uuid.New()
	task, err := NewTask(projectID, "a.elmurzaev95", "Google-1", "", "a.elmurzaev95")
	require.NoError(t, err)
	assert.Equal(t, TaskStatusNew, task.Status)
	assert.Equal(t, 0, task.Number, "number is assigned by the store")
	assert.ErrorIs(t, task.Validate(), ErrInvalidTaskNumber)

	task.Number = 1
	assert.NoError(t, task.Validate())

	_, err = NewTask(uuid.Nil, "a", "title", "", "")
	assert.ErrorIs(t, err, ErrEmptyTaskProjectID)

	_, err = NewTask(projectID, "a", " ", "", "")
	assert.ErrorIs(t, err, ErrEmptyTaskTitle)
}

func TestParseTaskStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    TaskStatus
		wantErr bool
	}{
		{in: "NEW", want: TaskStatusNew},
		{in: "in_progress", want: TaskStatusInProgress},
		{in: " done ", want: TaskStatusDone},
		{in: "ARCHIVED", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range tests {
		got, err := ParseTaskStatus(tc.in)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInvalidTaskStatus, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestNewTaskProfile(t *testing.T) {
	t.Parallel()

	p, err := NewProject("owner", "Google", "")
	require.NoError(t, err)
	task, err := NewTask(p.ID, "owner", "Google-1", "first", "helper")
	require.NoError(t, err)
	task.Number = 7

	profile := NewTaskProfile(task, p)
	assert.Equal(t, 7, profile.Number)
	assert.Equal(t, "Google", profile.ProjectTitle)
	assert.Equal(t, "owner", profile.Author)
	assert.Equal(t, "helper", profile.Assignee)
	assert.Equal(t, TaskStatusNew, profile.Status)
}

func TestNewOutboxEvent(t *testing.T) {
	t.Parallel()

	e, err := NewOutboxEvent("invitation", map[string]string{"projectTitle": "Google"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, "invitation", e.Type)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(e.Payload, &decoded))
	assert.Equal(t, "Google", decoded["projectTitle"])

	_, err = NewOutboxEvent("", map[string]string{})
	assert.ErrorIs(t, err, ErrEmptyEventType)

	_, err = NewOutboxEvent("invitation", []string{"not", "an", "object"})
	assert.ErrorIs(t, err, ErrEmptyEventPayload)

	_, err = NewOutboxEvent("invitation", make(chan int))
	assert.Error(t, err)
}
