package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// MockTasksRepo is a mock implementation of Repository
type MockTasksRepo struct {
	mock.Mock
}

func (m *MockTasksRepo) Create(ctx context.Context, task *Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *MockTasksRepo) List(ctx context.Context, userID bson.ObjectID, filter ListFilter) ([]*Task, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Task), args.Error(1)
}

func (m *MockTasksRepo) Get(ctx context.Context, userID, taskID bson.ObjectID) (*Task, error) {
	args := m.Called(ctx, userID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Task), args.Error(1)
}

func (m *MockTasksRepo) Update(ctx context.Context, userID, taskID bson.ObjectID, patch UpdateTask) (*Task, error) {
	args := m.Called(ctx, userID, taskID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Task), args.Error(1)
}

func (m *MockTasksRepo) Delete(ctx context.Context, userID, taskID bson.ObjectID) error {
	return m.Called(ctx, userID, taskID).Error(0)
}

func (m *MockTasksRepo) Stats(ctx context.Context, userID bson.ObjectID, now time.Time) (*Stats, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Stats), args.Error(1)
}

func TestDueDateUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantSet bool
		want    *time.Time
		wantErr bool
	}{
		{name: "absent", body: `{}`},
		{name: "null clears", body: `{"dueDate":null}`, wantSet: true},
		{name: "empty string clears", body: `{"dueDate":""}`, wantSet: true},
		{name: "date only", body: `{"dueDate":"2025-07-01"}`, wantSet: true, want: ptrTime(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))},
		{name: "rfc3339 with offset", body: `{"dueDate":"2025-07-01T10:00:00+02:00"}`, wantSet: true, want: ptrTime(time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC))},
		{name: "garbage", body: `{"dueDate":"next tuesday"}`, wantErr: true},
		{name: "wrong type", body: `{"dueDate":42}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateTaskRequest
			err := json.Unmarshal([]byte(tt.body), &req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSet, req.DueDate.Set)
			assert.Equal(t, tt.want, req.DueDate.Time)
		})
	}
}

func TestServiceCreateDefaults(t *testing.T) {
	userID := bson.NewObjectID()
	repo := new(MockTasksRepo)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*tasks.Task")).Return(nil)

	task, err := NewService(repo, silentLogger).Create(context.Background(), userID, CreateTaskRequest{
		Title:       " Write <i>docs</i> ",
		Description: "<p>first</p>\nsecond",
	})
	require.NoError(t, err)

	assert.Equal(t, "Write docs", task.Title)
	assert.Equal(t, "first\nsecond", task.Description)
	assert.Equal(t, StatusTodo, task.Status)
	assert.Equal(t, PriorityMedium, task.Priority)
	assert.Nil(t, task.DueDate)
	assert.Equal(t, userID, task.UserID)
	repo.AssertExpectations(t)
}

func TestServiceCreateErrors(t *testing.T) {
	repo := new(MockTasksRepo)
	svc := NewService(repo, silentLogger)

	_, err := svc.Create(context.Background(), bson.NewObjectID(), CreateTaskRequest{Title: "<br>"})
	assert.ErrorIs(t, err, ErrInvalidTitle)

	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db error"))
	_, err = svc.Create(context.Background(), bson.NewObjectID(), CreateTaskRequest{Title: "ok"})
	assert.ErrorIs(t, err, ErrCreateTask)
}

func TestServiceUpdateDueDate(t *testing.T) {
	userID, taskID := bson.NewObjectID(), bson.NewObjectID()

	t.Run("null clears", func(t *testing.T) {
		repo := new(MockTasksRepo)
		repo.On("Update", mock.Anything, userID, taskID, UpdateTask{ClearDueDate: true}).Return(&Task{ID: taskID}, nil)

		var req UpdateTaskRequest
		require.NoError(t, json.Unmarshal([]byte(`{"dueDate":null}`), &req))
		_, err := NewService(repo, silentLogger).Update(context.Background(), userID, taskID, req)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("absent leaves it alone", func(t *testing.T) {
		repo := new(MockTasksRepo)
		status := StatusDone
		repo.On("Update", mock.Anything, userID, taskID, UpdateTask{Status: &status}).Return(&Task{ID: taskID, Status: StatusDone}, nil)

		got, err := NewService(repo, silentLogger).Update(context.Background(), userID, taskID, UpdateTaskRequest{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, StatusDone, got.Status)
		repo.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockTasksRepo)
		repo.On("Update", mock.Anything, userID, taskID, mock.Anything).Return(nil, ErrTaskNotFound)

		_, err := NewService(repo, silentLogger).Update(context.Background(), userID, taskID, UpdateTaskRequest{})
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestServiceStatsFillsEveryBucket(t *testing.T) {
	userID := bson.NewObjectID()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	repo := new(MockTasksRepo)
	repo.On("Stats", mock.Anything, userID, now).Return(&Stats{
		Total:      3,
		ByStatus:   map[string]int64{StatusTodo: 2, StatusDone: 1},
		ByPriority: map[string]int64{PriorityHigh: 3},
		Overdue:    1,
	}, nil)

	svc := NewService(repo, silentLogger)
	svc.now = func() time.Time { return now }

	got, err := svc.Stats(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), got.Total)
	assert.Equal(t, int64(1), got.Overdue)
	assert.Equal(t, map[string]int64{"todo": 2, "in-progress": 0, "review": 0, "done": 1}, got.ByStatus)
	assert.Equal(t, map[string]int64{"low": 0, "medium": 0, "high": 3, "critical": 0}, got.ByPriority)
}

func TestServiceListAndDelete(t *testing.T) {
	userID, taskID := bson.NewObjectID(), bson.NewObjectID()
	repo := new(MockTasksRepo)
	repo.On("List", mock.Anything, userID, ListFilter{Status: "todo"}).Return(nil, nil)
	repo.On("Delete", mock.Anything, userID, taskID).Return(errors.New("db error"))
	svc := NewService(repo, silentLogger)

	list, err := svc.List(context.Background(), userID, ListTasksRequest{Status: "todo"})
	require.NoError(t, err)
	assert.NotNil(t, list)

	assert.ErrorIs(t, svc.Delete(context.Background(), userID, taskID), ErrDeleteTask)
}

func ptrTime(t time.Time) *time.Time { return &t }
