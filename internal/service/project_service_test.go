package service

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/grover/internal/domain"
	"github.com/phrazzld/grover/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProjectServiceForTest(t *testing.T) (ProjectService, *serviceMocks, sqlmock.Sqlmock) {
	t.Helper()
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m := newServiceMocks()
	svc, err := NewProjectService(db, m.projects, m.keywords, testLogger())
	require.NoError(t, err)
	return svc, m, sqlMock
}

func TestNewProjectService_NilDependencies(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = NewProjectService(nil, &MockProjectStore{}, &MockKeywordStore{}, testLogger())
	assert.Error(t, err)
	_, err = NewProjectService(db, nil, &MockKeywordStore{}, testLogger())
	assert.Error(t, err)
	_, err = NewProjectService(db, &MockProjectStore{}, nil, testLogger())
	assert.Error(t, err)
	_, err = NewProjectService(db, &MockProjectStore{}, &MockKeywordStore{}, nil)
	assert.Error(t, err)
}

func TestProjectService_Create(t *testing.T) {
	t.Run("validates before saving", func(t *testing.T) {
		svc, m, _ := newProjectServiceForTest(t)

		err := svc.Create(context.Background(), &domain.Project{Name: "No care areas"})

		assert.ErrorIs(t, err, domain.ErrNoCareAreas)
		m.projects.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("normalizes care areas and saves", func(t *testing.T) {
		svc, m, _ := newProjectServiceForTest(t)
		p := &domain.Project{Name: "Guide", CareAreas: []string{"memory care"}}
		m.projects.On("Create", mock.Anything, p).Return(nil).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Project).ID = 4
		})

		require.NoError(t, svc.Create(context.Background(), p))

		assert.Equal(t, int64(4), p.ID)
		assert.Equal(t, []string{"Memory Care"}, p.CareAreas)
		m.assertExpectations(t)
	})
}

func TestProjectService_Get_NotFound(t *testing.T) {
	svc, m, _ := newProjectServiceForTest(t)
	m.projects.On("GetByID", mock.Anything, int64(9)).Return(nil, store.ErrProjectNotFound)

	_, err := svc.Get(context.Background(), 9)

	assert.ErrorIs(t, err, store.ErrNotFound)
	var serviceErr *ServiceError
	require.True(t, errors.As(err, &serviceErr))
	assert.Equal(t, "get", serviceErr.Op)
}

func TestProjectService_Duplicate(t *testing.T) {
	t.Run("copies project and keywords in one transaction", func(t *testing.T) {
		svc, m, sqlMock := newProjectServiceForTest(t)
		sqlMock.ExpectBegin()
		sqlMock.ExpectCommit()

		volume := 880
		m.projects.On("GetByID", mock.Anything, int64(1)).Return(sampleProject(), nil)
		m.projects.On("Create", mock.Anything, mock.AnythingOfType("*domain.Project")).
			Return(nil).
			Run(func(args mock.Arguments) { args.Get(1).(*domain.Project).ID = 2 })
		m.keywords.On("ListByProject", mock.Anything, int64(1)).Return([]*domain.Keyword{
			{ID: 1, ProjectID: 1, Keyword: "memory care", SearchVolume: &volume, IsPrimary: true},
			{ID: 2, ProjectID: 1, Keyword: "dementia support"},
		}, nil)
		var copied []*domain.Keyword
		m.keywords.On("Create", mock.Anything, mock.AnythingOfType("*domain.Keyword")).
			Return(nil).
			Run(func(args mock.Arguments) { copied = append(copied, args.Get(1).(*domain.Keyword)) })

		dup, err := svc.Duplicate(context.Background(), 1, "  Memory care guide (Austin) ", "local angle")

		require.NoError(t, err)
		assert.Equal(t, int64(2), dup.ID)
		assert.Equal(t, "Memory care guide (Austin)", dup.Name)
		assert.True(t, dup.IsDuplicate)
		assert.False(t, dup.IsBase)
		require.NotNil(t, dup.OriginalProjectID)
		assert.Equal(t, int64(1), *dup.OriginalProjectID)
		assert.Equal(t, "local angle", dup.ChangesNote)

		require.Len(t, copied, 2)
		for _, k := range copied {
			assert.Equal(t, int64(2), k.ProjectID)
			assert.Zero(t, k.ID)
		}
		assert.True(t, copied[0].IsPrimary)
		assert.Equal(t, &volume, copied[0].SearchVolume)
		m.assertExpectations(t)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("rolls back when a keyword copy fails", func(t *testing.T) {
		svc, m, sqlMock := newProjectServiceForTest(t)
		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		m.projects.On("GetByID", mock.Anything, int64(1)).Return(sampleProject(), nil)
		m.projects.On("Create", mock.Anything, mock.Anything).Return(nil)
		m.keywords.On("ListByProject", mock.Anything, int64(1)).Return(sampleKeywords(), nil)
		m.keywords.On("Create", mock.Anything, mock.Anything).Return(store.ErrKeywordExists).Once()

		_, err := svc.Duplicate(context.Background(), 1, "Copy", "")

		assert.ErrorIs(t, err, store.ErrDuplicate)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("requires a name", func(t *testing.T) {
		svc, _, sqlMock := newProjectServiceForTest(t)

		_, err := svc.Duplicate(context.Background(), 1, "   ", "")

		assert.ErrorIs(t, err, domain.ErrEmptyProjectName)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("missing original", func(t *testing.T) {
		svc, m, sqlMock := newProjectServiceForTest(t)
		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()
		m.projects.On("GetByID", mock.Anything, int64(7)).Return(nil, store.ErrProjectNotFound)

		_, err := svc.Duplicate(context.Background(), 7, "Copy", "")

		assert.ErrorIs(t, err, store.ErrProjectNotFound)
	})
}
