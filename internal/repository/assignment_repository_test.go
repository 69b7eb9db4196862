package repository

import (
	"errors"
	"testing"
	"time"

	"orgchart_go/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/gorm"
)

func newMockAssignmentRepo(t *testing.T) (AssignmentRepository, sqlmock.Sqlmock) {
	t.Helper()
	gdb, mock := newMockDB(t)
	return NewAssignmentRepository(gdb), mock
}

func assignmentRows() *sqlmock.Rows {
	now := time.Now()
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "position_id", "employee_id", "assignment_type", "start_date", "end_date",
		"created_at", "updated_at",
	}).AddRow(1, 10, 20, model.AssignmentTypePermanent, start, nil, now, now)
}

func TestAssignmentRepository_Create(t *testing.T) {
	repo, mock := newMockAssignmentRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `position_assignments`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	a := &model.PositionAssignment{
		PositionID:     10,
		EmployeeID:     20,
		AssignmentType: model.AssignmentTypePermanent,
		StartDate:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.Create(a); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAssignmentRepository_Create_MissingRefs(t *testing.T) {
	repo, _ := newMockAssignmentRepo(t)

	if err := repo.Create(&model.PositionAssignment{PositionID: 10}); err == nil {
		t.Fatal("expected error for missing employee, got nil")
	}
	if err := repo.Create(nil); err == nil {
		t.Fatal("expected error for nil assignment, got nil")
	}
}

func TestAssignmentRepository_FindExisting(t *testing.T) {
	repo, mock := newMockAssignmentRepo(t)

	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT .* FROM `position_assignments` WHERE position_id = \\? AND employee_id = \\? AND start_date = \\? ORDER BY .* LIMIT \\?").
		WithArgs(uint(10), uint(20), start, 1).
		WillReturnRows(assignmentRows())

	a, err := repo.FindExisting(10, 20, start)
	if err != nil {
		t.Fatalf("FindExisting() error: %v", err)
	}
	if a.ID != 1 {
		t.Fatalf("unexpected assignment: %+v", a)
	}
}

func TestAssignmentRepository_FindExisting_NotFound(t *testing.T) {
	repo, mock := newMockAssignmentRepo(t)

	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT .* FROM `position_assignments`").
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := repo.FindExisting(10, 20, start)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestAssignmentRepository_FindActiveByPosition(t *testing.T) {
	repo, mock := newMockAssignmentRepo(t)

	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT .* FROM `position_assignments` WHERE position_id = \\? AND start_date <= \\? AND \\(end_date IS NULL OR end_date >= \\?\\)").
		WithArgs(uint(10), at, at).
		WillReturnRows(assignmentRows())

	assignments, err := repo.FindActiveByPosition(10, at)
	if err != nil {
		t.Fatalf("FindActiveByPosition() error: %v", err)
	}
	if len(assignments) != 1 || assignments[0].EmployeeID != 20 {
		t.Fatalf("unexpected assignments: %+v", assignments)
	}
}

func TestAssignmentRepository_FindLatestEndedByPosition(t *testing.T) {
	repo, mock := newMockAssignmentRepo(t)

	now := time.Now()
	ended := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT .* FROM `position_assignments` WHERE position_id = \\? AND end_date IS NOT NULL ORDER BY end_date DESC").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "position_id", "employee_id", "assignment_type", "start_date", "end_date",
			"created_at", "updated_at",
		}).AddRow(2, 10, 21, model.AssignmentTypeActing, ended.AddDate(0, -2, 0), ended, now, now))

	a, err := repo.FindLatestEndedByPosition(10)
	if err != nil {
		t.Fatalf("FindLatestEndedByPosition() error: %v", err)
	}
	if a.ID != 2 || a.EndDate == nil {
		t.Fatalf("unexpected assignment: %+v", a)
	}
}

func TestAssignmentRepository_EndAssignment(t *testing.T) {
	repo, mock := newMockAssignmentRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `position_assignments` SET `end_date`=.* WHERE id = \\? AND end_date IS NULL").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.EndAssignment(1, time.Now()); err != nil {
		t.Fatalf("EndAssignment() error: %v", err)
	}
}

func TestAssignmentRepository_EndAssignment_AlreadyEnded(t *testing.T) {
	repo, mock := newMockAssignmentRepo(t)

	// end_date 已非 NULL 时 WHERE 不命中，视为记录不存在
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `position_assignments` SET `end_date`=.* WHERE id = \\? AND end_date IS NULL").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.EndAssignment(1, time.Now())
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
