package service

import (
	"context"
	"errors"
	"testing"

	"orgchart_go/internal/model"
	"orgchart_go/internal/recon"

	"gorm.io/gorm"
)

type fakeAliasRepo struct {
	createFn  func(alias *model.ManagerAlias) error
	findAllFn func() ([]model.ManagerAlias, error)
	deleteFn  func(aliasID uint) error
}

func (f *fakeAliasRepo) Create(alias *model.ManagerAlias) error {
	if f.createFn != nil {
		return f.createFn(alias)
	}
	return nil
}
func (f *fakeAliasRepo) FindAll() ([]model.ManagerAlias, error) {
	if f.findAllFn != nil {
		return f.findAllFn()
	}
	return nil, nil
}
func (f *fakeAliasRepo) Delete(aliasID uint) error {
	if f.deleteFn != nil {
		return f.deleteFn(aliasID)
	}
	return nil
}

func newTestRunner() *recon.Runner {
	return recon.NewRunner(
		&fakeEmployeeRepo{},
		&fakePositionRepo{},
		&fakeDimensionRepo{},
		&fakeLevelRepo{},
		&fakeAssignmentRepo{},
		&fakeAliasRepo{},
		nil,
	)
}

func TestReconService_RunBatch_StoresLatestReport(t *testing.T) {
	svc := NewReconService(newTestRunner(), &fakeAliasRepo{}, &fakeEmployeeRepo{})

	if _, err := svc.LatestReport(); !errors.Is(err, ErrNoReport) {
		t.Fatalf("expect ErrNoReport before first run, got %v", err)
	}

	report, err := svc.RunBatch(context.Background(), &recon.Batch{})
	if err != nil {
		t.Fatalf("RunBatch() error: %v", err)
	}
	if report == nil || report.RunID == "" {
		t.Fatalf("unexpected report: %+v", report)
	}

	latest, err := svc.LatestReport()
	if err != nil {
		t.Fatalf("LatestReport() error: %v", err)
	}
	if latest.RunID != report.RunID {
		t.Fatalf("latest report = %s, want %s", latest.RunID, report.RunID)
	}
}

func TestReconService_RunBatch_NilBatch(t *testing.T) {
	svc := NewReconService(newTestRunner(), &fakeAliasRepo{}, &fakeEmployeeRepo{})

	_, err := svc.RunBatch(context.Background(), nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expect ErrInvalidInput, got %v", err)
	}
}

func TestReconService_CreateAlias(t *testing.T) {
	var created *model.ManagerAlias
	svc := NewReconService(newTestRunner(), &fakeAliasRepo{
		createFn: func(alias *model.ManagerAlias) error {
			alias.ID = 1
			created = alias
			return nil
		},
	}, &fakeEmployeeRepo{})

	alias, err := svc.CreateAlias("  Mehmet  Demir ", "E2")
	if err != nil {
		t.Fatalf("CreateAlias() error: %v", err)
	}
	// 入库前规范化
	if created.Alias != "Mehmet Demir" || created.EmployeeCode != "E2" {
		t.Fatalf("unexpected stored alias: %+v", created)
	}
	if alias.ID != 1 {
		t.Fatalf("unexpected returned alias: %+v", alias)
	}
}

func TestReconService_CreateAlias_Duplicate(t *testing.T) {
	svc := NewReconService(newTestRunner(), &fakeAliasRepo{
		createFn: func(alias *model.ManagerAlias) error {
			return gorm.ErrDuplicatedKey
		},
	}, &fakeEmployeeRepo{})

	_, err := svc.CreateAlias("Mehmet Demir", "E2")
	if !errors.Is(err, ErrAliasAlreadyExists) {
		t.Fatalf("expect ErrAliasAlreadyExists, got %v", err)
	}
}

func TestReconService_CreateAlias_InvalidInput(t *testing.T) {
	svc := NewReconService(newTestRunner(), &fakeAliasRepo{}, &fakeEmployeeRepo{})

	if _, err := svc.CreateAlias("", "E2"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expect ErrInvalidInput for empty alias, got %v", err)
	}
	if _, err := svc.CreateAlias("Mehmet Demir", "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expect ErrInvalidInput for empty code, got %v", err)
	}
}

func TestReconService_DeleteAlias(t *testing.T) {
	svc := NewReconService(newTestRunner(), &fakeAliasRepo{
		deleteFn: func(aliasID uint) error {
			if aliasID != 7 {
				return gorm.ErrRecordNotFound
			}
			return nil
		},
	}, &fakeEmployeeRepo{})

	if err := svc.DeleteAlias(7); err != nil {
		t.Fatalf("DeleteAlias() error: %v", err)
	}
	if err := svc.DeleteAlias(8); !errors.Is(err, ErrAliasNotFound) {
		t.Fatalf("expect ErrAliasNotFound, got %v", err)
	}
	if err := svc.DeleteAlias(0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expect ErrInvalidInput for zero id, got %v", err)
	}
}

func TestReconService_ResetEmployees(t *testing.T) {
	called := false
	svc := NewReconService(newTestRunner(), &fakeAliasRepo{}, &fakeEmployeeRepo{
		deleteFn: func() error {
			called = true
			return nil
		},
	})

	if err := svc.ResetEmployees(); err != nil {
		t.Fatalf("ResetEmployees() error: %v", err)
	}
	if !called {
		t.Fatal("reset must delegate to the repository")
	}
}
