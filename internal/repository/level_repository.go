package repository

import (
	"errors"
	"fmt"
	"orgchart_go/internal/model"

	"gorm.io/gorm"
)

var (
	// ErrLevelOrderConflict 表示批量重排序的输入没有覆盖全部职级或包含重复项。
	ErrLevelOrderConflict = errors.New("job title level reorder input is inconsistent")
)

// JobTitleLevelRepository 定义职级数据的持久化操作接口。
// SortOrder 全表唯一；批量重排序必须在事务内完成，中间状态不可见。
type JobTitleLevelRepository interface {
	// GetOrCreateByName 按名称取回或创建职级；新建职级排在当前最大序号之后。
	GetOrCreateByName(name string) (*model.JobTitleLevel, bool, error)
	FindAll() ([]model.JobTitleLevel, error)
	// Reorder 按给定的 ID 顺序重排全部职级。
	// 两段式更新：先把序号整体平移到不会冲突的区间，再按新顺序写入 1..n，
	// 保证任意中间时刻 sort_order 的唯一约束都不被违反。
	Reorder(orderedIDs []uint) error
}

// jobTitleLevelRepository 是 JobTitleLevelRepository 接口的 GORM 实现。
type jobTitleLevelRepository struct {
	db *gorm.DB
}

func NewJobTitleLevelRepository(db *gorm.DB) JobTitleLevelRepository {
	return &jobTitleLevelRepository{db: db}
}

func (r *jobTitleLevelRepository) GetOrCreateByName(name string) (*model.JobTitleLevel, bool, error) {
	if name == "" {
		return nil, false, fmt.Errorf("level name is required")
	}

	created := false
	var level model.JobTitleLevel

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("name = ?", name).First(&level).Error; err == nil {
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// 新职级追加到末尾：取当前最大序号 +1。
		var maxOrder int
		if err := tx.Model(&model.JobTitleLevel{}).
			Select("COALESCE(MAX(sort_order), 0)").Scan(&maxOrder).Error; err != nil {
			return err
		}

		level = model.JobTitleLevel{Name: name, SortOrder: maxOrder + 1}
		if err := tx.Create(&level).Error; err != nil {
			// 并发批次可能刚插入同名职级，冲突时回查。
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return tx.Where("name = ?", name).First(&level).Error
			}
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &level, created, nil
}

func (r *jobTitleLevelRepository) FindAll() ([]model.JobTitleLevel, error) {
	var levels []model.JobTitleLevel
	if err := r.db.Order("sort_order ASC").Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// Reorder 重排全部职级的 SortOrder。
// 输入必须恰好覆盖现有全部职级 ID（不多不少、无重复），否则返回 ErrLevelOrderConflict。
func (r *jobTitleLevelRepository) Reorder(orderedIDs []uint) error {
	if len(orderedIDs) == 0 {
		return ErrLevelOrderConflict
	}

	seen := make(map[uint]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, ok := seen[id]; ok {
			return ErrLevelOrderConflict
		}
		seen[id] = struct{}{}
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var total int64
		if err := tx.Model(&model.JobTitleLevel{}).Count(&total).Error; err != nil {
			return err
		}
		if total != int64(len(orderedIDs)) {
			return ErrLevelOrderConflict
		}

		// 第一段：整体平移到负数区间，腾出 1..n。
		if err := tx.Model(&model.JobTitleLevel{}).
			Where("1 = 1").
			Update("sort_order", gorm.Expr("-sort_order")).Error; err != nil {
			return err
		}

		// 第二段：按新顺序写入 1..n。
		for i, id := range orderedIDs {
			res := tx.Model(&model.JobTitleLevel{}).
				Where("id = ?", id).
				Update("sort_order", i+1)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrLevelOrderConflict
			}
		}
		return nil
	})
}
