package repository

import (
	"context"
	"fmt"

	"comments-go/internal/model"

	"gorm.io/gorm"
)

// 允许排序的字段，防止拼接任意列名
var rootSortFields = map[string]bool{
	"user_name":  true,
	"email":      true,
	"created_at": true,
}

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.WithContext(ctx).First(&comment, id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetByIDs 批量获取评论（顺序不保证）
func (r *CommentRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Comment, error) {
	if len(ids) == 0 {
		return []model.Comment{}, nil
	}
	var comments []model.Comment
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&comments).Error
	return comments, err
}

// FindByParentIDs 一次查询取出 parent_id 属于给定集合的全部子评论
func (r *CommentRepository) FindByParentIDs(ctx context.Context, parentIDs []int64) ([]model.Comment, error) {
	if len(parentIDs) == 0 {
		return []model.Comment{}, nil
	}
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Where("parent_id IN ?", parentIDs).
		Order("id ASC").
		Find(&comments).Error
	return comments, err
}

// PaginateRoots 顶级评论分页
func (r *CommentRepository) PaginateRoots(ctx context.Context, sort, dir string, pageSize, page int) (*model.Page[model.Comment], error) {
	if !rootSortFields[sort] {
		sort = "created_at"
	}
	if dir != "asc" {
		dir = "desc"
	}
	if page < 1 {
		page = 1
	}

	var total int64
	if err := r.rootsQuery(ctx).Count(&total).Error; err != nil {
		return nil, err
	}

	var comments []model.Comment
	err := r.rootsQuery(ctx).
		Order(fmt.Sprintf("%s %s", sort, dir)).
		Order(fmt.Sprintf("id %s", dir)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	return model.NewPage(comments, page, pageSize, total), nil
}

// CountRoots 顶级评论总数
func (r *CommentRepository) CountRoots(ctx context.Context) (int64, error) {
	var total int64
	err := r.rootsQuery(ctx).Count(&total).Error
	return total, err
}

func (r *CommentRepository) rootsQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Comment{}).Where("parent_id IS NULL")
}

// CountRange 统计 id 区间内的评论数，toID <= 0 表示不设上限
func (r *CommentRepository) CountRange(ctx context.Context, fromID, toID int64) (int64, error) {
	var total int64
	err := r.rangeQuery(ctx, fromID, toID).Count(&total).Error
	return total, err
}

// ChunkByID 按 id 升序分批遍历评论
func (r *CommentRepository) ChunkByID(ctx context.Context, fromID, toID int64, size int, fn func([]model.Comment) error) error {
	lastID := fromID - 1
	for {
		var batch []model.Comment
		err := r.rangeQuery(ctx, lastID+1, toID).
			Order("id ASC").
			Limit(size).
			Find(&batch).Error
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		lastID = batch[len(batch)-1].ID
		if len(batch) < size {
			return nil
		}
	}
}

func (r *CommentRepository) rangeQuery(ctx context.Context, fromID, toID int64) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Comment{}).Where("id >= ?", fromID)
	if toID > 0 {
		q = q.Where("id <= ?", toID)
	}
	return q
}
