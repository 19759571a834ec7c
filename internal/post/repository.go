package post

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(tx *gorm.DB, p *Post) error
	FindByID(tx *gorm.DB, id int64) (*Post, error)
}

type repo struct{}

func NewRepository() Repository { return &repo{} }

func (r *repo) Create(tx *gorm.DB, p *Post) error {
	if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
		return err
	}
	return tx.First(p, p.ID).Error
}

func (r *repo) FindByID(tx *gorm.DB, id int64) (*Post, error) {
	var p Post
	if err := tx.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
