package user

import (
	"errors"

	"gorm.io/gorm"
)

// Repository methods run on the session handed in by the caller, so a
// service can compose several of them inside one transaction.
type Repository interface {
	Create(tx *gorm.DB, u *User) error
	FindByID(tx *gorm.DB, id int64) (*User, error)
}

type repo struct{}

func NewRepository() Repository { return &repo{} }

func (r *repo) Create(tx *gorm.DB, u *User) error {
	if err := tx.Create(u).Error; err != nil {
		return err
	}
	// created_time is filled by the database
	return tx.First(u, u.ID).Error
}

func (r *repo) FindByID(tx *gorm.DB, id int64) (*User, error) {
	var u User
	if err := tx.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
