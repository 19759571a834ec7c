package user

import (
	"time"

	"userpost-service/internal/shared/apperr"
)

var ErrNotFound = apperr.NotFound("User not found")

type User struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"not null"`
	CreatedTime time.Time `gorm:"column:created_time;not null;default:CURRENT_TIMESTAMP"`
}

type CreateReq struct {
	Name *string `json:"name" validate:"required,min=1"`
}

type Response struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	CreatedTime time.Time `json:"created_time"`
}

func ToResponse(u *User) Response {
	return Response{ID: u.ID, Name: u.Name, CreatedTime: u.CreatedTime}
}
