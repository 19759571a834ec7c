package post

import (
	"time"

	"userpost-service/internal/shared/apperr"
	"userpost-service/internal/user"
)

var ErrNotFound = apperr.NotFound("Post not found")

// Post references its author by id only. Author is there so the schema
// carries the foreign key; it is never loaded or saved through a Post.
type Post struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	Content     string     `gorm:"type:text;not null"`
	UserID      int64      `gorm:"not null;index"`
	Author      *user.User `gorm:"foreignKey:UserID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"-"`
	CreatedTime time.Time  `gorm:"column:created_time;not null;default:CURRENT_TIMESTAMP"`
}

type CreateReq struct {
	UserID  *int64  `json:"user_id" validate:"required"`
	Content *string `json:"content" validate:"required"`
}

type Response struct {
	PostID      int64     `json:"post_id"`
	Content     string    `json:"content"`
	UserID      int64     `json:"user_id"`
	CreatedTime time.Time `json:"created_time"`
}

func ToResponse(p *Post) Response {
	return Response{PostID: p.ID, Content: p.Content, UserID: p.UserID, CreatedTime: p.CreatedTime}
}
