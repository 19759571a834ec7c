package migrate

import (
	"userpost-service/internal/post"
	"userpost-service/internal/shared/db"
	"userpost-service/internal/user"
)

// AutoMigrateAll creates the users and posts tables (and the posts.user_id
// foreign key) if they are missing. Existing tables are left intact.
func AutoMigrateAll(store *db.Store) error {
	return store.Base.AutoMigrate(
		&user.User{},
		&post.Post{},
	)
}
