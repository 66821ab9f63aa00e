package repositories

import (
	"github.com/anonto42/socialape/backend/internal/store"
	"go.mongodb.org/mongo-driver/bson"
)

// Collections, one per entity.
const (
	UsersCollection         = "users"
	PostsCollection         = "posts"
	CommentsCollection      = "comments"
	LikesCollection         = "likes"
	NotificationsCollection = "notifications"
)

// MongoIndexes are the secondary indexes the queries of this package need
// when the store is MongoDB. The likes index also rejects a second like by
// the same user on the same post.
func MongoIndexes() []store.MongoIndex {
	return []store.MongoIndex{
		{Collection: UsersCollection, Keys: bson.D{{Key: "userId", Value: 1}}, Unique: true},
		{Collection: PostsCollection, Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Collection: PostsCollection, Keys: bson.D{{Key: "userHandle", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Collection: CommentsCollection, Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Collection: LikesCollection, Keys: bson.D{{Key: "postId", Value: 1}, {Key: "userHandle", Value: 1}}, Unique: true},
		{Collection: LikesCollection, Keys: bson.D{{Key: "userHandle", Value: 1}}},
		{Collection: NotificationsCollection, Keys: bson.D{{Key: "postId", Value: 1}}},
		{Collection: NotificationsCollection, Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
}
