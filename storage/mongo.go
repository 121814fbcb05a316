package storage

import (
	"commonroom/storage/models"
	"context"
	"errors"
	"fmt"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection = "users"
	postsCollection = "posts"
)

type MongoManager struct {
	dbConnection *mongo.Database
}

func NewMongoManager(ctx context.Context, uri, database string) (*MongoManager, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	m := &MongoManager{dbConnection: client.Database(database)}
	if err = m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return m, nil
}

func (m *MongoManager) ensureIndexes(ctx context.Context) error {
	_, err := m.dbConnection.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{"username", 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Errorf("Error creating users index: %v", err)
		return fmt.Errorf("create users index: %w", err)
	}

	_, err = m.dbConnection.Collection(postsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{"userInfo.userId", 1}}},
		{Keys: bson.D{{"userInfo.username", 1}}},
		{Keys: bson.D{{"createdAt", -1}}},
	})
	if err != nil {
		log.Errorf("Error creating posts indexes: %v", err)
		return fmt.Errorf("create posts indexes: %w", err)
	}
	return nil
}

func (m *MongoManager) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return m.findUser(ctx, bson.D{{"_id", id}})
}

func (m *MongoManager) FindUserByHandle(ctx context.Context, handle string) (*models.User, error) {
	return m.findUser(ctx, bson.D{{"username", handle}})
}

func (m *MongoManager) findUser(ctx context.Context, filter bson.D) (*models.User, error) {
	var user models.User
	err := m.dbConnection.Collection(usersCollection).FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Errorf("Error finding user: %v", err)
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (m *MongoManager) FindUsers(ctx context.Context, query UserQuery) ([]*models.User, error) {
	cursor, err := m.dbConnection.Collection(usersCollection).Find(ctx, userFilter(query), findOptions(query.Order))
	if err != nil {
		log.Errorf("Error finding users: %v", err)
		return nil, fmt.Errorf("find users: %w", err)
	}

	users := make([]*models.User, 0)
	if err = cursor.All(ctx, &users); err != nil {
		log.Errorf("Error decoding users: %v", err)
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (m *MongoManager) SaveUser(ctx context.Context, user *models.User) error {
	_, err := m.dbConnection.Collection(usersCollection).ReplaceOne(
		ctx,
		bson.D{{"_id", user.ID}},
		user,
		options.Replace().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("save user %s: %w", user.Username, ErrDuplicate)
	}
	if err != nil {
		log.Errorf("Error saving user '%s': %v", user.ID, err)
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (m *MongoManager) DeleteUser(ctx context.Context, id string) error {
	result, err := m.dbConnection.Collection(usersCollection).DeleteOne(ctx, bson.D{{"_id", id}})
	if err != nil {
		log.Errorf("Error deleting user: %v", err)
		return fmt.Errorf("delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoManager) FindPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := m.dbConnection.Collection(postsCollection).FindOne(ctx, bson.D{{"_id", id}}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Errorf("Error finding post: %v", err)
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &post, nil
}

func (m *MongoManager) FindPosts(ctx context.Context, query PostQuery) ([]*models.Post, error) {
	cursor, err := m.dbConnection.Collection(postsCollection).Find(ctx, postFilter(query), findOptions(query.Order))
	if err != nil {
		log.Errorf("Error finding posts: %v", err)
		return nil, fmt.Errorf("find posts: %w", err)
	}

	posts := make([]*models.Post, 0)
	if err = cursor.All(ctx, &posts); err != nil {
		log.Errorf("Error decoding posts: %v", err)
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

func (m *MongoManager) SavePost(ctx context.Context, post *models.Post) error {
	_, err := m.dbConnection.Collection(postsCollection).ReplaceOne(
		ctx,
		bson.D{{"_id", post.ID}},
		post,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		log.Errorf("Error saving post '%s': %v", post.ID, err)
		return fmt.Errorf("save post: %w", err)
	}
	return nil
}

func (m *MongoManager) DeletePost(ctx context.Context, id string) error {
	result, err := m.dbConnection.Collection(postsCollection).DeleteOne(ctx, bson.D{{"_id", id}})
	if err != nil {
		log.Errorf("Error deleting post: %v", err)
		return fmt.Errorf("delete post: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoManager) DeletePosts(ctx context.Context, query PostQuery) (int64, error) {
	result, err := m.dbConnection.Collection(postsCollection).DeleteMany(ctx, postFilter(query))
	if err != nil {
		log.Errorf("Error deleting posts: %v", err)
		return 0, fmt.Errorf("delete posts: %w", err)
	}
	return result.DeletedCount, nil
}

func (m *MongoManager) Close(ctx context.Context) error {
	return m.dbConnection.Client().Disconnect(ctx)
}

func findOptions(order Order) *options.FindOptions {
	opts := options.Find()
	if order == NewestFirst {
		opts.SetSort(bson.D{{"createdAt", -1}})
	}
	return opts
}

func userFilter(query UserQuery) bson.D {
	if query.EdgeHandle == "" {
		return bson.D{}
	}
	return bson.D{
		{
			"$or", bson.A{
				bson.D{{"following.username", query.EdgeHandle}},
				bson.D{{"followers.username", query.EdgeHandle}},
			},
		},
	}
}

func postFilter(query PostQuery) bson.D {
	filter := bson.D{}
	if query.AuthorID != "" {
		filter = append(filter, bson.E{Key: "userInfo.userId", Value: query.AuthorID})
	}
	if len(query.AuthorHandles) > 0 {
		filter = append(filter, bson.E{Key: "userInfo.username", Value: bson.D{{"$in", query.AuthorHandles}}})
	}
	if query.LikedBy != "" {
		filter = append(filter, bson.E{Key: "likes", Value: query.LikedBy})
	}
	if query.Participant != "" {
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{"likes", query.Participant}},
			bson.D{{"dislikes", query.Participant}},
			bson.D{{"comments.userInfo.username", query.Participant}},
		}})
	}
	return filter
}
