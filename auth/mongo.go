package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raushankrgupta/marketchoice-admin/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// MongoAuthenticator checks operators against a users collection holding
// bcrypt password hashes.
type MongoAuthenticator struct {
	users *mongo.Collection
}

func NewMongoAuthenticator(users *mongo.Collection) *MongoAuthenticator {
	return &MongoAuthenticator{users: users}
}

func (a *MongoAuthenticator) Authenticate(ctx context.Context, username, password string) (*Principal, error) {
	email, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var user models.User
	err = a.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status == models.UserStatusDisabled {
		return nil, ErrUserDisabled
	}
	return &Principal{UserID: user.ID.Hex(), Email: user.Email, Name: user.Name}, nil
}

// CreateUser inserts an active operator with a bcrypt-hashed password.
func (a *MongoAuthenticator) CreateUser(ctx context.Context, name, username, password string) (*models.User, error) {
	email, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &models.User{
		Name:      name,
		Email:     email,
		Password:  string(hash),
		Status:    models.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := a.users.InsertOne(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return user, nil
}
