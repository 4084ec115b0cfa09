package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/pribylovaa/user-api/internal/models"
	"github.com/pribylovaa/user-api/internal/storage"
)

type tokenDoc struct {
	Key       string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d tokenDoc) toModel() (*models.Token, error) {
	uid, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("bad token owner %q: %w", d.UserID, err)
	}

	return &models.Token{Key: d.Key, UserID: uid, CreatedAt: d.CreatedAt.UTC()}, nil
}

// GetOrCreateToken возвращает токен пользователя или вставляет новый.
// Гонку двух вставок для одного user_id разрешает уникальный индекс:
// проигравший перечитывает документ победителя.
func (m *Mongo) GetOrCreateToken(ctx context.Context, token *models.Token) (*models.Token, error) {
	const op = "storage.mongo.GetOrCreateToken"

	existing, err := m.tokenByUser(ctx, token.UserID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	doc := tokenDoc{Key: token.Key, UserID: token.UserID.String(), CreatedAt: token.CreatedAt.UTC()}
	if _, err := m.tokens.InsertOne(ctx, doc); err != nil {
		if !mongodriver.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		// Дубликат: либо токен пользователя уже вставлен конкурентно, либо коллизия ключа.
		existing, rerr := m.tokenByUser(ctx, token.UserID)
		if rerr == nil {
			return existing, nil
		}

		return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	}

	return doc.toModel()
}

// UserByToken находит владельца токена.
func (m *Mongo) UserByToken(ctx context.Context, key string) (*models.User, error) {
	const op = "storage.mongo.UserByToken"

	var doc tokenDoc
	if err := m.tokens.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := m.findUser(ctx, bson.M{"_id": doc.UserID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (m *Mongo) tokenByUser(ctx context.Context, userID uuid.UUID) (*models.Token, error) {
	var doc tokenDoc
	if err := m.tokens.FindOne(ctx, bson.M{"user_id": userID.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}

		return nil, err
	}

	return doc.toModel()
}
