package db

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/trackhub/backend/internal/models"
)

// EnsureUser upserts a user by id, granting the default credit balance on
// first sight. Called from the auth middleware, so it must be idempotent.
func EnsureUser(ctx context.Context, client *Neo4jClient, user *models.User) error {
	_, err := client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MERGE (u:User {id: $id})
			ON CREATE SET u.credits = $defaultCredits, u.createdAt = $now
			SET u.email = $email,
			    u.firstName = $firstName,
			    u.lastName = $lastName,
			    u.imageUrl = $imageUrl
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"id":             user.ID,
			"email":          user.Email,
			"firstName":      user.FirstName,
			"lastName":       user.LastName,
			"imageUrl":       user.ImageURL,
			"defaultCredits": models.DefaultCredits,
			"now":            time.Now().UTC(),
		})
		return nil, err
	})
	return err
}

// GetUser returns the user or nil when no such user exists.
func GetUser(ctx context.Context, client *Neo4jClient, id string) (*models.User, error) {
	result, err := client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (u:User {id: $id})
			RETURN u.id AS id, u.email AS email, u.firstName AS firstName,
			       u.lastName AS lastName, u.imageUrl AS imageUrl,
			       u.credits AS credits, u.createdAt AS createdAt
		`
		records, err := tx.Run(ctx, query, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if records.Next(ctx) {
			return recordToUser(records.Record()), nil
		}
		return nil, records.Err()
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	return result.(*models.User), nil
}

// AddCredits increments a user's balance and records the purchase. The
// transaction node is keyed by the caller-supplied id (the checkout session),
// and the balance only moves when that node is first created, so webhook
// redeliveries credit exactly once.
func AddCredits(ctx context.Context, client *Neo4jClient, userID string, credits int, txID string) error {
	_, err := client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (u:User {id: $userId})
			MERGE (t:CreditTransaction {id: $txId})
			ON CREATE SET t.userId = $userId,
			              t.credits = $credits,
			              t.createdAt = $now,
			              u.credits = u.credits + $credits
			MERGE (u)-[:PURCHASED]->(t)
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"userId":  userID,
			"credits": credits,
			"txId":    txID,
			"now":     time.Now().UTC(),
		})
		return nil, err
	})
	return err
}

// ListTransactions returns the user's purchase history, newest first.
func ListTransactions(ctx context.Context, client *Neo4jClient, userID string) ([]*models.CreditTransaction, error) {
	result, err := client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (u:User {id: $userId})-[:PURCHASED]->(t:CreditTransaction)
			RETURN t.id AS id, t.userId AS userId, t.credits AS credits,
			       t.createdAt AS createdAt
			ORDER BY t.createdAt DESC
		`
		records, err := tx.Run(ctx, query, map[string]any{"userId": userID})
		if err != nil {
			return nil, err
		}

		var txs []*models.CreditTransaction
		for records.Next(ctx) {
			rec := records.Record()
			t := &models.CreditTransaction{}
			if v, ok := rec.Get("id"); ok && v != nil {
				t.ID = v.(string)
			}
			if v, ok := rec.Get("userId"); ok && v != nil {
				t.UserID = v.(string)
			}
			if v, ok := rec.Get("credits"); ok && v != nil {
				t.Credits = int(v.(int64))
			}
			if v, ok := rec.Get("createdAt"); ok && v != nil {
				if ts, ok := v.(time.Time); ok {
					t.CreatedAt = ts
				}
			}
			txs = append(txs, t)
		}
		return txs, records.Err()
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return []*models.CreditTransaction{}, nil
	}
	return result.([]*models.CreditTransaction), nil
}

func recordToUser(record *neo4j.Record) *models.User {
	user := &models.User{}

	if v, ok := record.Get("id"); ok && v != nil {
		user.ID = v.(string)
	}
	if v, ok := record.Get("email"); ok && v != nil {
		user.Email = v.(string)
	}
	if v, ok := record.Get("firstName"); ok && v != nil {
		user.FirstName = v.(string)
	}
	if v, ok := record.Get("lastName"); ok && v != nil {
		user.LastName = v.(string)
	}
	if v, ok := record.Get("imageUrl"); ok && v != nil {
		user.ImageURL = v.(string)
	}
	if v, ok := record.Get("credits"); ok && v != nil {
		user.Credits = int(v.(int64))
	}
	if v, ok := record.Get("createdAt"); ok && v != nil {
		if t, ok := v.(time.Time); ok {
			user.CreatedAt = t
		}
	}

	return user
}
