// file: repository/token_repository.go

package repository

import (
	"database/sql"
	"go-auth-api/logger"
	"go-auth-api/model"

	"github.com/sirupsen/logrus"
)

// ITokenRepository defines the contract for refresh token database operations.
type ITokenRepository interface {
	Upsert(token *model.RefreshToken) error
	GetByToken(token string) (*model.RefreshToken, error)
	DeleteByToken(token string) (bool, error)
}

// TokenRepository implements ITokenRepository.
type TokenRepository struct {
	DB *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

// Upsert inserts the refresh token row for a user, replacing the existing
// one in place. The ON CONFLICT clause makes the replace atomic, so two
// concurrent logins for the same user end with exactly one of the two
// tokens on file. A violation of the token uniqueness constraint is
// reported as ErrDuplicateToken.
func (r *TokenRepository) Upsert(token *model.RefreshToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    token.UserID,
		"expires_at": token.ExpiresAt,
	})
	log.Info("Executing query to upsert refresh token")

	query := `INSERT INTO refresh_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at, created_at = now()
		RETURNING id, created_at`
	err := r.DB.QueryRow(query, token.UserID, token.Token, token.ExpiresAt).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			log.WithError(err).Warn("Refresh token value collided with an existing row")
			return ErrDuplicateToken
		}
		log.WithError(err).Error("Failed to execute upsert refresh token query")
		return err
	}
	return nil
}

// GetByToken retrieves a refresh token row by its exact token value.
// Expired rows are returned as-is; expiry is the caller's concern.
func (r *TokenRepository) GetByToken(token string) (*model.RefreshToken, error) {
	row := &model.RefreshToken{}
	query := `SELECT id, user_id, token, expires_at, created_at FROM refresh_tokens WHERE token = $1`
	err := r.DB.QueryRow(query, token).Scan(&row.ID, &row.UserID, &row.Token, &row.ExpiresAt, &row.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).Error("Failed to execute get refresh token query")
		}
		return nil, err // Return sql.ErrNoRows if not found
	}
	return row, nil
}

// DeleteByToken removes the row matching the token value and reports
// whether a row was actually deleted.
func (r *TokenRepository) DeleteByToken(token string) (bool, error) {
	query := `DELETE FROM refresh_tokens WHERE token = $1`
	result, err := r.DB.Exec(query, token)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute delete refresh token query")
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
