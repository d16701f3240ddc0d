package configstore

import (
	"context"
	"database/sql"

	"github.com/relaymesh/gasless-lib/configstore/models"
)

// GetTokens returns the active tokens configured for a chain.
func (s *Store) GetTokens(ctx context.Context, chainID uint64) ([]models.Token, error) {
	if chainID == 0 {
		return nil, ErrInvalidChainID
	}

	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return nil, ErrDatabaseConnect
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
      SELECT
          id,
          chain_id,
          symbol,
          address,
          decimals,
          active,
          created_at,
          updated_at
      FROM tokens
      WHERE chain_id = $1 AND active = true
      ORDER BY symbol ASC
    `, chainID)
	if err != nil {
		return nil, ErrDatabaseConnect
	}
	defer rows.Close()

	var tokens []models.Token
	for rows.Next() {
		var token models.Token
		var address sql.NullString

		err := rows.Scan(
			&token.ID,
			&token.ChainID,
			&token.Symbol,
			&address,
			&token.Decimals,
			&token.Active,
			&token.CreatedAt,
			&token.UpdatedAt,
		)
		if err != nil {
			return nil, ErrDatabaseConnect
		}

		if address.Valid {
			token.Address = address.String
		}

		tokens = append(tokens, token)
	}

	if err = rows.Err(); err != nil {
		return nil, ErrDatabaseConnect
	}

	return tokens, nil
}
