package configstore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/relaymesh/gasless-lib/common/types"
	"github.com/relaymesh/gasless-lib/configstore/models"
)

// GetChains returns all chains from the database, optionally filtering by active status.
func (s *Store) GetChains(ctx context.Context, activeOnly bool) ([]models.Chain, error) {
	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return nil, ErrDatabaseConnect
	}
	defer db.Close()

	query := `
      SELECT
          id,
          chain_id,
          name,
          chain_type,
          rpc_url,
          relayer_url,
          explorer_url,
          active,
          created_at,
          updated_at
      FROM chains
  `

	var args []interface{}
	if activeOnly {
		query += " WHERE active = $1"
		args = append(args, true)
	}

	query += " ORDER BY chain_id ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ErrDatabaseConnect
	}
	defer rows.Close()

	var chains []models.Chain
	for rows.Next() {
		chain, err := scanChain(rows.Scan)
		if err != nil {
			return nil, ErrDatabaseConnect
		}
		chains = append(chains, *chain)
	}

	if err = rows.Err(); err != nil {
		return nil, ErrDatabaseConnect
	}

	return chains, nil
}

// GetChainByID returns the chain with the given chain ID.
func (s *Store) GetChainByID(ctx context.Context, chainID uint64) (*models.Chain, error) {
	if chainID == 0 {
		return nil, ErrInvalidChainID
	}

	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return nil, ErrDatabaseConnect
	}
	defer db.Close()

	row := db.QueryRowContext(ctx, `
       SELECT
           id,
           chain_id,
           name,
           chain_type,
           rpc_url,
           relayer_url,
           explorer_url,
           active,
           created_at,
           updated_at
       FROM chains
       WHERE chain_id = $1
    `, chainID)

	chain, err := scanChain(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrChainNotFound
	}
	if err != nil {
		return nil, ErrDatabaseConnect
	}

	return chain, nil
}

// UpsertChain inserts or updates a chain row keyed by chain_id.
func (s *Store) UpsertChain(ctx context.Context, chain *models.Chain) error {
	if chain.ChainID == 0 {
		return ErrInvalidChainID
	}

	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return ErrDatabaseConnect
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `
       INSERT INTO chains (chain_id, name, chain_type, rpc_url, relayer_url, explorer_url, active, created_at, updated_at)
       VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
       ON CONFLICT (chain_id) DO UPDATE SET
           name = EXCLUDED.name,
           chain_type = EXCLUDED.chain_type,
           rpc_url = EXCLUDED.rpc_url,
           relayer_url = EXCLUDED.relayer_url,
           explorer_url = EXCLUDED.explorer_url,
           active = EXCLUDED.active,
           updated_at = NOW()
    `, chain.ChainID, chain.Name, chain.Type, chain.RpcUrl, chain.RelayerUrl, chain.ExplorerUrl, chain.Active)
	if err != nil {
		return ErrDatabaseConnect
	}

	return nil
}

// scanChain scans one chain row using the given scan function.
func scanChain(scan func(dest ...interface{}) error) (*models.Chain, error) {
	var chain models.Chain
	var chainType, rpcURL, relayerURL, explorerURL sql.NullString

	err := scan(
		&chain.ID,
		&chain.ChainID,
		&chain.Name,
		&chainType,
		&rpcURL,
		&relayerURL,
		&explorerURL,
		&chain.Active,
		&chain.CreatedAt,
		&chain.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if chainType.Valid {
		chain.Type = types.ParseChainType(strings.ToUpper(chainType.String)).String()
	}
	if rpcURL.Valid {
		chain.RpcUrl = rpcURL.String
	}
	if relayerURL.Valid {
		chain.RelayerUrl = relayerURL.String
	}
	if explorerURL.Valid {
		chain.ExplorerUrl = explorerURL.String
	}

	return &chain, nil
}
