package storage

import (
	"database/sql"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/standardbeagle/codeindex/internal/codeerrors"
	"github.com/standardbeagle/codeindex/internal/types"
)

func chainID(t types.ChainType) string {
	h := xxhash.New()
	h.WriteString("chain\x00" + string(t))
	return hexSum(h.Sum64())
}

func hexSum(v uint64) string {
	const hextable = "0123456789abcdef"
	buf := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		buf[i] = hextable[v&0xf]
		v >>= 4
	}
	return string(buf)
}

// GetOrCreateChain returns the chain row for chainType, creating it (with a
// deterministic id) on first use.
func (s *Store) GetOrCreateChain(chainType types.ChainType, config string) (types.MarkovChainMeta, error) {
	row := s.db.QueryRow("SELECT id, created_at, updated_at, config FROM markov_chains WHERE chain_type = ?", string(chainType))
	var meta types.MarkovChainMeta
	var created, updated string
	err := row.Scan(&meta.ID, &created, &updated, &meta.Config)
	if err == nil {
		meta.ChainType = chainType
		meta.CreatedAt, _ = time.Parse(time.RFC3339, created)
		meta.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		return meta, nil
	}
	if err != sql.ErrNoRows {
		return types.MarkovChainMeta{}, codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
	}

	id := chainID(chainType)
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.Exec(`
		INSERT INTO markov_chains (id, chain_type, created_at, updated_at, config) VALUES (?, ?, ?, ?, ?)
	`, id, string(chainType), now, now, config); err != nil {
		return types.MarkovChainMeta{}, codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
	}
	parsed, _ := time.Parse(time.RFC3339, now)
	return types.MarkovChainMeta{ID: id, ChainType: chainType, CreatedAt: parsed, UpdatedAt: parsed, Config: config}, nil
}

func (s *Store) GetChainID(chainType types.ChainType) (string, error) {
	row := s.db.QueryRow("SELECT id FROM markov_chains WHERE chain_type = ?", string(chainType))
	var id string
	if err := row.Scan(&id); err == sql.ErrNoRows {
		return "", codeerrors.New(codeerrors.SymbolNotFound, "", "chain not built: "+string(chainType))
	} else if err != nil {
		return "", codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
	}
	return id, nil
}

// ClearChain deletes every transition belonging to chainID, in preparation
// for a full rebuild (spec.md §4.8's builder re-derives each chain from
// scratch rather than incrementally patching it).
func (s *Store) ClearChain(chainID string) error {
	_, err := s.db.Exec("DELETE FROM markov_transitions WHERE chain_id = ?", chainID)
	if err != nil {
		return codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec("UPDATE markov_chains SET updated_at = ? WHERE id = ?", now, chainID)
	return err
}

// SaveTransitions bulk-inserts a rebuilt chain's transitions inside one
// transaction.
func (s *Store) SaveTransitions(chainID string, transitions []types.MarkovTransition) error {
	tx, err := s.db.Begin()
	if err != nil {
		return codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
	}
	defer tx.Rollback()

	for _, t := range transitions {
		if _, err := tx.Exec(`
			INSERT INTO markov_transitions (chain_id, from_state_id, from_state_name, to_state_id, to_state_name, raw_count, probability)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(chain_id, from_state_id, to_state_id) DO UPDATE SET
				raw_count = excluded.raw_count, probability = excluded.probability
		`, chainID, t.FromStateID, t.FromStateName, t.ToStateID, t.ToStateName, t.RawCount, t.Probability); err != nil {
			return codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
		}
	}
	return tx.Commit()
}

// GetTransitionsFrom returns every outgoing transition from stateID within
// chainID, ordered by probability descending (spec.md §4.9 query walk).
func (s *Store) GetTransitionsFrom(chainID, stateID string) ([]types.MarkovTransition, error) {
	rows, err := s.db.Query(`
		SELECT chain_id, from_state_id, from_state_name, to_state_id, to_state_name, raw_count, probability
		FROM markov_transitions WHERE chain_id = ? AND from_state_id = ? ORDER BY probability DESC
	`, chainID, stateID)
	if err != nil {
		return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
	}
	defer rows.Close()
	var out []types.MarkovTransition
	for rows.Next() {
		var t types.MarkovTransition
		if err := rows.Scan(&t.ChainID, &t.FromStateID, &t.FromStateName, &t.ToStateID, &t.ToStateName,
			&t.RawCount, &t.Probability); err != nil {
			return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
		}
		out = append(out, t)
	}
	return out, nil
}

// HasChainSupport reports whether stateID has any outgoing transition in
// chainID, letting the query layer fall back to another chain when a node
// is isolated (spec.md §4.9 fallback path).
func (s *Store) HasChainSupport(chainID, stateID string) bool {
	row := s.db.QueryRow("SELECT COUNT(*) FROM markov_transitions WHERE chain_id = ? AND from_state_id = ?", chainID, stateID)
	var count int
	if err := row.Scan(&count); err != nil {
		return false
	}
	return count > 0
}
