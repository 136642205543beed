package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dragonpaw/ashbot/internal/domain"
)

var ErrNotFound = errors.New("not found")

// StateRepo persists one GuildState row per guild. The whole state travels
// as a JSONB document; the scalar columns exist for ops queries (janitor,
// psql spelunking) only.
type StateRepo struct{ db *sql.DB }

func NewStateRepo(db *sql.DB) *StateRepo { return &StateRepo{db: db} }

func (r *StateRepo) Get(ctx context.Context, guildID string) (domain.GuildState, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `
SELECT state
  FROM guild_states
 WHERE guild_id = $1
`, guildID).Scan(&raw)
	if err == sql.ErrNoRows {
		return domain.GuildState{}, ErrNotFound
	}
	if err != nil {
		return domain.GuildState{}, err
	}
	var st domain.GuildState
	if err := json.Unmarshal(raw, &st); err != nil {
		return domain.GuildState{}, fmt.Errorf("decode state for guild %s: %w", guildID, err)
	}
	return st, nil
}

func (r *StateRepo) Put(ctx context.Context, st domain.GuildState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state for guild %s: %w", st.ID, err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO guild_states (guild_id, guild_name, config_url, config_fetched_at, state)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (guild_id) DO UPDATE SET
  guild_name        = EXCLUDED.guild_name,
  config_url        = EXCLUDED.config_url,
  config_fetched_at = EXCLUDED.config_fetched_at,
  state             = EXCLUDED.state,
  updated_at        = now()
`, st.ID, st.Name, st.ConfigURL, st.ConfigFetchedAt, raw)
	return err
}
