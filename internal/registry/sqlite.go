package registry

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/4poc/zgbot/internal/dbx"
	"github.com/4poc/zgbot/internal/users"
)

const schema = `
create table if not exists users (
	nick         text primary key,
	email        text not null,
	secret       text not null,
	shortcuts    integer not null default 0,
	shortupvotes integer not null default 0,
	notify       integer not null default 0,
	nickserv     integer not null default 0
);
create table if not exists user_alts (
	alt  text primary key,
	nick text not null references users(nick) on delete cascade
);
create table if not exists ignored_guests (
	nick text primary key
);
create table if not exists history (
	channel text    not null,
	pos     integer not null,
	item_id integer not null,
	primary key (channel, pos)
);
`

// SQLiteStore persists the registry in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the registry database at dsn and ensures
// the schema exists.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create registry schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads the whole registry. An empty database yields an empty,
// initialized state.
func (s *SQLiteStore) Load(ctx context.Context) (*State, error) {
	st := NewState()

	if err := s.loadUsers(ctx, st); err != nil {
		return nil, err
	}
	if err := s.loadAlts(ctx, st); err != nil {
		return nil, err
	}
	if err := s.loadGuests(ctx, st); err != nil {
		return nil, err
	}
	if err := s.loadHistory(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *SQLiteStore) loadUsers(ctx context.Context, st *State) error {
	rows, err := s.db.QueryContext(ctx,
		`select nick, email, secret, shortcuts, shortupvotes, notify, nickserv from users`)
	if err != nil {
		return fmt.Errorf("failed to select users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var nick string
		var rec users.Record
		if err := rows.Scan(&nick, &rec.Email, &rec.Secret,
			&rec.Shortcuts, &rec.ShortUpvotes, &rec.Notify, &rec.Nickserv); err != nil {
			return err
		}
		st.Users[nick] = rec
	}
	return rows.Err()
}

func (s *SQLiteStore) loadAlts(ctx context.Context, st *State) error {
	rows, err := s.db.QueryContext(ctx, `select alt, nick from user_alts order by alt`)
	if err != nil {
		return fmt.Errorf("failed to select user alts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var alt, nick string
		if err := rows.Scan(&alt, &nick); err != nil {
			return err
		}
		rec, ok := st.Users[nick]
		if !ok {
			continue
		}
		rec.Alts = append(rec.Alts, alt)
		st.Users[nick] = rec
	}
	return rows.Err()
}

func (s *SQLiteStore) loadGuests(ctx context.Context, st *State) error {
	rows, err := s.db.QueryContext(ctx, `select nick from ignored_guests order by nick`)
	if err != nil {
		return fmt.Errorf("failed to select ignored guests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var nick string
		if err := rows.Scan(&nick); err != nil {
			return err
		}
		st.IgnoredGuests = append(st.IgnoredGuests, nick)
	}
	return rows.Err()
}

func (s *SQLiteStore) loadHistory(ctx context.Context, st *State) error {
	rows, err := s.db.QueryContext(ctx,
		`select channel, item_id from history order by channel, pos`)
	if err != nil {
		return fmt.Errorf("failed to select history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var channel string
		var id int64
		if err := rows.Scan(&channel, &id); err != nil {
			return err
		}
		st.History[channel] = append(st.History[channel], id)
	}
	return rows.Err()
}

// Save replaces the stored registry with st in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, st *State) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, table := range []string{"user_alts", "users", "ignored_guests", "history"} {
			if _, err := tx.ExecContext(ctx, "delete from "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		for nick, rec := range st.Users {
			_, err := tx.ExecContext(ctx,
				`insert into users (nick, email, secret, shortcuts, shortupvotes, notify, nickserv)
				 values (?, ?, ?, ?, ?, ?, ?)`,
				nick, rec.Email, rec.Secret,
				rec.Shortcuts, rec.ShortUpvotes, rec.Notify, rec.Nickserv)
			if err != nil {
				return fmt.Errorf("failed to insert user: %w", err)
			}
			for _, alt := range rec.Alts {
				if _, err := tx.ExecContext(ctx,
					`insert into user_alts (alt, nick) values (?, ?)`, alt, nick); err != nil {
					return fmt.Errorf("failed to insert user alt: %w", err)
				}
			}
		}

		for _, nick := range st.IgnoredGuests {
			if _, err := tx.ExecContext(ctx,
				`insert into ignored_guests (nick) values (?)`, nick); err != nil {
				return fmt.Errorf("failed to insert ignored guest: %w", err)
			}
		}

		for channel, ids := range st.History {
			for pos, id := range ids {
				if _, err := tx.ExecContext(ctx,
					`insert into history (channel, pos, item_id) values (?, ?, ?)`,
					channel, pos, id); err != nil {
					return fmt.Errorf("failed to insert history entry: %w", err)
				}
			}
		}
		return nil
	})
}

var _ Store = (*SQLiteStore)(nil)
