package store

import (
	"database/sql"

	"feedpulse/internal/types"
)

// AddAccount inserts an account if its handle is not yet known and
// refreshes the display name if it is. Cursor and active flag of an
// existing account are left untouched.
func (s *Store) AddAccount(handle, displayName string) error {
	_, err := s.db.Exec(`
		INSERT INTO accounts (handle, display_name)
		VALUES (?, ?)
		ON CONFLICT(handle) DO UPDATE SET
			display_name = excluded.display_name
	`, handle, displayName)
	if err != nil {
		return &PersistError{Op: "add account", Key: handle, Err: err}
	}
	return nil
}

// SetActive toggles whether an account is included in monitoring cycles.
func (s *Store) SetActive(handle string, active bool) error {
	_, err := s.db.Exec(`UPDATE accounts SET active = ? WHERE handle = ?`, active, handle)
	if err != nil {
		return &PersistError{Op: "set active", Key: handle, Err: err}
	}
	return nil
}

// ActiveAccounts returns all accounts with the active flag set.
func (s *Store) ActiveAccounts() ([]types.Account, error) {
	rows, err := s.db.Query(`
		SELECT id, handle, display_name, cursor, active, created_at
		FROM accounts
		WHERE active = 1
		ORDER BY handle
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// GetAccount returns the account with the given handle, or nil if unknown.
func (s *Store) GetAccount(handle string) (*types.Account, error) {
	row := s.db.QueryRow(`
		SELECT id, handle, display_name, cursor, active, created_at
		FROM accounts
		WHERE handle = ?
	`, handle)

	var a types.Account
	err := row.Scan(&a.ID, &a.Handle, &a.DisplayName, &a.Cursor, &a.Active, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpsertCursor advances an account's fetch cursor.
func (s *Store) UpsertCursor(accountID int64, cursor string) error {
	_, err := s.db.Exec(`UPDATE accounts SET cursor = ? WHERE id = ?`, cursor, accountID)
	if err != nil {
		return &PersistError{Op: "upsert cursor", Key: cursor, Err: err}
	}
	return nil
}

func scanAccounts(rows *sql.Rows) ([]types.Account, error) {
	var accounts []types.Account
	for rows.Next() {
		var a types.Account
		err := rows.Scan(&a.ID, &a.Handle, &a.DisplayName, &a.Cursor, &a.Active, &a.CreatedAt)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
