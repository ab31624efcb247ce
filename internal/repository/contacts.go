package repository

import (
	"context"
	"database/sql"
	"fmt"

	"healthmon/internal/models"

	"go.uber.org/zap"
)

// ContactsRepository persists the emergency contact list.
type ContactsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewContactsRepository creates a contacts repository.
func NewContactsRepository(db *sql.DB, logger *zap.Logger) *ContactsRepository {
	return &ContactsRepository{
		db:     db,
		logger: logger,
	}
}

// List returns the stored contacts, or the default trio when the table
// is empty.
func (r *ContactsRepository) List(ctx context.Context) ([]models.Contact, error) {
	query := `
		SELECT id, name, phone, type
		FROM emergency_contacts
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		var (
			contact     models.Contact
			contactType string
		)
		if err := rows.Scan(&contact.ID, &contact.Name, &contact.Phone, &contactType); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contact.Type = models.ContactType(contactType)
		contacts = append(contacts, contact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %w", err)
	}

	if len(contacts) == 0 {
		return models.DefaultContacts(), nil
	}
	return contacts, nil
}

// Replace substitutes the whole contact list in one transaction.
func (r *ContactsRepository) Replace(ctx context.Context, contacts []models.Contact) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin contacts transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM emergency_contacts`); err != nil {
		return fmt.Errorf("failed to clear contacts: %w", err)
	}

	insert := `
		INSERT INTO emergency_contacts (name, phone, type)
		VALUES ($1, $2, $3)
	`
	for _, contact := range contacts {
		if _, err := tx.ExecContext(ctx, insert, contact.Name, contact.Phone, string(contact.Type)); err != nil {
			return fmt.Errorf("failed to insert contact: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit contacts: %w", err)
	}

	r.logger.Info("Emergency contacts replaced", zap.Int("count", len(contacts)))
	return nil
}
