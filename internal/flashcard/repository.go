package flashcard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

//go:generate mockgen -source=repository.go -destination=../mocks/flashcard/mock_repository.go -package=mock_flashcard

// CategoryFilterUncategorized selects cards that belong to no category.
const CategoryFilterUncategorized = "uncategorized"

// Repository defines storage operations for flashcards. Every lookup is
// scoped to the owning user; a card belonging to someone else behaves exactly
// like a missing card.
type Repository interface {
	// FindByUser returns the user's cards, newest first. categoryFilter is
	// empty for all cards, CategoryFilterUncategorized for cards without a
	// category, or a category ID.
	FindByUser(ctx context.Context, userID, categoryFilter string) ([]Flashcard, error)
	// FindByID returns the card, or nil when it does not exist or is not
	// owned by userID.
	FindByID(ctx context.Context, id int64, userID string) (*Flashcard, error)
	Create(ctx context.Context, card *Flashcard) error
	Update(ctx context.Context, card *Flashcard) error
	// Delete reports whether a card was actually removed.
	Delete(ctx context.Context, id int64, userID string) (bool, error)
	// UpdateExamples replaces the whole example list of the card.
	UpdateExamples(ctx context.Context, id int64, userID string, examples []string) error
	CategoryExists(ctx context.Context, id int64, userID string) (bool, error)
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

func (r *DBRepository) FindByUser(ctx context.Context, userID, categoryFilter string) ([]Flashcard, error) {
	query := "SELECT * FROM flashcards WHERE user_id = ?"
	args := []any{userID}
	switch categoryFilter {
	case "":
	case CategoryFilterUncategorized:
		query += " AND category_id IS NULL"
	default:
		query += " AND category_id = ?"
		args = append(args, categoryFilter)
	}
	query += " ORDER BY created_at DESC"

	var cards []Flashcard
	if err := r.db.SelectContext(ctx, &cards, query, args...); err != nil {
		return nil, fmt.Errorf("list flashcards: %w", err)
	}
	for i := range cards {
		cards[i].NormalizeExamples()
	}
	return cards, nil
}

func (r *DBRepository) FindByID(ctx context.Context, id int64, userID string) (*Flashcard, error) {
	var card Flashcard
	err := r.db.GetContext(ctx, &card, "SELECT * FROM flashcards WHERE id = ? AND user_id = ?", id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load flashcard: %w", err)
	}
	card.NormalizeExamples()
	return &card, nil
}

func (r *DBRepository) Create(ctx context.Context, card *Flashcard) error {
	result, err := r.db.ExecContext(ctx, `INSERT INTO flashcards (
		user_id, category_id, text, transcription, translation,
		short_description, explanation, examples, example, notes, is_ai_generated
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		card.UserID, card.CategoryID, card.Text, card.Transcription, card.Translation,
		card.ShortDescription, card.Explanation, card.Examples, card.Example, card.Notes, card.IsAIGenerated,
	)
	if err != nil {
		return fmt.Errorf("insert flashcard: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("flashcard insert id: %w", err)
	}
	card.ID = id
	return nil
}

func (r *DBRepository) Update(ctx context.Context, card *Flashcard) error {
	_, err := r.db.ExecContext(ctx, `UPDATE flashcards SET
		category_id = ?, text = ?, transcription = ?, translation = ?,
		short_description = ?, explanation = ?, examples = ?, example = ?,
		notes = ?, is_ai_generated = ?
	WHERE id = ? AND user_id = ?`,
		card.CategoryID, card.Text, card.Transcription, card.Translation,
		card.ShortDescription, card.Explanation, card.Examples, card.Example,
		card.Notes, card.IsAIGenerated,
		card.ID, card.UserID,
	)
	if err != nil {
		return fmt.Errorf("update flashcard: %w", err)
	}
	return nil
}

func (r *DBRepository) Delete(ctx context.Context, id int64, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM flashcards WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, fmt.Errorf("delete flashcard: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete flashcard rows: %w", err)
	}
	return affected > 0, nil
}

func (r *DBRepository) UpdateExamples(ctx context.Context, id int64, userID string, examples []string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE flashcards SET examples = ? WHERE id = ? AND user_id = ?",
		ExampleList(examples), id, userID)
	if err != nil {
		return fmt.Errorf("update flashcard examples: %w", err)
	}
	return nil
}

func (r *DBRepository) CategoryExists(ctx context.Context, id int64, userID string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM categories WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, fmt.Errorf("check category: %w", err)
	}
	return count > 0, nil
}
