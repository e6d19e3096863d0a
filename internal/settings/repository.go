package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

//go:generate mockgen -source=repository.go -destination=../mocks/settings/mock_repository.go -package=mock_settings

// Repository defines storage operations for user settings.
type Repository interface {
	// FindByUser returns the user's settings, or nil when none exist.
	FindByUser(ctx context.Context, userID string) (*UserSettings, error)
	// Save upserts the whole settings row. Last writer wins; there is no
	// version token, so concurrent updates from two sessions silently
	// overwrite each other.
	Save(ctx context.Context, s *UserSettings) error
	Delete(ctx context.Context, userID string) error
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// FindByUser returns the settings row for userID, nil when absent.
func (r *DBRepository) FindByUser(ctx context.Context, userID string) (*UserSettings, error) {
	var s UserSettings
	err := r.db.GetContext(ctx, &s, "SELECT * FROM user_settings WHERE user_id = ?", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user settings: %w", err)
	}
	return &s, nil
}

// Save upserts the settings row.
func (r *DBRepository) Save(ctx context.Context, s *UserSettings) error {
	query := `INSERT INTO user_settings (
		user_id, api_key_source, openai_api_key,
		tts_model, tts_voice, tts_speed, tts_response_format, tts_voice_style, tts_custom_instructions,
		cache_audio, default_english_level, chat_model
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE
		api_key_source = VALUES(api_key_source),
		openai_api_key = VALUES(openai_api_key),
		tts_model = VALUES(tts_model),
		tts_voice = VALUES(tts_voice),
		tts_speed = VALUES(tts_speed),
		tts_response_format = VALUES(tts_response_format),
		tts_voice_style = VALUES(tts_voice_style),
		tts_custom_instructions = VALUES(tts_custom_instructions),
		cache_audio = VALUES(cache_audio),
		default_english_level = VALUES(default_english_level),
		chat_model = VALUES(chat_model)`

	_, err := r.db.ExecContext(ctx, query,
		s.UserID, s.APIKeySource, s.OpenAIAPIKey,
		s.TTSModel, s.TTSVoice, s.TTSSpeed, s.TTSResponseFormat, s.TTSVoiceStyle, s.TTSCustomInstructions,
		s.CacheAudio, s.DefaultEnglishLevel, s.ChatModel,
	)
	if err != nil {
		return fmt.Errorf("save user settings: %w", err)
	}
	return nil
}

// Delete removes the settings row. Deleting a missing row is not an error.
func (r *DBRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM user_settings WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("delete user settings: %w", err)
	}
	return nil
}
