package settings

// Option is one selectable value in a settings dropdown.
type Option struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// OptionCatalog lists every selectable value for the settings UI.
type OptionCatalog struct {
	Models          []Option `json:"models"`
	Voices          []Option `json:"voices"`
	VoiceStyles     []Option `json:"voiceStyles"`
	ResponseFormats []Option `json:"responseFormats"`
	EnglishLevels   []Option `json:"englishLevels"`
	ChatGPTModels   []Option `json:"chatgptModels"`
	APIKeySources   []Option `json:"apiKeySources"`
}

// Options returns the static option catalog. The IDs must stay in sync with
// the allowed-value lists the update validator enforces.
func Options() OptionCatalog {
	return OptionCatalog{
		Models: []Option{
			{ID: "tts-1", Name: "TTS-1 (Standard)", Description: "Fast, good quality"},
			{ID: "tts-1-hd", Name: "TTS-1 HD", Description: "Higher quality, slower"},
			{ID: "gpt-4o-mini-tts", Name: "GPT-4o Mini TTS", Description: "Advanced model with custom instructions"},
		},
		Voices: []Option{
			{ID: "alloy", Name: "Alloy", Description: "Neutral, versatile"},
			{ID: "ash", Name: "Ash", Description: "Clear, professional"},
			{ID: "coral", Name: "Coral", Description: "Warm, friendly"},
			{ID: "echo", Name: "Echo", Description: "Deep, resonant"},
			{ID: "fable", Name: "Fable", Description: "Expressive, storytelling"},
			{ID: "onyx", Name: "Onyx", Description: "Strong, confident"},
			{ID: "nova", Name: "Nova", Description: "Bright, energetic"},
			{ID: "sage", Name: "Sage", Description: "Wise, calm"},
			{ID: "shimmer", Name: "Shimmer", Description: "Gentle, soothing"},
		},
		VoiceStyles: []Option{
			{ID: "neutral", Name: "Neutral", Description: "Natural and clear delivery"},
			{ID: "formal", Name: "Formal", Description: "Professional and authoritative"},
			{ID: "calm", Name: "Calm", Description: "Soothing and confident"},
			{ID: "dramatic", Name: "Dramatic", Description: "Tense and intriguing"},
			{ID: "educational", Name: "Educational", Description: "Clear and easy to follow for learning"},
		},
		ResponseFormats: []Option{
			{ID: "mp3", Name: "MP3", Description: "Standard quality, widely supported"},
			{ID: "opus", Name: "Opus", Description: "Good compression, modern format"},
			{ID: "aac", Name: "AAC", Description: "High quality, Apple preferred"},
			{ID: "flac", Name: "FLAC", Description: "Lossless quality, large files"},
		},
		EnglishLevels: []Option{
			{ID: "A1", Name: "A1 - Beginner", Description: "Basic words and phrases"},
			{ID: "A2", Name: "A2 - Elementary", Description: "Simple everyday expressions"},
			{ID: "B1", Name: "B1 - Intermediate", Description: "Conversation on familiar topics"},
			{ID: "B2", Name: "B2 - Upper intermediate", Description: "Fluent conversation with native speakers"},
			{ID: "C1", Name: "C1 - Advanced", Description: "Complex texts and abstract topics"},
			{ID: "C2", Name: "C2 - Proficient", Description: "Near-native command of the language"},
		},
		ChatGPTModels: []Option{
			{ID: "gpt-4.1", Name: "GPT-4.1", Description: "Most capable model, best quality"},
			{ID: "gpt-4.1-mini", Name: "GPT-4.1 Mini", Description: "Best quality-to-cost ratio (recommended)"},
			{ID: "gpt-4o", Name: "GPT-4o", Description: "Fast and efficient with good quality"},
		},
		APIKeySources: []Option{
			{ID: "system", Name: "System key", Description: "Use the shared system API key"},
			{ID: "user", Name: "Personal key", Description: "Use your own API key"},
		},
	}
}
