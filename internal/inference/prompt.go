package inference

import (
	"fmt"
	"strings"
)

// PromptKind selects which flashcard field(s) a generation call produces.
// The values are the wire values accepted in the promptType request field.
type PromptKind string

const (
	KindDefinition          PromptKind = "definition"
	KindShortDescription    PromptKind = "shortDescription"
	KindSingleExample       PromptKind = "example"
	KindThreeExamples       PromptKind = "threeExamples"
	KindTranscription       PromptKind = "transcription"
	KindTranslateToTarget   PromptKind = "translateToTarget"
	KindTranslateFromTarget PromptKind = "translateFromTarget"
	KindFullCard            PromptKind = "completeFlashcard"
)

// ParsePromptKind maps a request value onto a PromptKind. Anything
// unrecognized, including the empty string, means a full card.
func ParsePromptKind(s string) PromptKind {
	switch kind := PromptKind(s); kind {
	case KindDefinition, KindShortDescription, KindSingleExample, KindThreeExamples,
		KindTranscription, KindTranslateToTarget, KindTranslateFromTarget, KindFullCard:
		return kind
	default:
		return KindFullCard
	}
}

// MaxTokens returns the completion token ceiling for the kind. Full cards and
// example lists need room; single fields do not.
func (k PromptKind) MaxTokens() int {
	switch k {
	case KindFullCard, KindThreeExamples:
		return 600
	default:
		return 300
	}
}

// SystemInstruction frames the assistant for every generation call.
func SystemInstruction(targetLanguage string) string {
	return fmt.Sprintf("You are a helpful assistant for language learning, specializing in English and %s.", targetLanguage)
}

// BuildPrompt deterministically builds the provider instruction for one
// generation request. The caller owns trimming and casing of text; this
// function embeds it as-is.
func BuildPrompt(text, englishLevel string, kind PromptKind, targetLanguage string) string {
	switch kind {
	case KindDefinition:
		return fmt.Sprintf("English level: %s. Provide a detailed definition/explanation for: %s", englishLevel, text)
	case KindShortDescription:
		return fmt.Sprintf("English level: %s. Write a very short description (2-3 sentences max, under 150 characters) for English word/phrase: %q. "+
			"The description should be concise, clear and appropriate for %s level learners.", englishLevel, text, englishLevel)
	case KindSingleExample:
		return fmt.Sprintf("Create a sentence. English level: %s. Word to use: %s", englishLevel, text)
	case KindThreeExamples:
		return fmt.Sprintf("Create three different example sentences using the English word/phrase %q. "+
			"English level: %s. Return ONLY a JSON array of three strings, no other text.", text, englishLevel)
	case KindTranscription:
		return fmt.Sprintf("Provide me with the transcription for: %s. Resources: 1) Oxford Learner's Dictionaries. "+
			"Format for output: Transcription for 'University' (Oxford Learner's Dictionaries):"+
			"UK: [ˌjuːnɪˈvɜːsəti]; US: [ˌjuːnɪˈvɜːrsəti];", text)
	case KindTranslateToTarget:
		return fmt.Sprintf("Provide translation to %s for: %s.", targetLanguage, text)
	case KindTranslateFromTarget:
		return fmt.Sprintf("Provide translation from %s to English for: %s", targetLanguage, text)
	default:
		return buildFullCardPrompt(text, englishLevel, targetLanguage)
	}
}

func buildFullCardPrompt(text, englishLevel, targetLanguage string) string {
	return fmt.Sprintf(`Create a complete flashcard for an English vocabulary word/phrase. Word: %q.
English level: %s.

Return JSON format:
{
  "text": %q,
  "transcription": "Resources: Oxford Learner's Dictionaries. Format for output: Transcription for 'University' (Oxford Learner's Dictionaries):UK: [ˌjuːnɪˈvɜːsəti] US: [ˌjuːnɪˈvɜːrsəti];",
  "translation": "Some variants of %s translation",
  "shortDescription": "Very brief 2-3 sentences description (under 150 characters), clear and concise",
  "explanation": "A detailed definition/explanation of meaning and usage (can be longer and more comprehensive)",
  "examples": ["First example sentence", "Second example sentence", "Third example sentence"],
  "notes": ""
}

Make sure to provide:
- Accurate phonetic transcription
- Clear explanation (in English) appropriate for %s English level
- Short description that's concise but informative for quick reference
- Detailed explanation for comprehensive understanding
- Three natural example sentences
- %s translation`, text, englishLevel, text, targetLanguage, englishLevel, targetLanguage)
}

// BuildRegenerateExamplesPrompt asks for a fresh example list for an existing
// card, steering away from the examples the card already has.
func BuildRegenerateExamplesPrompt(text, englishLevel string, existingExamples []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Create three NEW and DIFFERENT example sentences using the English word/phrase %q. ", text)
	fmt.Fprintf(&sb, "English level: %s. ", englishLevel)
	if len(existingExamples) > 0 {
		sb.WriteString("The sentences must differ from these existing examples:\n")
		for _, example := range existingExamples {
			fmt.Fprintf(&sb, "- %s\n", example)
		}
	}
	sb.WriteString("Return ONLY a JSON array of three strings, no other text.")
	return sb.String()
}
