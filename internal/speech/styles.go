package speech

var voiceStyleInstructions = map[string]string{
	"neutral":     "Speak naturally and clearly with neutral tone.",
	"formal":      "Voice: Clear, authoritative, and composed, projecting confidence and professionalism. Tone: Neutral and informative, maintaining a balance between formality and approachability.",
	"calm":        "Voice Affect: Calm, composed, and reassuring; project quiet authority and confidence. Tone: Sincere, empathetic, and gently authoritative.",
	"dramatic":    "Voice Affect: Low, hushed, and suspenseful; convey tension and intrigue. Tone: Deeply serious and mysterious, maintaining an undercurrent of unease.",
	"educational": "Voice: Clear and engaging, suitable for learning. Pace: Moderate and well-structured for comprehension. Tone: Encouraging and instructive.",
}

// StyleInstructions renders the delivery instructions for one voice style,
// with the user's free-text additions appended. Unknown styles fall back to
// neutral.
func StyleInstructions(style, custom string) string {
	instructions, ok := voiceStyleInstructions[style]
	if !ok {
		instructions = voiceStyleInstructions["neutral"]
	}
	if custom != "" {
		instructions += "\n\nAdditional instructions: " + custom
	}
	return instructions
}
