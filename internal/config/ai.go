package config

import "github.com/knadh/koanf/v2"

// GeminiModels selects the model per task.
type GeminiModels struct {
	// Matching ranks tutor candidates (plain text answer)
	Matching string `json:"matching"`

	// Games generates quiz, card and story content (JSON answers)
	Games string `json:"games"`
}

// AIConfig holds all AI-related configuration
type AIConfig struct {
	APIKey         string       `json:"-"` // Never serialize
	BaseURL        string       `json:"baseUrl"`
	Models         GeminiModels `json:"models"`
	TimeoutMS      int          `json:"timeoutMs"`
	RequestsPerMin int          `json:"requestsPerMin"`
}

func loadAIConfig(k *koanf.Koanf) *AIConfig {
	model := getString(k, "GEMINI_MODEL", "gemini-2.0-flash")
	return &AIConfig{
		APIKey:  k.String("GEMINI_API_KEY"),
		BaseURL: getString(k, "GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/models"),
		Models: GeminiModels{
			Matching: getString(k, "GEMINI_MODEL_MATCHING", model),
			Games:    getString(k, "GEMINI_MODEL_GAMES", model),
		},
		TimeoutMS:      getInt(k, "GEMINI_TIMEOUT_MS", 30000),
		RequestsPerMin: getInt(k, "GEMINI_REQUESTS_PER_MIN", 60),
	}
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// Require fails when the generative-AI key is absent.
func (c *AIConfig) Require() error {
	if !c.IsEnabled() {
		return &MissingError{Feature: "AI study tools", Keys: []string{"GEMINI_API_KEY"}}
	}
	return nil
}

// ModelEndpoint returns the full endpoint for a given model
func (c *AIConfig) ModelEndpoint(model string) string {
	return c.BaseURL + "/" + model + ":generateContent"
}
