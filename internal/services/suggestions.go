package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Suggestion generation against the Gemini REST API. The call is strictly
// best-effort: a bounded timeout and an empty result on any failure, so a
// provider outage never breaks the caller's flow.
const (
	geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
	geminiModel    = "gemini-2.5-flash"
	// suggestionTimeout bounds the external call.
	suggestionTimeout = 10 * time.Second
	// MaxSuggestions caps what we hand back to the client.
	MaxSuggestions = 5
)

var suggestionHTTPClient = &http.Client{Timeout: suggestionTimeout}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig map[string]interface{} `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateSuggestions asks the model for up to five short phrases about the
// topic. Returns an empty slice (never an error) when the key is missing,
// the provider is unreachable, or the response doesn't parse.
func GenerateSuggestions(ctx context.Context, apiKey, topic string) []string {
	if apiKey == "" || strings.TrimSpace(topic) == "" {
		return []string{}
	}

	prompt := fmt.Sprintf(`Genera 5 frases cortas, divertidas y creativas en español sobre el tema: "%s".`, topic)

	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: map[string]interface{}{
			"responseMimeType": "application/json",
			"responseSchema": map[string]interface{}{
				"type": "OBJECT",
				"properties": map[string]interface{}{
					"suggestions": map[string]interface{}{
						"type":  "ARRAY",
						"items": map[string]interface{}{"type": "STRING"},
					},
				},
				"required": []string{"suggestions"},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return []string{}
	}

	ctx, cancel := context.WithTimeout(ctx, suggestionTimeout)
	defer cancel()

	url := fmt.Sprintf(geminiEndpoint, geminiModel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return []string{}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := suggestionHTTPClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("suggestion provider unreachable")
		return []string{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Msg("suggestion provider returned non-200")
		return []string{}
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return []string{}
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return []string{}
	}

	var result struct {
		Suggestions []string `json:"suggestions"`
	}
	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		log.Warn().Err(err).Msg("suggestion provider returned unexpected format")
		return []string{}
	}

	if len(result.Suggestions) > MaxSuggestions {
		result.Suggestions = result.Suggestions[:MaxSuggestions]
	}
	if result.Suggestions == nil {
		result.Suggestions = []string{}
	}
	return result.Suggestions
}
