package config

import "strings"

// providerAliases maps alternative provider names to canonical ids.
var providerAliases = map[string]string{
	"claude":       "anthropic",
	"gemini":       "google",
	"hf":           "huggingface",
	"hugging-face": "huggingface",
	"ollama":       "local",
}

// CanonicalProviderID lowercases id and resolves aliases such as "gemini"
// or "ollama". Unknown names are returned lowercased and trimmed.
func CanonicalProviderID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if canonical, ok := providerAliases[id]; ok {
		return canonical
	}
	return id
}
