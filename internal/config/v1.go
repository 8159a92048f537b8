package config

const configVersionV1 = "1"

// configV1 is the provider/model layout that predates artifact and server
// settings. Only read for migration.
type configV1 struct {
	Version   string                      `json:"version"`
	Model     string                      `json:"model,omitempty"`
	Providers map[string]providerConfigV1 `json:"providers"`
	Agents    map[string]agentConfigV1    `json:"agents,omitempty"`
}

type providerConfigV1 struct {
	Name         string            `json:"name"`
	Type         string            `json:"type"`
	BaseURL      string            `json:"base_url,omitempty"`
	APIKey       string            `json:"api_key,omitempty"`
	Models       []modelConfigV1   `json:"models,omitempty"`
	ExtraHeaders map[string]string `json:"extra_headers,omitempty"`
	Disable      bool              `json:"disable,omitempty"`
}

type modelConfigV1 struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type agentConfigV1 struct {
	Model       string `json:"model,omitempty"`
	Description string `json:"description,omitempty"`
}
