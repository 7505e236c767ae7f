package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and saves the result
// to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to riskpanes! Let's configure your workspace.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Port.
	portPrompt := promptui.Prompt{
		Label:    "Local server port",
		Default:  strconv.Itoa(cfg.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(strings.TrimSpace(portStr))

	// 2. Where the risk tables come from.
	sourcePrompt := promptui.Select{
		Label: "Risk data source",
		Items: []string{
			"embedded  (built-in sample tables)",
			"directory (riskTables.json and riskSummaryMessages.json on disk)",
			"url       (fetched from another server)",
		},
	}
	sourceIdx, _, err := sourcePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data source selection: %w", err)
	}
	switch sourceIdx {
	case 1:
		dirPrompt := promptui.Prompt{Label: "Data directory", Default: "data"}
		if cfg.DataDir, err = dirPrompt.Run(); err != nil {
			return nil, fmt.Errorf("data dir: %w", err)
		}
	case 2:
		urlPrompt := promptui.Prompt{Label: "Data base URL", Default: "http://localhost:8000/"}
		if cfg.DataBaseURL, err = urlPrompt.Run(); err != nil {
			return nil, fmt.Errorf("data base url: %w", err)
		}
	}

	// 3. Local storage file.
	dbPrompt := promptui.Prompt{
		Label:   "Saved selections database",
		Default: cfg.DBPath,
	}
	if cfg.DBPath, err = dbPrompt.Run(); err != nil {
		return nil, fmt.Errorf("db path: %w", err)
	}

	// 4. Extra CORS origins.
	corsPrompt := promptui.Prompt{
		Label:   "Extra allowed origins (comma-separated, leave blank for localhost only)",
		Default: "",
	}
	corsStr, err := corsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("cors origins: %w", err)
	}
	if extra := splitAndTrim(corsStr); len(extra) > 0 {
		cfg.CORSOrigins = append(append([]string(nil), DefaultCORSOrigins...), extra...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("must be between 1 and 65535")
	}
	return nil
}

// splitAndTrim splits a comma-separated string and drops empty entries.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
