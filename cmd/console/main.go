package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:    180 * time.Second, // turn resolution waits on the LLM
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API at %s. Please ensure the API is running.\nTry: go run ./cmd/api\n", cfg.APIBaseURL)
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Println("New sales simulation")
	industry := promptLine(reader, "Your company's industry: ")
	product := promptLine(reader, "Your product: ")
	target := promptLine(reader, "Target customer: ")

	mode := promptLine(reader, "Mode [quick/detailed] (default quick): ")
	if mode != "quick" && mode != "detailed" {
		mode = "quick"
	}
	lang := promptLine(reader, "Language [en/cn] (default en): ")
	if lang == "" {
		lang = "en"
	}

	fmt.Println("\nGenerating scenario, this can take a minute...")
	s, err := createSession(client, cfg.APIBaseURL, CreateSessionRequest{
		Industry: industry,
		Product:  product,
		Target:   target,
		Language: lang,
		Mode:     mode,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create session: %v\n", err)
		os.Exit(1)
	}

	cards, err := listCards(client, cfg.APIBaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load card deck: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(cfg, client, s, cards),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func promptLine(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
