package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "Copilot server URL")
	providerID := flag.String("provider", "openai", "Provider that answers questions")
	model := flag.String("model", "", "Model override")
	flag.Parse()

	fmt.Println("Concerto Copilot CLI Chat")
	fmt.Printf("Server: %s | Provider: %s\n", *server, *providerID)
	fmt.Println("Type 'exit' or 'quit' to leave. Commands: /health, /fix <file>")
	fmt.Println("---")

	fetchHealth(*server)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Bye!")
			return
		}
		if input == "/health" {
			fetchHealth(*server)
			continue
		}

		req := map[string]interface{}{
			"model_config": map[string]string{"provider": *providerID, "model": *model},
		}
		if path, ok := strings.CutPrefix(input, "/fix "); ok {
			data, err := os.ReadFile(strings.TrimSpace(path))
			if err != nil {
				printError("Failed to read %s: %v", path, err)
				continue
			}
			req["documents"] = map[string]interface{}{"main": map[string]string{"content": string(data)}}
			req["prompt_config"] = map[string]string{"request_type": "fix", "language": "concerto"}
		} else {
			req["prompt_config"] = map[string]string{"request_type": "general", "instruction": input}
		}
		generate(*server, req)
	}
}

func fetchHealth(server string) {
	resp, err := http.Get(server + "/api/health")
	if err != nil {
		printError("Failed to reach server: %v", err)
		return
	}
	defer resp.Body.Close()

	var health struct {
		Status string `json:"status"`
		Corpus struct {
			Models    int `json:"models"`
			Templates int `json:"templates"`
		} `json:"corpus"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		printError("Failed to parse health: %v", err)
		return
	}
	fmt.Printf("Status: %s | corpus: %d models, %d templates\n",
		health.Status, health.Corpus.Models, health.Corpus.Templates)
}

func generate(server string, req map[string]interface{}) {
	body, _ := json.Marshal(req)

	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Post(server+"/api/generate", "application/json", bytes.NewReader(body))
	if err != nil {
		printError("Request failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		printError("Server error (%d): %s", resp.StatusCode, string(data))
		return
	}

	var out struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		printError("Failed to parse response: %v", err)
		return
	}
	fmt.Println(out.Text)
}

func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "\033[31m"+format+"\033[0m\n", args...)
}
