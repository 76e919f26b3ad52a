package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// StableDiffusionWrapper handles story illustration through the Hugging
// Face Inference API.
type StableDiffusionWrapper struct {
	AccessToken string
}

// GenerateImage sends a prompt to the Stable Diffusion 2 model on Hugging
// Face and saves the resulting image under the working directory. It
// returns the path relative to working/ (the static file root) or an error.
func (s *StableDiffusionWrapper) GenerateImage(prompt string) (string, error) {
	if s.AccessToken == "" {
		return "", fmt.Errorf("missing Hugging Face API token")
	}

	payload := map[string]interface{}{
		"inputs": prompt,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	apiURL := "https://api-inference.huggingface.co/models/stabilityai/stable-diffusion-2"

	req, err := http.NewRequest("POST", apiURL, bytes.NewReader(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode == http.StatusOK && strings.HasPrefix(contentType, "image") {
		dir := "working/storyImages"
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}

		uniqueName := fmt.Sprintf("storyImage_%d.png", time.Now().UnixNano())
		imagePath := filepath.Join(dir, uniqueName)

		file, err := os.Create(imagePath)
		if err != nil {
			return "", fmt.Errorf("failed to create image file: %w", err)
		}
		defer file.Close()

		if _, err = io.Copy(file, resp.Body); err != nil {
			return "", fmt.Errorf("failed to save image: %w", err)
		}

		return strings.TrimPrefix(imagePath, "working/"), nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read error response: %w", err)
	}
	return "", fmt.Errorf("image generation failed: %s", string(body))
}

// AuthenticateHuggingFace verifies the token by making a whoami request.
func AuthenticateHuggingFace(token string) error {
	req, err := http.NewRequest("GET", "https://huggingface.co/api/whoami", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to authenticate with Hugging Face API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("authentication failed: received status code %d", resp.StatusCode)
	}
	return nil
}
