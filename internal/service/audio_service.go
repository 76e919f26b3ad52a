package service

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wordspark-backend/internal/repository"
	logger "wordspark-backend/pkg/logging"
	"wordspark-backend/utilities"
)

type AudioService interface {
	PronounceItem(userID, itemID uint) (string, error)
	SynthesizeText(text string) (string, error)
}

type audioService struct {
	vocabRepo repository.VocabRepository
	storyRepo repository.StoryRepository
	ttsURL    string
}

func NewAudioService(vocabRepo repository.VocabRepository, storyRepo repository.StoryRepository, ttsURL string) AudioService {
	return &audioService{
		vocabRepo: vocabRepo,
		storyRepo: storyRepo,
		ttsURL:    ttsURL,
	}
}

// InitAudioEventListeners pre-generates narration for every bit of a story
// once it is ready. Each bit is best effort; a failed clip leaves the bit
// silent, not the story broken.
func InitAudioEventListeners(vocabRepo repository.VocabRepository, storyRepo repository.StoryRepository, ttsURL string) {
	utilities.GlobalEventBus.Subscribe(utilities.EventStoryGenerated, func(data interface{}) {
		storyID, ok := data.(uint)
		if !ok {
			logger.Warn("Invalid story ID received for audio generation")
			return
		}

		svc := &audioService{vocabRepo: vocabRepo, storyRepo: storyRepo, ttsURL: ttsURL}
		story, err := storyRepo.GetStoryWithBits(storyID)
		if err != nil {
			logger.Error("Audio pregeneration: failed to load story %d: %v", storyID, err)
			return
		}
		for _, bit := range story.Bits {
			path, err := svc.synthesize(bit.Text, fmt.Sprintf("bit_%d", bit.ID))
			if err != nil {
				logger.Warn("Audio pregeneration for bit %d failed: %v", bit.ID, err)
				continue
			}
			if err := storyRepo.UpdateBitAudio(bit.ID, path); err != nil {
				logger.Error("Failed to save audio URL for bit %d: %v", bit.ID, err)
			}
		}
		logger.Info("Audio pregeneration finished for story %d", storyID)
	})
}

// PronounceItem synthesizes the answer side of a vocabulary item and returns
// the clip path relative to working/. The clip is cached per item; a second
// request serves the existing file.
func (s *audioService) PronounceItem(userID, itemID uint) (string, error) {
	item, err := s.vocabRepo.GetItemByID(itemID)
	if err != nil {
		return "", err
	}
	list, err := s.vocabRepo.GetListByID(item.ListID)
	if err != nil {
		return "", err
	}
	if list.UserID != userID {
		return "", ErrNotOwner
	}

	name := fmt.Sprintf("item_%d", item.ID)
	cached := filepath.Join("working/storyAudio", name+".wav")
	if _, err := os.Stat(cached); err == nil {
		return strings.TrimPrefix(cached, "working/"), nil
	}
	return s.synthesize(item.Answer, name)
}

// SynthesizeText speaks arbitrary text, e.g. a full story bit requested
// from the reader view.
func (s *audioService) SynthesizeText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("nothing to synthesize")
	}
	return s.synthesize(text, fmt.Sprintf("tts_%d", time.Now().UnixNano()))
}

// synthesize posts text to the TTS sidecar and stores the returned WAV under
// the static file root.
func (s *audioService) synthesize(text, name string) (string, error) {
	if s.ttsURL == "" {
		return "", fmt.Errorf("no TTS service configured")
	}

	formData := url.Values{"text": {text}}
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.PostForm(s.ttsURL, formData)
	if err != nil {
		return "", fmt.Errorf("TTS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("TTS service returned status: %s, body: %s", resp.Status, string(body))
	}

	dir := "working/storyAudio"
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}
	outPath := filepath.Join(dir, name+".wav")
	file, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create audio file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return "", fmt.Errorf("failed to save audio: %w", err)
	}
	return strings.TrimPrefix(outPath, "working/"), nil
}
