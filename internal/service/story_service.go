package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"wordspark-backend/internal/llm"
	"wordspark-backend/internal/model"
	"wordspark-backend/internal/repository"
	logger "wordspark-backend/pkg/logging"
	"wordspark-backend/utilities"
)

type StoryService interface {
	GenerateStory(userID, listID uint) (*model.Story, error)
	GetStory(userID, storyID uint) (*model.Story, error)
	GetStories(userID uint) ([]model.Story, error)
	DeleteStory(userID, storyID uint) error
	ExportBook(userID, storyID uint) (string, error)
}

type storyService struct {
	storyRepo       repository.StoryRepository
	vocabRepo       repository.VocabRepository
	llmClient       llm.Client
	diffusionClient *llm.StableDiffusionWrapper
	bus             *utilities.EventBus
}

func NewStoryService(
	storyRepo repository.StoryRepository,
	vocabRepo repository.VocabRepository,
	llmClient llm.Client,
	diffusionClient *llm.StableDiffusionWrapper,
	bus *utilities.EventBus,
) StoryService {
	return &storyService{
		storyRepo:       storyRepo,
		vocabRepo:       vocabRepo,
		llmClient:       llmClient,
		diffusionClient: diffusionClient,
		bus:             bus,
	}
}

var storySchema = &llm.Schema{
	Name: "story",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"bits": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text": map[string]any{"type": "string"},
					},
					"required": []any{"text"},
				},
			},
		},
		"required": []any{"title", "bits"},
	},
}

// GenerateStory creates the story row in status generating and returns it
// immediately; text and images are produced in the background. The bits are
// attached and the status flipped to ready in one transaction, so a crash
// mid-pipeline leaves a bitless generating row the scheduler later fails.
func (s *storyService) GenerateStory(userID, listID uint) (*model.Story, error) {
	if s.llmClient == nil {
		return nil, fmt.Errorf("no LLM client configured")
	}
	list, err := s.vocabRepo.GetListByID(listID)
	if err != nil {
		return nil, err
	}
	if list.UserID != userID {
		return nil, ErrNotOwner
	}
	if len(list.Items) == 0 {
		return nil, fmt.Errorf("list has no items to build a story from")
	}

	story := &model.Story{
		UserID: userID,
		ListID: listID,
		Status: "generating",
	}
	if err := s.storyRepo.CreateStory(story); err != nil {
		return nil, fmt.Errorf("failed to create story: %w", err)
	}

	go s.runPipeline(story.ID, list)
	return story, nil
}

func (s *storyService) runPipeline(storyID uint, list *model.VocabList) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	title, bits, err := s.generateText(ctx, list)
	if err != nil {
		logger.Error("Story %d text generation failed: %v", storyID, err)
		if uerr := s.storyRepo.UpdateStatus(storyID, "failed"); uerr != nil {
			logger.Error("Story %d status update failed: %v", storyID, uerr)
		}
		return
	}

	// Illustrations are best effort. A bit without an image still reads.
	if s.diffusionClient != nil && s.diffusionClient.AccessToken != "" {
		for i := range bits {
			prompt := "Warm storybook illustration, soft colors, simple scene for a language learner. Scene: " + bits[i].Text
			path, err := s.diffusionClient.GenerateImage(prompt)
			if err != nil {
				logger.Warn("Story %d bit %d image generation failed: %v", storyID, i, err)
				continue
			}
			bits[i].ImageURL = path
		}
	}

	if title != "" {
		if err := s.storyRepo.UpdateTitle(storyID, title); err != nil {
			logger.Warn("Story %d title update failed: %v", storyID, err)
		}
	}
	if err := s.storyRepo.AttachBitsAndFinish(storyID, bits); err != nil {
		logger.Error("Story %d finalize failed: %v", storyID, err)
		if uerr := s.storyRepo.UpdateStatus(storyID, "failed"); uerr != nil {
			logger.Error("Story %d status update failed: %v", storyID, uerr)
		}
		return
	}

	if s.bus != nil {
		s.bus.Publish(utilities.EventStoryGenerated, storyID)
	}
	logger.Info("Story %d generated with %d bits", storyID, len(bits))
}

// generateText asks the LLM for one short passage per vocabulary item, in
// list order, each weaving its item's answer into the text.
func (s *storyService) generateText(ctx context.Context, list *model.VocabList) (string, []model.StoryBit, error) {
	var words []string
	for _, item := range list.Items {
		words = append(words, item.Answer)
	}

	prompt := fmt.Sprintf(
		"Write a short story in %s for a language learner. The story is split into exactly %d passages of one or two "+
			"sentences each. Passage N must naturally use vocabulary word number N from this ordered list: %s. "+
			"Respond with JSON only: {\"title\": string, \"bits\": [{\"text\": string}]} with exactly %d bits.",
		list.TargetLang, len(list.Items), strings.Join(words, ", "), len(list.Items))

	raw, err := s.llmClient.GenerateJSON(ctx, prompt, storySchema)
	if err != nil {
		return "", nil, err
	}

	var payload struct {
		Title string `json:"title"`
		Bits  []struct {
			Text string `json:"text"`
		} `json:"bits"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", nil, fmt.Errorf("failed to decode story: %w", err)
	}
	if len(payload.Bits) == 0 {
		return "", nil, fmt.Errorf("model returned an empty story")
	}

	bits := make([]model.StoryBit, len(payload.Bits))
	for i, b := range payload.Bits {
		bit := model.StoryBit{Position: i + 1, Text: b.Text}
		if i < len(list.Items) {
			bit.ItemID = list.Items[i].ID
		}
		bits[i] = bit
	}
	return payload.Title, bits, nil
}

func (s *storyService) GetStory(userID, storyID uint) (*model.Story, error) {
	story, err := s.storyRepo.GetStoryWithBits(storyID)
	if err != nil {
		return nil, err
	}
	if story.UserID != userID {
		return nil, ErrNotOwner
	}
	return story, nil
}

func (s *storyService) GetStories(userID uint) ([]model.Story, error) {
	return s.storyRepo.GetStoriesByUser(userID)
}

func (s *storyService) DeleteStory(userID, storyID uint) error {
	if _, err := s.GetStory(userID, storyID); err != nil {
		return err
	}
	return s.storyRepo.DeleteStory(storyID)
}

// ExportBook renders the story as a picture-book PDF: one page per bit with
// the illustration (or an empty frame when generation failed) and the text
// underneath. Returns the path relative to working/.
func (s *storyService) ExportBook(userID, storyID uint) (string, error) {
	story, err := s.GetStory(userID, storyID)
	if err != nil {
		return "", err
	}
	if story.Status != "ready" {
		return "", fmt.Errorf("story is not ready (status: %s)", story.Status)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "B", 16)
	pdf.AddPage()
	pdf.Cell(40, 10, story.Title)
	pdf.Ln(20)

	for _, bit := range story.Bits {
		pdf.SetFont("Arial", "", 12)

		if bit.ImageURL != "" {
			imgPath := filepath.Join("working", bit.ImageURL)
			if _, err := os.Stat(imgPath); err == nil {
				pdf.Image(imgPath, 10, pdf.GetY(), 180, 100, false, "", 0, "")
				pdf.Ln(105)
			} else {
				pdf.Rect(10, pdf.GetY(), 180, 100, "D")
				pdf.Ln(105)
			}
		} else {
			pdf.Rect(10, pdf.GetY(), 180, 100, "D")
			pdf.Ln(105)
		}

		pdf.MultiCell(0, 10, bit.Text, "", "L", false)
		pdf.AddPage()
	}

	if err := os.MkdirAll("working/books", os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join("working/books", fmt.Sprintf("book_%d.pdf", story.ID))
	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return "", fmt.Errorf("failed to save PDF: %w", err)
	}
	return strings.TrimPrefix(outputPath, "working/"), nil
}
