package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"wordspark-backend/internal/llm"
	"wordspark-backend/internal/model"
	"wordspark-backend/internal/repository"
	logger "wordspark-backend/pkg/logging"
)

// ItemInput is one prompt/answer pair supplied by a client or the LLM.
type ItemInput struct {
	Prompt string `json:"prompt" binding:"required"`
	Answer string `json:"answer" binding:"required"`
}

// ImportResult summarizes an xlsx import: how many rows were looked at, how
// many became items, and what was wrong with the rest.
type ImportResult struct {
	TotalProcessed int      `json:"total_processed"`
	Created        int      `json:"created"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors,omitempty"`
}

type VocabService interface {
	CreateList(userID uint, list *model.VocabList, items []ItemInput) error
	GetLists(userID uint) ([]model.VocabList, error)
	GetList(userID, listID uint) (*model.VocabList, error)
	UpdateList(userID uint, list *model.VocabList) error
	DeleteList(userID, listID uint) error
	AddItem(userID, listID uint, input ItemInput) (*model.VocabItem, error)
	RemoveItem(userID, listID, itemID uint) error
	ImportFromExcel(userID, listID uint, r io.Reader) (*ImportResult, error)
	GenerateList(ctx context.Context, userID uint, topic, sourceLang, targetLang string, count int) (*model.VocabList, error)
	ExportPracticeSheet(userID, listID uint) (string, error)
}

type vocabService struct {
	vocabRepo repository.VocabRepository
	llmClient llm.Client
}

func NewVocabService(vocabRepo repository.VocabRepository, llmClient llm.Client) VocabService {
	return &vocabService{vocabRepo: vocabRepo, llmClient: llmClient}
}

func (s *vocabService) CreateList(userID uint, list *model.VocabList, items []ItemInput) error {
	list.UserID = userID
	if err := s.vocabRepo.CreateList(list); err != nil {
		return fmt.Errorf("failed to create list: %w", err)
	}
	if len(items) == 0 {
		return nil
	}
	rows := make([]model.VocabItem, 0, len(items))
	pos := 1
	for _, in := range items {
		prompt, answer := strings.TrimSpace(in.Prompt), strings.TrimSpace(in.Answer)
		if prompt == "" || answer == "" {
			continue
		}
		rows = append(rows, model.VocabItem{ListID: list.ID, Prompt: prompt, Answer: answer, Position: pos})
		pos++
	}
	if err := s.vocabRepo.AddItems(rows); err != nil {
		return fmt.Errorf("failed to store items: %w", err)
	}
	list.Items = rows
	return nil
}

func (s *vocabService) GetLists(userID uint) ([]model.VocabList, error) {
	return s.vocabRepo.GetListsByUser(userID)
}

func (s *vocabService) GetList(userID, listID uint) (*model.VocabList, error) {
	list, err := s.vocabRepo.GetListByID(listID)
	if err != nil {
		return nil, err
	}
	if list.UserID != userID {
		return nil, ErrNotOwner
	}
	return list, nil
}

func (s *vocabService) UpdateList(userID uint, list *model.VocabList) error {
	if _, err := s.GetList(userID, list.ID); err != nil {
		return err
	}
	return s.vocabRepo.UpdateList(list)
}

func (s *vocabService) DeleteList(userID, listID uint) error {
	if _, err := s.GetList(userID, listID); err != nil {
		return err
	}
	return s.vocabRepo.DeleteList(listID)
}

func (s *vocabService) AddItem(userID, listID uint, input ItemInput) (*model.VocabItem, error) {
	if _, err := s.GetList(userID, listID); err != nil {
		return nil, err
	}
	pos, err := s.vocabRepo.NextPosition(listID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute position: %w", err)
	}
	item := &model.VocabItem{
		ListID:   listID,
		Prompt:   strings.TrimSpace(input.Prompt),
		Answer:   strings.TrimSpace(input.Answer),
		Position: pos,
	}
	if item.Prompt == "" || item.Answer == "" {
		return nil, fmt.Errorf("prompt and answer cannot be empty")
	}
	if err := s.vocabRepo.AddItem(item); err != nil {
		return nil, fmt.Errorf("failed to store item: %w", err)
	}
	return item, nil
}

func (s *vocabService) RemoveItem(userID, listID, itemID uint) error {
	if _, err := s.GetList(userID, listID); err != nil {
		return err
	}
	item, err := s.vocabRepo.GetItemByID(itemID)
	if err != nil {
		return err
	}
	if item.ListID != listID {
		return ErrNotOwner
	}
	return s.vocabRepo.RemoveItem(itemID)
}

// ImportFromExcel appends rows from the first sheet of an xlsx workbook:
// column A is the prompt, column B the answer. A header row is detected and
// skipped; rows missing either column are reported, not fatal.
func (s *vocabService) ImportFromExcel(userID, listID uint, r io.Reader) (*ImportResult, error) {
	if _, err := s.GetList(userID, listID); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	pos, err := s.vocabRepo.NextPosition(listID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute position: %w", err)
	}

	result := &ImportResult{Errors: make([]string, 0)}
	var items []model.VocabItem
	for i, row := range rows {
		if i == 0 && looksLikeHeader(row) {
			continue
		}
		result.TotalProcessed++

		var prompt, answer string
		if len(row) > 0 {
			prompt = strings.TrimSpace(row[0])
		}
		if len(row) > 1 {
			answer = strings.TrimSpace(row[1])
		}
		if prompt == "" || answer == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: missing prompt or answer", i+1))
			continue
		}

		items = append(items, model.VocabItem{ListID: listID, Prompt: prompt, Answer: answer, Position: pos})
		pos++
		result.Created++
	}

	if err := s.vocabRepo.AddItems(items); err != nil {
		return nil, fmt.Errorf("failed to store imported items: %w", err)
	}
	logger.Info("Imported %d items into list %d (%d skipped)", result.Created, listID, result.Skipped)
	return result, nil
}

func looksLikeHeader(row []string) bool {
	if len(row) < 2 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(row[0]))
	second := strings.ToLower(strings.TrimSpace(row[1]))
	headers := map[string]bool{"prompt": true, "word": true, "term": true, "answer": true, "translation": true, "meaning": true}
	return headers[first] || headers[second]
}

var generatedListSchema = &llm.Schema{
	Name: "generated_list",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"prompt": map[string]any{"type": "string"},
						"answer": map[string]any{"type": "string"},
					},
					"required": []any{"prompt", "answer"},
				},
			},
		},
		"required": []any{"title", "items"},
	},
}

// GenerateList asks the LLM for a themed word list and stores it. The model
// answers in validated JSON, so a malformed response fails here rather than
// producing a half-filled list.
func (s *vocabService) GenerateList(ctx context.Context, userID uint, topic, sourceLang, targetLang string, count int) (*model.VocabList, error) {
	if s.llmClient == nil {
		return nil, fmt.Errorf("no LLM client configured")
	}
	if count <= 0 {
		count = 10
	}

	prompt := fmt.Sprintf(
		"Create a vocabulary list of exactly %d word pairs for a learner studying %s whose native language is %s. "+
			"Theme: %s. Respond with JSON only: {\"title\": string, \"items\": [{\"prompt\": string, \"answer\": string}]}. "+
			"The prompt is the %s word, the answer is its %s translation. Single words or short phrases only.",
		count, targetLang, sourceLang, topic, sourceLang, targetLang)

	raw, err := s.llmClient.GenerateJSON(ctx, prompt, generatedListSchema)
	if err != nil {
		return nil, fmt.Errorf("list generation failed: %w", err)
	}

	var payload struct {
		Title string `json:"title"`
		Items []struct {
			Prompt string `json:"prompt"`
			Answer string `json:"answer"`
		} `json:"items"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode generated list: %w", err)
	}

	list := &model.VocabList{
		Title:       payload.Title,
		Description: fmt.Sprintf("Generated list: %s", topic),
		SourceLang:  sourceLang,
		TargetLang:  targetLang,
	}
	inputs := make([]ItemInput, len(payload.Items))
	for i, it := range payload.Items {
		inputs[i] = ItemInput{Prompt: it.Prompt, Answer: it.Answer}
	}
	if err := s.CreateList(userID, list, inputs); err != nil {
		return nil, err
	}
	return list, nil
}

// ExportPracticeSheet renders the list as a printable PDF: each prompt with
// a ruled line where the answer goes. Returns the path relative to working/
// (the static file root).
func (s *vocabService) ExportPracticeSheet(userID, listID uint) (string, error) {
	list, err := s.GetList(userID, listID)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "B", 16)
	pdf.AddPage()

	pdf.Cell(40, 10, list.Title)
	pdf.Ln(16)

	pdf.SetFont("Arial", "", 12)
	for i, item := range list.Items {
		pdf.Cell(80, 10, fmt.Sprintf("%d. %s", i+1, item.Prompt))
		y := pdf.GetY()
		pdf.Line(100, y+8, 190, y+8)
		pdf.Ln(14)
		if pdf.GetY() > 270 {
			pdf.AddPage()
		}
	}

	if err := os.MkdirAll("working/sheets", os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join("working/sheets", fmt.Sprintf("sheet_%d.pdf", list.ID))
	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return "", fmt.Errorf("failed to save PDF: %w", err)
	}
	return strings.TrimPrefix(outputPath, "working/"), nil
}
