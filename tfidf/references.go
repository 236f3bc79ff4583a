package tfidf

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/fwojciec/promptvault"
)

// Reference categories shipped with DefaultReferencePrompts.
const (
	CategoryImages      = "Создание изображений"
	CategoryCode        = "Написание кода"
	CategorySummarizing = "Анализ и суммаризация текста"
	CategoryTranslation = "Перевод"
)

var defaultReferences = map[string][]string{
	CategoryImages: {
		"Нарисуй кота в стиле аниме на фоне ночного города",
		"Нарисуй реалистичный портрет девушки, фотография, 4k",
		"Нарисуй собаку, сидящую в парке, акварель",
		"Сгенерируй изображение: нарисуй космический корабль на орбите луны",
	},
	CategoryCode: {
		"Напиши функцию на Python, которая сортирует список",
		"Создай REST API на Go с обработкой ошибок",
		"Напиши SQL запрос для выборки пользователей по дате регистрации",
		"Исправь ошибку в этом коде JavaScript и объясни причину",
	},
	CategorySummarizing: {
		"Сделай краткое содержание статьи в пяти пунктах",
		"Проанализируй текст и выдели основные идеи",
		"Суммаризируй этот документ, сохранив ключевые факты",
		"Определи тональность отзыва и перечисли аргументы автора",
	},
	CategoryTranslation: {
		"Переведи текст с английского на русский",
		"Переведи это письмо на немецкий язык, сохранив деловой стиль",
		"Translate the following text into French",
		"Сделай литературный перевод стихотворения на испанский",
	},
}

// DefaultReferencePrompts returns the built-in labelled reference set:
// four examples in each of four categories.
func DefaultReferencePrompts() []promptvault.ReferencePrompt {
	categories := []string{CategoryImages, CategoryCode, CategorySummarizing, CategoryTranslation}

	var refs []promptvault.ReferencePrompt
	for _, cat := range categories {
		for _, text := range defaultReferences[cat] {
			refs = append(refs, promptvault.ReferencePrompt{
				ID:       "ref-" + strconv.Itoa(len(refs)+1),
				Category: cat,
				Text:     text,
			})
		}
	}
	return refs
}

// LoadReferencePrompts reads a JSON array of reference prompts from path.
// Entries without text or category are rejected.
func LoadReferencePrompts(path string) ([]promptvault.ReferencePrompt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference prompts: %w", err)
	}

	var refs []promptvault.ReferencePrompt
	if err := json.Unmarshal(data, &refs); err != nil {
		return nil, promptvault.Errorf(promptvault.EINVALID, "invalid reference prompts: %v", err)
	}

	for i := range refs {
		if refs[i].Text == "" || refs[i].Category == "" {
			return nil, promptvault.Errorf(promptvault.EINVALID, "reference prompt %d: text and category required", i)
		}
		if refs[i].ID == "" {
			refs[i].ID = "ref-" + strconv.Itoa(i+1)
		}
	}
	return refs, nil
}
