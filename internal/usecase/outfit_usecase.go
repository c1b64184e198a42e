package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/swipestyle/go-backend/internal/domain"
	"github.com/swipestyle/go-backend/pkg/e"
	"github.com/swipestyle/go-backend/pkg/logger"
)

const maxOutfitItems = 5

const outfitSystemPrompt = "Ты стилист. Из списка вещей пользователя собери один цельный образ. " +
	"Используй только идентификаторы из списка, не больше одной вещи на категорию. " +
	"Ответ строго в формате JSON: {\"outfit\": [\"id\", ...], \"reasoning\": \"...\"}."

var outfitJSONRe = regexp.MustCompile(`\{[^{}]*"outfit"\s*:\s*\[[^\]]*\][^{}]*\}`)

// llmOutfitReply описывает ожидаемый JSON-ответ модели.
type llmOutfitReply struct {
	Outfit    []string `json:"outfit"`
	Reasoning string   `json:"reasoning"`
}

// OutfitUseCase собирает образ из лайкнутых пользователем вещей.
type OutfitUseCase struct {
	itemRepo ItemRepository
	prefRepo PreferenceRepository
	llm      LlmInfra
	logger   logger.Logger
}

func NewOutfitUC(
	itemRepo ItemRepository,
	prefRepo PreferenceRepository,
	llm LlmInfra,
	logger logger.Logger,
) *OutfitUseCase {
	return &OutfitUseCase{
		itemRepo: itemRepo,
		prefRepo: prefRepo,
		llm:      llm,
		logger:   logger,
	}
}

// Compose подбирает образ из лайкнутых вещей через LLM с детерминированным фолбэком.
func (o *OutfitUseCase) Compose(ctx context.Context, userID string) (*OutfitRes, error) {
	const op = "OutfitUseCase.Compose"

	if userID == "" {
		return nil, e.Wrap(op, e.ErrMissingUserID)
	}

	liked, err := o.prefRepo.GetLiked(ctx, userID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(liked) < 2 {
		return nil, e.Wrap(op, e.ErrInsufficientLikedItems)
	}

	if o.llm == nil {
		return o.fallbackOutfit(liked), nil
	}

	reply, err := o.llm.Complete(ctx, NewLlmCompletionReq(outfitSystemPrompt, buildOutfitPrompt(liked)))
	if err != nil {
		o.logger.Warnf("LLM compose failed, falling back: %v", e.Wrap(op, err))
		return o.fallbackOutfit(liked), nil
	}

	ids, reasoning, err := parseOutfitReply(reply)
	if err != nil {
		o.logger.Warnf("LLM reply unparseable, falling back: %v", e.Wrap(op, err))
		return o.fallbackOutfit(liked), nil
	}

	outfit := validateOutfit(ids, liked)
	if len(outfit) == 0 {
		return o.fallbackOutfit(liked), nil
	}

	return NewOutfitRes(itemsToInfo(outfit), reasoning, MethodLlm), nil
}

// buildOutfitPrompt формирует пользовательскую часть запроса к модели.
func buildOutfitPrompt(liked []domain.Item) string {
	var sb strings.Builder
	sb.WriteString("Вещи пользователя:\n")
	for _, item := range liked {
		sb.WriteString(fmt.Sprintf("- id=%s category=%s name=%s brand=%s\n", item.ID, item.Category, item.Name, item.Brand))
	}
	return sb.String()
}

// parseOutfitReply разбирает ответ модели: сначала строгий JSON, затем извлечение JSON-фрагмента из текста.
func parseOutfitReply(reply string) ([]string, string, error) {
	var parsed llmOutfitReply
	if err := json.Unmarshal([]byte(reply), &parsed); err == nil && len(parsed.Outfit) > 0 {
		return parsed.Outfit, parsed.Reasoning, nil
	}

	fragment := outfitJSONRe.FindString(reply)
	if fragment == "" {
		return nil, "", e.ErrMalformedLlmReply
	}
	if err := json.Unmarshal([]byte(fragment), &parsed); err != nil || len(parsed.Outfit) == 0 {
		return nil, "", e.ErrMalformedLlmReply
	}

	return parsed.Outfit, parsed.Reasoning, nil
}

// validateOutfit оставляет только идентификаторы из лайкнутых вещей, не больше одной вещи на категорию.
func validateOutfit(ids []string, liked []domain.Item) []domain.Item {
	likedByID := make(map[string]domain.Item, len(liked))
	for _, item := range liked {
		likedByID[item.ID] = item
	}

	seenCategories := make(map[string]struct{})
	outfit := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		item, ok := likedByID[id]
		if !ok {
			continue
		}
		if _, dup := seenCategories[item.Category]; dup {
			continue
		}
		seenCategories[item.Category] = struct{}{}
		outfit = append(outfit, item)
	}

	return outfit
}

// fallbackOutfit собирает образ без LLM: первая лайкнутая вещь из каждой категории.
func (o *OutfitUseCase) fallbackOutfit(liked []domain.Item) *OutfitRes {
	seenCategories := make(map[string]struct{})
	outfit := make([]domain.Item, 0, maxOutfitItems)
	for _, item := range liked {
		if _, dup := seenCategories[item.Category]; dup {
			continue
		}
		seenCategories[item.Category] = struct{}{}
		outfit = append(outfit, item)
		if len(outfit) == maxOutfitItems {
			break
		}
	}

	return NewOutfitRes(itemsToInfo(outfit), "Подобрано по одной вещи из каждой категории", MethodFallback)
}

func itemsToInfo(items []domain.Item) []ItemInfo {
	infos := make([]ItemInfo, 0, len(items))
	for i := range items {
		infos = append(infos, itemToInfo(&items[i]))
	}
	return infos
}
