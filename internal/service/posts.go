package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/brandforge/content-engine/api/internal/dto"
	"github.com/brandforge/content-engine/api/internal/entity"
	"github.com/brandforge/content-engine/api/internal/repository"
)

// ErrGenerationUnavailable indicates the synchronous generator has no model
// client configured.
var ErrGenerationUnavailable = errors.New("post generation is not configured")

// ChatCompleter abstracts the OpenAI chat API to simplify testing.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// PostsService exposes the posts library and the synchronous generator. The
// asynchronous post-generation workflow is handled by WorkflowService; this
// path trades quality controls for an immediate response.
type PostsService struct {
	repo      repository.PostsRepository
	profiles  repository.ProfilesRepository
	completer ChatCompleter
	model     string
}

// NewPostsService creates a new instance of PostsService. A nil completer
// disables synchronous generation.
func NewPostsService(repo repository.PostsRepository, profiles repository.ProfilesRepository, completer ChatCompleter) *PostsService {
	return &PostsService{
		repo:      repo,
		profiles:  profiles,
		completer: completer,
		model:     openai.GPT4oMini,
	}
}

// ListPosts returns the caller's posts respecting pagination defaults.
func (s *PostsService) ListPosts(ctx context.Context, userID uuid.UUID, filter dto.PostListFilter) ([]entity.Post, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}
	return s.repo.ListByUser(ctx, userID, filter)
}

// UpdatePost patches a post the caller owns.
func (s *PostsService) UpdatePost(ctx context.Context, id, userID uuid.UUID, req dto.UpdatePostRequest) (*entity.Post, error) {
	if req.Status != nil {
		switch *req.Status {
		case entity.PostStatusDraft, entity.PostStatusScheduled, entity.PostStatusPublished:
		default:
			return nil, ValidationError{Message: fmt.Sprintf("unknown post status %q", *req.Status)}
		}
	}
	return s.repo.Update(ctx, id, userID, req)
}

// generatedDraft is the shape the model is instructed to answer with.
type generatedDraft struct {
	Platform string   `json:"platform"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Hashtags []string `json:"hashtags"`
}

// GenerateNow produces drafts synchronously, one per requested platform, and
// stores them immediately. Unlike the workflow path there is no session to
// poll; the drafts come back in the response.
func (s *PostsService) GenerateNow(ctx context.Context, userID uuid.UUID, req dto.PostGenerationRequest) ([]entity.Post, error) {
	if s.completer == nil {
		return nil, ErrGenerationUnavailable
	}
	if len(req.Platforms) == 0 {
		return nil, ValidationError{Message: "platforms is required"}
	}
	if strings.TrimSpace(req.Topic) == "" {
		return nil, ValidationError{Message: "topic is required"}
	}

	systemPrompt := s.systemPrompt(ctx, userID)

	resp, err := s.completer.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(req)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	drafts := parseDrafts(resp.Choices[0].Message.Content, req.Platforms)

	posts := make([]entity.Post, 0, len(drafts))
	for _, draft := range drafts {
		post := &entity.Post{
			UserID:      userID,
			Platform:    draft.Platform,
			Content:     draft.Content,
			Hashtags:    draft.Hashtags,
			Status:      entity.PostStatusDraft,
			AIGenerated: true,
		}
		if draft.Title != "" {
			title := draft.Title
			post.Title = &title
		}
		stored, err := s.repo.Insert(ctx, post)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *stored)
	}
	return posts, nil
}

func (s *PostsService) systemPrompt(ctx context.Context, userID uuid.UUID) string {
	var b strings.Builder
	b.WriteString("You are a social media copywriter. Answer with a JSON object of the form ")
	b.WriteString(`{"posts": [{"platform": "...", "title": "...", "content": "...", "hashtags": ["..."]}]}`)
	b.WriteString(" containing exactly one post per requested platform.")

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return b.String()
	}
	b.WriteString(fmt.Sprintf(" The company is %s.", profile.CompanyName))
	if profile.BusinessOverview != nil {
		b.WriteString(" Business overview: " + *profile.BusinessOverview)
	}
	if profile.ValueProposition != nil {
		b.WriteString(" Value proposition: " + *profile.ValueProposition)
	}
	if len(profile.BrandVoiceAnalysis) > 0 {
		b.WriteString(" Match this brand voice: " + string(profile.BrandVoiceAnalysis))
	}
	return b.String()
}

func userPrompt(req dto.PostGenerationRequest) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Write one post about %q for each of these platforms: %s.", req.Topic, strings.Join(req.Platforms, ", ")))
	if len(req.Keywords) > 0 {
		b.WriteString(" Include the keywords: " + strings.Join(req.Keywords, ", ") + ".")
	}
	if req.Tone != "" {
		b.WriteString(" Tone: " + req.Tone + ".")
	}
	if req.Length != "" {
		b.WriteString(" Length: " + req.Length + ".")
	}
	if req.IncludeHashtags {
		b.WriteString(" Include relevant hashtags.")
	}
	if req.IncludeEmojis {
		b.WriteString(" Use emojis where natural.")
	}
	if req.CustomInstructions != "" {
		b.WriteString(" " + req.CustomInstructions)
	}
	return b.String()
}

// parseDrafts decodes the model answer, falling back to a single plain-text
// draft per platform when the answer is not the requested JSON shape.
func parseDrafts(content string, platforms []string) []generatedDraft {
	var wrapper struct {
		Posts []generatedDraft `json:"posts"`
	}
	if err := json.Unmarshal([]byte(content), &wrapper); err == nil && len(wrapper.Posts) > 0 {
		drafts := make([]generatedDraft, 0, len(wrapper.Posts))
		for _, draft := range wrapper.Posts {
			if draft.Content == "" {
				continue
			}
			if draft.Platform == "" && len(platforms) > 0 {
				draft.Platform = platforms[0]
			}
			drafts = append(drafts, draft)
		}
		if len(drafts) > 0 {
			return drafts
		}
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	drafts := make([]generatedDraft, 0, len(platforms))
	for _, platform := range platforms {
		drafts = append(drafts, generatedDraft{Platform: platform, Content: content})
	}
	return drafts
}
