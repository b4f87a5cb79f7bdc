package llm

import (
	"context"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/travel-buddy/lounge-agent/agent/contract"
	openrouterx "github.com/travel-buddy/lounge-agent/pkg/openrouter"
)

// VisionExtractor transcribes boarding-pass images through a vision-capable
// chat model. The output is raw text lines; field recognition happens in the
// tool gateway.
type VisionExtractor struct {
	client *openaisdk.Client
	model  string
	prompt string
}

var _ contractx.FlightDocExtractor = (*VisionExtractor)(nil)

func NewVisionExtractor(cfg openrouterx.Config, systemPrompt string) (*VisionExtractor, error) {
	client := openrouterx.NewClient(cfg)
	if client == nil {
		return nil, fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("%w: vision model is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: vision system prompt", contractx.ErrPromptMissing)
	}
	return &VisionExtractor{
		client: client,
		model:  strings.TrimSpace(cfg.Model),
		prompt: systemPrompt,
	}, nil
}

func (v *VisionExtractor) Extract(ctx context.Context, imageBase64 string) ([]string, error) {
	imageBase64 = strings.TrimSpace(imageBase64)
	if imageBase64 == "" {
		return nil, fmt.Errorf("%w: image payload is empty", contractx.ErrValidation)
	}

	url := imageBase64
	if !strings.HasPrefix(url, "data:") {
		url = "data:image/jpeg;base64," + url
	}

	resp, err := v.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(v.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(v.prompt),
			openaisdk.UserMessage([]openaisdk.ChatCompletionContentPartUnionParam{
				openaisdk.TextContentPart("Transcribe this boarding pass."),
				openaisdk.ImageContentPart(openaisdk.ChatCompletionContentPartImageImageURLParam{URL: url}),
			}),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: vision transcription: %v", contractx.ErrExternal, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: vision model returned no choices", contractx.ErrExternal)
	}

	var lines []string
	for _, line := range strings.Split(resp.Choices[0].Message.Content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
