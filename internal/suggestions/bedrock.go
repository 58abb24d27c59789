package suggestions

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const DefaultModel = "anthropic.claude-3-haiku-20240307-v1:0"

var tracer = otel.Tracer("philcali.me/groceries/suggestions")

type ConverseClient interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type Bedrock struct {
	Client    ConverseClient
	ModelId   string
	MaxTokens int32
	Limit     int
	Log       logrus.FieldLogger
}

func NewBedrock(client ConverseClient, modelId string, log logrus.FieldLogger) *Bedrock {
	if modelId == "" {
		modelId = DefaultModel
	}
	return &Bedrock{
		Client:    client,
		ModelId:   modelId,
		MaxTokens: 512,
		Limit:     MaxSuggestions,
		Log:       log.WithField("module", "suggestions"),
	}
}

func (b *Bedrock) fail(span trace.Span, phase string, err error) (Output, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, phase)
	b.Log.WithFields(logrus.Fields{
		"funcName": "Suggest",
		"phase":    phase,
	}).Error(err.Error())
	return Output{}, ErrUnavailable
}

// Suggest makes one Converse call. Failures are not retried.
func (b *Bedrock) Suggest(ctx context.Context, input Input) (Output, error) {
	ctx, span := tracer.Start(ctx, "suggestions.Suggest", trace.WithAttributes(
		attribute.String("ai.model", b.ModelId),
		attribute.Int("list.items", len(input.Items)),
	))
	defer span.End()
	prompt, err := renderPrompt(input, b.Limit)
	if err != nil {
		return b.fail(span, "prompt", err)
	}
	output, err := b.Client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(b.ModelId),
		System: []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: systemPrompt},
		},
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: prompt},
				},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens: aws.Int32(b.MaxTokens),
		},
	})
	if err != nil {
		return b.fail(span, "converse", err)
	}
	message, ok := output.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return b.fail(span, "response", fmt.Errorf("unexpected output type %T", output.Output))
	}
	var text strings.Builder
	for _, block := range message.Value.Content {
		if t, ok := block.(*types.ContentBlockMemberText); ok {
			text.WriteString(t.Value)
		}
	}
	raw, err := parseAnswer(text.String())
	if err != nil {
		return b.fail(span, "parse", err)
	}
	suggestions := Filter(raw, input, b.Limit)
	span.SetAttributes(attribute.Int("suggestions.count", len(suggestions)))
	return Output{Suggestions: suggestions}, nil
}
