package suggestions

import (
	"context"
	"errors"

	"github.com/aws/aws-lambda-go/events"
	"philcali.me/groceries/internal/exceptions"
	"philcali.me/groceries/internal/routes"
	"philcali.me/groceries/internal/routes/util"
	"philcali.me/groceries/internal/shopping"
	"philcali.me/groceries/internal/suggestions"
)

type SuggestionInput struct {
	Budget float64         `json:"budget"`
	Items  []shopping.Item `json:"items"`
}

type SuggestionService struct {
	suggestions suggestions.Service
}

func NewRoute(service suggestions.Service) routes.Service {
	return &SuggestionService{
		suggestions: service,
	}
}

func (ss *SuggestionService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"POST:/suggestions": util.AuthorizedRoute(ss.Suggest),
	}
}

func (ss *SuggestionService) Suggest(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input, err := util.ParseBody[SuggestionInput](event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	output, err := ss.suggestions.Suggest(ctx, suggestions.NewInput(input.Items, input.Budget))
	if errors.Is(err, suggestions.ErrUnavailable) {
		err = exceptions.ServiceUnavailable("suggestions", err)
	}
	if err == nil && output.Suggestions == nil {
		output.Suggestions = []string{}
	}
	return util.SerializeResponseOK(util.Identity[suggestions.Output], output, err)
}
