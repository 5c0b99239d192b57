package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
)

// templateVar binds a message token to the query that resolves it for a user.
// Tokens are registered here; anything else in a template stays literal.
type templateVar struct {
	token   string
	resolve func(ctx context.Context, userID int64) (int64, error)
}

func (s *Usecase) templateVars() []templateVar {
	return []templateVar{
		{token: "{todoCount}", resolve: s.repoDB.CountPendingTodos},
		{token: "{ideaCount}", resolve: s.repoDB.CountIdeas},
		{token: "{noteCount}", resolve: s.repoDB.CountNotes},
	}
}

// renderMessage expands the registered tokens in a message template with live
// per-user values. Only tokens present in the template are resolved, and a
// failing resolver leaves its token in place rather than dropping the message.
func (s *Usecase) renderMessage(ctx context.Context, userID int64, tpl string) string {
	out := tpl
	for _, v := range s.templateVars() {
		if !strings.Contains(out, v.token) {
			continue
		}

		count, err := v.resolve(ctx, userID)
		if err != nil {
			slog.WarnContext(ctx, "failed to resolve template variable",
				"token", v.token, "user_id", userID, "error", err)
			continue
		}

		out = strings.ReplaceAll(out, v.token, strconv.FormatInt(count, 10))
	}

	return out
}
