package router

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/walterfan/agentcore/internal/model"
	"github.com/walterfan/agentcore/internal/state"
)

// ChatDomain is one of the three chat sub-agent names the classifier may
// return.
type ChatDomain = string

const (
	DomainLearning    ChatDomain = "learning"
	DomainProductivity ChatDomain = "productivity"
	DomainUtility     ChatDomain = "utility"
)

// chatDomainOrder is the tie-break order applied when a classifier
// response names more than one acceptable label.
var chatDomainOrder = []ChatDomain{DomainLearning, DomainProductivity, DomainUtility}

var chatDomainSet = map[ChatDomain]bool{
	DomainLearning:     true,
	DomainProductivity: true,
	DomainUtility:      true,
}

const classifierPrompt = "Classify the user's most recent message into exactly one of: learning, productivity, utility. Respond with only that single word."

// ChatRouter implements the chat workflow's routing strategy: route to
// END once a sub-agent has answered with no further tool calls,
// otherwise classify the latest user message into one of three domains,
// with a loop-safety fallback once the same message has been routed
// twice.
type ChatRouter struct {
	Client model.Client

	// seen counts how many times the router has classified an identical
	// message hash, to detect and break routing loops.
	seen map[string]int
}

// NewChatRouter constructs a ChatRouter backed by an LLM classifier.
func NewChatRouter(client model.Client) *ChatRouter {
	return &ChatRouter{Client: client, seen: make(map[string]int)}
}

// Next implements Router for the chat workflow.
func (r *ChatRouter) Next(ctx context.Context, s *state.State) (string, error) {
	if lastRespondedSubAgent(s) {
		return state.EndSentinel, nil
	}

	msg, ok := lastUserMessage(s)
	if !ok {
		return state.EndSentinel, nil
	}

	hash := hashMessage(msg)
	r.seen[hash]++
	if r.seen[hash] > 2 {
		return state.EndSentinel, nil
	}

	domain, err := r.classify(ctx, msg)
	if err != nil {
		// A classifier failure, or any response outside the three known
		// domains, defaults to utility.
		return DomainUtility, nil
	}
	return domain, nil
}

// lastRespondedSubAgent reports whether the most recent message is an
// assistant message with no tool calls, produced by a sub-agent node.
func lastRespondedSubAgent(s *state.State) bool {
	if len(s.Messages) == 0 {
		return false
	}
	last := s.Messages[len(s.Messages)-1]
	if last.Role != state.RoleAssistant || len(last.ToolCalls) != 0 {
		return false
	}
	return s.CurrentStep == DomainLearning || s.CurrentStep == DomainProductivity || s.CurrentStep == DomainUtility
}

func lastUserMessage(s *state.State) (string, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == state.RoleUser {
			return s.Messages[i].Content, true
		}
	}
	return "", false
}

func hashMessage(msg string) string {
	sum := sha256.Sum256([]byte(msg))
	return hex.EncodeToString(sum[:])
}

// classify asks the LLM to name exactly one domain, applying the tie-
// break order when the response names more than one acceptable label and
// defaulting to utility when nothing recognisable comes back.
func (r *ChatRouter) classify(ctx context.Context, userMessage string) (ChatDomain, error) {
	req := &model.Request{
		Messages: []*model.Message{
			{Role: model.RoleSystem, Parts: []model.Part{model.TextPart{Text: classifierPrompt}}},
			model.NewUserText(userMessage),
		},
		MaxTokens: 8,
	}
	resp, err := r.Client.Complete(ctx, req)
	if err != nil {
		return DomainUtility, err
	}

	var text string
	for _, m := range resp.Content {
		text += model.Text(&m)
	}
	return pickDomain(text), nil
}

// pickDomain extracts every recognised domain token present in text and
// returns the highest-priority one per the tie-break order, defaulting to
// utility when none are recognised.
func pickDomain(text string) ChatDomain {
	lower := strings.ToLower(text)
	found := make(map[ChatDomain]bool)
	for _, d := range chatDomainOrder {
		if strings.Contains(lower, d) {
			found[d] = true
		}
	}
	for _, d := range chatDomainOrder {
		if found[d] {
			return d
		}
	}
	if chatDomainSet[strings.TrimSpace(lower)] {
		return strings.TrimSpace(lower)
	}
	return DomainUtility
}
