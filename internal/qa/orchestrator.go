package qa

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/con169/smart-textbook/internal/chunker"
	"github.com/con169/smart-textbook/internal/document"
	"github.com/con169/smart-textbook/internal/llm"
)

// ErrNoDocument is returned when QA is attempted before any upload.
var ErrNoDocument = errors.New("no document loaded")

// Completer is the single LLM operation the orchestrator needs.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Orchestrator turns a question plus the current document into one or more
// completion calls. Provider failures pass through untouched so the API
// boundary can map rate limits separately; nothing is retried here.
type Orchestrator struct {
	client          Completer
	tokenBudget     int
	relevanceFilter bool
	log             *slog.Logger
}

func NewOrchestrator(client Completer, tokenBudget int, relevanceFilter bool, log *slog.Logger) *Orchestrator {
	if tokenBudget <= 0 {
		tokenBudget = chunker.DefaultTokenBudget
	}
	return &Orchestrator{
		client:          client,
		tokenBudget:     tokenBudget,
		relevanceFilter: relevanceFilter,
		log:             log,
	}
}

// Result is an answered question with the context bookkeeping the API
// reports back.
type Result struct {
	Answer      string
	ContextUsed bool
	Context     string // range description, empty in whole-document mode
}

// Ask answers a question about the document. With a page the context window
// is page-selected and each chunk is answered independently, in order.
// Page 0 means no page was given: the whole document is chunked, and when
// the relevance filter is on each chunk costs one classification call before
// the final answer call over the relevant ones. Any other out-of-range page,
// negative included, is an InvalidPageError.
func (o *Orchestrator) Ask(ctx context.Context, doc *document.Document, question string, page int) (Result, error) {
	if doc == nil {
		return Result{}, ErrNoDocument
	}
	if page != 0 {
		return o.askWithContext(ctx, doc, question, page)
	}
	return o.askWholeDocument(ctx, doc, question)
}

func (o *Orchestrator) askWithContext(ctx context.Context, doc *document.Document, question string, page int) (Result, error) {
	sel, err := SelectContext(doc, question, page)
	if err != nil {
		return Result{}, err
	}

	chunks := chunker.Split(sel.Text, o.tokenBudget)
	o.log.Info("answering with selected context",
		"range", sel.Description,
		"chunks", len(chunks),
	)

	// Each chunk is answered independently; answers are concatenated in
	// chunk order. There is no cross-chunk synthesis.
	var answers []string
	for _, chunk := range chunks {
		answer, err := o.client.Complete(ctx, llm.Request{
			Messages: []llm.Message{
				{Role: "system", Content: answerSystemPrompt},
				{Role: "user", Content: answerPrompt(question, chunk)},
			},
			Temperature: 0.7,
			MaxTokens:   1000,
		})
		if err != nil {
			return Result{}, err
		}
		answers = append(answers, answer)
	}

	return Result{
		Answer:      strings.Join(answers, "\n\n"),
		ContextUsed: true,
		Context:     sel.Description,
	}, nil
}

func (o *Orchestrator) askWholeDocument(ctx context.Context, doc *document.Document, question string) (Result, error) {
	text := strings.ReplaceAll(doc.FullText(), document.PageSeparator, "\n")
	chunks := chunker.Split(text, o.tokenBudget)

	if !o.relevanceFilter {
		// Filter disabled: answer every chunk independently, like the
		// page-selected mode but over the whole document.
		var answers []string
		for _, chunk := range chunks {
			answer, err := o.client.Complete(ctx, llm.Request{
				Messages: []llm.Message{
					{Role: "system", Content: answerSystemPrompt},
					{Role: "user", Content: answerPrompt(question, chunk)},
				},
				Temperature: 0.7,
				MaxTokens:   1000,
			})
			if err != nil {
				return Result{}, err
			}
			answers = append(answers, answer)
		}
		return Result{Answer: strings.Join(answers, "\n\n"), ContextUsed: true}, nil
	}

	var relevant []string
	for _, chunk := range chunks {
		verdict, err := o.client.Complete(ctx, llm.Request{
			Messages: []llm.Message{
				{Role: "system", Content: relevanceSystemPrompt},
				{Role: "user", Content: relevancePrompt(question, chunk)},
			},
			Temperature: 0,
			MaxTokens:   10,
		})
		if err != nil {
			return Result{}, err
		}
		if strings.Contains(strings.ToLower(verdict), "yes") {
			relevant = append(relevant, chunk)
		}
	}

	o.log.Info("relevance pre-pass complete",
		"chunks", len(chunks),
		"relevant", len(relevant),
	)

	if len(relevant) == 0 {
		answer, err := o.client.Complete(ctx, llm.Request{
			Messages: []llm.Message{
				{Role: "system", Content: fallbackSystemPrompt},
				{Role: "user", Content: "The user asked: " + question},
			},
			Temperature: 0.7,
			MaxTokens:   200,
		})
		if err != nil {
			return Result{}, err
		}
		return Result{Answer: answer, ContextUsed: false}, nil
	}

	answer, err := o.client.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: answerSystemPrompt},
			{Role: "user", Content: answerPrompt(question, strings.Join(relevant, "\n\n"))},
		},
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Answer: answer, ContextUsed: true}, nil
}

// Chat answers the latest question of a running conversation, grounding the
// exchange in the window around the page the reader is on. currentPage 0
// skips the document context; any other out-of-range page is an
// InvalidPageError.
func (o *Orchestrator) Chat(ctx context.Context, doc *document.Document, history []llm.Message, question string, currentPage int) (string, error) {
	if doc == nil {
		return "", ErrNoDocument
	}

	messages := make([]llm.Message, 0, len(history)+2)
	if currentPage != 0 {
		sel, err := SelectContext(doc, question, currentPage)
		if err != nil {
			return "", err
		}
		messages = append(messages, llm.Message{Role: "system", Content: chatSystemPrompt(sel.Description, sel.Text)})
	} else {
		messages = append(messages, llm.Message{Role: "system", Content: answerSystemPrompt})
	}
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: question})

	return o.client.Complete(ctx, llm.Request{
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   1000,
	})
}
