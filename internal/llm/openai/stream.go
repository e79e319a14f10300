package openai

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/ssestream"

	"github.com/walterfan/agentcore/internal/model"
)

// streamer adapts an OpenAI Chat Completions streaming response to
// model.Streamer.
type streamer struct {
	ctx    context.Context
	cancel context.CancelFunc
	stream *ssestream.Stream[openai.ChatCompletionChunk]

	chunks chan model.Chunk

	errMu    sync.Mutex
	errSet   bool
	finalErr error
}

func newStreamer(ctx context.Context, stream *ssestream.Stream[openai.ChatCompletionChunk]) model.Streamer {
	cctx, cancel := context.WithCancel(ctx)
	s := &streamer{ctx: cctx, cancel: cancel, stream: stream, chunks: make(chan model.Chunk, 32)}
	go s.run()
	return s
}

var _ model.Streamer = (*streamer)(nil)

func (s *streamer) Recv() (model.Chunk, error) {
	select {
	case chunk, ok := <-s.chunks:
		if ok {
			return chunk, nil
		}
		if err := s.err(); err != nil {
			return model.Chunk{}, err
		}
		return model.Chunk{}, io.EOF
	case <-s.ctx.Done():
		err := s.ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		s.setErr(err)
		return model.Chunk{}, err
	}
}

func (s *streamer) Close() error {
	s.cancel()
	if s.stream == nil {
		return nil
	}
	return s.stream.Close()
}

type toolCallAccumulator struct {
	id   string
	name string
	args strings.Builder
}

func (s *streamer) run() {
	defer close(s.chunks)
	defer func() {
		if s.stream != nil {
			_ = s.stream.Close()
		}
	}()

	toolCalls := make(map[int64]*toolCallAccumulator)

	emit := func(c model.Chunk) bool {
		select {
		case <-s.ctx.Done():
			s.setErr(s.ctx.Err())
			return false
		case s.chunks <- c:
			return true
		}
	}

	for {
		select {
		case <-s.ctx.Done():
			s.setErr(s.ctx.Err())
			return
		default:
		}
		if !s.stream.Next() {
			if err := s.stream.Err(); err != nil {
				s.setErr(err)
			}
			break
		}
		chunk := s.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]
		if choice.Delta.Content != "" {
			if !emit(model.Chunk{
				Type: model.ChunkTypeText,
				Message: &model.Message{
					Role:  model.RoleAssistant,
					Parts: []model.Part{model.TextPart{Text: choice.Delta.Content}},
				},
			}) {
				return
			}
		}
		for _, delta := range choice.Delta.ToolCalls {
			idx := delta.Index
			acc := toolCalls[idx]
			if acc == nil {
				acc = &toolCallAccumulator{}
				toolCalls[idx] = acc
			}
			if delta.ID != "" {
				acc.id = delta.ID
			}
			if delta.Function.Name != "" {
				acc.name = delta.Function.Name
			}
			if delta.Function.Arguments != "" {
				acc.args.WriteString(delta.Function.Arguments)
			}
		}
		if choice.FinishReason != "" {
			for _, acc := range toolCalls {
				if !emit(model.Chunk{
					Type: model.ChunkTypeToolCall,
					ToolCall: &model.ToolCall{
						ID:      acc.id,
						Name:    acc.name,
						Payload: parseToolArguments(acc.args.String()),
					},
				}) {
					return
				}
			}
			toolCalls = make(map[int64]*toolCallAccumulator)
			if !emit(model.Chunk{Type: model.ChunkTypeStop, StopReason: string(choice.FinishReason)}) {
				return
			}
		}
		if chunk.Usage.TotalTokens > 0 {
			usage := model.TokenUsage{
				InputTokens:  int(chunk.Usage.PromptTokens),
				OutputTokens: int(chunk.Usage.CompletionTokens),
				TotalTokens:  int(chunk.Usage.TotalTokens),
			}
			if !emit(model.Chunk{Type: model.ChunkTypeUsage, UsageDelta: &usage}) {
				return
			}
		}
	}
}

func (s *streamer) setErr(err error) {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.errSet {
		return
	}
	s.errSet = true
	s.finalErr = err
}

func (s *streamer) err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.finalErr
}
