package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/walterfan/agentcore/internal/model"
)

// streamer adapts an Anthropic Messages streaming response to model.Streamer.
type streamer struct {
	ctx    context.Context
	cancel context.CancelFunc
	stream *ssestream.Stream[sdk.MessageStreamEventUnion]

	chunks chan model.Chunk

	errMu    sync.Mutex
	errSet   bool
	finalErr error

	nameMap map[string]string
}

func newStreamer(ctx context.Context, stream *ssestream.Stream[sdk.MessageStreamEventUnion], nameMap map[string]string) model.Streamer {
	cctx, cancel := context.WithCancel(ctx)
	s := &streamer{
		ctx:     cctx,
		cancel:  cancel,
		stream:  stream,
		chunks:  make(chan model.Chunk, 32),
		nameMap: nameMap,
	}
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

func (s *streamer) run() {
	defer close(s.chunks)
	defer func() {
		if s.stream != nil {
			_ = s.stream.Close()
		}
	}()

	toolFragments := make(map[int]*strings.Builder)
	toolName := make(map[int]string)
	toolID := make(map[int]string)
	var stopReason string

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
			return
		}
		event := s.stream.Current()
		switch ev := event.AsAny().(type) {
		case sdk.ContentBlockStartEvent:
			idx := int(ev.Index)
			if toolUse, ok := ev.ContentBlock.AsAny().(sdk.ToolUseBlock); ok {
				name := toolUse.Name
				if canonical, ok := s.nameMap[name]; ok {
					name = canonical
				}
				toolName[idx] = name
				toolID[idx] = toolUse.ID
				toolFragments[idx] = &strings.Builder{}
			}
		case sdk.ContentBlockDeltaEvent:
			idx := int(ev.Index)
			switch delta := ev.Delta.AsAny().(type) {
			case sdk.TextDelta:
				if delta.Text == "" {
					continue
				}
				if !emit(model.Chunk{
					Type: model.ChunkTypeText,
					Message: &model.Message{
						Role:  model.RoleAssistant,
						Parts: []model.Part{model.TextPart{Text: delta.Text}},
					},
				}) {
					return
				}
			case sdk.InputJSONDelta:
				if b, ok := toolFragments[idx]; ok {
					b.WriteString(delta.PartialJSON)
				}
			}
		case sdk.ContentBlockStopEvent:
			idx := int(ev.Index)
			if b, ok := toolFragments[idx]; ok {
				payload := decodeToolPayload(b.String())
				delete(toolFragments, idx)
				if !emit(model.Chunk{
					Type: model.ChunkTypeToolCall,
					ToolCall: &model.ToolCall{
						ID:      toolID[idx],
						Name:    toolName[idx],
						Payload: payload,
					},
				}) {
					return
				}
			}
		case sdk.MessageDeltaEvent:
			stopReason = string(ev.Delta.StopReason)
			usage := model.TokenUsage{
				InputTokens:  int(ev.Usage.InputTokens),
				OutputTokens: int(ev.Usage.OutputTokens),
				TotalTokens:  int(ev.Usage.InputTokens + ev.Usage.OutputTokens),
			}
			if !emit(model.Chunk{Type: model.ChunkTypeUsage, UsageDelta: &usage}) {
				return
			}
		case sdk.MessageStopEvent:
			if !emit(model.Chunk{Type: model.ChunkTypeStop, StopReason: stopReason}) {
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
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.finalErr = err
		return
	}
	s.finalErr = err
}

func (s *streamer) err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.finalErr
}

func decodeToolPayload(raw string) json.RawMessage {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = "{}"
	}
	return json.RawMessage(trimmed)
}
