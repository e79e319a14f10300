package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/walterfan/agentcore/internal/model"
)

// streamer adapts a Bedrock ConverseStream event stream to the
// model.Streamer interface.
type streamer struct {
	ctx    context.Context
	cancel context.CancelFunc
	stream *bedrockruntime.ConverseStreamEventStream

	chunks chan model.Chunk

	errMu    sync.Mutex
	errSet   bool
	finalErr error
}

func newStreamer(ctx context.Context, stream *bedrockruntime.ConverseStreamEventStream) model.Streamer {
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
	return s.stream.Close()
}

type toolBuffer struct {
	id        string
	name      string
	fragments []string
}

func (tb *toolBuffer) finalInput() string {
	if len(tb.fragments) == 0 {
		return "{}"
	}
	joined := strings.Join(tb.fragments, "")
	if strings.TrimSpace(joined) == "" {
		return "{}"
	}
	return joined
}

func (s *streamer) run() {
	defer close(s.chunks)
	defer func() {
		if err := s.stream.Close(); err != nil {
			s.setErr(err)
		}
	}()

	toolBlocks := make(map[int32]*toolBuffer)
	events := s.stream.Events()

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
		case event, ok := <-events:
			if !ok {
				if err := s.stream.Err(); err != nil {
					s.setErr(err)
				}
				return
			}
			switch ev := event.(type) {
			case *brtypes.ConverseStreamOutputMemberMessageStart:
				toolBlocks = make(map[int32]*toolBuffer)
			case *brtypes.ConverseStreamOutputMemberContentBlockStart:
				if start, ok := ev.Value.Start.(*brtypes.ContentBlockStartMemberToolUse); ok {
					tb := &toolBuffer{}
					if start.Value.ToolUseId != nil {
						tb.id = *start.Value.ToolUseId
					}
					if start.Value.Name != nil {
						tb.name = *start.Value.Name
					}
					toolBlocks[ev.Value.ContentBlockIndex] = tb
				}
			case *brtypes.ConverseStreamOutputMemberContentBlockDelta:
				idx := ev.Value.ContentBlockIndex
				switch delta := ev.Value.Delta.(type) {
				case *brtypes.ContentBlockDeltaMemberText:
					if delta.Value == "" {
						continue
					}
					if !emit(model.Chunk{
						Type: model.ChunkTypeText,
						Message: &model.Message{
							Role:  model.RoleAssistant,
							Parts: []model.Part{model.TextPart{Text: delta.Value}},
						},
					}) {
						return
					}
				case *brtypes.ContentBlockDeltaMemberToolUse:
					if tb := toolBlocks[idx]; tb != nil && delta.Value.Input != nil {
						tb.fragments = append(tb.fragments, *delta.Value.Input)
					}
				}
			case *brtypes.ConverseStreamOutputMemberContentBlockStop:
				idx := ev.Value.ContentBlockIndex
				if tb := toolBlocks[idx]; tb != nil {
					delete(toolBlocks, idx)
					if !emit(model.Chunk{
						Type: model.ChunkTypeToolCall,
						ToolCall: &model.ToolCall{
							ID:      tb.id,
							Name:    tb.name,
							Payload: decodeToolPayload(tb.finalInput()),
						},
					}) {
						return
					}
				}
			case *brtypes.ConverseStreamOutputMemberMessageStop:
				reason := string(ev.Value.StopReason)
				toolBlocks = make(map[int32]*toolBuffer)
				if !emit(model.Chunk{Type: model.ChunkTypeStop, StopReason: reason}) {
					return
				}
			case *brtypes.ConverseStreamOutputMemberMetadata:
				if ev.Value.Usage == nil {
					continue
				}
				usage := model.TokenUsage{
					InputTokens:  int(ptrValue(ev.Value.Usage.InputTokens)),
					OutputTokens: int(ptrValue(ev.Value.Usage.OutputTokens)),
					TotalTokens:  int(ptrValue(ev.Value.Usage.TotalTokens)),
				}
				if !emit(model.Chunk{Type: model.ChunkTypeUsage, UsageDelta: &usage}) {
					return
				}
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
