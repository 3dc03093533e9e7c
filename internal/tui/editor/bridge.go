package editor

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Paintersrp/nervous/internal/handler"
	"github.com/Paintersrp/nervous/internal/session"
)

type promptKind int

const (
	promptText promptKind = iota
	promptConfirm
)

type promptReply struct {
	value string
	ok    bool
	err   error
}

// promptRequestMsg asks the model to show an inline prompt. The answer goes
// back on reply.
type promptRequestMsg struct {
	kind    promptKind
	label   string
	initial string
	reply   chan promptReply
}

// Bridge lets session operations, which run inside commands, ask the user
// questions rendered by the model.
type Bridge struct {
	handler  *handler.FileHandler
	requests chan promptRequestMsg
}

func NewBridge(h *handler.FileHandler) *Bridge {
	return &Bridge{
		handler:  h,
		requests: make(chan promptRequestMsg),
	}
}

// Next waits for the next prompt request.
func (b *Bridge) Next() tea.Cmd {
	return func() tea.Msg {
		return <-b.requests
	}
}

func (b *Bridge) ask(ctx context.Context, req promptRequestMsg) (promptReply, error) {
	req.reply = make(chan promptReply, 1)

	select {
	case b.requests <- req:
	case <-ctx.Done():
		return promptReply{}, ctx.Err()
	}

	select {
	case reply := <-req.reply:
		return reply, reply.err
	case <-ctx.Done():
		return promptReply{}, ctx.Err()
	}
}

func (b *Bridge) PromptOpen(ctx context.Context) (string, string, error) {
	reply, err := b.ask(ctx, promptRequestMsg{kind: promptText, label: "Open"})
	if err != nil {
		return "", "", err
	}

	path := b.handler.Resolve(reply.value)
	content, err := b.handler.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return path, content, nil
}

func (b *Bridge) PromptSaveDestination(ctx context.Context, suggested string) (string, error) {
	reply, err := b.ask(ctx, promptRequestMsg{kind: promptText, label: "Save to", initial: suggested})
	if err != nil {
		return "", err
	}
	return reply.value, nil
}

// DiscardGuard asks inline before unsaved changes are dropped.
func (b *Bridge) DiscardGuard() session.DiscardGuard {
	return func(ctx context.Context, doc session.Document) (bool, error) {
		reply, err := b.ask(ctx, promptRequestMsg{
			kind:  promptConfirm,
			label: fmt.Sprintf("Discard unsaved changes to %s?", doc.Name()),
		})
		if err != nil {
			return false, err
		}
		return reply.ok, nil
	}
}

func answerText(req promptRequestMsg, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		req.reply <- promptReply{err: session.ErrCancelled}
		return
	}
	req.reply <- promptReply{value: value, ok: true}
}

func answerConfirm(req promptRequestMsg, ok bool) {
	req.reply <- promptReply{ok: ok}
}

func cancelPrompt(req promptRequestMsg) {
	req.reply <- promptReply{err: session.ErrCancelled}
}
