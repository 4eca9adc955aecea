package session

import (
	"context"
	"sync"

	"nutricionista-backend/internal/models"
	"nutricionista-backend/internal/schema"
)

// fakeBackend counts calls per capability. When gate is set each call signals
// entered and then waits for gate (or ctx) before answering.
type fakeBackend struct {
	mu sync.Mutex

	structuredCalls int
	chatCalls       int
	imageCalls      int

	structured string
	reply      string
	analysis   string
	err        error

	lastPrompt      string
	lastContract    *schema.Schema
	lastInstruction string
	lastHistory     []models.ChatMessage
	lastMessage     string
	lastMimeType    string

	entered chan struct{}
	gate    chan struct{}
}

func (f *fakeBackend) wait(ctx context.Context) error {
	if f.gate == nil {
		return nil
	}
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	select {
	case <-f.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeBackend) GenerateStructured(ctx context.Context, prompt string, contract *schema.Schema) (string, error) {
	f.mu.Lock()
	f.structuredCalls++
	f.lastPrompt = prompt
	f.lastContract = contract
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return "", err
	}
	return f.structured, f.err
}

func (f *fakeBackend) GenerateWithHistory(ctx context.Context, instruction string, history []models.ChatMessage, message string) (string, error) {
	f.mu.Lock()
	f.chatCalls++
	f.lastInstruction = instruction
	f.lastHistory = append([]models.ChatMessage(nil), history...)
	f.lastMessage = message
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return "", err
	}
	return f.reply, f.err
}

func (f *fakeBackend) AnalyzeImage(ctx context.Context, image []byte, mimeType, instruction string) (string, error) {
	f.mu.Lock()
	f.imageCalls++
	f.lastMimeType = mimeType
	f.lastInstruction = instruction
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return "", err
	}
	return f.analysis, f.err
}

func (f *fakeBackend) calls() (structured, chat, image int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.structuredCalls, f.chatCalls, f.imageCalls
}

type recordingNotifier struct {
	mu      sync.Mutex
	updates []models.SlotUpdate
}

func (n *recordingNotifier) SlotChanged(ctx context.Context, u models.SlotUpdate) {
	n.mu.Lock()
	n.updates = append(n.updates, u)
	n.mu.Unlock()
}

func (n *recordingNotifier) statuses(slot models.SlotName) []models.SlotStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []models.SlotStatus
	for _, u := range n.updates {
		if u.Slot == slot {
			out = append(out, u.Status)
		}
	}
	return out
}
