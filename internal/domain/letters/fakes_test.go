package letters

import (
	"context"
	"errors"
	"sort"
	"sync"

	"hrdocs/internal/platform/email"
)

type stubGenerator struct {
	text  string
	err   error
	block bool
	calls int
	last  string
}

func (g *stubGenerator) Infer(ctx context.Context, prompt string) (string, error) {
	g.calls++
	g.last = prompt
	if g.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return g.text, g.err
}

type memoryStore struct {
	mu       sync.Mutex
	letters  []Letter
	failNext error
}

func (s *memoryStore) InsertLetter(_ context.Context, l Letter) (Letter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return Letter{}, err
	}
	s.letters = append(s.letters, l)
	return l, nil
}

func (s *memoryStore) ListLetters(_ context.Context, employeeID string) ([]Letter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Letter
	for _, l := range s.letters {
		if l.EmployeeID == employeeID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].GeneratedOn.After(out[j].GeneratedOn) })
	return out, nil
}

func (s *memoryStore) GetLetter(_ context.Context, id string) (Letter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.letters {
		if l.ID == id {
			return l, nil
		}
	}
	return Letter{}, ErrLetterNotFound
}

type memoryDirectory struct {
	recipients map[string]Recipient
	offerSent  []string
}

func (d *memoryDirectory) Recipient(_ context.Context, id string) (Recipient, error) {
	r, ok := d.recipients[id]
	if !ok {
		return Recipient{}, ErrEmployeeNotFound
	}
	return r, nil
}

func (d *memoryDirectory) MarkOfferSent(_ context.Context, id string) error {
	d.offerSent = append(d.offerSent, id)
	return nil
}

type recordingMailer struct {
	sent []email.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg email.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type stubRenderer struct{}

func (stubRenderer) Render(title, body string) ([]byte, error) {
	if body == "" {
		return nil, errors.New("empty body")
	}
	return []byte("%PDF " + title), nil
}

type sourceCounter struct {
	counts map[string]int
}

func (c *sourceCounter) ObserveLetter(_, source string) {
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	c.counts[source]++
}
