package orderService

import (
	"VoiceCommerce/internal/api/order"
	orderRepository "VoiceCommerce/internal/api/order/repository"
	"VoiceCommerce/internal/api/voice"
	"VoiceCommerce/internal/entity"
	"VoiceCommerce/pkg/nlp"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type memoryOrders struct {
	mu         sync.Mutex
	orders     map[string]entity.Order
	lastFilter entity.OrderFilter
}

func newMemoryOrders() *memoryOrders {
	return &memoryOrders{orders: map[string]entity.Order{}}
}

func (m *memoryOrders) CreateOrder(_ context.Context, o entity.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	return nil
}

func (m *memoryOrders) GetOrderByID(_ context.Context, id string) (entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return entity.Order{}, order.ErrOrderNotFound
	}
	o.Timeline = append([]entity.TimelineEntry(nil), o.Timeline...)
	return o, nil
}

func (m *memoryOrders) ListOrders(_ context.Context, f entity.OrderFilter) ([]entity.Order, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = f

	var out []entity.Order
	for _, o := range m.orders {
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if f.MerchantID != "" && o.MerchantID != f.MerchantID {
			continue
		}
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (m *memoryOrders) UpdateOrderState(_ context.Context, o entity.Order, expected entity.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.orders[o.ID]
	if !ok || stored.Status != expected {
		return order.ErrOrderConflict
	}
	m.orders[o.ID] = o
	return nil
}

func (m *memoryOrders) FindUnsyncedPlaceholder(_ context.Context, userID, deviceID, voiceCommand string) (entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.UserID == userID && o.Offline.DeviceID == deviceID && o.Voice.OriginalCommand == voiceCommand &&
			o.Offline.IsOffline && !o.Offline.Synced && o.Status == entity.OrderStatusPending {
			return o, nil
		}
	}
	return entity.Order{}, order.ErrOrderNotFound
}

func (m *memoryOrders) get(id string) entity.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[id]
}

func (m *memoryOrders) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

type memoryCatalog struct {
	products []entity.Product
	err      error
	queries  []entity.ProductQuery
}

func (c *memoryCatalog) SearchProducts(_ context.Context, q entity.ProductQuery) ([]entity.Product, error) {
	c.queries = append(c.queries, q)
	if c.err != nil {
		return nil, c.err
	}

	needle := strings.ToLower(q.Name)
	var out []entity.Product
	for _, p := range c.products {
		if !p.IsActive || !productMatches(p, needle) {
			continue
		}
		if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
			continue
		}
		if q.MaxPrice != nil && p.Price > *q.MaxPrice {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func productMatches(p entity.Product, needle string) bool {
	if strings.Contains(strings.ToLower(p.Name), needle) {
		return true
	}
	for _, alt := range p.AlternativeNames {
		if strings.Contains(strings.ToLower(alt.Name), needle) {
			return true
		}
	}
	for _, vp := range p.VoicePatterns {
		for _, phrase := range vp.Patterns {
			if strings.Contains(strings.ToLower(phrase), needle) {
				return true
			}
		}
	}
	return false
}

type fakeOrderRepo struct {
	orders  *memoryOrders
	catalog *memoryCatalog
}

func (f fakeOrderRepo) NewClient(bool) (orderRepository.Client, error) {
	noop := func() error { return nil }
	return orderRepository.Client{Orders: f.orders, Products: f.catalog, Commit: noop, Rollback: noop}, nil
}

// ruleInterpreter mirrors the voice service over the rule engine with an
// in-memory dialogue per user.
type ruleInterpreter struct {
	engine    *nlp.RuleEngine
	dialogues map[string]nlp.DialogueContext
	replies   []string
	degraded  bool
}

func newRuleInterpreter() *ruleInterpreter {
	return &ruleInterpreter{engine: nlp.NewRuleEngine(), dialogues: map[string]nlp.DialogueContext{}}
}

func (r *ruleInterpreter) Interpret(ctx context.Context, userID, utterance string, locale nlp.Locale) (*voice.Interpretation, error) {
	dialogue := r.dialogues[userID]
	if r.degraded {
		return &voice.Interpretation{
			Utterance: utterance,
			Locale:    locale,
			Command:   nlp.ProcessedCommand{Type: nlp.CommandUnknown},
			Effective: dialogue.Command(),
			Dialogue:  dialogue,
			Degraded:  true,
			Text:      nlp.ApologyText(locale),
		}, nil
	}

	cmd, err := r.engine.Process(ctx, nlp.Request{Text: utterance, Locale: locale, Context: dialogue})
	if err != nil {
		return nil, err
	}

	in := &voice.Interpretation{Utterance: utterance, Locale: locale, Command: *cmd}
	if cmd.ResetsContext() {
		delete(r.dialogues, userID)
		in.Reset = true
		in.Effective = nlp.ProcessedCommand{Type: nlp.CommandUnknown}
		in.Text = nlp.GenerateResponseText(*cmd, nlp.DialogueContext{}, locale)
		return in, nil
	}

	next := nlp.Merge(dialogue, *cmd, utterance)
	r.dialogues[userID] = next
	in.Dialogue = next
	in.Effective = next.Command()
	in.Text = nlp.GenerateResponseText(*cmd, next, locale)
	return in, nil
}

func (r *ruleInterpreter) Respond(_ context.Context, _ string, _ *voice.Interpretation, text string, _ map[string]interface{}) voice.Reply {
	r.replies = append(r.replies, text)
	return voice.Reply{Text: text}
}

func (r *ruleInterpreter) ResetDialogue(_ context.Context, userID string) error {
	delete(r.dialogues, userID)
	return nil
}

type sentNotification struct {
	UserID string
	Kind   entity.NotificationType
	Title  string
}

type recordingNotifier struct {
	sent []sentNotification
}

func (n *recordingNotifier) Notify(_ context.Context, userID string, kind entity.NotificationType, title, _ string, _ map[string]interface{}) error {
	n.sent = append(n.sent, sentNotification{UserID: userID, Kind: kind, Title: title})
	return nil
}

type sequenceUtils struct {
	n int
}

func (u *sequenceUtils) NewULIDFromTimestamp(time.Time) (string, error) {
	u.n++
	return fmt.Sprintf("01J0000000000000ORDER%05d", u.n), nil
}

type fixture struct {
	svc         *orderService
	orders      *memoryOrders
	catalog     *memoryCatalog
	interpreter *ruleInterpreter
	notifier    *recordingNotifier
	now         time.Time
}

func newFixture() *fixture {
	log := logrus.New()
	log.SetOutput(io.Discard)

	catalog := &memoryCatalog{products: []entity.Product{
		{ID: "p-rice", MerchantID: "m-1", Name: "Rice", Unit: "kg", Price: 60, IsActive: true,
			AlternativeNames: []entity.AlternativeName{{Language: "hindi", Name: "chawal"}}},
		{ID: "p-basmati", MerchantID: "m-1", Name: "Basmati Rice", Unit: "kg", Price: 120, IsActive: true},
		{ID: "p-bread", MerchantID: "m-2", Name: "Bread", Unit: "piece", Price: 40, IsActive: true},
		{ID: "p-ghee", MerchantID: "m-1", Name: "Ghee", Unit: "l", Price: 650, IsActive: false},
	}}
	orders := newMemoryOrders()
	repo := fakeOrderRepo{orders: orders, catalog: catalog}
	interpreter := newRuleInterpreter()
	notifier := &recordingNotifier{}

	svc := NewOrderService(log, repo, interpreter, nlp.NewRuleEngine(), notifier, &sequenceUtils{}).(*orderService)

	now := time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	return &fixture{
		svc:         svc,
		orders:      orders,
		catalog:     catalog,
		interpreter: interpreter,
		notifier:    notifier,
		now:         now,
	}
}
